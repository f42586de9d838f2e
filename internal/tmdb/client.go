package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// Client defines the contract for querying the upstream metadata API.
type Client interface {
	Discover(ctx context.Context, q DiscoverQuery) (*Page, error)
	Search(ctx context.Context, q SearchQuery) (*Page, error)
	Details(ctx context.Context, media MediaType, id int64) (*Details, error)
}

// Options tunes the HTTP client.
type Options struct {
	Timeout time.Duration
	// RateLimit caps requests per second across all goroutines; zero disables it.
	RateLimit float64
	RateBurst int
	Logger    *log.Logger
}

// HTTPClient implements Client over HTTP.
type HTTPClient struct {
	baseURL *url.URL
	apiKey  string
	bearer  bool
	client  *http.Client
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewHTTPClient constructs a new HTTP-backed TMDB client. A v4 read access
// token (a JWT) is sent as a bearer header, a v3 key as the api_key parameter.
func NewHTTPClient(baseURL, apiKey string, opts Options) (*HTTPClient, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse tmdb url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("parse tmdb url: %q is not absolute", baseURL)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &HTTPClient{
		baseURL: parsed,
		apiKey:  apiKey,
		bearer:  strings.HasPrefix(apiKey, "eyJ"),
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConnsPerHost:   32,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		limiter: limiter,
		logger:  logger.WithPrefix("tmdb"),
	}, nil
}

// Discover fetches one page of a discovery listing.
func (c *HTTPClient) Discover(ctx context.Context, q DiscoverQuery) (*Page, error) {
	var page Page
	if err := c.get(ctx, q.Path(), q.Values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Search fetches one page of multi-search results.
func (c *HTTPClient) Search(ctx context.Context, q SearchQuery) (*Page, error) {
	var page Page
	if err := c.get(ctx, q.Path(), q.Values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Details fetches a movie or show with its videos, credits, images, watch
// providers and release dates appended.
func (c *HTTPClient) Details(ctx context.Context, media MediaType, id int64) (*Details, error) {
	if id <= 0 {
		return nil, fmt.Errorf("tmdb: invalid id %d", id)
	}
	var details Details
	if err := c.get(ctx, detailsPath(media, id), detailsValues(), &details); err != nil {
		return nil, err
	}
	if details.ID == 0 {
		return nil, fmt.Errorf("%w: %s/%d has no id", ErrMalformedResponse, media, id)
	}
	return &details, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, dst any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("tmdb: wait for rate limiter: %w", err)
		}
	}

	if params == nil {
		params = url.Values{}
	}
	if !c.bearer && c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
	endpoint := *c.baseURL
	endpoint.Path = c.baseURL.Path + path
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.bearer {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("tmdb: request %s: %w", path, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("request", "path", path, "status", resp.StatusCode, "took", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeAPIError(resp)
		if resp.StatusCode != http.StatusNotFound {
			c.logger.Warn("unexpected status", "path", path, "status", resp.StatusCode, "code", apiErr.Code)
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: decode %s: %v", ErrMalformedResponse, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(body) == 0 {
		return apiErr
	}
	var payload errorBody
	if json.Unmarshal(body, &payload) == nil {
		apiErr.Code = payload.StatusCode
		apiErr.Message = payload.StatusMessage
	}
	return apiErr
}
