package tmdb

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, apiKey string, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewHTTPClient(srv.URL+"/3", apiKey, Options{
		Timeout: 2 * time.Second,
		Logger:  log.New(io.Discard),
	})
	require.NoError(t, err)
	return client
}

func TestDiscoverSendsQueryAndKey(t *testing.T) {
	client := newTestClient(t, "v3key", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/3/discover/tv", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "v3key", q.Get("api_key"))
		assert.Equal(t, "false", q.Get("include_adult"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"page":2,"total_pages":7,"total_results":130,"results":[{"id":11,"name":"Panchayat","first_air_date":"2020-04-03","origin_country":["IN"]}]}`)
	})

	page, err := client.Discover(context.Background(), DiscoverQuery{MediaType: MediaTV, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 7, page.TotalPages)
	assert.Equal(t, 130, page.TotalResults)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Panchayat", page.Results[0].Name)
	assert.Equal(t, []string{"IN"}, page.Results[0].OriginCountry)
}

func TestBearerTokenUsesAuthorizationHeader(t *testing.T) {
	token := "eyJhbGciOiJIUzI1NiJ9.payload.sig"
	client := newTestClient(t, token, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
		assert.False(t, r.URL.Query().Has("api_key"))
		_, _ = io.WriteString(w, `{"page":1,"results":[]}`)
	})

	_, err := client.Search(context.Background(), SearchQuery{Query: "jawan"})
	require.NoError(t, err)
}

func TestDetailsDecodesAppendedResources(t *testing.T) {
	client := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/3/movie/42", r.URL.Path)
		assert.Equal(t, detailAppends, r.URL.Query().Get("append_to_response"))
		_, _ = io.WriteString(w, `{
			"id": 42,
			"title": "Laapataa Ladies",
			"watch/providers": {"results": {"IN": {"link": "https://tmdb/watch", "flatrate": [{"provider_id": 8, "provider_name": "Netflix", "logo_path": "/n.jpg"}]}}},
			"release_dates": {"results": [{"iso_3166_1": "IN", "release_dates": [{"type": 3, "release_date": "2024-03-01T00:00:00.000Z"}, {"type": "4", "release_date": "2024-04-26T00:00:00.000Z"}]}]}
		}`)
	})

	details, err := client.Details(context.Background(), MediaMovie, 42)
	require.NoError(t, err)
	assert.Equal(t, "Laapataa Ladies", details.Title)

	in := details.WatchProviders.Region(Region)
	require.NotNil(t, in)
	require.Len(t, in.Flatrate, 1)
	assert.Equal(t, "Netflix", in.Flatrate[0].ProviderName)
	assert.Nil(t, details.WatchProviders.Region("US"))

	events := details.ReleaseDates.Country("in")
	require.Len(t, events, 2)
	assert.Equal(t, ReleaseType(ReleaseTheatrical), events[0].Type)
	assert.Equal(t, ReleaseType(ReleaseDigital), events[1].Type)
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"not found", http.StatusNotFound, `{"status_code":34,"status_message":"The resource you requested could not be found."}`, ErrNotFound},
		{"invalid key", http.StatusUnauthorized, `{"status_code":7,"status_message":"Invalid API key"}`, ErrUnauthorized},
		{"rate limited", http.StatusTooManyRequests, ``, ErrRateLimited},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := client.Details(context.Background(), MediaMovie, 1)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
		})
	}
}

func TestServerErrorCarriesUpstreamMessage(t *testing.T) {
	client := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"status_code":43,"status_message":"Service offline"}`)
	})
	_, err := client.Discover(context.Background(), DiscoverQuery{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Service offline")
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestMalformedResponses(t *testing.T) {
	bodies := []string{`not json`, `{"results": "nope"}`}
	for _, body := range bodies {
		client := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, body)
		})
		_, err := client.Discover(context.Background(), DiscoverQuery{})
		assert.ErrorIs(t, err, ErrMalformedResponse, "body %q", body)
	}

	empty := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	})
	_, err := empty.Details(context.Background(), MediaTV, 9)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestContextCancellationAbortsRequest(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := client.Discover(ctx, DiscoverQuery{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRateLimiterSpacesRequests(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = io.WriteString(w, `{"page":1,"results":[]}`)
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL, "k", Options{RateLimit: 20, RateBurst: 1, Logger: log.New(io.Discard)})
	require.NoError(t, err)

	start := time.Now()
	for i := 0; i < 4; i++ {
		_, err := client.Discover(context.Background(), DiscoverQuery{})
		require.NoError(t, err)
	}
	// burst 1 at 20/s: three waits of ~50ms after the first request.
	assert.GreaterOrEqual(t, time.Since(start), 120*time.Millisecond)
	assert.EqualValues(t, 4, hits.Load())
}

func TestNewHTTPClientRejectsRelativeURL(t *testing.T) {
	_, err := NewHTTPClient("api.themoviedb.org/3", "k", Options{})
	require.Error(t, err)
}

func TestDetailsRejectsInvalidID(t *testing.T) {
	client := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected")
	})
	_, err := client.Details(context.Background(), MediaMovie, 0)
	require.Error(t, err)
}
