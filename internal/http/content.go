package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/ott-radar/internal/catalog"
	"github.com/Clark-Hu/ott-radar/internal/domain"
	"github.com/Clark-Hu/ott-radar/internal/tmdb"
)

const (
	// TMDB refuses pages past 500.
	maxPage  = 500
	maxLimit = 100
)

// Catalog is the listing surface the handlers serve.
type Catalog interface {
	IndianContent(ctx context.Context, media domain.MediaType, page int) (domain.Listing, error)
	Trending(ctx context.Context, limit int) (domain.Listing, error)
	ByLanguage(ctx context.Context, language string, media domain.MediaType, page int) (domain.Listing, error)
	NewReleases(ctx context.Context, media domain.MediaType, page int) (domain.Listing, error)
	Details(ctx context.Context, media domain.MediaType, id int64) (domain.ContentDetails, error)
	Search(ctx context.Context, query string) (domain.Listing, error)
	TheatricalReleases(ctx context.Context) (domain.Listing, error)
	LatestOTTReleases(ctx context.Context, limit int) (domain.Listing, error)
	LatestTVSeries(ctx context.Context, limit int) (domain.Listing, error)
	Languages() []domain.Language
}

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type listingResponse struct {
	Items        []contentResponse `json:"items"`
	Page         int               `json:"page"`
	TotalPages   int               `json:"totalPages"`
	TotalResults int               `json:"totalResults"`
	Failures     []failureResponse `json:"failures,omitempty"`
}

type contentResponse struct {
	ID                    int64                   `json:"id"`
	MediaType             string                  `json:"mediaType"`
	Title                 string                  `json:"title"`
	Overview              string                  `json:"overview,omitempty"`
	PosterURL             string                  `json:"posterUrl,omitempty"`
	BackdropURL           string                  `json:"backdropUrl,omitempty"`
	VoteAverage           float64                 `json:"voteAverage"`
	VoteCount             int                     `json:"voteCount"`
	Popularity            float64                 `json:"popularity"`
	OriginalLanguage      string                  `json:"originalLanguage"`
	LanguageName          string                  `json:"languageName"`
	OriginCountry         []string                `json:"originCountry,omitempty"`
	ReleaseDate           string                  `json:"releaseDate,omitempty"`
	FirstAirDate          string                  `json:"firstAirDate,omitempty"`
	TheatricalReleaseDate string                  `json:"theatricalReleaseDate,omitempty"`
	DigitalReleaseDate    string                  `json:"digitalReleaseDate,omitempty"`
	InTheaters            bool                    `json:"inTheaters"`
	Enriched              bool                    `json:"enriched"`
	WatchProviders        *watchProvidersResponse `json:"watchProviders,omitempty"`
}

type watchProvidersResponse struct {
	Link     string             `json:"link,omitempty"`
	Flatrate []providerResponse `json:"flatrate,omitempty"`
	Rent     []providerResponse `json:"rent,omitempty"`
	Buy      []providerResponse `json:"buy,omitempty"`
	Free     []providerResponse `json:"free,omitempty"`
	Ads      []providerResponse `json:"ads,omitempty"`
}

type providerResponse struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	LogoURL string `json:"logoUrl,omitempty"`
}

type failureResponse struct {
	ID        int64  `json:"id"`
	MediaType string `json:"mediaType"`
	Error     string `json:"error"`
}

type detailsResponse struct {
	contentResponse
	Tagline         string          `json:"tagline,omitempty"`
	Status          string          `json:"status,omitempty"`
	Runtime         int             `json:"runtime,omitempty"`
	NumberOfSeasons int             `json:"numberOfSeasons,omitempty"`
	Genres          []genreResponse `json:"genres"`
	Cast            []castResponse  `json:"cast"`
	Videos          []videoResponse `json:"videos"`
}

type genreResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type castResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Character  string `json:"character,omitempty"`
	ProfileURL string `json:"profileUrl,omitempty"`
}

type videoResponse struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

type languageResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	langs := s.catalog.Languages()
	resp := make([]languageResponse, 0, len(langs))
	for _, l := range langs {
		resp = append(resp, languageResponse{Code: l.Code, Name: l.Name})
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleIndianContent(w http.ResponseWriter, r *http.Request) {
	media, err := parseMediaParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	page, err := parsePage(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	s.serveListing(w, r, "indian content", func(ctx context.Context) (domain.Listing, error) {
		return s.catalog.IndianContent(ctx, media, page)
	})
}

func (s *Server) handleNewReleases(w http.ResponseWriter, r *http.Request) {
	media, err := parseMediaParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	page, err := parsePage(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	s.serveListing(w, r, "new releases", func(ctx context.Context) (domain.Listing, error) {
		return s.catalog.NewReleases(ctx, media, page)
	})
}

func (s *Server) handleByLanguage(w http.ResponseWriter, r *http.Request) {
	lang, err := parseLanguageParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	media, err := parseMediaParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	page, err := parsePage(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	s.serveListing(w, r, "by language", func(ctx context.Context) (domain.Listing, error) {
		return s.catalog.ByLanguage(ctx, lang, media, page)
	})
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	s.serveListing(w, r, "trending", func(ctx context.Context) (domain.Listing, error) {
		return s.catalog.Trending(ctx, limit)
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "q is required")
		return
	}
	s.serveListing(w, r, "search", func(ctx context.Context) (domain.Listing, error) {
		return s.catalog.Search(ctx, q)
	})
}

func (s *Server) handleTheatrical(w http.ResponseWriter, r *http.Request) {
	s.serveListing(w, r, "theatrical", s.catalog.TheatricalReleases)
}

func (s *Server) handleLatestOTTMovies(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	s.serveListing(w, r, "latest ott movies", func(ctx context.Context) (domain.Listing, error) {
		return s.catalog.LatestOTTReleases(ctx, limit)
	})
}

func (s *Server) handleLatestTVSeries(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	s.serveListing(w, r, "latest tv series", func(ctx context.Context) (domain.Listing, error) {
		return s.catalog.LatestTVSeries(ctx, limit)
	})
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	media, err := parseMediaParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	id, err := parseIDParam(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	ctx, cancel := s.pipelineContext(r)
	defer cancel()
	details, err := s.catalog.Details(ctx, media, id)
	if err != nil {
		s.respondCatalogError(w, "details", err)
		return
	}
	s.respondJSON(w, http.StatusOK, s.toDetailsResponse(details))
}

func (s *Server) serveListing(w http.ResponseWriter, r *http.Request, op string, fetch func(context.Context) (domain.Listing, error)) {
	ctx, cancel := s.pipelineContext(r)
	defer cancel()

	listing, err := fetch(ctx)
	if err != nil {
		s.respondCatalogError(w, op, err)
		return
	}
	if len(listing.Failures) > 0 {
		s.logger.Warn("partial enrichment", "op", op, "failed", len(listing.Failures), "items", len(listing.Items))
	}
	s.respondJSON(w, http.StatusOK, s.toListingResponse(listing))
}

func (s *Server) pipelineContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.cfg.PipelineTimeoutSecs <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), time.Duration(s.cfg.PipelineTimeoutSecs)*time.Second)
}

func (s *Server) respondCatalogError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, catalog.ErrInvalidArgument):
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
	case errors.Is(err, tmdb.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	case errors.Is(err, tmdb.ErrRateLimited):
		s.logger.Warn("upstream throttled", "op", op, "err", err)
		s.respondError(w, http.StatusServiceUnavailable, "UPSTREAM_THROTTLED", "Upstream is rate limiting requests, retry later")
	case errors.Is(err, context.DeadlineExceeded):
		s.logger.Warn("upstream timeout", "op", op, "err", err)
		s.respondError(w, http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT", "Upstream did not answer in time")
	default:
		s.logger.Error("upstream failure", "op", op, "err", err)
		s.respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Failed to fetch content")
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Error("failed to encode response", "err", err)
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func (s *Server) toListingResponse(l domain.Listing) listingResponse {
	resp := listingResponse{
		Items:        make([]contentResponse, 0, len(l.Items)),
		Page:         l.Page,
		TotalPages:   l.TotalPages,
		TotalResults: l.TotalResults,
	}
	for _, item := range l.Items {
		resp.Items = append(resp.Items, s.toContentResponse(item))
	}
	for _, f := range l.Failures {
		resp.Failures = append(resp.Failures, failureResponse{ID: f.ID, MediaType: string(f.MediaType), Error: f.Error()})
	}
	return resp
}

func (s *Server) toContentResponse(c domain.ContentItem) contentResponse {
	base := s.cfg.TMDBImageBaseURL
	resp := contentResponse{
		ID:                    c.ID,
		MediaType:             string(c.MediaType),
		Title:                 c.Title,
		Overview:              c.Overview,
		PosterURL:             tmdb.ImageURL(base, tmdb.SizePoster, c.PosterPath),
		BackdropURL:           tmdb.ImageURL(base, tmdb.SizeOriginal, c.BackdropPath),
		VoteAverage:           c.VoteAverage,
		VoteCount:             c.VoteCount,
		Popularity:            c.Popularity,
		OriginalLanguage:      c.OriginalLanguage,
		LanguageName:          domain.LanguageName(c.OriginalLanguage),
		OriginCountry:         c.OriginCountry,
		ReleaseDate:           c.ReleaseDate,
		FirstAirDate:          c.FirstAirDate,
		TheatricalReleaseDate: c.TheatricalReleaseDate,
		DigitalReleaseDate:    c.DigitalReleaseDate,
		InTheaters:            c.InTheaters,
		Enriched:              c.Enriched,
	}
	if wp := c.WatchProviders; wp != nil {
		resp.WatchProviders = &watchProvidersResponse{
			Link:     wp.Link,
			Flatrate: s.toProviders(wp.Flatrate),
			Rent:     s.toProviders(wp.Rent),
			Buy:      s.toProviders(wp.Buy),
			Free:     s.toProviders(wp.Free),
			Ads:      s.toProviders(wp.Ads),
		}
	}
	return resp
}

func (s *Server) toProviders(in []domain.Provider) []providerResponse {
	if len(in) == 0 {
		return nil
	}
	out := make([]providerResponse, 0, len(in))
	for _, p := range in {
		out = append(out, providerResponse{
			ID:      p.ID,
			Name:    p.Name,
			LogoURL: tmdb.ImageURL(s.cfg.TMDBImageBaseURL, tmdb.SizeLogo, p.LogoPath),
		})
	}
	return out
}

func (s *Server) toDetailsResponse(d domain.ContentDetails) detailsResponse {
	resp := detailsResponse{
		contentResponse: s.toContentResponse(d.ContentItem),
		Tagline:         d.Tagline,
		Status:          d.Status,
		Runtime:         d.Runtime,
		NumberOfSeasons: d.NumberOfSeasons,
		Genres:          make([]genreResponse, 0, len(d.Genres)),
		Cast:            make([]castResponse, 0, len(d.Cast)),
		Videos:          make([]videoResponse, 0, len(d.Videos)),
	}
	for _, g := range d.Genres {
		resp.Genres = append(resp.Genres, genreResponse{ID: g.ID, Name: g.Name})
	}
	for _, c := range d.Cast {
		resp.Cast = append(resp.Cast, castResponse{
			ID:         c.ID,
			Name:       c.Name,
			Character:  c.Character,
			ProfileURL: tmdb.ImageURL(s.cfg.TMDBImageBaseURL, tmdb.SizeProfile, c.ProfilePath),
		})
	}
	for _, v := range d.Videos {
		resp.Videos = append(resp.Videos, videoResponse{Key: v.Key, Name: v.Name, Site: v.Site, Type: v.Type})
	}
	return resp
}

func parseMediaParam(r *http.Request) (domain.MediaType, error) {
	raw := chi.URLParam(r, "type")
	media, ok := tmdb.ParseMediaType(raw)
	if !ok {
		return "", fmt.Errorf("type must be movie or tv")
	}
	return domain.MediaType(media), nil
}

func parseIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id parameter")
	}
	return id, nil
}

func parseLanguageParam(r *http.Request) (string, error) {
	lang := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "lang")))
	if len(lang) != 2 || lang[0] < 'a' || lang[0] > 'z' || lang[1] < 'a' || lang[1] > 'z' {
		return "", fmt.Errorf("lang must be a two-letter ISO 639-1 code")
	}
	return lang, nil
}

func parsePage(query url.Values) (int, error) {
	val := strings.TrimSpace(query.Get("page"))
	if val == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(val)
	if err != nil || page < 1 || page > maxPage {
		return 0, fmt.Errorf("invalid page value")
	}
	return page, nil
}

// parseLimit returns 0 when limit is absent so the catalog applies its default.
func parseLimit(query url.Values) (int, error) {
	val := strings.TrimSpace(query.Get("limit"))
	if val == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(val)
	if err != nil || limit < 1 || limit > maxLimit {
		return 0, fmt.Errorf("invalid limit value")
	}
	return limit, nil
}
