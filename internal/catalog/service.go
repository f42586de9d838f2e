package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Clark-Hu/ott-radar/internal/domain"
	"github.com/Clark-Hu/ott-radar/internal/tmdb"
)

// ErrInvalidArgument is returned for a media type, id or language the
// service cannot query.
var ErrInvalidArgument = errors.New("catalog: invalid argument")

const (
	DefaultTrendingLimit = 7
	DefaultLatestLimit   = 40
	DefaultPages         = 5

	searchLimit = 10

	trendingLookBack   = 90
	newReleaseLookBack = 30
	theatricalLookBack = 45
	ottLookBack        = 180
)

// Options configures a Service.
type Options struct {
	Languages         []string
	Providers         []int
	Pages             int
	EnrichConcurrency int
	Logger            *log.Logger
	// Now is the clock used for look-back windows; defaults to time.Now.
	Now func() time.Time
}

// Service composes the query, fetch, enrich and filter stages into the
// listing operations.
type Service struct {
	client    tmdb.Client
	enricher  *Enricher
	languages []string
	providers []int
	pages     int
	now       func() time.Time
	logger    *log.Logger
}

// NewService wires a Service on top of client.
func NewService(client tmdb.Client, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	logger = logger.WithPrefix("catalog")
	if opts.Pages <= 0 {
		opts.Pages = DefaultPages
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		client:    client,
		enricher:  NewEnricher(client, opts.EnrichConcurrency, logger),
		languages: opts.Languages,
		providers: opts.Providers,
		pages:     opts.Pages,
		now:       opts.Now,
		logger:    logger,
	}
}

// Languages returns the selectable original languages.
func (s *Service) Languages() []domain.Language {
	out := make([]domain.Language, len(domain.Languages))
	copy(out, domain.Languages)
	return out
}

// IndianContent lists one discover page of Indian-language titles streaming
// on the configured providers, with providers attached.
func (s *Service) IndianContent(ctx context.Context, media domain.MediaType, page int) (domain.Listing, error) {
	mt, err := upstreamMedia(media)
	if err != nil {
		return domain.Listing{}, err
	}
	listing, err := s.discoverPage(ctx, tmdb.DiscoverQuery{
		MediaType: mt,
		Languages: s.languages,
		Providers: s.providers,
		Page:      page,
	})
	if err != nil {
		return domain.Listing{}, err
	}
	if err := s.enrich(ctx, &listing, EnrichOptions{}); err != nil {
		return domain.Listing{}, err
	}
	return listing, nil
}

// Trending lists the most popular recent Indian movies that are either in
// theatres or streaming, newest release first.
func (s *Service) Trending(ctx context.Context, limit int) (domain.Listing, error) {
	if limit <= 0 {
		limit = DefaultTrendingLimit
	}
	now := s.now()
	listing, err := s.discoverPage(ctx, tmdb.DiscoverQuery{
		MediaType: tmdb.MediaMovie,
		Languages: s.languages,
		Dates:     tmdb.DateRange{From: daysBefore(now, trendingLookBack)},
		SortBy:    "popularity.desc",
	})
	if err != nil {
		return domain.Listing{}, err
	}
	listing.Items = Truncate(listing.Items, 2*limit)
	if err := s.enrich(ctx, &listing, EnrichOptions{}); err != nil {
		return domain.Listing{}, err
	}

	items := Filter(listing.Items, All(Any(InTheaters, HasFlatrate), OriginalLanguageIn(s.languages)))
	SortByDateDesc(items)
	return aggregate(Truncate(items, limit), listing.Failures), nil
}

// ByLanguage lists one discover page for a single original language.
func (s *Service) ByLanguage(ctx context.Context, language string, media domain.MediaType, page int) (domain.Listing, error) {
	mt, err := upstreamMedia(media)
	if err != nil {
		return domain.Listing{}, err
	}
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		return domain.Listing{}, fmt.Errorf("%w: language is required", ErrInvalidArgument)
	}
	return s.discoverPage(ctx, tmdb.DiscoverQuery{
		MediaType: mt,
		Languages: []string{language},
		Providers: s.providers,
		Page:      page,
	})
}

// NewReleases lists one discover page of titles released in the last 30 days.
func (s *Service) NewReleases(ctx context.Context, media domain.MediaType, page int) (domain.Listing, error) {
	mt, err := upstreamMedia(media)
	if err != nil {
		return domain.Listing{}, err
	}
	listing, err := s.discoverPage(ctx, tmdb.DiscoverQuery{
		MediaType: mt,
		Languages: s.languages,
		Providers: s.providers,
		Dates:     tmdb.DateRange{From: daysBefore(s.now(), newReleaseLookBack)},
		Page:      page,
	})
	if err != nil {
		return domain.Listing{}, err
	}
	if err := s.enrich(ctx, &listing, EnrichOptions{}); err != nil {
		return domain.Listing{}, err
	}
	return listing, nil
}

// Details returns a single title with providers, cast, trailers and release dates.
func (s *Service) Details(ctx context.Context, media domain.MediaType, id int64) (domain.ContentDetails, error) {
	mt, err := upstreamMedia(media)
	if err != nil {
		return domain.ContentDetails{}, err
	}
	if id <= 0 {
		return domain.ContentDetails{}, fmt.Errorf("%w: id must be positive", ErrInvalidArgument)
	}
	details, err := s.client.Details(ctx, mt, id)
	if err != nil {
		return domain.ContentDetails{}, err
	}
	return detailsFrom(details, domain.MediaType(mt)), nil
}

// Search runs a multi search and keeps the top Indian movie and TV matches,
// poster-bearing results first.
func (s *Service) Search(ctx context.Context, query string) (domain.Listing, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Listing{}, fmt.Errorf("%w: query is required", ErrInvalidArgument)
	}
	page, err := s.client.Search(ctx, tmdb.SearchQuery{Query: query, Page: 1})
	if err != nil {
		return domain.Listing{}, err
	}

	items := make([]domain.ContentItem, 0, len(page.Results))
	for _, l := range page.Results {
		media, ok := tmdb.ParseMediaType(l.MediaType)
		if !ok {
			continue
		}
		items = append(items, fromListing(l, domain.MediaType(media)))
	}
	items = Truncate(Filter(items, Any(OriginalLanguageIn(s.languages), IndianOrigin)), searchLimit)

	listing := domain.Listing{Items: items}
	if err := s.enrich(ctx, &listing, EnrichOptions{}); err != nil {
		return domain.Listing{}, err
	}
	SortForSearch(listing.Items)
	return aggregate(listing.Items, listing.Failures), nil
}

// TheatricalReleases lists Indian movies that opened in theatres during the
// last 45 days, newest first.
func (s *Service) TheatricalReleases(ctx context.Context) (domain.Listing, error) {
	now := s.now()
	window := tmdb.DateRange{From: daysBefore(now, theatricalLookBack), To: now}
	items, failures, err := s.collect(ctx, tmdb.DiscoverQuery{
		MediaType:    tmdb.MediaMovie,
		Languages:    s.languages,
		ReleaseTypes: []int{tmdb.ReleaseTheatrical, tmdb.ReleaseTheatricalLimited},
		Dates:        window,
	}, EnrichOptions{TheatricalWindow: &window})
	if err != nil {
		return domain.Listing{}, err
	}
	items = Filter(items, InTheaters)
	SortByDateDesc(items)
	return aggregate(items, failures), nil
}

// LatestOTTReleases lists movies from the last 180 days that stream on a
// subscription service, newest first.
func (s *Service) LatestOTTReleases(ctx context.Context, limit int) (domain.Listing, error) {
	return s.latest(ctx, tmdb.MediaMovie, limit)
}

// LatestTVSeries is LatestOTTReleases for TV shows.
func (s *Service) LatestTVSeries(ctx context.Context, limit int) (domain.Listing, error) {
	return s.latest(ctx, tmdb.MediaTV, limit)
}

func (s *Service) latest(ctx context.Context, media tmdb.MediaType, limit int) (domain.Listing, error) {
	if limit <= 0 {
		limit = DefaultLatestLimit
	}
	minVotes := 0
	items, failures, err := s.collect(ctx, tmdb.DiscoverQuery{
		MediaType:    media,
		Languages:    s.languages,
		Providers:    s.providers,
		Dates:        tmdb.DateRange{From: daysBefore(s.now(), ottLookBack)},
		MinVoteCount: &minVotes,
	}, EnrichOptions{})
	if err != nil {
		return domain.Listing{}, err
	}
	items = Filter(items, HasFlatrate)
	SortByDateDesc(items)
	return aggregate(Truncate(items, limit), failures), nil
}

// collect fetches the configured number of pages, dedupes and enriches them.
func (s *Service) collect(ctx context.Context, q tmdb.DiscoverQuery, opts EnrichOptions) ([]domain.ContentItem, []domain.ItemFailure, error) {
	set, err := FetchPages(ctx, s.client, q, s.pages)
	if err != nil {
		return nil, nil, err
	}
	items := Dedupe(fromListings(set.Results, domain.MediaType(q.MediaType)))
	s.logger.Debug("pages fetched", "path", q.Path(), "pages", s.pages, "items", len(items))

	items, failures := s.enricher.Enrich(ctx, items, opts)
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return items, failures, nil
}

func (s *Service) discoverPage(ctx context.Context, q tmdb.DiscoverQuery) (domain.Listing, error) {
	if q.MediaType == "" {
		q.MediaType = tmdb.MediaMovie
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	page, err := s.client.Discover(ctx, q)
	if err != nil {
		return domain.Listing{}, err
	}
	number := page.Page
	if number == 0 {
		number = q.Page
	}
	return domain.Listing{
		Items:        fromListings(page.Results, domain.MediaType(q.MediaType)),
		Page:         number,
		TotalPages:   page.TotalPages,
		TotalResults: page.TotalResults,
	}, nil
}

func (s *Service) enrich(ctx context.Context, listing *domain.Listing, opts EnrichOptions) error {
	items, failures := s.enricher.Enrich(ctx, listing.Items, opts)
	if err := ctx.Err(); err != nil {
		return err
	}
	listing.Items = items
	listing.Failures = failures
	return nil
}

func aggregate(items []domain.ContentItem, failures []domain.ItemFailure) domain.Listing {
	return domain.Listing{
		Items:        items,
		Page:         1,
		TotalPages:   1,
		TotalResults: len(items),
		Failures:     failures,
	}
}

func upstreamMedia(media domain.MediaType) (tmdb.MediaType, error) {
	mt, ok := tmdb.ParseMediaType(string(media))
	if !ok {
		return "", fmt.Errorf("%w: unknown media type %q", ErrInvalidArgument, media)
	}
	return mt, nil
}

func daysBefore(now time.Time, days int) time.Time {
	return now.AddDate(0, 0, -days)
}
