package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Clark-Hu/ott-radar/internal/tmdb"
)

// fakeClient is an in-memory tmdb.Client. Unset hooks fail the call.
type fakeClient struct {
	discover func(ctx context.Context, q tmdb.DiscoverQuery) (*tmdb.Page, error)
	search   func(ctx context.Context, q tmdb.SearchQuery) (*tmdb.Page, error)
	details  func(ctx context.Context, media tmdb.MediaType, id int64) (*tmdb.Details, error)

	mu       sync.Mutex
	queries  []tmdb.DiscoverQuery
	detailed []int64
}

func (f *fakeClient) Discover(ctx context.Context, q tmdb.DiscoverQuery) (*tmdb.Page, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	if f.discover == nil {
		return nil, fmt.Errorf("unexpected discover %s", q.Path())
	}
	return f.discover(ctx, q)
}

func (f *fakeClient) Search(ctx context.Context, q tmdb.SearchQuery) (*tmdb.Page, error) {
	if f.search == nil {
		return nil, fmt.Errorf("unexpected search %q", q.Query)
	}
	return f.search(ctx, q)
}

func (f *fakeClient) Details(ctx context.Context, media tmdb.MediaType, id int64) (*tmdb.Details, error) {
	f.mu.Lock()
	f.detailed = append(f.detailed, id)
	f.mu.Unlock()
	if f.details == nil {
		return nil, fmt.Errorf("unexpected details %s/%d", media, id)
	}
	return f.details(ctx, media, id)
}

func (f *fakeClient) discoverQueries() []tmdb.DiscoverQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tmdb.DiscoverQuery(nil), f.queries...)
}

func (f *fakeClient) detailCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.detailed)
}

// detailsTable serves details from a map and returns tmdb.ErrNotFound otherwise.
func detailsTable(table map[int64]*tmdb.Details) func(context.Context, tmdb.MediaType, int64) (*tmdb.Details, error) {
	return func(_ context.Context, _ tmdb.MediaType, id int64) (*tmdb.Details, error) {
		d, ok := table[id]
		if !ok {
			return nil, &tmdb.APIError{StatusCode: 404, Code: 34, Message: "not found"}
		}
		return d, nil
	}
}

func pageOf(n int, results ...tmdb.Listing) *tmdb.Page {
	return &tmdb.Page{Page: n, Results: results, TotalPages: 9, TotalResults: 170}
}

func movie(id int64, lang, released string) tmdb.Listing {
	return tmdb.Listing{
		ID:               id,
		Title:            fmt.Sprintf("Movie %d", id),
		PosterPath:       fmt.Sprintf("/p%d.jpg", id),
		OriginalLanguage: lang,
		OriginCountry:    []string{"IN"},
		ReleaseDate:      released,
	}
}

func detailsOf(id int64, events ...tmdb.ReleaseEvent) *tmdb.Details {
	return &tmdb.Details{
		ID: id,
		ReleaseDates: tmdb.ReleaseDates{Results: []tmdb.CountryReleases{
			{ISO3166: "IN", ReleaseDates: events},
		}},
	}
}

func streaming(d *tmdb.Details, providers ...string) *tmdb.Details {
	var flatrate []tmdb.Provider
	for i, name := range providers {
		flatrate = append(flatrate, tmdb.Provider{ProviderID: i + 1, ProviderName: name})
	}
	d.WatchProviders = tmdb.WatchProviders{Results: map[string]tmdb.RegionProviders{
		"IN": {Link: "https://www.themoviedb.org/watch", Flatrate: flatrate},
	}}
	return d
}

func release(kind tmdb.ReleaseType, date string) tmdb.ReleaseEvent {
	return tmdb.ReleaseEvent{Type: kind, ReleaseDate: date + "T00:00:00.000Z"}
}

func fixedClock() time.Time {
	return time.Date(2024, time.March, 20, 9, 30, 0, 0, time.UTC)
}
