package catalog

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"

	"github.com/Clark-Hu/ott-radar/internal/tmdb"
)

// PageSet is the concatenation of several discover pages.
type PageSet struct {
	Results      []tmdb.Listing
	TotalPages   int
	TotalResults int
}

// FetchPages requests pages 1..n of q concurrently and concatenates their
// results in page order. The first failing page cancels the others and fails
// the whole fetch; no partial page set is returned.
func FetchPages(ctx context.Context, client tmdb.Client, q tmdb.DiscoverQuery, n int) (PageSet, error) {
	if n <= 0 {
		return PageSet{}, nil
	}

	pages := make([]*tmdb.Page, n)
	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	for i := 0; i < n; i++ {
		p.Go(func(ctx context.Context) error {
			page, err := client.Discover(ctx, q.WithPage(i+1))
			if err != nil {
				return fmt.Errorf("fetch page %d: %w", i+1, err)
			}
			pages[i] = page
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return PageSet{}, err
	}

	set := PageSet{TotalPages: pages[0].TotalPages, TotalResults: pages[0].TotalResults}
	total := 0
	for _, page := range pages {
		total += len(page.Results)
	}
	set.Results = make([]tmdb.Listing, 0, total)
	for _, page := range pages {
		set.Results = append(set.Results, page.Results...)
	}
	return set, nil
}
