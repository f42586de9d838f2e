package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/ott-radar/internal/tmdb"
)

func TestFetchPagesMergesInPageOrder(t *testing.T) {
	sizes := map[int]int{1: 3, 2: 0, 3: 5, 4: 1}
	client := &fakeClient{discover: func(_ context.Context, q tmdb.DiscoverQuery) (*tmdb.Page, error) {
		// later pages answer first
		time.Sleep(time.Duration(5-q.Page) * 5 * time.Millisecond)
		var results []tmdb.Listing
		for i := 0; i < sizes[q.Page]; i++ {
			results = append(results, tmdb.Listing{ID: int64(q.Page*100 + i)})
		}
		return pageOf(q.Page, results...), nil
	}}

	set, err := FetchPages(context.Background(), client, tmdb.DiscoverQuery{MediaType: tmdb.MediaTV}, 4)
	require.NoError(t, err)
	require.Len(t, set.Results, 9)
	assert.Equal(t, 9, set.TotalPages)
	assert.Equal(t, 170, set.TotalResults)

	for i := 1; i < len(set.Results); i++ {
		assert.Less(t, set.Results[i-1].ID, set.Results[i].ID, "results out of page order at %d", i)
	}

	pages := map[int]bool{}
	for _, q := range client.discoverQueries() {
		assert.Equal(t, tmdb.MediaTV, q.MediaType)
		pages[q.Page] = true
	}
	assert.Equal(t, map[int]bool{1: true, 2: true, 3: true, 4: true}, pages)
}

func TestFetchPagesFailsWholeFanOut(t *testing.T) {
	client := &fakeClient{discover: func(ctx context.Context, q tmdb.DiscoverQuery) (*tmdb.Page, error) {
		if q.Page == 3 {
			return nil, &tmdb.APIError{StatusCode: 429}
		}
		select {
		case <-time.After(time.Second):
			return pageOf(q.Page, tmdb.Listing{ID: int64(q.Page)}), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}}

	start := time.Now()
	set, err := FetchPages(context.Background(), client, tmdb.DiscoverQuery{}, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, tmdb.ErrRateLimited)
	assert.Contains(t, err.Error(), "page 3")
	assert.Empty(t, set.Results)
	assert.Less(t, time.Since(start), 500*time.Millisecond, "remaining pages were not cancelled")
}

func TestFetchPagesZeroPages(t *testing.T) {
	client := &fakeClient{}
	set, err := FetchPages(context.Background(), client, tmdb.DiscoverQuery{}, 0)
	require.NoError(t, err)
	assert.Empty(t, set.Results)
	assert.Empty(t, client.discoverQueries())
}
