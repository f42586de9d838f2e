package catalog

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/ott-radar/internal/domain"
	"github.com/Clark-Hu/ott-radar/internal/tmdb"
)

func itemsWithIDs(ids ...int64) []domain.ContentItem {
	items := make([]domain.ContentItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, domain.ContentItem{ID: id, MediaType: domain.MediaMovie})
	}
	return items
}

func TestEnrichKeepsFailedItemInPlace(t *testing.T) {
	boom := errors.New("connection reset")
	client := &fakeClient{details: func(_ context.Context, _ tmdb.MediaType, id int64) (*tmdb.Details, error) {
		if id == 7 {
			return nil, boom
		}
		return streaming(detailsOf(id, release(tmdb.ReleaseDigital, "2024-02-01")), "Netflix"), nil
	}}
	enricher := NewEnricher(client, 4, nil)

	in := itemsWithIDs(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	out, failures := enricher.Enrich(context.Background(), in, EnrichOptions{})

	require.Len(t, out, 10)
	for i, item := range out {
		assert.Equal(t, in[i].ID, item.ID, "order changed at %d", i)
		if item.ID == 7 {
			assert.False(t, item.Enriched)
			assert.Nil(t, item.WatchProviders)
			continue
		}
		assert.True(t, item.Enriched, "item %d", item.ID)
		assert.True(t, item.HasFlatrate())
		assert.Equal(t, "2024-02-01", item.DigitalReleaseDate)
	}

	require.Len(t, failures, 1)
	assert.EqualValues(t, 7, failures[0].ID)
	assert.ErrorIs(t, failures[0], boom)
	assert.False(t, in[0].Enriched, "input slice was modified")
}

func TestEnrichBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	client := &fakeClient{details: func(_ context.Context, _ tmdb.MediaType, id int64) (*tmdb.Details, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return detailsOf(id), nil
	}}

	out, failures := NewEnricher(client, 3, nil).Enrich(context.Background(), itemsWithIDs(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12), EnrichOptions{})
	assert.Empty(t, failures)
	assert.Len(t, out, 12)
	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.Equal(t, 12, client.detailCalls())
}

func TestEnrichCancelledContextSkipsRequests(t *testing.T) {
	client := &fakeClient{details: detailsTable(nil)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, failures := NewEnricher(client, 2, nil).Enrich(ctx, itemsWithIDs(1, 2, 3), EnrichOptions{})
	assert.Len(t, out, 3)
	require.Len(t, failures, 3)
	for _, f := range failures {
		assert.ErrorIs(t, f, context.Canceled)
	}
	assert.Zero(t, client.detailCalls())
}

func TestEnrichRejectsItemsWithoutID(t *testing.T) {
	client := &fakeClient{details: detailsTable(map[int64]*tmdb.Details{1: detailsOf(1)})}
	out, failures := NewEnricher(client, 0, nil).Enrich(context.Background(), itemsWithIDs(0, 1), EnrichOptions{})
	require.Len(t, failures, 1)
	assert.EqualValues(t, 0, failures[0].ID)
	assert.True(t, out[1].Enriched)
	assert.Equal(t, 1, client.detailCalls())
}

func TestEnrichEmpty(t *testing.T) {
	out, failures := NewEnricher(&fakeClient{}, 2, nil).Enrich(context.Background(), nil, EnrichOptions{})
	assert.Empty(t, out)
	assert.Nil(t, failures)
}

func TestDeriveReleases(t *testing.T) {
	window := &tmdb.DateRange{
		From: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
	}
	tests := []struct {
		name   string
		events []tmdb.ReleaseEvent
		window *tmdb.DateRange
		want   Releases
	}{
		{
			name:   "no events",
			events: nil,
			want:   Releases{},
		},
		{
			name:   "wide theatrical and digital",
			events: []tmdb.ReleaseEvent{release(tmdb.ReleasePremiere, "2023-12-20"), release(tmdb.ReleaseTheatrical, "2024-01-10"), release(tmdb.ReleaseDigital, "2024-03-08")},
			want:   Releases{Theatrical: "2024-01-10", Digital: "2024-03-08", InTheaters: true},
		},
		{
			name:   "limited release when no wide release",
			events: []tmdb.ReleaseEvent{release(tmdb.ReleaseTheatricalLimited, "2024-02-02")},
			want:   Releases{Theatrical: "2024-02-02", InTheaters: true},
		},
		{
			name:   "wide release preferred over earlier limited",
			events: []tmdb.ReleaseEvent{release(tmdb.ReleaseTheatricalLimited, "2024-02-02"), release(tmdb.ReleaseTheatrical, "2024-02-09")},
			want:   Releases{Theatrical: "2024-02-09", InTheaters: true},
		},
		{
			name:   "digital only",
			events: []tmdb.ReleaseEvent{release(tmdb.ReleaseDigital, "2024-03-08")},
			want:   Releases{Digital: "2024-03-08"},
		},
		{
			name:   "theatrical outside window",
			events: []tmdb.ReleaseEvent{release(tmdb.ReleaseTheatrical, "2023-11-01")},
			window: window,
			want:   Releases{},
		},
		{
			name:   "window picks the in-range theatrical event",
			events: []tmdb.ReleaseEvent{release(tmdb.ReleaseTheatrical, "2023-11-01"), release(tmdb.ReleaseTheatrical, "2024-03-20")},
			window: window,
			want:   Releases{Theatrical: "2024-03-20", InTheaters: true},
		},
		{
			name:   "unparseable dates ignored",
			events: []tmdb.ReleaseEvent{{Type: tmdb.ReleaseTheatrical, ReleaseDate: "soon"}},
			want:   Releases{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveReleases(tt.events, tt.window))
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, "2024-03-01", normalizeDate("2024-03-01T00:00:00.000Z"))
	assert.Equal(t, "2024-03-01", normalizeDate(" 2024-03-01 "))
	assert.Equal(t, "", normalizeDate(""))
	assert.Equal(t, "", normalizeDate("2024-13-01"))
	assert.Equal(t, "", normalizeDate("2024"))
}
