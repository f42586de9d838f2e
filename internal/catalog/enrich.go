package catalog

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/Clark-Hu/ott-radar/internal/domain"
	"github.com/Clark-Hu/ott-radar/internal/tmdb"
)

var errInvalidItem = errors.New("catalog: item has no id")

// Enricher fetches per-item details with at most workers requests in flight.
type Enricher struct {
	client  tmdb.Client
	workers int
	logger  *log.Logger
}

// NewEnricher returns an Enricher. workers below 1 is treated as 1.
func NewEnricher(client tmdb.Client, workers int, logger *log.Logger) *Enricher {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Enricher{client: client, workers: workers, logger: logger}
}

// EnrichOptions tunes how release dates are derived.
type EnrichOptions struct {
	// TheatricalWindow restricts which theatrical events set InTheaters.
	TheatricalWindow *tmdb.DateRange
}

// Enrich returns a copy of items, in the same order, with providers and
// release dates attached. An item whose detail fetch fails stays in place
// unenriched and is reported in the returned failures.
func (e *Enricher) Enrich(ctx context.Context, items []domain.ContentItem, opts EnrichOptions) ([]domain.ContentItem, []domain.ItemFailure) {
	out := make([]domain.ContentItem, len(items))
	copy(out, items)
	if len(items) == 0 {
		return out, nil
	}

	errs := make([]error, len(items))
	p := pool.New().WithMaxGoroutines(e.workers)
	for i := range out {
		p.Go(func() {
			item := out[i]
			if item.ID <= 0 {
				errs[i] = errInvalidItem
				return
			}
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}
			details, err := e.client.Details(ctx, tmdb.MediaType(item.MediaType), item.ID)
			if err != nil {
				errs[i] = err
				return
			}
			out[i] = applyDetails(item, details, opts.TheatricalWindow)
		})
	}
	p.Wait()

	var failures []domain.ItemFailure
	for i, err := range errs {
		if err == nil {
			continue
		}
		failures = append(failures, domain.ItemFailure{ID: out[i].ID, MediaType: out[i].MediaType, Err: err})
	}
	if len(failures) > 0 {
		e.logger.Warn("enrichment incomplete", "failed", len(failures), "total", len(items), "first", failures[0].Error())
	}
	return out, failures
}
