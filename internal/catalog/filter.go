package catalog

import (
	"sort"
	"strings"

	"github.com/Clark-Hu/ott-radar/internal/domain"
	"github.com/Clark-Hu/ott-radar/internal/tmdb"
)

// Predicate decides whether an item stays in a listing.
type Predicate func(domain.ContentItem) bool

// HasPoster keeps items with poster art.
func HasPoster(c domain.ContentItem) bool { return c.PosterPath != "" }

// HasFlatrate keeps items streaming on at least one subscription service.
func HasFlatrate(c domain.ContentItem) bool { return c.HasFlatrate() }

// InTheaters keeps items with a qualifying theatrical release.
func InTheaters(c domain.ContentItem) bool { return c.InTheaters }

// IndianOrigin keeps items whose origin countries include India.
func IndianOrigin(c domain.ContentItem) bool { return c.FromCountry(tmdb.Region) }

// OriginalLanguageIn keeps items whose original language is one of codes.
func OriginalLanguageIn(codes []string) Predicate {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[strings.ToLower(c)] = struct{}{}
	}
	return func(c domain.ContentItem) bool {
		_, ok := set[strings.ToLower(c.OriginalLanguage)]
		return ok
	}
}

// Any matches when at least one of preds does.
func Any(preds ...Predicate) Predicate {
	return func(c domain.ContentItem) bool {
		for _, p := range preds {
			if p(c) {
				return true
			}
		}
		return false
	}
}

// All matches when every one of preds does.
func All(preds ...Predicate) Predicate {
	return func(c domain.ContentItem) bool {
		for _, p := range preds {
			if !p(c) {
				return false
			}
		}
		return true
	}
}

// Filter returns the items matching keep, preserving order. The input is not modified.
func Filter(items []domain.ContentItem, keep Predicate) []domain.ContentItem {
	out := make([]domain.ContentItem, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// SortByDateDesc orders items newest first by SortDate. Items without any
// date go last and ties keep their input order.
func SortByDateDesc(items []domain.ContentItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return newer(items[i], items[j])
	})
}

// SortForSearch puts items with posters ahead of those without, newest first
// inside each group.
func SortForSearch(items []domain.ContentItem) {
	sort.SliceStable(items, func(i, j int) bool {
		pi, pj := HasPoster(items[i]), HasPoster(items[j])
		if pi != pj {
			return pi
		}
		return newer(items[i], items[j])
	})
}

func newer(a, b domain.ContentItem) bool {
	da, db := a.SortDate(), b.SortDate()
	if da == "" || db == "" {
		return da != "" && db == ""
	}
	return da > db
}

// Truncate returns at most max items. max <= 0 means no limit.
func Truncate(items []domain.ContentItem, max int) []domain.ContentItem {
	if max <= 0 || len(items) <= max {
		return items
	}
	return items[:max]
}

// Dedupe drops repeated media type and id pairs, keeping the first occurrence.
func Dedupe(items []domain.ContentItem) []domain.ContentItem {
	seen := make(map[domain.Key]struct{}, len(items))
	out := make([]domain.ContentItem, 0, len(items))
	for _, it := range items {
		if _, dup := seen[it.Key()]; dup {
			continue
		}
		seen[it.Key()] = struct{}{}
		out = append(out, it)
	}
	return out
}
