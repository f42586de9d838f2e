package domain

import "strings"

// MediaType distinguishes movies from TV shows.
type MediaType string

const (
	MediaMovie MediaType = "movie"
	MediaTV    MediaType = "tv"
)

// Provider is a single streaming, rental or purchase service.
type Provider struct {
	ID       int
	Name     string
	LogoPath string
}

// WatchProviders lists where a title can be watched in India.
type WatchProviders struct {
	Link     string
	Flatrate []Provider
	Rent     []Provider
	Buy      []Provider
	Free     []Provider
	Ads      []Provider
}

// ContentItem is the normalized listing row handed to the presentation layer.
// The enrichment fields are only meaningful when Enriched is true.
type ContentItem struct {
	ID               int64
	MediaType        MediaType
	Title            string
	Overview         string
	PosterPath       string
	BackdropPath     string
	VoteAverage      float64
	VoteCount        int
	Popularity       float64
	OriginalLanguage string
	OriginCountry    []string
	// ReleaseDate and FirstAirDate are YYYY-MM-DD or empty.
	ReleaseDate  string
	FirstAirDate string

	WatchProviders        *WatchProviders
	TheatricalReleaseDate string
	DigitalReleaseDate    string
	InTheaters            bool
	Enriched              bool
}

// HasFlatrate reports whether at least one subscription provider carries the title.
func (c ContentItem) HasFlatrate() bool {
	return c.WatchProviders != nil && len(c.WatchProviders.Flatrate) > 0
}

// SortDate is the first non-empty of the theatrical, digital, release and
// first-air dates.
func (c ContentItem) SortDate() string {
	for _, d := range []string{c.TheatricalReleaseDate, c.DigitalReleaseDate, c.ReleaseDate, c.FirstAirDate} {
		if d != "" {
			return d
		}
	}
	return ""
}

// FromCountry reports whether code appears in the item's origin countries.
func (c ContentItem) FromCountry(code string) bool {
	for _, country := range c.OriginCountry {
		if strings.EqualFold(country, code) {
			return true
		}
	}
	return false
}

// Key identifies an item across media types.
type Key struct {
	MediaType MediaType
	ID        int64
}

// Key returns the item's identity.
func (c ContentItem) Key() Key {
	return Key{MediaType: c.MediaType, ID: c.ID}
}
