package tmdb

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Region is the ISO 3166-1 code every discovery and provider lookup is scoped to.
const Region = "IN"

// MediaType selects the movie or tv flavour of an endpoint.
type MediaType string

const (
	MediaMovie MediaType = "movie"
	MediaTV    MediaType = "tv"
)

// ParseMediaType accepts "movie" or "tv" in any case.
func ParseMediaType(raw string) (MediaType, bool) {
	switch MediaType(strings.ToLower(strings.TrimSpace(raw))) {
	case MediaMovie:
		return MediaMovie, true
	case MediaTV:
		return MediaTV, true
	}
	return "", false
}

// dateField is the discover parameter prefix that holds the media type's release date.
func (m MediaType) dateField() string {
	if m == MediaTV {
		return "first_air_date"
	}
	return "primary_release_date"
}

// DateRange bounds a discovery by release (or first-air) date. Zero ends are open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether day falls inside the range, comparing calendar dates only.
func (r DateRange) Contains(day time.Time) bool {
	d := day.Format(DateLayout)
	if !r.From.IsZero() && d < r.From.Format(DateLayout) {
		return false
	}
	if !r.To.IsZero() && d > r.To.Format(DateLayout) {
		return false
	}
	return true
}

// DateLayout is the calendar-date format TMDB uses for query parameters.
const DateLayout = "2006-01-02"

// DiscoverQuery describes a /discover/{type} request. The zero value for every
// optional field leaves the corresponding parameter unset.
type DiscoverQuery struct {
	MediaType    MediaType
	Languages    []string
	Providers    []int
	ReleaseTypes []int
	Dates        DateRange
	// SortBy overrides the default "<date field>.desc" ordering.
	SortBy       string
	MinVoteCount *int
	Page         int
}

// Path returns the endpoint path relative to the API base URL.
func (q DiscoverQuery) Path() string {
	return "/discover/" + string(q.mediaType())
}

// WithPage returns a copy of q targeting page.
func (q DiscoverQuery) WithPage(page int) DiscoverQuery {
	q.Page = page
	return q
}

// Values renders the query parameters. Origin country and region are always
// India and adult content is always excluded, whatever the caller supplied.
func (q DiscoverQuery) Values() url.Values {
	media := q.mediaType()
	v := url.Values{}

	if langs := joinStrings(q.Languages); langs != "" {
		v.Set("with_original_language", langs)
	}
	v.Set("region", Region)
	v.Set("with_origin_country", Region)
	if providers := joinInts(q.Providers); providers != "" {
		v.Set("with_watch_providers", providers)
		v.Set("watch_region", Region)
	}
	if releaseTypes := joinInts(q.ReleaseTypes); releaseTypes != "" {
		v.Set("with_release_type", releaseTypes)
	}
	if !q.Dates.From.IsZero() {
		v.Set(media.dateField()+".gte", q.Dates.From.Format(DateLayout))
	}
	if !q.Dates.To.IsZero() {
		v.Set(media.dateField()+".lte", q.Dates.To.Format(DateLayout))
	}
	if q.MinVoteCount != nil {
		v.Set("vote_count.gte", strconv.Itoa(*q.MinVoteCount))
	}

	sortBy := strings.TrimSpace(q.SortBy)
	if sortBy == "" {
		sortBy = media.dateField() + ".desc"
	}
	v.Set("sort_by", sortBy)

	page := q.Page
	if page <= 0 {
		page = 1
	}
	v.Set("page", strconv.Itoa(page))
	v.Set("include_adult", "false")
	return v
}

func (q DiscoverQuery) mediaType() MediaType {
	if q.MediaType == MediaTV {
		return MediaTV
	}
	return MediaMovie
}

// SearchQuery describes a /search/multi request.
type SearchQuery struct {
	Query string
	Page  int
}

// Path returns the endpoint path relative to the API base URL.
func (q SearchQuery) Path() string {
	return "/search/multi"
}

// Values renders the query parameters.
func (q SearchQuery) Values() url.Values {
	page := q.Page
	if page <= 0 {
		page = 1
	}
	v := url.Values{}
	v.Set("query", q.Query)
	v.Set("region", Region)
	v.Set("page", strconv.Itoa(page))
	v.Set("include_adult", "false")
	return v
}

// detailAppends are the sub-resources fetched alongside every detail request.
const detailAppends = "videos,credits,images,watch/providers,release_dates"

func detailsPath(media MediaType, id int64) string {
	return "/" + string(media) + "/" + strconv.FormatInt(id, 10)
}

func detailsValues() url.Values {
	v := url.Values{}
	v.Set("append_to_response", detailAppends)
	v.Set("language", "en-US")
	return v
}

func joinStrings(values []string) string {
	parts := make([]string, 0, len(values))
	for _, val := range values {
		if val = strings.TrimSpace(val); val != "" {
			parts = append(parts, val)
		}
	}
	return strings.Join(parts, "|")
}

func joinInts(values []int) string {
	parts := make([]string, 0, len(values))
	for _, val := range values {
		parts = append(parts, strconv.Itoa(val))
	}
	return strings.Join(parts, "|")
}
