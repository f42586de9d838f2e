package tmdb

import (
	"fmt"
	"strconv"
	"strings"
)

// Release types reported by /movie/{id}/release_dates.
const (
	ReleasePremiere          = 1
	ReleaseTheatricalLimited = 2
	ReleaseTheatrical        = 3
	ReleaseDigital           = 4
	ReleasePhysical          = 5
	ReleaseTV                = 6
)

// Page is one page of a discover or search listing.
type Page struct {
	Page         int       `json:"page"`
	Results      []Listing `json:"results"`
	TotalPages   int       `json:"total_pages"`
	TotalResults int       `json:"total_results"`
}

// Listing is a single row of a discover/search page. Movies fill Title and
// ReleaseDate, shows fill Name and FirstAirDate; search/multi also sets MediaType.
type Listing struct {
	ID               int64    `json:"id"`
	MediaType        string   `json:"media_type,omitempty"`
	Title            string   `json:"title,omitempty"`
	Name             string   `json:"name,omitempty"`
	Overview         string   `json:"overview"`
	PosterPath       string   `json:"poster_path"`
	BackdropPath     string   `json:"backdrop_path"`
	VoteAverage      float64  `json:"vote_average"`
	VoteCount        int      `json:"vote_count"`
	Popularity       float64  `json:"popularity"`
	OriginalLanguage string   `json:"original_language"`
	OriginCountry    []string `json:"origin_country,omitempty"`
	ReleaseDate      string   `json:"release_date,omitempty"`
	FirstAirDate     string   `json:"first_air_date,omitempty"`
	Adult            bool     `json:"adult"`
	GenreIDs         []int    `json:"genre_ids,omitempty"`
}

// Details is the /{type}/{id} payload with the appended sub-resources
// videos, credits, images, watch/providers and release_dates.
type Details struct {
	ID               int64          `json:"id"`
	Title            string         `json:"title,omitempty"`
	Name             string         `json:"name,omitempty"`
	Overview         string         `json:"overview"`
	Tagline          string         `json:"tagline"`
	Status           string         `json:"status"`
	PosterPath       string         `json:"poster_path"`
	BackdropPath     string         `json:"backdrop_path"`
	VoteAverage      float64        `json:"vote_average"`
	VoteCount        int            `json:"vote_count"`
	Popularity       float64        `json:"popularity"`
	OriginalLanguage string         `json:"original_language"`
	OriginCountry    []string       `json:"origin_country,omitempty"`
	ReleaseDate      string         `json:"release_date,omitempty"`
	FirstAirDate     string         `json:"first_air_date,omitempty"`
	Runtime          int            `json:"runtime,omitempty"`
	EpisodeRunTime   []int          `json:"episode_run_time,omitempty"`
	NumberOfSeasons  int            `json:"number_of_seasons,omitempty"`
	Genres           []Genre        `json:"genres"`
	Credits          Credits        `json:"credits"`
	Videos           VideoList      `json:"videos"`
	Images           Images         `json:"images"`
	WatchProviders   WatchProviders `json:"watch/providers"`
	ReleaseDates     ReleaseDates   `json:"release_dates"`
}

// Genre is a TMDB genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Credits wraps the cast list; crew is not consumed.
type Credits struct {
	Cast []CastMember `json:"cast"`
}

// CastMember is one credited performer.
type CastMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
	Order       int    `json:"order"`
}

// VideoList wraps appended videos.
type VideoList struct {
	Results []Video `json:"results"`
}

// Video is a trailer, teaser or clip hosted on a third-party site.
type Video struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}

// Images wraps appended artwork.
type Images struct {
	Backdrops []Image `json:"backdrops"`
	Posters   []Image `json:"posters"`
}

// Image is one artwork entry.
type Image struct {
	FilePath    string  `json:"file_path"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	VoteAverage float64 `json:"vote_average"`
}

// WatchProviders is the watch/providers sub-resource keyed by ISO 3166-1 region.
type WatchProviders struct {
	Results map[string]RegionProviders `json:"results"`
}

// Region returns the provider set for an ISO 3166-1 code, or nil.
func (w WatchProviders) Region(code string) *RegionProviders {
	set, ok := w.Results[code]
	if !ok {
		return nil
	}
	return &set
}

// RegionProviders lists the offers available in one region.
type RegionProviders struct {
	Link     string     `json:"link"`
	Flatrate []Provider `json:"flatrate,omitempty"`
	Rent     []Provider `json:"rent,omitempty"`
	Buy      []Provider `json:"buy,omitempty"`
	Free     []Provider `json:"free,omitempty"`
	Ads      []Provider `json:"ads,omitempty"`
}

// Provider is one watch provider offer.
type Provider struct {
	ProviderID      int    `json:"provider_id"`
	ProviderName    string `json:"provider_name"`
	LogoPath        string `json:"logo_path"`
	DisplayPriority int    `json:"display_priority"`
}

// ReleaseDates is the release_dates sub-resource.
type ReleaseDates struct {
	Results []CountryReleases `json:"results"`
}

// Country returns the release events for an ISO 3166-1 code, or nil.
func (r ReleaseDates) Country(code string) []ReleaseEvent {
	for _, c := range r.Results {
		if strings.EqualFold(c.ISO3166, code) {
			return c.ReleaseDates
		}
	}
	return nil
}

// CountryReleases groups release events for one country.
type CountryReleases struct {
	ISO3166      string         `json:"iso_3166_1"`
	ReleaseDates []ReleaseEvent `json:"release_dates"`
}

// ReleaseEvent is one dated release of a given type.
type ReleaseEvent struct {
	Certification string      `json:"certification"`
	Note          string      `json:"note"`
	ReleaseDate   string      `json:"release_date"`
	Type          ReleaseType `json:"type"`
}

// ReleaseType is TMDB's numeric release type. Some mirrors serialize it as a
// string, so decoding accepts both.
type ReleaseType int

func (t *ReleaseType) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		*t = 0
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("tmdb: invalid release type %q", raw)
	}
	*t = ReleaseType(n)
	return nil
}

// errorBody is the JSON TMDB returns with non-2xx replies.
type errorBody struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}
