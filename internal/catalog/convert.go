package catalog

import (
	"strings"
	"time"

	"github.com/Clark-Hu/ott-radar/internal/domain"
	"github.com/Clark-Hu/ott-radar/internal/tmdb"
)

const maxCast = 15

// normalizeDate trims TMDB timestamps ("2024-03-01T00:00:00.000Z") and plain
// dates to YYYY-MM-DD. Anything unparseable becomes "".
func normalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) < len(tmdb.DateLayout) {
		return ""
	}
	day := raw[:len(tmdb.DateLayout)]
	if _, err := time.Parse(tmdb.DateLayout, day); err != nil {
		return ""
	}
	return day
}

func fromListing(l tmdb.Listing, media domain.MediaType) domain.ContentItem {
	title := l.Title
	if title == "" {
		title = l.Name
	}
	return domain.ContentItem{
		ID:               l.ID,
		MediaType:        media,
		Title:            title,
		Overview:         l.Overview,
		PosterPath:       l.PosterPath,
		BackdropPath:     l.BackdropPath,
		VoteAverage:      l.VoteAverage,
		VoteCount:        l.VoteCount,
		Popularity:       l.Popularity,
		OriginalLanguage: l.OriginalLanguage,
		OriginCountry:    l.OriginCountry,
		ReleaseDate:      normalizeDate(l.ReleaseDate),
		FirstAirDate:     normalizeDate(l.FirstAirDate),
	}
}

func fromListings(ls []tmdb.Listing, media domain.MediaType) []domain.ContentItem {
	items := make([]domain.ContentItem, 0, len(ls))
	for _, l := range ls {
		items = append(items, fromListing(l, media))
	}
	return items
}

func providersFrom(region *tmdb.RegionProviders) *domain.WatchProviders {
	if region == nil {
		return nil
	}
	return &domain.WatchProviders{
		Link:     region.Link,
		Flatrate: providerList(region.Flatrate),
		Rent:     providerList(region.Rent),
		Buy:      providerList(region.Buy),
		Free:     providerList(region.Free),
		Ads:      providerList(region.Ads),
	}
}

func providerList(in []tmdb.Provider) []domain.Provider {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Provider, 0, len(in))
	for _, p := range in {
		out = append(out, domain.Provider{ID: p.ProviderID, Name: p.ProviderName, LogoPath: p.LogoPath})
	}
	return out
}

// Releases holds the dates derived from a country's release events.
type Releases struct {
	Theatrical string
	Digital    string
	InTheaters bool
}

// DeriveReleases picks the first theatrical (type 3, else limited type 2) and
// the first digital (type 4) release. With a window, only theatrical events
// inside it count, so InTheaters means "opened in theatres during the window".
func DeriveReleases(events []tmdb.ReleaseEvent, window *tmdb.DateRange) Releases {
	var theatrical, limited, digital string
	for _, e := range events {
		date := normalizeDate(e.ReleaseDate)
		if date == "" {
			continue
		}
		switch e.Type {
		case tmdb.ReleaseTheatrical, tmdb.ReleaseTheatricalLimited:
			if window != nil {
				day, _ := time.Parse(tmdb.DateLayout, date)
				if !window.Contains(day) {
					continue
				}
			}
			if e.Type == tmdb.ReleaseTheatrical && theatrical == "" {
				theatrical = date
			}
			if e.Type == tmdb.ReleaseTheatricalLimited && limited == "" {
				limited = date
			}
		case tmdb.ReleaseDigital:
			if digital == "" {
				digital = date
			}
		}
	}
	if theatrical == "" {
		theatrical = limited
	}
	return Releases{Theatrical: theatrical, Digital: digital, InTheaters: theatrical != ""}
}

// applyDetails attaches the enrichment fields of d to item.
func applyDetails(item domain.ContentItem, d *tmdb.Details, window *tmdb.DateRange) domain.ContentItem {
	item.WatchProviders = providersFrom(d.WatchProviders.Region(tmdb.Region))
	rel := DeriveReleases(d.ReleaseDates.Country(tmdb.Region), window)
	item.TheatricalReleaseDate = rel.Theatrical
	item.DigitalReleaseDate = rel.Digital
	item.InTheaters = rel.InTheaters
	if item.PosterPath == "" {
		item.PosterPath = d.PosterPath
	}
	if item.BackdropPath == "" {
		item.BackdropPath = d.BackdropPath
	}
	item.Enriched = true
	return item
}

func detailsFrom(d *tmdb.Details, media domain.MediaType) domain.ContentDetails {
	title := d.Title
	if title == "" {
		title = d.Name
	}
	item := domain.ContentItem{
		ID:               d.ID,
		MediaType:        media,
		Title:            title,
		Overview:         d.Overview,
		PosterPath:       d.PosterPath,
		BackdropPath:     d.BackdropPath,
		VoteAverage:      d.VoteAverage,
		VoteCount:        d.VoteCount,
		Popularity:       d.Popularity,
		OriginalLanguage: d.OriginalLanguage,
		OriginCountry:    d.OriginCountry,
		ReleaseDate:      normalizeDate(d.ReleaseDate),
		FirstAirDate:     normalizeDate(d.FirstAirDate),
	}
	item = applyDetails(item, d, nil)

	runtime := d.Runtime
	if runtime == 0 && len(d.EpisodeRunTime) > 0 {
		runtime = d.EpisodeRunTime[0]
	}

	out := domain.ContentDetails{
		ContentItem:     item,
		Tagline:         d.Tagline,
		Status:          d.Status,
		Runtime:         runtime,
		NumberOfSeasons: d.NumberOfSeasons,
	}
	for _, g := range d.Genres {
		out.Genres = append(out.Genres, domain.Genre{ID: g.ID, Name: g.Name})
	}
	for i, c := range d.Credits.Cast {
		if i == maxCast {
			break
		}
		out.Cast = append(out.Cast, domain.CastMember{ID: c.ID, Name: c.Name, Character: c.Character, ProfilePath: c.ProfilePath})
	}
	for _, v := range d.Videos.Results {
		if v.Site != "YouTube" || (v.Type != "Trailer" && v.Type != "Teaser") {
			continue
		}
		out.Videos = append(out.Videos, domain.Video{Key: v.Key, Name: v.Name, Site: v.Site, Type: v.Type})
	}
	return out
}
