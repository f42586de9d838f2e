package domain

import (
	"fmt"
	"strings"
)

// ItemFailure records an item whose detail fetch failed. The item itself is
// still present in the listing, unenriched.
type ItemFailure struct {
	ID        int64
	MediaType MediaType
	Err       error
}

func (f ItemFailure) Error() string {
	return fmt.Sprintf("%s/%d: fetch failed: %v", f.MediaType, f.ID, f.Err)
}

func (f ItemFailure) Unwrap() error {
	return f.Err
}

// Listing is the result of a listing operation. An empty Items slice means no
// content matched; fetch failures surface as errors, never as an empty Listing.
type Listing struct {
	Items        []ContentItem
	Page         int
	TotalPages   int
	TotalResults int
	Failures     []ItemFailure
}

// Genre is a named genre.
type Genre struct {
	ID   int
	Name string
}

// CastMember is one credited performer.
type CastMember struct {
	ID          int64
	Name        string
	Character   string
	ProfilePath string
}

// Video is an externally hosted trailer or teaser.
type Video struct {
	Key  string
	Name string
	Site string
	Type string
}

// ContentDetails is a single title with everything the detail page renders.
type ContentDetails struct {
	ContentItem
	Tagline         string
	Status          string
	Runtime         int
	NumberOfSeasons int
	Genres          []Genre
	Cast            []CastMember
	Videos          []Video
}

// Language is a selectable original language.
type Language struct {
	Code string
	Name string
}

// Languages are the original languages the listings can be filtered by.
var Languages = []Language{
	{Code: "hi", Name: "Hindi"},
	{Code: "ta", Name: "Tamil"},
	{Code: "te", Name: "Telugu"},
	{Code: "ml", Name: "Malayalam"},
	{Code: "bn", Name: "Bengali"},
	{Code: "kn", Name: "Kannada"},
	{Code: "pa", Name: "Punjabi"},
	{Code: "gu", Name: "Gujarati"},
	{Code: "mr", Name: "Marathi"},
	{Code: "or", Name: "Odia"},
}

// LanguageName returns the display name for code, or the upper-cased code when unknown.
func LanguageName(code string) string {
	for _, l := range Languages {
		if l.Code == code {
			return l.Name
		}
	}
	return strings.ToUpper(code)
}
