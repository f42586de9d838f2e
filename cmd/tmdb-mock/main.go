// Command tmdb-mock serves a small fixture catalog over the subset of the TMDB
// v3 API the listings server uses, for local runs without a real API key.
package main

import (
	_ "embed"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Clark-Hu/ott-radar/internal/tmdb"
)

const pageSize = 20

//go:embed fixtures.json
var defaultFixtures []byte

type fixtureFile struct {
	Titles []fixture `json:"titles"`
}

type fixture struct {
	MediaType tmdb.MediaType `json:"media_type"`
	Details   tmdb.Details   `json:"details"`
}

func main() {
	var (
		port    = flag.String("port", "9099", "port to listen on")
		data    = flag.String("data", "", "path to a fixture file; the embedded set is used when empty")
		verbose = flag.Bool("log", false, "enable request logging")
	)
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "tmdb-mock", ReportTimestamp: true})

	raw := defaultFixtures
	if *data != "" {
		file, err := os.ReadFile(*data)
		if err != nil {
			logger.Fatal("read mock data", "err", err)
		}
		raw = file
	}
	fixtures, err := parseFixtures(raw)
	if err != nil {
		logger.Fatal("parse mock data", "err", err)
	}

	var handler http.Handler = newMux(fixtures)
	if *verbose {
		next := handler
		handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Info("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
			next.ServeHTTP(w, r)
		})
	}

	addr := ":" + *port
	logger.Info("mock tmdb listening", "addr", addr, "titles", len(fixtures))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("server error", "err", err)
	}
}

func parseFixtures(raw []byte) ([]fixture, error) {
	var file fixtureFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, err
	}
	return file.Titles, nil
}

func newMux(fixtures []fixture) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /3/discover/{type}", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		media, ok := tmdb.ParseMediaType(r.PathValue("type"))
		if !ok {
			writeStatus(w, http.StatusNotFound, 34, "The resource you requested could not be found.")
			return
		}
		q := r.URL.Query()
		var matched []tmdb.Listing
		for _, f := range fixtures {
			if f.MediaType != media || !matchesDiscover(f, q) {
				continue
			}
			matched = append(matched, toListing(f))
		}
		writeJSON(w, paginate(matched, q.Get("page")))
	})
	mux.HandleFunc("GET /3/search/multi", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		needle := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("query")))
		var matched []tmdb.Listing
		for _, f := range fixtures {
			title := strings.ToLower(f.Details.Title + " " + f.Details.Name)
			if needle != "" && strings.Contains(title, needle) {
				l := toListing(f)
				l.MediaType = string(f.MediaType)
				matched = append(matched, l)
			}
		}
		writeJSON(w, paginate(matched, r.URL.Query().Get("page")))
	})
	mux.HandleFunc("GET /3/{type}/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		media, ok := tmdb.ParseMediaType(r.PathValue("type"))
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if !ok || err != nil {
			writeStatus(w, http.StatusNotFound, 34, "The resource you requested could not be found.")
			return
		}
		for _, f := range fixtures {
			if f.MediaType == media && f.Details.ID == id {
				writeJSON(w, f.Details)
				return
			}
		}
		writeStatus(w, http.StatusNotFound, 34, "The resource you requested could not be found.")
	})
	return mux
}

func authorized(w http.ResponseWriter, r *http.Request) bool {
	if r.URL.Query().Get("api_key") != "" || strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		return true
	}
	writeStatus(w, http.StatusUnauthorized, 7, "Invalid API key: You must be granted a valid key.")
	return false
}

func matchesDiscover(f fixture, q map[string][]string) bool {
	d := f.Details
	if langs := first(q, "with_original_language"); langs != "" {
		if !containsCode(strings.Split(langs, "|"), d.OriginalLanguage) {
			return false
		}
	}
	date := d.ReleaseDate
	prefix := "primary_release_date"
	if f.MediaType == tmdb.MediaTV {
		date, prefix = d.FirstAirDate, "first_air_date"
	}
	if from := first(q, prefix+".gte"); from != "" && (date == "" || date < from) {
		return false
	}
	if to := first(q, prefix+".lte"); to != "" && (date == "" || date > to) {
		return false
	}
	return true
}

func toListing(f fixture) tmdb.Listing {
	d := f.Details
	return tmdb.Listing{
		ID:               d.ID,
		Title:            d.Title,
		Name:             d.Name,
		Overview:         d.Overview,
		PosterPath:       d.PosterPath,
		BackdropPath:     d.BackdropPath,
		VoteAverage:      d.VoteAverage,
		VoteCount:        d.VoteCount,
		Popularity:       d.Popularity,
		OriginalLanguage: d.OriginalLanguage,
		OriginCountry:    d.OriginCountry,
		ReleaseDate:      d.ReleaseDate,
		FirstAirDate:     d.FirstAirDate,
	}
}

func paginate(all []tmdb.Listing, rawPage string) tmdb.Page {
	page, err := strconv.Atoi(rawPage)
	if err != nil || page < 1 {
		page = 1
	}
	totalPages := (len(all) + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	results := []tmdb.Listing{}
	if start < len(all) {
		end := min(start+pageSize, len(all))
		results = all[start:end]
	}
	return tmdb.Page{Page: page, Results: results, TotalPages: totalPages, TotalResults: len(all)}
}

func first(q map[string][]string, key string) string {
	if vals := q[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if strings.EqualFold(strings.TrimSpace(c), code) {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeStatus(w http.ResponseWriter, status, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success":        false,
		"status_code":    code,
		"status_message": message,
	})
}
