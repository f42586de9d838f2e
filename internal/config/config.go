package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultLanguages are the original-language codes queried when CONTENT_LANGUAGES is unset.
var DefaultLanguages = []string{"hi", "ta", "te", "ml", "bn", "kn"}

// DefaultProviders are the Indian OTT watch-provider ids queried when OTT_PROVIDERS is unset.
var DefaultProviders = []int{119, 337, 237, 121, 220, 192, 122}

// Config captures all runtime configuration derived from environment variables.
type Config struct {
	Port                string
	TMDBAPIKey          string
	TMDBBaseURL         string
	TMDBImageBaseURL    string
	TMDBTimeoutSecs     int
	TMDBRateLimit       float64
	TMDBRateBurst       int
	PagesToFetch        int
	EnrichConcurrency   int
	PipelineTimeoutSecs int
	Languages           []string
	Providers           []int
	ReadTimeoutSecs     int
	WriteTimeoutSecs    int
	IdleTimeoutSecs     int
	LogLevel            string
	LogFormat           string
	LogFile             string
}

// Load reads configuration from environment variables, applying defaults and validation.
// A .env file (or the file named by ENV_FILE) is loaded first when present; variables
// already set in the environment win.
func Load() (Config, error) {
	if err := loadEnvFile(getEnv("ENV_FILE", ".env")); err != nil {
		return Config{}, err
	}

	providers, err := getEnvIntList("OTT_PROVIDERS", DefaultProviders)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:                getEnv("PORT", "8080"),
		TMDBAPIKey:          strings.TrimSpace(os.Getenv("TMDB_API_KEY")),
		TMDBBaseURL:         getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		TMDBImageBaseURL:    getEnv("TMDB_IMAGE_BASE_URL", "https://image.tmdb.org/t/p"),
		TMDBTimeoutSecs:     getEnvInt("TMDB_TIMEOUT_SECS", 10),
		TMDBRateLimit:       getEnvFloat("TMDB_RATE_LIMIT", 40),
		TMDBRateBurst:       getEnvInt("TMDB_RATE_BURST", 20),
		PagesToFetch:        getEnvInt("PAGES_TO_FETCH", 5),
		EnrichConcurrency:   getEnvInt("ENRICH_CONCURRENCY", 8),
		PipelineTimeoutSecs: getEnvInt("PIPELINE_TIMEOUT_SECS", 25),
		Languages:           getEnvList("CONTENT_LANGUAGES", DefaultLanguages),
		Providers:           providers,
		ReadTimeoutSecs:     getEnvInt("SERVER_READ_TIMEOUT", 15),
		WriteTimeoutSecs:    getEnvInt("SERVER_WRITE_TIMEOUT", 30),
		IdleTimeoutSecs:     getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "text"),
		LogFile:             os.Getenv("LOG_FILE"),
	}

	if cfg.TMDBAPIKey == "" {
		return Config{}, fmt.Errorf("TMDB_API_KEY is required")
	}
	if cfg.TMDBTimeoutSecs <= 0 {
		return Config{}, fmt.Errorf("TMDB_TIMEOUT_SECS must be positive")
	}
	if cfg.TMDBRateLimit <= 0 {
		return Config{}, fmt.Errorf("TMDB_RATE_LIMIT must be positive")
	}
	if cfg.TMDBRateBurst <= 0 {
		return Config{}, fmt.Errorf("TMDB_RATE_BURST must be positive")
	}
	if cfg.PagesToFetch <= 0 || cfg.PagesToFetch > 20 {
		return Config{}, fmt.Errorf("PAGES_TO_FETCH must be between 1 and 20")
	}
	if cfg.EnrichConcurrency <= 0 {
		return Config{}, fmt.Errorf("ENRICH_CONCURRENCY must be positive")
	}
	if cfg.PipelineTimeoutSecs <= 0 {
		return Config{}, fmt.Errorf("PIPELINE_TIMEOUT_SECS must be positive")
	}
	if len(cfg.Languages) == 0 {
		return Config{}, fmt.Errorf("CONTENT_LANGUAGES must name at least one language")
	}
	switch cfg.LogFormat {
	case "text", "json", "logfmt":
	default:
		return Config{}, fmt.Errorf("LOG_FORMAT must be one of text, json, logfmt")
	}

	return cfg, nil
}

func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return append([]string(nil), fallback...)
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvIntList(key string, fallback []int) ([]int, error) {
	val := os.Getenv(key)
	if val == "" {
		return append([]int(nil), fallback...), nil
	}
	var out []int
	for _, part := range strings.Split(val, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%s contains invalid provider id %q", key, part)
		}
		out = append(out, id)
	}
	return out, nil
}
