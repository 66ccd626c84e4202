package shared

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"flex_reviews/internal/domain"
)

// PlaceBinding ties a Google place to one of our listings so the ingestor
// knows which property the place reviews belong to.
type PlaceBinding struct {
	PlaceID     string
	ListingName string
}

type Config struct {
	AppEnv        string
	HTTPAddr      string
	MetricsAddr   string
	MySQLDSN      string
	RedisAddr     string
	RedisDB       int
	RedisPass     string
	HostawayBase  string
	HostawayKey   string
	PlacesBase    string
	PlacesKey     string
	PlaceBindings []PlaceBinding
	SnapshotPath  string
	Workers       int
	CacheTTL      time.Duration
}

func Load() Config {
	// Missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:        env("APP_ENV", "prod"),
		HTTPAddr:      env("HTTP_ADDR", ":8080"),
		MetricsAddr:   env("METRICS_ADDR", ":9100"),
		MySQLDSN:      env("MYSQL_DSN", "root:root@tcp(localhost:3306)/flex?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:     env("REDIS_ADDR", "localhost:6379"),
		RedisDB:       atoi("REDIS_DB", 0),
		RedisPass:     env("REDIS_PASSWORD", ""),
		HostawayBase:  env("HOSTAWAY_BASE_URL", "https://api.hostaway.com/v1"),
		HostawayKey:   env("HOSTAWAY_API_KEY", ""),
		PlacesBase:    env("GOOGLE_PLACES_BASE_URL", "https://maps.googleapis.com/maps/api/place"),
		PlacesKey:     env("GOOGLE_PLACES_API_KEY", ""),
		PlaceBindings: placeBindings(env("GOOGLE_PLACE_BINDINGS", "")),
		SnapshotPath:  env("SNAPSHOT_PATH", ""),
		Workers:       atoi("INGEST_WORKERS", 4),
		CacheTTL:      time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
	}
	if c.HostawayKey == "" {
		log.Warn().Msg("HOSTAWAY_API_KEY is empty")
	}
	return c
}

// placeBindings parses "placeId=Listing Name,placeId2=Other Listing".
func placeBindings(raw string) []PlaceBinding {
	if raw == "" {
		return nil
	}
	var out []PlaceBinding
	for _, pair := range strings.Split(raw, ",") {
		placeID, name, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || placeID == "" {
			log.Warn().Str("pair", pair).Msg("skipping malformed place binding")
			continue
		}
		out = append(out, PlaceBinding{PlaceID: placeID, ListingName: name})
	}
	return out
}

// LoadSnapshot reads a bundled Hostaway response used when the live API
// returns nothing, mirroring the sandbox account's empty result set.
func LoadSnapshot(path string) (domain.HostawayResponse, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.HostawayResponse{}, err
	}
	var resp domain.HostawayResponse
	if err := json.Unmarshal(b, &resp); err != nil {
		return domain.HostawayResponse{}, err
	}
	return resp, nil
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
