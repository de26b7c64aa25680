// Package config loads core configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all tunables for the offline core.
type Config struct {
	// Remote API
	APIBaseURL  string
	HTTPTimeout time.Duration

	// Local storage
	DataDir  string
	CacheDir string

	// Thumbnail cache
	ThumbnailCacheCap int64 // bytes; eviction drains to 80% of this
	ThumbnailMaxWidth int   // 0 stores thumbnails as downloaded

	// Background sync
	SyncInterval  time.Duration
	ProbeInterval time.Duration

	// Desktop bridge
	BridgePort string
}

// DefaultThumbnailCacheCap is 50 MB, matching the mobile client default.
const DefaultThumbnailCacheCap = 50 * 1024 * 1024

// Load reads configuration from the environment, loading a .env file
// first if one exists.
func Load() *Config {
	godotenv.Load()

	return &Config{
		APIBaseURL:        getEnvOrDefault("VIDSUM_API_URL", "http://localhost:8000"),
		HTTPTimeout:       getEnvAsDurationOrDefault("VIDSUM_HTTP_TIMEOUT", 30*time.Second),
		DataDir:           getEnvOrDefault("VIDSUM_DATA_DIR", "./data"),
		CacheDir:          getEnvOrDefault("VIDSUM_CACHE_DIR", "./data/thumbnails"),
		ThumbnailCacheCap: getEnvAsInt64OrDefault("VIDSUM_THUMBNAIL_CACHE_CAP", DefaultThumbnailCacheCap),
		ThumbnailMaxWidth: getEnvAsIntOrDefault("VIDSUM_THUMBNAIL_MAX_WIDTH", 0),
		SyncInterval:      getEnvAsDurationOrDefault("VIDSUM_SYNC_INTERVAL", 1*time.Minute),
		ProbeInterval:     getEnvAsDurationOrDefault("VIDSUM_PROBE_INTERVAL", 15*time.Second),
		BridgePort:        getEnvOrDefault("VIDSUM_BRIDGE_PORT", "8090"),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsInt64OrDefault(key string, defaultVal int64) int64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}
