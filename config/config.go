package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Detail-fetch failure policies.
const (
	FailurePolicyAbort = "abort"
	FailurePolicySkip  = "skip"
)

// Fetch modes.
const (
	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"
)

// Snapshot backends.
const (
	SnapshotBackendFile  = "file"
	SnapshotBackendRedis = "redis"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config holds all application configuration loaded from environment variables.
// Every key is optional; the defaults reproduce a plain run against the
// 993 results page.
type Config struct {
	ResultsURL string

	RawSnapshotPath      string
	DetailedSnapshotPath string
	CSVOutputPath        string

	MaxConcurrency      int
	FetchTimeoutSec     int
	FetchMode           string
	ChromeBin           string
	UserAgent           string
	DetailFailurePolicy string

	SnapshotBackend string
	RedisURL        string

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	MetricsAddr string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		ResultsURL: getEnv("RESULTS_URL", "https://bringatrailer.com/porsche/993/"),

		RawSnapshotPath:      getEnv("RAW_SNAPSHOT_PATH", "raw_auctions.json"),
		DetailedSnapshotPath: getEnv("DETAILED_SNAPSHOT_PATH", "raw_auctions_detailed.json"),
		CSVOutputPath:        getEnv("CSV_OUTPUT_PATH", "auctions.csv"),

		MaxConcurrency:      getEnvInt("MAX_CONCURRENCY", 5),
		FetchTimeoutSec:     getEnvInt("FETCH_TIMEOUT_SEC", 60),
		FetchMode:           strings.ToLower(getEnv("FETCH_MODE", FetchModeHTTP)),
		ChromeBin:           getEnv("CHROME_BIN", ""),
		UserAgent:           getEnv("USER_AGENT", defaultUserAgent),
		DetailFailurePolicy: strings.ToLower(getEnv("DETAIL_FAILURE_POLICY", FailurePolicyAbort)),

		SnapshotBackend: strings.ToLower(getEnv("SNAPSHOT_BACKEND", SnapshotBackendFile)),
		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379/0"),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "auctions_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		MetricsAddr: getEnv("METRICS_ADDR", ""),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// SkipFailedDetails reports whether a failed detail fetch drops the listing
// instead of aborting the run.
func (c *Config) SkipFailedDetails() bool {
	return c.DetailFailurePolicy == FailurePolicySkip
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
