package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fenilmodi00/market-pulse/shared"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// PlaceholderAPIKey is the value shipped in example env files; it is never a usable credential.
const PlaceholderAPIKey = "YOUR_API_KEY"

type Config struct {
	ServerPort string
	AdminToken string
	App        *shared.UnifiedConfiguration
}

// LoadConfig reads .env (if present) and the process environment
func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		logrus.Warn("Error loading .env file, using system environment variables")
	}

	return FromEnv()
}

// FromEnv builds a Config from the process environment only
func FromEnv() *Config {
	app := shared.NewDefaultUnifiedConfiguration()

	app.Quotes.BaseURL = getEnv("QUOTES_BASE_URL", app.Quotes.BaseURL)
	app.Quotes.APIKey = getEnv("QUOTES_API_KEY", "")
	app.Quotes.HTTPRequestTimeout = getSeconds("HTTP_TIMEOUT_SECONDS", app.Quotes.HTTPRequestTimeout)
	app.Quotes.RequestRateLimit = getMilliseconds("QUOTES_MIN_INTERVAL_MS", app.Quotes.RequestRateLimit)

	app.News.SourceURL = getEnv("NEWS_SOURCE_URL", "")
	app.News.Selector = getEnv("NEWS_SELECTOR", app.News.Selector)

	app.Database.URL = getEnv("DATABASE_URL", "")

	app.Cache.MoversTTL = getSeconds("CACHE_TTL_SECONDS", app.Cache.MoversTTL)

	app.Jobs.RefreshInterval = getMinutes("REFRESH_INTERVAL_MINUTES", app.Jobs.RefreshInterval)
	app.Jobs.SnapshotRetention = getDays("SNAPSHOT_RETENTION_DAYS", app.Jobs.SnapshotRetention)

	app.Logging.Level = getEnv("LOG_LEVEL", app.Logging.Level)
	app.Logging.Format = getEnv("LOG_FORMAT", app.Logging.Format)

	app.ValidateAndApplyDefaults()

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		AdminToken: getEnv("ADMIN_TOKEN", ""),
		App:        app,
	}
}

// HasUsableAPIKey reports whether the quotes credential is set and not the placeholder
func (c *Config) HasUsableAPIKey() bool {
	return IsUsableAPIKey(c.App.Quotes.APIKey)
}

// IsUsableAPIKey reports whether key can be sent upstream
func IsUsableAPIKey(key string) bool {
	key = strings.TrimSpace(key)
	return key != "" && key != PlaceholderAPIKey
}

// ConfigureLogging applies level and format to the standard logrus logger
func (c *Config) ConfigureLogging() {
	level, err := logrus.ParseLevel(c.App.Logging.Level)
	if err != nil {
		logrus.Warnf("Invalid LOG_LEVEL value: %s, using info", c.App.Logging.Level)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if strings.EqualFold(c.App.Logging.Format, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getInt(key string) (int, bool) {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return 0, false
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		logrus.Warnf("Invalid %s value: %s, using default", key, raw)
		return 0, false
	}
	return value, true
}

func getSeconds(key string, fallback time.Duration) time.Duration {
	if value, ok := getInt(key); ok {
		return time.Duration(value) * time.Second
	}
	return fallback
}

func getMilliseconds(key string, fallback time.Duration) time.Duration {
	if value, ok := getInt(key); ok {
		return time.Duration(value) * time.Millisecond
	}
	return fallback
}

func getMinutes(key string, fallback time.Duration) time.Duration {
	if value, ok := getInt(key); ok {
		return time.Duration(value) * time.Minute
	}
	return fallback
}

func getDays(key string, fallback time.Duration) time.Duration {
	if value, ok := getInt(key); ok {
		return time.Duration(value) * 24 * time.Hour
	}
	return fallback
}
