package shared

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultQuotesBaseURL = "https://www.alphavantage.co"
	DefaultServiceName   = "market-pulse"
)

// UnifiedConfiguration holds all configuration parameters for the entire application
type UnifiedConfiguration struct {
	Quotes   ServiceConfig  `json:"quotes"`
	News     NewsConfig     `json:"news"`
	Database DatabaseConfig `json:"database"`
	Cache    CacheConfig    `json:"cache"`
	Jobs     JobsConfig     `json:"jobs"`
	Logging  LoggingConfig  `json:"logging"`
}

// ServiceConfig holds outbound HTTP service configuration
type ServiceConfig struct {
	BaseURL            string        `json:"base_url"`
	APIKey             string        `json:"-"`
	HTTPRequestTimeout time.Duration `json:"http_timeout"`
	RequestRateLimit   time.Duration `json:"rate_limit"`
	UserAgent          string        `json:"user_agent"`
}

// NewsConfig configures the headline source. An empty SourceURL selects mock headlines.
type NewsConfig struct {
	SourceURL          string        `json:"source_url"`
	Selector           string        `json:"selector"`
	MaxItems           int           `json:"max_items"`
	HTTPRequestTimeout time.Duration `json:"http_timeout"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	URL             string        `json:"-"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
	PingTimeout     time.Duration `json:"ping_timeout"`
}

// CacheConfig holds cache configuration. A zero TTL disables movers caching.
type CacheConfig struct {
	MoversTTL time.Duration `json:"movers_ttl"`
	MaxSize   int           `json:"max_size"`
}

// JobsConfig holds background job scheduling
type JobsConfig struct {
	RefreshInterval   time.Duration `json:"refresh_interval"`
	CleanupInterval   time.Duration `json:"cleanup_interval"`
	SnapshotRetention time.Duration `json:"snapshot_retention"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level       string `json:"level"`
	Format      string `json:"format"`
	ServiceName string `json:"service_name"`
}

// NewDefaultUnifiedConfiguration returns production-ready default configuration
func NewDefaultUnifiedConfiguration() *UnifiedConfiguration {
	return &UnifiedConfiguration{
		Quotes: ServiceConfig{
			BaseURL:            DefaultQuotesBaseURL,
			HTTPRequestTimeout: 15 * time.Second,
			RequestRateLimit:   1 * time.Second,
			UserAgent:          DefaultServiceName + "/1.0",
		},
		News: NewsConfig{
			Selector:           "article h2 a",
			MaxItems:           6,
			HTTPRequestTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			PingTimeout:     5 * time.Second,
		},
		Cache: CacheConfig{
			MoversTTL: 60 * time.Second,
			MaxSize:   100,
		},
		Jobs: JobsConfig{
			CleanupInterval:   12 * time.Hour,
			SnapshotRetention: 30 * 24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "text",
			ServiceName: DefaultServiceName,
		},
	}
}

// ValidateAndApplyDefaults validates configuration and applies defaults for invalid values
func (c *UnifiedConfiguration) ValidateAndApplyDefaults() {
	logger := logrus.WithField("component", "UnifiedConfiguration")
	defaults := NewDefaultUnifiedConfiguration()

	if c.Quotes.BaseURL == "" {
		c.Quotes.BaseURL = defaults.Quotes.BaseURL
		logger.Debug("Applied default Quotes.BaseURL")
	}

	if c.Quotes.HTTPRequestTimeout <= 0 {
		c.Quotes.HTTPRequestTimeout = defaults.Quotes.HTTPRequestTimeout
		logger.Debug("Applied default Quotes.HTTPRequestTimeout")
	}

	if c.Quotes.RequestRateLimit < 0 {
		c.Quotes.RequestRateLimit = defaults.Quotes.RequestRateLimit
		logger.Debug("Applied default Quotes.RequestRateLimit")
	}

	if c.Quotes.UserAgent == "" {
		c.Quotes.UserAgent = defaults.Quotes.UserAgent
		logger.Debug("Applied default Quotes.UserAgent")
	}

	if c.News.Selector == "" {
		c.News.Selector = defaults.News.Selector
		logger.Debug("Applied default News.Selector")
	}

	if c.News.MaxItems <= 0 {
		c.News.MaxItems = defaults.News.MaxItems
		logger.Debug("Applied default News.MaxItems")
	}

	if c.News.HTTPRequestTimeout <= 0 {
		c.News.HTTPRequestTimeout = defaults.News.HTTPRequestTimeout
		logger.Debug("Applied default News.HTTPRequestTimeout")
	}

	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
		logger.Debug("Applied default Database.MaxOpenConns")
	}

	if c.Database.MaxIdleConns <= 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
		logger.Debug("Applied default Database.MaxIdleConns")
	}

	if c.Database.ConnMaxLifetime <= 0 {
		c.Database.ConnMaxLifetime = defaults.Database.ConnMaxLifetime
		logger.Debug("Applied default Database.ConnMaxLifetime")
	}

	if c.Database.PingTimeout <= 0 {
		c.Database.PingTimeout = defaults.Database.PingTimeout
		logger.Debug("Applied default Database.PingTimeout")
	}

	if c.Cache.MoversTTL < 0 {
		c.Cache.MoversTTL = 0
		logger.Debug("Disabled movers cache for negative TTL")
	}

	if c.Cache.MaxSize <= 0 {
		c.Cache.MaxSize = defaults.Cache.MaxSize
		logger.Debug("Applied default Cache.MaxSize")
	}

	if c.Jobs.CleanupInterval <= 0 {
		c.Jobs.CleanupInterval = defaults.Jobs.CleanupInterval
		logger.Debug("Applied default Jobs.CleanupInterval")
	}

	if c.Jobs.SnapshotRetention <= 0 {
		c.Jobs.SnapshotRetention = defaults.Jobs.SnapshotRetention
		logger.Debug("Applied default Jobs.SnapshotRetention")
	}

	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
		logger.Debug("Applied default Logging.Level")
	}

	if c.Logging.Format == "" {
		c.Logging.Format = defaults.Logging.Format
		logger.Debug("Applied default Logging.Format")
	}

	if c.Logging.ServiceName == "" {
		c.Logging.ServiceName = defaults.Logging.ServiceName
		logger.Debug("Applied default Logging.ServiceName")
	}
}

// ToJSON serializes the configuration to JSON. Secrets are never serialized.
func (c *UnifiedConfiguration) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// LoadFromJSON deserializes configuration from JSON
func (c *UnifiedConfiguration) LoadFromJSON(jsonData []byte) error {
	if err := json.Unmarshal(jsonData, c); err != nil {
		return fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	c.ValidateAndApplyDefaults()
	return nil
}
