package handlers

import (
	"database/sql"

	"github.com/fenilmodi00/market-pulse/shared"
	"github.com/gofiber/fiber/v2"
)

// CacheStatsProvider reports cache statistics
type CacheStatsProvider interface {
	GetCacheStats() map[string]interface{}
}

type MetricsHandler struct {
	Sources map[string]*shared.ServiceMetrics
	Cache   CacheStatsProvider
	DB      *sql.DB
}

func NewMetricsHandler(sources map[string]*shared.ServiceMetrics, cache CacheStatsProvider, db *sql.DB) *MetricsHandler {
	return &MetricsHandler{
		Sources: sources,
		Cache:   cache,
		DB:      db,
	}
}

// GetMetrics returns request metrics per component, cache and connection pool statistics
func (h *MetricsHandler) GetMetrics(c *fiber.Ctx) error {
	metrics := make(map[string]interface{})

	services := make(map[string]shared.MetricsSnapshot, len(h.Sources))
	for name, source := range h.Sources {
		services[name] = source.GetSnapshot()
	}
	metrics["services"] = services

	if h.Cache != nil {
		metrics["cache_stats"] = h.Cache.GetCacheStats()
	}

	if h.DB != nil {
		dbStats := h.DB.Stats()
		metrics["database_stats"] = map[string]interface{}{
			"open_connections":     dbStats.OpenConnections,
			"in_use":               dbStats.InUse,
			"idle":                 dbStats.Idle,
			"wait_count":           dbStats.WaitCount,
			"wait_duration_ms":     dbStats.WaitDuration.Milliseconds(),
			"max_idle_closed":      dbStats.MaxIdleClosed,
			"max_idle_time_closed": dbStats.MaxIdleTimeClosed,
			"max_lifetime_closed":  dbStats.MaxLifetimeClosed,
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    metrics,
	})
}

// ResetMetrics clears all request metrics
func (h *MetricsHandler) ResetMetrics(c *fiber.Ctx) error {
	for _, source := range h.Sources {
		source.LogSummary()
		source.Reset()
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Metrics reset",
	})
}
