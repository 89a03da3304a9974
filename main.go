package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fenilmodi00/market-pulse/config"
	"github.com/fenilmodi00/market-pulse/database"
	"github.com/fenilmodi00/market-pulse/handlers"
	"github.com/fenilmodi00/market-pulse/jobs"
	"github.com/fenilmodi00/market-pulse/services"
	"github.com/fenilmodi00/market-pulse/shared"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load config
	cfg := config.LoadConfig()
	cfg.ConfigureLogging()
	app := cfg.App

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database (optional, enables snapshots)
	var snapshotService *services.SnapshotService
	if app.Database.URL != "" {
		if err := database.ConnectWithConfig(&app.Database); err != nil {
			logrus.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close()

		if err := database.Migrate(ctx, database.DB); err != nil {
			logrus.Warnf("Migration warning: %v", err)
		}
		snapshotService = services.NewSnapshotService(database.DB)
	} else {
		logrus.Warn("DATABASE_URL not set, movers snapshots disabled")
	}

	if !cfg.HasUsableAPIKey() {
		logrus.Warn("QUOTES_API_KEY is missing or a placeholder, movers widgets will show a configuration message")
	}

	// Upstream client, snapshot recording and caching, innermost first
	clientFactory := shared.NewHTTPClientFactory(app.Quotes.HTTPRequestTimeout)
	defer clientFactory.CleanupAllClients()

	quotesClient := services.NewQuotesClient(app.Quotes, clientFactory)

	var fetcher services.MoversFetcher = quotesClient
	if snapshotService != nil {
		fetcher = services.NewSnapshotRecordingFetcher(fetcher, snapshotService)
	}

	cacheService := services.NewCacheServiceWithConfig(app.Cache.MaxSize, time.Minute)
	defer cacheService.Close()
	cachedFetcher := services.NewCachedMoversFetcher(fetcher, cacheService, app.Cache.MoversTTL)

	marketData := services.NewMarketDataService()
	pipeline := services.NewMarketDataPipeline(cachedFetcher, app.Quotes.APIKey, marketData)
	newsService := services.NewNewsService(app.News, app.Quotes.UserAgent)
	pageCapture := services.NewPageCaptureService(app.Quotes.UserAgent, 0)

	logrus.WithFields(logrus.Fields{
		"quotes_base_url":  app.Quotes.BaseURL,
		"quotes_timeout":   app.Quotes.HTTPRequestTimeout,
		"quotes_rate":      app.Quotes.RequestRateLimit,
		"cache_ttl":        app.Cache.MoversTTL,
		"refresh_interval": app.Jobs.RefreshInterval,
		"news_source":      app.News.SourceURL,
		"snapshots":        snapshotService != nil,
	}).Info("Market pulse services initialized")

	// Background jobs
	refreshJob := jobs.NewMoversRefreshJob(cachedFetcher, app.Quotes.APIKey, 2*app.Quotes.HTTPRequestTimeout)
	if cfg.HasUsableAPIKey() {
		refreshJob.Start(ctx, app.Jobs.RefreshInterval)
	}

	if snapshotService != nil {
		cleanupJob := jobs.NewSnapshotCleanupJob(snapshotService, app.Jobs.SnapshotRetention)
		go func() {
			cleanupTicker := time.NewTicker(app.Jobs.CleanupInterval)
			defer cleanupTicker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-cleanupTicker.C:
					cleanupJob.Run(ctx)
				}
			}
		}()
	}

	// Initialize handlers
	var snapshots handlers.SnapshotLister
	if snapshotService != nil {
		snapshots = snapshotService
	}

	dashboardHandler := handlers.NewDashboardHandler(pipeline, marketData, newsService)
	marketHandler := handlers.NewMarketHandler(pipeline, marketData, snapshots)
	contentHandler := handlers.NewContentHandler(newsService, marketData)
	metricsHandler := handlers.NewMetricsHandler(map[string]*shared.ServiceMetrics{
		"pipeline": pipeline.Metrics(),
		"quotes":   quotesClient.Metrics(),
		"news":     newsService.Metrics(),
	}, cachedFetcher, database.DB)
	adminHandler := handlers.NewAdminHandler(refreshJob, pageCapture, "http://127.0.0.1:"+cfg.ServerPort+"/")

	// Setup Fiber
	server := fiber.New(fiber.Config{
		AppName:      app.Logging.ServiceName,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second,
	})

	// Middleware
	server.Use(logger.New())
	server.Use(cors.New())

	// Health check endpoint
	server.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.Map{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
			"database":  "disabled",
		}
		if database.DB != nil {
			if err := database.HealthCheck(c.UserContext()); err != nil {
				status["status"] = "degraded"
				status["database"] = "unavailable"
			} else {
				status["database"] = "ok"
			}
		}
		return c.JSON(status)
	})

	// Dashboard page
	server.Get("/", dashboardHandler.GetDashboard)

	// Routes
	api := server.Group("/api/v1")

	// Market Routes
	market := api.Group("/market")
	market.Get("/movers", marketHandler.GetMovers)
	market.Get("/breadth", marketHandler.GetBreadth)
	market.Get("/chart", marketHandler.GetChart)
	market.Get("/indices", marketHandler.GetMarketIndices)
	market.Get("/snapshots", marketHandler.GetSnapshots)

	// Content Routes
	api.Get("/news", contentHandler.GetNews)
	api.Get("/blog", contentHandler.GetBlogPosts)

	// Metrics Routes
	api.Get("/metrics", metricsHandler.GetMetrics)

	// Admin Routes
	if cfg.AdminToken == "" {
		logrus.Warn("ADMIN_TOKEN not set, admin endpoints are disabled")
	}
	admin := api.Group("/admin", handlers.RequireAdminToken(cfg.AdminToken))
	admin.Post("/refresh", adminHandler.TriggerRefresh)
	admin.Post("/capture", adminHandler.CaptureDashboard)
	admin.Delete("/metrics", metricsHandler.ResetMetrics)

	go func() {
		<-ctx.Done()
		logrus.Info("Shutting down server")
		for _, metrics := range []*shared.ServiceMetrics{pipeline.Metrics(), quotesClient.Metrics(), newsService.Metrics()} {
			metrics.LogSummary()
		}
		if err := server.Shutdown(); err != nil {
			logrus.WithError(err).Error("Server shutdown failed")
		}
	}()

	// Start server
	logrus.Infof("Server starting on port %s", cfg.ServerPort)
	if err := server.Listen(":" + cfg.ServerPort); err != nil {
		logrus.Fatalf("Server failed to start: %v", err)
	}
}
