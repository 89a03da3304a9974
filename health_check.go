//go:build ignore

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fenilmodi00/market-pulse/config"
	"github.com/fenilmodi00/market-pulse/database"
	"github.com/fenilmodi00/market-pulse/services"
	"github.com/fenilmodi00/market-pulse/shared"
)

func main() {
	fmt.Printf("🏥 Market Pulse Health Check - %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Println(strings.Repeat("=", 50))

	cfg := config.LoadConfig()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	healthScore := 0
	totalTests := 3

	// Test 1: Quotes API
	fmt.Print("📡 Quotes API: ")
	client := services.NewQuotesClient(cfg.App.Quotes, shared.NewHTTPClientFactory(cfg.App.Quotes.HTTPRequestTimeout))
	pipeline := services.NewMarketDataPipeline(client, cfg.App.Quotes.APIKey, services.NewMarketDataService())
	if movers, err := pipeline.LoadMovers(ctx); err != nil {
		fmt.Printf("❌ FAILED (%s)\n", shared.UserMessage(err))
	} else {
		fmt.Printf("✅ OK (%d gainers, %d losers)\n", len(movers.Gainers), len(movers.Losers))
		healthScore++
	}

	// Test 2: News source
	fmt.Print("📰 News: ")
	news := services.NewNewsService(cfg.App.News, cfg.App.Quotes.UserAgent).LatestNews(ctx)
	fmt.Printf("✅ OK (%d headlines)\n", len(news))
	healthScore++

	// Test 3: Database
	fmt.Print("🗄️  Database: ")
	if cfg.App.Database.URL == "" {
		fmt.Println("⏭️  SKIPPED (DATABASE_URL not set)")
		healthScore++
	} else if err := database.ConnectWithConfig(&cfg.App.Database); err != nil {
		fmt.Printf("❌ FAILED (%v)\n", err)
	} else {
		snapshots, err := services.NewSnapshotService(database.DB).RecentSnapshots(ctx, 1)
		if err != nil {
			fmt.Printf("❌ FAILED (%v)\n", err)
		} else {
			fmt.Printf("✅ OK (%d recent snapshots)\n", len(snapshots))
			healthScore++
		}
		database.Close()
	}

	// Overall health
	fmt.Println(strings.Repeat("-", 50))
	healthPercent := float64(healthScore) / float64(totalTests) * 100

	if healthScore == totalTests {
		fmt.Printf("🎉 SYSTEM HEALTHY: %d/%d tests passed (%.0f%%)\n", healthScore, totalTests, healthPercent)
	} else if healthScore >= totalTests/2 {
		fmt.Printf("⚠️  SYSTEM DEGRADED: %d/%d tests passed (%.0f%%)\n", healthScore, totalTests, healthPercent)
	} else {
		fmt.Printf("❌ SYSTEM UNHEALTHY: %d/%d tests passed (%.0f%%)\n", healthScore, totalTests, healthPercent)
	}

	fmt.Printf("⏰ Check completed at: %s\n", time.Now().Format("15:04:05"))
}
