package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/fenilmodi00/market-pulse/models"
	"github.com/fenilmodi00/market-pulse/shared"
	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
)

const newsServiceName = "NewsService"

// NewsService serves dashboard headlines, scraped when a source is configured
type NewsService struct {
	config    shared.NewsConfig
	userAgent string
	metrics   *shared.ServiceMetrics
	logger    *logrus.Entry
}

func NewNewsService(config shared.NewsConfig, userAgent string) *NewsService {
	return &NewsService{
		config:    config,
		userAgent: userAgent,
		metrics:   shared.NewServiceMetrics(newsServiceName),
		logger:    logrus.WithField("component", newsServiceName),
	}
}

// LatestNews returns scraped headlines, or the fixed set when scraping is off or yields nothing
func (s *NewsService) LatestNews(ctx context.Context) []models.NewsItem {
	if strings.TrimSpace(s.config.SourceURL) == "" {
		return MockNews()
	}

	startTime := time.Now()
	items, err := s.scrape(ctx)
	s.metrics.RecordRequest(err == nil && len(items) > 0, time.Since(startTime))

	if err != nil {
		s.logger.WithError(err).WithField("source", s.config.SourceURL).Warn("News scrape failed, using default headlines")
		return MockNews()
	}
	if len(items) == 0 {
		s.logger.WithField("selector", s.config.Selector).Warn("News scrape matched nothing, using default headlines")
		return MockNews()
	}

	return items
}

func (s *NewsService) scrape(ctx context.Context) ([]models.NewsItem, error) {
	c := colly.NewCollector(
		colly.StdlibContext(ctx),
		colly.UserAgent(s.userAgent),
	)
	c.SetRequestTimeout(s.config.HTTPRequestTimeout)

	var (
		mu        sync.Mutex
		items     []models.NewsItem
		seen      = make(map[string]bool)
		scrapeErr error
	)

	source := sourceName(s.config.SourceURL)

	c.OnHTML(s.config.Selector, func(e *colly.HTMLElement) {
		title := strings.Join(strings.Fields(e.Text), " ")
		if title == "" {
			return
		}

		link := e.Request.AbsoluteURL(e.Attr("href"))

		mu.Lock()
		defer mu.Unlock()

		if len(items) >= s.config.MaxItems || seen[title] {
			return
		}
		seen[title] = true
		items = append(items, models.NewsItem{
			Title:  title,
			Source: source,
			URL:    link,
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		mu.Lock()
		defer mu.Unlock()
		scrapeErr = err
		s.logger.WithFields(logrus.Fields{
			"url":         r.Request.URL.String(),
			"status_code": r.StatusCode,
		}).WithError(err).Debug("News request failed")
	})

	if err := c.Visit(s.config.SourceURL); err != nil {
		return nil, err
	}
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	if scrapeErr != nil {
		return nil, scrapeErr
	}
	return items, nil
}

// Metrics exposes scrape metrics
func (s *NewsService) Metrics() *shared.ServiceMetrics {
	return s.metrics
}

func sourceName(rawURL string) string {
	host := rawURL
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	return strings.TrimPrefix(host, "www.")
}

// MockNews returns the default dashboard headlines
func MockNews() []models.NewsItem {
	return []models.NewsItem{
		{Title: "Stocks climb as tech leads broad rally", Source: "Market Wire", URL: "#"},
		{Title: "Treasury yields steady ahead of inflation data", Source: "Market Wire", URL: "#"},
		{Title: "Small caps outperform for third straight session", Source: "Market Wire", URL: "#"},
		{Title: "Energy shares slip as crude pulls back", Source: "Market Wire", URL: "#"},
	}
}
