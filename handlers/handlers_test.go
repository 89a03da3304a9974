package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fenilmodi00/market-pulse/models"
	"github.com/fenilmodi00/market-pulse/services"
	"github.com/fenilmodi00/market-pulse/shared"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	result *models.MoversResult
	err    error
}

func (f *stubFetcher) FetchTopMovers(context.Context, string) (*models.MoversResult, error) {
	return f.result, f.err
}

type stubNews struct{}

func (stubNews) LatestNews(context.Context) []models.NewsItem {
	return []models.NewsItem{{Title: "Stocks climb", Source: "Wire", URL: "https://example.com/a"}}
}

type stubSnapshots struct {
	limit int
	err   error
}

func (s *stubSnapshots) RecentSnapshots(_ context.Context, limit int) ([]models.MoverSnapshot, error) {
	s.limit = limit
	if s.err != nil {
		return nil, s.err
	}
	return []models.MoverSnapshot{{Gainers: []models.MoverRecord{}, Losers: []models.MoverRecord{}}}, nil
}

type stubRefreshRunner struct {
	err   error
	calls int
}

func (r *stubRefreshRunner) Run(context.Context) (*models.MoversResult, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return models.EmptyMoversResult(), nil
}

type stubCapturer struct {
	url string
}

func (c *stubCapturer) Capture(_ context.Context, url string) ([]byte, error) {
	c.url = url
	return []byte("\x89PNG\r\n\x1a\nfake"), nil
}

var sampleMovers = &models.MoversResult{
	Gainers: []models.MoverRecord{{Symbol: "AAA", Price: "10.00", ChangePercent: "5.50"}},
	Losers:  []models.MoverRecord{{Symbol: "ZZZ", Price: "1.50", ChangePercent: "-25.00"}},
}

func newTestApp(fetcher services.MoversFetcher, apiKey string, snapshots SnapshotLister) *fiber.App {
	marketData := services.NewMarketDataService()
	pipeline := services.NewMarketDataPipeline(fetcher, apiKey, marketData)

	app := fiber.New()
	dashboard := NewDashboardHandler(pipeline, marketData, stubNews{})
	market := NewMarketHandler(pipeline, marketData, snapshots)
	content := NewContentHandler(stubNews{}, marketData)

	app.Get("/", dashboard.GetDashboard)
	api := app.Group("/api/v1")
	api.Get("/market/movers", market.GetMovers)
	api.Get("/market/breadth", market.GetBreadth)
	api.Get("/market/chart", market.GetChart)
	api.Get("/market/indices", market.GetMarketIndices)
	api.Get("/market/snapshots", market.GetSnapshots)
	api.Get("/news", content.GetNews)
	api.Get("/blog", content.GetBlogPosts)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path string, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func decodeBody(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))
	return decoded
}

func TestGetMovers(t *testing.T) {
	app := newTestApp(&stubFetcher{result: sampleMovers}, "live-key", nil)

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/market/movers", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	decoded := decodeBody(t, body)
	assert.Equal(t, true, decoded["success"])
	data := decoded["data"].(map[string]interface{})
	gainers := data["gainers"].([]interface{})
	require.Len(t, gainers, 1)
	assert.Equal(t, "10.00", gainers[0].(map[string]interface{})["price"])
}

func TestGetMoversErrors(t *testing.T) {
	cases := []struct {
		name     string
		fetcher  *stubFetcher
		apiKey   string
		status   int
		category string
	}{
		{"missing key", &stubFetcher{}, "", fiber.StatusServiceUnavailable, "configuration"},
		{"rejected", &stubFetcher{err: shared.NewServiceError(shared.ErrorCategoryUpstreamRejected, "UPSTREAM_REJECTED", "Invalid API call.", "test", "fetch", false, nil)}, "live-key", fiber.StatusBadGateway, "upstream_rejected"},
		{"unclassified", &stubFetcher{err: errors.New("boom")}, "live-key", fiber.StatusInternalServerError, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(tc.fetcher, tc.apiKey, nil)

			resp, body := doRequest(t, app, http.MethodGet, "/api/v1/market/movers", nil)
			assert.Equal(t, tc.status, resp.StatusCode)

			decoded := decodeBody(t, body)
			assert.Equal(t, false, decoded["success"])
			assert.NotEmpty(t, decoded["error"])
			if tc.category != "" {
				assert.Equal(t, tc.category, decoded["category"])
			} else {
				assert.NotContains(t, decoded, "category")
			}
		})
	}
}

func TestGetBreadth(t *testing.T) {
	app := newTestApp(&stubFetcher{}, "live-key", nil)

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/market/breadth", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data := decodeBody(t, body)["data"].(map[string]interface{})
	assert.Equal(t, float64(3100), data["total"])
	shares := data["shares"].(map[string]interface{})
	assert.Equal(t, "81%", shares["advancing"])
	assert.Equal(t, "16%", shares["declining"])
	assert.Equal(t, "3%", shares["unchanged"])
}

func TestStaticWidgets(t *testing.T) {
	app := newTestApp(&stubFetcher{}, "live-key", nil)

	for _, path := range []string{"/api/v1/market/chart", "/api/v1/market/indices", "/api/v1/news", "/api/v1/blog"} {
		resp, body := doRequest(t, app, http.MethodGet, path, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, path)
		assert.Equal(t, true, decodeBody(t, body)["success"], path)
	}
}

func TestGetSnapshots(t *testing.T) {
	t.Run("database not configured", func(t *testing.T) {
		app := newTestApp(&stubFetcher{}, "live-key", nil)
		resp, body := doRequest(t, app, http.MethodGet, "/api/v1/market/snapshots", nil)
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "configuration", decodeBody(t, body)["category"])
	})

	t.Run("clamps limit", func(t *testing.T) {
		snapshots := &stubSnapshots{}
		app := newTestApp(&stubFetcher{}, "live-key", snapshots)

		resp, body := doRequest(t, app, http.MethodGet, "/api/v1/market/snapshots?limit=5000", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, 200, snapshots.limit)
		assert.Equal(t, float64(1), decodeBody(t, body)["count"])
	})

	t.Run("database error", func(t *testing.T) {
		snapshots := &stubSnapshots{err: shared.NewServiceError(shared.ErrorCategoryDatabase, "DATABASE_ERROR", "query failed", "test", "recent", false, nil)}
		app := newTestApp(&stubFetcher{}, "live-key", snapshots)

		resp, _ := doRequest(t, app, http.MethodGet, "/api/v1/market/snapshots", nil)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	})
}

func TestGetDashboard(t *testing.T) {
	app := newTestApp(&stubFetcher{result: sampleMovers}, "live-key", nil)

	resp, body := doRequest(t, app, http.MethodGet, "/", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/html")

	page := string(body)
	assert.Contains(t, page, "AAA")
	assert.Contains(t, page, "$10.00")
	assert.Contains(t, page, "-25.00%")
	assert.Contains(t, page, "81%")
	assert.Contains(t, page, "Stocks climb")
	assert.Contains(t, page, "data-chart=")
}

func TestGetDashboardShowsErrorInAllWidgets(t *testing.T) {
	app := newTestApp(&stubFetcher{}, "", nil)

	resp, body := doRequest(t, app, http.MethodGet, "/", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, strings.Count(string(body), services.MissingAPIKeyMessage))
}

func TestAdminRoutes(t *testing.T) {
	capturer := &stubCapturer{}
	admin := NewAdminHandler(&stubRefreshRunner{}, capturer, "http://127.0.0.1:8080/")

	app := fiber.New()
	group := app.Group("/admin", RequireAdminToken("s3cret"))
	group.Post("/refresh", admin.TriggerRefresh)
	group.Post("/capture", admin.CaptureDashboard)

	resp, body := doRequest(t, app, http.MethodPost, "/admin/refresh", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "authorization", decodeBody(t, body)["category"])

	resp, _ = doRequest(t, app, http.MethodPost, "/admin/refresh", map[string]string{AdminTokenHeader: "wrong"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, body = doRequest(t, app, http.MethodPost, "/admin/refresh", map[string]string{AdminTokenHeader: "s3cret"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decodeBody(t, body)["success"])

	resp, body = doRequest(t, app, http.MethodPost, "/admin/capture", map[string]string{AdminTokenHeader: "s3cret"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get(fiber.HeaderContentType))
	assert.True(t, strings.HasPrefix(string(body), "\x89PNG"))
	assert.Equal(t, "http://127.0.0.1:8080/", capturer.url)
}

func TestAdminRoutesDisabledWithoutToken(t *testing.T) {
	runner := &stubRefreshRunner{}
	capturer := &stubCapturer{}
	admin := NewAdminHandler(runner, capturer, "http://127.0.0.1:8080/")

	app := fiber.New()
	group := app.Group("/admin", RequireAdminToken(""))
	group.Post("/refresh", admin.TriggerRefresh)
	group.Post("/capture", admin.CaptureDashboard)

	for _, path := range []string{"/admin/refresh", "/admin/capture"} {
		resp, body := doRequest(t, app, http.MethodPost, path, map[string]string{AdminTokenHeader: ""})
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode, path)
		payload := decodeBody(t, body)
		assert.Equal(t, AdminDisabledMessage, payload["error"], path)
		assert.Equal(t, "configuration", payload["category"], path)
	}

	assert.Zero(t, runner.calls)
	assert.Empty(t, capturer.url)
}

func TestAdminRefreshReportsJobError(t *testing.T) {
	admin := NewAdminHandler(&stubRefreshRunner{err: services.NewMissingAPIKeyError()}, &stubCapturer{}, "http://127.0.0.1:8080/")

	app := fiber.New()
	app.Post("/admin/refresh", RequireAdminToken("s3cret"), admin.TriggerRefresh)

	resp, body := doRequest(t, app, http.MethodPost, "/admin/refresh", map[string]string{AdminTokenHeader: "s3cret"})
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, services.MissingAPIKeyMessage, decodeBody(t, body)["error"])
}

func TestGetMetrics(t *testing.T) {
	pipelineMetrics := shared.NewServiceMetrics("MarketDataPipeline")
	pipelineMetrics.RecordRequest(true, 0)

	handler := NewMetricsHandler(map[string]*shared.ServiceMetrics{"pipeline": pipelineMetrics}, nil, nil)
	app := fiber.New()
	app.Get("/metrics", handler.GetMetrics)
	app.Delete("/metrics", handler.ResetMetrics)

	resp, body := doRequest(t, app, http.MethodGet, "/metrics", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := decodeBody(t, body)["data"].(map[string]interface{})
	pipeline := data["services"].(map[string]interface{})["pipeline"].(map[string]interface{})
	assert.Equal(t, float64(1), pipeline["total_requests"])
	assert.NotContains(t, data, "database_stats")

	resp, _ = doRequest(t, app, http.MethodDelete, "/metrics", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Zero(t, pipelineMetrics.GetSnapshot().TotalRequests)
}
