package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fenilmodi00/market-pulse/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-key-123"

func newTestQuotesClient(baseURL string) *QuotesClient {
	return NewQuotesClient(shared.ServiceConfig{
		BaseURL:            baseURL,
		HTTPRequestTimeout: 5 * time.Second,
		UserAgent:          "market-pulse-test",
	}, shared.NewHTTPClientFactory(5*time.Second))
}

func newQuotesServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, "TOP_GAINERS_LOSERS", r.URL.Query().Get("function"))
		assert.Equal(t, testAPIKey, r.URL.Query().Get("apikey"))
		assert.Equal(t, "market-pulse-test", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestQuotesClientFetchTopMovers(t *testing.T) {
	server := newQuotesServer(t, http.StatusOK, `{
		"top_gainers": [
			{"ticker": "AAA", "price": "10", "change_amount": "0.52", "change_percentage": "5.5%", "volume": "100"},
			{"ticker": "BBB", "price": "2.345", "change_amount": "0.1", "change_percentage": "4.1%", "volume": "100"}
		],
		"top_losers": [
			{"ticker": "ZZZ", "price": "1.5", "change_amount": "-0.5", "change_percentage": "-25%", "volume": "100"}
		]
	}`)

	client := newTestQuotesClient(server.URL)
	result, err := client.FetchTopMovers(context.Background(), testAPIKey)
	require.NoError(t, err)
	require.Len(t, result.Gainers, 2)
	require.Len(t, result.Losers, 1)

	assert.Equal(t, "AAA", result.Gainers[0].Symbol)
	assert.Equal(t, "10.00", result.Gainers[0].Price)
	assert.Equal(t, "5.50", result.Gainers[0].ChangePercent)
	assert.Equal(t, "BBB", result.Gainers[1].Symbol)
	assert.Equal(t, "-25.00", result.Losers[0].ChangePercent)

	snapshot := client.Metrics().GetSnapshot()
	assert.Equal(t, int64(1), snapshot.SuccessfulRequests)
}

func TestQuotesClientRateLimitNote(t *testing.T) {
	note := "Thank you for using Alpha Vantage! Please consider spreading out your free API requests more sparingly (1 request per second)."
	server := newQuotesServer(t, http.StatusOK, `{"Note": "`+note+`"}`)

	result, err := newTestQuotesClient(server.URL).FetchTopMovers(context.Background(), testAPIKey)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, shared.HasCategory(err, shared.ErrorCategoryUpstreamRejected))
	assert.Equal(t, note, shared.UserMessage(err))
}

func TestQuotesClientBlankRejectionUsesFallbackMessage(t *testing.T) {
	for _, body := range []string{`{"Note": ""}`, `{"Note": null}`, `{"Information": "   "}`} {
		server := newQuotesServer(t, http.StatusOK, body)

		_, err := newTestQuotesClient(server.URL).FetchTopMovers(context.Background(), testAPIKey)
		require.Error(t, err, body)
		assert.True(t, shared.HasCategory(err, shared.ErrorCategoryUpstreamRejected), body)
		assert.Equal(t, RejectedFallbackMessage, shared.UserMessage(err), body)
	}
}

func TestQuotesClientUnexpectedShapeDegradesToEmpty(t *testing.T) {
	server := newQuotesServer(t, http.StatusOK, `{"metadata": "no arrays here"}`)

	result, err := newTestQuotesClient(server.URL).FetchTopMovers(context.Background(), testAPIKey)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.NotNil(t, result.Gainers)
	assert.NotNil(t, result.Losers)
	assert.Empty(t, result.Gainers)
	assert.Empty(t, result.Losers)
}

func TestQuotesClientInvalidJSON(t *testing.T) {
	server := newQuotesServer(t, http.StatusOK, `not json at all`)

	_, err := newTestQuotesClient(server.URL).FetchTopMovers(context.Background(), testAPIKey)
	require.Error(t, err)
	assert.True(t, shared.HasCategory(err, shared.ErrorCategoryParse))
}

func TestQuotesClientHTTPStatus(t *testing.T) {
	cases := map[int]bool{
		http.StatusInternalServerError: true,
		http.StatusTooManyRequests:     true,
		http.StatusForbidden:           false,
	}

	for status, retryable := range cases {
		server := newQuotesServer(t, status, `{}`)

		_, err := newTestQuotesClient(server.URL).FetchTopMovers(context.Background(), testAPIKey)
		require.Error(t, err, "status %d", status)
		assert.True(t, shared.HasCategory(err, shared.ErrorCategoryNetwork), "status %d", status)
		assert.Equal(t, retryable, shared.IsRetryableError(err), "status %d", status)
	}
}

func TestQuotesClientTransportErrorHidesKey(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	_, err := newTestQuotesClient(baseURL).FetchTopMovers(context.Background(), testAPIKey)
	require.Error(t, err)
	assert.True(t, shared.HasCategory(err, shared.ErrorCategoryNetwork))
	assert.NotContains(t, err.Error(), testAPIKey)
	assert.NotContains(t, shared.UserMessage(err), testAPIKey)
}

func TestQuotesClientInvalidBaseURL(t *testing.T) {
	_, err := newTestQuotesClient("not a url").FetchTopMovers(context.Background(), testAPIKey)
	require.Error(t, err)
	assert.True(t, shared.HasCategory(err, shared.ErrorCategoryConfiguration))
}

func TestQuotesClientCancelledContext(t *testing.T) {
	server := newQuotesServer(t, http.StatusOK, `{"top_gainers": [], "top_losers": []}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestQuotesClient(server.URL).FetchTopMovers(ctx, testAPIKey)
	require.Error(t, err)
	assert.True(t, shared.HasCategory(err, shared.ErrorCategoryNetwork))
	assert.ErrorIs(t, err, context.Canceled)
}
