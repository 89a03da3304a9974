package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fenilmodi00/market-pulse/models"
	"github.com/fenilmodi00/market-pulse/shared"
	"github.com/sirupsen/logrus"
)

const (
	topMoversFunction  = "TOP_GAINERS_LOSERS"
	maxQuotesBodyBytes = 4 << 20
)

// RejectedFallbackMessage is shown when the provider rejects a request without saying why
const RejectedFallbackMessage = "Market data provider rejected the request."

// MoversFetcher retrieves the current top movers.
type MoversFetcher interface {
	FetchTopMovers(ctx context.Context, apiKey string) (*models.MoversResult, error)
}

// QuotesClient talks to the TOP_GAINERS_LOSERS quotes endpoint.
// It never retries; cancellation comes from ctx and the client timeout.
type QuotesClient struct {
	baseURL     string
	userAgent   string
	httpClient  *http.Client
	rateLimiter *shared.HTTPRequestRateLimiter
	metrics     *shared.ServiceMetrics
	logger      *logrus.Entry
}

// NewQuotesClient creates a client from the quotes service configuration
func NewQuotesClient(cfg shared.ServiceConfig, clientFactory *shared.HTTPClientFactory) *QuotesClient {
	return &QuotesClient{
		baseURL:     cfg.BaseURL,
		userAgent:   cfg.UserAgent,
		httpClient:  clientFactory.CreateOptimizedHTTPClient(cfg.HTTPRequestTimeout),
		rateLimiter: shared.NewHTTPRequestRateLimiter(cfg.RequestRateLimit),
		metrics:     shared.NewServiceMetrics(quotesServiceName),
		logger:      logrus.WithField("component", quotesServiceName),
	}
}

// FetchTopMovers issues one GET and returns normalized movers.
// An unexpected payload shape degrades to an empty result instead of an error.
func (c *QuotesClient) FetchTopMovers(ctx context.Context, apiKey string) (*models.MoversResult, error) {
	startTime := time.Now()
	result, err := c.fetchTopMovers(ctx, apiKey)
	c.metrics.RecordRequest(err == nil, time.Since(startTime))
	if err != nil {
		c.metrics.IncrementCounter(string(shared.CategoryOf(err)))
	}
	return result, err
}

func (c *QuotesClient) fetchTopMovers(ctx context.Context, apiKey string) (*models.MoversResult, error) {
	endpoint, err := c.endpoint(apiKey)
	if err != nil {
		return nil, err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, networkError("RATE_LIMIT_WAIT", "request cancelled while waiting for rate limiter", err)
	}

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	decoded, err := decodeTopMoversPayload(body)
	if err != nil {
		return nil, err
	}

	logger := c.logger.WithField("payload_kind", decoded.Kind.String())

	switch decoded.Kind {
	case payloadRejected:
		logger.WithField("upstream_message", decoded.Message).Warn("Quotes API rejected the request")
		message := strings.TrimSpace(decoded.Message)
		if message == "" {
			message = RejectedFallbackMessage
		}
		return nil, shared.NewServiceError(
			shared.ErrorCategoryUpstreamRejected,
			"UPSTREAM_REJECTED",
			message,
			quotesServiceName,
			"fetch_top_movers",
			false,
			nil,
		)
	case payloadUnexpectedShape:
		logger.Warn("Quotes API response lacks top_gainers/top_losers arrays, returning empty movers")
		return models.EmptyMoversResult(), nil
	}

	gainers, err := normalizeMovers(decoded.Gainers)
	if err != nil {
		return nil, err
	}
	losers, err := normalizeMovers(decoded.Losers)
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"gainers":      len(gainers),
		"losers":       len(losers),
		"last_updated": decoded.LastUpdated,
	}).Debug("Fetched top movers")

	return &models.MoversResult{Gainers: gainers, Losers: losers}, nil
}

func (c *QuotesClient) endpoint(apiKey string) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", shared.NewServiceError(
			shared.ErrorCategoryConfiguration,
			"INVALID_BASE_URL",
			fmt.Sprintf("invalid quotes base URL %q", c.baseURL),
			quotesServiceName,
			"fetch_top_movers",
			false,
			err,
		)
	}

	base.Path = strings.TrimRight(base.Path, "/") + "/query"
	query := url.Values{}
	query.Set("function", topMoversFunction)
	query.Set("apikey", apiKey)
	base.RawQuery = query.Encode()
	return base.String(), nil
}

func (c *QuotesClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, networkError("REQUEST_BUILD", "failed to build quotes request", err)
	}
	shared.SetJSONRequestHeaders(request, c.userAgent)

	c.logger.WithField("host", request.URL.Host).Debug("Requesting top movers")

	response, err := c.httpClient.Do(request)
	if err != nil {
		// url.Error carries the full URL including the key
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, networkError("TRANSPORT", fmt.Sprintf("failed to reach quotes API: %v", err), err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		serviceErr := networkError("HTTP_STATUS",
			fmt.Sprintf("quotes API returned HTTP %d: %s", response.StatusCode, http.StatusText(response.StatusCode)), nil)
		serviceErr.Retryable = response.StatusCode == http.StatusTooManyRequests || response.StatusCode >= 500
		return nil, serviceErr
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, maxQuotesBodyBytes))
	if err != nil {
		return nil, networkError("READ_BODY", "failed to read quotes response body", err)
	}
	return body, nil
}

// Metrics exposes request metrics for the quotes endpoint
func (c *QuotesClient) Metrics() *shared.ServiceMetrics {
	return c.metrics
}

func networkError(code, message string, cause error) *shared.ServiceError {
	return shared.NewServiceError(
		shared.ErrorCategoryNetwork,
		code,
		message,
		quotesServiceName,
		"fetch_top_movers",
		true,
		cause,
	)
}
