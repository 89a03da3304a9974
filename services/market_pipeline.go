package services

import (
	"context"
	"errors"
	"time"

	"github.com/fenilmodi00/market-pulse/config"
	"github.com/fenilmodi00/market-pulse/models"
	"github.com/fenilmodi00/market-pulse/render"
	"github.com/fenilmodi00/market-pulse/shared"
	"github.com/sirupsen/logrus"
)

const pipelineServiceName = "MarketDataPipeline"

// MissingAPIKeyMessage is shown when no usable quotes credential is configured
const MissingAPIKeyMessage = "Market data is not configured: set QUOTES_API_KEY to a valid key."

// PipelineState is the outcome of one pipeline run.
type PipelineState string

const (
	StatePending   PipelineState = "pending"
	StateSucceeded PipelineState = "succeeded"
	StateFailed    PipelineState = "failed"
)

// MarketDataPipeline fetches top movers and renders them with the breadth widget.
type MarketDataPipeline struct {
	fetcher    MoversFetcher
	apiKey     string
	marketData *MarketDataService
	metrics    *shared.ServiceMetrics
	logger     *logrus.Entry
}

// NewMarketDataPipeline creates a pipeline. apiKey is validated on every run.
func NewMarketDataPipeline(fetcher MoversFetcher, apiKey string, marketData *MarketDataService) *MarketDataPipeline {
	return &MarketDataPipeline{
		fetcher:    fetcher,
		apiKey:     apiKey,
		marketData: marketData,
		metrics:    shared.NewServiceMetrics(pipelineServiceName),
		logger:     logrus.WithField("component", pipelineServiceName),
	}
}

// FetchMarketData runs the pipeline once into sinks. Any failure is written to all
// three sinks as one message; the returned error is for logging only.
func (p *MarketDataPipeline) FetchMarketData(ctx context.Context, sinks render.MarketSinks) (PipelineState, error) {
	startTime := time.Now()
	p.logger.WithField("state", StatePending).Debug("Market data pipeline started")

	movers, err := p.LoadMovers(ctx)
	if err != nil {
		p.fail(sinks, err, startTime)
		return StateFailed, err
	}

	render.RenderMovers(movers, sinks.Gainers, sinks.Losers)
	render.RenderBreadth(p.marketData.MockBreadth(), sinks.Breadth)

	p.metrics.RecordRequest(true, time.Since(startTime))
	p.logger.WithFields(logrus.Fields{
		"state":       StateSucceeded,
		"well_formed": movers.IsWellFormed(),
		"duration":    time.Since(startTime),
	}).Debug("Market data pipeline finished")

	return StateSucceeded, nil
}

// LoadMovers validates the credential and fetches movers.
func (p *MarketDataPipeline) LoadMovers(ctx context.Context) (*models.MoversResult, error) {
	if !config.IsUsableAPIKey(p.apiKey) {
		return nil, NewMissingAPIKeyError()
	}

	return p.fetcher.FetchTopMovers(ctx, p.apiKey)
}

// NewMissingAPIKeyError reports an absent or placeholder quotes credential
func NewMissingAPIKeyError() *shared.ServiceError {
	return shared.NewServiceError(
		shared.ErrorCategoryConfiguration,
		"MISSING_API_KEY",
		MissingAPIKeyMessage,
		pipelineServiceName,
		"load_movers",
		false,
		nil,
	)
}

func (p *MarketDataPipeline) fail(sinks render.MarketSinks, err error, startTime time.Time) {
	category := shared.CategoryOf(err)
	if category == "" {
		category = "unclassified"
	}

	p.metrics.RecordRequest(false, time.Since(startTime))
	p.metrics.IncrementCounter(string(category))

	p.logger.WithFields(logrus.Fields{
		"state":          StateFailed,
		"error_category": category,
		"duration":       time.Since(startTime),
	}).WithError(err).Warn("Market data pipeline failed")

	var serviceErr *shared.ServiceError
	if errors.As(err, &serviceErr) {
		serviceErr.LogError()
	}

	sinks.ShowMessage(shared.UserMessage(err))
}

// Metrics exposes pipeline run metrics
func (p *MarketDataPipeline) Metrics() *shared.ServiceMetrics {
	return p.metrics
}
