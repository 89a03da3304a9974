package jobs

import (
	"context"
	"time"

	"github.com/fenilmodi00/market-pulse/config"
	"github.com/fenilmodi00/market-pulse/models"
	"github.com/fenilmodi00/market-pulse/services"
	"github.com/sirupsen/logrus"
)

// MoversRefresher re-fetches movers, bypassing any cached result
type MoversRefresher interface {
	Refresh(ctx context.Context, apiKey string) (*models.MoversResult, error)
}

type MoversRefreshJob struct {
	Refresher MoversRefresher
	APIKey    string
	Timeout   time.Duration
}

func NewMoversRefreshJob(refresher MoversRefresher, apiKey string, timeout time.Duration) *MoversRefreshJob {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &MoversRefreshJob{
		Refresher: refresher,
		APIKey:    apiKey,
		Timeout:   timeout,
	}
}

// Start runs the job immediately and then every interval until ctx is done
func (j *MoversRefreshJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		logrus.Info("Movers refresh job disabled (REFRESH_INTERVAL_MINUTES=0)")
		return
	}

	logrus.Infof("Starting Movers Refresh Job (runs every %v)...", interval)
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		j.Run(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				j.Run(ctx)
			}
		}
	}()
}

// Run refreshes the cached movers once
func (j *MoversRefreshJob) Run(ctx context.Context) (*models.MoversResult, error) {
	if !config.IsUsableAPIKey(j.APIKey) {
		logrus.Warn("Movers Refresh Job skipped: no usable QUOTES_API_KEY")
		return nil, services.NewMissingAPIKeyError()
	}

	startTime := time.Now()
	ctx, cancel := context.WithTimeout(ctx, j.Timeout)
	defer cancel()

	result, err := j.Refresher.Refresh(ctx, j.APIKey)
	if err != nil {
		logrus.WithError(err).Error("Movers Refresh Job failed")
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"gainers":  len(result.Gainers),
		"losers":   len(result.Losers),
		"duration": time.Since(startTime),
	}).Info("Movers Refresh Job completed")

	return result, nil
}
