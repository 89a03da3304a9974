package services

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/fenilmodi00/market-pulse/database"
	"github.com/fenilmodi00/market-pulse/models"
	"github.com/fenilmodi00/market-pulse/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRecorder struct {
	recorded []*models.MoversResult
	err      error
}

func (r *stubRecorder) RecordMovers(_ context.Context, result *models.MoversResult) (*models.MoverSnapshot, error) {
	r.recorded = append(r.recorded, result)
	if r.err != nil {
		return nil, r.err
	}
	return &models.MoverSnapshot{Gainers: result.Gainers, Losers: result.Losers}, nil
}

func TestSnapshotRecordingFetcher(t *testing.T) {
	movers := &models.MoversResult{
		Gainers: []models.MoverRecord{{Symbol: "AAA", Price: "10.00", ChangePercent: "5.50"}},
		Losers:  []models.MoverRecord{},
	}

	t.Run("records non-empty results", func(t *testing.T) {
		recorder := &stubRecorder{}
		fetcher := NewSnapshotRecordingFetcher(&stubMoversFetcher{result: movers}, recorder)

		result, err := fetcher.FetchTopMovers(context.Background(), "k")
		require.NoError(t, err)
		assert.Same(t, movers, result)
		assert.Len(t, recorder.recorded, 1)
	})

	t.Run("skips empty results", func(t *testing.T) {
		recorder := &stubRecorder{}
		fetcher := NewSnapshotRecordingFetcher(&stubMoversFetcher{result: models.EmptyMoversResult()}, recorder)

		_, err := fetcher.FetchTopMovers(context.Background(), "k")
		require.NoError(t, err)
		assert.Empty(t, recorder.recorded)
	})

	t.Run("skips failed fetches", func(t *testing.T) {
		recorder := &stubRecorder{}
		fetcher := NewSnapshotRecordingFetcher(&stubMoversFetcher{err: errors.New("down")}, recorder)

		_, err := fetcher.FetchTopMovers(context.Background(), "k")
		require.Error(t, err)
		assert.Empty(t, recorder.recorded)
	})

	t.Run("recording errors do not fail the fetch", func(t *testing.T) {
		recorder := &stubRecorder{err: errors.New("insert failed")}
		fetcher := NewSnapshotRecordingFetcher(&stubMoversFetcher{result: movers}, recorder)

		result, err := fetcher.FetchTopMovers(context.Background(), "k")
		require.NoError(t, err)
		assert.Same(t, movers, result)
	})
}

func TestClampSnapshotLimit(t *testing.T) {
	assert.Equal(t, defaultSnapshotLimit, ClampSnapshotLimit(0))
	assert.Equal(t, defaultSnapshotLimit, ClampSnapshotLimit(-4))
	assert.Equal(t, 5, ClampSnapshotLimit(5))
	assert.Equal(t, maxSnapshotLimit, ClampSnapshotLimit(maxSnapshotLimit+1))
}

func TestSnapshotServiceRejectsMalformedResult(t *testing.T) {
	service := NewSnapshotService(nil)

	_, err := service.RecordMovers(context.Background(), &models.MoversResult{})
	require.Error(t, err)
	assert.True(t, shared.HasCategory(err, shared.ErrorCategoryDatabase))
}

func TestSnapshotServiceRoundTrip(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("Skipping snapshot database tests - TEST_DATABASE_URL not set")
	}

	config := shared.NewDefaultUnifiedConfiguration().Database
	config.URL = dbURL
	db, err := database.Open(&config)
	if err != nil {
		t.Skipf("Skipping snapshot database tests - database not available: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, database.Migrate(ctx, db))

	service := NewSnapshotService(db)
	movers := &models.MoversResult{
		Gainers: []models.MoverRecord{{Symbol: "AAA", Price: "10.00", ChangePercent: "5.50"}},
		Losers:  []models.MoverRecord{{Symbol: "ZZZ", Price: "1.50", ChangePercent: "-25.00"}},
	}

	recorded, err := service.RecordMovers(ctx, movers)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = db.Exec(`DELETE FROM mover_snapshots WHERE id = $1`, recorded.ID)
	})

	snapshots, err := service.RecentSnapshots(ctx, 200)
	require.NoError(t, err)

	var found *models.MoverSnapshot
	for i := range snapshots {
		if snapshots[i].ID == recorded.ID {
			found = &snapshots[i]
		}
	}
	require.NotNil(t, found, "recorded snapshot is listed")
	assert.Equal(t, movers.Gainers, found.Gainers)
	assert.Equal(t, movers.Losers, found.Losers)

	deleted, err := service.DeleteOlderThan(ctx, recorded.FetchedAt.Add(time.Second))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, deleted, int64(1))
}
