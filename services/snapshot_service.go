package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fenilmodi00/market-pulse/models"
	"github.com/fenilmodi00/market-pulse/shared"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	snapshotServiceName  = "SnapshotService"
	defaultSnapshotLimit = 20
	maxSnapshotLimit     = 200
)

// SnapshotService persists successful movers fetches
type SnapshotService struct {
	DB     *sql.DB
	logger *logrus.Entry
}

func NewSnapshotService(db *sql.DB) *SnapshotService {
	return &SnapshotService{
		DB:     db,
		logger: logrus.WithField("component", snapshotServiceName),
	}
}

// RecordMovers inserts one snapshot row and returns it
func (s *SnapshotService) RecordMovers(ctx context.Context, result *models.MoversResult) (*models.MoverSnapshot, error) {
	if !result.IsWellFormed() {
		return nil, databaseError("record_movers", "refusing to record malformed movers result", nil)
	}

	gainers, err := json.Marshal(result.Gainers)
	if err != nil {
		return nil, databaseError("record_movers", "failed to encode gainers", err)
	}
	losers, err := json.Marshal(result.Losers)
	if err != nil {
		return nil, databaseError("record_movers", "failed to encode losers", err)
	}

	snapshot := &models.MoverSnapshot{
		ID:      uuid.New(),
		Gainers: result.Gainers,
		Losers:  result.Losers,
	}

	query := `
		INSERT INTO mover_snapshots (id, fetched_at, gainers, losers)
		VALUES ($1, NOW(), $2, $3)
		RETURNING fetched_at
	`

	err = s.DB.QueryRowContext(ctx, query, snapshot.ID, gainers, losers).Scan(&snapshot.FetchedAt)
	if err != nil {
		return nil, databaseError("record_movers", "failed to insert movers snapshot", err)
	}

	s.logger.WithFields(logrus.Fields{
		"snapshot_id": snapshot.ID,
		"gainers":     len(snapshot.Gainers),
		"losers":      len(snapshot.Losers),
	}).Debug("Recorded movers snapshot")

	return snapshot, nil
}

// RecentSnapshots returns the newest snapshots first
func (s *SnapshotService) RecentSnapshots(ctx context.Context, limit int) ([]models.MoverSnapshot, error) {
	limit = ClampSnapshotLimit(limit)

	query := `
		SELECT id, fetched_at, gainers, losers
		FROM mover_snapshots
		ORDER BY fetched_at DESC
		LIMIT $1
	`

	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, databaseError("recent_snapshots", "failed to query movers snapshots", err)
	}
	defer rows.Close()

	snapshots := make([]models.MoverSnapshot, 0, limit)
	for rows.Next() {
		var snapshot models.MoverSnapshot
		var gainers, losers []byte

		if err := rows.Scan(&snapshot.ID, &snapshot.FetchedAt, &gainers, &losers); err != nil {
			return nil, databaseError("recent_snapshots", "failed to scan movers snapshot", err)
		}
		if err := json.Unmarshal(gainers, &snapshot.Gainers); err != nil {
			return nil, databaseError("recent_snapshots", "failed to decode stored gainers", err)
		}
		if err := json.Unmarshal(losers, &snapshot.Losers); err != nil {
			return nil, databaseError("recent_snapshots", "failed to decode stored losers", err)
		}

		snapshots = append(snapshots, snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, databaseError("recent_snapshots", "error iterating movers snapshots", err)
	}

	return snapshots, nil
}

// DeleteOlderThan removes snapshots fetched before cutoff
func (s *SnapshotService) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM mover_snapshots WHERE fetched_at < $1`, cutoff)
	if err != nil {
		return 0, databaseError("delete_older_than", "failed to delete old snapshots", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, databaseError("delete_older_than", "failed to count deleted snapshots", err)
	}

	return deleted, nil
}

// ClampSnapshotLimit keeps a requested page size within bounds
func ClampSnapshotLimit(limit int) int {
	if limit <= 0 {
		return defaultSnapshotLimit
	}
	if limit > maxSnapshotLimit {
		return maxSnapshotLimit
	}
	return limit
}

func databaseError(operation, message string, cause error) *shared.ServiceError {
	if cause != nil {
		message = fmt.Sprintf("%s: %v", message, cause)
	}
	return shared.NewServiceError(
		shared.ErrorCategoryDatabase,
		"DATABASE_ERROR",
		message,
		snapshotServiceName,
		operation,
		false,
		cause,
	)
}

// MoversRecorder stores a successful movers fetch
type MoversRecorder interface {
	RecordMovers(ctx context.Context, result *models.MoversResult) (*models.MoverSnapshot, error)
}

// SnapshotRecordingFetcher records every non-empty upstream result.
// Recording failures are logged and never fail the fetch.
type SnapshotRecordingFetcher struct {
	fetcher  MoversFetcher
	recorder MoversRecorder
	logger   *logrus.Entry
}

func NewSnapshotRecordingFetcher(fetcher MoversFetcher, recorder MoversRecorder) *SnapshotRecordingFetcher {
	return &SnapshotRecordingFetcher{
		fetcher:  fetcher,
		recorder: recorder,
		logger:   logrus.WithField("component", "SnapshotRecordingFetcher"),
	}
}

func (f *SnapshotRecordingFetcher) FetchTopMovers(ctx context.Context, apiKey string) (*models.MoversResult, error) {
	result, err := f.fetcher.FetchTopMovers(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	if result.IsWellFormed() && len(result.Gainers)+len(result.Losers) > 0 {
		if _, recordErr := f.recorder.RecordMovers(ctx, result); recordErr != nil {
			f.logger.WithError(recordErr).Warn("Failed to record movers snapshot")
		}
	}

	return result, nil
}
