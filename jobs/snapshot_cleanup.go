package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// SnapshotPruner deletes snapshots older than a cutoff
type SnapshotPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type SnapshotCleanupJob struct {
	Snapshots SnapshotPruner
	Retention time.Duration
	now       func() time.Time
}

func NewSnapshotCleanupJob(snapshots SnapshotPruner, retention time.Duration) *SnapshotCleanupJob {
	return &SnapshotCleanupJob{
		Snapshots: snapshots,
		Retention: retention,
		now:       time.Now,
	}
}

// Run deletes snapshots past the retention window and returns how many were removed
func (j *SnapshotCleanupJob) Run(ctx context.Context) (int64, error) {
	logrus.Info("Starting Snapshot Cleanup Job")
	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	cutoff := j.now().Add(-j.Retention)
	deleted, err := j.Snapshots.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		logrus.WithError(err).Error("Snapshot Cleanup Job failed")
		return 0, err
	}

	logrus.WithFields(logrus.Fields{
		"deleted": deleted,
		"cutoff":  cutoff,
	}).Info("Snapshot Cleanup Job completed")
	return deleted, nil
}
