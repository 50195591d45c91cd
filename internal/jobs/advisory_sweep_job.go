package jobs

import (
	"context"
	"time"

	"winterops/stationboard/internal/db/repositories"
	"winterops/stationboard/internal/logging"
)

// AdvisorySweepJob removes weather advisories that closed long ago.
// Advisories are auxiliary data; nothing references them after their
// window, so they are safe to drop once older than the retention.
type AdvisorySweepJob struct {
	repo      *repositories.AdvisoryRepository
	retention time.Duration
}

// NewAdvisorySweepJob creates a new sweep job instance
func NewAdvisorySweepJob(repo *repositories.AdvisoryRepository, retention time.Duration) *AdvisorySweepJob {
	return &AdvisorySweepJob{repo: repo, retention: retention}
}

// Run executes one sweep pass
func (j *AdvisorySweepJob) Run(ctx context.Context) error {
	cutoff := time.Now().Add(-j.retention)

	swept, err := j.repo.DeleteExpiredBefore(ctx, cutoff)
	if err != nil {
		logging.Error("Advisory sweep failed", "error", err.Error())
		return err
	}

	if swept > 0 {
		logging.Info("Advisory sweep completed",
			"swept", swept,
			"cutoff", cutoff.Format(time.RFC3339),
		)
	}
	return nil
}

// RunScheduled runs the sweep on an interval until ctx is done
func (j *AdvisorySweepJob) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = j.Run(ctx)
		}
	}
}
