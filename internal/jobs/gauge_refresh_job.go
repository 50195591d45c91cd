package jobs

import (
	"context"
	"time"

	"winterops/stationboard/internal/db/repositories"
	"winterops/stationboard/internal/logging"
	"winterops/stationboard/internal/metrics"
	"winterops/stationboard/internal/services"
)

// GaugeRefreshJob keeps the active-aircraft gauge current by
// recounting allocations active right now
type GaugeRefreshJob struct {
	allocations *services.AllocationService
	metricsReg  *metrics.MetricsRegistry
}

// NewGaugeRefreshJob creates a new gauge refresh job instance
func NewGaugeRefreshJob(allocations *services.AllocationService, metricsReg *metrics.MetricsRegistry) *GaugeRefreshJob {
	return &GaugeRefreshJob{allocations: allocations, metricsReg: metricsReg}
}

// Run executes one refresh pass
func (j *GaugeRefreshJob) Run(ctx context.Context) error {
	active, err := j.allocations.ActiveAt(ctx, time.Now(), repositories.ActiveFilters{})
	if err != nil {
		logging.Error("Active aircraft gauge refresh failed", "error", err.Error())
		return err
	}

	j.metricsReg.ActiveAircraft.Set(float64(len(active)))
	return nil
}

// RunScheduled runs the refresh on an interval until ctx is done
func (j *GaugeRefreshJob) RunScheduled(ctx context.Context, interval time.Duration) {
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
