package jobs

import (
	"context"
	"time"

	"winterops/stationboard/internal/db/repositories"
	"winterops/stationboard/internal/metrics"
	"winterops/stationboard/internal/services"
)

// JobsContainer holds the running background jobs
type JobsContainer struct {
	AdvisorySweep *AdvisorySweepJob
	GaugeRefresh  *GaugeRefreshJob
}

// InitializeJobs initializes and starts all background jobs
func InitializeJobs(
	ctx context.Context,
	advisoryRepo *repositories.AdvisoryRepository,
	allocations *services.AllocationService,
	metricsReg *metrics.MetricsRegistry,
) *JobsContainer {
	sweep := NewAdvisorySweepJob(advisoryRepo, 7*24*time.Hour)
	refresh := NewGaugeRefreshJob(allocations, metricsReg)

	go sweep.RunScheduled(ctx, 1*time.Hour)
	go refresh.RunScheduled(ctx, 1*time.Minute)

	return &JobsContainer{
		AdvisorySweep: sweep,
		GaugeRefresh:  refresh,
	}
}
