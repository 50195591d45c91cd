package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"winterops/stationboard/internal/common"
	"winterops/stationboard/internal/db/repositories"
	"winterops/stationboard/internal/events"
	"winterops/stationboard/internal/logging"
	"winterops/stationboard/internal/metrics"
	"winterops/stationboard/internal/models/dtos/responses"

	"golang.org/x/sync/singleflight"
)

const summaryCacheTTL = 30 * time.Second

// SummaryService derives point-in-time aggregates (counts by station
// and carrier) from the allocation store. Every count comes from the
// same ActiveAt query the listing views use, so "aircraft at station X
// at time T" is identical everywhere. Results are cached in an
// explicitly owned cache that is flushed on any allocation change.
type SummaryService struct {
	allocations *AllocationService
	cache       *common.CacheService
	metricsReg  *metrics.MetricsRegistry
	group       singleflight.Group
}

func NewSummaryService(allocations *AllocationService, cache *common.CacheService, metricsReg *metrics.MetricsRegistry) *SummaryService {
	return &SummaryService{
		allocations: allocations,
		cache:       cache,
		metricsReg:  metricsReg,
	}
}

// InvalidateOn flushes the aggregate cache whenever a change event
// arrives on ch. Run it in its own goroutine; it exits when ctx is
// done or the subscription channel closes.
func (svc *SummaryService) InvalidateOn(ctx context.Context, ch <-chan events.ChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			svc.cache.Flush()
			logging.Debug("Summary cache flushed",
				"trigger", string(ev.Type),
				"tail_number", ev.Allocation.TailNumber,
			)
		}
	}
}

// SummaryAt aggregates the allocations active at instant t
func (svc *SummaryService) SummaryAt(ctx context.Context, t time.Time) (*responses.SummaryResponse, error) {
	// Nanosecond precision: two distinct sub-second instants must
	// never share a cached aggregate
	key := fmt.Sprintf("summary:%d", t.UnixNano())

	if cached, found := svc.cache.Get(key); found {
		if summary, ok := cached.(*responses.SummaryResponse); ok {
			if svc.metricsReg != nil {
				svc.metricsReg.CacheHitsTotal.WithLabelValues("summary").Inc()
			}
			return summary, nil
		}
	}
	if svc.metricsReg != nil {
		svc.metricsReg.CacheMissesTotal.WithLabelValues("summary").Inc()
	}

	// Collapse concurrent recomputation of the same instant
	val, err, _ := svc.group.Do(key, func() (interface{}, error) {
		summary, err := svc.computeSummary(ctx, t)
		if err != nil {
			return nil, err
		}
		svc.cache.Set(key, summary, summaryCacheTTL)
		return summary, nil
	})
	if err != nil {
		return nil, err
	}

	return val.(*responses.SummaryResponse), nil
}

func (svc *SummaryService) computeSummary(ctx context.Context, t time.Time) (*responses.SummaryResponse, error) {
	active, err := svc.allocations.ActiveAt(ctx, t, repositories.ActiveFilters{})
	if err != nil {
		return nil, err
	}

	byStation := make(map[string]int)
	byCarrier := make(map[string]int)
	for _, alloc := range active {
		byStation[alloc.StationID]++
		if alloc.Carrier != "" {
			byCarrier[alloc.Carrier]++
		}
	}

	summary := &responses.SummaryResponse{
		At:    t,
		Total: len(active),
	}
	for station, count := range byStation {
		summary.ByStation = append(summary.ByStation, responses.StationSummary{StationID: station, Count: count})
	}
	for carrier, count := range byCarrier {
		summary.ByCarrier = append(summary.ByCarrier, responses.CarrierSummary{Carrier: carrier, Count: count})
	}
	sort.Slice(summary.ByStation, func(i, j int) bool {
		return summary.ByStation[i].StationID < summary.ByStation[j].StationID
	})
	sort.Slice(summary.ByCarrier, func(i, j int) bool {
		return summary.ByCarrier[i].Carrier < summary.ByCarrier[j].Carrier
	})

	return summary, nil
}

// CountAtStation reports how many aircraft are at one station at t,
// through the same active-at path as SummaryAt
func (svc *SummaryService) CountAtStation(ctx context.Context, stationID string, t time.Time) (int, error) {
	active, err := svc.allocations.ActiveAt(ctx, t, repositories.ActiveFilters{StationID: stationID})
	if err != nil {
		return 0, err
	}
	return len(active), nil
}
