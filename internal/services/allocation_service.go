package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"winterops/stationboard/internal/constants"
	"winterops/stationboard/internal/db/repositories"
	"winterops/stationboard/internal/events"
	"winterops/stationboard/internal/logging"
	"winterops/stationboard/internal/metrics"
	"winterops/stationboard/internal/models/dtos/requests"
	gormModels "winterops/stationboard/internal/models/gorm"

	"github.com/google/uuid"
)

// AllocationService owns the allocation interval store. It guarantees
// that no aircraft is ever recorded at two stations over intersecting
// [start, end) intervals: the conflict search and the write run inside
// one transaction, and writes for the same tail number are serialized
// through a per-tail lock so concurrent creators cannot race the check.
type AllocationService struct {
	repo       *repositories.AllocationRepository
	stations   *repositories.StationRepository
	dispatcher *events.Dispatcher
	metricsReg *metrics.MetricsRegistry

	tailLocksMu sync.Mutex
	tailLocks   map[string]*sync.Mutex
}

func NewAllocationService(
	repo *repositories.AllocationRepository,
	stations *repositories.StationRepository,
	dispatcher *events.Dispatcher,
	metricsReg *metrics.MetricsRegistry,
) *AllocationService {
	return &AllocationService{
		repo:       repo,
		stations:   stations,
		dispatcher: dispatcher,
		metricsReg: metricsReg,
		tailLocks:  make(map[string]*sync.Mutex),
	}
}

func (svc *AllocationService) lockTail(tail string) *sync.Mutex {
	svc.tailLocksMu.Lock()
	defer svc.tailLocksMu.Unlock()

	if mu, exists := svc.tailLocks[tail]; exists {
		return mu
	}
	mu := &sync.Mutex{}
	svc.tailLocks[tail] = mu
	return mu
}

func (svc *AllocationService) publish(changeType events.ChangeType, alloc gormModels.Allocation) {
	if svc.dispatcher != nil {
		svc.dispatcher.Publish(events.ChangeEvent{Type: changeType, Allocation: alloc})
	}
}

func (svc *AllocationService) countWrite(operation string) {
	if svc.metricsReg != nil {
		svc.metricsReg.AllocationsWrittenTotal.WithLabelValues(operation).Inc()
	}
}

func (svc *AllocationService) countConflict() {
	if svc.metricsReg != nil {
		svc.metricsReg.OverlapConflictsTotal.Inc()
	}
}

func (svc *AllocationService) observeQuery(queryType string, start time.Time) {
	if svc.metricsReg != nil {
		svc.metricsReg.StoreQueryDuration.WithLabelValues(queryType).Observe(time.Since(start).Seconds())
	}
}

// parsePeriod validates and parses the interval fields of a write
func parsePeriod(startStr string, endStr *string) (time.Time, *time.Time, error) {
	if startStr == "" {
		return time.Time{}, nil, &ValidationError{Field: "period_start", Reason: constants.MsgMissingStart}
	}

	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return time.Time{}, nil, &ValidationError{Field: "period_start", Reason: constants.MsgBadTimestamp}
	}

	var end *time.Time
	if endStr != nil && *endStr != "" {
		parsed, err := time.Parse(time.RFC3339, *endStr)
		if err != nil {
			return time.Time{}, nil, &ValidationError{Field: "period_end", Reason: constants.MsgBadTimestamp}
		}
		if !parsed.After(start) {
			return time.Time{}, nil, &ValidationError{Field: "period_end", Reason: constants.MsgEndBeforeStart}
		}
		end = &parsed
	}

	return start, end, nil
}

func (svc *AllocationService) validateStation(ctx context.Context, stationID string) error {
	if stationID == "" {
		return &ValidationError{Field: "station_id", Reason: "station_id is required"}
	}
	if svc.stations == nil {
		return nil
	}

	station, err := svc.stations.GetByID(ctx, stationID)
	if err != nil {
		return err
	}
	if station == nil {
		return &ValidationError{Field: "station_id", Reason: constants.MsgStationNotFound}
	}
	return nil
}

func conflictError(conflict *gormModels.Allocation) *OverlapConflictError {
	return &OverlapConflictError{
		ConflictID:  conflict.ID,
		TailNumber:  conflict.TailNumber,
		StationID:   conflict.StationID,
		PeriodStart: conflict.PeriodStart,
		PeriodEnd:   conflict.PeriodEnd,
	}
}

// Create validates and persists a new allocation. Returns
// *OverlapConflictError when the interval collides with an existing
// allocation for the same aircraft.
func (svc *AllocationService) Create(ctx context.Context, req requests.CreateAllocationRequest) (*gormModels.Allocation, error) {
	if req.TailNumber == "" {
		return nil, &ValidationError{Field: "tail_number", Reason: "tail_number is required"}
	}
	if err := svc.validateStation(ctx, req.StationID); err != nil {
		return nil, err
	}

	start, end, err := parsePeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, err
	}

	alloc := &gormModels.Allocation{
		ID:          uuid.NewString(),
		TailNumber:  req.TailNumber,
		StationID:   req.StationID,
		PeriodStart: start,
		PeriodEnd:   end,
		Carrier:     req.Carrier,
		InboundFlt:  req.InboundFlt,
		OutboundFlt: req.OutboundFlt,
	}

	mu := svc.lockTail(req.TailNumber)
	mu.Lock()
	defer mu.Unlock()

	err = svc.repo.Transaction(ctx, func(txRepo *repositories.AllocationRepository) error {
		conflict, err := txRepo.FindConflict(ctx, alloc.TailNumber, alloc.PeriodStart, alloc.PeriodEnd, "")
		if err != nil {
			return err
		}
		if conflict != nil {
			svc.countConflict()
			return conflictError(conflict)
		}
		return txRepo.Insert(ctx, alloc)
	})
	if err != nil {
		return nil, err
	}

	svc.countWrite("create")
	svc.publish(events.AllocationCreated, *alloc)
	logging.Info("Allocation created",
		"allocation_id", alloc.ID,
		"tail_number", alloc.TailNumber,
		"station_id", alloc.StationID,
	)

	return alloc, nil
}

// errWrongTailLock signals that the record moved to a different tail
// number between the lock acquisition and the in-transaction re-read,
// so the update ran under the wrong lock and must be retried.
var errWrongTailLock = errors.New("allocation changed tail number under a different lock")

// Update applies partial edits to an existing allocation, re-running
// the overlap check with the record itself excluded from the search.
// The effective tail number always comes from the in-transaction
// re-read unless the request changes it, so a partial edit can never
// revert a concurrent tail change.
func (svc *AllocationService) Update(ctx context.Context, id string, req requests.UpdateAllocationRequest) (*gormModels.Allocation, error) {
	if req.TailNumber != nil && *req.TailNumber == "" {
		return nil, &ValidationError{Field: "tail_number", Reason: "tail_number is required"}
	}
	if req.StationID != nil {
		if err := svc.validateStation(ctx, *req.StationID); err != nil {
			return nil, err
		}
	}

	for {
		updated, err := svc.tryUpdate(ctx, id, req)
		if errors.Is(err, errWrongTailLock) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
}

func (svc *AllocationService) tryUpdate(ctx context.Context, id string, req requests.UpdateAllocationRequest) (*gormModels.Allocation, error) {
	current, err := svc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrNotFound
	}

	targetTail := current.TailNumber
	if req.TailNumber != nil {
		targetTail = *req.TailNumber
	}

	mu := svc.lockTail(targetTail)
	mu.Lock()
	defer mu.Unlock()

	var updated *gormModels.Allocation
	err = svc.repo.Transaction(ctx, func(txRepo *repositories.AllocationRepository) error {
		// Re-read under the lock; the record may have changed or gone
		alloc, err := txRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if alloc == nil {
			return ErrNotFound
		}
		// A concurrent update moved the aircraft to another tail, so
		// targetTail holds a stale snapshot and the wrong lock is held
		if req.TailNumber == nil && alloc.TailNumber != targetTail {
			return errWrongTailLock
		}

		alloc.TailNumber = targetTail
		if req.StationID != nil {
			alloc.StationID = *req.StationID
		}
		if req.Carrier != nil {
			alloc.Carrier = *req.Carrier
		}
		if req.InboundFlt != nil {
			alloc.InboundFlt = *req.InboundFlt
		}
		if req.OutboundFlt != nil {
			alloc.OutboundFlt = *req.OutboundFlt
		}

		startStr := alloc.PeriodStart.Format(time.RFC3339)
		if req.PeriodStart != nil {
			startStr = *req.PeriodStart
		}
		endStr := ""
		if alloc.PeriodEnd != nil {
			endStr = alloc.PeriodEnd.Format(time.RFC3339)
		}
		if req.PeriodEnd != nil {
			// explicit empty string clears the end back to open-ended
			endStr = *req.PeriodEnd
		}

		start, end, err := parsePeriod(startStr, &endStr)
		if err != nil {
			return err
		}
		alloc.PeriodStart = start
		alloc.PeriodEnd = end

		conflict, err := txRepo.FindConflict(ctx, alloc.TailNumber, alloc.PeriodStart, alloc.PeriodEnd, alloc.ID)
		if err != nil {
			return err
		}
		if conflict != nil {
			svc.countConflict()
			return conflictError(conflict)
		}

		if err := txRepo.Save(ctx, alloc); err != nil {
			return err
		}
		updated = alloc
		return nil
	})
	if err != nil {
		return nil, err
	}

	svc.countWrite("update")
	svc.publish(events.AllocationUpdated, *updated)
	logging.Info("Allocation updated",
		"allocation_id", updated.ID,
		"tail_number", updated.TailNumber,
		"station_id", updated.StationID,
	)

	return updated, nil
}

// Delete removes an allocation unconditionally
func (svc *AllocationService) Delete(ctx context.Context, id string) error {
	current, err := svc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrNotFound
	}

	rows, err := svc.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	svc.countWrite("delete")
	svc.publish(events.AllocationDeleted, *current)
	logging.Info("Allocation deleted",
		"allocation_id", id,
		"tail_number", current.TailNumber,
	)

	return nil
}

// GetByID retrieves a single allocation
func (svc *AllocationService) GetByID(ctx context.Context, id string) (*gormModels.Allocation, error) {
	alloc, err := svc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if alloc == nil {
		return nil, ErrNotFound
	}
	return alloc, nil
}

// ActiveAt returns the allocations active at instant t. Every
// "current state" view in the system goes through this one method.
func (svc *AllocationService) ActiveAt(ctx context.Context, t time.Time, filters repositories.ActiveFilters) ([]gormModels.Allocation, error) {
	defer svc.observeQuery("active_at", time.Now())
	return svc.repo.ActiveAt(ctx, t, filters)
}

// OverlappingRange returns allocations touching the window [start, end)
func (svc *AllocationService) OverlappingRange(ctx context.Context, start, end time.Time, filters repositories.ActiveFilters) ([]gormModels.Allocation, error) {
	if !end.After(start) {
		return nil, &ValidationError{Field: "end", Reason: "end must be after start"}
	}
	defer svc.observeQuery("overlapping_range", time.Now())
	return svc.repo.OverlappingRange(ctx, start, end, filters)
}

// History returns every allocation for one aircraft, newest first
func (svc *AllocationService) History(ctx context.Context, tail string) ([]gormModels.Allocation, error) {
	if tail == "" {
		return nil, &ValidationError{Field: "tail_number", Reason: "tail_number is required"}
	}
	defer svc.observeQuery("history", time.Now())
	return svc.repo.HistoryByTail(ctx, tail)
}
