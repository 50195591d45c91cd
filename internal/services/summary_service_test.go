package services

import (
	"context"
	"testing"
	"time"

	"winterops/stationboard/internal/common"
	"winterops/stationboard/internal/db/repositories"
	"winterops/stationboard/internal/events"
	"winterops/stationboard/internal/models/dtos/requests"

	"gorm.io/gorm"
)

func newSummaryFixture(t *testing.T) (*AllocationService, *SummaryService, *StationService, *events.Dispatcher, *gorm.DB) {
	db := setupTestDB(t)
	seedStations(t, db)

	dispatcher := events.NewDispatcher()
	stationRepo := repositories.NewStationRepository(db)
	allocationSvc := NewAllocationService(
		repositories.NewAllocationRepository(db),
		stationRepo,
		dispatcher,
		nil,
	)
	cache := common.NewCacheService(60, 600)
	summarySvc := NewSummaryService(allocationSvc, cache, nil)
	stationSvc := NewStationService(stationRepo, summarySvc)

	return allocationSvc, summarySvc, stationSvc, dispatcher, db
}

func seedScenario(t *testing.T, svc *AllocationService) {
	t.Helper()
	ctx := context.Background()

	seed := []requests.CreateAllocationRequest{
		{TailNumber: "N1", StationID: "DFW", Carrier: "AA", PeriodStart: "2026-01-22T08:00:00Z", PeriodEnd: strPtr("2026-01-22T18:00:00Z")},
		{TailNumber: "N2", StationID: "DFW", Carrier: "AA", PeriodStart: "2026-01-22T09:00:00Z"},
		{TailNumber: "N3", StationID: "CLT", Carrier: "UA", PeriodStart: "2026-01-22T10:00:00Z", PeriodEnd: strPtr("2026-01-22T14:00:00Z")},
		// Ends before the probe instant, must not be counted
		{TailNumber: "N4", StationID: "CLT", Carrier: "AA", PeriodStart: "2026-01-22T06:00:00Z", PeriodEnd: strPtr("2026-01-22T10:00:00Z")},
	}
	for _, req := range seed {
		if _, err := svc.Create(ctx, req); err != nil {
			t.Fatalf("Failed to seed allocation for %s: %v", req.TailNumber, err)
		}
	}
}

func TestSummaryService_SummaryAt(t *testing.T) {
	allocationSvc, summarySvc, _, _, _ := newSummaryFixture(t)
	seedScenario(t, allocationSvc)

	at := time.Date(2026, 1, 22, 12, 0, 0, 0, time.UTC)
	summary, err := summarySvc.SummaryAt(context.Background(), at)
	if err != nil {
		t.Fatalf("SummaryAt failed: %v", err)
	}

	if summary.Total != 3 {
		t.Errorf("Expected 3 active allocations at noon, got %d", summary.Total)
	}

	stationCounts := make(map[string]int)
	for _, s := range summary.ByStation {
		stationCounts[s.StationID] = s.Count
	}
	if stationCounts["DFW"] != 2 {
		t.Errorf("Expected 2 at DFW, got %d", stationCounts["DFW"])
	}
	if stationCounts["CLT"] != 1 {
		t.Errorf("Expected 1 at CLT, got %d", stationCounts["CLT"])
	}

	carrierCounts := make(map[string]int)
	for _, c := range summary.ByCarrier {
		carrierCounts[c.Carrier] = c.Count
	}
	if carrierCounts["AA"] != 2 {
		t.Errorf("Expected 2 AA aircraft, got %d", carrierCounts["AA"])
	}
	if carrierCounts["UA"] != 1 {
		t.Errorf("Expected 1 UA aircraft, got %d", carrierCounts["UA"])
	}
}

func TestSummaryService_CountMatchesActiveAtEverywhere(t *testing.T) {
	allocationSvc, summarySvc, _, _, _ := newSummaryFixture(t)
	seedScenario(t, allocationSvc)
	ctx := context.Background()

	at := time.Date(2026, 1, 22, 12, 0, 0, 0, time.UTC)

	summary, err := summarySvc.SummaryAt(ctx, at)
	if err != nil {
		t.Fatalf("SummaryAt failed: %v", err)
	}

	// The drawer-style count and the map-summary count must agree
	for _, s := range summary.ByStation {
		count, err := summarySvc.CountAtStation(ctx, s.StationID, at)
		if err != nil {
			t.Fatalf("CountAtStation(%s) failed: %v", s.StationID, err)
		}
		if count != s.Count {
			t.Errorf("Station %s: summary says %d, CountAtStation says %d", s.StationID, s.Count, count)
		}
	}
}

func TestSummaryService_CacheInvalidationOnChange(t *testing.T) {
	allocationSvc, summarySvc, _, dispatcher, _ := newSummaryFixture(t)
	seedScenario(t, allocationSvc)
	ctx := context.Background()

	ch, cancel := dispatcher.Subscribe(events.All)
	defer cancel()

	invalidateCtx, stop := context.WithCancel(ctx)
	defer stop()
	go summarySvc.InvalidateOn(invalidateCtx, ch)

	at := time.Date(2026, 1, 22, 12, 0, 0, 0, time.UTC)

	first, err := summarySvc.SummaryAt(ctx, at)
	if err != nil {
		t.Fatalf("SummaryAt failed: %v", err)
	}

	if _, err := allocationSvc.Create(ctx, requests.CreateAllocationRequest{
		TailNumber:  "N9",
		StationID:   "ORD",
		Carrier:     "DL",
		PeriodStart: "2026-01-22T11:00:00Z",
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// The invalidation goroutine flushes asynchronously; poll until
	// the recomputed summary reflects the new allocation
	deadline := time.Now().Add(2 * time.Second)
	for {
		summary, err := summarySvc.SummaryAt(ctx, at)
		if err != nil {
			t.Fatalf("SummaryAt failed: %v", err)
		}
		if summary.Total == first.Total+1 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("Expected summary total %d after invalidation, still %d", first.Total+1, summary.Total)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestStationService_CapacityAt(t *testing.T) {
	allocationSvc, _, stationSvc, _, _ := newSummaryFixture(t)
	seedScenario(t, allocationSvc)
	ctx := context.Background()

	at := time.Date(2026, 1, 22, 12, 0, 0, 0, time.UTC)

	capacity, err := stationSvc.CapacityAt(ctx, "DFW", at)
	if err != nil {
		t.Fatalf("CapacityAt failed: %v", err)
	}
	if capacity.SpotCount != 10 {
		t.Errorf("Expected 10 spots at DFW, got %d", capacity.SpotCount)
	}
	if capacity.Occupied != 2 {
		t.Errorf("Expected 2 occupied at DFW, got %d", capacity.Occupied)
	}
	if capacity.Free != 8 {
		t.Errorf("Expected 8 free at DFW, got %d", capacity.Free)
	}

	if _, err := stationSvc.CapacityAt(ctx, "ZZZ", at); err == nil {
		t.Error("Expected error for unknown station")
	}
}

func TestSummaryService_SubSecondInstantsNotConflated(t *testing.T) {
	allocationSvc, summarySvc, _, _, _ := newSummaryFixture(t)
	ctx := context.Background()

	// Allocation begins mid-second
	if _, err := allocationSvc.Create(ctx, requests.CreateAllocationRequest{
		TailNumber:  "N5",
		StationID:   "DFW",
		Carrier:     "AA",
		PeriodStart: "2026-01-22T09:00:00.600Z",
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	before := time.Date(2026, 1, 22, 9, 0, 0, int(200*time.Millisecond), time.UTC)
	after := time.Date(2026, 1, 22, 9, 0, 0, int(800*time.Millisecond), time.UTC)

	early, err := summarySvc.SummaryAt(ctx, before)
	if err != nil {
		t.Fatalf("SummaryAt failed: %v", err)
	}
	if early.Total != 0 {
		t.Errorf("Expected nothing active before the sub-second start, got %d", early.Total)
	}

	// Two instants in the same second are distinct cache entries; the
	// earlier result must not answer for the later instant
	late, err := summarySvc.SummaryAt(ctx, after)
	if err != nil {
		t.Fatalf("SummaryAt failed: %v", err)
	}
	if late.Total != 1 {
		t.Errorf("Expected 1 active allocation after the sub-second start, got %d", late.Total)
	}
}
