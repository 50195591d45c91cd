package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"winterops/stationboard/internal/db/repositories"
	"winterops/stationboard/internal/events"
	"winterops/stationboard/internal/models/dtos/requests"
	gormModels "winterops/stationboard/internal/models/gorm"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Setup test database
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// A single connection keeps the in-memory database stable across
	// goroutines
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	// Auto migrate
	if err := db.AutoMigrate(&gormModels.Allocation{}, &gormModels.Station{}, &gormModels.WeatherAdvisory{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return db
}

func seedStations(t *testing.T, db *gorm.DB) {
	stations := []gormModels.Station{
		{ID: "DFW", Name: "Dallas/Fort Worth Intl", SpotCount: 10},
		{ID: "CLT", Name: "Charlotte Douglas Intl", SpotCount: 8},
		{ID: "ORD", Name: "Chicago O'Hare Intl", SpotCount: 12},
	}
	for i := range stations {
		if err := db.Create(&stations[i]).Error; err != nil {
			t.Fatalf("Failed to seed station %s: %v", stations[i].ID, err)
		}
	}
}

func newTestService(t *testing.T) (*AllocationService, *events.Dispatcher) {
	db := setupTestDB(t)
	seedStations(t, db)

	dispatcher := events.NewDispatcher()
	svc := NewAllocationService(
		repositories.NewAllocationRepository(db),
		repositories.NewStationRepository(db),
		dispatcher,
		nil,
	)
	return svc, dispatcher
}

func mustCreate(t *testing.T, svc *AllocationService, tail, station, start string, end *string) *gormModels.Allocation {
	t.Helper()
	alloc, err := svc.Create(context.Background(), requests.CreateAllocationRequest{
		TailNumber:  tail,
		StationID:   station,
		PeriodStart: start,
		PeriodEnd:   end,
	})
	if err != nil {
		t.Fatalf("Expected create to succeed, got %v", err)
	}
	return alloc
}

func strPtr(s string) *string { return &s }

func TestAllocationService_CreateScenario(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// N123AB parks at DFW for the day shift
	dfw := mustCreate(t, svc, "N123AB", "DFW", "2026-01-22T09:00:00Z", strPtr("2026-01-22T17:00:00Z"))

	// Back-to-back move to CLT starting exactly at the DFW end
	mustCreate(t, svc, "N123AB", "CLT", "2026-01-22T17:00:00Z", nil)

	// An overlapping window must be rejected, naming the DFW record
	_, err := svc.Create(ctx, requests.CreateAllocationRequest{
		TailNumber:  "N123AB",
		StationID:   "ORD",
		PeriodStart: "2026-01-22T10:00:00Z",
		PeriodEnd:   strPtr("2026-01-22T12:00:00Z"),
	})

	var conflict *OverlapConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Expected OverlapConflictError, got %v", err)
	}
	if conflict.ConflictID != dfw.ID {
		t.Errorf("Expected conflict to reference the DFW record %s, got %s", dfw.ID, conflict.ConflictID)
	}
	if conflict.StationID != "DFW" {
		t.Errorf("Expected conflict station DFW, got %s", conflict.StationID)
	}
}

func TestAllocationService_OpenEndedConflictsWithLaterWindow(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	mustCreate(t, svc, "N456CD", "DFW", "2026-01-01T09:00:00Z", nil)

	_, err := svc.Create(ctx, requests.CreateAllocationRequest{
		TailNumber:  "N456CD",
		StationID:   "CLT",
		PeriodStart: "2026-01-01T12:00:00Z",
		PeriodEnd:   strPtr("2026-01-01T14:00:00Z"),
	})

	var conflict *OverlapConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Expected OverlapConflictError against the open-ended record, got %v", err)
	}
}

func TestAllocationService_CreateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  requests.CreateAllocationRequest
	}{
		{"missing tail", requests.CreateAllocationRequest{StationID: "DFW", PeriodStart: "2026-01-22T09:00:00Z"}},
		{"missing station", requests.CreateAllocationRequest{TailNumber: "N1", PeriodStart: "2026-01-22T09:00:00Z"}},
		{"unknown station", requests.CreateAllocationRequest{TailNumber: "N1", StationID: "ZZZ", PeriodStart: "2026-01-22T09:00:00Z"}},
		{"missing start", requests.CreateAllocationRequest{TailNumber: "N1", StationID: "DFW"}},
		{"bad start", requests.CreateAllocationRequest{TailNumber: "N1", StationID: "DFW", PeriodStart: "tomorrow"}},
		{"end before start", requests.CreateAllocationRequest{TailNumber: "N1", StationID: "DFW", PeriodStart: "2026-01-22T09:00:00Z", PeriodEnd: strPtr("2026-01-22T08:00:00Z")}},
		{"end equals start", requests.CreateAllocationRequest{TailNumber: "N1", StationID: "DFW", PeriodStart: "2026-01-22T09:00:00Z", PeriodEnd: strPtr("2026-01-22T09:00:00Z")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.req)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Errorf("Expected ValidationError, got %v", err)
			}
		})
	}
}

func TestAllocationService_ActiveAtPointInTime(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	mustCreate(t, svc, "N123AB", "DFW", "2026-01-01T09:00:00Z", strPtr("2026-01-01T17:00:00Z"))
	mustCreate(t, svc, "N123AB", "CLT", "2026-01-01T17:00:00Z", nil)

	cases := []struct {
		at          string
		wantStation string
	}{
		{"2026-01-01T12:00:00Z", "DFW"},
		{"2026-01-01T16:59:59Z", "DFW"},
		{"2026-01-01T17:00:00Z", "CLT"},
		{"2026-01-02T00:00:00Z", "CLT"},
	}

	for _, tc := range cases {
		at, _ := time.Parse(time.RFC3339, tc.at)
		active, err := svc.ActiveAt(ctx, at, repositories.ActiveFilters{TailNumber: "N123AB"})
		if err != nil {
			t.Fatalf("ActiveAt(%s) failed: %v", tc.at, err)
		}
		if len(active) != 1 {
			t.Fatalf("ActiveAt(%s): expected exactly one allocation, got %d", tc.at, len(active))
		}
		if active[0].StationID != tc.wantStation {
			t.Errorf("ActiveAt(%s): expected station %s, got %s", tc.at, tc.wantStation, active[0].StationID)
		}
	}

	before, err := svc.ActiveAt(ctx, time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC), repositories.ActiveFilters{TailNumber: "N123AB"})
	if err != nil {
		t.Fatalf("ActiveAt before any allocation failed: %v", err)
	}
	if len(before) != 0 {
		t.Errorf("Expected no active allocations before the first window, got %d", len(before))
	}
}

func TestAllocationService_UpdateExcludesSelf(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	alloc := mustCreate(t, svc, "N789EF", "DFW", "2026-01-22T09:00:00Z", strPtr("2026-01-22T17:00:00Z"))

	// Extending the end overlaps the record's own old window; that
	// must not count as a conflict
	updated, err := svc.Update(ctx, alloc.ID, requests.UpdateAllocationRequest{
		PeriodEnd: strPtr("2026-01-22T18:00:00Z"),
	})
	if err != nil {
		t.Fatalf("Expected self-overlapping update to succeed, got %v", err)
	}
	if updated.PeriodEnd == nil || !updated.PeriodEnd.Equal(time.Date(2026, 1, 22, 18, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected period_end 18:00, got %v", updated.PeriodEnd)
	}
}

func TestAllocationService_UpdateConflictsWithOtherRecord(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	mustCreate(t, svc, "N789EF", "DFW", "2026-01-22T09:00:00Z", strPtr("2026-01-22T17:00:00Z"))
	second := mustCreate(t, svc, "N789EF", "CLT", "2026-01-22T17:00:00Z", strPtr("2026-01-22T21:00:00Z"))

	// Sliding the second window back into the first must be rejected
	_, err := svc.Update(ctx, second.ID, requests.UpdateAllocationRequest{
		PeriodStart: strPtr("2026-01-22T16:00:00Z"),
	})

	var conflict *OverlapConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Expected OverlapConflictError, got %v", err)
	}
}

func TestAllocationService_UpdateClearsEndToOpenEnded(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	alloc := mustCreate(t, svc, "N321GH", "ORD", "2026-01-22T09:00:00Z", strPtr("2026-01-22T17:00:00Z"))

	updated, err := svc.Update(ctx, alloc.ID, requests.UpdateAllocationRequest{
		PeriodEnd: strPtr(""),
	})
	if err != nil {
		t.Fatalf("Expected update to succeed, got %v", err)
	}
	if updated.PeriodEnd != nil {
		t.Errorf("Expected open-ended allocation after clearing period_end, got %v", updated.PeriodEnd)
	}
}

func TestAllocationService_UpdateNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Update(context.Background(), "no-such-id", requests.UpdateAllocationRequest{
		Carrier: strPtr("AA"),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestAllocationService_DeleteThenQuery(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	alloc := mustCreate(t, svc, "N654IJ", "DFW", "2026-01-22T09:00:00Z", nil)

	if err := svc.Delete(ctx, alloc.ID); err != nil {
		t.Fatalf("Expected delete to succeed, got %v", err)
	}

	history, err := svc.History(ctx, "N654IJ")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	for _, rec := range history {
		if rec.ID == alloc.ID {
			t.Error("Expected deleted allocation to vanish from history")
		}
	}

	active, err := svc.ActiveAt(ctx, time.Date(2026, 1, 22, 12, 0, 0, 0, time.UTC), repositories.ActiveFilters{TailNumber: "N654IJ"})
	if err != nil {
		t.Fatalf("ActiveAt failed: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("Expected no active allocations after delete, got %d", len(active))
	}

	if err := svc.Delete(ctx, alloc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestAllocationService_HistoryOrderedNewestFirst(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	mustCreate(t, svc, "N987KL", "DFW", "2026-01-20T09:00:00Z", strPtr("2026-01-20T17:00:00Z"))
	mustCreate(t, svc, "N987KL", "CLT", "2026-01-22T09:00:00Z", strPtr("2026-01-22T17:00:00Z"))
	mustCreate(t, svc, "N987KL", "ORD", "2026-01-21T09:00:00Z", strPtr("2026-01-21T17:00:00Z"))

	history, err := svc.History(ctx, "N987KL")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i].PeriodStart.After(history[i-1].PeriodStart) {
			t.Errorf("Expected history ordered by period_start descending")
		}
	}
}

func TestAllocationService_OverlappingRange(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// Straddles the window start
	mustCreate(t, svc, "N1", "DFW", "2026-01-19T09:00:00Z", strPtr("2026-01-20T12:00:00Z"))
	// Entirely inside the window
	mustCreate(t, svc, "N2", "DFW", "2026-01-21T09:00:00Z", strPtr("2026-01-21T17:00:00Z"))
	// Touches the window end exactly: excluded under [start, end)
	mustCreate(t, svc, "N3", "DFW", "2026-01-27T00:00:00Z", nil)
	// Entirely before the window
	mustCreate(t, svc, "N4", "DFW", "2026-01-10T09:00:00Z", strPtr("2026-01-11T09:00:00Z"))

	start := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 27, 0, 0, 0, 0, time.UTC)

	touching, err := svc.OverlappingRange(ctx, start, end, repositories.ActiveFilters{})
	if err != nil {
		t.Fatalf("OverlappingRange failed: %v", err)
	}

	tails := make(map[string]bool)
	for _, rec := range touching {
		tails[rec.TailNumber] = true
	}
	if !tails["N1"] || !tails["N2"] {
		t.Errorf("Expected N1 and N2 in range result, got %v", tails)
	}
	if tails["N3"] {
		t.Error("Expected allocation starting at the exclusive window end to be excluded")
	}
	if tails["N4"] {
		t.Error("Expected allocation before the window to be excluded")
	}

	if _, err := svc.OverlappingRange(ctx, end, start, repositories.ActiveFilters{}); err == nil {
		t.Error("Expected inverted range to be rejected")
	}
}

func TestAllocationService_ConcurrentCreateRace(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	const writers = 8

	var wg sync.WaitGroup
	results := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, requests.CreateAllocationRequest{
				TailNumber:  "N555MN",
				StationID:   "DFW",
				PeriodStart: "2026-01-22T09:00:00Z",
				PeriodEnd:   strPtr("2026-01-22T17:00:00Z"),
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	conflicts := 0
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		var conflict *OverlapConflictError
		if errors.As(err, &conflict) {
			conflicts++
		} else {
			t.Errorf("Unexpected error from concurrent create: %v", err)
		}
	}

	if successes != 1 {
		t.Errorf("Expected exactly one concurrent create to win, got %d", successes)
	}
	if conflicts != writers-1 {
		t.Errorf("Expected %d overlap conflicts, got %d", writers-1, conflicts)
	}
}

func TestAllocationService_PublishesChangeEvents(t *testing.T) {
	svc, dispatcher := newTestService(t)
	ctx := context.Background()

	ch, cancel := dispatcher.Subscribe(events.ForTail("N777OP"))
	defer cancel()

	alloc := mustCreate(t, svc, "N777OP", "DFW", "2026-01-22T09:00:00Z", nil)

	select {
	case ev := <-ch:
		if ev.Type != events.AllocationCreated {
			t.Errorf("Expected %s event, got %s", events.AllocationCreated, ev.Type)
		}
		if ev.Allocation.ID != alloc.ID {
			t.Errorf("Expected event for %s, got %s", alloc.ID, ev.Allocation.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected a change event after create")
	}

	if err := svc.Delete(ctx, alloc.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	select {
	case ev := <-ch:
		if ev.Type != events.AllocationDeleted {
			t.Errorf("Expected %s event, got %s", events.AllocationDeleted, ev.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected a change event after delete")
	}
}

func TestAllocationService_UpdateKeepsConcurrentTailChange(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	alloc := mustCreate(t, svc, "N000AA", "DFW", "2026-01-22T09:00:00Z", nil)

	// A carrier-only edit racing a tail change must never revert the
	// tail: the effective tail comes from the in-transaction re-read,
	// not from a snapshot taken before the lock.
	for i := 0; i < 25; i++ {
		newTail := fmt.Sprintf("N%03dAA", i+1)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := svc.Update(ctx, alloc.ID, requests.UpdateAllocationRequest{TailNumber: strPtr(newTail)}); err != nil {
				t.Errorf("Tail update failed: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := svc.Update(ctx, alloc.ID, requests.UpdateAllocationRequest{Carrier: strPtr("AA")}); err != nil {
				t.Errorf("Carrier update failed: %v", err)
			}
		}()
		wg.Wait()

		got, err := svc.GetByID(ctx, alloc.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if got.TailNumber != newTail {
			t.Fatalf("Iteration %d: partial update reverted the tail change, got %s, want %s", i, got.TailNumber, newTail)
		}
		if got.Carrier != "AA" {
			t.Fatalf("Iteration %d: expected carrier AA, got %s", i, got.Carrier)
		}
	}
}
