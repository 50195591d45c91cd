package services

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by Update/Delete when the target allocation
// no longer exists (e.g. deleted by another user).
var ErrNotFound = errors.New("record not found")

// ValidationError reports a malformed or missing field on a write.
// The presentation layer maps it to a field-level form error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// OverlapConflictError rejects a write that would leave one aircraft
// present at two stations at once. It carries the conflicting record
// so callers can render "overlaps with allocation at STATION, START-END".
type OverlapConflictError struct {
	ConflictID  string
	TailNumber  string
	StationID   string
	PeriodStart time.Time
	PeriodEnd   *time.Time
}

func (e *OverlapConflictError) Error() string {
	end := "open-ended"
	if e.PeriodEnd != nil {
		end = e.PeriodEnd.Format(time.RFC3339)
	}
	return fmt.Sprintf("aircraft %s already allocated at %s from %s to %s",
		e.TailNumber, e.StationID, e.PeriodStart.Format(time.RFC3339), end)
}
