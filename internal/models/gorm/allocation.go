package gorm

import (
	"time"

	"gorm.io/gorm"
)

// Allocation records an aircraft occupying a station over a half-open
// time interval [PeriodStart, PeriodEnd). A nil PeriodEnd means the
// allocation is open-ended.
type Allocation struct {
	ID          string     `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	TailNumber  string     `gorm:"column:tail_number;type:varchar(10);not null;index" json:"tail_number"`
	StationID   string     `gorm:"column:station_id;type:varchar(4);not null;index" json:"station_id"`
	PeriodStart time.Time  `gorm:"column:period_start;not null" json:"period_start"`
	PeriodEnd   *time.Time `gorm:"column:period_end" json:"period_end"`
	Carrier     string     `gorm:"column:carrier;type:varchar(10)" json:"carrier"`
	InboundFlt  string     `gorm:"column:inbound_flt;type:varchar(10)" json:"inbound_flt"`
	OutboundFlt string     `gorm:"column:outbound_flt;type:varchar(10)" json:"outbound_flt"`
	CreatedAt   time.Time  `gorm:"column:created_at;default:now()" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Allocation) TableName() string {
	return "allocations"
}

// ActiveAt reports whether the allocation covers instant t under
// [start, end) semantics: start <= t < end, with a nil end meaning
// the allocation never closes.
func (a *Allocation) ActiveAt(t time.Time) bool {
	if a.PeriodStart.After(t) {
		return false
	}
	return a.PeriodEnd == nil || a.PeriodEnd.After(t)
}

// Overlaps reports whether the interval [start, end) intersects this
// allocation's interval. A nil end on either side is treated as +inf.
// Touching intervals (one ends exactly where the other starts) do not
// overlap.
func (a *Allocation) Overlaps(start time.Time, end *time.Time) bool {
	// start_A < end_B AND start_B < end_A, with nil ends unbounded
	if end != nil && !a.PeriodStart.Before(*end) {
		return false
	}
	if a.PeriodEnd != nil && !start.Before(*a.PeriodEnd) {
		return false
	}
	return true
}

// overlapCondition is the SQL rendering of Overlaps, shared by every
// conflict and range query so that no caller re-derives the predicate.
const overlapCondition = "period_start < ? AND (period_end IS NULL OR period_end > ?)"

// ScopeOverlapping restricts a query to allocations whose interval
// intersects [start, end). A zero end is treated as unbounded.
func ScopeOverlapping(start time.Time, end *time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if end == nil {
			return db.Where("period_end IS NULL OR period_end > ?", start)
		}
		return db.Where(overlapCondition, *end, start)
	}
}

// ScopeActiveAt restricts a query to allocations active at instant t.
// Active-at is the degenerate overlap with the instant window [t, t].
func ScopeActiveAt(t time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("period_start <= ? AND (period_end IS NULL OR period_end > ?)", t, t)
	}
}
