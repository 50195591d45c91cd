package constants

// Feed queries are written with `?` bindvars and rebound to the
// driver's placeholder style at query time.
const (
	// AllocationsOverlappingRange selects every allocation whose
	// half-open interval intersects [start, end), newest first. Bind
	// order is (end, start). The predicate must stay in lockstep with
	// the GORM overlap scope.
	AllocationsOverlappingRange = `
	SELECT id, tail_number, station_id, period_start, period_end,
	       carrier, inbound_flt, outbound_flt, created_at, updated_at
	FROM allocations
	WHERE period_start < ? AND (period_end IS NULL OR period_end > ?)
	ORDER BY period_start DESC
	`

	// Bind order is (station, end, start)
	AllocationsOverlappingRangeByStation = `
	SELECT id, tail_number, station_id, period_start, period_end,
	       carrier, inbound_flt, outbound_flt, created_at, updated_at
	FROM allocations
	WHERE station_id = ?
	  AND period_start < ? AND (period_end IS NULL OR period_end > ?)
	ORDER BY period_start DESC
	`

	AllocationHistoryByTail = `
	SELECT id, tail_number, station_id, period_start, period_end,
	       carrier, inbound_flt, outbound_flt, created_at, updated_at
	FROM allocations
	WHERE tail_number = ?
	ORDER BY period_start DESC
	`
)
