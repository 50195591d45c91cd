package requests

// CreateAllocationRequest is the payload for POST /api/v1/allocations.
// Timestamps are RFC3339; period_end may be omitted for an open-ended
// allocation.
type CreateAllocationRequest struct {
	TailNumber  string  `json:"tail_number"`
	StationID   string  `json:"station_id"`
	PeriodStart string  `json:"period_start"`
	PeriodEnd   *string `json:"period_end"`
	Carrier     string  `json:"carrier"`
	InboundFlt  string  `json:"inbound_flt"`
	OutboundFlt string  `json:"outbound_flt"`
}

// UpdateAllocationRequest carries partial edits for an allocation.
// Nil pointers leave the field untouched; an explicit empty string in
// PeriodEnd clears it back to open-ended.
type UpdateAllocationRequest struct {
	TailNumber  *string `json:"tail_number"`
	StationID   *string `json:"station_id"`
	PeriodStart *string `json:"period_start"`
	PeriodEnd   *string `json:"period_end"`
	Carrier     *string `json:"carrier"`
	InboundFlt  *string `json:"inbound_flt"`
	OutboundFlt *string `json:"outbound_flt"`
}
