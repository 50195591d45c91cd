package responses

import "time"

// StationSummary is the per-station slice of the point-in-time summary
type StationSummary struct {
	StationID string `json:"station_id"`
	Count     int    `json:"count"`
}

// CarrierSummary is the per-carrier slice of the point-in-time summary
type CarrierSummary struct {
	Carrier string `json:"carrier"`
	Count   int    `json:"count"`
}

// SummaryResponse aggregates allocations active at a single instant.
// Every count is derived from the same active-at query; there is no
// second code path.
type SummaryResponse struct {
	At        time.Time        `json:"at"`
	Total     int              `json:"total"`
	ByStation []StationSummary `json:"by_station"`
	ByCarrier []CarrierSummary `json:"by_carrier"`
}

// CapacityResponse reports free spots at a station at an instant
type CapacityResponse struct {
	StationID string    `json:"station_id"`
	At        time.Time `json:"at"`
	SpotCount int       `json:"spot_count"`
	Occupied  int       `json:"occupied"`
	Free      int       `json:"free"`
}
