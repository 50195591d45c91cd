package requests

// CreateAdvisoryRequest is the payload for POST /api/v1/advisories
type CreateAdvisoryRequest struct {
	StationID  string  `json:"station_id"`
	Severity   string  `json:"severity"`
	Summary    string  `json:"summary"`
	ValidFrom  string  `json:"valid_from"`
	ValidUntil *string `json:"valid_until"`
}
