package entities

import "time"

// AllocationRow is the sqlx scan target for the raw-SQL read paths
// (range feed, per-tail history). The write side goes through GORM.
type AllocationRow struct {
	ID          string     `db:"id" json:"id"`
	TailNumber  string     `db:"tail_number" json:"tail_number"`
	StationID   string     `db:"station_id" json:"station_id"`
	PeriodStart time.Time  `db:"period_start" json:"period_start"`
	PeriodEnd   *time.Time `db:"period_end" json:"period_end"`
	Carrier     string     `db:"carrier" json:"carrier"`
	InboundFlt  string     `db:"inbound_flt" json:"inbound_flt"`
	OutboundFlt string     `db:"outbound_flt" json:"outbound_flt"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}
