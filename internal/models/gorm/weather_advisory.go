package gorm

import "time"

// WeatherAdvisory is auxiliary read-only data joined to a station by id.
// Advisories carry the raw forecast text; no parsing happens here.
type WeatherAdvisory struct {
	ID         string     `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	StationID  string     `gorm:"column:station_id;type:varchar(4);not null;index" json:"station_id"`
	Severity   string     `gorm:"column:severity;type:varchar(20);not null" json:"severity"`
	Summary    string     `gorm:"column:summary;type:text;not null" json:"summary"`
	ValidFrom  time.Time  `gorm:"column:valid_from;not null" json:"valid_from"`
	ValidUntil *time.Time `gorm:"column:valid_until" json:"valid_until"`
	CreatedAt  time.Time  `gorm:"column:created_at;default:now()" json:"created_at"`
}

// TableName specifies the table name for GORM
func (WeatherAdvisory) TableName() string {
	return "weather_advisories"
}

// ActiveAt reports whether the advisory's validity window covers t,
// under the same [start, end) semantics as allocations.
func (w *WeatherAdvisory) ActiveAt(t time.Time) bool {
	if w.ValidFrom.After(t) {
		return false
	}
	return w.ValidUntil == nil || w.ValidUntil.After(t)
}
