package gorm

import "time"

// Station represents an airport location that can host parked aircraft
type Station struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(4)" json:"id"`
	Name      string    `gorm:"column:name;type:text;not null" json:"name"`
	City      string    `gorm:"column:city;type:varchar(100)" json:"city"`
	SpotCount int       `gorm:"column:spot_count;not null;default:0" json:"spot_count"`
	Timezone  string    `gorm:"column:timezone;type:varchar(50)" json:"timezone"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Station) TableName() string {
	return "stations"
}
