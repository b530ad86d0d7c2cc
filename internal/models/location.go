package models

import "time"

type LocationKind string

const (
	LocationPlant   LocationKind = "plant"
	LocationArea    LocationKind = "area"
	LocationLine    LocationKind = "line"
	LocationMachine LocationKind = "machine"
)

// LocationEntity is one node of the plant/area/line/machine hierarchy. Used
// for display labels only; it has no effect on lifecycle rules.
type LocationEntity struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	ParentID  *uint        `gorm:"index" json:"parent_id"`
	Kind      LocationKind `gorm:"type:varchar(20);not null" json:"kind"`
	Name      string       `gorm:"not null" json:"name"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (LocationEntity) TableName() string {
	return "locations"
}
