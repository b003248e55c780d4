package models

import (
	"time"

	"hms/src/types"
)

type Hotel struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	Name     string `json:"name,omitempty"`
	Code     string `gorm:"uniqueIndex;size:32" json:"code,omitempty"`
	Country  string `json:"country,omitempty"`
	Timezone string `gorm:"default:'UTC'" json:"timezone,omitempty"`

	Rooms []Room `json:"rooms,omitempty"`

	types.Timestamps
}

// Location resolves the hotel's IANA timezone. Noon cutoffs for overstay
// detection are computed in this location so DST days resolve to one
// unambiguous instant.
func (h *Hotel) Location() (*time.Location, error) {
	return time.LoadLocation(h.Timezone)
}
