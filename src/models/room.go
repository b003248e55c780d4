package models

import (
	"hms/src/types"
)

type Room struct {
	ID                  uint             `gorm:"primarykey" json:"id"`
	HotelID             uint             `gorm:"uniqueIndex:udx_hotel_room_number" json:"hotel_id,omitempty"`
	Number              string           `gorm:"uniqueIndex:udx_hotel_room_number;size:16" json:"number,omitempty"`
	RoomType            string           `gorm:"size:64" json:"room_type,omitempty"`
	Status              types.RoomStatus `gorm:"default:'dirty'" json:"status,omitempty"`
	Floor               string           `gorm:"size:8" json:"floor,omitempty"`
	Active              bool             `gorm:"default:true" json:"active"`
	OutOfOrder          bool             `gorm:"default:false" json:"out_of_order"`
	MaintenanceRequired bool             `gorm:"default:false" json:"maintenance_required"`

	Hotel Hotel `gorm:"foreignKey:hotel_id" json:"-"`

	types.Timestamps
}

// turnoverTransitions is the only source of truth for legal housekeeping
// moves. Anything outside this table fails with INVALID_TRANSITION and is
// never silently coerced.
var turnoverTransitions = map[types.RoomStatus][]types.RoomStatus{
	types.ROOM_DIRTY:        {types.ROOM_CLEANING, types.ROOM_MAINTENANCE},
	types.ROOM_CLEANING:     {types.ROOM_CLEANED, types.ROOM_DIRTY, types.ROOM_MAINTENANCE},
	types.ROOM_CLEANED:      {types.ROOM_READY, types.ROOM_DIRTY, types.ROOM_MAINTENANCE},
	types.ROOM_READY:        {types.ROOM_OCCUPIED, types.ROOM_MAINTENANCE, types.ROOM_OUT_OF_ORDER},
	types.ROOM_OCCUPIED:     {types.ROOM_DIRTY},
	types.ROOM_MAINTENANCE:  {types.ROOM_DIRTY, types.ROOM_OUT_OF_ORDER},
	types.ROOM_OUT_OF_ORDER: {types.ROOM_DIRTY},
}

// NormalizeRoomStatus maps the legacy "inspected" alias to ready. All other
// values pass through unchanged, valid or not.
func NormalizeRoomStatus(s types.RoomStatus) types.RoomStatus {
	if s == types.ROOM_INSPECTED {
		return types.ROOM_READY
	}
	return s
}

func IsValidRoomStatus(s types.RoomStatus) bool {
	_, ok := turnoverTransitions[NormalizeRoomStatus(s)]
	return ok
}

func CanTransitionRoom(from types.RoomStatus, to types.RoomStatus) bool {
	from = NormalizeRoomStatus(from)
	to = NormalizeRoomStatus(to)
	for _, next := range turnoverTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsAssignable reports whether the room can receive a booking right now.
// Any override flag forces false regardless of turnover status.
func (r *Room) IsAssignable() bool {
	if !r.Active || r.OutOfOrder || r.MaintenanceRequired {
		return false
	}
	return NormalizeRoomStatus(r.Status) == types.ROOM_READY
}
