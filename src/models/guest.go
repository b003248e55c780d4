package models

import (
	"time"

	"hms/src/types"
)

// RoomGuest is the derived guest record created at check-in, one per party
// member. The (booking_id, ordinal) key makes repeated check-in calls
// idempotent: they never duplicate a record.
//
// Deleting a RoomGuest has no effect on room occupancy. Occupancy is derived
// only from the booking's presence timestamps.
type RoomGuest struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	BookingID   uint       `gorm:"uniqueIndex:udx_booking_party_member" json:"booking_id,omitempty"`
	Ordinal     int        `gorm:"uniqueIndex:udx_booking_party_member" json:"ordinal"`
	RoomID      uint       `gorm:"index" json:"room_id,omitempty"`
	FullName    string     `json:"full_name,omitempty"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`

	Booking Booking `gorm:"foreignKey:booking_id" json:"-"`

	types.Timestamps
}
