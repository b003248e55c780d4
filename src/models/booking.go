package models

import (
	"time"

	"hms/src/types"
)

type Booking struct {
	ID            uint                `gorm:"primarykey" json:"id"`
	ReferenceCode string              `gorm:"uniqueIndex;size:32" json:"reference_code,omitempty"`
	HotelID       uint                `gorm:"index" json:"hotel_id,omitempty"`
	GuestName     string              `json:"guest_name,omitempty"`
	RoomType      string              `gorm:"size:64" json:"room_type,omitempty"`
	Status        types.BookingStatus `gorm:"default:'pending-payment'" json:"status,omitempty"`

	// Stay interval, half-open: [check_in_date, check_out_date). A booking
	// starting exactly on another's check-out date is not a conflict.
	CheckInDate  time.Time `gorm:"type:date" json:"check_in_date,omitempty"`
	CheckOutDate time.Time `gorm:"type:date" json:"check_out_date,omitempty"`

	RoomID            *uint      `gorm:"index" json:"room_id,omitempty"`
	AssignedAt        *time.Time `json:"assigned_at,omitempty"`
	AssignedBy        string     `json:"assigned_by,omitempty"`
	AssignmentNotes   string     `json:"assignment_notes,omitempty"`
	AssignmentVersion uint       `gorm:"default:0" json:"assignment_version,omitempty"`

	CheckedInAt  *time.Time `json:"checked_in_at,omitempty"`
	CheckedOutAt *time.Time `json:"checked_out_at,omitempty"`

	PartyMembers types.JSONBArray `gorm:"type:jsonb" json:"party_members,omitempty"`
	RatePerNight float32          `json:"rate_per_night,omitempty"`
	Currency     string           `gorm:"size:8" json:"currency,omitempty"`

	Hotel Hotel `gorm:"foreignKey:hotel_id" json:"-"`
	Room  *Room `gorm:"foreignKey:room_id" json:"room,omitempty"`

	types.Timestamps
}

// IsInHouse: checked in and not yet checked out.
func (b *Booking) IsInHouse() bool {
	return b.CheckedInAt != nil && b.CheckedOutAt == nil
}

// BlocksInventory reports whether the booking currently reserves room
// inventory: confirmed and not checked out, or in-house. Pending-payment
// bookings do not block.
func (b *Booking) BlocksInventory() bool {
	if b.IsInHouse() {
		return true
	}
	return b.Status == types.BOOKING_CONFIRMED && b.CheckedOutAt == nil
}

// OverlapsStay applies the strict half-open interval test:
// other.start < this.end AND other.end > this.start.
func (b *Booking) OverlapsStay(start time.Time, end time.Time) bool {
	return b.CheckInDate.Before(end) && b.CheckOutDate.After(start)
}

func (b *Booking) Nights() int {
	return int(b.CheckOutDate.Sub(b.CheckInDate).Hours() / 24)
}
