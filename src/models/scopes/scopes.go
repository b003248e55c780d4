package scopes

import (
	"time"

	"hms/src/types"

	"gorm.io/gorm"
)

func WithID(id uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ?", id)
	}
}

// EffectiveBlocking filters bookings that currently reserve room inventory:
// confirmed and not checked out, or in-house. Must stay in lockstep with
// models.Booking.BlocksInventory.
func EffectiveBlocking(db *gorm.DB) *gorm.DB {
	return db.Where(
		"(status = ? AND checked_out_at IS NULL) OR (checked_in_at IS NOT NULL AND checked_out_at IS NULL)",
		types.BOOKING_CONFIRMED,
	)
}

// OverlappingStay applies the strict half-open interval test against
// [start, end). A booking starting exactly on end is not a match.
func OverlappingStay(start time.Time, end time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("check_in_date < ? AND check_out_date > ?", end, start)
	}
}

// HoldingRoom filters bookings attached to the given room, optionally
// excluding one booking id (the one being validated).
func HoldingRoom(roomID uint, excludeBookingID uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("room_id = ?", roomID)
		if excludeBookingID > 0 {
			db = db.Where("id <> ?", excludeBookingID)
		}
		return db
	}
}

// InHouse filters bookings whose guests are currently in the building.
func InHouse(db *gorm.DB) *gorm.DB {
	return db.Where("checked_in_at IS NOT NULL AND checked_out_at IS NULL")
}
