package models

import (
	"time"

	"hms/src/types"
)

// BookingExtension is the append-only record of a stay extension attempt.
// The (booking_id, idempotency_key) unique index is what makes retried
// extend calls replay the original result instead of re-pricing or creating
// a second payment artifact. A blank key is stored as NULL, never as "".
type BookingExtension struct {
	ID        uint `gorm:"primarykey" json:"id"`
	BookingID uint `gorm:"index;uniqueIndex:udx_booking_idempotency_key" json:"booking_id,omitempty"`

	OldCheckOutDate time.Time `gorm:"type:date" json:"old_check_out_date,omitempty"`
	NewCheckOutDate time.Time `gorm:"type:date" json:"new_check_out_date,omitempty"`
	NightsAdded     int       `json:"nights_added,omitempty"`

	// Price snapshot at the booking's original rate. Extended nights are
	// never re-priced.
	Amount   float32 `json:"amount,omitempty"`
	Currency string  `gorm:"size:8" json:"currency,omitempty"`

	IdempotencyKey  *string               `gorm:"size:128;uniqueIndex:udx_booking_idempotency_key" json:"idempotency_key,omitempty"`
	PaymentIntentID *string               `json:"payment_intent_id,omitempty"`
	Status          types.ExtensionStatus `gorm:"default:'pending-payment'" json:"status,omitempty"`
	RequestedBy     string                `json:"requested_by,omitempty"`

	Booking Booking `gorm:"foreignKey:booking_id" json:"-"`

	types.Timestamps
}
