package models

import (
	"testing"
	"time"

	"hms/src/types"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOverlapsStayHalfOpenInterval(t *testing.T) {
	// Booking A holds [Jan 10, Jan 12).
	a := Booking{CheckInDate: date(2026, 1, 10), CheckOutDate: date(2026, 1, 12)}

	// [Jan 11, Jan 13) overlaps.
	assert.True(t, a.OverlapsStay(date(2026, 1, 11), date(2026, 1, 13)))
	// [Jan 9, Jan 11) overlaps.
	assert.True(t, a.OverlapsStay(date(2026, 1, 9), date(2026, 1, 11)))
	// Fully contained.
	assert.True(t, a.OverlapsStay(date(2026, 1, 10), date(2026, 1, 12)))

	// Back-to-back stays are not conflicts: a booking starting exactly on
	// A's check-out date shares no night with it.
	assert.False(t, a.OverlapsStay(date(2026, 1, 12), date(2026, 1, 14)))
	assert.False(t, a.OverlapsStay(date(2026, 1, 8), date(2026, 1, 10)))
}

func TestIsInHouse(t *testing.T) {
	now := time.Now()
	assert.False(t, (&Booking{}).IsInHouse())
	assert.True(t, (&Booking{CheckedInAt: &now}).IsInHouse())
	assert.False(t, (&Booking{CheckedInAt: &now, CheckedOutAt: &now}).IsInHouse())
}

func TestBlocksInventory(t *testing.T) {
	now := time.Now()

	assert.True(t, (&Booking{Status: types.BOOKING_CONFIRMED}).BlocksInventory())
	assert.True(t, (&Booking{Status: types.BOOKING_CONFIRMED, CheckedInAt: &now}).BlocksInventory())
	// In-house blocks even if the status field were out of step.
	assert.True(t, (&Booking{Status: types.BOOKING_PENDING_APPROVAL, CheckedInAt: &now}).BlocksInventory())

	// Pending-payment does not hold inventory.
	assert.False(t, (&Booking{Status: types.BOOKING_PENDING_PAYMENT}).BlocksInventory())
	assert.False(t, (&Booking{Status: types.BOOKING_CANCELED}).BlocksInventory())
	assert.False(t, (&Booking{Status: types.BOOKING_COMPLETED, CheckedInAt: &now, CheckedOutAt: &now}).BlocksInventory())
}

func TestNights(t *testing.T) {
	b := Booking{CheckInDate: date(2026, 1, 10), CheckOutDate: date(2026, 1, 12)}
	assert.Equal(t, 2, b.Nights())
}
