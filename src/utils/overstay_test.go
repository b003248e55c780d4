package utils

import (
	"testing"
	"time"

	"hms/src/db"
	"hms/src/models"
	"hms/src/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func mustLoadLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("could not load location %s: %s", name, err.Error())
	}
	return loc
}

func TestLocalNoonUTC(t *testing.T) {
	loc := time.UTC
	noon := LocalNoon(time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC), loc)
	assert.Equal(t, time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC), noon)
}

func TestLocalNoonAcrossDSTShift(t *testing.T) {
	ny := mustLoadLocation(t, "America/New_York")

	// 2026-03-08 is the spring-forward day in America/New_York: offsets
	// shift from -05:00 to -04:00 at 02:00 local. Noon local is still one
	// unambiguous instant, 16:00 UTC.
	dstDay := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	noon := LocalNoon(dstDay, ny)
	assert.Equal(t, time.Date(2026, 3, 8, 16, 0, 0, 0, time.UTC), noon.UTC())

	// The day before, noon is 17:00 UTC.
	before := LocalNoon(time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC), ny)
	assert.Equal(t, time.Date(2026, 3, 7, 17, 0, 0, 0, time.UTC), before.UTC())
}

func TestPastLocalNoonBoundary(t *testing.T) {
	loc := time.UTC
	checkout := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)

	oneBefore := time.Date(2026, 1, 20, 11, 59, 0, 0, time.UTC)
	exactlyNoon := time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)
	oneAfter := time.Date(2026, 1, 20, 12, 1, 0, 0, time.UTC)

	assert.False(t, PastLocalNoon(oneBefore, checkout, loc))
	assert.True(t, PastLocalNoon(exactlyNoon, checkout, loc))
	assert.True(t, PastLocalNoon(oneAfter, checkout, loc))

	// A checkout date in the future never counts as past noon.
	assert.False(t, PastLocalNoon(exactlyNoon, checkout.AddDate(0, 0, 2), loc))
	// A checkout date already behind us always does.
	assert.True(t, PastLocalNoon(exactlyNoon, checkout.AddDate(0, 0, -1), loc))
}

func TestExtendStayRejectsAmbiguousInput(t *testing.T) {
	gormDB, _ := db.NewMockDB()
	db.NewDB(gormDB)

	now := time.Now()
	newDate := "2026-01-22"
	nights := 2

	// Neither input.
	_, err := ExtendStay(1, "staff:1", types.ExtendStayRequestBody{}, now)
	se := types.AsServiceError(err)
	if assert.NotNil(t, se) {
		assert.Equal(t, types.CodeInvalidInput, se.Code)
	}

	// Both inputs.
	_, err = ExtendStay(1, "staff:1", types.ExtendStayRequestBody{
		NewCheckOutDate: &newDate,
		AddNights:       &nights,
	}, now)
	se = types.AsServiceError(err)
	if assert.NotNil(t, se) {
		assert.Equal(t, types.CodeInvalidInput, se.Code)
	}

	// Unparseable date.
	bad := "22/01/2026"
	_, err = ExtendStay(1, "staff:1", types.ExtendStayRequestBody{NewCheckOutDate: &bad}, now)
	se = types.AsServiceError(err)
	if assert.NotNil(t, se) {
		assert.Equal(t, types.CodeInvalidInput, se.Code)
	}
}

func TestExtendStayReplaysIdempotencyKey(t *testing.T) {
	gormDB, mock := db.NewMockDB()
	db.NewDB(gormDB)

	stored := "pi_123"
	mock.ExpectQuery(`SELECT (.+) FROM "booking_extensions" WHERE \(booking_id = \$1 AND idempotency_key = \$2\)`).
		WithArgs(7, "retry-1", 1).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "booking_id", "old_check_out_date", "new_check_out_date",
			"nights_added", "amount", "currency", "idempotency_key",
			"payment_intent_id", "status",
		}).AddRow(
			3, 7, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 22, 0, 0, 0, 0, time.UTC),
			2, 240.0, "usd", "retry-1",
			stored, string(types.EXTENSION_PENDING_PAYMENT),
		))

	result, err := ExtendStay(7, "staff:1", types.ExtendStayRequestBody{
		IdempotencyKey: "retry-1",
	}, time.Now())
	assert.NoError(t, err)
	if assert.NotNil(t, result) {
		assert.True(t, result.Replayed)
		assert.Equal(t, uint(3), result.ExtensionID)
		assert.Equal(t, 2, result.NightsAdded)
		assert.Equal(t, "2026-01-22", result.NewCheckOutDate)
		if assert.NotNil(t, result.PaymentIntentID) {
			assert.Equal(t, "pi_123", *result.PaymentIntentID)
		}
	}
	// No transaction was opened and no second payment artifact requested.
	assert.NoError(t, mock.ExpectationsWereMet())
}

var extensionColumns = []string{
	"id", "booking_id", "old_check_out_date", "new_check_out_date",
	"nights_added", "amount", "currency", "idempotency_key",
	"payment_intent_id", "status",
}

func storedExtensionRow(mockRows *sqlmock.Rows) *sqlmock.Rows {
	return mockRows.AddRow(
		3, 7, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 22, 0, 0, 0, 0, time.UTC),
		2, 240.0, "usd", "retry-1",
		"pi_123", string(types.EXTENSION_PENDING_PAYMENT),
	)
}

// Two concurrent retries with the same key can both miss the fast-path
// lookup. The loser then blocks on the booking lock; once it acquires the
// lock it must see the winner's committed extension and replay it, never
// re-pricing or requesting a second payment intent.
func TestExtendStayReplaysAfterBookingLock(t *testing.T) {
	gormDB, mock := db.NewMockDB()
	db.NewDB(gormDB)

	nights := 2

	// Fast-path miss: the winner has not committed yet.
	mock.ExpectQuery(`SELECT (.+) FROM "booking_extensions" WHERE \(booking_id = \$1 AND idempotency_key = \$2\)`).
		WillReturnRows(sqlmock.NewRows(extensionColumns))
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "bookings" WHERE id = \$1(.+)FOR UPDATE`).
		WillReturnRows(confirmedBookingRow(sqlmock.NewRows(bookingColumns), 7, 1, 5))
	// Under the lock the winner's row is visible.
	mock.ExpectQuery(`SELECT (.+) FROM "booking_extensions" WHERE \(booking_id = \$1 AND idempotency_key = \$2\)`).
		WillReturnRows(storedExtensionRow(sqlmock.NewRows(extensionColumns)))
	// No re-pricing, no insert, no payment intent: the retry commits as-is.
	mock.ExpectCommit()

	result, err := ExtendStay(7, "staff:1", types.ExtendStayRequestBody{
		AddNights:      &nights,
		IdempotencyKey: "retry-1",
	}, time.Now())
	assert.NoError(t, err)
	if assert.NotNil(t, result) {
		assert.True(t, result.Replayed)
		assert.Equal(t, uint(3), result.ExtensionID)
		if assert.NotNil(t, result.PaymentIntentID) {
			assert.Equal(t, "pi_123", *result.PaymentIntentID)
		}
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExtensionResolvesIncidentBeforeNoon(t *testing.T) {
	gormDB, mock := db.NewMockDB()
	db.NewDB(gormDB)

	booking := models.Booking{
		ID:           7,
		HotelID:      1,
		CheckOutDate: time.Date(2026, 1, 22, 0, 0, 0, 0, time.UTC),
	}
	// Two days before the new checkout: well clear of its noon cutoff.
	now := time.Date(2026, 1, 20, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "overstay_incidents" WHERE \(booking_id = \$1 AND status IN (.+)FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "hotel_id", "status"}).
			AddRow(11, 7, 1, string(types.INCIDENT_OPEN)))
	mock.ExpectQuery(`SELECT (.+) FROM "hotels" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "code", "country", "timezone"}).
			AddRow(1, "Harbour", "HBR", "US", "UTC"))
	mock.ExpectExec(`UPDATE "overstay_incidents" SET (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "audit_events" (.+)`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).
			AddRow("7c9a1f2e-5b34-4c8d-9e0f-63a2b1d4c5e6"))
	mock.ExpectCommit()

	err := gormDB.Transaction(func(tx *gorm.DB) error {
		return resolveIncidentAfterExtension(tx, &booking, "staff:1", now)
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Extending to later the same local day, already past noon, is still an
// overstay: the incident stays open.
func TestExtensionKeepsIncidentOpenPastNoon(t *testing.T) {
	gormDB, mock := db.NewMockDB()
	db.NewDB(gormDB)

	booking := models.Booking{
		ID:           7,
		HotelID:      1,
		CheckOutDate: time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC),
	}
	now := time.Date(2026, 1, 20, 13, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "overstay_incidents" WHERE \(booking_id = \$1 AND status IN (.+)FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "hotel_id", "status"}).
			AddRow(11, 7, 1, string(types.INCIDENT_OPEN)))
	mock.ExpectQuery(`SELECT (.+) FROM "hotels" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "code", "country", "timezone"}).
			AddRow(1, "Harbour", "HBR", "US", "UTC"))
	// No UPDATE and no audit row.
	mock.ExpectCommit()

	err := gormDB.Transaction(func(tx *gorm.DB) error {
		return resolveIncidentAfterExtension(tx, &booking, "staff:1", now)
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExtendStayBlankKeyIsNoKey(t *testing.T) {
	gormDB, _ := db.NewMockDB()
	db.NewDB(gormDB)

	// A whitespace-only key must not trigger a replay lookup; with no other
	// input the call fails validation before touching the database.
	_, err := ExtendStay(7, "staff:1", types.ExtendStayRequestBody{IdempotencyKey: "   "}, time.Now())
	se := types.AsServiceError(err)
	if assert.NotNil(t, se) {
		assert.Equal(t, types.CodeInvalidInput, se.Code)
	}
}
