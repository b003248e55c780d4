package utils

import (
	"testing"
	"time"

	"hms/src/db"
	"hms/src/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestCheckInRejectsRoomNotReady(t *testing.T) {
	gormDB, mock := db.NewMockDB()
	db.NewDB(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "rooms" WHERE id = \$1(.+)FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(roomColumns).
			AddRow(5, 1, "101", "king", string(types.ROOM_DIRTY), true, false, false))
	mock.ExpectRollback()

	_, err := CheckInRoom(5, "staff:1", time.Now())
	se := types.AsServiceError(err)
	if assert.NotNil(t, se) {
		assert.Equal(t, types.CodeInvalidRoomStatus, se.Code)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

var hotelColumns = []string{"id", "name", "code", "country", "timezone"}

// The check-in date window is evaluated on the hotel's calendar date. At
// 02:00 UTC on Jan 11 a Honolulu property is still on Jan 10, so the
// eligibility window must be queried with Jan 10.
func TestCheckInUsesHotelLocalDate(t *testing.T) {
	gormDB, mock := db.NewMockDB()
	db.NewDB(gormDB)

	now := time.Date(2026, 1, 11, 2, 0, 0, 0, time.UTC)
	localDate := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "rooms" WHERE id = \$1(.+)FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(roomColumns).
			AddRow(5, 1, "101", "king", string(types.ROOM_READY), true, false, false))
	mock.ExpectQuery(`SELECT count(.+) FROM "bookings" WHERE room_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT (.+) FROM "hotels" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(hotelColumns).AddRow(1, "Lagoon", "LGN", "US", "Pacific/Honolulu"))
	mock.ExpectQuery(`SELECT (.+) FROM "bookings" WHERE \(room_id = \$1 AND status = \$2 AND checked_in_at IS NULL\)`).
		WithArgs(5, string(types.BOOKING_CONFIRMED), localDate, localDate, 1).
		WillReturnRows(sqlmock.NewRows(bookingColumns))
	mock.ExpectRollback()

	_, err := CheckInRoom(5, "staff:1", now)
	se := types.AsServiceError(err)
	if assert.NotNil(t, se) {
		assert.Equal(t, types.CodeNoEligibleBooking, se.Code)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckInNoEligibleBooking(t *testing.T) {
	gormDB, mock := db.NewMockDB()
	db.NewDB(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "rooms" WHERE id = \$1(.+)FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(roomColumns).
			AddRow(5, 1, "101", "king", string(types.ROOM_READY), true, false, false))
	mock.ExpectQuery(`SELECT count(.+) FROM "bookings" WHERE room_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT (.+) FROM "hotels" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(hotelColumns).AddRow(1, "Harbour", "HBR", "US", "UTC"))
	mock.ExpectQuery(`SELECT (.+) FROM "bookings" WHERE \(room_id = \$1 AND status = \$2 AND checked_in_at IS NULL\)`).
		WillReturnRows(sqlmock.NewRows(bookingColumns))
	mock.ExpectRollback()

	_, err := CheckInRoom(5, "staff:1", time.Now())
	se := types.AsServiceError(err)
	if assert.NotNil(t, se) {
		assert.Equal(t, types.CodeNoEligibleBooking, se.Code)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckOutRequiresOccupiedRoom(t *testing.T) {
	gormDB, mock := db.NewMockDB()
	db.NewDB(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "rooms" WHERE id = \$1(.+)FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(roomColumns).
			AddRow(5, 1, "101", "king", string(types.ROOM_READY), true, false, false))
	mock.ExpectRollback()

	_, err := CheckOutRoom(5, "staff:1", time.Now())
	se := types.AsServiceError(err)
	if assert.NotNil(t, se) {
		assert.Equal(t, types.CodeInvalidRoomStatus, se.Code)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckOutAlreadyCheckedOut(t *testing.T) {
	gormDB, mock := db.NewMockDB()
	db.NewDB(gormDB)

	checkedIn := time.Date(2026, 1, 10, 15, 0, 0, 0, time.UTC)
	checkedOut := time.Date(2026, 1, 12, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "rooms" WHERE id = \$1(.+)FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(roomColumns).
			AddRow(5, 1, "101", "king", string(types.ROOM_OCCUPIED), true, false, false))
	mock.ExpectQuery(`SELECT (.+) FROM "bookings" WHERE \(room_id = \$1 AND checked_in_at IS NOT NULL\)(.+)FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(bookingColumns).AddRow(
			1, "BK-1001", 1, "king", string(types.BOOKING_COMPLETED),
			time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC),
			5, 1, checkedIn, checkedOut, 120.0, "usd",
		))
	mock.ExpectRollback()

	_, err := CheckOutRoom(5, "staff:1", time.Now())
	se := types.AsServiceError(err)
	if assert.NotNil(t, se) {
		assert.Equal(t, types.CodeAlreadyCheckedOut, se.Code)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
