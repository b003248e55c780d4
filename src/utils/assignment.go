package utils

import (
	"fmt"
	"log"
	"time"

	"hms/src/db"
	"hms/src/models"
	"hms/src/models/scopes"
	"hms/src/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// assignableRoomStatuses includes the legacy alias so rooms written by older
// housekeeping clients still surface as candidates. Writes always normalize.
var assignableRoomStatuses = []types.RoomStatus{types.ROOM_READY, types.ROOM_INSPECTED}

func assignableRooms(db *gorm.DB) *gorm.DB {
	return db.
		Where("status IN (?)", assignableRoomStatuses).
		Where("active = ?", true).
		Where("out_of_order = ?", false).
		Where("maintenance_required = ?", false)
}

// lockConflictingBookings takes FOR UPDATE locks on every booking row the
// conflict predicate could match, then returns the matched set. Locking
// before evaluating is what serializes two concurrent assignments to the
// same room: the loser blocks here and re-reads state the winner committed.
func lockConflictingBookings(tx *gorm.DB, roomID uint, excludeBookingID uint, start time.Time, end time.Time) ([]models.Booking, error) {
	var conflicts []models.Booking
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(
			scopes.HoldingRoom(roomID, excludeBookingID),
			scopes.EffectiveBlocking,
			scopes.OverlappingStay(start, end),
		).
		Find(&conflicts).
		Error
	if err != nil {
		return nil, err
	}
	return conflicts, nil
}

func bookingIDs(bookings []models.Booking) []uint {
	ids := make([]uint, 0, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.ID)
	}
	return ids
}

// conflictFreeRooms filters out rooms held by an effective-blocking booking
// that overlaps [start, end).
func conflictFreeRooms(tx *gorm.DB, excludeBookingID uint, start time.Time, end time.Time) *gorm.DB {
	sub := tx.
		Session(&gorm.Session{NewDB: true}).
		Model(&models.Booking{}).
		Select("room_id").
		Where("room_id IS NOT NULL").
		Scopes(scopes.EffectiveBlocking, scopes.OverlappingStay(start, end))
	if excludeBookingID > 0 {
		sub = sub.Where("id <> ?", excludeBookingID)
	}
	return tx.Model(&models.Room{}).Scopes(assignableRooms).Where("id NOT IN (?)", sub)
}

// FindCandidateRooms returns the assignable rooms of the booking's type in
// the booking's hotel with no overlapping blocker, ordered by room number.
func FindCandidateRooms(bookingID uint) ([]types.RoomSummary, error) {
	dbi := db.GetDb()
	var booking models.Booking
	if err := dbi.
		Where(&models.Booking{ID: bookingID}).
		First(&booking).
		Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, types.NewServiceError(types.CodeNotFound, "booking [%d] not found", bookingID)
		}
		return nil, err
	}
	var rooms []models.Room
	err := conflictFreeRooms(dbi, booking.ID, booking.CheckInDate, booking.CheckOutDate).
		Where("hotel_id = ?", booking.HotelID).
		Where("room_type = ?", booking.RoomType).
		Order("number asc").
		Find(&rooms).
		Error
	if err != nil {
		return nil, err
	}
	return roomSummaries(rooms), nil
}

func roomSummaries(rooms []models.Room) []types.RoomSummary {
	out := make([]types.RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, types.RoomSummary{ID: r.ID, Number: r.Number, Type: r.RoomType})
	}
	return out
}

// suggestRoomsTx returns assignable rooms with no overlap over [start, end),
// preferred type first, then any type. Suggestions are display-only; nothing
// ever auto-applies one.
func suggestRoomsTx(tx *gorm.DB, hotelID uint, excludeBookingID uint, start time.Time, end time.Time, preferredType string) ([]types.RoomSummary, error) {
	var preferred []models.Room
	if preferredType != "" {
		err := conflictFreeRooms(tx, excludeBookingID, start, end).
			Where("hotel_id = ?", hotelID).
			Where("room_type = ?", preferredType).
			Order("number asc").
			Find(&preferred).
			Error
		if err != nil {
			return nil, err
		}
	}
	var rest []models.Room
	q := conflictFreeRooms(tx, excludeBookingID, start, end).
		Where("hotel_id = ?", hotelID)
	if preferredType != "" {
		q = q.Where("room_type <> ?", preferredType)
	}
	if err := q.Order("number asc").Find(&rest).Error; err != nil {
		return nil, err
	}
	return append(roomSummaries(preferred), roomSummaries(rest)...), nil
}

// SuggestRooms is the read-only variant used by the suggestions endpoint.
func SuggestRooms(hotelID uint, start time.Time, end time.Time, preferredType string) ([]types.RoomSummary, error) {
	return suggestRoomsTx(db.GetDb(), hotelID, 0, start, end, preferredType)
}

// AssignRoom atomically attaches the booking to the room. Locking order:
// booking row, room row, then every booking row the conflict predicate could
// match over the requested interval. Only after all locks are held is the
// state re-validated. Assigning a booking to the room it already holds is a
// no-op success.
func AssignRoom(bookingID uint, roomID uint, actor string, notes string) (*models.Booking, error) {
	dbi := db.GetDb()
	var booking models.Booking
	var room models.Room
	changed := false
	err := dbi.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", bookingID).
			First(&booking).
			Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return types.NewServiceError(types.CodeNotFound, "booking [%d] not found", bookingID)
			}
			return err
		}
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", roomID).
			First(&room).
			Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return types.NewServiceError(types.CodeNotFound, "room [%d] not found", roomID)
			}
			return err
		}
		conflicts, err := lockConflictingBookings(tx, roomID, bookingID, booking.CheckInDate, booking.CheckOutDate)
		if err != nil {
			return err
		}

		if room.HotelID != booking.HotelID {
			return types.NewServiceError(types.CodeHotelMismatch, "room %s belongs to a different hotel", room.Number)
		}
		if room.RoomType != booking.RoomType {
			return types.NewServiceError(types.CodeRoomTypeMismatch, "room %s is type %s, booking wants %s", room.Number, room.RoomType, booking.RoomType)
		}
		if booking.Status != types.BOOKING_CONFIRMED {
			return types.NewServiceError(types.CodeBookingStatusNotAssignable, "booking %s is %s", booking.ReferenceCode, booking.Status)
		}
		if booking.IsInHouse() {
			return types.NewServiceError(types.CodeBookingAlreadyCheckedIn, "booking %s is in-house", booking.ReferenceCode)
		}
		if booking.RoomID != nil && *booking.RoomID == room.ID {
			// Idempotent retry: same room, same snapshot, no new audit row.
			return nil
		}
		if !room.IsAssignable() {
			return types.NewServiceError(types.CodeRoomNotAssignable, "room %s is %s", room.Number, room.Status)
		}
		if len(conflicts) > 0 {
			suggestions, serr := suggestRoomsTx(tx, booking.HotelID, booking.ID, booking.CheckInDate, booking.CheckOutDate, booking.RoomType)
			if serr != nil {
				log.Printf("Error building room suggestions: %s\n", serr.Error())
			}
			return types.NewConflictError(bookingIDs(conflicts), suggestions)
		}

		fromState := "unassigned"
		if booking.RoomID != nil {
			fromState = fmt.Sprintf("room:%d", *booking.RoomID)
		}
		now := time.Now()
		if err := tx.
			Model(&models.Booking{}).
			Where("id = ?", booking.ID).
			Updates(map[string]any{
				"room_id":            room.ID,
				"assigned_at":        now,
				"assigned_by":        actor,
				"assignment_notes":   notes,
				"assignment_version": gorm.Expr("assignment_version + 1"),
			}).
			Error; err != nil {
			return err
		}
		audit := models.AuditEvent{
			EntityType: "booking_assignment",
			EntityID:   booking.ID,
			FromState:  fromState,
			ToState:    fmt.Sprintf("room:%d", room.ID),
			Actor:      actor,
			Source:     "assignment",
		}
		if err := tx.Create(&audit).Error; err != nil {
			return err
		}
		changed = true
		// Re-read for an accurate snapshot (version counter included).
		return tx.Where("id = ?", booking.ID).First(&booking).Error
	})
	if err != nil {
		return nil, err
	}
	if changed && booking.RoomID != nil {
		models.BookingAssignedProducer(booking.HotelID, booking.ID, *booking.RoomID, booking.AssignmentVersion)
	}
	return &booking, nil
}

// UnassignRoom detaches the booking from its room. Rejected once the guest
// is in-house; relocation of an in-house guest is always a manual check-out
// plus re-assignment, never an unassign.
func UnassignRoom(bookingID uint, actor string) error {
	dbi := db.GetDb()
	var booking models.Booking
	var freedRoom uint
	err := dbi.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", bookingID).
			First(&booking).
			Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return types.NewServiceError(types.CodeNotFound, "booking [%d] not found", bookingID)
			}
			return err
		}
		if booking.IsInHouse() {
			return types.NewServiceError(types.CodeBookingAlreadyCheckedIn, "booking %s is in-house", booking.ReferenceCode)
		}
		if booking.RoomID == nil {
			// Nothing to detach.
			return nil
		}
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", *booking.RoomID).
			First(&models.Room{}).
			Error; err != nil {
			return err
		}
		freedRoom = *booking.RoomID
		if err := tx.
			Model(&models.Booking{}).
			Where("id = ?", booking.ID).
			Updates(map[string]any{
				"room_id":            nil,
				"assigned_at":        nil,
				"assigned_by":        actor,
				"assignment_notes":   "",
				"assignment_version": gorm.Expr("assignment_version + 1"),
			}).
			Error; err != nil {
			return err
		}
		audit := models.AuditEvent{
			EntityType: "booking_assignment",
			EntityID:   booking.ID,
			FromState:  fmt.Sprintf("room:%d", freedRoom),
			ToState:    "unassigned",
			Actor:      actor,
			Source:     "assignment",
		}
		return tx.Create(&audit).Error
	})
	if err != nil {
		return err
	}
	if freedRoom > 0 {
		models.BookingUnassignedProducer(booking.HotelID, booking.ID, freedRoom)
	}
	return nil
}
