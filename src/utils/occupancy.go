package utils

import (
	"context"
	"log"
	"time"

	"hms/src/db"
	"hms/src/lib"
	"hms/src/models"
	"hms/src/models/scopes"
	"hms/src/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func lockRoom(tx *gorm.DB, roomID uint) (*models.Room, error) {
	var room models.Room
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", roomID).
		First(&room).
		Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, types.NewServiceError(types.CodeNotFound, "room [%d] not found", roomID)
		}
		return nil, err
	}
	return &room, nil
}

// CheckInRoom checks in whichever booking deterministically matches the
// room: assigned to it, confirmed, not yet checked in, with today inside the
// stay interval. Earliest check-in date wins, then earliest creation time.
// The caller never picks the booking.
func CheckInRoom(roomID uint, actor string, now time.Time) (*models.Booking, error) {
	dbi := db.GetDb()
	var booking models.Booking
	err := dbi.Transaction(func(tx *gorm.DB) error {
		room, err := lockRoom(tx, roomID)
		if err != nil {
			return err
		}
		if !models.CanTransitionRoom(room.Status, types.ROOM_OCCUPIED) {
			return types.NewServiceError(types.CodeInvalidRoomStatus, "room %s is %s, not ready for check-in", room.Number, room.Status)
		}
		var inHouse int64
		if err := tx.
			Model(&models.Booking{}).
			Scopes(scopes.HoldingRoom(roomID, 0), scopes.InHouse).
			Count(&inHouse).
			Error; err != nil {
			return err
		}
		if inHouse > 0 {
			return types.NewServiceError(types.CodeAlreadyCheckedIn, "room %s already has an in-house booking", room.Number)
		}
		// "Today" is the hotel's calendar date, not the server's. A property
		// west of the server must not be refused check-in at local evening
		// just because the server clock already rolled over.
		var hotel models.Hotel
		if err := tx.Where("id = ?", room.HotelID).First(&hotel).Error; err != nil {
			return err
		}
		loc, err := hotel.Location()
		if err != nil {
			return err
		}
		today := dateOnly(now.In(loc))
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("room_id = ? AND status = ? AND checked_in_at IS NULL", roomID, types.BOOKING_CONFIRMED).
			Where("check_in_date <= ? AND check_out_date > ?", today, today).
			Order("check_in_date asc, created_at asc").
			First(&booking).
			Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return types.NewServiceError(types.CodeNoEligibleBooking, "no booking eligible for check-in on room %s", room.Number)
			}
			return err
		}
		if err := tx.
			Model(&models.Booking{}).
			Where("id = ?", booking.ID).
			Update("checked_in_at", now).
			Error; err != nil {
			return err
		}
		booking.CheckedInAt = &now
		if err := deriveGuestRecords(tx, &booking, room.ID, now); err != nil {
			return err
		}
		if err := TransitionRoomStatus(tx, room, types.ROOM_OCCUPIED, actor, "check-in"); err != nil {
			return err
		}
		audit := models.AuditEvent{
			EntityType: "booking",
			EntityID:   booking.ID,
			FromState:  string(types.BOOKING_CONFIRMED),
			ToState:    "in-house",
			Actor:      actor,
			Source:     "check-in",
		}
		return tx.Create(&audit).Error
	})
	if err != nil {
		return nil, err
	}
	models.OccupancyProducer(booking.HotelID, roomID, booking.ID, "room.checked_in", types.JSONB{
		"status":    types.ROOM_OCCUPIED,
		"occupancy": "in-house",
	})
	return &booking, nil
}

// deriveGuestRecords creates one RoomGuest per party member, keyed by
// (booking, ordinal) so a retried check-in never duplicates a record. A
// booking with no party manifest still gets a record for the primary guest.
func deriveGuestRecords(tx *gorm.DB, booking *models.Booking, roomID uint, now time.Time) error {
	names := []string{booking.GuestName}
	if len(booking.PartyMembers) > 0 {
		names = names[:0]
		for _, m := range booking.PartyMembers {
			switch v := m.(type) {
			case string:
				names = append(names, v)
			case map[string]any:
				if name, ok := v["name"].(string); ok {
					names = append(names, name)
				}
			}
		}
	}
	for i, name := range names {
		guest := models.RoomGuest{BookingID: booking.ID, Ordinal: i}
		err := tx.
			Where(&models.RoomGuest{BookingID: booking.ID, Ordinal: i}).
			Attrs(models.RoomGuest{RoomID: roomID, FullName: name, CheckedInAt: &now}).
			FirstOrCreate(&guest).
			Error
		if err != nil {
			return err
		}
	}
	return nil
}

// CheckOutRoom completes the room's in-house booking: presence timestamp,
// booking completion, portal-session revocation and the occupied->dirty
// turnover transition, all in one transaction. Guest records are never
// deleted here; occupancy derives from booking timestamps alone.
func CheckOutRoom(roomID uint, actor string, now time.Time) (*models.Booking, error) {
	dbi := db.GetDb()
	var booking models.Booking
	err := dbi.Transaction(func(tx *gorm.DB) error {
		room, err := lockRoom(tx, roomID)
		if err != nil {
			return err
		}
		if !models.CanTransitionRoom(room.Status, types.ROOM_DIRTY) || models.NormalizeRoomStatus(room.Status) != types.ROOM_OCCUPIED {
			return types.NewServiceError(types.CodeInvalidRoomStatus, "room %s is %s, not occupied", room.Number, room.Status)
		}
		// Most recent check-in wins ties.
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("room_id = ? AND checked_in_at IS NOT NULL", roomID).
			Order("checked_in_at desc").
			First(&booking).
			Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return types.NewServiceError(types.CodeNoEligibleBooking, "no booking eligible for check-out on room %s", room.Number)
			}
			return err
		}
		if booking.CheckedOutAt != nil {
			return types.NewServiceError(types.CodeAlreadyCheckedOut, "booking %s already checked out", booking.ReferenceCode)
		}
		if err := tx.
			Model(&models.Booking{}).
			Where("id = ?", booking.ID).
			Updates(map[string]any{
				"checked_out_at": now,
				"status":         types.BOOKING_COMPLETED,
			}).
			Error; err != nil {
			return err
		}
		booking.CheckedOutAt = &now
		booking.Status = types.BOOKING_COMPLETED
		if err := TransitionRoomStatus(tx, room, types.ROOM_DIRTY, actor, "check-out"); err != nil {
			return err
		}
		audit := models.AuditEvent{
			EntityType: "booking",
			EntityID:   booking.ID,
			FromState:  "in-house",
			ToState:    string(types.BOOKING_COMPLETED),
			Actor:      actor,
			Source:     "check-out",
		}
		return tx.Create(&audit).Error
	})
	if err != nil {
		return nil, err
	}
	// Session revocation is a collaborator call, not part of the transaction.
	// A failure here must not undo the check-out.
	if err := lib.RevokeRoomSessions(context.Background(), roomID); err != nil {
		log.Printf("Error revoking guest sessions for room %d: %s\n", roomID, err.Error())
	}
	models.OccupancyProducer(booking.HotelID, roomID, booking.ID, "room.checked_out", types.JSONB{
		"status":    types.ROOM_DIRTY,
		"occupancy": "vacant",
	})
	return &booking, nil
}
