package utils

import (
	"hms/src/db"
	"hms/src/models"
	"hms/src/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransitionRoomStatus is the single write path for rooms.status. Every
// caller, including check-in/check-out, goes through here so the transition
// table is enforced in exactly one place. The caller must already hold the
// room row lock inside tx.
func TransitionRoomStatus(tx *gorm.DB, room *models.Room, to types.RoomStatus, actor string, source string) error {
	from := models.NormalizeRoomStatus(room.Status)
	to = models.NormalizeRoomStatus(to)
	if !models.IsValidRoomStatus(to) {
		return types.NewServiceError(types.CodeInvalidTransition, "unknown room status %q", to)
	}
	if !models.CanTransitionRoom(from, to) {
		return types.NewServiceError(types.CodeInvalidTransition, "room %s cannot move from %s to %s", room.Number, from, to)
	}
	if err := tx.
		Model(&models.Room{}).
		Where("id = ?", room.ID).
		Update("status", to).
		Error; err != nil {
		return err
	}
	audit := models.AuditEvent{
		EntityType: "room",
		EntityID:   room.ID,
		FromState:  string(from),
		ToState:    string(to),
		Actor:      actor,
		Source:     source,
	}
	if err := tx.Create(&audit).Error; err != nil {
		return err
	}
	room.Status = to
	return nil
}

// TransitionRoom runs a single housekeeping transition in its own
// transaction, locking the room row first. This is what the manual
// housekeeping endpoint calls.
func TransitionRoom(roomID uint, to types.RoomStatus, actor string, source string) (*models.Room, error) {
	var room models.Room
	dbi := db.GetDb()
	err := dbi.Transaction(func(tx *gorm.DB) error {
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
		return TransitionRoomStatus(tx, &room, to, actor, source)
	})
	if err != nil {
		return nil, err
	}
	models.RoomStatusProducer(room.HotelID, room.ID, room.Status)
	return &room, nil
}
