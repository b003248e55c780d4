package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any
type JSONBArray []any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

func (a JSONBArray) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONBArray) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

// RoomStatus is the housekeeping turnover state of a room, independent of
// which booking (if any) occupies it.
type RoomStatus string

const (
	ROOM_DIRTY        RoomStatus = "dirty"
	ROOM_CLEANING     RoomStatus = "cleaning"
	ROOM_CLEANED      RoomStatus = "cleaned-uninspected"
	ROOM_READY        RoomStatus = "ready"
	ROOM_OCCUPIED     RoomStatus = "occupied"
	ROOM_MAINTENANCE  RoomStatus = "maintenance"
	ROOM_OUT_OF_ORDER RoomStatus = "out-of-order"

	// ROOM_INSPECTED is a legacy alias still sent by older housekeeping
	// clients. It is accepted as input and normalized to ROOM_READY on write.
	ROOM_INSPECTED RoomStatus = "inspected"
)

type BookingStatus string

const (
	BOOKING_PENDING_PAYMENT  BookingStatus = "pending-payment"
	BOOKING_PENDING_APPROVAL BookingStatus = "pending-approval"
	BOOKING_CONFIRMED        BookingStatus = "confirmed"
	BOOKING_DECLINED         BookingStatus = "declined"
	BOOKING_CANCELED         BookingStatus = "cancelled"
	BOOKING_COMPLETED        BookingStatus = "completed"
	BOOKING_NO_SHOW          BookingStatus = "no-show"
)

type IncidentStatus string

const (
	INCIDENT_OPEN         IncidentStatus = "open"
	INCIDENT_ACKNOWLEDGED IncidentStatus = "acknowledged"
	INCIDENT_RESOLVED     IncidentStatus = "resolved"
	INCIDENT_DISMISSED    IncidentStatus = "dismissed"
)

type ExtensionStatus string

const (
	EXTENSION_PENDING_PAYMENT ExtensionStatus = "pending-payment"
	EXTENSION_CONFIRMED       ExtensionStatus = "confirmed"
	EXTENSION_FAILED          ExtensionStatus = "failed"
)

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type AssignRoomRequestBody struct {
	RoomID uint   `json:"room_id" binding:"required"`
	Notes  string `json:"notes,omitempty"`
}

type TransitionRoomRequestBody struct {
	Status string `json:"status" binding:"required"`
}

type AcknowledgeIncidentRequestBody struct {
	Note    string `json:"note,omitempty"`
	Dismiss bool   `json:"dismiss,omitempty"`
}

type ExtendStayRequestBody struct {
	NewCheckOutDate *string `json:"new_check_out_date,omitempty" binding:"omitempty,staydate"`
	AddNights       *int    `json:"add_nights,omitempty" binding:"omitempty,min=1"`
	IdempotencyKey  string  `json:"idempotency_key,omitempty"`
}

type SuggestRoomsQuery struct {
	HotelID  uint   `form:"hotel" binding:"required"`
	CheckIn  string `form:"check_in" binding:"required,staydate"`
	CheckOut string `form:"check_out" binding:"required,staydate"`
	RoomType string `form:"room_type,omitempty"`
}

// RoomSummary is the display tuple returned by candidate and suggestion
// queries. Suggestions are never auto-applied.
type RoomSummary struct {
	ID     uint   `json:"id"`
	Number string `json:"number"`
	Type   string `json:"type"`
}

// ExtensionResult is returned by stay extensions, including idempotent
// replays of a prior attempt.
type ExtensionResult struct {
	ExtensionID     uint            `json:"extension_id"`
	BookingID       uint            `json:"booking_id"`
	OldCheckOutDate string          `json:"old_check_out_date"`
	NewCheckOutDate string          `json:"new_check_out_date"`
	NightsAdded     int             `json:"nights_added"`
	Amount          float32         `json:"amount"`
	Currency        string          `json:"currency"`
	PaymentIntentID *string         `json:"payment_intent_id,omitempty"`
	PaymentRequired bool            `json:"payment_required"`
	Status          ExtensionStatus `json:"status"`
	Replayed        bool            `json:"replayed"`
}
