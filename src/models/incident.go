package models

import (
	"time"

	"hms/src/types"
)

// OverstayIncident tracks staff awareness of a guest remaining past the
// expected departure. Rows are never deleted, only transitioned. The partial
// unique index enforces at most one open-or-acknowledged incident per
// booking, which is what makes the detection scan catch-up safe.
type OverstayIncident struct {
	ID        uint                 `gorm:"primarykey" json:"id"`
	BookingID uint                 `gorm:"index;uniqueIndex:udx_booking_active_incident,where:status IN ('open','acknowledged')" json:"booking_id,omitempty"`
	HotelID   uint                 `gorm:"index" json:"hotel_id,omitempty"`
	Status    types.IncidentStatus `gorm:"default:'open'" json:"status,omitempty"`

	DetectedAt       time.Time `json:"detected_at,omitempty"`
	ExpectedCheckOut time.Time `gorm:"type:date" json:"expected_check_out,omitempty"`

	AcknowledgedAt   *time.Time `json:"acknowledged_at,omitempty"`
	AcknowledgedBy   string     `json:"acknowledged_by,omitempty"`
	AcknowledgedNote string     `json:"acknowledged_note,omitempty"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy       string     `json:"resolved_by,omitempty"`
	DismissedAt      *time.Time `json:"dismissed_at,omitempty"`
	DismissedBy      string     `json:"dismissed_by,omitempty"`

	Booking Booking `gorm:"foreignKey:booking_id" json:"booking,omitempty"`

	types.Timestamps
}

// IsActive: the incident still demands staff attention.
func (i *OverstayIncident) IsActive() bool {
	return i.Status == types.INCIDENT_OPEN || i.Status == types.INCIDENT_ACKNOWLEDGED
}
