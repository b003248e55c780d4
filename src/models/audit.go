package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditEvent is the append-only turnover/assignment log. One immutable row
// per status transition or assignment decision; rows are never updated and
// never referenced back by the aggregates that wrote them.
type AuditEvent struct {
	ID         uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	EntityType string    `gorm:"size:32;index:idx_audit_entity" json:"entity_type"`
	EntityID   uint      `gorm:"index:idx_audit_entity" json:"entity_id"`
	FromState  string    `gorm:"size:64" json:"from_state"`
	ToState    string    `gorm:"size:64" json:"to_state"`
	Actor      string    `gorm:"size:128" json:"actor"`
	Source     string    `gorm:"size:64" json:"source"`
	CreatedAt  time.Time `gorm:"autoCreateTime:nano" json:"created_at"`
}
