package models

import (
	"time"

	"gorm.io/datatypes"
)

// Audit actions. Actions prefixed USUARIO_ concern user management and are
// only visible to administrators.
const (
	ActionCreate  = "CREAR"
	ActionProcess = "PROCESAR"
	ActionAnnul   = "ANULAR"
	ActionEdit    = "EDITAR"

	ActionUserCreate = "USUARIO_CREAR"
	ActionUserToggle = "USUARIO_ESTADO"
	ActionUserReset  = "USUARIO_PASSWORD"
	ActionUserUnlock = "USUARIO_DESBLOQUEO"
)

// AuditEvent is one immutable audit-trail row with before/after snapshots.
type AuditEvent struct {
	ID       uint  `gorm:"primaryKey" json:"id"`
	RecordID *uint `gorm:"index" json:"recordId"`

	Action string         `gorm:"size:30;not null" json:"action"`
	Before datatypes.JSON `json:"before"`
	After  datatypes.JSON `json:"after"`
	Reason string         `gorm:"size:250" json:"reason"`

	Username string `gorm:"size:80" json:"username"`

	CreatedAt time.Time `json:"createdAt"`
}

func (AuditEvent) TableName() string { return "ope_audit_events" }
