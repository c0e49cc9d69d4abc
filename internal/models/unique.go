package models

import (
	"fmt"
	"time"
)

// Uniqueness value types. Historic types block re-use forever; "current"
// types (AWB) only hold a lock while the record is in flight.
const (
	TypeOBeta         = "O_BETA"
	TypeBooking       = "BOOKING"
	TypeAWB           = "AWB"
	TypeThermograph   = "TERMOGRAFO"
	TypePSBeta        = "PS_BETA"
	TypePSAduana      = "PS_ADUANA"
	TypePSOperador    = "PS_OPERADOR"
	TypeSenasaPSLinea = "SENASA_PS_LINEA"
)

// CurrentTypes are released when the owning record is processed or annulled,
// or automatically once the voyage window has elapsed.
var CurrentTypes = map[string]bool{TypeAWB: true}

// AWBVoyageDays is the typical container voyage length; after this many days
// an AWB lock expires even if the record was never processed.
const AWBVoyageDays = 35

// UniqueValue is one row of the uniqueness ledger backing duplicate
// detection across records.
type UniqueValue struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Type      string `gorm:"index:idx_unique_type_value;size:30;not null" json:"type"`
	Value     string `gorm:"index:idx_unique_type_value;size:120;not null" json:"value"`
	Reference string `gorm:"index;size:40;not null" json:"reference"` // REG-<id>
	Username  string `gorm:"size:80" json:"username"`
	Origin    string `gorm:"size:30" json:"origin"`

	Current    bool       `gorm:"default:false" json:"current"`
	UsedAt     time.Time  `gorm:"autoCreateTime" json:"usedAt"`
	ReleasedAt *time.Time `json:"releasedAt"`
}

func (UniqueValue) TableName() string { return "ope_unique_values" }

// DuplicateItem describes one uniqueness conflict in a 409 response.
type DuplicateItem struct {
	Type    string `json:"tipo"`
	Value   string `json:"valor"`
	Message string `json:"mensaje"`
}

func recordReference(id uint) string {
	return fmt.Sprintf("REG-%d", id)
}
