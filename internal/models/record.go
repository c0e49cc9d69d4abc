package models

import "time"

// Record states. A record is never deleted: it is created pending, marked
// processed once manually loaded into SAP, and annulled (with a reason) if
// it was processed by mistake.
const (
	StatePending   = "pendiente"
	StateProcessed = "procesado"
	StateAnnulled  = "anulado"
)

// Record is one operational export registration (booking/AWB, driver,
// vehicle, seals). The seal and thermograph groups are stored slash-joined
// the way SAP expects them.
type Record struct {
	ID uint `gorm:"primaryKey" json:"id"`

	RegisteredAt time.Time `gorm:"autoCreateTime" json:"registeredAt"`

	OBeta   string `gorm:"size:50" json:"oBeta"`
	Booking string `gorm:"size:50" json:"booking"`
	AWB     string `gorm:"size:50" json:"awb"` // container code
	DAM     string `gorm:"size:80" json:"dam"`

	DriverID  uint `gorm:"not null" json:"driverId"`
	VehicleID uint `gorm:"not null" json:"vehicleId"`
	CarrierID uint `gorm:"not null" json:"carrierId"`

	Driver  *Driver  `json:"driver,omitempty"`
	Vehicle *Vehicle `json:"vehicle,omitempty"`
	Carrier *Carrier `json:"carrier,omitempty"`

	Thermographs string `gorm:"size:200" json:"thermographs"`

	PSBeta     string `gorm:"size:80" json:"psBeta"`
	PSAduana   string `gorm:"size:80" json:"psAduana"`
	PSOperador string `gorm:"size:80" json:"psOperador"`

	Senasa        string `gorm:"size:80" json:"senasa"`
	PSLinea       string `gorm:"size:80" json:"psLinea"`
	SenasaPSLinea string `gorm:"size:120" json:"senasaPsLinea"`

	State string `gorm:"size:20;default:'pendiente';not null" json:"state"`

	ProcessedAt    *time.Time `json:"processedAt"`
	AnnulledAt     *time.Time `json:"annulledAt"`
	AnnulledReason string     `gorm:"size:250" json:"annulledReason"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Record) TableName() string { return "ope_records" }

// Reference returns the uniqueness-ledger reference key for this record.
func (r *Record) Reference() string {
	return recordReference(r.ID)
}
