package models

import "time"

// Driver is a catalog entry looked up by DNI when a record is created.
type Driver struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	DNI       string    `gorm:"uniqueIndex;size:15;not null" json:"dni"`
	Name      string    `gorm:"size:200;not null" json:"name"`
	SapName   string    `gorm:"size:200" json:"sapName"`
	License   string    `gorm:"size:40" json:"license"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Driver) TableName() string { return "cat_drivers" }

// Carrier is the transport company; resolved from the tractor plate.
type Carrier struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	RUC            string    `gorm:"uniqueIndex;size:20;not null" json:"ruc"`
	SapCode        string    `gorm:"size:30" json:"sapCode"`
	Name           string    `gorm:"size:200;not null" json:"name"`
	RegistryEntry  string    `gorm:"size:60" json:"registryEntry"`
	Status         string    `gorm:"size:20;default:'activo'" json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (Carrier) TableName() string { return "cat_carriers" }

// Vehicle pairs a tractor plate with a trailer plate. The carrier of a
// shipment is always the carrier of the tractor; a trailer owned by a
// different carrier only raises an alert.
type Vehicle struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TractorPlate string    `gorm:"index;size:15;not null" json:"tractorPlate"`
	TrailerPlate string    `gorm:"index;size:15" json:"trailerPlate"`
	Plates       string    `gorm:"size:31" json:"plates"` // "TRACTOR/TRAILER"
	Brand        string    `gorm:"size:60" json:"brand"`
	VehicleCert  string    `gorm:"size:80" json:"vehicleCert"`
	CarrierID    *uint     `json:"carrierId"`
	Carrier      *Carrier  `json:"carrier,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Vehicle) TableName() string { return "cat_vehicles" }
