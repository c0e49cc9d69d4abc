package models

import "time"

// BookingRef maps a booking to its positioning references (o_beta, awb) so
// the capture form can autocomplete from a single scanned booking.
type BookingRef struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Booking   string    `gorm:"uniqueIndex;size:50;not null" json:"booking"`
	OBeta     string    `gorm:"size:50" json:"oBeta"`
	AWB       string    `gorm:"size:50" json:"awb"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (BookingRef) TableName() string { return "ref_booking_positions" }

// BookingDAM maps a booking to its customs declaration number.
type BookingDAM struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Booking   string    `gorm:"uniqueIndex;size:50;not null" json:"booking"`
	DAM       string    `gorm:"size:80" json:"dam"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (BookingDAM) TableName() string { return "ref_booking_dams" }
