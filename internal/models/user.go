package models

import (
	"time"
)

// Roles known to the system. Only administrators manage users; the other
// roles gate which tabs/endpoints a user may reach.
const (
	RoleAdmin       = "administrador"
	RoleGerencia    = "gerencia"
	RoleSupervisor  = "supervisor_facturacion"
	RoleFacturador  = "facturador"
	RoleDocumentary = "documentaria"
)

// MaxLoginAttempts failed logins lock the account until an admin unlocks it.
const MaxLoginAttempts = 3

// User represents a login account.
// Standardized: Go (PascalCase) -> DB (snake_case) -> JSON (camelCase)
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"uniqueIndex;size:80;not null" json:"username"`
	PasswordHash   string    `gorm:"size:255;not null" json:"-"`
	Name           string    `gorm:"size:200;not null" json:"name"`
	Role           string    `gorm:"size:50;not null" json:"role"`
	Active         bool      `gorm:"default:true" json:"active"`
	MustChangePass bool      `gorm:"default:false" json:"mustChangePassword"`
	FailedAttempts int       `gorm:"default:0" json:"-"`
	Locked         bool      `gorm:"default:false" json:"locked"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "auth_users"
}
