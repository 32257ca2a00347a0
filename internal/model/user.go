package model

import (
	"time"

	"gorm.io/datatypes"
)

const RoleUser = "user"

// User is an authenticated account. IsActive flips to true once, when a payment completes.
type User struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	OrgID        *uint      `json:"org_id,omitempty" gorm:"index"`
	Name         string     `json:"name" gorm:"size:200;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:320;not null"`
	PasswordHash string     `json:"-" gorm:"size:500;not null"` // Never expose in JSON
	Role         string     `json:"role" gorm:"size:50;not null;default:'user'"`
	IsActive     bool       `json:"is_active" gorm:"not null;default:false;index"`
	ActivatedAt  *time.Time `json:"activated_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`

	Org *Org `json:"-" gorm:"foreignKey:OrgID"`
}

// Org groups users and projects under one brand.
type Org struct {
	ID           uint              `json:"id" gorm:"primaryKey"`
	Name         string            `json:"name" gorm:"uniqueIndex;size:200;not null"`
	BrandingJSON datatypes.JSONMap `json:"branding_json"`
	CreatedAt    time.Time         `json:"created_at"`
}
