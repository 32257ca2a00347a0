package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	DefaultCurrency    = "USD"
	ProjectStatusDraft = "draft"
)

// Project is a solar-sizing project owned by a single user.
type Project struct {
	ID               uint              `json:"id" gorm:"primaryKey"`
	OrgID            *uint             `json:"org_id,omitempty" gorm:"index"`
	OwnerID          uint              `json:"owner_id" gorm:"not null;index"`
	Name             string            `json:"name" gorm:"size:200;not null"`
	SiteLocationJSON datatypes.JSONMap `json:"site_location_json"`
	Currency         string            `json:"currency" gorm:"size:10;not null;default:'USD'"`
	Status           string            `json:"status" gorm:"size:50;not null;default:'draft'"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`

	Owner User `json:"-" gorm:"foreignKey:OwnerID"`
}

// ProjectInputs is one immutable snapshot of a project's sizing inputs.
// Version starts at 1 and is unique per project.
type ProjectInputs struct {
	ID          uint              `json:"id" gorm:"primaryKey"`
	ProjectID   uint              `json:"project_id" gorm:"not null;uniqueIndex:idx_project_inputs_version,priority:1"`
	Version     int               `json:"version" gorm:"not null;uniqueIndex:idx_project_inputs_version,priority:2"`
	PayloadJSON datatypes.JSONMap `json:"payload_json" gorm:"not null"`
	CreatedAt   time.Time         `json:"created_at"`

	Project Project `json:"-" gorm:"foreignKey:ProjectID"`
}

func (ProjectInputs) TableName() string { return "project_inputs" }

// Calculation is one immutable result of running the sizing calculation.
// Its version sequence is independent of the inputs sequence.
type Calculation struct {
	ID            uint              `json:"id" gorm:"primaryKey"`
	ProjectID     uint              `json:"project_id" gorm:"not null;uniqueIndex:idx_calculations_version,priority:1"`
	Version       int               `json:"version" gorm:"not null;uniqueIndex:idx_calculations_version,priority:2"`
	InputsID      uint              `json:"inputs_id" gorm:"not null;index"`
	InputsVersion int               `json:"inputs_version" gorm:"not null"`
	ResultsJSON   datatypes.JSONMap `json:"results_json" gorm:"not null"`
	CreatedAt     time.Time         `json:"created_at"`

	Project Project       `json:"-" gorm:"foreignKey:ProjectID"`
	Inputs  ProjectInputs `json:"-" gorm:"foreignKey:InputsID"`
}
