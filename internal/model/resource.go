package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ReportStatusPrepared        = "prepared"
	NotificationStatusScheduled = "scheduled"
	DeliveryChannelPush         = "push"
)

// Visualization is a chart definition attached to a project.
type Visualization struct {
	ID         uint              `json:"id" gorm:"primaryKey"`
	ProjectID  uint              `json:"project_id" gorm:"not null;index"`
	ChartType  string            `json:"chart_type" gorm:"size:50;not null"`
	ConfigJSON datatypes.JSONMap `json:"config_json"`
	CreatedAt  time.Time         `json:"created_at"`

	Project Project `json:"-" gorm:"foreignKey:ProjectID"`
}

// Report is a report request. Generation happens outside this service.
type Report struct {
	ID            uint              `json:"id" gorm:"primaryKey"`
	ProjectID     uint              `json:"project_id" gorm:"not null;index"`
	Format        string            `json:"format" gorm:"size:20;not null"`
	DeliverToJSON datatypes.JSONMap `json:"deliver_to_json"`
	Status        string            `json:"status" gorm:"size:50;not null;default:'prepared'"`
	CreatedAt     time.Time         `json:"created_at"`

	Project Project `json:"-" gorm:"foreignKey:ProjectID"`
}

// Notification is a scheduled message. Delivery happens outside this service.
type Notification struct {
	ID              uint              `json:"id" gorm:"primaryKey"`
	UserID          uint              `json:"user_id" gorm:"not null;index"`
	Title           string            `json:"title" gorm:"size:200;not null"`
	Message         string            `json:"message" gorm:"type:text;not null"`
	DeliveryChannel string            `json:"delivery_channel" gorm:"size:50;not null;default:'push'"`
	Status          string            `json:"status" gorm:"size:50;not null;default:'scheduled'"`
	ScheduleJSON    datatypes.JSONMap `json:"schedule_json"`
	CreatedAt       time.Time         `json:"created_at"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

type SocialLink struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Platform  string    `json:"platform" gorm:"size:50;not null"`
	Handle    string    `json:"handle" gorm:"size:200;not null"`
	CreatedAt time.Time `json:"created_at"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

type Dashboard struct {
	ID         uint              `json:"id" gorm:"primaryKey"`
	UserID     uint              `json:"user_id" gorm:"not null;index"`
	Name       string            `json:"name" gorm:"size:200;not null"`
	Preference string            `json:"preference" gorm:"size:100;index"`
	LayoutJSON datatypes.JSONMap `json:"layout_json"`
	CreatedAt  time.Time         `json:"created_at"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&Org{},
		&User{},
		&Project{},
		&ProjectInputs{},
		&Calculation{},
		&PaymentMethod{},
		&Payment{},
		&PaymentEvent{},
		&Visualization{},
		&Report{},
		&Notification{},
		&SocialLink{},
		&Dashboard{},
	}
}
