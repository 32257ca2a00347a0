package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PaymentStatus represents the status of a payment.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

const (
	ProviderStripe = "stripe"
	ProviderMobile = "mobile"
)

// Payment is one checkout attempt. ExternalID is the provider's session id and
// is unique so a completion event can never be applied to two rows.
type Payment struct {
	ID           uint              `json:"id" gorm:"primaryKey"`
	UserID       uint              `json:"user_id" gorm:"not null;index"`
	Provider     string            `json:"provider" gorm:"size:50;not null"`
	Status       PaymentStatus     `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	ExternalID   *string           `json:"external_id,omitempty" gorm:"size:255;uniqueIndex"`
	Amount       decimal.Decimal   `json:"amount" gorm:"type:decimal(20,2);not null;default:0"`
	Currency     string            `json:"currency" gorm:"size:10"`
	MetadataJSON datatypes.JSONMap `json:"metadata_json"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

const (
	MethodTypeVisa        = "visa"
	MethodTypeMastercard  = "mastercard"
	MethodTypeMobileMoney = "mobile_money"
)

// PaymentMethod stores how a user pays. Details never hold a full card number.
type PaymentMethod struct {
	ID          uint              `json:"id" gorm:"primaryKey"`
	UserID      uint              `json:"user_id" gorm:"not null;index"`
	MethodType  string            `json:"method_type" gorm:"size:50;not null"`
	DetailsJSON datatypes.JSONMap `json:"details_json"`
	CreatedAt   time.Time         `json:"created_at"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

// PaymentEvent is an audit entry for the payment flow. Entries are written
// asynchronously and in batches.
type PaymentEvent struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     *uint     `json:"user_id,omitempty" gorm:"index"`
	Provider   string    `json:"provider" gorm:"size:50;not null"`
	EventType  string    `json:"event_type" gorm:"size:100;not null;index"`
	ExternalID string    `json:"external_id,omitempty" gorm:"size:255;index"`
	Message    string    `json:"message,omitempty" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`
}
