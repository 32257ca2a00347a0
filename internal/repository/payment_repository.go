package repository

import (
	"context"

	"gorm.io/gorm"

	"solarsizing/internal/model"
)

// PaymentRepository defines payment persistence operations.
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	Update(ctx context.Context, payment *model.Payment) error
	FindByExternalID(ctx context.Context, externalID string) (*model.Payment, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Payment, error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository.
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Create creates a new payment record.
func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// Update updates an existing payment record.
func (r *paymentRepository) Update(ctx context.Context, payment *model.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

// FindByExternalID finds a payment by the provider's correlation id.
func (r *paymentRepository) FindByExternalID(ctx context.Context, externalID string) (*model.Payment, error) {
	var payment model.Payment
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) ListByUser(ctx context.Context, userID uint) ([]model.Payment, error) {
	payments := []model.Payment{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&payments).Error
	return payments, err
}

// PaymentMethodRepository defines payment method persistence operations.
type PaymentMethodRepository interface {
	Create(ctx context.Context, method *model.PaymentMethod) error
	FindFirstByUser(ctx context.Context, userID uint) (*model.PaymentMethod, error)
}

type paymentMethodRepository struct {
	db *gorm.DB
}

// NewPaymentMethodRepository creates a new payment method repository.
func NewPaymentMethodRepository(db *gorm.DB) PaymentMethodRepository {
	return &paymentMethodRepository{db: db}
}

func (r *paymentMethodRepository) Create(ctx context.Context, method *model.PaymentMethod) error {
	return r.db.WithContext(ctx).Create(method).Error
}

// FindFirstByUser returns the earliest stored method.
func (r *paymentMethodRepository) FindFirstByUser(ctx context.Context, userID uint) (*model.PaymentMethod, error) {
	var method model.PaymentMethod
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		First(&method).Error
	if err != nil {
		return nil, err
	}
	return &method, nil
}

// PaymentEventRepository defines payment event log persistence operations.
type PaymentEventRepository interface {
	CreateBatch(ctx context.Context, events []model.PaymentEvent) error
}

type paymentEventRepository struct {
	db *gorm.DB
}

// NewPaymentEventRepository creates a new payment event repository.
func NewPaymentEventRepository(db *gorm.DB) PaymentEventRepository {
	return &paymentEventRepository{db: db}
}

// CreateBatch inserts multiple events in batches of 100.
func (r *paymentEventRepository) CreateBatch(ctx context.Context, events []model.PaymentEvent) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(events, 100).Error
}
