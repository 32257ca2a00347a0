package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories whose writes must commit together.
type Store struct {
	db       *gorm.DB
	Users    UserRepository
	Payments PaymentRepository
}

// NewStore builds a store over db.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		Users:    NewUserRepository(db),
		Payments: NewPaymentRepository(db),
	}
}

// WithTransaction runs fn with a store bound to a single transaction.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewStore(tx))
	})
}
