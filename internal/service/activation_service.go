package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"solarsizing/internal/model"
	"solarsizing/internal/payment"
	"solarsizing/internal/repository"
)

// ActivationResult describes what a completed checkout changed.
type ActivationResult struct {
	UserID    uint
	PaymentID uint
	// Activated is true only for the delivery that flipped the user to active.
	Activated bool
	// AlreadyPaid is true when the payment had been marked paid before.
	AlreadyPaid bool
	// Ignored is true when no user could be resolved for the checkout.
	Ignored bool
	// Duplicate is true when a concurrent delivery won the insert race.
	Duplicate bool
}

// ActivationService applies completed checkouts to payments and users.
type ActivationService interface {
	CompleteCheckout(ctx context.Context, provider string, checkout payment.CompletedCheckout) (*ActivationResult, error)
}

type activationService struct {
	store    *repository.Store
	recorder EventRecorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewActivationService creates a new activation service.
func NewActivationService(store *repository.Store, recorder EventRecorder, logger *zap.Logger) ActivationService {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &activationService{
		store:    store,
		recorder: recorder,
		logger:   logger.Named("activation"),
		now:      time.Now,
	}
}

// CompleteCheckout marks the checkout's payment paid and activates its user.
// Applying the same checkout twice changes nothing the second time.
func (s *activationService) CompleteCheckout(ctx context.Context, provider string, checkout payment.CompletedCheckout) (*ActivationResult, error) {
	result := &ActivationResult{}
	now := s.now()

	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx *repository.Store) error {
		existing, err := tx.Payments.FindByExternalID(ctx, checkout.SessionID)
		switch {
		case err == nil:
			result.UserID = existing.UserID
			result.PaymentID = existing.ID
			if existing.Status == model.PaymentStatusPaid {
				result.AlreadyPaid = true
			} else {
				existing.Status = model.PaymentStatusPaid
				if existing.MetadataJSON == nil {
					existing.MetadataJSON = checkoutMetadata(checkout)
				}
				existing.UpdatedAt = now
				if err := tx.Payments.Update(ctx, existing); err != nil {
					return fmt.Errorf("mark payment paid: %w", err)
				}
			}

		case errors.Is(err, gorm.ErrRecordNotFound):
			userID, ok := metadataUserID(checkout.Metadata)
			if !ok {
				result.Ignored = true
				return nil
			}
			if _, err := tx.Users.FindByID(ctx, userID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					result.Ignored = true
					return nil
				}
				return fmt.Errorf("find user: %w", err)
			}

			externalID := checkout.SessionID
			created := &model.Payment{
				UserID:       userID,
				Provider:     provider,
				Status:       model.PaymentStatusPaid,
				ExternalID:   &externalID,
				Amount:       checkout.Amount,
				Currency:     checkout.Currency,
				MetadataJSON: checkoutMetadata(checkout),
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := tx.Payments.Create(ctx, created); err != nil {
				return fmt.Errorf("record payment: %w", err)
			}
			result.UserID = userID
			result.PaymentID = created.ID

		default:
			return fmt.Errorf("find payment: %w", err)
		}

		activated, err := tx.Users.Activate(ctx, result.UserID, now)
		if err != nil {
			return fmt.Errorf("activate user: %w", err)
		}
		result.Activated = activated
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		s.logger.Info("checkout already applied by a concurrent delivery", zap.String("session_id", checkout.SessionID))
		return &ActivationResult{Duplicate: true}, nil
	}
	if err != nil {
		return nil, err
	}

	s.record(provider, checkout, result)
	return result, nil
}

func (s *activationService) record(provider string, checkout payment.CompletedCheckout, result *ActivationResult) {
	if result.Ignored {
		s.logger.Warn("checkout has no matching user", zap.String("session_id", checkout.SessionID))
		s.recorder.Record(model.PaymentEvent{
			Provider:   provider,
			EventType:  EventWebhookIgnored,
			ExternalID: checkout.SessionID,
			Message:    "no payment or user for checkout session",
		})
		return
	}

	userID := result.UserID
	s.recorder.Record(model.PaymentEvent{
		UserID:     &userID,
		Provider:   provider,
		EventType:  EventCheckoutCompleted,
		ExternalID: checkout.SessionID,
	})
	if result.Activated {
		s.logger.Info("user activated", zap.Uint("user_id", userID), zap.Uint("payment_id", result.PaymentID))
		s.recorder.Record(model.PaymentEvent{
			UserID:     &userID,
			Provider:   provider,
			EventType:  EventUserActivated,
			ExternalID: checkout.SessionID,
		})
	}
}

func checkoutMetadata(checkout payment.CompletedCheckout) datatypes.JSONMap {
	meta := datatypes.JSONMap{}
	for k, v := range checkout.Metadata {
		meta[k] = v
	}
	if checkout.Mode != "" {
		meta["mode"] = checkout.Mode
	}
	if checkout.CustomerEmail != "" {
		meta["customer_email"] = checkout.CustomerEmail
	}
	return meta
}

func metadataUserID(meta map[string]string) (uint, bool) {
	raw, ok := meta["user_id"]
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
