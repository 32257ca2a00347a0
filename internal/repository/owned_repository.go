package repository

import (
	"context"

	"gorm.io/gorm"

	"solarsizing/internal/model"
)

// Filter is an equality predicate applied to a list query.
type Filter struct {
	Column string
	Value  interface{}
}

// OwnedRepository stores records that belong to exactly one parent row
// (a project or a user). Records are insert-only.
type OwnedRepository[T any] interface {
	Create(ctx context.Context, record *T) error
	ListByOwner(ctx context.Context, ownerID uint, filters ...Filter) ([]T, error)
}

type ownedRepository[T any] struct {
	db          *gorm.DB
	ownerColumn string
}

func newOwnedRepository[T any](db *gorm.DB, ownerColumn string) OwnedRepository[T] {
	return &ownedRepository[T]{db: db, ownerColumn: ownerColumn}
}

func (r *ownedRepository[T]) Create(ctx context.Context, record *T) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// ListByOwner returns the owner's records newest first.
func (r *ownedRepository[T]) ListByOwner(ctx context.Context, ownerID uint, filters ...Filter) ([]T, error) {
	q := r.db.WithContext(ctx).Where(r.ownerColumn+" = ?", ownerID)
	for _, f := range filters {
		q = q.Where(f.Column+" = ?", f.Value)
	}

	records := []T{}
	err := q.Order("created_at DESC").Order("id DESC").Find(&records).Error
	return records, err
}

func NewVisualizationRepository(db *gorm.DB) OwnedRepository[model.Visualization] {
	return newOwnedRepository[model.Visualization](db, "project_id")
}

func NewReportRepository(db *gorm.DB) OwnedRepository[model.Report] {
	return newOwnedRepository[model.Report](db, "project_id")
}

func NewNotificationRepository(db *gorm.DB) OwnedRepository[model.Notification] {
	return newOwnedRepository[model.Notification](db, "user_id")
}

func NewSocialLinkRepository(db *gorm.DB) OwnedRepository[model.SocialLink] {
	return newOwnedRepository[model.SocialLink](db, "user_id")
}

func NewDashboardRepository(db *gorm.DB) OwnedRepository[model.Dashboard] {
	return newOwnedRepository[model.Dashboard](db, "user_id")
}
