package repository

import (
	"context"

	"gorm.io/gorm"

	"solarsizing/internal/model"
)

// ProjectRepository defines project persistence operations.
type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	FindOwned(ctx context.Context, id, ownerID uint) (*model.Project, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]model.Project, error)
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// FindOwned returns gorm.ErrRecordNotFound both for missing projects and for
// projects owned by someone else.
func (r *projectRepository) FindOwned(ctx context.Context, id, ownerID uint) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) ListByOwner(ctx context.Context, ownerID uint) ([]model.Project, error) {
	projects := []model.Project{}
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").Order("id DESC").
		Find(&projects).Error
	return projects, err
}
