package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"solarsizing/internal/model"
)

// InputsRepository is the append-only log of project inputs.
type InputsRepository interface {
	Append(ctx context.Context, inputs *model.ProjectInputs) error
	Latest(ctx context.Context, projectID uint) (*model.ProjectInputs, error)
}

// CalculationRepository is the append-only log of calculation results.
type CalculationRepository interface {
	Append(ctx context.Context, calc *model.Calculation) error
	Latest(ctx context.Context, projectID uint) (*model.Calculation, error)
	ListByProject(ctx context.Context, projectID uint) ([]model.Calculation, error)
}

type inputsRepository struct {
	db *gorm.DB
}

// NewInputsRepository creates a new inputs repository.
func NewInputsRepository(db *gorm.DB) InputsRepository {
	return &inputsRepository{db: db}
}

// Append assigns the next version and inserts the row in one transaction.
// Two writers racing for the same version get gorm.ErrDuplicatedKey from the
// unique (project_id, version) index; callers retry.
func (r *inputsRepository) Append(ctx context.Context, inputs *model.ProjectInputs) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next, err := nextVersion(tx, &model.ProjectInputs{}, inputs.ProjectID)
		if err != nil {
			return err
		}
		inputs.Version = next
		return tx.Create(inputs).Error
	})
}

// Latest returns the highest version, or nil when the project has no inputs.
func (r *inputsRepository) Latest(ctx context.Context, projectID uint) (*model.ProjectInputs, error) {
	var inputs model.ProjectInputs
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("version DESC").
		First(&inputs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inputs, nil
}

type calculationRepository struct {
	db *gorm.DB
}

// NewCalculationRepository creates a new calculation repository.
func NewCalculationRepository(db *gorm.DB) CalculationRepository {
	return &calculationRepository{db: db}
}

func (r *calculationRepository) Append(ctx context.Context, calc *model.Calculation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next, err := nextVersion(tx, &model.Calculation{}, calc.ProjectID)
		if err != nil {
			return err
		}
		calc.Version = next
		return tx.Create(calc).Error
	})
}

func (r *calculationRepository) Latest(ctx context.Context, projectID uint) (*model.Calculation, error) {
	var calc model.Calculation
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("version DESC").
		First(&calc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &calc, nil
}

// ListByProject returns calculations newest version first.
func (r *calculationRepository) ListByProject(ctx context.Context, projectID uint) ([]model.Calculation, error) {
	calcs := []model.Calculation{}
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("version DESC").
		Find(&calcs).Error
	return calcs, err
}

func nextVersion(tx *gorm.DB, table interface{}, projectID uint) (int, error) {
	var current int
	err := tx.Model(table).
		Where("project_id = ?", projectID).
		Select("COALESCE(MAX(version), 0)").
		Scan(&current).Error
	if err != nil {
		return 0, err
	}
	return current + 1, nil
}
