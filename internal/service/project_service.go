package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	apperrors "solarsizing/internal/errors"
	"solarsizing/internal/model"
	"solarsizing/internal/repository"
	"solarsizing/internal/solar"
)

const maxVersionAttempts = 5

// CreateProjectInput is the data for a new project.
type CreateProjectInput struct {
	Name         string
	SiteLocation map[string]interface{}
	Currency     string
}

// ProjectService manages projects and their versioned inputs and calculations.
type ProjectService interface {
	CreateProject(ctx context.Context, ownerID uint, in CreateProjectInput) (*model.Project, error)
	ListProjects(ctx context.Context, ownerID uint) ([]model.Project, error)
	SaveInputs(ctx context.Context, ownerID, projectID uint, payload map[string]interface{}) (*model.ProjectInputs, error)
	LatestInputs(ctx context.Context, ownerID, projectID uint) (*model.ProjectInputs, error)
	RunCalculation(ctx context.Context, ownerID, projectID uint) (*model.Calculation, error)
	ListCalculations(ctx context.Context, ownerID, projectID uint) ([]model.Calculation, error)
}

type projectService struct {
	projectRepo repository.ProjectRepository
	inputsRepo  repository.InputsRepository
	calcRepo    repository.CalculationRepository
	logger      *zap.Logger
	now         func() time.Time
}

// NewProjectService creates a new project service.
func NewProjectService(
	projectRepo repository.ProjectRepository,
	inputsRepo repository.InputsRepository,
	calcRepo repository.CalculationRepository,
	logger *zap.Logger,
) ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		inputsRepo:  inputsRepo,
		calcRepo:    calcRepo,
		logger:      logger.Named("projects"),
		now:         time.Now,
	}
}

func (s *projectService) CreateProject(ctx context.Context, ownerID uint, in CreateProjectInput) (*model.Project, error) {
	currency := in.Currency
	if currency == "" {
		currency = model.DefaultCurrency
	}

	now := s.now()
	project := &model.Project{
		OwnerID:          ownerID,
		Name:             strings.TrimSpace(in.Name),
		SiteLocationJSON: datatypes.JSONMap(in.SiteLocation),
		Currency:         currency,
		Status:           model.ProjectStatusDraft,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return project, nil
}

// ListProjects returns the owner's projects, newest first.
func (s *projectService) ListProjects(ctx context.Context, ownerID uint) ([]model.Project, error) {
	projects, err := s.projectRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// SaveInputs appends a new inputs version. The payload is stored as given.
func (s *projectService) SaveInputs(ctx context.Context, ownerID, projectID uint, payload map[string]interface{}) (*model.ProjectInputs, error) {
	if _, err := s.ownedProject(ctx, ownerID, projectID); err != nil {
		return nil, err
	}
	if payload == nil {
		payload = map[string]interface{}{}
	}

	inputs := &model.ProjectInputs{
		ProjectID:   projectID,
		PayloadJSON: datatypes.JSONMap(payload),
	}
	err := appendWithRetry(func() error {
		inputs.ID = 0
		inputs.CreatedAt = s.now()
		return s.inputsRepo.Append(ctx, inputs)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("inputs saved", zap.Uint("project_id", projectID), zap.Int("version", inputs.Version))
	return inputs, nil
}

// LatestInputs returns the highest inputs version, or nil if none exist.
func (s *projectService) LatestInputs(ctx context.Context, ownerID, projectID uint) (*model.ProjectInputs, error) {
	if _, err := s.ownedProject(ctx, ownerID, projectID); err != nil {
		return nil, err
	}
	inputs, err := s.inputsRepo.Latest(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load latest inputs: %w", err)
	}
	return inputs, nil
}

// RunCalculation sizes the system from the latest inputs and appends the
// result as a new calculation version.
func (s *projectService) RunCalculation(ctx context.Context, ownerID, projectID uint) (*model.Calculation, error) {
	latest, err := s.LatestInputs(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, apperrors.ErrNoInputs
	}

	result := solar.Calculate(latest.PayloadJSON)
	calc := &model.Calculation{
		ProjectID:     projectID,
		InputsID:      latest.ID,
		InputsVersion: latest.Version,
		ResultsJSON:   datatypes.JSONMap(result.Map()),
	}
	err = appendWithRetry(func() error {
		calc.ID = 0
		calc.CreatedAt = s.now()
		return s.calcRepo.Append(ctx, calc)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("calculation completed",
		zap.Uint("project_id", projectID),
		zap.Int("version", calc.Version),
		zap.Int("inputs_version", latest.Version),
		zap.Float64("dc_kw", result.DCkW),
	)
	return calc, nil
}

// ListCalculations returns the project's calculations, newest version first.
func (s *projectService) ListCalculations(ctx context.Context, ownerID, projectID uint) ([]model.Calculation, error) {
	if _, err := s.ownedProject(ctx, ownerID, projectID); err != nil {
		return nil, err
	}
	calcs, err := s.calcRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list calculations: %w", err)
	}
	return calcs, nil
}

func (s *projectService) ownedProject(ctx context.Context, ownerID, projectID uint) (*model.Project, error) {
	return findOwnedProject(ctx, s.projectRepo, ownerID, projectID)
}

// findOwnedProject hides projects owned by someone else behind the same error
// as missing ones.
func findOwnedProject(ctx context.Context, repo repository.ProjectRepository, ownerID, projectID uint) (*model.Project, error) {
	project, err := repo.FindOwned(ctx, projectID, ownerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find project: %w", err)
	}
	return project, nil
}

// appendWithRetry retries an append that lost a version race.
func appendWithRetry(appendFn func() error) error {
	for attempt := 0; attempt < maxVersionAttempts; attempt++ {
		err := appendFn()
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("append version: %w", err)
		}
	}
	return apperrors.ErrVersionConflict
}
