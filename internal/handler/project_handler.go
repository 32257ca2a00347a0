package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "solarsizing/internal/errors"
	"solarsizing/internal/middleware"
	"solarsizing/internal/service"
)

// ProjectHandler serves projects, their inputs and calculations.
type ProjectHandler struct {
	projectService service.ProjectService
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(projectService service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// CreateProjectRequest represents a project creation request.
type CreateProjectRequest struct {
	Name             string                 `json:"name" validate:"required,max=200"`
	SiteLocationJSON map[string]interface{} `json:"site_location_json"`
	Currency         string                 `json:"currency" validate:"omitempty,alpha,max=10"`
}

// SaveInputsRequest carries a free-form inputs document.
type SaveInputsRequest struct {
	PayloadJSON map[string]interface{} `json:"payload_json" validate:"required"`
}

// CreateProject godoc
// @Summary Create a project
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateProjectRequest true "Project data"
// @Success 200 {object} model.Project
// @Failure 401 {object} errors.ErrorResponse
// @Failure 402 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /projects [post]
func (h *ProjectHandler) CreateProject(c echo.Context) error {
	var req CreateProjectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	project, err := h.projectService.CreateProject(c.Request().Context(), middleware.CurrentUser(c).ID, service.CreateProjectInput{
		Name:         req.Name,
		SiteLocation: req.SiteLocationJSON,
		Currency:     req.Currency,
	})
	if err != nil {
		return apperrors.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, project)
}

// ListProjects godoc
// @Summary List own projects, newest first
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Project
// @Failure 401 {object} errors.ErrorResponse
// @Failure 402 {object} errors.ErrorResponse
// @Router /projects [get]
func (h *ProjectHandler) ListProjects(c echo.Context) error {
	projects, err := h.projectService.ListProjects(c.Request().Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		return apperrors.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, projects)
}

// SaveInputs godoc
// @Summary Save a new inputs version
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Param request body SaveInputsRequest true "Inputs document"
// @Success 200 {object} model.ProjectInputs
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /projects/{id}/inputs [post]
func (h *ProjectHandler) SaveInputs(c echo.Context) error {
	id, err := projectID(c)
	if err != nil {
		return err
	}
	var req SaveInputsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	inputs, err := h.projectService.SaveInputs(c.Request().Context(), middleware.CurrentUser(c).ID, id, req.PayloadJSON)
	if err != nil {
		return apperrors.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, inputs)
}

// LatestInputs godoc
// @Summary Latest inputs version
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Success 200 {object} model.ProjectInputs
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /projects/{id}/inputs/latest [get]
func (h *ProjectHandler) LatestInputs(c echo.Context) error {
	id, err := projectID(c)
	if err != nil {
		return err
	}

	inputs, err := h.projectService.LatestInputs(c.Request().Context(), middleware.CurrentUser(c).ID, id)
	if err != nil {
		return apperrors.ToHTTPError(err)
	}
	if inputs == nil {
		return apperrors.ToHTTPError(apperrors.ErrNoInputs)
	}
	return c.JSON(http.StatusOK, inputs)
}

// Calculate godoc
// @Summary Run the sizing calculation on the latest inputs
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Success 200 {object} model.Calculation
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /projects/{id}/calculate [post]
func (h *ProjectHandler) Calculate(c echo.Context) error {
	id, err := projectID(c)
	if err != nil {
		return err
	}

	calc, err := h.projectService.RunCalculation(c.Request().Context(), middleware.CurrentUser(c).ID, id)
	if err != nil {
		return apperrors.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, calc)
}

// ListCalculations godoc
// @Summary Calculation history, newest version first
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Success 200 {array} model.Calculation
// @Failure 404 {object} errors.ErrorResponse
// @Router /projects/{id}/calculations [get]
func (h *ProjectHandler) ListCalculations(c echo.Context) error {
	id, err := projectID(c)
	if err != nil {
		return err
	}

	calcs, err := h.projectService.ListCalculations(c.Request().Context(), middleware.CurrentUser(c).ID, id)
	if err != nil {
		return apperrors.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, calcs)
}
