package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "solarsizing/internal/errors"
	"solarsizing/internal/middleware"
	"solarsizing/internal/service"
)

// ResourceHandler serves visualizations, reports, notifications, social links
// and dashboards.
type ResourceHandler struct {
	resources service.ResourceService
}

func NewResourceHandler(resources service.ResourceService) *ResourceHandler {
	return &ResourceHandler{resources: resources}
}

type VisualizationRequest struct {
	ChartType  string                 `json:"chart_type" validate:"required,max=50"`
	ConfigJSON map[string]interface{} `json:"config_json"`
}

type ReportRequest struct {
	Format    string                 `json:"format" validate:"required,max=20"`
	DeliverTo map[string]interface{} `json:"deliver_to"`
}

type NotificationRequest struct {
	Title           string                 `json:"title" validate:"required,max=200"`
	Message         string                 `json:"message" validate:"required"`
	DeliveryChannel string                 `json:"delivery_channel" validate:"omitempty,max=50"`
	ScheduleJSON    map[string]interface{} `json:"schedule_json"`
}

type SocialLinkRequest struct {
	Platform string `json:"platform" validate:"required,max=50"`
	Handle   string `json:"handle" validate:"required,max=200"`
}

type DashboardRequest struct {
	Name       string                 `json:"name" validate:"required,max=200"`
	Preference string                 `json:"preference" validate:"omitempty,max=100"`
	LayoutJSON map[string]interface{} `json:"layout_json"`
}

// CreateVisualization godoc
// @Summary Attach a chart definition to a project
// @Tags visualizations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Param request body VisualizationRequest true "Chart definition"
// @Success 200 {object} model.Visualization
// @Failure 404 {object} errors.ErrorResponse
// @Router /projects/{id}/visualizations [post]
func (h *ResourceHandler) CreateVisualization(c echo.Context) error {
	id, err := projectID(c)
	if err != nil {
		return err
	}
	var req VisualizationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	v, err := h.resources.CreateVisualization(c.Request().Context(), middleware.CurrentUser(c).ID, id, req.ChartType, req.ConfigJSON)
	if err != nil {
		return apperrors.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, v)
}

// ListVisualizations godoc
// @Summary List a project's visualizations
// @Tags visualizations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Success 200 {array} model.Visualization
// @Failure 404 {object} errors.ErrorResponse
// @Router /projects/{id}/visualizations [get]
func (h *ResourceHandler) ListVisualizations(c echo.Context) error {
	id, err := projectID(c)
	if err != nil {
		return err
	}
	items, err := h.resources.ListVisualizations(c.Request().Context(), middleware.CurrentUser(c).ID, id)
	if err != nil {
		return apperrors.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// CreateReport godoc
// @Summary Request a project report
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Param request body ReportRequest true "Report request"
// @Success 200 {object} model.Report
// @Failure 404 {object} errors.ErrorResponse
// @Router /projects/{id}/reports [post]
func (h *ResourceHandler) CreateReport(c echo.Context) error {
	id, err := projectID(c)
	if err != nil {
		return err
	}
	var req ReportRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	r, err := h.resources.CreateReport(c.Request().Context(), middleware.CurrentUser(c).ID, id, req.Format, req.DeliverTo)
	if err != nil {
		return apperrors.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, r)
}

// ListReports godoc
// @Summary List a project's reports
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Success 200 {array} model.Report
// @Failure 404 {object} errors.ErrorResponse
// @Router /projects/{id}/reports [get]
func (h *ResourceHandler) ListReports(c echo.Context) error {
	id, err := projectID(c)
	if err != nil {
		return err
	}
	items, err := h.resources.ListReports(c.Request().Context(), middleware.CurrentUser(c).ID, id)
	if err != nil {
		return apperrors.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// CreateNotification godoc
// @Summary Schedule a notification
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body NotificationRequest true "Notification"
// @Success 200 {object} model.Notification
// @Router /notifications [post]
func (h *ResourceHandler) CreateNotification(c echo.Context) error {
	var req NotificationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	n, err := h.resources.CreateNotification(c.Request().Context(), middleware.CurrentUser(c).ID, service.NotificationInput{
		Title:           req.Title,
		Message:         req.Message,
		DeliveryChannel: req.DeliveryChannel,
		Schedule:        req.ScheduleJSON,
	})
	if err != nil {
		return apperrors.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, n)
}

// ListNotifications godoc
// @Summary List own notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Notification
// @Router /notifications [get]
func (h *ResourceHandler) ListNotifications(c echo.Context) error {
	items, err := h.resources.ListNotifications(c.Request().Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		return apperrors.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// CreateSocialLink godoc
// @Summary Add a social link
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SocialLinkRequest true "Social link"
// @Success 200 {object} model.SocialLink
// @Router /users/me/social-links [post]
func (h *ResourceHandler) CreateSocialLink(c echo.Context) error {
	var req SocialLinkRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	l, err := h.resources.CreateSocialLink(c.Request().Context(), middleware.CurrentUser(c).ID, req.Platform, req.Handle)
	if err != nil {
		return apperrors.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, l)
}

// ListSocialLinks godoc
// @Summary List own social links
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.SocialLink
// @Router /users/me/social-links [get]
func (h *ResourceHandler) ListSocialLinks(c echo.Context) error {
	items, err := h.resources.ListSocialLinks(c.Request().Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		return apperrors.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// CreateDashboard godoc
// @Summary Save a dashboard layout
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body DashboardRequest true "Dashboard"
// @Success 200 {object} model.Dashboard
// @Router /users/me/dashboards [post]
func (h *ResourceHandler) CreateDashboard(c echo.Context) error {
	var req DashboardRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	d, err := h.resources.CreateDashboard(c.Request().Context(), middleware.CurrentUser(c).ID, req.Name, req.Preference, req.LayoutJSON)
	if err != nil {
		return apperrors.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, d)
}

// ListDashboards godoc
// @Summary List own dashboards
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param preference query string false "Only dashboards with this preference"
// @Success 200 {array} model.Dashboard
// @Router /users/me/dashboards [get]
func (h *ResourceHandler) ListDashboards(c echo.Context) error {
	items, err := h.resources.ListDashboards(c.Request().Context(), middleware.CurrentUser(c).ID, c.QueryParam("preference"))
	if err != nil {
		return apperrors.ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}
