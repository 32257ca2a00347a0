package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"

	"solarsizing/internal/model"
	"solarsizing/internal/repository"
)

// ResourceService stores the simple records hanging off projects and users.
type ResourceService interface {
	CreateVisualization(ctx context.Context, ownerID, projectID uint, chartType string, config map[string]interface{}) (*model.Visualization, error)
	ListVisualizations(ctx context.Context, ownerID, projectID uint) ([]model.Visualization, error)
	CreateReport(ctx context.Context, ownerID, projectID uint, format string, deliverTo map[string]interface{}) (*model.Report, error)
	ListReports(ctx context.Context, ownerID, projectID uint) ([]model.Report, error)
	CreateNotification(ctx context.Context, userID uint, in NotificationInput) (*model.Notification, error)
	ListNotifications(ctx context.Context, userID uint) ([]model.Notification, error)
	CreateSocialLink(ctx context.Context, userID uint, platform, handle string) (*model.SocialLink, error)
	ListSocialLinks(ctx context.Context, userID uint) ([]model.SocialLink, error)
	CreateDashboard(ctx context.Context, userID uint, name, preference string, layout map[string]interface{}) (*model.Dashboard, error)
	ListDashboards(ctx context.Context, userID uint, preference string) ([]model.Dashboard, error)
}

// NotificationInput is the data for a scheduled notification.
type NotificationInput struct {
	Title           string
	Message         string
	DeliveryChannel string
	Schedule        map[string]interface{}
}

// ResourceRepositories groups the repositories used by ResourceService.
type ResourceRepositories struct {
	Projects       repository.ProjectRepository
	Visualizations repository.OwnedRepository[model.Visualization]
	Reports        repository.OwnedRepository[model.Report]
	Notifications  repository.OwnedRepository[model.Notification]
	SocialLinks    repository.OwnedRepository[model.SocialLink]
	Dashboards     repository.OwnedRepository[model.Dashboard]
}

type resourceService struct {
	repos ResourceRepositories
	now   func() time.Time
}

// NewResourceService creates a new resource service.
func NewResourceService(repos ResourceRepositories) ResourceService {
	return &resourceService{
		repos: repos,
		now:   time.Now,
	}
}

func (s *resourceService) CreateVisualization(ctx context.Context, ownerID, projectID uint, chartType string, config map[string]interface{}) (*model.Visualization, error) {
	if _, err := findOwnedProject(ctx, s.repos.Projects, ownerID, projectID); err != nil {
		return nil, err
	}
	v := &model.Visualization{
		ProjectID:  projectID,
		ChartType:  strings.TrimSpace(chartType),
		ConfigJSON: datatypes.JSONMap(config),
		CreatedAt:  s.now(),
	}
	if err := s.repos.Visualizations.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("create visualization: %w", err)
	}
	return v, nil
}

func (s *resourceService) ListVisualizations(ctx context.Context, ownerID, projectID uint) ([]model.Visualization, error) {
	if _, err := findOwnedProject(ctx, s.repos.Projects, ownerID, projectID); err != nil {
		return nil, err
	}
	items, err := s.repos.Visualizations.ListByOwner(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list visualizations: %w", err)
	}
	return items, nil
}

// CreateReport records a report request. Reports start out prepared.
func (s *resourceService) CreateReport(ctx context.Context, ownerID, projectID uint, format string, deliverTo map[string]interface{}) (*model.Report, error) {
	if _, err := findOwnedProject(ctx, s.repos.Projects, ownerID, projectID); err != nil {
		return nil, err
	}
	r := &model.Report{
		ProjectID:     projectID,
		Format:        strings.ToLower(strings.TrimSpace(format)),
		DeliverToJSON: datatypes.JSONMap(deliverTo),
		Status:        model.ReportStatusPrepared,
		CreatedAt:     s.now(),
	}
	if err := s.repos.Reports.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	return r, nil
}

func (s *resourceService) ListReports(ctx context.Context, ownerID, projectID uint) ([]model.Report, error) {
	if _, err := findOwnedProject(ctx, s.repos.Projects, ownerID, projectID); err != nil {
		return nil, err
	}
	items, err := s.repos.Reports.ListByOwner(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return items, nil
}

// CreateNotification records a notification. It is always scheduled; nothing
// is delivered from here.
func (s *resourceService) CreateNotification(ctx context.Context, userID uint, in NotificationInput) (*model.Notification, error) {
	channel := strings.TrimSpace(in.DeliveryChannel)
	if channel == "" {
		channel = model.DeliveryChannelPush
	}
	n := &model.Notification{
		UserID:          userID,
		Title:           in.Title,
		Message:         in.Message,
		DeliveryChannel: channel,
		Status:          model.NotificationStatusScheduled,
		ScheduleJSON:    datatypes.JSONMap(in.Schedule),
		CreatedAt:       s.now(),
	}
	if err := s.repos.Notifications.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return n, nil
}

func (s *resourceService) ListNotifications(ctx context.Context, userID uint) ([]model.Notification, error) {
	items, err := s.repos.Notifications.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return items, nil
}

func (s *resourceService) CreateSocialLink(ctx context.Context, userID uint, platform, handle string) (*model.SocialLink, error) {
	l := &model.SocialLink{
		UserID:    userID,
		Platform:  strings.TrimSpace(platform),
		Handle:    strings.TrimSpace(handle),
		CreatedAt: s.now(),
	}
	if err := s.repos.SocialLinks.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("create social link: %w", err)
	}
	return l, nil
}

func (s *resourceService) ListSocialLinks(ctx context.Context, userID uint) ([]model.SocialLink, error) {
	items, err := s.repos.SocialLinks.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list social links: %w", err)
	}
	return items, nil
}

func (s *resourceService) CreateDashboard(ctx context.Context, userID uint, name, preference string, layout map[string]interface{}) (*model.Dashboard, error) {
	d := &model.Dashboard{
		UserID:     userID,
		Name:       strings.TrimSpace(name),
		Preference: strings.TrimSpace(preference),
		LayoutJSON: datatypes.JSONMap(layout),
		CreatedAt:  s.now(),
	}
	if err := s.repos.Dashboards.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("create dashboard: %w", err)
	}
	return d, nil
}

// ListDashboards lists the user's dashboards, optionally only those with the
// given preference.
func (s *resourceService) ListDashboards(ctx context.Context, userID uint, preference string) ([]model.Dashboard, error) {
	var filters []repository.Filter
	if preference != "" {
		filters = append(filters, repository.Filter{Column: "preference", Value: preference})
	}
	items, err := s.repos.Dashboards.ListByOwner(ctx, userID, filters...)
	if err != nil {
		return nil, fmt.Errorf("list dashboards: %w", err)
	}
	return items, nil
}
