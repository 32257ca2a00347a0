package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "solarsizing/internal/errors"
	"solarsizing/internal/model"
	"solarsizing/internal/repository"
	"solarsizing/internal/testutil"
)

func newTestResourceService(db *gorm.DB) ResourceService {
	return NewResourceService(ResourceRepositories{
		Projects:       repository.NewProjectRepository(db),
		Visualizations: repository.NewVisualizationRepository(db),
		Reports:        repository.NewReportRepository(db),
		Notifications:  repository.NewNotificationRepository(db),
		SocialLinks:    repository.NewSocialLinkRepository(db),
		Dashboards:     repository.NewDashboardRepository(db),
	})
}

func TestResourceService_ProjectScoped(t *testing.T) {
	db := testutil.NewDB(t)
	owner := createUser(t, db, "owner@example.com", true)
	other := createUser(t, db, "other@example.com", true)
	projects := newTestProjectService(db)
	svc := newTestResourceService(db)
	ctx := context.Background()

	p, err := projects.CreateProject(ctx, owner.ID, CreateProjectInput{Name: "Roof"})
	require.NoError(t, err)

	v, err := svc.CreateVisualization(ctx, owner.ID, p.ID, "bar", map[string]interface{}{"metric": "kwh"})
	require.NoError(t, err)
	assert.Equal(t, p.ID, v.ProjectID)

	r, err := svc.CreateReport(ctx, owner.ID, p.ID, "PDF", map[string]interface{}{"email": "owner@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "pdf", r.Format)
	assert.Equal(t, model.ReportStatusPrepared, r.Status)

	_, err = svc.CreateVisualization(ctx, other.ID, p.ID, "bar", nil)
	assert.ErrorIs(t, err, apperrors.ErrProjectNotFound)
	_, err = svc.ListReports(ctx, other.ID, p.ID)
	assert.ErrorIs(t, err, apperrors.ErrProjectNotFound)

	vs, err := svc.ListVisualizations(ctx, owner.ID, p.ID)
	require.NoError(t, err)
	assert.Len(t, vs, 1)
}

func TestResourceService_UserScoped(t *testing.T) {
	db := testutil.NewDB(t)
	user := createUser(t, db, "owner@example.com", true)
	other := createUser(t, db, "other@example.com", true)
	svc := newTestResourceService(db)
	ctx := context.Background()

	n, err := svc.CreateNotification(ctx, user.ID, NotificationInput{Title: "Panels", Message: "Clean them"})
	require.NoError(t, err)
	assert.Equal(t, model.DeliveryChannelPush, n.DeliveryChannel)
	assert.Equal(t, model.NotificationStatusScheduled, n.Status)

	_, err = svc.CreateSocialLink(ctx, user.ID, "github", " ada ")
	require.NoError(t, err)
	links, err := svc.ListSocialLinks(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "ada", links[0].Handle)

	_, err = svc.CreateDashboard(ctx, user.ID, "Energy", "compact", nil)
	require.NoError(t, err)
	wide, err := svc.CreateDashboard(ctx, user.ID, "Costs", "wide", nil)
	require.NoError(t, err)

	all, err := svc.ListDashboards(ctx, user.ID, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, wide.ID, all[0].ID)

	filtered, err := svc.ListDashboards(ctx, user.ID, "wide")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Costs", filtered[0].Name)

	none, err := svc.ListNotifications(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}
