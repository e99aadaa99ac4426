package services

import (
	"context"
	"testing"

	"oneFlowAPI/internal/gamification"
	"oneFlowAPI/internal/project"
	"oneFlowAPI/tests/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndUpdateProject(t *testing.T) {
	pool, cleanup := helpers.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	svc := NewProjectService(pool, NewGamificationService(pool))

	budget := 5000.0
	created, err := svc.CreateProject(ctx, &project.CreateProjectRequest{
		Name:   "Website Redesign",
		Budget: &budget,
	})
	require.NoError(t, err)
	assert.Equal(t, project.StatusPlanned, created.Status)

	name := "Website Relaunch"
	status := project.StatusInProgress
	updated, err := svc.UpdateProject(ctx, created.ID, &project.UpdateProjectRequest{
		Name:   &name,
		Status: &status,
	})
	require.NoError(t, err)
	assert.Equal(t, "Website Relaunch", updated.Name)
	assert.Equal(t, project.StatusInProgress, updated.Status)
	// untouched fields survive a partial update
	require.NotNil(t, updated.Budget)
	assert.Equal(t, 5000.0, *updated.Budget)
}

func TestCompletingProjectEvaluatesManagerBadges(t *testing.T) {
	pool, cleanup := helpers.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	gamificationSvc := NewGamificationService(pool)
	svc := NewProjectService(pool, gamificationSvc)

	managerID := helpers.CreateTestUser(t, pool, "manager@example.com")
	managerStr := managerID.String()

	created, err := svc.CreateProject(ctx, &project.CreateProjectRequest{
		Name:             "Launch",
		ProjectManagerID: &managerStr,
	})
	require.NoError(t, err)

	status := project.StatusCompleted
	_, err = svc.UpdateProject(ctx, created.ID, &project.UpdateProjectRequest{Status: &status})
	require.NoError(t, err)

	// no overdue tasks on the project, so the manager gets On Time Hero
	achievements, err := gamificationSvc.GetAchievements(ctx, managerID)
	require.NoError(t, err)
	types := make([]gamification.BadgeType, 0, len(achievements))
	for _, ach := range achievements {
		types = append(types, ach.BadgeType)
	}
	assert.Contains(t, types, gamification.BadgeOnTimeHero)
}

func TestAddMemberIsIdempotent(t *testing.T) {
	pool, cleanup := helpers.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	svc := NewProjectService(pool, NewGamificationService(pool))
	userID := helpers.CreateTestUser(t, pool, "member@example.com")
	projectID := helpers.CreateTestProject(t, pool, "Shared", 0)

	require.NoError(t, svc.AddMember(ctx, projectID, userID))
	require.NoError(t, svc.AddMember(ctx, projectID, userID))

	members, err := svc.GetMembers(ctx, projectID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, userID, members[0].UserID)
	assert.Equal(t, "member@example.com", members[0].Email)
}

func TestDeleteProjectNotFound(t *testing.T) {
	pool, cleanup := helpers.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	svc := NewProjectService(pool, NewGamificationService(pool))
	projectID := helpers.CreateTestProject(t, pool, "Doomed", 0)

	require.NoError(t, svc.DeleteProject(ctx, projectID))
	assert.Error(t, svc.DeleteProject(ctx, projectID))
}
