package services

import (
	"context"
	"testing"

	"oneFlowAPI/internal/timesheet"
	"oneFlowAPI/tests/helpers"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogHoursUpdatesStats(t *testing.T) {
	pool, cleanup := helpers.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	gamificationSvc := NewGamificationService(pool)
	svc := NewTimesheetService(pool, gamificationSvc)

	userID := helpers.CreateTestUser(t, pool, "hours1@example.com")
	projectID := helpers.CreateTestProject(t, pool, "Tracked", 0)

	var taskID string
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO tasks (project_id, title) VALUES ($1, 'Work') RETURNING id`, projectID).Scan(&taskID))

	entry, err := svc.LogHours(ctx, userID, &timesheet.LogHoursRequest{
		TaskID:      taskID,
		HoursWorked: 3.5,
	})
	require.NoError(t, err)
	assert.Equal(t, 3.5, entry.HoursWorked)
	assert.True(t, entry.IsBillable)

	stats, err := gamificationSvc.GetOrCreateStats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 3.5, stats.HoursLogged)
	assert.Equal(t, 1, stats.StreakDays)
	require.NotNil(t, stats.LastActivityDate)
}

func TestLogHoursValidation(t *testing.T) {
	pool, cleanup := helpers.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	svc := NewTimesheetService(pool, NewGamificationService(pool))
	userID := helpers.CreateTestUser(t, pool, "hours2@example.com")

	_, err := svc.LogHours(ctx, userID, &timesheet.LogHoursRequest{TaskID: "not-a-uuid", HoursWorked: 1})
	assert.Error(t, err)

	_, err = svc.LogHours(ctx, userID, &timesheet.LogHoursRequest{
		TaskID:      "b7a9c9e2-13c4-4f6e-8f7d-2a1b3c4d5e6f",
		HoursWorked: 0,
	})
	assert.Error(t, err)
}

func TestGetUserAndTaskTimesheets(t *testing.T) {
	pool, cleanup := helpers.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	svc := NewTimesheetService(pool, NewGamificationService(pool))
	userID := helpers.CreateTestUser(t, pool, "hours3@example.com")
	otherID := helpers.CreateTestUser(t, pool, "hours4@example.com")
	projectID := helpers.CreateTestProject(t, pool, "Tracked", 0)

	var taskID string
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO tasks (project_id, title) VALUES ($1, 'Work') RETURNING id`, projectID).Scan(&taskID))

	_, err := svc.LogHours(ctx, userID, &timesheet.LogHoursRequest{TaskID: taskID, HoursWorked: 2})
	require.NoError(t, err)
	_, err = svc.LogHours(ctx, otherID, &timesheet.LogHoursRequest{TaskID: taskID, HoursWorked: 1})
	require.NoError(t, err)

	mine, err := svc.GetUserTimesheets(ctx, userID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, 2.0, mine[0].HoursWorked)

	all, err := svc.GetTaskTimesheets(ctx, uuid.MustParse(taskID))
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
