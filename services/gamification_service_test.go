package services

import (
	"context"
	"testing"

	"oneFlowAPI/internal/gamification"
	"oneFlowAPI/tests/helpers"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func badgeTypes(defs []gamification.BadgeDefinition) []gamification.BadgeType {
	types := make([]gamification.BadgeType, 0, len(defs))
	for _, def := range defs {
		types = append(types, def.BadgeType)
	}
	return types
}

func insertDoneTask(t *testing.T, pool *pgxpool.Pool, projectID, userID uuid.UUID) {
	t.Helper()
	_, err := pool.Exec(context.Background(), `
	INSERT INTO tasks (project_id, title, assigned_to, status, updated_at)
	VALUES ($1, 'Task', $2, 'Done', now())
	`, projectID, userID)
	require.NoError(t, err)
}

func TestCheckAchievementsFirstTaskAwardsOnce(t *testing.T) {
	pool, cleanup := helpers.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	svc := NewGamificationService(pool)
	userID := helpers.CreateTestUser(t, pool, "first@example.com")

	awarded, err := svc.CheckAchievements(ctx, userID, gamification.TaskCompleted{})
	require.NoError(t, err)
	require.Len(t, awarded, 1)
	assert.Equal(t, gamification.BadgeFirstSteps, awarded[0].BadgeType)

	// the same rule must never fire twice
	awarded, err = svc.CheckAchievements(ctx, userID, gamification.TaskCompleted{})
	require.NoError(t, err)
	assert.Empty(t, awarded)

	stats, err := svc.GetOrCreateStats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 10, stats.TotalPoints)
	assert.Equal(t, 1, stats.Level)
	assert.Equal(t, 2, stats.TasksCompleted)
}

func TestCheckAchievementsUnknownActionIsNoOp(t *testing.T) {
	pool, cleanup := helpers.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	svc := NewGamificationService(pool)
	userID := helpers.CreateTestUser(t, pool, "noop@example.com")

	awarded, err := svc.CheckAchievements(ctx, userID, gamification.ParseEvent("made_coffee", nil))
	require.NoError(t, err)
	assert.Empty(t, awarded)

	var statsRows int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM user_stats WHERE user_id = $1`, userID).Scan(&statsRows))
	assert.Equal(t, 0, statsRows, "unknown action must not touch persisted state")
}

func TestSpeedDemonOnFifthTaskOfTheDay(t *testing.T) {
	pool, cleanup := helpers.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	svc := NewGamificationService(pool)
	userID := helpers.CreateTestUser(t, pool, "speed@example.com")
	projectID := helpers.CreateTestProject(t, pool, "Sprint", 0)

	for i := 0; i < 4; i++ {
		insertDoneTask(t, pool, projectID, userID)
	}

	awarded, err := svc.CheckAchievements(ctx, userID, gamification.TaskCompleted{})
	require.NoError(t, err)
	assert.NotContains(t, badgeTypes(awarded), gamification.BadgeSpeedDemon)

	insertDoneTask(t, pool, projectID, userID)
	awarded, err = svc.CheckAchievements(ctx, userID, gamification.TaskCompleted{})
	require.NoError(t, err)
	assert.Contains(t, badgeTypes(awarded), gamification.BadgeSpeedDemon)
}

func TestEarlyBirdAndNightOwl(t *testing.T) {
	pool, cleanup := helpers.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	svc := NewGamificationService(pool)
	userID := helpers.CreateTestUser(t, pool, "hours@example.com")

	hour := 8
	awarded, err := svc.CheckAchievements(ctx, userID, gamification.HoursLogged{Hour: &hour})
	require.NoError(t, err)
	assert.Contains(t, badgeTypes(awarded), gamification.BadgeEarlyBird)
	assert.NotContains(t, badgeTypes(awarded), gamification.BadgeNightOwl)

	hour = 21
	awarded, err = svc.CheckAchievements(ctx, userID, gamification.HoursLogged{Hour: &hour})
	require.NoError(t, err)
	assert.Contains(t, badgeTypes(awarded), gamification.BadgeNightOwl)
}

func TestMarathonRunnerOnSeventhStreakDay(t *testing.T) {
	pool, cleanup := helpers.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	svc := NewGamificationService(pool)
	userID := helpers.CreateTestUser(t, pool, "streak@example.com")

	_, err := pool.Exec(ctx, `
	INSERT INTO user_stats (user_id, streak_days, last_activity_date)
	VALUES ($1, 6, CURRENT_DATE - 1)
	`, userID)
	require.NoError(t, err)

	hours := 2.0
	awarded, err := svc.CheckAchievements(ctx, userID, gamification.HoursLogged{Hours: &hours})
	require.NoError(t, err)
	assert.Contains(t, badgeTypes(awarded), gamification.BadgeMarathonRunner)

	stats, err := svc.GetOrCreateStats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 7, stats.StreakDays)
	assert.Equal(t, 2.0, stats.HoursLogged)
}

func TestStreakResetsAfterGap(t *testing.T) {
	pool, cleanup := helpers.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	svc := NewGamificationService(pool)
	userID := helpers.CreateTestUser(t, pool, "gap@example.com")

	_, err := pool.Exec(ctx, `
	INSERT INTO user_stats (user_id, streak_days, last_activity_date)
	VALUES ($1, 12, CURRENT_DATE - 3)
	`, userID)
	require.NoError(t, err)

	awarded, err := svc.CheckAchievements(ctx, userID, gamification.HoursLogged{})
	require.NoError(t, err)
	assert.NotContains(t, badgeTypes(awarded), gamification.BadgeMarathonRunner)

	stats, err := svc.GetOrCreateStats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.StreakDays)
}

func TestActivityDateComesFromDatabaseClock(t *testing.T) {
	pool, cleanup := helpers.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	svc := NewGamificationService(pool)
	userID := helpers.CreateTestUser(t, pool, "clock@example.com")

	_, err := svc.CheckAchievements(ctx, userID, gamification.HoursLogged{})
	require.NoError(t, err)

	var matchesDBToday bool
	err = pool.QueryRow(ctx,
		`SELECT last_activity_date = CURRENT_DATE FROM user_stats WHERE user_id = $1`,
		userID).Scan(&matchesDBToday)
	require.NoError(t, err)
	assert.True(t, matchesDBToday)
}

func TestTeamPlayerOnThirdProject(t *testing.T) {
	pool, cleanup := helpers.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	svc := NewGamificationService(pool)
	userID := helpers.CreateTestUser(t, pool, "team@example.com")

	for i, name := range []string{"Alpha", "Beta"} {
		projectID := helpers.CreateTestProject(t, pool, name, 0)
		_, err := pool.Exec(ctx,
			`INSERT INTO project_members (project_id, user_id) VALUES ($1, $2)`, projectID, userID)
		require.NoError(t, err, "project %d", i)
	}

	awarded, err := svc.CheckAchievements(ctx, userID, gamification.ProjectAssigned{})
	require.NoError(t, err)
	assert.Empty(t, awarded)

	projectID := helpers.CreateTestProject(t, pool, "Gamma", 0)
	_, err = pool.Exec(ctx,
		`INSERT INTO project_members (project_id, user_id) VALUES ($1, $2)`, projectID, userID)
	require.NoError(t, err)

	awarded, err = svc.CheckAchievements(ctx, userID, gamification.ProjectAssigned{})
	require.NoError(t, err)
	assert.Contains(t, badgeTypes(awarded), gamification.BadgeTeamPlayer)
}

func TestProjectCompletedZeroBudgetSkipsProfitMaker(t *testing.T) {
	pool, cleanup := helpers.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	svc := NewGamificationService(pool)
	userID := helpers.CreateTestUser(t, pool, "pm@example.com")
	projectID := helpers.CreateTestProject(t, pool, "Freebie", 0)

	_, err := pool.Exec(ctx, `
	INSERT INTO customer_invoices (invoice_number, project_id, customer_name, total_amount, status)
	VALUES ('INV-TEST-001', $1, 'ACME', 50000, 'Paid')
	`, projectID)
	require.NoError(t, err)

	awarded, err := svc.CheckAchievements(ctx, userID, gamification.ProjectCompleted{ProjectID: &projectID})
	require.NoError(t, err)

	// zero budget means the margin is undefined, never "infinite profit",
	// while a project with no overdue work still earns On Time Hero
	assert.NotContains(t, badgeTypes(awarded), gamification.BadgeProfitMaker)
	assert.Contains(t, badgeTypes(awarded), gamification.BadgeOnTimeHero)
}

func TestProfitMakerAboveThirtyPercentMargin(t *testing.T) {
	pool, cleanup := helpers.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	svc := NewGamificationService(pool)
	userID := helpers.CreateTestUser(t, pool, "margin@example.com")
	projectID := helpers.CreateTestProject(t, pool, "Big Win", 100000)

	_, err := pool.Exec(ctx, `
	INSERT INTO customer_invoices (invoice_number, project_id, customer_name, total_amount, status)
	VALUES ('INV-TEST-002', $1, 'ACME', 90000, 'Paid')
	`, projectID)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `
	INSERT INTO expenses (project_id, user_id, amount, description, status)
	VALUES ($1, $2, 40000, 'Hardware', 'Approved')
	`, projectID, userID)
	require.NoError(t, err)

	// (90000 - 40000) / 100000 = 50% margin
	awarded, err := svc.CheckAchievements(ctx, userID, gamification.ProjectCompleted{ProjectID: &projectID})
	require.NoError(t, err)
	assert.Contains(t, badgeTypes(awarded), gamification.BadgeProfitMaker)
}

func TestBigSpenderOnTenthApproval(t *testing.T) {
	pool, cleanup := helpers.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	svc := NewGamificationService(pool)
	approverID := helpers.CreateTestUser(t, pool, "approver@example.com")
	spenderID := helpers.CreateTestUser(t, pool, "spender@example.com")

	for i := 0; i < 10; i++ {
		_, err := pool.Exec(ctx, `
		INSERT INTO expenses (user_id, amount, description, status, approved_by)
		VALUES ($1, 100, 'Lunch', 'Approved', $2)
		`, spenderID, approverID)
		require.NoError(t, err)
	}

	awarded, err := svc.CheckAchievements(ctx, approverID, gamification.ExpenseApproved{})
	require.NoError(t, err)
	assert.Contains(t, badgeTypes(awarded), gamification.BadgeBigSpender)
}

func TestMoneyMakerCountsPaidInvoicesOnly(t *testing.T) {
	pool, cleanup := helpers.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	svc := NewGamificationService(pool)
	userID := helpers.CreateTestUser(t, pool, "sales@example.com")

	_, err := pool.Exec(ctx, `
	INSERT INTO customer_invoices (invoice_number, customer_name, total_amount, status, created_by)
	VALUES ('INV-TEST-010', 'ACME', 120000, 'Sent', $1)
	`, userID)
	require.NoError(t, err)

	awarded, err := svc.CheckAchievements(ctx, userID, gamification.InvoiceCreated{})
	require.NoError(t, err)
	assert.NotContains(t, badgeTypes(awarded), gamification.BadgeMoneyMaker)

	_, err = pool.Exec(ctx,
		`UPDATE customer_invoices SET status = 'Paid' WHERE invoice_number = 'INV-TEST-010'`)
	require.NoError(t, err)

	awarded, err = svc.CheckAchievements(ctx, userID, gamification.InvoiceCreated{})
	require.NoError(t, err)
	assert.Contains(t, badgeTypes(awarded), gamification.BadgeMoneyMaker)
}

func TestPointsStayConsistentWithBadges(t *testing.T) {
	pool, cleanup := helpers.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	svc := NewGamificationService(pool)
	userID := helpers.CreateTestUser(t, pool, "sum@example.com")

	hour := 7
	_, err := svc.CheckAchievements(ctx, userID, gamification.TaskCompleted{})
	require.NoError(t, err)
	_, err = svc.CheckAchievements(ctx, userID, gamification.HoursLogged{Hour: &hour})
	require.NoError(t, err)
	hour = 22
	_, err = svc.CheckAchievements(ctx, userID, gamification.HoursLogged{Hour: &hour})
	require.NoError(t, err)

	achievements, err := svc.GetAchievements(ctx, userID)
	require.NoError(t, err)

	sum := 0
	for _, ach := range achievements {
		sum += ach.Points
	}

	stats, err := svc.GetOrCreateStats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, sum, stats.TotalPoints)
	assert.Equal(t, stats.TotalPoints/100+1, stats.Level)
}

func seedStats(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, points int) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO user_stats (user_id, total_points, level) VALUES ($1, $2, $3)`,
		userID, points, points/100+1)
	require.NoError(t, err)
}

func seedBadges(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, types []gamification.BadgeType, earnedAt string) {
	t.Helper()
	for _, badgeType := range types {
		def, ok := gamification.Badge(badgeType)
		require.True(t, ok)
		_, err := pool.Exec(context.Background(), `
		INSERT INTO achievements (user_id, badge_type, badge_name, points, earned_at)
		VALUES ($1, $2, $3, $4, now() - $5::interval)
		`, userID, def.BadgeType, def.BadgeName, def.Points, earnedAt)
		require.NoError(t, err)
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	pool, cleanup := helpers.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	svc := NewGamificationService(pool)

	userA := helpers.CreateTestUser(t, pool, "a@example.com")
	userB := helpers.CreateTestUser(t, pool, "b@example.com")
	userC := helpers.CreateTestUser(t, pool, "c@example.com")

	// A and B are tied on points, so badge count must break the tie;
	// C's larger badge pile must not outrank higher points.
	seedStats(t, pool, userA, 150)
	seedBadges(t, pool, userA, []gamification.BadgeType{
		gamification.BadgeFirstSteps, gamification.BadgeEarlyBird,
	}, "0 days")
	seedStats(t, pool, userB, 150)
	seedBadges(t, pool, userB, []gamification.BadgeType{
		gamification.BadgeFirstSteps, gamification.BadgeEarlyBird, gamification.BadgeNightOwl,
	}, "0 days")
	seedStats(t, pool, userC, 90)
	seedBadges(t, pool, userC, []gamification.BadgeType{
		gamification.BadgeFirstSteps, gamification.BadgeEarlyBird, gamification.BadgeNightOwl,
		gamification.BadgeSpeedDemon, gamification.BadgeTeamPlayer,
	}, "0 days")

	entries, err := svc.GetLeaderboard(ctx, gamification.PeriodAll)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, userB, entries[0].UserID)
	assert.Equal(t, userA, entries[1].UserID)
	assert.Equal(t, userC, entries[2].UserID)
	assert.Equal(t, 3, entries[0].BadgeCount)
	assert.Equal(t, 2, entries[1].BadgeCount)
	assert.Equal(t, 5, entries[2].BadgeCount)
}

func TestLeaderboardTieBreakUsesWindowedBadgeCount(t *testing.T) {
	pool, cleanup := helpers.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	svc := NewGamificationService(pool)

	userOld := helpers.CreateTestUser(t, pool, "old@example.com")
	userNew := helpers.CreateTestUser(t, pool, "new@example.com")

	// equal points; userOld has more badges but all outside the window
	seedStats(t, pool, userOld, 100)
	seedBadges(t, pool, userOld, []gamification.BadgeType{
		gamification.BadgeFirstSteps, gamification.BadgeEarlyBird,
	}, "60 days")
	seedStats(t, pool, userNew, 100)
	seedBadges(t, pool, userNew, []gamification.BadgeType{
		gamification.BadgeFirstSteps,
	}, "0 days")

	entries, err := svc.GetLeaderboard(ctx, gamification.PeriodAll)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, userOld, entries[0].UserID)

	entries, err = svc.GetLeaderboard(ctx, gamification.PeriodWeek)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, userNew, entries[0].UserID)
	assert.Equal(t, 1, entries[0].BadgeCount)
	assert.Equal(t, 0, entries[1].BadgeCount)
}

func TestLeaderboardPeriodWindowsBadgeCountOnly(t *testing.T) {
	pool, cleanup := helpers.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	svc := NewGamificationService(pool)
	userID := helpers.CreateTestUser(t, pool, "window@example.com")

	_, err := pool.Exec(ctx,
		`INSERT INTO user_stats (user_id, total_points, level) VALUES ($1, 210, 3)`, userID)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `
	INSERT INTO achievements (user_id, badge_type, badge_name, points, earned_at)
	VALUES ($1, 'first_steps', 'First Steps', 10, now() - INTERVAL '60 days'),
	       ($1, 'early_bird', 'Early Bird', 20, now())
	`, userID)
	require.NoError(t, err)

	entries, err := svc.GetLeaderboard(ctx, gamification.PeriodWeek)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// lifetime points survive the window, the badge count does not
	assert.Equal(t, 210, entries[0].TotalPoints)
	assert.Equal(t, 1, entries[0].BadgeCount)
}
