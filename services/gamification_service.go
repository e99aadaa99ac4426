package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"oneFlowAPI/internal/gamification"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GamificationService struct {
	db *pgxpool.Pool
}

func NewGamificationService(db *pgxpool.Pool) *GamificationService {
	return &GamificationService{db: db}
}

// GetOrCreateStats returns the stats row for a user, inserting an
// all-default row first if none exists yet. The insert-if-absent keeps
// concurrent first reads from erroring on the unique user_id.
func (s *GamificationService) GetOrCreateStats(ctx context.Context, userID uuid.UUID) (*gamification.UserStats, error) {
	_, err := s.db.Exec(ctx,
		`INSERT INTO user_stats (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to init user stats: %w", err)
	}

	stats := &gamification.UserStats{}
	err = s.db.QueryRow(ctx, `
	SELECT id, user_id, total_points, level, streak_days, last_activity_date,
	       tasks_completed, hours_logged, updated_at
	FROM user_stats
	WHERE user_id = $1
	`, userID).Scan(
		&stats.ID,
		&stats.UserID,
		&stats.TotalPoints,
		&stats.Level,
		&stats.StreakDays,
		&stats.LastActivityDate,
		&stats.TasksCompleted,
		&stats.HoursLogged,
		&stats.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	return stats, nil
}

func (s *GamificationService) GetAchievements(ctx context.Context, userID uuid.UUID) ([]*gamification.Achievement, error) {
	rows, err := s.db.Query(ctx, `
	SELECT id, user_id, badge_type, badge_name, badge_description, points, earned_at
	FROM achievements
	WHERE user_id = $1
	ORDER BY earned_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch achievements: %w", err)
	}
	defer rows.Close()

	achievements := []*gamification.Achievement{}
	for rows.Next() {
		ach := &gamification.Achievement{}
		err := rows.Scan(
			&ach.ID,
			&ach.UserID,
			&ach.BadgeType,
			&ach.BadgeName,
			&ach.BadgeDescription,
			&ach.Points,
			&ach.EarnedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		achievements = append(achievements, ach)
	}

	return achievements, rows.Err()
}

// CheckAchievements evaluates every badge rule applicable to the given
// event, awards the ones that newly qualify and updates the user's
// stats. The whole evaluation runs in one transaction that locks the
// stats row, so concurrent evaluations for the same user serialize and
// counter increments cannot be lost. A nil event (unknown action tag)
// is a no-op, not an error.
func (s *GamificationService) CheckAchievements(ctx context.Context, userID uuid.UUID, event gamification.Event) ([]gamification.BadgeDefinition, error) {
	newAchievements := []gamification.BadgeDefinition{}
	if event == nil {
		return newAchievements, nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin evaluation: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO user_stats (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID); err != nil {
		return nil, fmt.Errorf("failed to init user stats: %w", err)
	}

	// tx-local CURRENT_DATE is the one calendar day every rule in this
	// evaluation agrees on, regardless of the app server's timezone.
	var streakDays int
	var lastActivity *time.Time
	var today time.Time
	err = tx.QueryRow(ctx,
		`SELECT streak_days, last_activity_date, CURRENT_DATE FROM user_stats WHERE user_id = $1 FOR UPDATE`,
		userID).Scan(&streakDays, &lastActivity, &today)
	if err != nil {
		return nil, fmt.Errorf("failed to lock user stats: %w", err)
	}

	earned, err := s.earnedBadgeTypes(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	// A rule fires at most once per badge type, ever. The unique
	// (user_id, badge_type) constraint backs this up under races: a
	// losing insert is a no-op and must not add points either.
	award := func(t gamification.BadgeType) error {
		if earned[t] {
			return nil
		}
		def, ok := gamification.Badge(t)
		if !ok {
			return nil
		}
		inserted, err := s.insertAchievement(ctx, tx, userID, def)
		if err != nil {
			return err
		}
		earned[t] = true
		if !inserted {
			return nil
		}
		if err := s.addPoints(ctx, tx, userID, def.Points); err != nil {
			return err
		}
		newAchievements = append(newAchievements, def)
		return nil
	}

	switch ev := event.(type) {
	case gamification.TaskCompleted:
		if err := award(gamification.BadgeFirstSteps); err != nil {
			return nil, err
		}
		var doneToday int
		err := tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM tasks
		WHERE assigned_to = $1 AND status = 'Done' AND updated_at::date = CURRENT_DATE
		`, userID).Scan(&doneToday)
		if err != nil {
			return nil, fmt.Errorf("failed to count today's completed tasks: %w", err)
		}
		if doneToday >= 5 {
			if err := award(gamification.BadgeSpeedDemon); err != nil {
				return nil, err
			}
		}
		if _, err := tx.Exec(ctx,
			`UPDATE user_stats SET tasks_completed = tasks_completed + 1, updated_at = CURRENT_TIMESTAMP WHERE user_id = $1`,
			userID); err != nil {
			return nil, fmt.Errorf("failed to bump tasks_completed: %w", err)
		}

	case gamification.HoursLogged:
		// Streak moves before any rule runs so Marathon Runner sees
		// the post-update value.
		newStreak := gamification.NextStreak(lastActivity, streakDays, today)
		if _, err := tx.Exec(ctx,
			`UPDATE user_stats SET streak_days = $1, last_activity_date = $2, updated_at = CURRENT_TIMESTAMP WHERE user_id = $3`,
			newStreak, today, userID); err != nil {
			return nil, fmt.Errorf("failed to update streak: %w", err)
		}
		if ev.Hour != nil {
			if *ev.Hour < 9 {
				if err := award(gamification.BadgeEarlyBird); err != nil {
					return nil, err
				}
			}
			if *ev.Hour >= 20 {
				if err := award(gamification.BadgeNightOwl); err != nil {
					return nil, err
				}
			}
		}
		if newStreak >= 7 {
			if err := award(gamification.BadgeMarathonRunner); err != nil {
				return nil, err
			}
		}
		if ev.Hours != nil {
			if _, err := tx.Exec(ctx,
				`UPDATE user_stats SET hours_logged = hours_logged + $1, updated_at = CURRENT_TIMESTAMP WHERE user_id = $2`,
				*ev.Hours, userID); err != nil {
				return nil, fmt.Errorf("failed to bump hours_logged: %w", err)
			}
		}

	case gamification.ProjectAssigned:
		var projectCount int
		err := tx.QueryRow(ctx,
			`SELECT COUNT(DISTINCT project_id) FROM project_members WHERE user_id = $1`,
			userID).Scan(&projectCount)
		if err != nil {
			return nil, fmt.Errorf("failed to count project memberships: %w", err)
		}
		if projectCount >= 3 {
			if err := award(gamification.BadgeTeamPlayer); err != nil {
				return nil, err
			}
		}

	case gamification.ProjectCompleted:
		if ev.ProjectID == nil {
			break
		}
		var budget *float64
		var revenue, costs float64
		err := tx.QueryRow(ctx, `
		SELECT p.budget,
		       COALESCE((SELECT SUM(total_amount) FROM customer_invoices WHERE project_id = p.id AND status = 'Paid'), 0),
		       COALESCE((SELECT SUM(total_amount) FROM vendor_bills WHERE project_id = p.id AND status = 'Paid'), 0)
		     + COALESCE((SELECT SUM(amount) FROM expenses WHERE project_id = p.id AND status = 'Approved'), 0)
		FROM projects p
		WHERE p.id = $1
		`, *ev.ProjectID).Scan(&budget, &revenue, &costs)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to load project financials: %w", err)
		}
		if err == nil && budget != nil && *budget > 0 {
			margin := (revenue - costs) / *budget * 100
			if margin > 30 {
				if err := award(gamification.BadgeProfitMaker); err != nil {
					return nil, err
				}
			}
		}

		var overdue int
		err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM tasks
		WHERE project_id = $1 AND status = 'Done' AND due_date < updated_at
		`, *ev.ProjectID).Scan(&overdue)
		if err != nil {
			return nil, fmt.Errorf("failed to count overdue tasks: %w", err)
		}
		if overdue == 0 {
			if err := award(gamification.BadgeOnTimeHero); err != nil {
				return nil, err
			}
		}

	case gamification.ExpenseApproved:
		var approved int
		err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM expenses WHERE approved_by = $1 AND status = 'Approved'`,
			userID).Scan(&approved)
		if err != nil {
			return nil, fmt.Errorf("failed to count approved expenses: %w", err)
		}
		if approved >= 10 {
			if err := award(gamification.BadgeBigSpender); err != nil {
				return nil, err
			}
		}

	case gamification.InvoiceCreated:
		var paidTotal float64
		err := tx.QueryRow(ctx,
			`SELECT COALESCE(SUM(total_amount), 0) FROM customer_invoices WHERE created_by = $1 AND status = 'Paid'`,
			userID).Scan(&paidTotal)
		if err != nil {
			return nil, fmt.Errorf("failed to sum paid invoices: %w", err)
		}
		if paidTotal >= 100000 {
			if err := award(gamification.BadgeMoneyMaker); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit evaluation: %w", err)
	}

	return newAchievements, nil
}

func (s *GamificationService) earnedBadgeTypes(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (map[gamification.BadgeType]bool, error) {
	rows, err := tx.Query(ctx, `SELECT badge_type FROM achievements WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load earned badges: %w", err)
	}
	defer rows.Close()

	earned := make(map[gamification.BadgeType]bool)
	for rows.Next() {
		var t gamification.BadgeType
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan badge type: %w", err)
		}
		earned[t] = true
	}
	return earned, rows.Err()
}

func (s *GamificationService) insertAchievement(ctx context.Context, tx pgx.Tx, userID uuid.UUID, def gamification.BadgeDefinition) (bool, error) {
	cmd, err := tx.Exec(ctx, `
	INSERT INTO achievements (user_id, badge_type, badge_name, badge_description, points)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (user_id, badge_type) DO NOTHING
	`, userID, def.BadgeType, def.BadgeName, def.BadgeDescription, def.Points)
	if err != nil {
		return false, fmt.Errorf("failed to award achievement: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// addPoints is an atomic increment; level is derived from the new
// total in the same statement so it can never drift from points.
func (s *GamificationService) addPoints(ctx context.Context, tx pgx.Tx, userID uuid.UUID, points int) error {
	_, err := tx.Exec(ctx, `
	UPDATE user_stats
	SET total_points = total_points + $1,
	    level = (total_points + $1) / 100 + 1,
	    updated_at = CURRENT_TIMESTAMP
	WHERE user_id = $2
	`, points, userID)
	if err != nil {
		return fmt.Errorf("failed to add points: %w", err)
	}
	return nil
}

// GetLeaderboard ranks users by lifetime points, ties broken by badge
// count. The period only windows badge_count; points, level and streak
// stay lifetime values.
func (s *GamificationService) GetLeaderboard(ctx context.Context, period gamification.Period) ([]*gamification.LeaderboardEntry, error) {
	dateFilter := ""
	switch period {
	case gamification.PeriodWeek:
		dateFilter = "AND a.earned_at >= CURRENT_DATE - INTERVAL '7 days'"
	case gamification.PeriodMonth:
		dateFilter = "AND a.earned_at >= CURRENT_DATE - INTERVAL '30 days'"
	}

	query := fmt.Sprintf(`
	SELECT
		u.id,
		u.full_name,
		u.email,
		COALESCE(us.total_points, 0) AS total_points,
		COALESCE(us.level, 1) AS level,
		COALESCE(us.streak_days, 0) AS streak_days,
		COUNT(DISTINCT a.id) AS badge_count
	FROM users u
	LEFT JOIN user_stats us ON us.user_id = u.id
	LEFT JOIN achievements a ON a.user_id = u.id %s
	GROUP BY u.id, u.full_name, u.email, us.total_points, us.level, us.streak_days
	ORDER BY total_points DESC, badge_count DESC
	LIMIT 10
	`, dateFilter)

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []*gamification.LeaderboardEntry{}
	for rows.Next() {
		entry := &gamification.LeaderboardEntry{}
		err := rows.Scan(
			&entry.UserID,
			&entry.FullName,
			&entry.Email,
			&entry.TotalPoints,
			&entry.Level,
			&entry.StreakDays,
			&entry.BadgeCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
