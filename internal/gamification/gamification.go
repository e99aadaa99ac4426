package gamification

import (
	"time"

	"github.com/google/uuid"
)

type BadgeType string

const (
	BadgeFirstSteps     BadgeType = "first_steps"
	BadgeEarlyBird      BadgeType = "early_bird"
	BadgeNightOwl       BadgeType = "night_owl"
	BadgeSpeedDemon     BadgeType = "speed_demon"
	BadgeMarathonRunner BadgeType = "marathon_runner"
	BadgeTeamPlayer     BadgeType = "team_player"
	BadgeProfitMaker    BadgeType = "profit_maker"
	BadgeOnTimeHero     BadgeType = "on_time_hero"
	BadgeBigSpender     BadgeType = "big_spender"
	BadgeMoneyMaker     BadgeType = "money_maker"
)

// BadgeDefinition is a catalog entry. Name, description and points are
// copied onto the achievement row at award time, so later catalog edits
// never touch already-earned badges.
type BadgeDefinition struct {
	BadgeType        BadgeType `json:"badge_type"`
	BadgeName        string    `json:"badge_name"`
	BadgeDescription string    `json:"badge_description"`
	Points           int       `json:"points"`
}

var catalog = map[BadgeType]BadgeDefinition{
	BadgeFirstSteps:     {BadgeFirstSteps, "First Steps", "Complete your first task", 10},
	BadgeEarlyBird:      {BadgeEarlyBird, "Early Bird", "Log hours before 9 AM", 20},
	BadgeNightOwl:       {BadgeNightOwl, "Night Owl", "Log hours after 8 PM", 20},
	BadgeSpeedDemon:     {BadgeSpeedDemon, "Speed Demon", "Complete 5 tasks in one day", 50},
	BadgeMarathonRunner: {BadgeMarathonRunner, "Marathon Runner", "7-day streak of logging hours", 100},
	BadgeTeamPlayer:     {BadgeTeamPlayer, "Team Player", "Work on 3+ projects simultaneously", 30},
	BadgeProfitMaker:    {BadgeProfitMaker, "Profit Maker", "Complete project with >30% profit", 150},
	BadgeOnTimeHero:     {BadgeOnTimeHero, "On Time Hero", "Complete all tasks before deadline", 40},
	BadgeBigSpender:     {BadgeBigSpender, "Big Spender", "Approve 10+ expenses", 60},
	BadgeMoneyMaker:     {BadgeMoneyMaker, "Money Maker", "Generate 100,000+ revenue", 200},
}

// Badge looks up a catalog entry by type.
func Badge(t BadgeType) (BadgeDefinition, bool) {
	def, ok := catalog[t]
	return def, ok
}

// Catalog returns all badge definitions.
func Catalog() []BadgeDefinition {
	defs := make([]BadgeDefinition, 0, len(catalog))
	for _, def := range catalog {
		defs = append(defs, def)
	}
	return defs
}

type Achievement struct {
	ID               uuid.UUID `json:"id" db:"id"`
	UserID           uuid.UUID `json:"user_id" db:"user_id"`
	BadgeType        BadgeType `json:"badge_type" db:"badge_type"`
	BadgeName        string    `json:"badge_name" db:"badge_name"`
	BadgeDescription string    `json:"badge_description" db:"badge_description"`
	Points           int       `json:"points" db:"points"`
	EarnedAt         time.Time `json:"earned_at" db:"earned_at"`
}

type UserStats struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	UserID           uuid.UUID  `json:"user_id" db:"user_id"`
	TotalPoints      int        `json:"total_points" db:"total_points"`
	Level            int        `json:"level" db:"level"`
	StreakDays       int        `json:"streak_days" db:"streak_days"`
	LastActivityDate *time.Time `json:"last_activity_date" db:"last_activity_date"`
	TasksCompleted   int        `json:"tasks_completed" db:"tasks_completed"`
	HoursLogged      float64    `json:"hours_logged" db:"hours_logged"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

type LeaderboardEntry struct {
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	FullName    string    `json:"full_name" db:"full_name"`
	Email       string    `json:"email" db:"email"`
	TotalPoints int       `json:"total_points" db:"total_points"`
	Level       int       `json:"level" db:"level"`
	StreakDays  int       `json:"streak_days" db:"streak_days"`
	BadgeCount  int       `json:"badge_count" db:"badge_count"`
}

type Period string

const (
	PeriodAll   Period = "all"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ParsePeriod maps a query-string value to a leaderboard period,
// falling back to all-time for anything unrecognized.
func ParsePeriod(s string) Period {
	switch s {
	case "week":
		return PeriodWeek
	case "month":
		return PeriodMonth
	default:
		return PeriodAll
	}
}

// Level derives the level from a point total: every 100 points is one
// level, starting at level 1.
func Level(totalPoints int) int {
	return totalPoints/100 + 1
}

// NextStreak computes the streak value after an hours-logged event on
// the given day. Same calendar day leaves the streak alone, the day
// after the last activity extends it, anything else starts over at 1.
func NextStreak(lastActivity *time.Time, streak int, today time.Time) int {
	if lastActivity == nil {
		return 1
	}
	if sameDate(*lastActivity, today) {
		if streak < 1 {
			return 1
		}
		return streak
	}
	if sameDate(lastActivity.AddDate(0, 0, 1), today) {
		return streak + 1
	}
	return 1
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
