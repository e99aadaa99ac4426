package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"oneFlowAPI/internal/gamification"
	"oneFlowAPI/internal/timesheet"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TimesheetService struct {
	db           *pgxpool.Pool
	gamification *GamificationService
}

func NewTimesheetService(db *pgxpool.Pool, gamification *GamificationService) *TimesheetService {
	return &TimesheetService{db: db, gamification: gamification}
}

// LogHours records a timesheet entry, then fires an hours_logged
// evaluation carrying the wall-clock hour and the hours worked so the
// streak, Early Bird and Night Owl rules can run.
func (s *TimesheetService) LogHours(ctx context.Context, userID uuid.UUID, req *timesheet.LogHoursRequest) (*timesheet.Timesheet, error) {
	if req.HoursWorked <= 0 {
		return nil, fmt.Errorf("hoursWorked must be positive")
	}
	taskID, err := uuid.Parse(req.TaskID)
	if err != nil {
		return nil, fmt.Errorf("invalid task id")
	}
	workDate := time.Now()
	if req.WorkDate != nil {
		workDate = *req.WorkDate
	}
	isBillable := true
	if req.IsBillable != nil {
		isBillable = *req.IsBillable
	}

	ts := &timesheet.Timesheet{}
	err = s.db.QueryRow(ctx, `
	INSERT INTO timesheets (task_id, user_id, hours_worked, work_date, description, is_billable)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, task_id, user_id, hours_worked, work_date, description, is_billable, created_at
	`, taskID, userID, req.HoursWorked, workDate, req.Description, isBillable).Scan(
		&ts.ID,
		&ts.TaskID,
		&ts.UserID,
		&ts.HoursWorked,
		&ts.WorkDate,
		&ts.Description,
		&ts.IsBillable,
		&ts.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to log hours: %w", err)
	}

	hour := time.Now().Hour()
	hours := req.HoursWorked
	_, err = s.gamification.CheckAchievements(ctx, userID,
		gamification.HoursLogged{Hour: &hour, Hours: &hours})
	if err != nil {
		log.Printf("LogHours: achievement check failed for user %s: %v", userID, err)
	}

	return ts, nil
}

func (s *TimesheetService) GetUserTimesheets(ctx context.Context, userID uuid.UUID) ([]*timesheet.Timesheet, error) {
	return s.listTimesheets(ctx, `WHERE user_id = $1`, userID)
}

func (s *TimesheetService) GetTaskTimesheets(ctx context.Context, taskID uuid.UUID) ([]*timesheet.Timesheet, error) {
	return s.listTimesheets(ctx, `WHERE task_id = $1`, taskID)
}

func (s *TimesheetService) listTimesheets(ctx context.Context, where string, arg any) ([]*timesheet.Timesheet, error) {
	rows, err := s.db.Query(ctx, `
	SELECT id, task_id, user_id, hours_worked, work_date, description, is_billable, created_at
	FROM timesheets `+where+`
	ORDER BY work_date DESC, created_at DESC
	`, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch timesheets: %w", err)
	}
	defer rows.Close()

	sheets := []*timesheet.Timesheet{}
	for rows.Next() {
		ts := &timesheet.Timesheet{}
		err := rows.Scan(
			&ts.ID,
			&ts.TaskID,
			&ts.UserID,
			&ts.HoursWorked,
			&ts.WorkDate,
			&ts.Description,
			&ts.IsBillable,
			&ts.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan timesheet: %w", err)
		}
		sheets = append(sheets, ts)
	}
	return sheets, rows.Err()
}
