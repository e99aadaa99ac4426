package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"oneFlowAPI/internal/gamification"
	"oneFlowAPI/internal/task"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TaskService struct {
	db           *pgxpool.Pool
	gamification *GamificationService
}

func NewTaskService(db *pgxpool.Pool, gamification *GamificationService) *TaskService {
	return &TaskService{db: db, gamification: gamification}
}

const taskColumns = `id, project_id, title, description, assigned_to, status, priority, due_date, estimated_hours, created_by, created_at, updated_at`

func scanTask(row pgx.Row) (*task.Task, error) {
	t := &task.Task{}
	err := row.Scan(
		&t.ID,
		&t.ProjectID,
		&t.Title,
		&t.Description,
		&t.AssignedTo,
		&t.Status,
		&t.Priority,
		&t.DueDate,
		&t.EstimatedHours,
		&t.CreatedBy,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return t, err
}

func (s *TaskService) GetAllTasks(ctx context.Context, filter task.ListFilter) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE 1=1`
	args := []any{}
	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		query += ` AND project_id = $` + strconv.Itoa(len(args))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		query += ` AND assigned_to = $` + strconv.Itoa(len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.Priority != "" {
		args = append(args, filter.Priority)
		query += ` AND priority = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *TaskService) GetMyTasks(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	return s.GetAllTasks(ctx, task.ListFilter{AssignedTo: &userID})
}

func (s *TaskService) GetTaskByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	t, err := scanTask(s.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("task not found")
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

func (s *TaskService) CreateTask(ctx context.Context, createdBy uuid.UUID, req *task.CreateTaskRequest) (*task.Task, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("task title is required")
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("invalid project id")
	}
	var assignedTo *uuid.UUID
	if req.AssignedTo != nil && *req.AssignedTo != "" {
		id, err := uuid.Parse(*req.AssignedTo)
		if err != nil {
			return nil, fmt.Errorf("invalid assigned user id")
		}
		assignedTo = &id
	}
	status := req.Status
	if status == "" {
		status = task.StatusNew
	}
	priority := req.Priority
	if priority == "" {
		priority = "Medium"
	}

	t, err := scanTask(s.db.QueryRow(ctx, `
	INSERT INTO tasks (project_id, title, description, assigned_to, status, priority, due_date, estimated_hours, created_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING `+taskColumns,
		projectID, req.Title, req.Description, assignedTo, status, priority, req.DueDate, req.EstimatedHours, createdBy))
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return t, nil
}

// UpdateTask applies the changed fields. A transition into Done fires a
// task_completed evaluation for the assignee; evaluation failures are
// logged and do not undo the update.
func (s *TaskService) UpdateTask(ctx context.Context, id uuid.UUID, req *task.UpdateTaskRequest) (*task.Task, error) {
	current, err := s.GetTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}

	title := current.Title
	if req.Title != nil {
		title = *req.Title
	}
	description := current.Description
	if req.Description != nil {
		description = req.Description
	}
	assignedTo := current.AssignedTo
	if req.AssignedTo != nil {
		if *req.AssignedTo == "" {
			assignedTo = nil
		} else {
			parsed, err := uuid.Parse(*req.AssignedTo)
			if err != nil {
				return nil, fmt.Errorf("invalid assigned user id")
			}
			assignedTo = &parsed
		}
	}
	status := current.Status
	if req.Status != nil {
		status = *req.Status
	}
	priority := current.Priority
	if req.Priority != nil {
		priority = *req.Priority
	}
	dueDate := current.DueDate
	if req.DueDate != nil {
		dueDate = req.DueDate
	}
	estimatedHours := current.EstimatedHours
	if req.EstimatedHours != nil {
		estimatedHours = req.EstimatedHours
	}

	t, err := scanTask(s.db.QueryRow(ctx, `
	UPDATE tasks
	SET title = $1, description = $2, assigned_to = $3, status = $4, priority = $5,
	    due_date = $6, estimated_hours = $7, updated_at = CURRENT_TIMESTAMP
	WHERE id = $8
	RETURNING `+taskColumns,
		title, description, assignedTo, status, priority, dueDate, estimatedHours, id))
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if current.Status != task.StatusDone && t.Status == task.StatusDone && t.AssignedTo != nil {
		if _, err := s.gamification.CheckAchievements(ctx, *t.AssignedTo, gamification.TaskCompleted{}); err != nil {
			log.Printf("UpdateTask: achievement check failed for task %s: %v", t.ID, err)
		}
	}

	return t, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	cmd, err := s.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("task not found")
	}
	return nil
}
