package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"oneFlowAPI/internal/gamification"
	"oneFlowAPI/internal/project"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProjectService struct {
	db           *pgxpool.Pool
	gamification *GamificationService
}

func NewProjectService(db *pgxpool.Pool, gamification *GamificationService) *ProjectService {
	return &ProjectService{db: db, gamification: gamification}
}

const projectColumns = `id, name, description, status, start_date, end_date, budget, project_manager_id, created_at, updated_at`

func scanProject(row pgx.Row) (*project.Project, error) {
	p := &project.Project{}
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Status,
		&p.StartDate,
		&p.EndDate,
		&p.Budget,
		&p.ProjectManagerID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func (s *ProjectService) GetAllProjects(ctx context.Context, status string) ([]*project.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch projects: %w", err)
	}
	defer rows.Close()

	projects := []*project.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *ProjectService) GetProjectByID(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	p, err := scanProject(s.db.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("project not found")
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

func (s *ProjectService) CreateProject(ctx context.Context, req *project.CreateProjectRequest) (*project.Project, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("project name is required")
	}
	status := req.Status
	if status == "" {
		status = project.StatusPlanned
	}
	var managerID *uuid.UUID
	if req.ProjectManagerID != nil {
		id, err := uuid.Parse(*req.ProjectManagerID)
		if err != nil {
			return nil, fmt.Errorf("invalid project manager id")
		}
		managerID = &id
	}

	p, err := scanProject(s.db.QueryRow(ctx, `
	INSERT INTO projects (name, description, status, start_date, end_date, budget, project_manager_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING `+projectColumns, req.Name, req.Description, status, req.StartDate, req.EndDate, req.Budget, managerID))
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return p, nil
}

// UpdateProject applies the changed fields. A transition into the
// Completed status fires a project_completed evaluation for the project
// manager; a failed evaluation is logged, the update itself stands.
func (s *ProjectService) UpdateProject(ctx context.Context, id uuid.UUID, req *project.UpdateProjectRequest) (*project.Project, error) {
	current, err := s.GetProjectByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := current.Name
	if req.Name != nil {
		name = *req.Name
	}
	description := current.Description
	if req.Description != nil {
		description = req.Description
	}
	status := current.Status
	if req.Status != nil {
		status = *req.Status
	}
	startDate := current.StartDate
	if req.StartDate != nil {
		startDate = req.StartDate
	}
	endDate := current.EndDate
	if req.EndDate != nil {
		endDate = req.EndDate
	}
	budget := current.Budget
	if req.Budget != nil {
		budget = req.Budget
	}
	managerID := current.ProjectManagerID
	if req.ProjectManagerID != nil {
		parsed, err := uuid.Parse(*req.ProjectManagerID)
		if err != nil {
			return nil, fmt.Errorf("invalid project manager id")
		}
		managerID = &parsed
	}

	p, err := scanProject(s.db.QueryRow(ctx, `
	UPDATE projects
	SET name = $1, description = $2, status = $3, start_date = $4, end_date = $5,
	    budget = $6, project_manager_id = $7, updated_at = CURRENT_TIMESTAMP
	WHERE id = $8
	RETURNING `+projectColumns, name, description, status, startDate, endDate, budget, managerID, id))
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	if current.Status != project.StatusCompleted && p.Status == project.StatusCompleted && p.ProjectManagerID != nil {
		projectID := p.ID
		_, err := s.gamification.CheckAchievements(ctx, *p.ProjectManagerID,
			gamification.ProjectCompleted{ProjectID: &projectID})
		if err != nil {
			log.Printf("UpdateProject: achievement check failed for project %s: %v", p.ID, err)
		}
	}

	return p, nil
}

func (s *ProjectService) DeleteProject(ctx context.Context, id uuid.UUID) error {
	cmd, err := s.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("project not found")
	}
	return nil
}

func (s *ProjectService) GetMembers(ctx context.Context, projectID uuid.UUID) ([]*project.Member, error) {
	rows, err := s.db.Query(ctx, `
	SELECT pm.project_id, pm.user_id, u.full_name, u.email, pm.added_at
	FROM project_members pm
	JOIN users u ON u.id = pm.user_id
	WHERE pm.project_id = $1
	ORDER BY pm.added_at
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch project members: %w", err)
	}
	defer rows.Close()

	members := []*project.Member{}
	for rows.Next() {
		m := &project.Member{}
		if err := rows.Scan(&m.ProjectID, &m.UserID, &m.FullName, &m.Email, &m.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// AddMember is idempotent on (project_id, user_id). A first-time add
// fires a project_assigned evaluation for the new member.
func (s *ProjectService) AddMember(ctx context.Context, projectID, userID uuid.UUID) error {
	cmd, err := s.db.Exec(ctx, `
	INSERT INTO project_members (project_id, user_id)
	VALUES ($1, $2)
	ON CONFLICT (project_id, user_id) DO NOTHING
	`, projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to add project member: %w", err)
	}

	if cmd.RowsAffected() == 1 {
		if _, err := s.gamification.CheckAchievements(ctx, userID, gamification.ProjectAssigned{}); err != nil {
			log.Printf("AddMember: achievement check failed for user %s: %v", userID, err)
		}
	}
	return nil
}

func (s *ProjectService) RemoveMember(ctx context.Context, projectID, userID uuid.UUID) error {
	cmd, err := s.db.Exec(ctx,
		`DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`, projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove project member: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("member not found")
	}
	return nil
}
