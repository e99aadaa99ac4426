package project

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPlanned    = "Planned"
	StatusInProgress = "In Progress"
	StatusOnHold     = "On Hold"
	StatusCompleted  = "Completed"
)

type Project struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	Name             string     `json:"name" db:"name"`
	Description      *string    `json:"description" db:"description"`
	Status           string     `json:"status" db:"status"`
	StartDate        *time.Time `json:"start_date" db:"start_date"`
	EndDate          *time.Time `json:"end_date" db:"end_date"`
	Budget           *float64   `json:"budget" db:"budget"`
	ProjectManagerID *uuid.UUID `json:"project_manager_id" db:"project_manager_id"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

type Member struct {
	ProjectID uuid.UUID `json:"project_id" db:"project_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	FullName  string    `json:"full_name" db:"full_name"`
	Email     string    `json:"email" db:"email"`
	AddedAt   time.Time `json:"added_at" db:"added_at"`
}

type CreateProjectRequest struct {
	Name             string     `json:"name"`
	Description      *string    `json:"description"`
	Status           string     `json:"status"`
	StartDate        *time.Time `json:"startDate"`
	EndDate          *time.Time `json:"endDate"`
	Budget           *float64   `json:"budget"`
	ProjectManagerID *string    `json:"projectManagerId"`
}

type UpdateProjectRequest struct {
	Name             *string    `json:"name"`
	Description      *string    `json:"description"`
	Status           *string    `json:"status"`
	StartDate        *time.Time `json:"startDate"`
	EndDate          *time.Time `json:"endDate"`
	Budget           *float64   `json:"budget"`
	ProjectManagerID *string    `json:"projectManagerId"`
}

type AddMemberRequest struct {
	UserID string `json:"userId"`
}
