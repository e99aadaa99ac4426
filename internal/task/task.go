package task

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusNew        = "New"
	StatusInProgress = "In Progress"
	StatusDone       = "Done"
	StatusCancelled  = "Cancelled"
)

type Task struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	ProjectID      uuid.UUID  `json:"project_id" db:"project_id"`
	Title          string     `json:"title" db:"title"`
	Description    *string    `json:"description" db:"description"`
	AssignedTo     *uuid.UUID `json:"assigned_to" db:"assigned_to"`
	Status         string     `json:"status" db:"status"`
	Priority       string     `json:"priority" db:"priority"`
	DueDate        *time.Time `json:"due_date" db:"due_date"`
	EstimatedHours *float64   `json:"estimated_hours" db:"estimated_hours"`
	CreatedBy      *uuid.UUID `json:"created_by" db:"created_by"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

type CreateTaskRequest struct {
	ProjectID      string     `json:"projectId"`
	Title          string     `json:"title"`
	Description    *string    `json:"description"`
	AssignedTo     *string    `json:"assignedTo"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority"`
	DueDate        *time.Time `json:"dueDate"`
	EstimatedHours *float64   `json:"estimatedHours"`
}

type UpdateTaskRequest struct {
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	AssignedTo     *string    `json:"assignedTo"`
	Status         *string    `json:"status"`
	Priority       *string    `json:"priority"`
	DueDate        *time.Time `json:"dueDate"`
	EstimatedHours *float64   `json:"estimatedHours"`
}

type ListFilter struct {
	ProjectID  *uuid.UUID
	AssignedTo *uuid.UUID
	Status     string
	Priority   string
}
