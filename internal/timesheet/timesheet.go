package timesheet

import (
	"time"

	"github.com/google/uuid"
)

type Timesheet struct {
	ID          uuid.UUID `json:"id" db:"id"`
	TaskID      uuid.UUID `json:"task_id" db:"task_id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	HoursWorked float64   `json:"hours_worked" db:"hours_worked"`
	WorkDate    time.Time `json:"work_date" db:"work_date"`
	Description *string   `json:"description" db:"description"`
	IsBillable  bool      `json:"is_billable" db:"is_billable"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type LogHoursRequest struct {
	TaskID      string     `json:"taskId"`
	HoursWorked float64    `json:"hoursWorked"`
	WorkDate    *time.Time `json:"workDate"`
	Description *string    `json:"description"`
	IsBillable  *bool      `json:"isBillable"`
}
