package gamification

import "github.com/google/uuid"

// Action tags accepted on the check-achievements endpoint.
const (
	ActionTaskCompleted    = "task_completed"
	ActionHoursLogged      = "hours_logged"
	ActionProjectAssigned  = "project_assigned"
	ActionProjectCompleted = "project_completed"
	ActionExpenseApproved  = "expense_approved"
	ActionInvoiceCreated   = "invoice_created"
)

// Event is a domain action that may unlock badges. Each variant carries
// only the metadata its rules read; optional fields are pointers and a
// nil field just skips the rules that need it.
type Event interface {
	isEvent()
}

type TaskCompleted struct{}

type HoursLogged struct {
	Hour  *int     // local hour of day the work was logged at
	Hours *float64 // decimal hours worked in this event
}

type ProjectAssigned struct{}

type ProjectCompleted struct {
	ProjectID *uuid.UUID
}

type ExpenseApproved struct{}

type InvoiceCreated struct{}

func (TaskCompleted) isEvent()    {}
func (HoursLogged) isEvent()      {}
func (ProjectAssigned) isEvent()  {}
func (ProjectCompleted) isEvent() {}
func (ExpenseApproved) isEvent()  {}
func (InvoiceCreated) isEvent()   {}

// ParseEvent turns the wire-level action tag and metadata bag into a
// typed event. Unknown actions return nil, which the evaluator treats
// as a no-op rather than an error. Malformed metadata fields are
// dropped, not rejected.
func ParseEvent(action string, metadata map[string]any) Event {
	switch action {
	case ActionTaskCompleted:
		return TaskCompleted{}
	case ActionHoursLogged:
		ev := HoursLogged{}
		if v, ok := metadata["hour"].(float64); ok {
			hour := int(v)
			ev.Hour = &hour
		}
		if v, ok := metadata["hours"].(float64); ok {
			ev.Hours = &v
		}
		return ev
	case ActionProjectAssigned:
		return ProjectAssigned{}
	case ActionProjectCompleted:
		ev := ProjectCompleted{}
		if v, ok := metadata["projectId"].(string); ok {
			if id, err := uuid.Parse(v); err == nil {
				ev.ProjectID = &id
			}
		}
		return ev
	case ActionExpenseApproved:
		return ExpenseApproved{}
	case ActionInvoiceCreated:
		return InvoiceCreated{}
	default:
		return nil
	}
}
