package analytics

import "github.com/google/uuid"

type DashboardSummary struct {
	ActiveProjects    int     `json:"active_projects" db:"active_projects"`
	CompletedProjects int     `json:"completed_projects" db:"completed_projects"`
	OpenTasks         int     `json:"open_tasks" db:"open_tasks"`
	TasksDone         int     `json:"tasks_done" db:"tasks_done"`
	HoursThisMonth    float64 `json:"hours_this_month" db:"hours_this_month"`
	InvoicedTotal     float64 `json:"invoiced_total" db:"invoiced_total"`
	PaidTotal         float64 `json:"paid_total" db:"paid_total"`
	PendingExpenses   float64 `json:"pending_expenses" db:"pending_expenses"`
}

type ProjectFinancials struct {
	ProjectID uuid.UUID `json:"project_id" db:"project_id"`
	Budget    float64   `json:"budget" db:"budget"`
	Revenue   float64   `json:"revenue" db:"revenue"`
	Costs     float64   `json:"costs" db:"costs"`
	Profit    float64   `json:"profit" db:"profit"`
	MarginPct float64   `json:"margin_pct" db:"margin_pct"`
}
