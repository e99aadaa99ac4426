package services

import (
	"context"
	"errors"
	"fmt"

	"oneFlowAPI/internal/analytics"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AnalyticsService struct {
	db *pgxpool.Pool
}

func NewAnalyticsService(db *pgxpool.Pool) *AnalyticsService {
	return &AnalyticsService{db: db}
}

func (s *AnalyticsService) GetDashboardSummary(ctx context.Context) (*analytics.DashboardSummary, error) {
	summary := &analytics.DashboardSummary{}
	err := s.db.QueryRow(ctx, `
	SELECT
		(SELECT COUNT(*) FROM projects WHERE status = 'In Progress') AS active_projects,
		(SELECT COUNT(*) FROM projects WHERE status = 'Completed') AS completed_projects,
		(SELECT COUNT(*) FROM tasks WHERE status NOT IN ('Done', 'Cancelled')) AS open_tasks,
		(SELECT COUNT(*) FROM tasks WHERE status = 'Done') AS tasks_done,
		COALESCE((SELECT SUM(hours_worked) FROM timesheets
		          WHERE work_date >= DATE_TRUNC('month', CURRENT_DATE)), 0) AS hours_this_month,
		COALESCE((SELECT SUM(total_amount) FROM customer_invoices), 0) AS invoiced_total,
		COALESCE((SELECT SUM(total_amount) FROM customer_invoices WHERE status = 'Paid'), 0) AS paid_total,
		COALESCE((SELECT SUM(amount) FROM expenses WHERE status = 'Pending'), 0) AS pending_expenses
	`).Scan(
		&summary.ActiveProjects,
		&summary.CompletedProjects,
		&summary.OpenTasks,
		&summary.TasksDone,
		&summary.HoursThisMonth,
		&summary.InvoicedTotal,
		&summary.PaidTotal,
		&summary.PendingExpenses,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard summary: %w", err)
	}
	return summary, nil
}

// GetProjectFinancials exposes the same revenue/cost aggregation the
// Profit Maker badge rule evaluates, for dashboard display.
func (s *AnalyticsService) GetProjectFinancials(ctx context.Context, projectID uuid.UUID) (*analytics.ProjectFinancials, error) {
	fin := &analytics.ProjectFinancials{ProjectID: projectID}
	var budget *float64
	err := s.db.QueryRow(ctx, `
	SELECT p.budget,
	       COALESCE((SELECT SUM(total_amount) FROM customer_invoices WHERE project_id = p.id AND status = 'Paid'), 0) AS revenue,
	       COALESCE((SELECT SUM(total_amount) FROM vendor_bills WHERE project_id = p.id AND status = 'Paid'), 0)
	     + COALESCE((SELECT SUM(amount) FROM expenses WHERE project_id = p.id AND status = 'Approved'), 0) AS costs
	FROM projects p
	WHERE p.id = $1
	`, projectID).Scan(&budget, &fin.Revenue, &fin.Costs)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("project not found")
		}
		return nil, fmt.Errorf("failed to load project financials: %w", err)
	}

	if budget != nil {
		fin.Budget = *budget
	}
	fin.Profit = fin.Revenue - fin.Costs
	if fin.Budget > 0 {
		fin.MarginPct = fin.Profit / fin.Budget * 100
	}
	return fin, nil
}
