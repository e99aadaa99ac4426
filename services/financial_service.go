package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"oneFlowAPI/internal/financial"
	"oneFlowAPI/internal/gamification"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FinancialService struct {
	db           *pgxpool.Pool
	gamification *GamificationService
}

func NewFinancialService(db *pgxpool.Pool, gamification *GamificationService) *FinancialService {
	return &FinancialService{db: db, gamification: gamification}
}

// nextDocumentNumber builds numbers like INV-20260901-003: a prefix,
// today's date and a per-day counter padded to three digits.
func (s *FinancialService) nextDocumentNumber(ctx context.Context, table, column, prefix string) (string, error) {
	dateStr := time.Now().Format("20060102")
	pattern := fmt.Sprintf("%s-%s-%%", prefix, dateStr)
	var count int
	err := s.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s LIKE $1`, table, column),
		pattern).Scan(&count)
	if err != nil {
		return "", fmt.Errorf("failed to count %s numbers: %w", table, err)
	}
	return fmt.Sprintf("%s-%s-%03d", prefix, dateStr, count+1), nil
}

const invoiceColumns = `id, invoice_number, project_id, customer_name, total_amount, status, invoice_date, due_date, created_by, created_at`

func scanInvoice(row pgx.Row) (*financial.Invoice, error) {
	inv := &financial.Invoice{}
	err := row.Scan(
		&inv.ID,
		&inv.InvoiceNumber,
		&inv.ProjectID,
		&inv.CustomerName,
		&inv.TotalAmount,
		&inv.Status,
		&inv.InvoiceDate,
		&inv.DueDate,
		&inv.CreatedBy,
		&inv.CreatedAt,
	)
	return inv, err
}

// CreateInvoice generates the invoice number, inserts the row and fires
// an invoice_created evaluation for the creator.
func (s *FinancialService) CreateInvoice(ctx context.Context, createdBy uuid.UUID, req *financial.CreateInvoiceRequest) (*financial.Invoice, error) {
	if req.CustomerName == "" || req.TotalAmount <= 0 {
		return nil, fmt.Errorf("customerName and a positive totalAmount are required")
	}
	projectID, err := parseOptionalUUID(req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("invalid project id")
	}
	number, err := s.nextDocumentNumber(ctx, "customer_invoices", "invoice_number", "INV")
	if err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = financial.InvoiceStatusDraft
	}
	invoiceDate := time.Now()
	if req.InvoiceDate != nil {
		invoiceDate = *req.InvoiceDate
	}

	inv, err := scanInvoice(s.db.QueryRow(ctx, `
	INSERT INTO customer_invoices (invoice_number, project_id, customer_name, total_amount, status, invoice_date, due_date, created_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING `+invoiceColumns,
		number, projectID, req.CustomerName, req.TotalAmount, status, invoiceDate, req.DueDate, createdBy))
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	if _, err := s.gamification.CheckAchievements(ctx, createdBy, gamification.InvoiceCreated{}); err != nil {
		log.Printf("CreateInvoice: achievement check failed for user %s: %v", createdBy, err)
	}

	return inv, nil
}

func (s *FinancialService) GetInvoices(ctx context.Context, status string) ([]*financial.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM customer_invoices`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch invoices: %w", err)
	}
	defer rows.Close()

	invoices := []*financial.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (s *FinancialService) UpdateInvoiceStatus(ctx context.Context, id uuid.UUID, status string) (*financial.Invoice, error) {
	inv, err := scanInvoice(s.db.QueryRow(ctx, `
	UPDATE customer_invoices SET status = $1 WHERE id = $2
	RETURNING `+invoiceColumns, status, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invoice not found")
		}
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}
	return inv, nil
}

const billColumns = `id, bill_number, project_id, vendor_name, total_amount, status, bill_date, due_date, created_by, created_at`

func scanBill(row pgx.Row) (*financial.VendorBill, error) {
	b := &financial.VendorBill{}
	err := row.Scan(
		&b.ID,
		&b.BillNumber,
		&b.ProjectID,
		&b.VendorName,
		&b.TotalAmount,
		&b.Status,
		&b.BillDate,
		&b.DueDate,
		&b.CreatedBy,
		&b.CreatedAt,
	)
	return b, err
}

func (s *FinancialService) CreateVendorBill(ctx context.Context, createdBy uuid.UUID, req *financial.CreateVendorBillRequest) (*financial.VendorBill, error) {
	if req.VendorName == "" || req.TotalAmount <= 0 {
		return nil, fmt.Errorf("vendorName and a positive totalAmount are required")
	}
	projectID, err := parseOptionalUUID(req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("invalid project id")
	}
	number, err := s.nextDocumentNumber(ctx, "vendor_bills", "bill_number", "BILL")
	if err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = financial.BillStatusReceived
	}
	billDate := time.Now()
	if req.BillDate != nil {
		billDate = *req.BillDate
	}

	b, err := scanBill(s.db.QueryRow(ctx, `
	INSERT INTO vendor_bills (bill_number, project_id, vendor_name, total_amount, status, bill_date, due_date, created_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING `+billColumns,
		number, projectID, req.VendorName, req.TotalAmount, status, billDate, req.DueDate, createdBy))
	if err != nil {
		return nil, fmt.Errorf("failed to create vendor bill: %w", err)
	}
	return b, nil
}

func (s *FinancialService) GetVendorBills(ctx context.Context, status string) ([]*financial.VendorBill, error) {
	query := `SELECT ` + billColumns + ` FROM vendor_bills`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vendor bills: %w", err)
	}
	defer rows.Close()

	bills := []*financial.VendorBill{}
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vendor bill: %w", err)
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

const expenseColumns = `id, project_id, user_id, amount, category, description, status, approved_by, expense_date, created_at`

func scanExpense(row pgx.Row) (*financial.Expense, error) {
	e := &financial.Expense{}
	err := row.Scan(
		&e.ID,
		&e.ProjectID,
		&e.UserID,
		&e.Amount,
		&e.Category,
		&e.Description,
		&e.Status,
		&e.ApprovedBy,
		&e.ExpenseDate,
		&e.CreatedAt,
	)
	return e, err
}

func (s *FinancialService) CreateExpense(ctx context.Context, userID uuid.UUID, req *financial.CreateExpenseRequest) (*financial.Expense, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("a positive amount is required")
	}
	projectID, err := parseOptionalUUID(req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("invalid project id")
	}
	expenseDate := time.Now()
	if req.ExpenseDate != nil {
		expenseDate = *req.ExpenseDate
	}

	e, err := scanExpense(s.db.QueryRow(ctx, `
	INSERT INTO expenses (project_id, user_id, amount, category, description, status, expense_date)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING `+expenseColumns,
		projectID, userID, req.Amount, req.Category, req.Description, financial.ExpenseStatusPending, expenseDate))
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}
	return e, nil
}

func (s *FinancialService) GetExpenses(ctx context.Context, status string) ([]*financial.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch expenses: %w", err)
	}
	defer rows.Close()

	expenses := []*financial.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// ApproveExpense marks an expense Approved and fires expense_approved
// for the approver. Only pending expenses can be approved.
func (s *FinancialService) ApproveExpense(ctx context.Context, expenseID, approverID uuid.UUID) (*financial.Expense, error) {
	e, err := scanExpense(s.db.QueryRow(ctx, `
	UPDATE expenses
	SET status = $1, approved_by = $2
	WHERE id = $3 AND status = $4
	RETURNING `+expenseColumns,
		financial.ExpenseStatusApproved, approverID, expenseID, financial.ExpenseStatusPending))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("expense not found or not pending")
		}
		return nil, fmt.Errorf("failed to approve expense: %w", err)
	}

	if _, err := s.gamification.CheckAchievements(ctx, approverID, gamification.ExpenseApproved{}); err != nil {
		log.Printf("ApproveExpense: achievement check failed for user %s: %v", approverID, err)
	}

	return e, nil
}

func parseOptionalUUID(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
