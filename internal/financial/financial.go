package financial

import (
	"time"

	"github.com/google/uuid"
)

const (
	InvoiceStatusDraft   = "Draft"
	InvoiceStatusSent    = "Sent"
	InvoiceStatusPaid    = "Paid"
	InvoiceStatusOverdue = "Overdue"

	BillStatusReceived = "Received"
	BillStatusPaid     = "Paid"

	ExpenseStatusPending  = "Pending"
	ExpenseStatusApproved = "Approved"
	ExpenseStatusRejected = "Rejected"
)

type Invoice struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	InvoiceNumber string     `json:"invoice_number" db:"invoice_number"`
	ProjectID     *uuid.UUID `json:"project_id" db:"project_id"`
	CustomerName  string     `json:"customer_name" db:"customer_name"`
	TotalAmount   float64    `json:"total_amount" db:"total_amount"`
	Status        string     `json:"status" db:"status"`
	InvoiceDate   time.Time  `json:"invoice_date" db:"invoice_date"`
	DueDate       *time.Time `json:"due_date" db:"due_date"`
	CreatedBy     *uuid.UUID `json:"created_by" db:"created_by"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

type VendorBill struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	BillNumber  string     `json:"bill_number" db:"bill_number"`
	ProjectID   *uuid.UUID `json:"project_id" db:"project_id"`
	VendorName  string     `json:"vendor_name" db:"vendor_name"`
	TotalAmount float64    `json:"total_amount" db:"total_amount"`
	Status      string     `json:"status" db:"status"`
	BillDate    time.Time  `json:"bill_date" db:"bill_date"`
	DueDate     *time.Time `json:"due_date" db:"due_date"`
	CreatedBy   *uuid.UUID `json:"created_by" db:"created_by"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

type Expense struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	ProjectID   *uuid.UUID `json:"project_id" db:"project_id"`
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`
	Amount      float64    `json:"amount" db:"amount"`
	Category    *string    `json:"category" db:"category"`
	Description *string    `json:"description" db:"description"`
	Status      string     `json:"status" db:"status"`
	ApprovedBy  *uuid.UUID `json:"approved_by" db:"approved_by"`
	ExpenseDate time.Time  `json:"expense_date" db:"expense_date"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

type CreateInvoiceRequest struct {
	ProjectID    *string    `json:"projectId"`
	CustomerName string     `json:"customerName"`
	TotalAmount  float64    `json:"totalAmount"`
	Status       string     `json:"status"`
	InvoiceDate  *time.Time `json:"invoiceDate"`
	DueDate      *time.Time `json:"dueDate"`
}

type CreateVendorBillRequest struct {
	ProjectID   *string    `json:"projectId"`
	VendorName  string     `json:"vendorName"`
	TotalAmount float64    `json:"totalAmount"`
	Status      string     `json:"status"`
	BillDate    *time.Time `json:"billDate"`
	DueDate     *time.Time `json:"dueDate"`
}

type CreateExpenseRequest struct {
	ProjectID   *string    `json:"projectId"`
	Amount      float64    `json:"amount"`
	Category    *string    `json:"category"`
	Description *string    `json:"description"`
	ExpenseDate *time.Time `json:"expenseDate"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}
