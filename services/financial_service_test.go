package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"oneFlowAPI/internal/financial"
	"oneFlowAPI/tests/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceNumbersIncrementPerDay(t *testing.T) {
	pool, cleanup := helpers.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	svc := NewFinancialService(pool, NewGamificationService(pool))
	userID := helpers.CreateTestUser(t, pool, "billing@example.com")

	first, err := svc.CreateInvoice(ctx, userID, &financial.CreateInvoiceRequest{
		CustomerName: "ACME",
		TotalAmount:  1200,
	})
	require.NoError(t, err)

	second, err := svc.CreateInvoice(ctx, userID, &financial.CreateInvoiceRequest{
		CustomerName: "Globex",
		TotalAmount:  800,
	})
	require.NoError(t, err)

	dateStr := time.Now().Format("20060102")
	assert.Equal(t, fmt.Sprintf("INV-%s-001", dateStr), first.InvoiceNumber)
	assert.Equal(t, fmt.Sprintf("INV-%s-002", dateStr), second.InvoiceNumber)
	assert.Equal(t, financial.InvoiceStatusDraft, first.Status)
}

func TestCreateInvoiceValidation(t *testing.T) {
	pool, cleanup := helpers.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	svc := NewFinancialService(pool, NewGamificationService(pool))
	userID := helpers.CreateTestUser(t, pool, "billing2@example.com")

	_, err := svc.CreateInvoice(ctx, userID, &financial.CreateInvoiceRequest{TotalAmount: 100})
	assert.Error(t, err)

	_, err = svc.CreateInvoice(ctx, userID, &financial.CreateInvoiceRequest{CustomerName: "ACME", TotalAmount: -5})
	assert.Error(t, err)
}

func TestVendorBillNumbersUseBillPrefix(t *testing.T) {
	pool, cleanup := helpers.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	svc := NewFinancialService(pool, NewGamificationService(pool))
	userID := helpers.CreateTestUser(t, pool, "ap@example.com")

	bill, err := svc.CreateVendorBill(ctx, userID, &financial.CreateVendorBillRequest{
		VendorName:  "Initech",
		TotalAmount: 430,
	})
	require.NoError(t, err)

	dateStr := time.Now().Format("20060102")
	assert.Equal(t, fmt.Sprintf("BILL-%s-001", dateStr), bill.BillNumber)
}

func TestApproveExpenseIsPendingOnly(t *testing.T) {
	pool, cleanup := helpers.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	svc := NewFinancialService(pool, NewGamificationService(pool))
	userID := helpers.CreateTestUser(t, pool, "emp@example.com")
	approverID := helpers.CreateTestUser(t, pool, "mgr@example.com")

	desc := "Taxi"
	expense, err := svc.CreateExpense(ctx, userID, &financial.CreateExpenseRequest{
		Amount:      42,
		Description: &desc,
	})
	require.NoError(t, err)
	assert.Equal(t, financial.ExpenseStatusPending, expense.Status)

	approved, err := svc.ApproveExpense(ctx, expense.ID, approverID)
	require.NoError(t, err)
	assert.Equal(t, financial.ExpenseStatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, approverID, *approved.ApprovedBy)

	// a second approval finds nothing pending
	_, err = svc.ApproveExpense(ctx, expense.ID, approverID)
	assert.Error(t, err)
}
