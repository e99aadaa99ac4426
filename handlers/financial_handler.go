package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"oneFlowAPI/internal/financial"
	"oneFlowAPI/services"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type FinancialHandler struct {
	financialService *services.FinancialService
}

func NewFinancialHandler(financialService *services.FinancialService) *FinancialHandler {
	return &FinancialHandler{
		financialService: financialService,
	}
}

func (h *FinancialHandler) GetInvoices(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	invoices, err := h.financialService.GetInvoices(ctx, r.URL.Query().Get("status"))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch invoices")
		return
	}

	respondWithJSON(w, http.StatusOK, invoices)
}

func (h *FinancialHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := authenticatedUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req financial.CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	inv, err := h.financialService.CreateInvoice(ctx, userID, &req)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, inv)
}

func (h *FinancialHandler) UpdateInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid invoice id")
		return
	}

	var req financial.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	inv, err := h.financialService.UpdateInvoiceStatus(ctx, id, req.Status)
	if err != nil {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, inv)
}

func (h *FinancialHandler) GetVendorBills(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	bills, err := h.financialService.GetVendorBills(ctx, r.URL.Query().Get("status"))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch vendor bills")
		return
	}

	respondWithJSON(w, http.StatusOK, bills)
}

func (h *FinancialHandler) CreateVendorBill(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := authenticatedUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req financial.CreateVendorBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	bill, err := h.financialService.CreateVendorBill(ctx, userID, &req)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, bill)
}

func (h *FinancialHandler) GetExpenses(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	expenses, err := h.financialService.GetExpenses(ctx, r.URL.Query().Get("status"))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch expenses")
		return
	}

	respondWithJSON(w, http.StatusOK, expenses)
}

func (h *FinancialHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := authenticatedUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req financial.CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	expense, err := h.financialService.CreateExpense(ctx, userID, &req)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, expense)
}

func (h *FinancialHandler) ApproveExpense(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	approverID, ok := authenticatedUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	expenseID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid expense id")
		return
	}

	expense, err := h.financialService.ApproveExpense(ctx, expenseID, approverID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, expense)
}
