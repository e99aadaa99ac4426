package handlers

import (
	"context"
	"net/http"
	"time"

	"oneFlowAPI/services"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

func (h *AnalyticsHandler) GetDashboardSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	summary, err := h.analyticsService.GetDashboardSummary(ctx)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch dashboard summary")
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

func (h *AnalyticsHandler) GetProjectFinancials(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	projectID, err := uuid.Parse(mux.Vars(r)["projectId"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid project id")
		return
	}

	financials, err := h.analyticsService.GetProjectFinancials(ctx, projectID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, financials)
}
