package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/rotation-scheduler/internal/application"
)

type maintenanceService interface {
	EnsureCoverage(ctx context.Context, tenantID string, pastWeeks, futureWeeks int) (application.CoverageResult, error)
}

// MaintenanceHandler exposes the manual coverage trigger. It runs the same
// idempotent body as the periodic trigger, so repeated calls are harmless.
type MaintenanceHandler struct {
	service   maintenanceService
	responder responder
	logger    *slog.Logger
}

func NewMaintenanceHandler(service maintenanceService, logger *slog.Logger) *MaintenanceHandler {
	return &MaintenanceHandler{service: service, responder: newResponder(logger), logger: defaultLogger(logger)}
}

func (h *MaintenanceHandler) Run(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	tenantID := strings.TrimSpace(chi.URLParam(r, "tenantID"))
	if tenantID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingTenant)
		return
	}

	pastWeeks, err := weeksParam(r, "past_weeks")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}
	futureWeeks, err := weeksParam(r, "future_weeks")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	result, err := h.service.EnsureCoverage(r.Context(), tenantID, pastWeeks, futureWeeks)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger := handlerLogger(r.Context(), h.logger, "maintenance", "run", "tenant_id", tenantID)
	logger.InfoContext(r.Context(), "manual coverage pass finished", "created", result.Created, "skipped", result.Skipped)

	payload := coverageResponse{
		Created: result.Created,
		Skipped: result.Skipped,
		Total:   result.Total,
	}
	for _, date := range result.TouchedDates {
		payload.TouchedDates = append(payload.TouchedDates, date.Format(time.DateOnly))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, payload)
}

// weeksParam reads an optional week-count override from the query string.
// Absent means "use the configured window"; range checks belong to the
// service.
func weeksParam(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	weeks, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return weeks, nil
}

type coverageResponse struct {
	Created      int      `json:"created"`
	Skipped      int      `json:"skipped"`
	Total        int      `json:"total"`
	TouchedDates []string `json:"touched_dates,omitempty"`
}
