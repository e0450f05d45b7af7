package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/rotation-scheduler/internal/application"
)

type slotService interface {
	AvailableSlots(ctx context.Context, tenantID string, query application.SlotQuery) ([]application.SlotOption, error)
	FillSlot(ctx context.Context, params application.FillSlotParams) (application.Slot, error)
}

type SlotHandler struct {
	service   slotService
	responder responder
	logger    *slog.Logger
}

func NewSlotHandler(service slotService, logger *slog.Logger) *SlotHandler {
	return &SlotHandler{service: service, responder: newResponder(logger), logger: defaultLogger(logger)}
}

// List serves the slot selection/search view. Query parameters: `search` for
// free text, `date` for an exact DD-MM-YY day; without either the default
// rolling window applies.
func (h *SlotHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	tenantID := strings.TrimSpace(chi.URLParam(r, "tenantID"))
	if tenantID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingTenant)
		return
	}

	query := application.SlotQuery{
		Search:     r.URL.Query().Get("search"),
		ManualDate: r.URL.Query().Get("date"),
	}

	options, err := h.service.AvailableSlots(r.Context(), tenantID, query)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	payload := slotListResponse{Slots: make([]slotOptionPayload, 0, len(options))}
	for _, option := range options {
		payload.Slots = append(payload.Slots, toSlotOptionPayload(option))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, payload)
}

// Fill attaches details to an existing slot addressed by its formatted label.
func (h *SlotHandler) Fill(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	tenantID := strings.TrimSpace(chi.URLParam(r, "tenantID"))
	if tenantID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingTenant)
		return
	}

	var req fillSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	slot, err := h.service.FillSlot(r.Context(), application.FillSlotParams{
		TenantID:   tenantID,
		SlotLabel:  req.SlotLabel,
		Details:    req.Details,
		AuthorID:   req.AuthorID,
		AuthorName: req.AuthorName,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger := handlerLogger(r.Context(), h.logger, "slots", "fill", "tenant_id", tenantID)
	logger.InfoContext(r.Context(), "slot filled", "slot_label", req.SlotLabel)

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toSlotPayload(slot))
}

type fillSlotRequest struct {
	SlotLabel  string `json:"slot_label"`
	Details    string `json:"details"`
	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name"`
}

type slotListResponse struct {
	Slots []slotOptionPayload `json:"slots"`
}

type slotOptionPayload struct {
	Display string      `json:"display"`
	Slot    slotPayload `json:"slot"`
}

type slotPayload struct {
	ID         string `json:"id"`
	TenantID   string `json:"tenant_id"`
	Date       string `json:"date"`
	Kind       string `json:"kind"`
	Label      string `json:"label"`
	AuthorID   string `json:"author_id,omitempty"`
	AuthorName string `json:"author_name,omitempty"`
}

func toSlotOptionPayload(option application.SlotOption) slotOptionPayload {
	return slotOptionPayload{
		Display: option.Display,
		Slot:    toSlotPayload(option.Slot),
	}
}

func toSlotPayload(slot application.Slot) slotPayload {
	return slotPayload{
		ID:         slot.ID,
		TenantID:   slot.TenantID,
		Date:       slot.Date.Format(time.DateOnly),
		Kind:       string(slot.Kind),
		Label:      slot.Label,
		AuthorID:   slot.AuthorID,
		AuthorName: slot.AuthorName,
	}
}
