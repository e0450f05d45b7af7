package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/rotation-scheduler/internal/application"
)

type summaryService interface {
	BuildSummary(ctx context.Context, tenantID string) (application.SummaryDocument, error)
}

// SummaryHandler serves the assembled summary document. Publishing to the
// external destination is the caller's concern; this endpoint only builds.
type SummaryHandler struct {
	service   summaryService
	responder responder
}

func NewSummaryHandler(service summaryService, logger *slog.Logger) *SummaryHandler {
	return &SummaryHandler{service: service, responder: newResponder(logger)}
}

func (h *SummaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	tenantID := strings.TrimSpace(chi.URLParam(r, "tenantID"))
	if tenantID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingTenant)
		return
	}

	document, err := h.service.BuildSummary(r.Context(), tenantID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toSummaryPayload(document))
}

type summaryResponse struct {
	TenantID    string        `json:"tenant_id"`
	Title       string        `json:"title"`
	GeneratedAt time.Time     `json:"generated_at"`
	Editors     []string      `json:"editors,omitempty"`
	Instructors []string      `json:"instructors,omitempty"`
	Weeks       []weekPayload `json:"weeks"`
	Partial     bool          `json:"partial"`
}

type weekPayload struct {
	ISOYear int            `json:"iso_year"`
	ISOWeek int            `json:"iso_week"`
	Start   string         `json:"start"`
	Current bool           `json:"current"`
	Entries []entryPayload `json:"entries"`
}

type entryPayload struct {
	Label         string      `json:"label"`
	BriefingTitle string      `json:"briefing_title,omitempty"`
	Slot          slotPayload `json:"slot"`
}

func toSummaryPayload(document application.SummaryDocument) summaryResponse {
	payload := summaryResponse{
		TenantID:    document.TenantID,
		Title:       document.Title,
		GeneratedAt: document.GeneratedAt,
		Editors:     document.Editors,
		Instructors: document.Instructors,
		Weeks:       make([]weekPayload, 0, len(document.Weeks)),
		Partial:     document.Partial,
	}
	for _, week := range document.Weeks {
		wp := weekPayload{
			ISOYear: week.ISOYear,
			ISOWeek: week.ISOWeek,
			Start:   week.Start.Format(time.DateOnly),
			Current: week.Current,
			Entries: make([]entryPayload, 0, len(week.Entries)),
		}
		for _, entry := range week.Entries {
			wp.Entries = append(wp.Entries, entryPayload{
				Label:         entry.Label,
				BriefingTitle: entry.BriefingTitle,
				Slot:          toSlotPayload(entry.Slot),
			})
		}
		payload.Weeks = append(payload.Weeks, wp)
	}
	return payload
}
