// Package handlers contains the HTTP endpoints of the booking API.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/intake"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/scheduling"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/tenancy"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/pkg/logging"
)

// WebhookHandler receives inbound chat messages from the messaging bridge
// and feeds them to the booking flow.
type WebhookHandler struct {
	intake *intake.Service
	logger *logging.Logger
}

// NewWebhookHandler creates the inbound message endpoint.
func NewWebhookHandler(svc *intake.Service, logger *logging.Logger) *WebhookHandler {
	if svc == nil {
		panic("handlers: intake service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookHandler{intake: svc, logger: logger}
}

// webhookRequest is the bridge's message envelope. Catalog and profile
// parameters are optional; the flow falls back to its defaults.
type webhookRequest struct {
	TenantID        string   `json:"tenant_id"`
	ProfileID       string   `json:"profile_id"`
	Phone           string   `json:"phone"`
	Text            string   `json:"text"`
	ServiceCatalog  []string `json:"service_catalog,omitempty"`
	DurationMinutes int      `json:"duration_minutes,omitempty"`
	BufferMinutes   int      `json:"buffer_minutes,omitempty"`
}

type webhookResponse struct {
	Handled        bool                `json:"handled"`
	Reply          string              `json:"reply,omitempty"`
	SuggestedSlots []intake.StoredSlot `json:"suggested_slots,omitempty"`
}

// HandleMessage processes POST /webhook/message.
func (h *WebhookHandler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.TenantID == "" || req.Phone == "" || req.Text == "" {
		http.Error(w, "tenant_id, phone and text are required", http.StatusBadRequest)
		return
	}

	ctx := tenancy.WithTenantID(r.Context(), req.TenantID)
	if req.ProfileID != "" {
		ctx = tenancy.WithProfileID(ctx, req.ProfileID)
	}

	out, err := h.intake.Handle(ctx, intake.Inbound{
		TenantID:       req.TenantID,
		ProfileID:      req.ProfileID,
		Phone:          req.Phone,
		Text:           req.Text,
		ServiceCatalog: req.ServiceCatalog,
		Profile: intake.ProfileConfig{
			ServiceDurationMinutes: req.DurationMinutes,
			BufferMinutes:          req.BufferMinutes,
		},
	})
	if err != nil {
		if scheduling.IsPersistence(err) {
			// The external event exists without a tracked record; alert loud.
			h.logger.Error("booking persisted externally but not locally",
				"tenant_id", req.TenantID,
				"phone", req.Phone,
				"error", err,
			)
			http.Error(w, "booking could not be recorded", http.StatusInternalServerError)
			return
		}
		if scheduling.IsValidation(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("message handling failed", "tenant_id", req.TenantID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(webhookResponse{
		Handled:        out.Handled,
		Reply:          out.Reply,
		SuggestedSlots: out.SuggestedSlots,
	}); err != nil {
		h.logger.Error("response encoding failed", "error", err)
	}
}
