package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/thiagopinheeir-tech/projetomensagem-sub000/internal/appointments"
	"github.com/thiagopinheeir-tech/projetomensagem-sub000/pkg/logging"
)

// AdminAppointmentsHandler exposes stored appointments for support and
// debugging, behind the admin JWT middleware.
type AdminAppointmentsHandler struct {
	store  *appointments.Store
	logger *logging.Logger
}

// NewAdminAppointmentsHandler creates the admin listing endpoint.
func NewAdminAppointmentsHandler(store *appointments.Store, logger *logging.Logger) *AdminAppointmentsHandler {
	if store == nil {
		panic("handlers: appointment store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminAppointmentsHandler{store: store, logger: logger}
}

type appointmentItem struct {
	ID              string `json:"id"`
	TenantID        string `json:"tenant_id"`
	ProfileID       string `json:"profile_id,omitempty"`
	Phone           string `json:"phone"`
	ClientName      string `json:"client_name"`
	Service         string `json:"service"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	Status          string `json:"status"`
	ExternalEventID string `json:"external_event_id,omitempty"`
	SchedulerType   string `json:"scheduler_type"`
}

type appointmentsListResponse struct {
	Appointments []appointmentItem `json:"appointments"`
	Total        int               `json:"total"`
}

// List handles GET /admin/appointments?tenant_id=&phone=&limit=.
func (h *AdminAppointmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID := r.URL.Query().Get("tenant_id")
	if tenantID == "" {
		http.Error(w, "tenant_id is required", http.StatusBadRequest)
		return
	}
	phone := r.URL.Query().Get("phone")
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			http.Error(w, "limit must be between 1 and 500", http.StatusBadRequest)
			return
		}
		limit = n
	}

	list, err := h.store.List(r.Context(), tenantID, phone, limit)
	if err != nil {
		h.logger.Error("appointment listing failed", "tenant_id", tenantID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	items := make([]appointmentItem, 0, len(list))
	for _, a := range list {
		item := appointmentItem{
			ID:            a.ID.String(),
			TenantID:      a.TenantID,
			ProfileID:     a.ProfileID,
			Phone:         a.Phone,
			ClientName:    a.ClientName,
			Service:       a.Service,
			StartTime:     a.StartTime.Format(time.RFC3339),
			EndTime:       a.EndTime.Format(time.RFC3339),
			Status:        string(a.Status),
			SchedulerType: string(a.SchedulerType),
		}
		if a.ExternalEventID != nil {
			item.ExternalEventID = *a.ExternalEventID
		}
		items = append(items, item)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(appointmentsListResponse{Appointments: items, Total: len(items)}); err != nil {
		h.logger.Error("response encoding failed", "error", err)
	}
}
