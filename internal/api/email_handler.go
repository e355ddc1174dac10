package api

import (
	"encoding/json"
	"log"
	"net/http"

	"apexparking/internal/entities"
	httperr "apexparking/internal/errors"
	"apexparking/internal/service"
)

// EmailBookingHandler receives parsed partner emails from the forwarding
// service (Zapier, Mailparser and the like). The bearer check is optional:
// with no secret configured the endpoint is open, matching how the forwarder
// is usually set up first and secured later.
type EmailBookingHandler struct {
	Service       *service.ReservationService
	WebhookSecret string
}

func NewEmailBookingHandler(svc *service.ReservationService, webhookSecret string) *EmailBookingHandler {
	return &EmailBookingHandler{Service: svc, WebhookSecret: webhookSecret}
}

func (h *EmailBookingHandler) HandleEmailBooking(w http.ResponseWriter, r *http.Request) {
	if h.WebhookSecret != "" {
		if r.Header.Get("Authorization") != "Bearer "+h.WebhookSecret {
			writeError(w, httperr.ErrUnauthorized("Unauthorized"))
			return
		}
	}

	var req entities.EmailBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, httperr.ErrBadRequest("Invalid request"))
		return
	}
	if req.CustomerName == "" {
		writeError(w, httperr.ErrBadRequest("Missing required field: customer_name"))
		return
	}
	if req.Phone == "" {
		writeError(w, httperr.ErrBadRequest("Missing required field: phone"))
		return
	}
	if req.CheckIn == "" {
		writeError(w, httperr.ErrBadRequest("Missing required field: check_in"))
		return
	}

	resp, err := h.Service.IngestEmailBooking(&req)
	if err != nil {
		log.Printf("Email booking error: %v", err)
		http.Error(w, "Could not save booking", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
