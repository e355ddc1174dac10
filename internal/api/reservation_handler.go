package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"apexparking/internal/booking"
	"apexparking/internal/entities"
	httperr "apexparking/internal/errors"
	"apexparking/internal/service"
)

type ReservationHandler struct {
	Service *service.ReservationService
}

func NewReservationHandler(svc *service.ReservationService) *ReservationHandler {
	return &ReservationHandler{Service: svc}
}

// CheckAvailability returns the advisory spot count for one date; defaults to
// today when no date is given.
func (h *ReservationHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format(booking.DateLayout)
	}
	if _, err := time.Parse(booking.DateLayout, date); err != nil {
		writeError(w, httperr.ErrBadRequest("Invalid date"))
		return
	}

	resp, err := h.Service.Availability(date)
	if err != nil {
		log.Printf("Error checking availability: %v", err)
		http.Error(w, "Error checking availability", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ReservationHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req entities.CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, httperr.ErrBadRequest("Invalid request"))
		return
	}
	if req.FirstName == "" || req.Phone == "" || req.DOTNumber == "" || len(req.Dates) == 0 {
		writeError(w, httperr.ErrBadRequest("Missing required fields"))
		return
	}
	for _, d := range req.Dates {
		if _, err := time.Parse(booking.DateLayout, d); err != nil {
			writeError(w, httperr.ErrBadRequest("Invalid date: "+d))
			return
		}
	}

	resp, err := h.Service.CreateReservation(&req)
	if err != nil {
		log.Printf("Error creating reservation: %v", err)
		http.Error(w, "Could not create reservation", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ReservationHandler) ExtendStay(w http.ResponseWriter, r *http.Request) {
	var req entities.ExtendStayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, httperr.ErrBadRequest("Invalid request"))
		return
	}
	if req.ConfirmationCode == "" || req.AdditionalDays <= 0 || req.Amount <= 0 {
		writeError(w, httperr.ErrBadRequest("Missing required fields"))
		return
	}

	resp, err := h.Service.ExtendStay(&req)
	if err != nil {
		log.Printf("Error extending stay %s: %v", req.ConfirmationCode, err)
		writeError(w, httperr.ErrNotFound("Reservation not found"))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
