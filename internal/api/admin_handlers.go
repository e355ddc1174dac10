package api

import (
	"encoding/json"
	"log"
	"net/http"

	"apexparking/internal/entities"
	httperr "apexparking/internal/errors"
	"apexparking/internal/service"
)

type AdminHandler struct {
	Service *service.ReservationService
	Auth    service.AdminAuthService
}

func NewAdminHandler(svc *service.ReservationService, authSvc service.AdminAuthService) *AdminHandler {
	return &AdminHandler{Service: svc, Auth: authSvc}
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req entities.AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, httperr.ErrBadRequest("Invalid request"))
		return
	}
	token, err := h.Auth.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, httperr.ErrUnauthorized("Invalid credentials"))
		return
	}
	writeJSON(w, http.StatusOK, entities.AdminLoginResponse{Token: token})
}

// ListReservations filters by optional date and status query params.
func (h *AdminHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	status := r.URL.Query().Get("status")

	items, err := h.Service.Repo.ListReservations(date, status)
	if err != nil {
		log.Printf("Error listing reservations: %v", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
