package entities

import "time"

type AdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AdminLoginResponse struct {
	Token string `json:"token"`
}

// ReservationListItem is the admin view of one day-row.
type ReservationListItem struct {
	ID               int       `json:"id"`
	ConfirmationCode string    `json:"confirmation_code"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Phone            string    `json:"phone"`
	Email            string    `json:"email,omitempty"`
	DOTNumber        string    `json:"dot_number"`
	TruckInfo        string    `json:"truck_info,omitempty"`
	ParkingDate      string    `json:"parking_date"`
	Amount           int64     `json:"amount"`
	Status           string    `json:"status"`
	StripePaymentID  string    `json:"stripe_payment_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
