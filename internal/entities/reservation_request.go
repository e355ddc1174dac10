package entities

// CreateReservationRequest is the web-checkout payload. TotalAmount is in
// cents, matching what the Stripe front-end collects.
type CreateReservationRequest struct {
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	MCNumber    string   `json:"mc_number"`
	DOTNumber   string   `json:"dot_number"`
	TruckInfo   string   `json:"truck_info"`
	Dates       []string `json:"dates"`
	TotalAmount int64    `json:"total_amount"`
}

type CreateReservationResponse struct {
	ClientSecret     string `json:"client_secret"`
	ConfirmationCode string `json:"confirmation_code"`
}

// ExtendStayRequest adds days to an existing confirmed booking. Amount is the
// total for the added days, in cents.
type ExtendStayRequest struct {
	ConfirmationCode string `json:"confirmation_code"`
	Phone            string `json:"phone"`
	AdditionalDays   int    `json:"additional_days"`
	Amount           int64  `json:"amount"`
}

type ExtendStayResponse struct {
	Success      bool     `json:"success"`
	ClientSecret string   `json:"client_secret"`
	NewDates     []string `json:"new_dates"`
	NewCheckout  string   `json:"new_checkout"`
}

// EmailBookingRequest is what the email-forwarding service posts after
// parsing a partner email. AmountPaid arrives in dollars from the parser, so
// it is the one place a float crosses the boundary; it is converted to cents
// immediately.
type EmailBookingRequest struct {
	Source             string  `json:"source"`
	BookingType        string  `json:"booking_type"`
	CustomerName       string  `json:"customer_name"`
	Phone              string  `json:"phone"`
	Email              string  `json:"email"`
	CheckIn            string  `json:"check_in"`
	CheckOut           string  `json:"check_out"`
	Nights             int     `json:"nights"`
	VehicleType        string  `json:"vehicle_type"`
	DOTNumber          string  `json:"dot_number"`
	MCNumber           string  `json:"mc_number"`
	AmountPaid         float64 `json:"amount_paid"`
	ConfirmationNumber string  `json:"confirmation_number"`
}

type EmailBookingResponse struct {
	Success          bool     `json:"success"`
	Message          string   `json:"message"`
	ConfirmationCode string   `json:"confirmation_code"`
	Dates            []string `json:"dates,omitempty"`
	Customer         string   `json:"customer,omitempty"`
}
