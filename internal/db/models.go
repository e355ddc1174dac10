package db

import (
	"database/sql"
	"time"
)

// Reservation statuses. A row only ever moves pending -> confirmed or
// pending -> failed; partner-ingested rows are inserted confirmed.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusFailed    = "failed"
)

// ParkingTypeDaily is the only parking type sold today.
const ParkingTypeDaily = "daily"

// Reservation is one day-row: a single calendar day of occupancy. All rows of
// one logical booking share ConfirmationCode, party fields and payment id;
// they differ only in ParkingDate and possibly Amount.
type Reservation struct {
	ID               int
	ConfirmationCode string
	FirstName        string
	LastName         string
	Email            sql.NullString
	Phone            string
	MCNumber         sql.NullString
	DOTNumber        string
	TruckInfo        sql.NullString
	ParkingDate      string // YYYY-MM-DD, no time component
	ParkingType      string
	Amount           int64 // cents for this day
	Status           string
	StripePaymentID  sql.NullString
	ReminderSentAt   sql.NullTime
	FollowupSentAt   sql.NullTime
	CreatedAt        time.Time
}

// Admin is a back-office user allowed to list reservations.
type Admin struct {
	ID           int
	Email        string
	PasswordHash string
}
