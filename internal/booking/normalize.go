package booking

import (
	"database/sql"
	"math/rand"
	"strings"
	"time"

	"apexparking/internal/db"
)

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateCode produces a human-shareable confirmation code like "APX-K3M9QZ".
func GenerateCode(prefix string) string {
	buf := make([]byte, 6)
	for i := range buf {
		buf[i] = codeCharset[rand.Intn(len(codeCharset))]
	}
	return prefix + string(buf)
}

// SplitFullName splits on the first whitespace boundary: first token becomes
// the first name, the rest joined becomes the last name (empty if only one
// token was given).
func SplitFullName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "Guest", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// ApportionCents splits a total of minor currency units across n days so the
// per-day amounts sum back to the total exactly: each of the first n-1 days
// gets floor(total/n) and the last day absorbs the remainder.
func ApportionCents(total int64, n int) []int64 {
	if n <= 0 {
		return nil
	}
	per := total / int64(n)
	amounts := make([]int64, n)
	for i := range amounts {
		amounts[i] = per
	}
	amounts[n-1] = total - per*int64(n-1)
	return amounts
}

// Details carries everything shared by the day-rows of one logical booking.
type Details struct {
	ConfirmationCode string
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	MCNumber         string
	DOTNumber        string
	TruckInfo        string
	Status           string
	StripePaymentID  string
	TotalAmount      int64 // cents across the whole stay
}

// DayRows expands one booking into one Reservation per parking day. Rows
// share identity and payment linkage and differ only in date and per-day
// amount.
func DayRows(d Details, dates []string) []db.Reservation {
	amounts := ApportionCents(d.TotalAmount, len(dates))
	now := time.Now().UTC()

	rows := make([]db.Reservation, len(dates))
	for i, date := range dates {
		rows[i] = db.Reservation{
			ConfirmationCode: d.ConfirmationCode,
			FirstName:        d.FirstName,
			LastName:         d.LastName,
			Email:            nullString(d.Email),
			Phone:            d.Phone,
			MCNumber:         nullString(d.MCNumber),
			DOTNumber:        d.DOTNumber,
			TruckInfo:        nullString(d.TruckInfo),
			ParkingDate:      date,
			ParkingType:      db.ParkingTypeDaily,
			Amount:           amounts[i],
			Status:           d.Status,
			StripePaymentID:  nullString(d.StripePaymentID),
			CreatedAt:        now,
		}
	}
	return rows
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
