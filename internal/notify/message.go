package notify

import (
	"fmt"
	"strings"
	"time"
)

// MessageParams feeds the per-kind message builders. Everything is plain data
// so the builders stay pure; kind-specific fields are only read by their kind.
type MessageParams struct {
	FirstName        string
	Dates            []string // YYYY-MM-DD day keys
	AmountCents      int64
	ConfirmationCode string

	Address  string
	GateCode string
	LotPhone string

	ExtendURL string // expiration-reminder
	ReviewURL string // post-stay-thank-you
}

// ConfirmationMessage is sent once payment is captured (or a partner booking
// with a reachable phone is ingested).
func ConfirmationMessage(p MessageParams) string {
	return fmt.Sprintf(`Apex Truck Parking - Confirmed!

Hi %s, your daily parking is reserved.

📍 %s

📅 %s
💰 $%s paid

🔐 Gate Code: %s

Conf#: %s

Questions? %s`,
		p.FirstName, p.Address, FormatDateList(p.Dates), FormatAmount(p.AmountCents),
		p.GateCode, p.ConfirmationCode, p.LotPhone)
}

// ExtensionMessage confirms added days under an existing confirmation code.
func ExtensionMessage(p MessageParams) string {
	return fmt.Sprintf(`Apex Truck Parking - Extended!

Hi %s, your stay has been extended.

📅 Added: %s
💰 $%s paid

New checkout: %s at noon

Conf#: %s

Thanks for staying with us!`,
		p.FirstName, FormatDateList(p.Dates), FormatAmount(p.AmountCents),
		formatLongDate(lastDate(p.Dates)), p.ConfirmationCode)
}

// ReminderMessage nudges a parker whose stay expires at noon today.
func ReminderMessage(p MessageParams) string {
	return fmt.Sprintf(`Hi %s! Your parking at Apex Truck Parking expires today at noon.

Need more time? Extend your stay here:
%s

Or call us: %s

Thanks for parking with us!`,
		p.FirstName, p.ExtendURL, p.LotPhone)
}

// ThankYouMessage follows up the day after a stay ends.
func ThankYouMessage(p MessageParams) string {
	return fmt.Sprintf(`Hi %s! Thanks for parking at Apex Truck Parking. We hope you had a great stay!

If you had a good experience, we'd really appreciate a quick Google review - it helps other truckers find us:

%s

Safe travels and see you next time!
- Apex Truck Parking Team`,
		p.FirstName, p.ReviewURL)
}

// FormatAmount renders integer cents as major units with two decimals. Exact
// for all whole-cent amounts; no floating point involved.
func FormatAmount(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

// FormatDateList renders day keys as "Thu, Feb 5" joined with ", ". Unparsable
// keys pass through untouched rather than dropping a date from the message.
func FormatDateList(dates []string) string {
	parts := make([]string, len(dates))
	for i, d := range dates {
		if t, err := time.Parse("2006-01-02", d); err == nil {
			parts[i] = t.Format("Mon, Jan 2")
		} else {
			parts[i] = d
		}
	}
	return strings.Join(parts, ", ")
}

func formatLongDate(date string) string {
	if t, err := time.Parse("2006-01-02", date); err == nil {
		return t.Format("Monday, January 2")
	}
	return date
}

func lastDate(dates []string) string {
	if len(dates) == 0 {
		return ""
	}
	return dates[len(dates)-1]
}
