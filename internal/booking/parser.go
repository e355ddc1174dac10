package booking

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParsedBooking is the structured form of a partner notification message. It
// is consumed immediately by the normalizer and never persisted as-is.
type ParsedBooking struct {
	CheckIn          time.Time
	CheckOut         time.Time
	ConfirmationCode string
	MemberNumber     string
	CompanyName      string
	TrailerType      string
	TrailerNumber    string
	TrailerPlate     string
	VehicleCount     int
}

// The partner sends a fixed template, e.g.:
//
//	Your parking spot "..." has been rented for 1 vehicle(s)
//	from February 5 2026, 12:15 PM to February 6 2026, 12:15 PM
//	Booking #: EXT_KHE1I
//	Trucker Member #: ZSP386
//	Company Name on Trailer:
//	Trailer Type: Dry van
//	Trailer #: 096102
//	Trailer Plate:
//
// Each field is extracted by its own label-anchored pattern so template drift
// degrades to missing optional fields instead of a failed parse. Only the
// date range is mandatory.
var (
	dateRangeRe   = regexp.MustCompile(`(?i)from\s+(\w+\s+\d{1,2}\s+\d{4},?\s+\d{1,2}:\d{2}\s*[AP]M)\s+to\s+(\w+\s+\d{1,2}\s+\d{4},?\s+\d{1,2}:\d{2}\s*[AP]M)`)
	bookingNumRe  = regexp.MustCompile(`(?i)Booking\s*#:\s*(\S+)`)
	memberNumRe   = regexp.MustCompile(`(?i)Trucker\s*Member\s*#:\s*(\S+)`)
	companyRe     = regexp.MustCompile(`(?i)Company\s*Name\s*on\s*Trailer:[ \t]*([^\n]*)`)
	trailerTypeRe = regexp.MustCompile(`(?i)Trailer\s*Type:[ \t]*([^\n]*)`)
	trailerNumRe  = regexp.MustCompile(`(?i)Trailer\s*#:\s*(\S+)`)
	trailerPltRe  = regexp.MustCompile(`(?i)Trailer\s*Plate:[ \t]*(\S*)`)
	vehicleCntRe  = regexp.MustCompile(`(?i)(\d+)\s*vehicle\(s\)`)
)

// UnknownMember is recorded when the message carries no member number.
const UnknownMember = "UNKNOWN"

// ParseBookingMessage extracts a ParsedBooking from raw partner text. It
// returns an error only when the mandatory date-range phrase is absent or its
// timestamps do not parse; every other field falls back to a safe default.
func ParseBookingMessage(message string) (*ParsedBooking, error) {
	m := dateRangeRe.FindStringSubmatch(message)
	if m == nil {
		return nil, fmt.Errorf("no date range phrase in message")
	}
	checkIn, err := parseTemplateTime(m[1])
	if err != nil {
		return nil, fmt.Errorf("parsing check-in %q: %w", m[1], err)
	}
	checkOut, err := parseTemplateTime(m[2])
	if err != nil {
		return nil, fmt.Errorf("parsing check-out %q: %w", m[2], err)
	}

	b := &ParsedBooking{
		CheckIn:          checkIn,
		CheckOut:         checkOut,
		ConfirmationCode: fmt.Sprintf("TPC-%d", time.Now().UnixMilli()),
		MemberNumber:     UnknownMember,
		VehicleCount:     1,
	}
	if m := bookingNumRe.FindStringSubmatch(message); m != nil {
		b.ConfirmationCode = strings.TrimSpace(m[1])
	}
	if m := memberNumRe.FindStringSubmatch(message); m != nil {
		b.MemberNumber = strings.TrimSpace(m[1])
	}
	if m := companyRe.FindStringSubmatch(message); m != nil {
		b.CompanyName = cutAtLabel(m[1], "Trailer Type")
	}
	if m := trailerTypeRe.FindStringSubmatch(message); m != nil {
		b.TrailerType = cutAtLabel(m[1], "Trailer #")
	}
	if m := trailerNumRe.FindStringSubmatch(message); m != nil {
		b.TrailerNumber = strings.TrimSpace(m[1])
	}
	if m := trailerPltRe.FindStringSubmatch(message); m != nil {
		b.TrailerPlate = strings.TrimSpace(m[1])
	}
	if m := vehicleCntRe.FindStringSubmatch(message); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			b.VehicleCount = n
		}
	}
	return b, nil
}

// cutAtLabel trims a free-text capture and drops anything from the next known
// label onward, for messages where labels share a line.
func cutAtLabel(s, label string) string {
	if i := strings.Index(strings.ToLower(s), strings.ToLower(label)); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// parseTemplateTime parses the partner's "Month D YYYY, H:MM AM/PM" stamp,
// tolerating comma placement, whitespace runs and lower-case AM/PM.
func parseTemplateTime(s string) (time.Time, error) {
	fields := strings.Fields(strings.ReplaceAll(s, ",", " "))
	if len(fields) > 0 {
		fields[0] = capitalize(fields[0])
	}
	if n := len(fields); n > 0 {
		last := strings.ToUpper(fields[n-1])
		// "12:15PM" arrives as one field; split the meridiem off
		if strings.HasSuffix(last, "AM") || strings.HasSuffix(last, "PM") {
			if len(last) > 2 {
				fields[n-1] = last[:len(last)-2]
				fields = append(fields, last[len(last)-2:])
			} else {
				fields[n-1] = last
			}
		}
	}
	return time.Parse("January 2 2006 3:04 PM", strings.Join(fields, " "))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
