package booking

import "time"

// DateLayout is the day-granularity key format used everywhere a reservation
// row is stored or compared. Time-of-day never participates in keying.
const DateLayout = "2006-01-02"

// IsDateAvailable reports whether one more confirmed reservation fits on a
// date that already has bookedCount confirmed rows.
func IsDateAvailable(bookedCount, maxSpots int) bool {
	return bookedCount < maxSpots
}

// EnumerateDays returns the half-open day range [checkIn's date, checkOut's
// date) as DateLayout keys. Same-day or inverted inputs yield an empty slice;
// callers that need "at least one day" use ParkingDays instead.
func EnumerateDays(checkIn, checkOut time.Time) []string {
	var days []string
	end := truncateToDay(checkOut)
	for d := truncateToDay(checkIn); d.Before(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(DateLayout))
	}
	return days
}

// ParkingDays is EnumerateDays with the single-day fallback: a stay that does
// not cross midnight still occupies the check-in day. This is policy, not an
// error case (a "same day" partner booking is one paid day).
func ParkingDays(checkIn, checkOut time.Time) []string {
	if days := EnumerateDays(checkIn, checkOut); len(days) > 0 {
		return days
	}
	return []string{truncateToDay(checkIn).Format(DateLayout)}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
