package entities

// AvailabilityResponse mirrors what the browser calendar consumes for one
// date. The browser-side check is advisory; the authoritative cap is enforced
// at payment capture.
type AvailabilityResponse struct {
	Date           string `json:"date"`
	SpotsBooked    int    `json:"spotsBooked"`
	SpotsAvailable int    `json:"spotsAvailable"`
	MaxSpots       int    `json:"maxSpots"`
	IsAvailable    bool   `json:"isAvailable"`
}
