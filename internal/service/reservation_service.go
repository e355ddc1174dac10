package service

import (
	"fmt"
	"log"
	"strings"
	"time"

	"apexparking/internal/booking"
	"apexparking/internal/config"
	"apexparking/internal/db"
	"apexparking/internal/entities"
	"apexparking/internal/notify"
	"apexparking/internal/repository"
)

// PartnerDailyRateCents is what the aggregator pays per occupied day when the
// inbound message carries no amount.
const PartnerDailyRateCents = 2000

// PartnerPaymentPrefix marks rows whose money moved through the aggregator,
// not Stripe. Sweeps use it to skip partner bookings.
const PartnerPaymentPrefix = "TPC_"

// SMSSender and EmailSender are satisfied by the notify package; tests swap
// in fakes.
type SMSSender interface {
	Send(to, body string) error
}

type EmailSender interface {
	Send(toEmail, toName, subject, body string) error
}

// PaymentCreator is satisfied by StripeService.
type PaymentCreator interface {
	CreatePaymentIntent(amount int64, receiptEmail string, metadata map[string]string) (id, clientSecret string, err error)
}

type ReservationService struct {
	Repo   *repository.ReservationRepository
	Stripe PaymentCreator
	SMS    SMSSender
	Email  EmailSender
	Cfg    config.Config
}

func NewReservationService(repo *repository.ReservationRepository, stripe PaymentCreator, sms SMSSender, email EmailSender, cfg config.Config) *ReservationService {
	return &ReservationService{Repo: repo, Stripe: stripe, SMS: sms, Email: email, Cfg: cfg}
}

// Availability reports how many confirmed day-rows exist for a date. This is
// the advisory check the browser calendar uses; the authoritative cap is
// enforced again at payment capture.
func (s *ReservationService) Availability(date string) (*entities.AvailabilityResponse, error) {
	booked, err := s.Repo.CountConfirmedOnDate(date)
	if err != nil {
		return nil, err
	}
	available := s.Cfg.MaxDailySpots - booked
	if available < 0 {
		available = 0
	}
	return &entities.AvailabilityResponse{
		Date:           date,
		SpotsBooked:    booked,
		SpotsAvailable: available,
		MaxSpots:       s.Cfg.MaxDailySpots,
		IsAvailable:    booking.IsDateAvailable(booked, s.Cfg.MaxDailySpots),
	}, nil
}

// CreateReservation runs the checkout flow: authorize the payment, persist
// pending day-rows, hand the client secret back for the browser to complete.
// Payment and persistence are deliberately not transactional with each other;
// the payment webhook re-derives state from the intent id later.
func (s *ReservationService) CreateReservation(req *entities.CreateReservationRequest) (*entities.CreateReservationResponse, error) {
	code := booking.GenerateCode("APX-")

	intentID, clientSecret, err := s.Stripe.CreatePaymentIntent(req.TotalAmount, req.Email, map[string]string{
		"confirmation_code": code,
		"dates":             strings.Join(req.Dates, ", "),
		"dot_number":        req.DOTNumber,
		"customer_name":     strings.TrimSpace(req.FirstName + " " + req.LastName),
	})
	if err != nil {
		return nil, err
	}

	rows := booking.DayRows(booking.Details{
		ConfirmationCode: code,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		Phone:            req.Phone,
		MCNumber:         req.MCNumber,
		DOTNumber:        req.DOTNumber,
		TruckInfo:        req.TruckInfo,
		Status:           db.StatusPending,
		StripePaymentID:  intentID,
		TotalAmount:      req.TotalAmount,
	}, req.Dates)

	if err := s.Repo.InsertDayRows(rows); err != nil {
		// payment can still complete; the webhook reconciles from the intent id
		log.Printf("Error saving reservation %s: %v", code, err)
	}

	return &entities.CreateReservationResponse{
		ClientSecret:     clientSecret,
		ConfirmationCode: code,
	}, nil
}

// ConfirmPayment handles a successful capture: flip pending rows to confirmed
// under the capacity check, then notify. Persist happens-before notify, and a
// failed send never rolls anything back.
func (s *ReservationService) ConfirmPayment(paymentIntentID string) error {
	confirmedDates, rejectedDates, err := s.Repo.ConfirmByPaymentID(paymentIntentID, s.Cfg.MaxDailySpots)
	if err != nil {
		return err
	}
	if len(rejectedDates) > 0 {
		log.Printf("Payment %s: dates over capacity, rows marked failed: %v", paymentIntentID, rejectedDates)
	}
	if len(confirmedDates) == 0 {
		return nil
	}

	rows, err := s.Repo.RowsByPaymentID(paymentIntentID)
	if err != nil {
		log.Printf("Payment %s confirmed but could not load rows for notification: %v", paymentIntentID, err)
		return nil
	}

	var dates []string
	var total int64
	for _, row := range rows {
		if row.Status == db.StatusConfirmed {
			dates = append(dates, row.ParkingDate)
			total += row.Amount
		}
	}
	if len(dates) == 0 {
		return nil
	}
	first := rows[0]

	msg := notify.ConfirmationMessage(notify.MessageParams{
		FirstName:        first.FirstName,
		Dates:            dates,
		AmountCents:      total,
		ConfirmationCode: first.ConfirmationCode,
		Address:          s.Cfg.LotAddress,
		GateCode:         s.Cfg.GateCode,
		LotPhone:         s.Cfg.LotPhone,
	})
	if err := s.SMS.Send(first.Phone, msg); err != nil {
		log.Printf("Reservation %s confirmed, but SMS to %s failed: %v", first.ConfirmationCode, first.Phone, err)
	}
	if first.Email.Valid {
		subject := fmt.Sprintf("Apex Truck Parking confirmed - %s", first.ConfirmationCode)
		if err := s.Email.Send(first.Email.String, first.FirstName, subject, msg); err != nil {
			log.Printf("Reservation %s confirmed, but email to %s failed: %v", first.ConfirmationCode, first.Email.String, err)
		}
	}
	return nil
}

// FailPayment marks the rows of a failed capture.
func (s *ReservationService) FailPayment(paymentIntentID string) error {
	return s.Repo.MarkFailedByPaymentID(paymentIntentID)
}

// ExtendStay adds days after the last confirmed date of an existing booking,
// under the same confirmation code. Extensions are auto-confirmed; the guest
// is already on the lot.
func (s *ReservationService) ExtendStay(req *entities.ExtendStayRequest) (*entities.ExtendStayResponse, error) {
	original, err := s.Repo.LatestConfirmedByCode(req.ConfirmationCode)
	if err != nil {
		return nil, err
	}

	lastDate, err := time.Parse(booking.DateLayout, original.ParkingDate)
	if err != nil {
		return nil, fmt.Errorf("stored parking date %q is malformed: %w", original.ParkingDate, err)
	}
	newDates := make([]string, req.AdditionalDays)
	for i := range newDates {
		newDates[i] = lastDate.AddDate(0, 0, i+1).Format(booking.DateLayout)
	}

	intentID, clientSecret, err := s.Stripe.CreatePaymentIntent(req.Amount, original.Email.String, map[string]string{
		"type":                  "extension",
		"original_confirmation": req.ConfirmationCode,
		"new_dates":             strings.Join(newDates, ", "),
	})
	if err != nil {
		return nil, err
	}

	rows := booking.DayRows(booking.Details{
		ConfirmationCode: original.ConfirmationCode,
		FirstName:        original.FirstName,
		LastName:         original.LastName,
		Email:            original.Email.String,
		Phone:            original.Phone,
		MCNumber:         original.MCNumber.String,
		DOTNumber:        original.DOTNumber,
		TruckInfo:        original.TruckInfo.String,
		Status:           db.StatusConfirmed,
		StripePaymentID:  intentID,
		TotalAmount:      req.Amount,
	}, newDates)
	if err := s.Repo.InsertDayRows(rows); err != nil {
		log.Printf("Error saving extension for %s: %v", req.ConfirmationCode, err)
	}

	phone := req.Phone
	if phone == "" {
		phone = original.Phone
	}
	msg := notify.ExtensionMessage(notify.MessageParams{
		FirstName:        original.FirstName,
		Dates:            newDates,
		AmountCents:      req.Amount,
		ConfirmationCode: original.ConfirmationCode,
	})
	if err := s.SMS.Send(phone, msg); err != nil {
		log.Printf("Extension for %s saved, but SMS failed: %v", req.ConfirmationCode, err)
	}

	newCheckout, _ := time.Parse(booking.DateLayout, newDates[len(newDates)-1])
	return &entities.ExtendStayResponse{
		Success:      true,
		ClientSecret: clientSecret,
		NewDates:     newDates,
		NewCheckout:  newCheckout.Format("Monday, January 2"),
	}, nil
}

// IngestPartnerSMS turns an inbound aggregator SMS into confirmed day-rows.
// Re-delivery of a message is a no-op keyed on the confirmation code.
func (s *ReservationService) IngestPartnerSMS(body string) error {
	parsed, err := booking.ParseBookingMessage(body)
	if err != nil {
		return fmt.Errorf("could not parse partner booking: %w", err)
	}

	exists, err := s.Repo.ExistsByConfirmationCode(parsed.ConfirmationCode)
	if err != nil {
		return err
	}
	if exists {
		log.Printf("Partner booking %s already exists, skipping", parsed.ConfirmationCode)
		return nil
	}

	days := booking.ParkingDays(parsed.CheckIn, parsed.CheckOut)

	trailerType := parsed.TrailerType
	if trailerType == "" {
		trailerType = "Trailer"
	}
	trailerNumber := parsed.TrailerNumber
	if trailerNumber == "" {
		trailerNumber = "N/A"
	}
	company := parsed.CompanyName
	if company == "" {
		company = "TPC Booking"
	}

	rows := booking.DayRows(booking.Details{
		ConfirmationCode: parsed.ConfirmationCode,
		FirstName:        "TPC",
		LastName:         parsed.MemberNumber,
		Phone:            parsed.MemberNumber, // no customer phone in the partner template
		DOTNumber:        parsed.MemberNumber,
		TruckInfo:        fmt.Sprintf("%s #%s - %s", trailerType, trailerNumber, company),
		Status:           db.StatusConfirmed,
		StripePaymentID:  PartnerPaymentPrefix + parsed.ConfirmationCode,
		TotalAmount:      int64(len(days)) * PartnerDailyRateCents,
	}, days)

	if err := s.Repo.InsertDayRows(rows); err != nil {
		return fmt.Errorf("saving partner booking %s: %w", parsed.ConfirmationCode, err)
	}
	log.Printf("Added %d day(s) for partner booking %s", len(days), parsed.ConfirmationCode)
	return nil
}

// IngestEmailBooking persists a booking forwarded by the email parsing
// service and texts the customer a confirmation.
func (s *ReservationService) IngestEmailBooking(req *entities.EmailBookingRequest) (*entities.EmailBookingResponse, error) {
	firstName, lastName := booking.SplitFullName(req.CustomerName)

	checkIn, err := time.Parse(booking.DateLayout, req.CheckIn)
	if err != nil {
		return nil, fmt.Errorf("invalid check_in %q: %w", req.CheckIn, err)
	}
	var checkOut time.Time
	if req.CheckOut != "" {
		checkOut, err = time.Parse(booking.DateLayout, req.CheckOut)
		if err != nil {
			return nil, fmt.Errorf("invalid check_out %q: %w", req.CheckOut, err)
		}
	} else {
		nights := req.Nights
		if nights < 1 {
			nights = 1
		}
		checkOut = checkIn.AddDate(0, 0, nights)
	}
	days := booking.ParkingDays(checkIn, checkOut)

	code := req.ConfirmationNumber
	if code == "" {
		code = booking.GenerateCode("TPC-")
	}

	exists, err := s.Repo.ExistsByConfirmationCode(code)
	if err != nil {
		return nil, err
	}
	if exists {
		log.Printf("Email booking %s already exists, skipping", code)
		return &entities.EmailBookingResponse{
			Success:          true,
			Message:          "Booking already exists",
			ConfirmationCode: code,
		}, nil
	}

	totalCents := int64(req.AmountPaid*100 + 0.5)
	if totalCents == 0 {
		totalCents = int64(len(days)) * PartnerDailyRateCents
	}
	dotNumber := req.DOTNumber
	if dotNumber == "" {
		dotNumber = "TPC-BOOKING"
	}
	truckInfo := req.VehicleType
	if truckInfo == "" {
		truckInfo = "Truck Parking Club Booking"
	}

	rows := booking.DayRows(booking.Details{
		ConfirmationCode: code,
		FirstName:        firstName,
		LastName:         lastName,
		Email:            req.Email,
		Phone:            req.Phone,
		MCNumber:         req.MCNumber,
		DOTNumber:        dotNumber,
		TruckInfo:        truckInfo,
		Status:           db.StatusConfirmed,
		StripePaymentID:  PartnerPaymentPrefix + code,
		TotalAmount:      totalCents,
	}, days)
	if err := s.Repo.InsertDayRows(rows); err != nil {
		return nil, fmt.Errorf("saving email booking %s: %w", code, err)
	}
	log.Printf("Added %d reservation(s) for %s %s", len(days), firstName, lastName)

	msg := notify.ConfirmationMessage(notify.MessageParams{
		FirstName:        firstName,
		Dates:            days,
		AmountCents:      totalCents,
		ConfirmationCode: code,
		Address:          s.Cfg.LotAddress,
		GateCode:         s.Cfg.GateCode,
		LotPhone:         s.Cfg.LotPhone,
	})
	if err := s.SMS.Send(req.Phone, msg); err != nil {
		log.Printf("Email booking %s saved, but SMS failed: %v", code, err)
	}

	return &entities.EmailBookingResponse{
		Success:          true,
		Message:          "Booking added successfully",
		ConfirmationCode: code,
		Dates:            days,
		Customer:         strings.TrimSpace(firstName + " " + lastName),
	}, nil
}
