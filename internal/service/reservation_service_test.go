package service

import (
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apexparking/internal/config"
	"apexparking/internal/entities"
	"apexparking/internal/repository"
)

type sentSMS struct {
	To   string
	Body string
}

type fakeSMS struct {
	sent []sentSMS
	err  error
}

func (f *fakeSMS) Send(to, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentSMS{To: to, Body: body})
	return nil
}

type sentEmail struct {
	To      string
	Subject string
	Body    string
}

type fakeEmail struct {
	sent []sentEmail
}

func (f *fakeEmail) Send(toEmail, toName, subject, body string) error {
	f.sent = append(f.sent, sentEmail{To: toEmail, Subject: subject, Body: body})
	return nil
}

type fakeStripe struct {
	intentID     string
	clientSecret string
	err          error

	gotAmount   int64
	gotEmail    string
	gotMetadata map[string]string
}

func (f *fakeStripe) CreatePaymentIntent(amount int64, receiptEmail string, metadata map[string]string) (string, string, error) {
	f.gotAmount = amount
	f.gotEmail = receiptEmail
	f.gotMetadata = metadata
	if f.err != nil {
		return "", "", f.err
	}
	return f.intentID, f.clientSecret, nil
}

func testConfig() config.Config {
	return config.Config{
		MaxDailySpots: 4,
		CheckoutHour:  12,
		SiteURL:       "https://apextruckparking.com",
		ReviewURL:     "https://g.page/r/apex/review",
		LotAddress:    "6759 Marbut Rd, Lithonia, GA 30058",
		LotPhone:      "(470) 838-2281",
		GateCode:      "1234",
	}
}

func newTestService(t *testing.T) (*ReservationService, sqlmock.Sqlmock, *fakeStripe, *fakeSMS, *fakeEmail, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	stripe := &fakeStripe{intentID: "pi_test", clientSecret: "pi_test_secret"}
	sms := &fakeSMS{}
	email := &fakeEmail{}
	svc := NewReservationService(repository.NewReservationRepository(mockDB), stripe, sms, email, testConfig())
	return svc, mock, stripe, sms, email, mockDB
}

func dayRowColumns() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "confirmation_code", "first_name", "last_name", "email", "phone", "mc_number",
		"dot_number", "truck_info", "parking_date", "parking_type", "amount", "status",
		"stripe_payment_id", "expiration_reminder_sent", "followup_sent", "created_at",
	})
}

const partnerMessage = `Your parking spot "Apex Truck Parking" has been rented for 1 vehicle(s)
from February 5 2026, 12:15 PM to February 6 2026, 12:15 PM
Booking #: EXT_KHE1I
Trucker Member #: ZSP386
Company Name on Trailer:
Trailer Type: Dry van
Trailer #: 096102
Trailer Plate:`

func TestCreateReservation(t *testing.T) {
	svc, mock, stripe, _, _, mockDB := newTestService(t)
	defer mockDB.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO reservations`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO reservations`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectCommit()

	resp, err := svc.CreateReservation(&entities.CreateReservationRequest{
		FirstName:   "Jane",
		LastName:    "Hauler",
		Email:       "jane@example.com",
		Phone:       "4045551234",
		DOTNumber:   "1234567",
		Dates:       []string{"2026-02-05", "2026-02-06"},
		TotalAmount: 4000,
	})
	require.NoError(t, err)

	assert.Equal(t, "pi_test_secret", resp.ClientSecret)
	assert.Regexp(t, `^APX-[A-Z0-9]{6}$`, resp.ConfirmationCode)
	assert.Equal(t, int64(4000), stripe.gotAmount)
	assert.Equal(t, "jane@example.com", stripe.gotEmail)
	assert.Equal(t, resp.ConfirmationCode, stripe.gotMetadata["confirmation_code"])
	assert.Equal(t, "2026-02-05, 2026-02-06", stripe.gotMetadata["dates"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReservationPaymentFailure(t *testing.T) {
	svc, mock, stripe, _, _, mockDB := newTestService(t)
	defer mockDB.Close()
	stripe.err = assert.AnError

	_, err := svc.CreateReservation(&entities.CreateReservationRequest{
		FirstName:   "Jane",
		Phone:       "4045551234",
		DOTNumber:   "1234567",
		Dates:       []string{"2026-02-05"},
		TotalAmount: 2000,
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmPaymentNotifiesCustomer(t *testing.T) {
	svc, mock, _, sms, email, mockDB := newTestService(t)
	defer mockDB.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT DISTINCT parking_date`).
		WithArgs("pi_test").
		WillReturnRows(sqlmock.NewRows([]string{"parking_date"}).AddRow("2026-02-05"))
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock(hashtext($1))`)).
		WithArgs("2026-02-05").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*)`)).
		WithArgs("2026-02-05").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`UPDATE reservations SET status = 'confirmed'`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery(`WHERE stripe_payment_id = \$1`).
		WithArgs("pi_test").
		WillReturnRows(dayRowColumns().AddRow(
			1, "APX-DDD444", "Jane", "Hauler", "jane@example.com", "4045551234", nil,
			"1234567", "Blue Peterbilt", "2026-02-05", "daily", 2000, "confirmed",
			"pi_test", nil, nil, time.Now(),
		))

	require.NoError(t, svc.ConfirmPayment("pi_test"))

	require.Len(t, sms.sent, 1)
	assert.Equal(t, "4045551234", sms.sent[0].To)
	assert.Contains(t, sms.sent[0].Body, "APX-DDD444")
	assert.Contains(t, sms.sent[0].Body, "$20.00")
	assert.Contains(t, sms.sent[0].Body, "1234")

	require.Len(t, email.sent, 1)
	assert.Equal(t, "jane@example.com", email.sent[0].To)
	assert.Contains(t, email.sent[0].Subject, "APX-DDD444")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmPaymentNothingConfirmed(t *testing.T) {
	svc, mock, _, sms, _, mockDB := newTestService(t)
	defer mockDB.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT DISTINCT parking_date`).
		WithArgs("pi_empty").
		WillReturnRows(sqlmock.NewRows([]string{"parking_date"}))
	mock.ExpectCommit()

	require.NoError(t, svc.ConfirmPayment("pi_empty"))
	assert.Empty(t, sms.sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExtendStay(t *testing.T) {
	svc, mock, stripe, sms, _, mockDB := newTestService(t)
	defer mockDB.Close()

	mock.ExpectQuery(`ORDER BY parking_date DESC`).
		WithArgs("APX-EEE555").
		WillReturnRows(dayRowColumns().AddRow(
			3, "APX-EEE555", "Jane", "Hauler", "jane@example.com", "4045551234", nil,
			"1234567", "Blue Peterbilt", "2026-02-05", "daily", 2000, "confirmed",
			"pi_orig", nil, nil, time.Now(),
		))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO reservations`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectQuery(`INSERT INTO reservations`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectCommit()

	resp, err := svc.ExtendStay(&entities.ExtendStayRequest{
		ConfirmationCode: "APX-EEE555",
		AdditionalDays:   2,
		Amount:           4000,
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, []string{"2026-02-06", "2026-02-07"}, resp.NewDates)
	assert.Equal(t, "Saturday, February 7", resp.NewCheckout)
	assert.Equal(t, "extension", stripe.gotMetadata["type"])

	require.Len(t, sms.sent, 1)
	assert.Equal(t, "4045551234", sms.sent[0].To)
	assert.Contains(t, sms.sent[0].Body, "$40.00")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIngestPartnerSMS(t *testing.T) {
	svc, mock, _, _, _, mockDB := newTestService(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("EXT_KHE1I").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO reservations`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
	mock.ExpectCommit()

	require.NoError(t, svc.IngestPartnerSMS(partnerMessage))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIngestPartnerSMSDuplicateIsNoOp(t *testing.T) {
	svc, mock, _, _, _, mockDB := newTestService(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("EXT_KHE1I").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	require.NoError(t, svc.IngestPartnerSMS(partnerMessage))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIngestPartnerSMSUnparseable(t *testing.T) {
	svc, mock, _, _, _, mockDB := newTestService(t)
	defer mockDB.Close()

	err := svc.IngestPartnerSMS("STOP")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIngestEmailBooking(t *testing.T) {
	svc, mock, _, sms, _, mockDB := newTestService(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("TPC-XYZ789").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO reservations`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectQuery(`INSERT INTO reservations`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))
	mock.ExpectCommit()

	resp, err := svc.IngestEmailBooking(&entities.EmailBookingRequest{
		CustomerName:       "Bo Trucker",
		Phone:              "4045550000",
		Email:              "bo@example.com",
		CheckIn:            "2026-02-05",
		CheckOut:           "2026-02-07",
		AmountPaid:         90.00,
		ConfirmationNumber: "TPC-XYZ789",
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "Booking added successfully", resp.Message)
	assert.Equal(t, []string{"2026-02-05", "2026-02-06"}, resp.Dates)
	assert.Equal(t, "Bo Trucker", resp.Customer)

	require.Len(t, sms.sent, 1)
	assert.Equal(t, "4045550000", sms.sent[0].To)
	assert.Contains(t, sms.sent[0].Body, "TPC-XYZ789")
	assert.Contains(t, sms.sent[0].Body, "$90.00")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIngestEmailBookingDuplicate(t *testing.T) {
	svc, mock, _, sms, _, mockDB := newTestService(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("TPC-XYZ789").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	resp, err := svc.IngestEmailBooking(&entities.EmailBookingRequest{
		CustomerName:       "Bo Trucker",
		Phone:              "4045550000",
		CheckIn:            "2026-02-05",
		ConfirmationNumber: "TPC-XYZ789",
	})
	require.NoError(t, err)
	assert.Equal(t, "Booking already exists", resp.Message)
	assert.Empty(t, sms.sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailability(t *testing.T) {
	svc, mock, _, _, _, mockDB := newTestService(t)
	defer mockDB.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*)`)).
		WithArgs("2026-02-05").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	resp, err := svc.Availability("2026-02-05")
	require.NoError(t, err)
	assert.Equal(t, 4, resp.SpotsBooked)
	assert.Equal(t, 0, resp.SpotsAvailable)
	assert.False(t, resp.IsAvailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}
