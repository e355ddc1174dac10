package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"apexparking/internal/booking"
	"apexparking/internal/db"
	"apexparking/internal/entities"
)

const reservationColumns = `id, confirmation_code, first_name, last_name, email, phone, mc_number,
	dot_number, truck_info, parking_date::text, parking_type, amount, status,
	stripe_payment_id, expiration_reminder_sent, followup_sent, created_at`

type ReservationRepository struct {
	DB *sql.DB
}

func NewReservationRepository(database *sql.DB) *ReservationRepository {
	return &ReservationRepository{DB: database}
}

// InsertDayRows persists every day-row of one booking in a single
// transaction, so a booking is never half-stored.
func (r *ReservationRepository) InsertDayRows(rows []db.Reservation) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("begin insert transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO reservations
		(confirmation_code, first_name, last_name, email, phone, mc_number, dot_number,
		 truck_info, parking_date, parking_type, amount, status, stripe_payment_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`
	for i := range rows {
		res := &rows[i]
		err := tx.QueryRow(query,
			res.ConfirmationCode,
			res.FirstName,
			res.LastName,
			res.Email,
			res.Phone,
			res.MCNumber,
			res.DOTNumber,
			res.TruckInfo,
			res.ParkingDate,
			res.ParkingType,
			res.Amount,
			res.Status,
			res.StripePaymentID,
			res.CreatedAt,
		).Scan(&res.ID)
		if err != nil {
			return fmt.Errorf("inserting day-row for %s: %w", res.ParkingDate, err)
		}
	}
	return tx.Commit()
}

// CountConfirmedOnDate backs the advisory calendar check.
func (r *ReservationRepository) CountConfirmedOnDate(date string) (int, error) {
	var count int
	err := r.DB.QueryRow(
		`SELECT COUNT(*) FROM reservations WHERE parking_date = $1 AND status = 'confirmed'`,
		date,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting confirmed reservations for %s: %w", date, err)
	}
	return count, nil
}

// ExistsByConfirmationCode is the dedupe gate for partner-ingested bookings.
func (r *ReservationRepository) ExistsByConfirmationCode(code string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM reservations WHERE confirmation_code = $1)`,
		code,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking confirmation code %s: %w", code, err)
	}
	return exists, nil
}

func (r *ReservationRepository) RowsByPaymentID(paymentID string) ([]db.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations WHERE stripe_payment_id = $1 ORDER BY parking_date`
	rows, err := r.DB.Query(query, paymentID)
	if err != nil {
		return nil, fmt.Errorf("querying reservations for payment %s: %w", paymentID, err)
	}
	defer rows.Close()
	return scanReservations(rows)
}

// ConfirmByPaymentID flips this payment's pending rows to confirmed, but only
// up to the daily cap: each date is checked under a per-date advisory lock so
// two simultaneous captures cannot both take the last spot. Dates already at
// capacity get their rows marked failed instead and are returned for logging.
func (r *ReservationRepository) ConfirmByPaymentID(paymentID string, maxSpots int) (confirmed, rejected []string, err error) {
	tx, err := r.DB.Begin()
	if err != nil {
		return nil, nil, fmt.Errorf("begin confirm transaction: %w", err)
	}
	defer tx.Rollback()

	dateRows, err := tx.Query(
		`SELECT DISTINCT parking_date::text FROM reservations
		 WHERE stripe_payment_id = $1 AND status = 'pending' ORDER BY parking_date`,
		paymentID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("listing pending dates for payment %s: %w", paymentID, err)
	}
	var dates []string
	for dateRows.Next() {
		var d string
		if err := dateRows.Scan(&d); err != nil {
			dateRows.Close()
			return nil, nil, fmt.Errorf("scanning pending date: %w", err)
		}
		dates = append(dates, d)
	}
	dateRows.Close()
	if err := dateRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterating pending dates: %w", err)
	}

	for _, date := range dates {
		if _, err := tx.Exec(`SELECT pg_advisory_xact_lock(hashtext($1))`, date); err != nil {
			return nil, nil, fmt.Errorf("locking date %s: %w", date, err)
		}
		var booked int
		err := tx.QueryRow(
			`SELECT COUNT(*) FROM reservations WHERE parking_date = $1 AND status = 'confirmed'`,
			date,
		).Scan(&booked)
		if err != nil {
			return nil, nil, fmt.Errorf("counting confirmed rows for %s: %w", date, err)
		}
		if booking.IsDateAvailable(booked, maxSpots) {
			confirmed = append(confirmed, date)
		} else {
			rejected = append(rejected, date)
		}
	}

	if len(confirmed) > 0 {
		_, err = tx.Exec(
			`UPDATE reservations SET status = 'confirmed'
			 WHERE stripe_payment_id = $1 AND status = 'pending' AND parking_date = ANY($2::date[])`,
			paymentID, pq.Array(confirmed),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("confirming rows for payment %s: %w", paymentID, err)
		}
	}
	if len(rejected) > 0 {
		_, err = tx.Exec(
			`UPDATE reservations SET status = 'failed'
			 WHERE stripe_payment_id = $1 AND status = 'pending' AND parking_date = ANY($2::date[])`,
			paymentID, pq.Array(rejected),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failing over-capacity rows for payment %s: %w", paymentID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit confirm transaction: %w", err)
	}
	return confirmed, rejected, nil
}

func (r *ReservationRepository) MarkFailedByPaymentID(paymentID string) error {
	_, err := r.DB.Exec(
		`UPDATE reservations SET status = 'failed' WHERE stripe_payment_id = $1 AND status = 'pending'`,
		paymentID,
	)
	if err != nil {
		return fmt.Errorf("marking payment %s failed: %w", paymentID, err)
	}
	return nil
}

// LatestConfirmedByCode finds the final day-row of a booking, the anchor for
// stay extensions.
func (r *ReservationRepository) LatestConfirmedByCode(code string) (*db.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE confirmation_code = $1 AND status = 'confirmed'
		ORDER BY parking_date DESC LIMIT 1`
	res, err := scanReservation(r.DB.QueryRow(query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no confirmed reservation with code %s: %w", code, err)
		}
		return nil, fmt.Errorf("querying reservation %s: %w", code, err)
	}
	return res, nil
}

// DueExpirationReminders returns today's confirmed rows that have not been
// reminded yet. Partner bookings are excluded; the partner handles its own
// customer communications.
func (r *ReservationRepository) DueExpirationReminders(date string) ([]db.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE parking_date = $1 AND status = 'confirmed'
		  AND expiration_reminder_sent IS NULL
		  AND (stripe_payment_id IS NULL OR stripe_payment_id NOT LIKE 'TPC\_%')`
	rows, err := r.DB.Query(query, date)
	if err != nil {
		return nil, fmt.Errorf("querying expiring reservations for %s: %w", date, err)
	}
	defer rows.Close()
	return scanReservations(rows)
}

// DueThankYous returns rows for stays that ended on the given date and have
// not been followed up.
func (r *ReservationRepository) DueThankYous(date string) ([]db.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE parking_date = $1 AND status = 'confirmed'
		  AND followup_sent IS NULL
		  AND (stripe_payment_id IS NULL OR stripe_payment_id NOT LIKE 'TPC\_%')`
	rows, err := r.DB.Query(query, date)
	if err != nil {
		return nil, fmt.Errorf("querying completed reservations for %s: %w", date, err)
	}
	defer rows.Close()
	return scanReservations(rows)
}

// MarkReminderSent is called only after Twilio accepted the message, so a
// retried sweep cannot skip an unsent reminder.
func (r *ReservationRepository) MarkReminderSent(id int) error {
	_, err := r.DB.Exec(`UPDATE reservations SET expiration_reminder_sent = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("marking reminder sent for reservation %d: %w", id, err)
	}
	return nil
}

func (r *ReservationRepository) MarkFollowupSent(id int) error {
	_, err := r.DB.Exec(`UPDATE reservations SET followup_sent = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("marking followup sent for reservation %d: %w", id, err)
	}
	return nil
}

// ListReservations is the admin view, optionally filtered by date and status.
func (r *ReservationRepository) ListReservations(date, status string) ([]entities.ReservationListItem, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE 1=1`
	args := []interface{}{}
	if date != "" {
		args = append(args, date)
		query += fmt.Sprintf(" AND parking_date = $%d", len(args))
	}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY parking_date DESC, confirmation_code"

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing reservations: %w", err)
	}
	defer rows.Close()

	reservations, err := scanReservations(rows)
	if err != nil {
		return nil, err
	}
	items := make([]entities.ReservationListItem, len(reservations))
	for i, res := range reservations {
		items[i] = entities.ReservationListItem{
			ID:               res.ID,
			ConfirmationCode: res.ConfirmationCode,
			FirstName:        res.FirstName,
			LastName:         res.LastName,
			Phone:            res.Phone,
			Email:            res.Email.String,
			DOTNumber:        res.DOTNumber,
			TruckInfo:        res.TruckInfo.String,
			ParkingDate:      res.ParkingDate,
			Amount:           res.Amount,
			Status:           res.Status,
			StripePaymentID:  res.StripePaymentID.String,
			CreatedAt:        res.CreatedAt,
		}
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*db.Reservation, error) {
	var res db.Reservation
	err := row.Scan(
		&res.ID, &res.ConfirmationCode, &res.FirstName, &res.LastName, &res.Email,
		&res.Phone, &res.MCNumber, &res.DOTNumber, &res.TruckInfo, &res.ParkingDate,
		&res.ParkingType, &res.Amount, &res.Status, &res.StripePaymentID,
		&res.ReminderSentAt, &res.FollowupSentAt, &res.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func scanReservations(rows *sql.Rows) ([]db.Reservation, error) {
	var reservations []db.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning reservation row: %w", err)
		}
		reservations = append(reservations, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reservation rows: %w", err)
	}
	return reservations, nil
}
