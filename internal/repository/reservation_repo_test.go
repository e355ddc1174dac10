package repository

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apexparking/internal/db"
)

func reservationRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "confirmation_code", "first_name", "last_name", "email", "phone", "mc_number",
		"dot_number", "truck_info", "parking_date", "parking_type", "amount", "status",
		"stripe_payment_id", "expiration_reminder_sent", "followup_sent", "created_at",
	})
}

func TestCountConfirmedOnDate(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	repo := NewReservationRepository(mockDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM reservations WHERE parking_date = $1 AND status = 'confirmed'`)).
		WithArgs("2026-02-05").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountConfirmedOnDate("2026-02-05")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExistsByConfirmationCode(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	repo := NewReservationRepository(mockDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM reservations WHERE confirmation_code = $1)`)).
		WithArgs("TPC-ABC123").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByConfirmationCode("TPC-ABC123")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertDayRowsIsTransactional(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	repo := NewReservationRepository(mockDB)

	rows := []db.Reservation{
		{ConfirmationCode: "APX-AAA111", FirstName: "Jane", Phone: "4045551234", DOTNumber: "123",
			ParkingDate: "2026-02-05", ParkingType: db.ParkingTypeDaily, Amount: 2000,
			Status: db.StatusPending, CreatedAt: time.Now()},
		{ConfirmationCode: "APX-AAA111", FirstName: "Jane", Phone: "4045551234", DOTNumber: "123",
			ParkingDate: "2026-02-06", ParkingType: db.ParkingTypeDaily, Amount: 2000,
			Status: db.StatusPending, CreatedAt: time.Now()},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO reservations`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO reservations`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectCommit()

	require.NoError(t, repo.InsertDayRows(rows))
	assert.Equal(t, 1, rows[0].ID)
	assert.Equal(t, 2, rows[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmByPaymentIDRespectsDailyCap(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	repo := NewReservationRepository(mockDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT DISTINCT parking_date`).
		WithArgs("pi_123").
		WillReturnRows(sqlmock.NewRows([]string{"parking_date"}).AddRow("2026-02-05").AddRow("2026-02-06"))

	// first date has room
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock(hashtext($1))`)).
		WithArgs("2026-02-05").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM reservations WHERE parking_date = $1 AND status = 'confirmed'`)).
		WithArgs("2026-02-05").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	// second date is full
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock(hashtext($1))`)).
		WithArgs("2026-02-06").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM reservations WHERE parking_date = $1 AND status = 'confirmed'`)).
		WithArgs("2026-02-06").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	mock.ExpectExec(`UPDATE reservations SET status = 'confirmed'`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE reservations SET status = 'failed'`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	confirmed, rejected, err := repo.ConfirmByPaymentID("pi_123", 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-02-05"}, confirmed)
	assert.Equal(t, []string{"2026-02-06"}, rejected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmByPaymentIDNoPendingRows(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	repo := NewReservationRepository(mockDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT DISTINCT parking_date`).
		WithArgs("pi_gone").
		WillReturnRows(sqlmock.NewRows([]string{"parking_date"}))
	mock.ExpectCommit()

	confirmed, rejected, err := repo.ConfirmByPaymentID("pi_gone", 4)
	require.NoError(t, err)
	assert.Empty(t, confirmed)
	assert.Empty(t, rejected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDueExpirationRemindersExcludesPartnerRows(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	repo := NewReservationRepository(mockDB)

	mock.ExpectQuery(`expiration_reminder_sent IS NULL`).
		WithArgs("2026-02-05").
		WillReturnRows(reservationRows().AddRow(
			7, "APX-BBB222", "Jane", "Doe", nil, "4045551234", nil,
			"123", nil, "2026-02-05", "daily", 2000, "confirmed",
			"pi_123", nil, nil, time.Now(),
		))

	due, err := repo.DueExpirationReminders("2026-02-05")
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "APX-BBB222", due[0].ConfirmationCode)
	assert.False(t, due[0].ReminderSentAt.Valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkReminderSent(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	repo := NewReservationRepository(mockDB)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE reservations SET expiration_reminder_sent = NOW() WHERE id = $1`)).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkReminderSent(7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListReservationsAppliesFilters(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	repo := NewReservationRepository(mockDB)

	mock.ExpectQuery(`AND parking_date = \$1 AND status = \$2`).
		WithArgs("2026-02-05", "confirmed").
		WillReturnRows(reservationRows().AddRow(
			1, "APX-CCC333", "Bo", "Hauler", "bo@example.com", "4045550000", nil,
			"999", "Red Kenworth", "2026-02-05", "daily", 2000, "confirmed",
			"pi_9", nil, nil, time.Now(),
		))

	items, err := repo.ListReservations("2026-02-05", "confirmed")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "APX-CCC333", items[0].ConfirmationCode)
	assert.Equal(t, "bo@example.com", items[0].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}
