package patients

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBooking() Booking {
	return Booking{
		CallID:     "CA123",
		Phone:      "+91 98765 43210",
		Name:       "Ravi Kumar",
		Age:        30,
		Symptom:    "fever",
		Department: "General Medicine",
		Doctor:     "Dr. Arjun Reddy",
		Slot:       "10:00 AM",
	}
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+919876543210", NormalizePhone(" +91 98765-43210 "))
	assert.Equal(t, "5550001", NormalizePhone("(555) 0001"))
	assert.Equal(t, "", NormalizePhone("+"))
	assert.Equal(t, "", NormalizePhone("anonymous"))
}

func TestBookingValidate(t *testing.T) {
	require.NoError(t, sampleBooking().Validate())
	b := sampleBooking()
	b.Slot = ""
	assert.Error(t, b.Validate())
	b = sampleBooking()
	b.Phone = "unknown"
	assert.Error(t, b.Validate())
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.GetByPhone(ctx, "+919876543210")
	assert.ErrorIs(t, err, ErrPatientNotFound)

	appt, err := s.RecordBooking(ctx, sampleBooking())
	require.NoError(t, err)

	p, err := s.GetByPhone(ctx, "+91-98765-43210")
	require.NoError(t, err)
	assert.Equal(t, "Ravi Kumar", p.Name)
	assert.Equal(t, 30, p.Age)
	require.NotNil(t, p.LastAppointment)
	assert.Equal(t, appt.ID, p.LastAppointment.ID)

	second := sampleBooking()
	second.Name = ""
	second.Slot = "2:00 PM"
	_, err = s.RecordBooking(ctx, second)
	require.NoError(t, err)
	p, err = s.GetByPhone(ctx, second.Phone)
	require.NoError(t, err)
	assert.Equal(t, "Ravi Kumar", p.Name)
	assert.Equal(t, "2:00 PM", p.LastAppointment.Slot)
}

func TestPostgresGetByPhone(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	store := newPostgresStore(mock)

	id := uuid.New()
	apptID := uuid.New()
	booked := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT id, phone, name, age").WithArgs("+919876543210").
		WillReturnRows(pgxmock.NewRows([]string{"id", "phone", "name", "age"}).AddRow(id, "+919876543210", "Ravi Kumar", 30))
	mock.ExpectQuery("FROM appointments").WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "call_id", "symptom", "department", "doctor", "slot", "created_at"}).
			AddRow(apptID, "CA1", "fever", "General Medicine", "Dr. Arjun Reddy", "10:00 AM", booked))

	p, err := store.GetByPhone(context.Background(), "+91 98765 43210")
	require.NoError(t, err)
	assert.Equal(t, "Ravi Kumar", p.Name)
	require.NotNil(t, p.LastAppointment)
	assert.Equal(t, "General Medicine", p.LastAppointment.Department)
	assert.Equal(t, id, p.LastAppointment.PatientID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetByPhoneNoAppointment(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	store := newPostgresStore(mock)

	id := uuid.New()
	mock.ExpectQuery("SELECT id, phone, name, age").WithArgs("5550001").
		WillReturnRows(pgxmock.NewRows([]string{"id", "phone", "name", "age"}).AddRow(id, "5550001", "Anita", 0))
	mock.ExpectQuery("FROM appointments").WithArgs(id).WillReturnError(pgx.ErrNoRows)

	p, err := store.GetByPhone(context.Background(), "5550001")
	require.NoError(t, err)
	assert.Nil(t, p.LastAppointment)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetByPhoneErrors(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	store := newPostgresStore(mock)

	mock.ExpectQuery("SELECT id, phone, name, age").WithArgs("111").WillReturnError(pgx.ErrNoRows)
	_, err = store.GetByPhone(context.Background(), "111")
	assert.ErrorIs(t, err, ErrPatientNotFound)

	boom := errors.New("connection reset")
	mock.ExpectQuery("SELECT id, phone, name, age").WithArgs("222").WillReturnError(boom)
	_, err = store.GetByPhone(context.Background(), "222")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrPatientNotFound)

	_, err = store.GetByPhone(context.Background(), "")
	assert.ErrorIs(t, err, ErrPatientNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRecordBooking(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	store := newPostgresStore(mock)
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	patientID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO patients").
		WithArgs(pgxmock.AnyArg(), "+919876543210", "Ravi Kumar", 30).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(patientID))
	mock.ExpectExec("INSERT INTO appointments").
		WithArgs(pgxmock.AnyArg(), patientID, "CA123", "fever", "General Medicine", "Dr. Arjun Reddy", "10:00 AM", now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO symptom_mappings").
		WithArgs("fever", "General Medicine").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	appt, err := store.RecordBooking(context.Background(), sampleBooking())
	require.NoError(t, err)
	assert.Equal(t, patientID, appt.PatientID)
	assert.Equal(t, now, appt.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRecordBookingRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	store := newPostgresStore(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO patients").WillReturnError(errors.New("constraint"))
	mock.ExpectRollback()

	_, err = store.RecordBooking(context.Background(), sampleBooking())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "patients: upsert patient")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordBookingRejectsInvalid(t *testing.T) {
	store := newPostgresStore(nil)
	b := sampleBooking()
	b.Department = ""
	_, err := store.RecordBooking(context.Background(), b)
	require.Error(t, err)
}
