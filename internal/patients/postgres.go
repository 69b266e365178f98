package patients

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists patients, appointments and booking counts.
type PostgresStore struct {
	db  db
	now func() time.Time
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("patients: pgx pool required")
	}
	return newPostgresStore(pool)
}

func newPostgresStore(conn db) *PostgresStore {
	return &PostgresStore{db: conn, now: time.Now}
}

const selectPatient = `
	SELECT id, phone, name, age
	FROM patients
	WHERE phone = $1
`

const selectLastAppointment = `
	SELECT id, call_id, symptom, department, doctor, slot, created_at
	FROM appointments
	WHERE patient_id = $1
	ORDER BY created_at DESC
	LIMIT 1
`

func (s *PostgresStore) GetByPhone(ctx context.Context, phone string) (*Patient, error) {
	phone = NormalizePhone(phone)
	if phone == "" {
		return nil, ErrPatientNotFound
	}
	var p Patient
	err := s.db.QueryRow(ctx, selectPatient, phone).Scan(&p.ID, &p.Phone, &p.Name, &p.Age)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("patients: get by phone: %w", err)
	}

	appt := Appointment{PatientID: p.ID}
	err = s.db.QueryRow(ctx, selectLastAppointment, p.ID).Scan(
		&appt.ID, &appt.CallID, &appt.Symptom, &appt.Department, &appt.Doctor, &appt.Slot, &appt.CreatedAt,
	)
	switch {
	case err == nil:
		p.LastAppointment = &appt
	case errors.Is(err, pgx.ErrNoRows):
	default:
		return nil, fmt.Errorf("patients: last appointment: %w", err)
	}
	return &p, nil
}

const upsertPatient = `
	INSERT INTO patients (id, phone, name, age)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (phone) DO UPDATE SET
		name = COALESCE(NULLIF(EXCLUDED.name, ''), patients.name),
		age = CASE WHEN EXCLUDED.age > 0 THEN EXCLUDED.age ELSE patients.age END,
		updated_at = NOW()
	RETURNING id
`

const insertAppointment = `
	INSERT INTO appointments (id, patient_id, call_id, symptom, department, doctor, slot, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

const upsertMapping = `
	INSERT INTO symptom_mappings (symptom, department, bookings)
	VALUES ($1, $2, 1)
	ON CONFLICT (symptom, department) DO UPDATE SET
		bookings = symptom_mappings.bookings + 1,
		updated_at = NOW()
`

// RecordBooking upserts the patient, stores the appointment and bumps the
// symptom mapping counter in one transaction.
func (s *PostgresStore) RecordBooking(ctx context.Context, b Booking) (Appointment, error) {
	if err := b.Validate(); err != nil {
		return Appointment{}, err
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return Appointment{}, fmt.Errorf("patients: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var patientID uuid.UUID
	if err := tx.QueryRow(ctx, upsertPatient, uuid.New(), NormalizePhone(b.Phone), b.Name, b.Age).Scan(&patientID); err != nil {
		return Appointment{}, fmt.Errorf("patients: upsert patient: %w", err)
	}

	appt := Appointment{
		ID:         uuid.New(),
		PatientID:  patientID,
		CallID:     b.CallID,
		Symptom:    b.Symptom,
		Department: b.Department,
		Doctor:     b.Doctor,
		Slot:       b.Slot,
		CreatedAt:  s.now().UTC(),
	}
	if _, err := tx.Exec(ctx, insertAppointment,
		appt.ID, appt.PatientID, appt.CallID, appt.Symptom, appt.Department, appt.Doctor, appt.Slot, appt.CreatedAt,
	); err != nil {
		return Appointment{}, fmt.Errorf("patients: insert appointment: %w", err)
	}
	if _, err := tx.Exec(ctx, upsertMapping, appt.Symptom, appt.Department); err != nil {
		return Appointment{}, fmt.Errorf("patients: record mapping: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Appointment{}, fmt.Errorf("patients: commit: %w", err)
	}
	return appt, nil
}
