// Package patients looks up returning callers and records completed bookings.
package patients

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrPatientNotFound is returned when no patient matches the phone number.
var ErrPatientNotFound = errors.New("patients: patient not found")

type Patient struct {
	ID    uuid.UUID `json:"id"`
	Phone string    `json:"phone"`
	Name  string    `json:"name"`
	Age   int       `json:"age,omitempty"`
	// LastAppointment is nil for callers who never completed a booking.
	LastAppointment *Appointment `json:"lastAppointment,omitempty"`
}

type Appointment struct {
	ID         uuid.UUID `json:"id"`
	PatientID  uuid.UUID `json:"patientId"`
	CallID     string    `json:"callId,omitempty"`
	Symptom    string    `json:"symptom"`
	Department string    `json:"department"`
	Doctor     string    `json:"doctor"`
	Slot       string    `json:"slot"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Booking is a finished conversation ready to be persisted.
type Booking struct {
	CallID     string
	Phone      string
	Name       string
	Age        int
	Symptom    string
	Department string
	Doctor     string
	Slot       string
}

// Validate checks the fields every stored appointment needs.
func (b Booking) Validate() error {
	switch {
	case NormalizePhone(b.Phone) == "":
		return errors.New("patients: booking phone is required")
	case strings.TrimSpace(b.Symptom) == "" || strings.TrimSpace(b.Department) == "":
		return errors.New("patients: booking symptom and department are required")
	case strings.TrimSpace(b.Slot) == "":
		return errors.New("patients: booking slot is required")
	}
	return nil
}

// Repository finds patients by caller phone.
type Repository interface {
	GetByPhone(ctx context.Context, phone string) (*Patient, error)
}

// BookingRecorder persists a completed booking.
type BookingRecorder interface {
	RecordBooking(ctx context.Context, b Booking) (Appointment, error)
}

// NormalizePhone keeps a leading + and digits only.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(phone) {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 1 && strings.HasPrefix(b.String(), "+") {
		return ""
	}
	return b.String()
}
