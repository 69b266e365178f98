package patients

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is the in-process patient store used when no database is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	patients map[string]*Patient
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{patients: make(map[string]*Patient), now: time.Now}
}

func (s *MemoryStore) GetByPhone(_ context.Context, phone string) (*Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patients[NormalizePhone(phone)]
	if !ok {
		return nil, ErrPatientNotFound
	}
	cp := *p
	if p.LastAppointment != nil {
		appt := *p.LastAppointment
		cp.LastAppointment = &appt
	}
	return &cp, nil
}

func (s *MemoryStore) RecordBooking(_ context.Context, b Booking) (Appointment, error) {
	if err := b.Validate(); err != nil {
		return Appointment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	phone := NormalizePhone(b.Phone)
	p, ok := s.patients[phone]
	if !ok {
		p = &Patient{ID: uuid.New(), Phone: phone}
		s.patients[phone] = p
	}
	if b.Name != "" {
		p.Name = b.Name
	}
	if b.Age > 0 {
		p.Age = b.Age
	}
	appt := Appointment{
		ID:         uuid.New(),
		PatientID:  p.ID,
		CallID:     b.CallID,
		Symptom:    b.Symptom,
		Department: b.Department,
		Doctor:     b.Doctor,
		Slot:       b.Slot,
		CreatedAt:  s.now().UTC(),
	}
	p.LastAppointment = &appt
	return appt, nil
}
