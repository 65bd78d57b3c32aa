package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPatientNotFound     = errors.New("patient not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// Repository contains all DB interactions needed by the booking service.
type Repository interface {
	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)

	// For conflict checks
	GetActiveAppointmentForSlot(ctx context.Context, doctorEmail string, at time.Time) (*Appointment, error)
	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// Creation and updates
	CreateAppointment(ctx context.Context, patientID uuid.UUID, doctorEmail string, at time.Time, notes string) (*Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error)

	// Status worker
	FindElapsedScheduled(ctx context.Context, before time.Time) ([]Appointment, error)

	// List views
	ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Detail, error)
	ListAppointmentsByDoctor(ctx context.Context, doctorEmail string, limit, offset int) ([]Detail, error)
}
