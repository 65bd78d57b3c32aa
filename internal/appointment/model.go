package appointment

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type Patient struct {
	ID        uuid.UUID
	Name      string
	Email     *string
	Phone     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Appointment ties a patient to a doctor at an exact time. One doctor can
// hold at most one non-cancelled appointment per time.
type Appointment struct {
	ID          uuid.UUID
	PatientID   uuid.UUID
	DoctorEmail string
	ScheduledAt time.Time
	Status      Status
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Detail is an appointment hydrated with its patient for list views.
type Detail struct {
	Appointment
	Patient *Patient
}
