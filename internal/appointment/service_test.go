package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisclient "github.com/carelink/healthcare-portal/internal/redis"
)

// mockRepo implements a test double for Repository
type mockRepo struct {
	patients     map[uuid.UUID]*Patient
	appointments map[uuid.UUID]*Appointment
	slotTaken    bool
	createErr    error
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		patients:     make(map[uuid.UUID]*Patient),
		appointments: make(map[uuid.UUID]*Appointment),
	}
}

func (m *mockRepo) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	if p, ok := m.patients[id]; ok {
		return p, nil
	}
	return nil, ErrPatientNotFound
}

func (m *mockRepo) GetActiveAppointmentForSlot(ctx context.Context, doctorEmail string, at time.Time) (*Appointment, error) {
	if m.slotTaken {
		return &Appointment{ID: uuid.New(), DoctorEmail: doctorEmail, ScheduledAt: at, Status: StatusScheduled}, nil
	}
	return nil, ErrAppointmentNotFound
}

func (m *mockRepo) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	if a, ok := m.appointments[id]; ok {
		return a, nil
	}
	return nil, ErrAppointmentNotFound
}

func (m *mockRepo) CreateAppointment(ctx context.Context, patientID uuid.UUID, doctorEmail string, at time.Time, notes string) (*Appointment, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	a := &Appointment{
		ID:          uuid.New(),
		PatientID:   patientID,
		DoctorEmail: doctorEmail,
		ScheduledAt: at,
		Status:      StatusScheduled,
		Notes:       notes,
	}
	m.appointments[a.ID] = a
	return a, nil
}

func (m *mockRepo) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error) {
	a, ok := m.appointments[id]
	if !ok || a.Status != from {
		return nil, ErrAppointmentNotFound
	}
	a.Status = to
	return a, nil
}

func (m *mockRepo) FindElapsedScheduled(ctx context.Context, before time.Time) ([]Appointment, error) {
	var out []Appointment
	for _, a := range m.appointments {
		if a.Status == StatusScheduled && a.ScheduledAt.Before(before) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockRepo) ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Detail, error) {
	return nil, nil
}

func (m *mockRepo) ListAppointmentsByDoctor(ctx context.Context, doctorEmail string, limit, offset int) ([]Detail, error) {
	return nil, nil
}

// passLocker runs the critical section inline; failLocker simulates a lost
// lock race.
type passLocker struct{}

func (passLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type failLocker struct{}

func (failLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	return redisclient.ErrLockNotAcquired
}

type approvedChecker struct{ approved bool }

func (c approvedChecker) IsApproved(ctx context.Context, email string) (bool, error) {
	return c.approved, nil
}

func TestBookAppointment_Success(t *testing.T) {
	repo := newMockRepo()
	patientID := uuid.New()
	repo.patients[patientID] = &Patient{ID: patientID, Name: "Maya Iyer"}

	svc := NewService(repo, approvedChecker{approved: true}, passLocker{})

	at := time.Now().Add(48 * time.Hour).Truncate(time.Hour)
	appt, err := svc.BookAppointment(context.Background(), patientID, "doc@x.com", at, "follow-up")
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, appt.Status)
	assert.Equal(t, "doc@x.com", appt.DoctorEmail)
	assert.Equal(t, at, appt.ScheduledAt)
}

func TestBookAppointment_UnknownPatient(t *testing.T) {
	svc := NewService(newMockRepo(), approvedChecker{approved: true}, passLocker{})

	_, err := svc.BookAppointment(context.Background(), uuid.New(), "doc@x.com", time.Now(), "")
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestBookAppointment_DoctorNotApproved(t *testing.T) {
	repo := newMockRepo()
	patientID := uuid.New()
	repo.patients[patientID] = &Patient{ID: patientID, Name: "Maya Iyer"}

	svc := NewService(repo, approvedChecker{approved: false}, passLocker{})

	_, err := svc.BookAppointment(context.Background(), patientID, "doc@x.com", time.Now(), "")
	assert.ErrorIs(t, err, ErrDoctorNotApproved)
	assert.Empty(t, repo.appointments)
}

func TestBookAppointment_SlotConflict(t *testing.T) {
	repo := newMockRepo()
	patientID := uuid.New()
	repo.patients[patientID] = &Patient{ID: patientID, Name: "Maya Iyer"}
	repo.slotTaken = true

	svc := NewService(repo, approvedChecker{approved: true}, passLocker{})

	_, err := svc.BookAppointment(context.Background(), patientID, "doc@x.com", time.Now(), "")
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestBookAppointment_LockContention(t *testing.T) {
	repo := newMockRepo()
	patientID := uuid.New()
	repo.patients[patientID] = &Patient{ID: patientID, Name: "Maya Iyer"}

	svc := NewService(repo, approvedChecker{approved: true}, failLocker{})

	_, err := svc.BookAppointment(context.Background(), patientID, "doc@x.com", time.Now(), "")
	assert.ErrorIs(t, err, ErrSlotBeingBooked)
}

func TestCancelAppointment_InvalidStatusChange(t *testing.T) {
	repo := newMockRepo()
	a := &Appointment{ID: uuid.New(), Status: StatusCompleted}
	repo.appointments[a.ID] = a

	svc := NewService(repo, approvedChecker{approved: true}, passLocker{})

	_, err := svc.CancelAppointment(context.Background(), a.ID)
	assert.ErrorIs(t, err, ErrInvalidStatusChange)

	_, err = svc.CancelAppointment(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestCompleteElapsedAppointments(t *testing.T) {
	repo := newMockRepo()
	past := &Appointment{ID: uuid.New(), Status: StatusScheduled, ScheduledAt: time.Now().Add(-2 * time.Hour)}
	future := &Appointment{ID: uuid.New(), Status: StatusScheduled, ScheduledAt: time.Now().Add(2 * time.Hour)}
	repo.appointments[past.ID] = past
	repo.appointments[future.ID] = future

	svc := NewService(repo, approvedChecker{approved: true}, passLocker{})
	require.NoError(t, svc.CompleteElapsedAppointments(context.Background()))

	assert.Equal(t, StatusCompleted, repo.appointments[past.ID].Status)
	assert.Equal(t, StatusScheduled, repo.appointments[future.ID].Status)
}
