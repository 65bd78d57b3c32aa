package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	redisclient "github.com/carelink/healthcare-portal/internal/redis"
)

var (
	ErrSlotTaken           = errors.New("doctor already has an appointment at this time")
	ErrSlotBeingBooked     = errors.New("slot is currently being booked, please retry")
	ErrDoctorNotApproved   = errors.New("doctor is not approved for bookings")
	ErrInvalidStatusChange = errors.New("invalid appointment status change")
)

// DoctorChecker answers whether a doctor has passed verification. Only
// approved doctors accept bookings.
type DoctorChecker interface {
	IsApproved(ctx context.Context, email string) (bool, error)
}

type Service struct {
	repo    Repository
	doctors DoctorChecker
	locker  redisclient.Locker
}

func NewService(repo Repository, doctors DoctorChecker, locker redisclient.Locker) *Service {
	return &Service{
		repo:    repo,
		doctors: doctors,
		locker:  locker,
	}
}

// BookAppointment reserves a doctor's time slot for a patient. A
// distributed lock on the doctor/time pair keeps concurrent requests from
// both passing the conflict check.
func (s *Service) BookAppointment(ctx context.Context, patientID uuid.UUID, doctorEmail string, at time.Time, notes string) (*Appointment, error) {
	if _, err := s.repo.GetPatientByID(ctx, patientID); err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	approved, err := s.doctors.IsApproved(ctx, doctorEmail)
	if err != nil {
		return nil, fmt.Errorf("check doctor approval: %w", err)
	}
	if !approved {
		return nil, ErrDoctorNotApproved
	}

	var created *Appointment

	lockKey := fmt.Sprintf("%s|%d", doctorEmail, at.Unix())
	err = s.locker.WithLock(ctx, lockKey, func(lockCtx context.Context) error {
		// Re-check inside the critical section
		existing, err := s.repo.GetActiveAppointmentForSlot(lockCtx, doctorEmail, at)
		if err != nil && !errors.Is(err, ErrAppointmentNotFound) {
			return fmt.Errorf("check slot conflict: %w", err)
		}
		if existing != nil {
			return ErrSlotTaken
		}

		appt, err := s.repo.CreateAppointment(lockCtx, patientID, doctorEmail, at, notes)
		if err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}

		created = appt
		log.Info().
			Str("appointment_id", appt.ID.String()).
			Str("doctor_email", doctorEmail).
			Time("scheduled_at", at).
			Msg("appointment booked")

		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBeingBooked
		}
		return nil, err
	}

	return created, nil
}

// CancelAppointment moves a scheduled appointment to cancelled, freeing the
// slot for rebooking.
func (s *Service) CancelAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	updated, err := s.repo.UpdateAppointmentStatus(ctx, id, StatusScheduled, StatusCancelled)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, s.explainStatusChange(ctx, id)
		}
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}
	return updated, nil
}

// CompleteAppointment marks a scheduled appointment as completed.
func (s *Service) CompleteAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	updated, err := s.repo.UpdateAppointmentStatus(ctx, id, StatusScheduled, StatusCompleted)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, s.explainStatusChange(ctx, id)
		}
		return nil, fmt.Errorf("complete appointment: %w", err)
	}
	return updated, nil
}

// explainStatusChange distinguishes "no such appointment" from "exists but
// not in the expected status" after a compare-and-swap update matched no
// rows.
func (s *Service) explainStatusChange(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetAppointmentByID(ctx, id); err != nil {
		return err
	}
	return ErrInvalidStatusChange
}

// CompleteElapsedAppointments is called by the status worker periodically
// to sweep scheduled appointments whose time has passed.
func (s *Service) CompleteElapsedAppointments(ctx context.Context) error {
	elapsed, err := s.repo.FindElapsedScheduled(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("find elapsed appointments: %w", err)
	}

	for _, appt := range elapsed {
		_, err := s.repo.UpdateAppointmentStatus(ctx, appt.ID, StatusScheduled, StatusCompleted)
		if err != nil && !errors.Is(err, ErrAppointmentNotFound) {
			log.Error().Err(err).Str("appointment_id", appt.ID.String()).Msg("failed to complete appointment")
			continue
		}
	}

	return nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return appt, nil
}

func (s *Service) ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Detail, error) {
	limit, offset = clampPage(limit, offset)

	appointments, err := s.repo.ListAppointmentsByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list appointments by patient: %w", err)
	}
	return appointments, nil
}

func (s *Service) ListAppointmentsByDoctor(ctx context.Context, doctorEmail string, limit, offset int) ([]Detail, error) {
	limit, offset = clampPage(limit, offset)

	appointments, err := s.repo.ListAppointmentsByDoctor(ctx, doctorEmail, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list appointments by doctor: %w", err)
	}
	return appointments, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20 // default
	}
	if limit > 100 {
		limit = 100 // max
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
