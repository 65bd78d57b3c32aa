package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/carelink/healthcare-portal/internal/appointment"
	"github.com/carelink/healthcare-portal/internal/hospital"
	"github.com/carelink/healthcare-portal/internal/verification"
)

type RouterConfig struct {
	Hospitals    *hospital.Service
	Appointments *appointment.Service
	Verification *verification.Controller
	PgPool       *pgxpool.Pool
	Redis        *redis.Client
	Env          string
	Version      string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Hospital directory
	r.Get("/hospitals", listHospitalsHandler(cfg.Hospitals))
	r.Post("/hospitals", createHospitalHandler(cfg.Hospitals))
	r.Get("/hospitals/{id}", getHospitalHandler(cfg.Hospitals))
	r.Put("/hospitals/{id}", updateHospitalHandler(cfg.Hospitals))
	r.Delete("/hospitals/{id}", deleteHospitalHandler(cfg.Hospitals))

	// Emergency triage
	r.Get("/emergency/hospitals", nearbyHospitalsHandler(cfg.Hospitals))

	// Doctor verification (admin)
	r.Get("/admin/verification/queue", verificationQueueHandler(cfg.Verification))
	r.Post("/admin/verification/refresh", refreshVerificationHandler(cfg.Verification))
	r.Post("/admin/verification/{email}/approve", approveDoctorHandler(cfg.Verification))
	r.Post("/admin/verification/{email}/reject", rejectDoctorHandler(cfg.Verification))

	// Appointment booking
	r.Post("/appointments", bookAppointmentHandler(cfg.Appointments))
	r.Get("/appointments", listAppointmentsHandler(cfg.Appointments))
	r.Get("/appointments/{id}", getAppointmentHandler(cfg.Appointments))
	r.Post("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Appointments))
	r.Post("/appointments/{id}/complete", completeAppointmentHandler(cfg.Appointments))

	return r
}
