package api

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/carelink/healthcare-portal/internal/appointment"
	"github.com/carelink/healthcare-portal/internal/emergency"
	"github.com/carelink/healthcare-portal/internal/geo"
	"github.com/carelink/healthcare-portal/internal/hospital"
	"github.com/carelink/healthcare-portal/internal/verification"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Requests

type CreateHospitalRequest struct {
	Name          string   `json:"name" validate:"required"`
	Address       string   `json:"address" validate:"required"`
	Phone         string   `json:"phone"`
	Email         string   `json:"email" validate:"omitempty,email"`
	Specialties   []string `json:"specialties"`
	Facilities    []string `json:"facilities"`
	HasEmergency  bool     `json:"has_emergency"`
	Verified      bool     `json:"verified"`
	GeneralBeds   int      `json:"general_beds" validate:"gte=0"`
	ICUBeds       int      `json:"icu_beds" validate:"gte=0"`
	EmergencyBeds int      `json:"emergency_beds" validate:"gte=0"`
	Lat           *float64 `json:"lat" validate:"omitempty,latitude"`
	Lng           *float64 `json:"lng" validate:"omitempty,longitude"`
}

type UpdateHospitalRequest struct {
	Name          *string  `json:"name"`
	Address       *string  `json:"address"`
	Phone         *string  `json:"phone"`
	Email         *string  `json:"email" validate:"omitempty,email"`
	Specialties   []string `json:"specialties"`
	Facilities    []string `json:"facilities"`
	HasEmergency  *bool    `json:"has_emergency"`
	Verified      *bool    `json:"verified"`
	GeneralBeds   *int     `json:"general_beds" validate:"omitempty,gte=0"`
	ICUBeds       *int     `json:"icu_beds" validate:"omitempty,gte=0"`
	EmergencyBeds *int     `json:"emergency_beds" validate:"omitempty,gte=0"`
	Lat           *float64 `json:"lat" validate:"omitempty,latitude"`
	Lng           *float64 `json:"lng" validate:"omitempty,longitude"`
}

type BookAppointmentRequest struct {
	PatientID   string    `json:"patient_id" validate:"required,uuid"`
	DoctorEmail string    `json:"doctor_email" validate:"required,email"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	Notes       string    `json:"notes"`
}

// Responses

type HospitalResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	Specialties   []string  `json:"specialties"`
	Facilities    []string  `json:"facilities"`
	Rating        float64   `json:"rating"`
	ReviewCount   int       `json:"review_count"`
	HasEmergency  bool      `json:"has_emergency"`
	Verified      bool      `json:"verified"`
	GeneralBeds   int       `json:"general_beds"`
	ICUBeds       int       `json:"icu_beds"`
	EmergencyBeds int       `json:"emergency_beds"`
	Lat           *float64  `json:"lat,omitempty"`
	Lng           *float64  `json:"lng,omitempty"`
}

type RankedHospitalResponse struct {
	HospitalResponse
	DistanceKm      *float64 `json:"distance_km,omitempty"`
	DisplayDistance string   `json:"display_distance"`
	ETAMinutes      *int     `json:"eta_minutes,omitempty"`
	ETA             string   `json:"eta"`
}

type DoctorResponse struct {
	ID                  uuid.UUID  `json:"id"`
	FullName            string     `json:"full_name"`
	Email               string     `json:"email"`
	Phone               string     `json:"phone"`
	Specialization      string     `json:"specialization"`
	LicenseNumber       string     `json:"license_number"`
	MedicalDegree       string     `json:"medical_degree"`
	HospitalAffiliation string     `json:"hospital_affiliation"`
	YearsOfExperience   int        `json:"years_of_experience"`
	ConsultationFee     float64    `json:"consultation_fee"`
	OnlineConsultation  bool       `json:"online_consultation"`
	Status              string     `json:"status"`
	VerificationDate    *time.Time `json:"verification_date,omitempty"`
	InFlight            bool       `json:"in_flight"`
	LastError           string     `json:"last_error,omitempty"`
}

type VerificationQueueResponse struct {
	Stats        VerificationStatsResponse `json:"stats"`
	Doctors      []DoctorResponse          `json:"doctors"`
	RefreshError string                    `json:"refresh_error,omitempty"`
}

type VerificationStatsResponse struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

type AppointmentResponse struct {
	ID          uuid.UUID `json:"id"`
	PatientID   uuid.UUID `json:"patient_id"`
	DoctorEmail string    `json:"doctor_email"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
}

// Mapping helpers

func toHospitalResponse(h hospital.Hospital) HospitalResponse {
	resp := HospitalResponse{
		ID:            h.ID,
		Name:          h.Name,
		Address:       h.Address,
		Phone:         h.Phone,
		Email:         h.Email,
		Specialties:   h.Specialties,
		Facilities:    h.Facilities,
		Rating:        h.Rating,
		ReviewCount:   h.ReviewCount,
		HasEmergency:  h.HasEmergency,
		Verified:      h.Verified,
		GeneralBeds:   h.GeneralBeds,
		ICUBeds:       h.ICUBeds,
		EmergencyBeds: h.EmergencyBeds,
	}
	if h.Coordinates != nil {
		resp.Lat = &h.Coordinates.Lat
		resp.Lng = &h.Coordinates.Lng
	}
	return resp
}

func toRankedHospitalResponse(rh emergency.RankedHospital) RankedHospitalResponse {
	resp := RankedHospitalResponse{
		HospitalResponse: toHospitalResponse(rh.Hospital),
		DisplayDistance:  rh.DisplayDistance,
		ETA:              rh.ETA,
	}
	if rh.DistanceKnown {
		d := rh.DistanceKm
		eta := rh.ETAMinutes
		resp.DistanceKm = &d
		resp.ETAMinutes = &eta
	}
	return resp
}

func toDoctorResponse(d verification.Doctor, ctrl *verification.Controller) DoctorResponse {
	resp := DoctorResponse{
		ID:                  d.ID,
		FullName:            d.FullName,
		Email:               d.Email,
		Phone:               d.Phone,
		Specialization:      d.Specialization,
		LicenseNumber:       d.LicenseNumber,
		MedicalDegree:       d.MedicalDegree,
		HospitalAffiliation: d.HospitalAffiliation,
		YearsOfExperience:   d.YearsOfExperience,
		ConsultationFee:     d.ConsultationFee,
		OnlineConsultation:  d.OnlineConsultation,
		Status:              string(d.Status),
		VerificationDate:    d.VerificationDate,
		InFlight:            ctrl.InFlight(d.Email),
	}
	if actionErr := ctrl.ActionErr(d.Email); actionErr != nil {
		resp.LastError = actionErr.Error()
	}
	return resp
}

func toAppointmentResponse(a appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:          a.ID,
		PatientID:   a.PatientID,
		DoctorEmail: a.DoctorEmail,
		ScheduledAt: a.ScheduledAt,
		Status:      string(a.Status),
		Notes:       a.Notes,
	}
}

func coordinatesFrom(lat, lng *float64) *geo.Point {
	if lat == nil || lng == nil {
		return nil
	}
	return &geo.Point{Lat: *lat, Lng: *lng}
}
