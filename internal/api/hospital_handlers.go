package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carelink/healthcare-portal/internal/hospital"
)

func listHospitalsHandler(svc *hospital.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hospitals, err := svc.ListHospitals(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		resp := make([]HospitalResponse, 0, len(hospitals))
		for _, h := range hospitals {
			resp = append(resp, toHospitalResponse(h))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func getHospitalHandler(svc *hospital.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_hospital_id", "id must be a valid UUID")
			return
		}

		h, err := svc.GetHospital(r.Context(), id)
		if err != nil {
			handleHospitalError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toHospitalResponse(*h))
	}
}

func createHospitalHandler(svc *hospital.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateHospitalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		h := hospital.Hospital{
			Name:          req.Name,
			Address:       req.Address,
			Phone:         req.Phone,
			Email:         req.Email,
			Specialties:   req.Specialties,
			Facilities:    req.Facilities,
			HasEmergency:  req.HasEmergency,
			Verified:      req.Verified,
			GeneralBeds:   req.GeneralBeds,
			ICUBeds:       req.ICUBeds,
			EmergencyBeds: req.EmergencyBeds,
			Coordinates:   coordinatesFrom(req.Lat, req.Lng),
		}

		created, err := svc.CreateHospital(r.Context(), h)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, toHospitalResponse(*created))
	}
}

func updateHospitalHandler(svc *hospital.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_hospital_id", "id must be a valid UUID")
			return
		}

		var req UpdateHospitalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		upd := hospital.Update{
			Name:          req.Name,
			Address:       req.Address,
			Phone:         req.Phone,
			Email:         req.Email,
			Specialties:   req.Specialties,
			Facilities:    req.Facilities,
			HasEmergency:  req.HasEmergency,
			Verified:      req.Verified,
			GeneralBeds:   req.GeneralBeds,
			ICUBeds:       req.ICUBeds,
			EmergencyBeds: req.EmergencyBeds,
			Coordinates:   coordinatesFrom(req.Lat, req.Lng),
		}

		updated, err := svc.UpdateHospital(r.Context(), id, upd)
		if err != nil {
			handleHospitalError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toHospitalResponse(*updated))
	}
}

func deleteHospitalHandler(svc *hospital.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_hospital_id", "id must be a valid UUID")
			return
		}

		if err := svc.DeleteHospital(r.Context(), id); err != nil {
			handleHospitalError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func handleHospitalError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, hospital.ErrHospitalNotFound):
		writeError(w, http.StatusNotFound, "hospital_not_found", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
