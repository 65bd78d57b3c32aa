package api

import (
	"errors"
	"net/http"
	"net/mail"

	"github.com/go-chi/chi/v5"

	"github.com/carelink/healthcare-portal/internal/verification"
)

func verificationQueueHandler(ctrl *verification.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := verification.Status(r.URL.Query().Get("status"))
		query := r.URL.Query().Get("q")

		switch status {
		case "", verification.StatusPending, verification.StatusApproved, verification.StatusRejected:
		default:
			writeError(w, http.StatusBadRequest, "invalid_status", "status must be pending, approved or rejected")
			return
		}

		doctors := ctrl.Filter(status, query)
		stats := ctrl.Stats()

		resp := VerificationQueueResponse{
			Stats: VerificationStatsResponse{
				Total:    stats.Total,
				Pending:  stats.Pending,
				Approved: stats.Approved,
				Rejected: stats.Rejected,
			},
			Doctors: make([]DoctorResponse, 0, len(doctors)),
		}
		for _, d := range doctors {
			resp.Doctors = append(resp.Doctors, toDoctorResponse(d, ctrl))
		}
		if refreshErr := ctrl.RefreshErr(); refreshErr != nil {
			resp.RefreshError = refreshErr.Error()
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func approveDoctorHandler(ctrl *verification.Controller) http.HandlerFunc {
	return verifyHandler(ctrl, verification.ActionApprove)
}

func rejectDoctorHandler(ctrl *verification.Controller) http.HandlerFunc {
	return verifyHandler(ctrl, verification.ActionReject)
}

func verifyHandler(ctrl *verification.Controller, action verification.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := chi.URLParam(r, "email")
		if _, err := mail.ParseAddress(email); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_email", "email must be a valid address")
			return
		}

		var err error
		switch action {
		case verification.ActionApprove:
			err = ctrl.SubmitApprove(r.Context(), email)
		case verification.ActionReject:
			err = ctrl.SubmitReject(r.Context(), email)
		}

		if err != nil {
			handleVerifyError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"email": email, "action": string(action)})
	}
}

func refreshVerificationHandler(ctrl *verification.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ctrl.Refresh(r.Context()); err != nil {
			writeError(w, http.StatusBadGateway, "refresh_failed", err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleVerifyError(w http.ResponseWriter, err error) {
	var refreshErr *verification.RefreshError

	switch {
	case errors.Is(err, verification.ErrVerificationInFlight):
		writeError(w, http.StatusConflict, "verification_in_flight", err.Error())
	case errors.Is(err, verification.ErrNotPending):
		writeError(w, http.StatusConflict, "doctor_not_pending", err.Error())
	case errors.Is(err, verification.ErrDoctorNotFound):
		writeError(w, http.StatusNotFound, "doctor_not_found", err.Error())
	case errors.As(err, &refreshErr):
		// The transition itself succeeded; only the listing re-fetch
		// failed. Report it as such so the client does not retry the
		// action.
		writeError(w, http.StatusBadGateway, "refresh_failed", err.Error())
	default:
		writeError(w, http.StatusBadGateway, "verification_failed", err.Error())
	}
}
