package api

import (
	"net/http"
	"strconv"

	"github.com/carelink/healthcare-portal/internal/emergency"
	"github.com/carelink/healthcare-portal/internal/geo"
	"github.com/carelink/healthcare-portal/internal/hospital"
)

// nearbyHospitalsHandler serves the emergency triage list. The caller's
// location arrives as lat/lng query parameters; when either is missing or
// unparsable the list is still served, just without distances. Location
// acquisition (and its permission prompts) is entirely the client's
// problem.
func nearbyHospitalsHandler(svc *hospital.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := parseReference(r)

		hospitals, err := svc.ListHospitals(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		ranked := emergency.Rank(ref, hospitals)

		resp := make([]RankedHospitalResponse, 0, len(ranked))
		for _, rh := range ranked {
			resp = append(resp, toRankedHospitalResponse(rh))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func parseReference(r *http.Request) *geo.Point {
	latStr := r.URL.Query().Get("lat")
	lngStr := r.URL.Query().Get("lng")
	if latStr == "" || lngStr == "" {
		return nil
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return nil
	}

	return &geo.Point{Lat: lat, Lng: lng}
}
