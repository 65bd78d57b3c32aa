package api

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carelink/healthcare-portal/internal/geo"
	"github.com/carelink/healthcare-portal/internal/hospital"
)

// stubHospitalRepo implements a fixed-listing test double for
// hospital.Repository
type stubHospitalRepo struct {
	hospitals []hospital.Hospital
}

func (s *stubHospitalRepo) ListHospitals(ctx context.Context) ([]hospital.Hospital, error) {
	return s.hospitals, nil
}

func (s *stubHospitalRepo) GetHospitalByID(ctx context.Context, id uuid.UUID) (*hospital.Hospital, error) {
	return nil, hospital.ErrHospitalNotFound
}

func (s *stubHospitalRepo) CreateHospital(ctx context.Context, h hospital.Hospital) (*hospital.Hospital, error) {
	return &h, nil
}

func (s *stubHospitalRepo) UpdateHospital(ctx context.Context, id uuid.UUID, upd hospital.Update) (*hospital.Hospital, error) {
	return nil, hospital.ErrHospitalNotFound
}

func (s *stubHospitalRepo) DeleteHospital(ctx context.Context, id uuid.UUID) error {
	return hospital.ErrHospitalNotFound
}

func TestNearbyHospitalsHandler(t *testing.T) {
	repo := &stubHospitalRepo{hospitals: []hospital.Hospital{
		{ID: uuid.New(), Name: "Far General", Coordinates: &geo.Point{Lat: 0, Lng: 1}},
		{ID: uuid.New(), Name: "Near Memorial", Coordinates: &geo.Point{Lat: 0, Lng: 0.01}},
		{ID: uuid.New(), Name: "Unmapped Clinic"},
	}}
	handler := nearbyHospitalsHandler(hospital.NewService(repo))

	req := httptest.NewRequest("GET", "/emergency/hospitals?lat=0&lng=0", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, 200, rec.Code)

	var resp []RankedHospitalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	// Unmapped entries are dropped, the rest come back nearest first.
	require.Len(t, resp, 2)
	assert.Equal(t, "Near Memorial", resp[0].Name)
	assert.Equal(t, "Far General", resp[1].Name)
	require.NotNil(t, resp[0].DistanceKm)
	require.NotNil(t, resp[1].DistanceKm)
	assert.Less(t, *resp[0].DistanceKm, *resp[1].DistanceKm)
}

func TestNearbyHospitalsHandler_MissingLocation(t *testing.T) {
	repo := &stubHospitalRepo{hospitals: []hospital.Hospital{
		{ID: uuid.New(), Name: "City General", Coordinates: &geo.Point{Lat: 10, Lng: 10}},
	}}
	handler := nearbyHospitalsHandler(hospital.NewService(repo))

	req := httptest.NewRequest("GET", "/emergency/hospitals", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, 200, rec.Code)

	var resp []RankedHospitalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	// No location still yields a list, just without distances.
	require.Len(t, resp, 1)
	assert.Nil(t, resp[0].DistanceKm)
	assert.Equal(t, "Calculating...", resp[0].DisplayDistance)
	assert.Equal(t, "N/A", resp[0].ETA)
}
