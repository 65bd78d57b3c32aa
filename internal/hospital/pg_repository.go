package hospital

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carelink/healthcare-portal/internal/geo"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const hospitalColumns = `
	id, name, address, phone, email, specialties, facilities,
	rating, review_count, has_emergency, verified,
	general_beds, icu_beds, emergency_beds,
	lat, lng, created_at, updated_at
`

func scanHospital(row pgx.Row) (*Hospital, error) {
	var h Hospital
	var lat, lng *float64

	err := row.Scan(
		&h.ID,
		&h.Name,
		&h.Address,
		&h.Phone,
		&h.Email,
		&h.Specialties,
		&h.Facilities,
		&h.Rating,
		&h.ReviewCount,
		&h.HasEmergency,
		&h.Verified,
		&h.GeneralBeds,
		&h.ICUBeds,
		&h.EmergencyBeds,
		&lat,
		&lng,
		&h.CreatedAt,
		&h.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrHospitalNotFound
		}
		return nil, err
	}

	if lat != nil && lng != nil {
		h.Coordinates = &geo.Point{Lat: *lat, Lng: *lng}
	}
	return &h, nil
}

func (r *PgRepository) ListHospitals(ctx context.Context) ([]Hospital, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+hospitalColumns+`
		FROM hospitals
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Hospital
	for rows.Next() {
		h, err := scanHospital(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *h)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) GetHospitalByID(ctx context.Context, id uuid.UUID) (*Hospital, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+hospitalColumns+`
		FROM hospitals
		WHERE id = $1
	`, id)
	return scanHospital(row)
}

func (r *PgRepository) CreateHospital(ctx context.Context, h Hospital) (*Hospital, error) {
	id := uuid.New()

	var lat, lng *float64
	if h.Coordinates != nil {
		lat = &h.Coordinates.Lat
		lng = &h.Coordinates.Lng
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO hospitals (
			id, name, address, phone, email, specialties, facilities,
			rating, review_count, has_emergency, verified,
			general_beds, icu_beds, emergency_beds,
			lat, lng, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, 0, $8, $9, $10, $11, $12, $13, $14, now(), now())
		RETURNING `+hospitalColumns+`
	`, id, h.Name, h.Address, h.Phone, h.Email, h.Specialties, h.Facilities,
		h.HasEmergency, h.Verified, h.GeneralBeds, h.ICUBeds, h.EmergencyBeds, lat, lng)

	return scanHospital(row)
}

func (r *PgRepository) UpdateHospital(ctx context.Context, id uuid.UUID, upd Update) (*Hospital, error) {
	var lat, lng *float64
	if upd.Coordinates != nil {
		lat = &upd.Coordinates.Lat
		lng = &upd.Coordinates.Lng
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE hospitals
		SET name           = COALESCE($2, name),
		    address        = COALESCE($3, address),
		    phone          = COALESCE($4, phone),
		    email          = COALESCE($5, email),
		    specialties    = COALESCE($6, specialties),
		    facilities     = COALESCE($7, facilities),
		    has_emergency  = COALESCE($8, has_emergency),
		    verified       = COALESCE($9, verified),
		    general_beds   = COALESCE($10, general_beds),
		    icu_beds       = COALESCE($11, icu_beds),
		    emergency_beds = COALESCE($12, emergency_beds),
		    lat            = COALESCE($13, lat),
		    lng            = COALESCE($14, lng),
		    updated_at     = now()
		WHERE id = $1
		RETURNING `+hospitalColumns+`
	`, id, upd.Name, upd.Address, upd.Phone, upd.Email, upd.Specialties, upd.Facilities,
		upd.HasEmergency, upd.Verified, upd.GeneralBeds, upd.ICUBeds, upd.EmergencyBeds, lat, lng)

	return scanHospital(row)
}

func (r *PgRepository) DeleteHospital(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM hospitals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete hospital: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrHospitalNotFound
	}
	return nil
}
