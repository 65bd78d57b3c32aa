package verification

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRegistry struct {
	pool *pgxpool.Pool
}

func NewPgRegistry(pool *pgxpool.Pool) *PgRegistry {
	return &PgRegistry{pool: pool}
}

const doctorColumns = `
	id, full_name, email, phone, specialization, license_number,
	medical_degree, hospital_affiliation, years_of_experience,
	consultation_fee, online_consultation, status, verification_date,
	created_at, updated_at
`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor

	err := row.Scan(
		&d.ID,
		&d.FullName,
		&d.Email,
		&d.Phone,
		&d.Specialization,
		&d.LicenseNumber,
		&d.MedicalDegree,
		&d.HospitalAffiliation,
		&d.YearsOfExperience,
		&d.ConsultationFee,
		&d.OnlineConsultation,
		&d.Status,
		&d.VerificationDate,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}

	return &d, nil
}

func (r *PgRegistry) List(ctx context.Context) ([]Doctor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Approve moves a pending registration to approved. The status check is in
// the UPDATE itself so two admin instances cannot both finalise the same
// record.
func (r *PgRegistry) Approve(ctx context.Context, email string) error {
	return r.transition(ctx, email, StatusApproved)
}

// Reject moves a pending registration to rejected.
func (r *PgRegistry) Reject(ctx context.Context, email string) error {
	return r.transition(ctx, email, StatusRejected)
}

func (r *PgRegistry) transition(ctx context.Context, email string, to Status) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE doctors
		SET status = $2,
		    verification_date = CASE WHEN $2 = 'approved' THEN now() ELSE verification_date END,
		    updated_at = now()
		WHERE email = $1
		  AND status = 'pending'
	`, email, to)
	if err != nil {
		return fmt.Errorf("transition doctor %s to %s: %w", email, to, err)
	}

	if tag.RowsAffected() == 0 {
		// Distinguish a missing record from one already finalised.
		var status Status
		err := r.pool.QueryRow(ctx, `SELECT status FROM doctors WHERE email = $1`, email).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrDoctorNotFound
		}
		if err != nil {
			return fmt.Errorf("check doctor status: %w", err)
		}
		return ErrNotPending
	}

	return nil
}

// IsApproved reports whether the doctor with the given email has passed
// verification. Unknown emails are simply not approved.
func (r *PgRegistry) IsApproved(ctx context.Context, email string) (bool, error) {
	var status Status
	err := r.pool.QueryRow(ctx, `SELECT status FROM doctors WHERE email = $1`, email).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check doctor approval: %w", err)
	}
	return status == StatusApproved, nil
}

// CreatePending registers a new doctor in pending state. Used by the
// sign-up path and the seeder.
func (r *PgRegistry) CreatePending(ctx context.Context, d Doctor) (*Doctor, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO doctors (
			id, full_name, email, phone, specialization, license_number,
			medical_degree, hospital_affiliation, years_of_experience,
			consultation_fee, online_consultation, status,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 'pending', now(), now())
		RETURNING `+doctorColumns+`
	`, d.ID, d.FullName, d.Email, d.Phone, d.Specialization, d.LicenseNumber,
		d.MedicalDegree, d.HospitalAffiliation, d.YearsOfExperience,
		d.ConsultationFee, d.OnlineConsultation)

	return scanDoctor(row)
}
