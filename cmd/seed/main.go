package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/carelink/healthcare-portal/internal/db"
	"github.com/carelink/healthcare-portal/internal/logging"
)

var specialties = []string{
	"Dermatology",
	"Cardiology",
	"General Practice",
	"Orthopedics",
	"Endocrinology",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
	"Ophthalmology",
	"ENT",
}

func main() {
	logging.Init("seed", "dev")
	log.Info().Msg("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal().Msg("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedHospitals(context.Background(), pool, 40); err != nil {
		log.Fatal().Err(err).Msg("seed hospitals")
	}
	if err := seedDoctors(context.Background(), pool, 120); err != nil {
		log.Fatal().Err(err).Msg("seed doctors")
	}
	if err := seedPatients(context.Background(), pool, 2000); err != nil {
		log.Fatal().Err(err).Msg("seed patients")
	}

	log.Info().Msg("seed complete")
}

func seedHospitals(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Info().Int("count", count).Msg("seeding hospitals")

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		id := uuid.New()
		name := fmt.Sprintf("%s %s Hospital", gofakeit.City(), gofakeit.RandomString([]string{"General", "Memorial", "Community", "Regional"}))

		specs := []string{
			specialties[gofakeit.Number(0, len(specialties)-1)],
			specialties[gofakeit.Number(0, len(specialties)-1)],
		}

		// Roughly one in ten directory entries arrives without a location,
		// matching what real registrations look like.
		var lat, lng *float64
		if gofakeit.Number(0, 9) > 0 {
			la := gofakeit.Float64Range(-60, 60)
			ln := gofakeit.Float64Range(-180, 180)
			lat, lng = &la, &ln
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO hospitals (
				id, name, address, phone, email, specialties, facilities,
				rating, review_count, has_emergency, verified,
				general_beds, icu_beds, emergency_beds,
				lat, lng, created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, true, $11, $12, $13, $14, $15, now(), now())
		`, id, name, gofakeit.Address().Address, gofakeit.Phone(), gofakeit.Email(),
			specs, []string{"Pharmacy", "Laboratory"},
			gofakeit.Float64Range(2.5, 5.0), gofakeit.Number(0, 2500), gofakeit.Bool(),
			gofakeit.Number(0, 300), gofakeit.Number(0, 60), gofakeit.Number(0, 40),
			lat, lng)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func seedDoctors(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Info().Int("count", count).Msg("seeding doctors")

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		id := uuid.New()
		specialization := specialties[gofakeit.Number(0, len(specialties)-1)]
		license := fmt.Sprintf("MED-%06d", gofakeit.Number(100000, 999999))

		// Most seeded doctors are already approved so bookings work out of
		// the box; the rest populate the verification queue.
		status := "approved"
		if gofakeit.Number(0, 3) == 0 {
			status = "pending"
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO doctors (
				id, full_name, email, phone, specialization, license_number,
				medical_degree, hospital_affiliation, years_of_experience,
				consultation_fee, online_consultation, status,
				verification_date, created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
				CASE WHEN $12 = 'approved' THEN now() END, now(), now())
		`, id, gofakeit.Name(), gofakeit.Email(), gofakeit.Phone(), specialization, license,
			gofakeit.RandomString([]string{"MBBS", "MD", "DO"}),
			fmt.Sprintf("%s General Hospital", gofakeit.City()),
			gofakeit.Number(1, 35), gofakeit.Float64Range(20, 250), gofakeit.Bool(), status)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Info().Int("count", count).Msg("seeding patients")

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		_, err := tx.Exec(ctx, `
			INSERT INTO patients (id, name, email, phone, created_at, updated_at)
			VALUES ($1, $2, $3, $4, now(), now())
		`, uuid.New(), gofakeit.Name(), gofakeit.Email(), gofakeit.Phone())
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
