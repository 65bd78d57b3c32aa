package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/carelink/healthcare-portal/internal/config"
	"github.com/carelink/healthcare-portal/internal/db"
	"github.com/carelink/healthcare-portal/internal/logging"
)

// The simulator exercises the two contention paths: duplicate verification
// submissions for the same doctor, and concurrent bookings of the same
// doctor/time slot. In a correct run every duplicate lands as a conflict,
// never as a second success.

type SimConfig struct {
	APIBaseURL   string
	Duration     time.Duration
	Workers      int
	VerifyRatio  float64
	BookingRatio float64
	ReadRatio    float64
	PatientLimit int
	DoctorLimit  int
	PostgresDSN  string
}

type DataPool struct {
	Patients      []uuid.UUID
	PendingEmails []string
	DoctorEmails  []string
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	mu        sync.Mutex
	latencies []time.Duration
}

func (om *OperationMetrics) Record(latency time.Duration, status int) {
	atomic.AddInt64(&om.Total, 1)
	switch {
	case status >= 200 && status < 300:
		atomic.AddInt64(&om.Success, 1)
	case status == http.StatusConflict:
		atomic.AddInt64(&om.Conflict, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.latencies = append(om.latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.latencies) == 0 {
		return 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.latencies))
	copy(latencies, om.latencies)
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	avg = sum / time.Duration(len(latencies))

	p50 = latencies[len(latencies)*50/100]
	p95Idx := len(latencies) * 95 / 100
	if p95Idx >= len(latencies) {
		p95Idx = len(latencies) - 1
	}
	p95 = latencies[p95Idx]

	return avg, p50, p95
}

type Metrics struct {
	Verify  OperationMetrics
	Booking OperationMetrics
	Queue   OperationMetrics
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *http.Client
	metrics Metrics
}

func main() {
	logging.Init("simulate", "dev")
	log.Info().Msg("simulator starting")

	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pgPool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pgPool.Close()

	dataPool, err := loadDataPool(ctx, pgPool, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("load data pool")
	}

	log.Info().
		Int("patients", len(dataPool.Patients)).
		Int("pending_doctors", len(dataPool.PendingEmails)).
		Int("approved_doctors", len(dataPool.DoctorEmails)).
		Msg("data pool loaded")

	sim := &Simulator{
		config: cfg,
		pool:   dataPool,
		client: &http.Client{Timeout: 10 * time.Second},
	}

	sim.Run()
	sim.PrintReport()
}

func loadConfig() SimConfig {
	baseCfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load base config")
	}

	cfg := SimConfig{
		APIBaseURL:   getEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Duration:     getDuration("SIM_DURATION", 30*time.Second),
		Workers:      getInt("SIM_WORKERS", 10),
		VerifyRatio:  getFloat("SIM_VERIFY_RATIO", 0.3),
		BookingRatio: getFloat("SIM_BOOKING_RATIO", 0.4),
		ReadRatio:    getFloat("SIM_READ_RATIO", 0.3),
		PatientLimit: getInt("SIM_PATIENT_LIMIT", 1000),
		DoctorLimit:  getInt("SIM_DOCTOR_LIMIT", 200),
		PostgresDSN:  baseCfg.PostgresDSN,
	}

	total := cfg.VerifyRatio + cfg.BookingRatio + cfg.ReadRatio
	if total > 0 {
		cfg.VerifyRatio /= total
		cfg.BookingRatio /= total
		cfg.ReadRatio /= total
	}

	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required (set in .env or environment)")
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	return nil
}

func loadDataPool(ctx context.Context, pool *pgxpool.Pool, cfg SimConfig) (*DataPool, error) {
	dataPool := &DataPool{}

	rows, err := pool.Query(ctx, `SELECT id FROM patients LIMIT $1`, cfg.PatientLimit)
	if err != nil {
		return nil, fmt.Errorf("load patients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		dataPool.Patients = append(dataPool.Patients, id)
	}

	rows, err = pool.Query(ctx, `
		SELECT email, status FROM doctors
		WHERE status IN ('pending', 'approved')
		LIMIT $1
	`, cfg.DoctorLimit)
	if err != nil {
		return nil, fmt.Errorf("load doctors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var email, status string
		if err := rows.Scan(&email, &status); err != nil {
			return nil, err
		}
		if status == "pending" {
			dataPool.PendingEmails = append(dataPool.PendingEmails, email)
		} else {
			dataPool.DoctorEmails = append(dataPool.DoctorEmails, email)
		}
	}

	return dataPool, nil
}

func (s *Simulator) Run() {
	log.Info().
		Dur("duration", s.config.Duration).
		Int("workers", s.config.Workers).
		Msg("simulation running")

	deadline := time.Now().Add(s.config.Duration)

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for time.Now().Before(deadline) {
				s.step(rng)
			}
		}(time.Now().UnixNano() + int64(i))
	}
	wg.Wait()
}

func (s *Simulator) step(rng *rand.Rand) {
	roll := rng.Float64()
	switch {
	case roll < s.config.VerifyRatio:
		s.doVerify(rng)
	case roll < s.config.VerifyRatio+s.config.BookingRatio:
		s.doBooking(rng)
	default:
		s.doQueueRead()
	}
}

// doVerify fires two approve requests for the same doctor back to back.
// The single-flight guard and the registry's status check mean at most one
// can succeed; everything else must come back 409.
func (s *Simulator) doVerify(rng *rand.Rand) {
	if len(s.pool.PendingEmails) == 0 {
		return
	}
	email := s.pool.PendingEmails[rng.Intn(len(s.pool.PendingEmails))]
	url := fmt.Sprintf("%s/admin/verification/%s/approve", s.config.APIBaseURL, email)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			status := s.post(url, nil)
			s.metrics.Verify.Record(time.Since(start), status)
		}()
	}
	wg.Wait()
}

// doBooking has two patients race for the same doctor/time pair.
func (s *Simulator) doBooking(rng *rand.Rand) {
	if len(s.pool.Patients) < 2 || len(s.pool.DoctorEmails) == 0 {
		return
	}
	doctor := s.pool.DoctorEmails[rng.Intn(len(s.pool.DoctorEmails))]
	slot := time.Now().Add(time.Duration(1+rng.Intn(24*14)) * time.Hour).Truncate(time.Hour)
	url := s.config.APIBaseURL + "/appointments"

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(patient uuid.UUID) {
			defer wg.Done()
			body, _ := json.Marshal(map[string]any{
				"patient_id":   patient.String(),
				"doctor_email": doctor,
				"scheduled_at": slot.Format(time.RFC3339),
			})
			start := time.Now()
			status := s.post(url, body)
			s.metrics.Booking.Record(time.Since(start), status)
		}(s.pool.Patients[rng.Intn(len(s.pool.Patients))])
	}
	wg.Wait()
}

func (s *Simulator) doQueueRead() {
	start := time.Now()
	resp, err := s.client.Get(s.config.APIBaseURL + "/admin/verification/queue?status=pending")
	if err != nil {
		s.metrics.Queue.Record(time.Since(start), 0)
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	s.metrics.Queue.Record(time.Since(start), resp.StatusCode)
}

func (s *Simulator) post(url string, body []byte) int {
	resp, err := s.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return 0
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp.StatusCode
}

func (s *Simulator) PrintReport() {
	report := func(name string, om *OperationMetrics) {
		avg, p50, p95 := om.Stats()
		log.Info().
			Str("op", name).
			Int64("total", atomic.LoadInt64(&om.Total)).
			Int64("success", atomic.LoadInt64(&om.Success)).
			Int64("conflict", atomic.LoadInt64(&om.Conflict)).
			Int64("error", atomic.LoadInt64(&om.Error)).
			Dur("avg", avg).
			Dur("p50", p50).
			Dur("p95", p95).
			Msg("simulation results")
	}

	report("verify", &s.metrics.Verify)
	report("booking", &s.metrics.Booking)
	report("queue_read", &s.metrics.Queue)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
