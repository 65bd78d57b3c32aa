package hospital

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListHospitals(ctx context.Context) ([]Hospital, error) {
	hospitals, err := s.repo.ListHospitals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list hospitals: %w", err)
	}
	return hospitals, nil
}

func (s *Service) GetHospital(ctx context.Context, id uuid.UUID) (*Hospital, error) {
	h, err := s.repo.GetHospitalByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get hospital: %w", err)
	}
	return h, nil
}

func (s *Service) CreateHospital(ctx context.Context, h Hospital) (*Hospital, error) {
	h.Name = strings.TrimSpace(h.Name)
	created, err := s.repo.CreateHospital(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("create hospital: %w", err)
	}
	return created, nil
}

func (s *Service) UpdateHospital(ctx context.Context, id uuid.UUID, upd Update) (*Hospital, error) {
	updated, err := s.repo.UpdateHospital(ctx, id, upd)
	if err != nil {
		return nil, fmt.Errorf("update hospital: %w", err)
	}
	return updated, nil
}

func (s *Service) DeleteHospital(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteHospital(ctx, id)
}
