package hospital

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrHospitalNotFound = errors.New("hospital not found")

// Repository contains all DB interactions needed by the directory service.
type Repository interface {
	ListHospitals(ctx context.Context) ([]Hospital, error)
	GetHospitalByID(ctx context.Context, id uuid.UUID) (*Hospital, error)

	CreateHospital(ctx context.Context, h Hospital) (*Hospital, error)
	UpdateHospital(ctx context.Context, id uuid.UUID, upd Update) (*Hospital, error)
	DeleteHospital(ctx context.Context, id uuid.UUID) error
}
