package hospital

import (
	"time"

	"github.com/google/uuid"

	"github.com/carelink/healthcare-portal/internal/geo"
)

type Hospital struct {
	ID            uuid.UUID
	Name          string
	Address       string
	Phone         string
	Email         string
	Specialties   []string
	Facilities    []string
	Rating        float64
	ReviewCount   int
	HasEmergency  bool
	Verified      bool
	GeneralBeds   int
	ICUBeds       int
	EmergencyBeds int
	// Coordinates is nil for directory entries that were registered without
	// a location. Such entries cannot be ranked by proximity.
	Coordinates *geo.Point
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Update carries the mutable subset of a hospital record. Nil fields are
// left untouched.
type Update struct {
	Name          *string
	Address       *string
	Phone         *string
	Email         *string
	Specialties   []string
	Facilities    []string
	HasEmergency  *bool
	Verified      *bool
	GeneralBeds   *int
	ICUBeds       *int
	EmergencyBeds *int
	Coordinates   *geo.Point
}
