package verification

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Doctor is a professional-registration record. The registry keys the
// approve/reject transitions by Email, not by ID; the internal ID exists
// only for directory cross-references.
type Doctor struct {
	ID                  uuid.UUID
	FullName            string
	Email               string
	Phone               string
	Specialization      string
	LicenseNumber       string
	MedicalDegree       string
	HospitalAffiliation string
	YearsOfExperience   int
	ConsultationFee     float64
	OnlineConsultation  bool
	Status              Status
	// VerificationDate is set by the registry at approval time, never by
	// this process.
	VerificationDate *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Stats summarises a verification queue for the admin dashboard.
type Stats struct {
	Total    int
	Pending  int
	Approved int
	Rejected int
}
