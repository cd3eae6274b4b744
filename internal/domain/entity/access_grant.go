package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccessType represents the scope of records a grant covers
type AccessType string

const (
	AccessTypeFull          AccessType = "full"
	AccessTypeEmergencyOnly AccessType = "emergency_only"
)

// GrantStatus represents the status of an access grant
type GrantStatus string

const (
	GrantStatusPending  GrantStatus = "pending"
	GrantStatusGranted  GrantStatus = "granted"
	GrantStatusRejected GrantStatus = "rejected"
	GrantStatusRevoked  GrantStatus = "revoked"
)

// AccessGrant represents one requester's standing to read one patient's records.
// A requester may accumulate multiple historical rows per patient; access holds
// while any row for the pair is in granted status. Rejected and revoked rows are
// terminal, a fresh request creates a new row instead of reusing one.
type AccessGrant struct {
	ID               uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	PatientID        uuid.UUID   `gorm:"type:uuid;not null;index:idx_access_grants_pair" json:"patient_id"`
	RequesterID      uuid.UUID   `gorm:"type:uuid;not null;index:idx_access_grants_pair" json:"requester_id"`
	AccessType       AccessType  `gorm:"type:varchar(20);not null;default:'full'" json:"access_type"`
	Status           GrantStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Reason           string      `gorm:"type:text" json:"reason,omitempty"`
	IsEmergency      bool        `gorm:"not null;default:false" json:"is_emergency"`
	ProofImage       string      `gorm:"type:text" json:"proof_image,omitempty"`
	ProofText        string      `gorm:"type:text" json:"proof_text,omitempty"`
	HospitalNotified bool        `gorm:"not null;default:false" json:"hospital_notified"`
	RequestedAt      time.Time   `gorm:"autoCreateTime" json:"requested_at"`
	RespondedAt      *time.Time  `json:"responded_at,omitempty"`

	// Relationships
	Patient   User `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Requester User `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
}

func (AccessGrant) TableName() string {
	return "access_grants"
}

func (g *AccessGrant) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// IsPending checks if the grant is awaiting a patient decision
func (g *AccessGrant) IsPending() bool {
	return g.Status == GrantStatusPending
}

// IsGranted checks if the grant currently confers access
func (g *AccessGrant) IsGranted() bool {
	return g.Status == GrantStatusGranted
}

// Grant marks the request approved and stamps the decision time
func (g *AccessGrant) Grant(now time.Time) {
	g.Status = GrantStatusGranted
	g.RespondedAt = &now
}

// Reject marks the request rejected and stamps the decision time
func (g *AccessGrant) Reject(now time.Time) {
	g.Status = GrantStatusRejected
	g.RespondedAt = &now
}

// Revoke withdraws a previously granted request
func (g *AccessGrant) Revoke() {
	g.Status = GrantStatusRevoked
}
