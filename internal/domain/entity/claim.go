package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClaimType represents the category of a billable event
type ClaimType string

const (
	ClaimTypeEmergency  ClaimType = "emergency"
	ClaimTypeOutpatient ClaimType = "outpatient"
	ClaimTypeInpatient  ClaimType = "inpatient"
	ClaimTypeSurgery    ClaimType = "surgery"
)

// ClaimStatus represents the status of a claim. A claim passes through two
// decision stages: the patient confirms it first (pending -> patient_approved),
// then the provider settles it (patient_approved -> approved -> paid). Either
// stage may reject.
type ClaimStatus string

const (
	ClaimStatusPending         ClaimStatus = "pending"
	ClaimStatusPatientApproved ClaimStatus = "patient_approved"
	ClaimStatusApproved        ClaimStatus = "approved"
	ClaimStatusRejected        ClaimStatus = "rejected"
	ClaimStatusPaid            ClaimStatus = "paid"
)

// Claim is a billable event tied to an active insurance connection.
type Claim struct {
	ID                  uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	ClaimNumber         string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"claim_number"`
	PatientID           uuid.UUID   `gorm:"type:uuid;not null;index" json:"patient_id"`
	HospitalID          uuid.UUID   `gorm:"type:uuid;not null;index" json:"hospital_id"`
	ConnectionID        uuid.UUID   `gorm:"type:uuid;not null;index" json:"connection_id"`
	Amount              float64     `gorm:"not null" json:"amount"`
	ClaimType           ClaimType   `gorm:"type:varchar(20);not null" json:"claim_type"`
	Status              ClaimStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Description         string      `gorm:"type:text" json:"description,omitempty"`
	PatientNote         string      `gorm:"type:text" json:"patient_note,omitempty"`
	RejectionReason     string      `gorm:"type:text" json:"rejection_reason,omitempty"`
	PaidAmount          float64     `json:"paid_amount"`
	PaidAt              *time.Time  `json:"paid_at,omitempty"`
	RespondedAt         *time.Time  `json:"responded_at,omitempty"`
	ProviderRespondedAt *time.Time  `json:"provider_responded_at,omitempty"`
	CreatedAt           time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time   `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient    User                       `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Hospital   User                       `gorm:"foreignKey:HospitalID" json:"hospital,omitempty"`
	Connection PatientInsuranceConnection `gorm:"foreignKey:ConnectionID" json:"connection,omitempty"`
}

func (Claim) TableName() string {
	return "claims"
}

func (c *Claim) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// IsPending checks if the claim is awaiting the patient's confirmation
func (c *Claim) IsPending() bool {
	return c.Status == ClaimStatusPending
}

// IsPatientApproved checks if the claim is awaiting the provider's decision
func (c *Claim) IsPatientApproved() bool {
	return c.Status == ClaimStatusPatientApproved
}

// IsApproved checks if the claim is ready to be paid
func (c *Claim) IsApproved() bool {
	return c.Status == ClaimStatusApproved
}

// Pay settles an approved claim in full
func (c *Claim) Pay(now time.Time) {
	c.Status = ClaimStatusPaid
	c.PaidAmount = c.Amount
	c.PaidAt = &now
}
