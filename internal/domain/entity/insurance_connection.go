package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConnectionStatus represents the status of a patient-insurer relationship.
// A single disconnected value covers both "rejected while pending" and
// "disconnected while connected"; RejectionReason and the timestamps carry
// the context.
type ConnectionStatus string

const (
	ConnectionStatusPending      ConnectionStatus = "pending"
	ConnectionStatusConnected    ConnectionStatus = "connected"
	ConnectionStatusDisconnected ConnectionStatus = "disconnected"
)

// MissedPaymentsLimit is the number of consecutive failed charges after which
// a connection is automatically disconnected. Reconnection requires a brand-new
// connection request, not a status flip.
const MissedPaymentsLimit = 3

// PatientInsuranceConnection is the billing relationship between a patient and
// an insurance provider.
type PatientInsuranceConnection struct {
	ID                  uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	PatientID           uuid.UUID        `gorm:"type:uuid;not null;index:idx_connections_pair" json:"patient_id"`
	ProviderID          uuid.UUID        `gorm:"type:uuid;not null;index:idx_connections_pair" json:"provider_id"`
	Status              ConnectionStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ConnectionReason    string           `gorm:"type:text" json:"connection_reason,omitempty"`
	RejectionReason     string           `gorm:"type:text" json:"rejection_reason,omitempty"`
	MissedPaymentsCount int              `gorm:"not null;default:0" json:"missed_payments_count"`
	LastBillingDate     *time.Time       `json:"last_billing_date,omitempty"`
	RequestedAt         time.Time        `gorm:"autoCreateTime" json:"requested_at"`
	ApprovedAt          *time.Time       `json:"approved_at,omitempty"`
	DisconnectedAt      *time.Time       `json:"disconnected_at,omitempty"`

	// Relationships
	Patient  User              `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Provider InsuranceProvider `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
}

func (PatientInsuranceConnection) TableName() string {
	return "patient_insurance_connections"
}

func (c *PatientInsuranceConnection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// IsPending checks if the connection is awaiting provider review
func (c *PatientInsuranceConnection) IsPending() bool {
	return c.Status == ConnectionStatusPending
}

// IsConnected checks if the connection is active for billing and claims
func (c *PatientInsuranceConnection) IsConnected() bool {
	return c.Status == ConnectionStatusConnected
}

// IsLive reports whether the connection still occupies the (patient, provider)
// pair, blocking a new request for the same pair.
func (c *PatientInsuranceConnection) IsLive() bool {
	return c.Status == ConnectionStatusPending || c.Status == ConnectionStatusConnected
}

// Approve activates the connection and seeds the billing clock
func (c *PatientInsuranceConnection) Approve(now time.Time) {
	c.Status = ConnectionStatusConnected
	c.ApprovedAt = &now
	c.LastBillingDate = &now
}

// Disconnect moves the connection to its terminal status
func (c *PatientInsuranceConnection) Disconnect(now time.Time, reason string) {
	c.Status = ConnectionStatusDisconnected
	c.RejectionReason = reason
	c.DisconnectedAt = &now
}

// RecordSuccessfulCharge resets the missed-payment counter and advances the
// billing clock.
func (c *PatientInsuranceConnection) RecordSuccessfulCharge(now time.Time) {
	c.MissedPaymentsCount = 0
	c.LastBillingDate = &now
}

// RecordMissedCharge increments the missed-payment counter and reports whether
// the limit has been reached.
func (c *PatientInsuranceConnection) RecordMissedCharge() bool {
	c.MissedPaymentsCount++
	return c.MissedPaymentsCount >= MissedPaymentsLimit
}
