package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type RegisterProviderRequest struct {
	Name          string   `json:"name" validate:"required,max=255"`
	Description   string   `json:"description"`
	MonthlyFee    float64  `json:"monthly_fee" validate:"required,gt=0"`
	CoverageLimit float64  `json:"coverage_limit" validate:"required,gt=0"`
	CoverageTypes []string `json:"coverage_types"`
}

type RequestConnectionRequest struct {
	ProviderID uuid.UUID `json:"provider_id" validate:"required"`
	Reason     string    `json:"reason" validate:"required"`
}

type RejectConnectionRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// Response DTOs

type InsuranceProviderResponse struct {
	ID            uuid.UUID `json:"id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	MonthlyFee    float64   `json:"monthly_fee"`
	CoverageLimit float64   `json:"coverage_limit"`
	CoverageTypes []string  `json:"coverage_types,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

type ProviderListResponse struct {
	Providers []InsuranceProviderResponse `json:"providers"`
	Total     int                         `json:"total"`
}

type ConnectionResponse struct {
	ID                  uuid.UUID                  `json:"id"`
	PatientID           uuid.UUID                  `json:"patient_id"`
	ProviderID          uuid.UUID                  `json:"provider_id"`
	Status              string                     `json:"status"`
	ConnectionReason    string                     `json:"connection_reason,omitempty"`
	RejectionReason     string                     `json:"rejection_reason,omitempty"`
	MissedPaymentsCount int                        `json:"missed_payments_count"`
	LastBillingDate     *time.Time                 `json:"last_billing_date,omitempty"`
	RequestedAt         time.Time                  `json:"requested_at"`
	ApprovedAt          *time.Time                 `json:"approved_at,omitempty"`
	DisconnectedAt      *time.Time                 `json:"disconnected_at,omitempty"`
	Provider            *InsuranceProviderResponse `json:"provider,omitempty"`
	Patient             *UserResponse              `json:"patient,omitempty"`
}

type ConnectionListResponse struct {
	Connections []ConnectionResponse `json:"connections"`
	Total       int                  `json:"total"`
}
