package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type SubmitClaimRequest struct {
	PatientUID   string    `json:"patient_uid" validate:"required"`
	ConnectionID uuid.UUID `json:"connection_id" validate:"required"`
	Amount       float64   `json:"amount" validate:"required,gt=0"`
	ClaimType    string    `json:"claim_type" validate:"required,oneof=emergency outpatient inpatient surgery"`
	Description  string    `json:"description"`
}

type PatientClaimDecisionRequest struct {
	Note string `json:"note,omitempty"`
}

type RejectClaimRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// Response DTOs

type ClaimResponse struct {
	ID                  uuid.UUID  `json:"id"`
	ClaimNumber         string     `json:"claim_number"`
	PatientID           uuid.UUID  `json:"patient_id"`
	HospitalID          uuid.UUID  `json:"hospital_id"`
	ConnectionID        uuid.UUID  `json:"connection_id"`
	Amount              float64    `json:"amount"`
	ClaimType           string     `json:"claim_type"`
	Status              string     `json:"status"`
	Description         string     `json:"description,omitempty"`
	PatientNote         string     `json:"patient_note,omitempty"`
	RejectionReason     string     `json:"rejection_reason,omitempty"`
	PaidAmount          float64    `json:"paid_amount"`
	PaidAt              *time.Time `json:"paid_at,omitempty"`
	RespondedAt         *time.Time `json:"responded_at,omitempty"`
	ProviderRespondedAt *time.Time `json:"provider_responded_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

type ClaimListResponse struct {
	Claims []ClaimResponse `json:"claims"`
	Total  int             `json:"total"`
}
