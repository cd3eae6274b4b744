package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type RequestAccessRequest struct {
	PatientUID  string `json:"patient_uid" validate:"required"`
	AccessType  string `json:"access_type" validate:"required,oneof=full emergency_only"`
	Reason      string `json:"reason" validate:"required"`
	IsEmergency bool   `json:"is_emergency"`
	ProofImage  string `json:"proof_image,omitempty"`
	ProofText   string `json:"proof_text,omitempty"`
}

type RespondAccessRequest struct {
	Approve bool `json:"approve"`
}

type CheckAccessRequest struct {
	PatientUID   string `json:"patient_uid" validate:"required"`
	RequesterUID string `json:"requester_uid" validate:"required"`
}

// Response DTOs

type AccessGrantResponse struct {
	ID               uuid.UUID     `json:"id"`
	PatientID        uuid.UUID     `json:"patient_id"`
	RequesterID      uuid.UUID     `json:"requester_id"`
	AccessType       string        `json:"access_type"`
	Status           string        `json:"status"`
	Reason           string        `json:"reason,omitempty"`
	IsEmergency      bool          `json:"is_emergency"`
	HospitalNotified bool          `json:"hospital_notified"`
	RequestedAt      time.Time     `json:"requested_at"`
	RespondedAt      *time.Time    `json:"responded_at,omitempty"`
	Patient          *UserResponse `json:"patient,omitempty"`
	Requester        *UserResponse `json:"requester,omitempty"`
}

type AccessGrantListResponse struct {
	Grants []AccessGrantResponse `json:"grants"`
	Total  int                   `json:"total"`
}

type CheckAccessResponse struct {
	HasAccess bool `json:"has_access"`
}
