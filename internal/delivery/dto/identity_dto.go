package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type RegisterUserRequest struct {
	WalletAddress string `json:"wallet_address" validate:"required,min=4,max=255"`
	Username      string `json:"username" validate:"required,min=3,max=100"`
	Role          string `json:"role" validate:"required,oneof=patient doctor hospital emergency_responder insurance_provider"`
	HospitalName  string `json:"hospital_name,omitempty" validate:"max=255"`
}

type UpsertHealthProfileRequest struct {
	BloodType             string `json:"blood_type" validate:"max=10"`
	Allergies             string `json:"allergies"`
	ChronicConditions     string `json:"chronic_conditions"`
	Medications           string `json:"medications"`
	EmergencyContactName  string `json:"emergency_contact_name" validate:"max=255"`
	EmergencyContactPhone string `json:"emergency_contact_phone" validate:"max=50"`
}

// Response DTOs

type UserResponse struct {
	ID            uuid.UUID `json:"id"`
	WalletAddress string    `json:"wallet_address"`
	UID           string    `json:"uid"`
	Username      string    `json:"username"`
	Role          string    `json:"role"`
	Status        string    `json:"status"`
	HospitalName  string    `json:"hospital_name,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type HealthProfileResponse struct {
	UserID                uuid.UUID `json:"user_id"`
	BloodType             string    `json:"blood_type,omitempty"`
	Allergies             string    `json:"allergies,omitempty"`
	ChronicConditions     string    `json:"chronic_conditions,omitempty"`
	Medications           string    `json:"medications,omitempty"`
	EmergencyContactName  string    `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string    `json:"emergency_contact_phone,omitempty"`
	UpdatedAt             time.Time `json:"updated_at"`
}
