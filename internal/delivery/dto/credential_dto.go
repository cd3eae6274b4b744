package dto

import "time"

// Request DTOs

type DecodeCredentialRequest struct {
	Payload string `json:"payload" validate:"required"`
}

// Response DTOs

type CredentialResponse struct {
	Payload     string     `json:"payload"`
	Signature   string     `json:"signature,omitempty"`
	GeneratedAt time.Time  `json:"generated_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	ScanCount   int64      `json:"scan_count"`
}

// DecodedCredentialResponse returns the payload's embedded snapshot verbatim.
// The emergency details reflect the moment of generation, not the current
// database state.
type DecodedCredentialResponse struct {
	Username              string    `json:"username"`
	UID                   string    `json:"uid"`
	WalletAddress         string    `json:"wallet_address"`
	Role                  string    `json:"role"`
	HospitalName          string    `json:"hospital_name,omitempty"`
	BloodType             string    `json:"blood_type,omitempty"`
	Allergies             string    `json:"allergies,omitempty"`
	ChronicConditions     string    `json:"chronic_conditions,omitempty"`
	Medications           string    `json:"medications,omitempty"`
	EmergencyContactName  string    `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string    `json:"emergency_contact_phone,omitempty"`
	GeneratedAt           time.Time `json:"generated_at"`
}
