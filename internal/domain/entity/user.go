package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role represents a user role in the platform
type Role string

const (
	RolePatient            Role = "patient"
	RoleDoctor             Role = "doctor"
	RoleHospital           Role = "hospital"
	RoleEmergencyResponder Role = "emergency_responder"
	RoleInsuranceProvider  Role = "insurance_provider"
	RoleAdmin              Role = "admin"
)

// UserStatus represents the verification status of a user
type UserStatus string

const (
	UserStatusPending   UserStatus = "pending"
	UserStatusVerified  UserStatus = "verified"
	UserStatusSuspended UserStatus = "suspended"
)

// User is the identity anchor for every actor in the platform.
// Users are created on first wallet contact and never deleted;
// the audit trail depends on stable references.
type User struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	WalletAddress string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"wallet_address"`
	UID           string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"uid"`
	Username      string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Role          Role       `gorm:"type:varchar(50);not null;index" json:"role"`
	Status        UserStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	HospitalName  string     `gorm:"type:varchar(255)" json:"hospital_name,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	HealthProfile *HealthProfile `gorm:"foreignKey:UserID" json:"health_profile,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsVerified checks if the user has passed verification
func (u *User) IsVerified() bool {
	return u.Status == UserStatusVerified
}

// HasHospitalAffiliation checks if the user has a recorded hospital affiliation
func (u *User) HasHospitalAffiliation() bool {
	return u.HospitalName != ""
}
