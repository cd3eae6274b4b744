package entity

import (
	"time"

	"github.com/google/uuid"
)

// EmergencyCredential is the persisted form of a patient's scannable QR payload.
// Exactly one live row exists per user; regeneration overwrites it. The payload
// is a point-in-time capsule of identity and emergency details, decoding trusts
// the snapshot rather than re-reading the database.
type EmergencyCredential struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Payload     string     `gorm:"type:text;not null" json:"payload"`
	Signature   string     `gorm:"type:text" json:"signature,omitempty"`
	GeneratedAt time.Time  `gorm:"not null" json:"generated_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	ScanCount   int64      `gorm:"not null;default:0" json:"scan_count"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (EmergencyCredential) TableName() string {
	return "emergency_credentials"
}
