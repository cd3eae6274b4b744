package entity

import (
	"time"

	"github.com/google/uuid"
)

// HealthProfile holds the emergency medical summary for a patient.
// One row per user; this is the data snapshotted into emergency credentials.
type HealthProfile struct {
	ID                    int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID                uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	BloodType             string    `gorm:"type:varchar(10)" json:"blood_type,omitempty"`
	Allergies             string    `gorm:"type:text" json:"allergies,omitempty"`
	ChronicConditions     string    `gorm:"type:text" json:"chronic_conditions,omitempty"`
	Medications           string    `gorm:"type:text" json:"medications,omitempty"`
	EmergencyContactName  string    `gorm:"type:varchar(255)" json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string    `gorm:"type:varchar(50)" json:"emergency_contact_phone,omitempty"`
	CreatedAt             time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (HealthProfile) TableName() string {
	return "health_profiles"
}
