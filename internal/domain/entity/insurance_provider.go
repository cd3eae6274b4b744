package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InsuranceProvider is a service offering owned by a user whose role was
// approved as insurance_provider.
type InsuranceProvider struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID       uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"owner_id"`
	Name          string     `gorm:"type:varchar(255);not null" json:"name"`
	Description   string     `gorm:"type:text" json:"description,omitempty"`
	MonthlyFee    float64    `gorm:"not null" json:"monthly_fee"`
	CoverageLimit float64    `gorm:"not null" json:"coverage_limit"`
	CoverageTypes StringList `gorm:"type:jsonb" json:"coverage_types,omitempty"`
	IsActive      bool       `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Owner User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

func (InsuranceProvider) TableName() string {
	return "insurance_providers"
}

func (p *InsuranceProvider) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
