package repository

import (
	"health-records-platform/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EmergencyCredentialRepository interface {
	Upsert(db *gorm.DB, credential *entity.EmergencyCredential) error
	FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.EmergencyCredential, error)
	IncrementScanCount(db *gorm.DB, userID uuid.UUID) (int64, error)
}
