package repository

import (
	"health-records-platform/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HealthProfileRepository interface {
	Upsert(db *gorm.DB, profile *entity.HealthProfile) error
	FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.HealthProfile, error)
}
