package repository

import (
	"health-records-platform/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InsuranceProviderRepository interface {
	Create(db *gorm.DB, provider *entity.InsuranceProvider) error
	Update(db *gorm.DB, provider *entity.InsuranceProvider) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.InsuranceProvider, error)
	FindByOwnerID(db *gorm.DB, ownerID uuid.UUID) (*entity.InsuranceProvider, error)
	FindAllActive(db *gorm.DB) ([]entity.InsuranceProvider, error)
}
