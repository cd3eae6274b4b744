package repository

import (
	"health-records-platform/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccessGrantRepository interface {
	Create(db *gorm.DB, grant *entity.AccessGrant) error
	Update(db *gorm.DB, grant *entity.AccessGrant) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.AccessGrant, error)
	FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.AccessGrant, error)
	FindByRequesterID(db *gorm.DB, requesterID uuid.UUID) ([]entity.AccessGrant, error)
	CountGrantedForPair(db *gorm.DB, patientID, requesterID uuid.UUID) (int64, error)
}
