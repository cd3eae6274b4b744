package repository

import (
	"health-records-platform/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClaimRepository interface {
	Create(db *gorm.DB, claim *entity.Claim) error
	Update(db *gorm.DB, claim *entity.Claim) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Claim, error)
	FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Claim, error)
	FindByConnectionID(db *gorm.DB, connectionID uuid.UUID) ([]entity.Claim, error)
}
