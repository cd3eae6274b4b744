package repository

import (
	"health-records-platform/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InsuranceConnectionRepository interface {
	Create(db *gorm.DB, connection *entity.PatientInsuranceConnection) error
	Update(db *gorm.DB, connection *entity.PatientInsuranceConnection) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.PatientInsuranceConnection, error)
	FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.PatientInsuranceConnection, error)
	FindByProviderID(db *gorm.DB, providerID uuid.UUID) ([]entity.PatientInsuranceConnection, error)
	FindLiveByPair(db *gorm.DB, patientID, providerID uuid.UUID) (*entity.PatientInsuranceConnection, error)
	FindConnectedByProviderID(db *gorm.DB, providerID uuid.UUID) ([]entity.PatientInsuranceConnection, error)
}
