package repository

import (
	"errors"

	"health-records-platform/internal/domain/entity"
	domainRepo "health-records-platform/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type insuranceConnectionRepository struct{}

func NewInsuranceConnectionRepository() domainRepo.InsuranceConnectionRepository {
	return &insuranceConnectionRepository{}
}

func (r *insuranceConnectionRepository) Create(db *gorm.DB, connection *entity.PatientInsuranceConnection) error {
	return db.Create(connection).Error
}

func (r *insuranceConnectionRepository) Update(db *gorm.DB, connection *entity.PatientInsuranceConnection) error {
	return db.Save(connection).Error
}

func (r *insuranceConnectionRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.PatientInsuranceConnection, error) {
	var connection entity.PatientInsuranceConnection
	err := db.Where("id = ?", id).First(&connection).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &connection, nil
}

func (r *insuranceConnectionRepository) FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.PatientInsuranceConnection, error) {
	var connections []entity.PatientInsuranceConnection
	err := db.Preload("Provider").
		Where("patient_id = ?", patientID).
		Order("requested_at DESC").
		Find(&connections).Error
	if err != nil {
		return nil, err
	}
	return connections, nil
}

func (r *insuranceConnectionRepository) FindByProviderID(db *gorm.DB, providerID uuid.UUID) ([]entity.PatientInsuranceConnection, error) {
	var connections []entity.PatientInsuranceConnection
	err := db.Preload("Patient").
		Where("provider_id = ?", providerID).
		Order("requested_at DESC").
		Find(&connections).Error
	if err != nil {
		return nil, err
	}
	return connections, nil
}

// FindLiveByPair returns the pending or connected row for a (patient, provider)
// pair, if one exists. Disconnected rows never block a fresh request.
func (r *insuranceConnectionRepository) FindLiveByPair(db *gorm.DB, patientID, providerID uuid.UUID) (*entity.PatientInsuranceConnection, error) {
	var connection entity.PatientInsuranceConnection
	err := db.Where("patient_id = ? AND provider_id = ? AND status IN ?",
		patientID, providerID,
		[]entity.ConnectionStatus{entity.ConnectionStatusPending, entity.ConnectionStatusConnected}).
		First(&connection).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &connection, nil
}

func (r *insuranceConnectionRepository) FindConnectedByProviderID(db *gorm.DB, providerID uuid.UUID) ([]entity.PatientInsuranceConnection, error) {
	var connections []entity.PatientInsuranceConnection
	err := db.Where("provider_id = ? AND status = ?", providerID, entity.ConnectionStatusConnected).
		Order("requested_at ASC").
		Find(&connections).Error
	if err != nil {
		return nil, err
	}
	return connections, nil
}
