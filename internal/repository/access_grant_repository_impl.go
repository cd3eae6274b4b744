package repository

import (
	"errors"

	"health-records-platform/internal/domain/entity"
	domainRepo "health-records-platform/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type accessGrantRepository struct{}

func NewAccessGrantRepository() domainRepo.AccessGrantRepository {
	return &accessGrantRepository{}
}

func (r *accessGrantRepository) Create(db *gorm.DB, grant *entity.AccessGrant) error {
	return db.Create(grant).Error
}

func (r *accessGrantRepository) Update(db *gorm.DB, grant *entity.AccessGrant) error {
	return db.Save(grant).Error
}

func (r *accessGrantRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.AccessGrant, error) {
	var grant entity.AccessGrant
	err := db.Where("id = ?", id).First(&grant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &grant, nil
}

func (r *accessGrantRepository) FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.AccessGrant, error) {
	var grants []entity.AccessGrant
	err := db.Preload("Requester").
		Where("patient_id = ?", patientID).
		Order("requested_at DESC").
		Find(&grants).Error
	if err != nil {
		return nil, err
	}
	return grants, nil
}

func (r *accessGrantRepository) FindByRequesterID(db *gorm.DB, requesterID uuid.UUID) ([]entity.AccessGrant, error) {
	var grants []entity.AccessGrant
	err := db.Preload("Patient").
		Where("requester_id = ?", requesterID).
		Order("requested_at DESC").
		Find(&grants).Error
	if err != nil {
		return nil, err
	}
	return grants, nil
}

// CountGrantedForPair counts rows in granted status for a (patient, requester)
// pair. Access is an existence check over all historical rows, not most-recent-wins.
func (r *accessGrantRepository) CountGrantedForPair(db *gorm.DB, patientID, requesterID uuid.UUID) (int64, error) {
	var count int64
	err := db.Model(&entity.AccessGrant{}).
		Where("patient_id = ? AND requester_id = ? AND status = ?", patientID, requesterID, entity.GrantStatusGranted).
		Count(&count).Error
	return count, err
}
