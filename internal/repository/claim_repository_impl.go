package repository

import (
	"errors"

	"health-records-platform/internal/domain/entity"
	domainRepo "health-records-platform/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type claimRepository struct{}

func NewClaimRepository() domainRepo.ClaimRepository {
	return &claimRepository{}
}

func (r *claimRepository) Create(db *gorm.DB, claim *entity.Claim) error {
	return db.Create(claim).Error
}

func (r *claimRepository) Update(db *gorm.DB, claim *entity.Claim) error {
	return db.Save(claim).Error
}

func (r *claimRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Claim, error) {
	var claim entity.Claim
	err := db.Preload("Connection").Where("id = ?", id).First(&claim).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &claim, nil
}

func (r *claimRepository) FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Claim, error) {
	var claims []entity.Claim
	err := db.Preload("Hospital").
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&claims).Error
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (r *claimRepository) FindByConnectionID(db *gorm.DB, connectionID uuid.UUID) ([]entity.Claim, error) {
	var claims []entity.Claim
	err := db.Where("connection_id = ?", connectionID).
		Order("created_at DESC").
		Find(&claims).Error
	if err != nil {
		return nil, err
	}
	return claims, nil
}
