package repository

import (
	"errors"

	"health-records-platform/internal/domain/entity"
	domainRepo "health-records-platform/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type insuranceProviderRepository struct{}

func NewInsuranceProviderRepository() domainRepo.InsuranceProviderRepository {
	return &insuranceProviderRepository{}
}

func (r *insuranceProviderRepository) Create(db *gorm.DB, provider *entity.InsuranceProvider) error {
	return db.Create(provider).Error
}

func (r *insuranceProviderRepository) Update(db *gorm.DB, provider *entity.InsuranceProvider) error {
	return db.Save(provider).Error
}

func (r *insuranceProviderRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.InsuranceProvider, error) {
	var provider entity.InsuranceProvider
	err := db.Where("id = ?", id).First(&provider).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &provider, nil
}

func (r *insuranceProviderRepository) FindByOwnerID(db *gorm.DB, ownerID uuid.UUID) (*entity.InsuranceProvider, error) {
	var provider entity.InsuranceProvider
	err := db.Where("owner_id = ?", ownerID).First(&provider).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &provider, nil
}

func (r *insuranceProviderRepository) FindAllActive(db *gorm.DB) ([]entity.InsuranceProvider, error) {
	var providers []entity.InsuranceProvider
	err := db.Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&providers).Error
	if err != nil {
		return nil, err
	}
	return providers, nil
}
