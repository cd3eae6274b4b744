package repository

import (
	"errors"

	"health-records-platform/internal/domain/entity"
	domainRepo "health-records-platform/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type healthProfileRepository struct{}

func NewHealthProfileRepository() domainRepo.HealthProfileRepository {
	return &healthProfileRepository{}
}

func (r *healthProfileRepository) Upsert(db *gorm.DB, profile *entity.HealthProfile) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"blood_type", "allergies", "chronic_conditions", "medications",
			"emergency_contact_name", "emergency_contact_phone", "updated_at",
		}),
	}).Create(profile).Error
}

func (r *healthProfileRepository) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.HealthProfile, error) {
	var profile entity.HealthProfile
	err := db.Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}
