package repository

import (
	"errors"

	"health-records-platform/internal/domain/entity"
	domainRepo "health-records-platform/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type emergencyCredentialRepository struct{}

func NewEmergencyCredentialRepository() domainRepo.EmergencyCredentialRepository {
	return &emergencyCredentialRepository{}
}

// Upsert keeps exactly one live credential row per user. Regeneration
// overwrites the payload but preserves the accumulated scan count.
func (r *emergencyCredentialRepository) Upsert(db *gorm.DB, credential *entity.EmergencyCredential) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"payload", "signature", "generated_at", "expires_at", "updated_at",
		}),
	}).Create(credential).Error
}

func (r *emergencyCredentialRepository) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.EmergencyCredential, error) {
	var credential entity.EmergencyCredential
	err := db.Where("user_id = ?", userID).First(&credential).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &credential, nil
}

// IncrementScanCount bumps the monotonic scan counter in a single UPDATE and
// returns the number of rows touched (0 means no live credential exists).
func (r *emergencyCredentialRepository) IncrementScanCount(db *gorm.DB, userID uuid.UUID) (int64, error) {
	result := db.Model(&entity.EmergencyCredential{}).
		Where("user_id = ?", userID).
		Update("scan_count", gorm.Expr("scan_count + 1"))
	return result.RowsAffected, result.Error
}
