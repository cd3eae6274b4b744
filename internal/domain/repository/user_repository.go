package repository

import (
	"health-records-platform/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(db *gorm.DB, user *entity.User) error
	Update(db *gorm.DB, user *entity.User) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.User, error)
	FindByWallet(db *gorm.DB, walletAddress string) (*entity.User, error)
	FindByUID(db *gorm.DB, uid string) (*entity.User, error)
	FindByUsername(db *gorm.DB, username string) (*entity.User, error)
}
