package repository

import (
	"health-records-platform/internal/domain/entity"

	"gorm.io/gorm"
)

type AuditLogRepository interface {
	Create(db *gorm.DB, auditLog *entity.AuditLog) error
	FindAll(db *gorm.DB) ([]entity.AuditLog, error)
	FindByTarget(db *gorm.DB, targetType, targetID string) ([]entity.AuditLog, error)
}
