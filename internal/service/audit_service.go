package service

import (
	"context"

	"health-records-platform/internal/domain/entity"
	"health-records-platform/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditService records audit trail entries for every state-changing operation.
// Writes are fire-and-forget: a failed audit insert is logged and never fails
// the operation that triggered it.
type AuditService interface {
	Record(ctx context.Context, actorID *uuid.UUID, action, targetType, targetID string, metadata entity.JSON)
}

type auditService struct {
	db        *gorm.DB
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(db *gorm.DB, log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		db:        db,
		log:       log,
		auditRepo: auditRepo,
	}
}

func (s *auditService) Record(ctx context.Context, actorID *uuid.UUID, action, targetType, targetID string, metadata entity.JSON) {
	auditLog := &entity.AuditLog{
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Metadata:   metadata,
	}

	if err := s.auditRepo.Create(s.db.WithContext(ctx), auditLog); err != nil {
		s.log.Warnf("Failed to create audit log for action %s: %+v", action, err)
	}
}
