package usecase

import (
	"context"

	"health-records-platform/internal/converter"
	"health-records-platform/internal/delivery/dto"
	"health-records-platform/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditLogUsecase exposes the append-only audit trail to administrators.
type AuditLogUsecase interface {
	List(ctx context.Context) (*dto.AuditLogListResponse, error)
	ListByTarget(ctx context.Context, targetType, targetID string) (*dto.AuditLogListResponse, error)
}

type auditLogUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	auditLogRepo repository.AuditLogRepository
}

func NewAuditLogUsecase(db *gorm.DB, log *logrus.Logger, auditLogRepo repository.AuditLogRepository) AuditLogUsecase {
	return &auditLogUsecase{
		db:           db,
		log:          log,
		auditLogRepo: auditLogRepo,
	}
}

func (u *auditLogUsecase) List(ctx context.Context) (*dto.AuditLogListResponse, error) {
	logs, err := u.auditLogRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to list audit logs: %+v", err)
		return nil, err
	}

	return &dto.AuditLogListResponse{
		Logs:  converter.AuditLogsToResponses(logs),
		Total: len(logs),
	}, nil
}

func (u *auditLogUsecase) ListByTarget(ctx context.Context, targetType, targetID string) (*dto.AuditLogListResponse, error) {
	logs, err := u.auditLogRepo.FindByTarget(u.db.WithContext(ctx), targetType, targetID)
	if err != nil {
		u.log.Warnf("Failed to list audit logs for %s/%s: %+v", targetType, targetID, err)
		return nil, err
	}

	return &dto.AuditLogListResponse{
		Logs:  converter.AuditLogsToResponses(logs),
		Total: len(logs),
	}, nil
}
