package converter

import (
	"health-records-platform/internal/delivery/dto"
	"health-records-platform/internal/domain/entity"
)

// AuditLogToResponse converts an AuditLog entity to AuditLogResponse DTO
func AuditLogToResponse(auditLog *entity.AuditLog) *dto.AuditLogResponse {
	if auditLog == nil {
		return nil
	}

	return &dto.AuditLogResponse{
		ID:         auditLog.ID,
		ActorID:    auditLog.ActorID,
		Action:     auditLog.Action,
		TargetType: auditLog.TargetType,
		TargetID:   auditLog.TargetID,
		Metadata:   auditLog.Metadata,
		CreatedAt:  auditLog.CreatedAt,
	}
}

// AuditLogsToResponses converts a slice of AuditLog entities to DTOs
func AuditLogsToResponses(logs []entity.AuditLog) []dto.AuditLogResponse {
	responses := make([]dto.AuditLogResponse, len(logs))
	for i, auditLog := range logs {
		resp := AuditLogToResponse(&auditLog)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
