package converter

import (
	"health-records-platform/internal/delivery/dto"
	"health-records-platform/internal/domain/entity"

	"github.com/google/uuid"
)

// AccessGrantToResponse converts an AccessGrant entity to AccessGrantResponse DTO
func AccessGrantToResponse(grant *entity.AccessGrant) *dto.AccessGrantResponse {
	if grant == nil {
		return nil
	}

	response := &dto.AccessGrantResponse{
		ID:               grant.ID,
		PatientID:        grant.PatientID,
		RequesterID:      grant.RequesterID,
		AccessType:       string(grant.AccessType),
		Status:           string(grant.Status),
		Reason:           grant.Reason,
		IsEmergency:      grant.IsEmergency,
		HospitalNotified: grant.HospitalNotified,
		RequestedAt:      grant.RequestedAt,
		RespondedAt:      grant.RespondedAt,
	}

	// Include party info when preloaded
	if grant.Patient.ID != uuid.Nil {
		response.Patient = UserToResponse(&grant.Patient)
	}
	if grant.Requester.ID != uuid.Nil {
		response.Requester = UserToResponse(&grant.Requester)
	}

	return response
}

// AccessGrantsToResponses converts a slice of AccessGrant entities to DTOs
func AccessGrantsToResponses(grants []entity.AccessGrant) []dto.AccessGrantResponse {
	responses := make([]dto.AccessGrantResponse, len(grants))
	for i, grant := range grants {
		resp := AccessGrantToResponse(&grant)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
