package converter

import (
	"health-records-platform/internal/delivery/dto"
	"health-records-platform/internal/domain/entity"
)

// ClaimToResponse converts a Claim entity to ClaimResponse DTO
func ClaimToResponse(claim *entity.Claim) *dto.ClaimResponse {
	if claim == nil {
		return nil
	}

	return &dto.ClaimResponse{
		ID:                  claim.ID,
		ClaimNumber:         claim.ClaimNumber,
		PatientID:           claim.PatientID,
		HospitalID:          claim.HospitalID,
		ConnectionID:        claim.ConnectionID,
		Amount:              claim.Amount,
		ClaimType:           string(claim.ClaimType),
		Status:              string(claim.Status),
		Description:         claim.Description,
		PatientNote:         claim.PatientNote,
		RejectionReason:     claim.RejectionReason,
		PaidAmount:          claim.PaidAmount,
		PaidAt:              claim.PaidAt,
		RespondedAt:         claim.RespondedAt,
		ProviderRespondedAt: claim.ProviderRespondedAt,
		CreatedAt:           claim.CreatedAt,
	}
}

// ClaimsToResponses converts a slice of Claim entities to DTOs
func ClaimsToResponses(claims []entity.Claim) []dto.ClaimResponse {
	responses := make([]dto.ClaimResponse, len(claims))
	for i, claim := range claims {
		resp := ClaimToResponse(&claim)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
