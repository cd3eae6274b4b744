package converter

import (
	"health-records-platform/internal/delivery/dto"
	"health-records-platform/internal/domain/entity"

	"github.com/google/uuid"
)

// ProviderToResponse converts an InsuranceProvider entity to its DTO
func ProviderToResponse(provider *entity.InsuranceProvider) *dto.InsuranceProviderResponse {
	if provider == nil {
		return nil
	}

	return &dto.InsuranceProviderResponse{
		ID:            provider.ID,
		OwnerID:       provider.OwnerID,
		Name:          provider.Name,
		Description:   provider.Description,
		MonthlyFee:    provider.MonthlyFee,
		CoverageLimit: provider.CoverageLimit,
		CoverageTypes: provider.CoverageTypes,
		IsActive:      provider.IsActive,
		CreatedAt:     provider.CreatedAt,
	}
}

// ProvidersToResponses converts a slice of InsuranceProvider entities to DTOs
func ProvidersToResponses(providers []entity.InsuranceProvider) []dto.InsuranceProviderResponse {
	responses := make([]dto.InsuranceProviderResponse, len(providers))
	for i, provider := range providers {
		resp := ProviderToResponse(&provider)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}

// ConnectionToResponse converts a PatientInsuranceConnection entity to its DTO
func ConnectionToResponse(connection *entity.PatientInsuranceConnection) *dto.ConnectionResponse {
	if connection == nil {
		return nil
	}

	response := &dto.ConnectionResponse{
		ID:                  connection.ID,
		PatientID:           connection.PatientID,
		ProviderID:          connection.ProviderID,
		Status:              string(connection.Status),
		ConnectionReason:    connection.ConnectionReason,
		RejectionReason:     connection.RejectionReason,
		MissedPaymentsCount: connection.MissedPaymentsCount,
		LastBillingDate:     connection.LastBillingDate,
		RequestedAt:         connection.RequestedAt,
		ApprovedAt:          connection.ApprovedAt,
		DisconnectedAt:      connection.DisconnectedAt,
	}

	// Include related info when preloaded
	if connection.Provider.ID != uuid.Nil {
		response.Provider = ProviderToResponse(&connection.Provider)
	}
	if connection.Patient.ID != uuid.Nil {
		response.Patient = UserToResponse(&connection.Patient)
	}

	return response
}

// ConnectionsToResponses converts a slice of connection entities to DTOs
func ConnectionsToResponses(connections []entity.PatientInsuranceConnection) []dto.ConnectionResponse {
	responses := make([]dto.ConnectionResponse, len(connections))
	for i, connection := range connections {
		resp := ConnectionToResponse(&connection)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
