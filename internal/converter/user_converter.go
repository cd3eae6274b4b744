package converter

import (
	"health-records-platform/internal/delivery/dto"
	"health-records-platform/internal/domain/entity"
)

// UserToResponse converts a User entity to UserResponse DTO
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	return &dto.UserResponse{
		ID:            user.ID,
		WalletAddress: user.WalletAddress,
		UID:           user.UID,
		Username:      user.Username,
		Role:          string(user.Role),
		Status:        string(user.Status),
		HospitalName:  user.HospitalName,
		CreatedAt:     user.CreatedAt,
	}
}

// HealthProfileToResponse converts a HealthProfile entity to its DTO
func HealthProfileToResponse(profile *entity.HealthProfile) *dto.HealthProfileResponse {
	if profile == nil {
		return nil
	}

	return &dto.HealthProfileResponse{
		UserID:                profile.UserID,
		BloodType:             profile.BloodType,
		Allergies:             profile.Allergies,
		ChronicConditions:     profile.ChronicConditions,
		Medications:           profile.Medications,
		EmergencyContactName:  profile.EmergencyContactName,
		EmergencyContactPhone: profile.EmergencyContactPhone,
		UpdatedAt:             profile.UpdatedAt,
	}
}
