package middleware

import (
	"net/http"

	"health-records-platform/internal/domain/entity"
	"health-records-platform/pkg/response"
)

// RequireRole creates a middleware that checks if the user has any of the required roles
// Role is read from context (set by WalletAuthMiddleware)
func RequireRole(allowedRoles ...entity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetUserRoleFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}

			allowed := false
			for _, allowedRole := range allowedRoles {
				if role == allowedRole {
					allowed = true
					break
				}
			}

			if !allowed {
				response.Forbidden(w, "You don't have permission to access this resource")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is a convenience middleware for admin-only endpoints
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(entity.RoleAdmin)(next)
}

// RequirePatient is a convenience middleware for patient-only endpoints
func RequirePatient(next http.Handler) http.Handler {
	return RequireRole(entity.RolePatient)(next)
}

// RequireHospital is a convenience middleware for hospital-only endpoints
func RequireHospital(next http.Handler) http.Handler {
	return RequireRole(entity.RoleHospital)(next)
}

// RequireInsuranceProvider is a convenience middleware for provider-only endpoints
func RequireInsuranceProvider(next http.Handler) http.Handler {
	return RequireRole(entity.RoleInsuranceProvider)(next)
}

// RequireCareRole gates endpoints for the roles that may request record access
func RequireCareRole(next http.Handler) http.Handler {
	return RequireRole(entity.RoleDoctor, entity.RoleHospital, entity.RoleEmergencyResponder)(next)
}
