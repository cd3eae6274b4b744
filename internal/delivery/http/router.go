package http

import (
	"net/http"

	"health-records-platform/internal/delivery/http/handler"
	"health-records-platform/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router             *mux.Router
	identityHandler    *handler.IdentityHandler
	accessGrantHandler *handler.AccessGrantHandler
	credentialHandler  *handler.CredentialHandler
	insuranceHandler   *handler.InsuranceHandler
	claimHandler       *handler.ClaimHandler
	billingHandler     *handler.BillingHandler
	auditLogHandler    *handler.AuditLogHandler
	walletMiddleware   *middleware.WalletAuthMiddleware
	corsMiddleware     *middleware.CORSMiddleware
}

func NewRouter(
	identityHandler *handler.IdentityHandler,
	accessGrantHandler *handler.AccessGrantHandler,
	credentialHandler *handler.CredentialHandler,
	insuranceHandler *handler.InsuranceHandler,
	claimHandler *handler.ClaimHandler,
	billingHandler *handler.BillingHandler,
	auditLogHandler *handler.AuditLogHandler,
	walletMiddleware *middleware.WalletAuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:             mux.NewRouter(),
		identityHandler:    identityHandler,
		accessGrantHandler: accessGrantHandler,
		credentialHandler:  credentialHandler,
		insuranceHandler:   insuranceHandler,
		claimHandler:       claimHandler,
		billingHandler:     billingHandler,
		auditLogHandler:    auditLogHandler,
		walletMiddleware:   walletMiddleware,
		corsMiddleware:     corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Public routes
	api.HandleFunc("/users/register", r.identityHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/insurance/providers", r.insuranceHandler.ListProviders).Methods(http.MethodGet)

	// User routes (protected)
	users := api.PathPrefix("/users").Subrouter()
	users.Use(r.walletMiddleware.Authenticate)
	users.HandleFunc("/me", r.identityHandler.GetMe).Methods(http.MethodGet)
	users.HandleFunc("/me/health-profile", r.identityHandler.UpsertHealthProfile).Methods(http.MethodPut)
	users.HandleFunc("/me/health-profile", r.identityHandler.GetMyHealthProfile).Methods(http.MethodGet)
	users.HandleFunc("/uid/{uid}", r.identityHandler.ResolveByUID).Methods(http.MethodGet)
	users.HandleFunc("/username/{username}", r.identityHandler.ResolveByUsername).Methods(http.MethodGet)

	// Access grant routes (protected)
	access := api.PathPrefix("/access").Subrouter()
	access.Use(r.walletMiddleware.Authenticate)
	access.HandleFunc("/check", r.accessGrantHandler.CheckAccess).Methods(http.MethodGet)
	access.HandleFunc("/requests", r.accessGrantHandler.GetMyRequests).Methods(http.MethodGet)

	// Requesting access requires a care role
	accessRequest := access.NewRoute().Subrouter()
	accessRequest.Use(middleware.RequireCareRole)
	accessRequest.HandleFunc("/requests", r.accessGrantHandler.RequestAccess).Methods(http.MethodPost)

	// Responding and revoking is patient-only
	accessPatient := access.NewRoute().Subrouter()
	accessPatient.Use(middleware.RequirePatient)
	accessPatient.HandleFunc("/grants", r.accessGrantHandler.GetMyGrants).Methods(http.MethodGet)
	accessPatient.HandleFunc("/grants/{id}/respond", r.accessGrantHandler.Respond).Methods(http.MethodPost)
	accessPatient.HandleFunc("/grants/{id}/revoke", r.accessGrantHandler.Revoke).Methods(http.MethodPost)

	// Emergency credential routes (protected)
	credentials := api.PathPrefix("/credentials").Subrouter()
	credentials.Use(r.walletMiddleware.Authenticate)
	credentials.HandleFunc("/decode", r.credentialHandler.Decode).Methods(http.MethodPost)

	credentialsPatient := credentials.NewRoute().Subrouter()
	credentialsPatient.Use(middleware.RequirePatient)
	credentialsPatient.HandleFunc("", r.credentialHandler.Generate).Methods(http.MethodPost)
	credentialsPatient.HandleFunc("/live", r.credentialHandler.GetLive).Methods(http.MethodGet)

	// Insurance routes (protected)
	insurance := api.PathPrefix("/insurance").Subrouter()
	insurance.Use(r.walletMiddleware.Authenticate)

	insuranceProvider := insurance.NewRoute().Subrouter()
	insuranceProvider.Use(middleware.RequireInsuranceProvider)
	insuranceProvider.HandleFunc("/providers", r.insuranceHandler.RegisterProvider).Methods(http.MethodPost)
	insuranceProvider.HandleFunc("/providers/me/connections", r.insuranceHandler.GetProviderConnections).Methods(http.MethodGet)
	insuranceProvider.HandleFunc("/connections/{id}/approve", r.insuranceHandler.ApproveConnection).Methods(http.MethodPost)
	insuranceProvider.HandleFunc("/connections/{id}/reject", r.insuranceHandler.RejectConnection).Methods(http.MethodPost)

	insurancePatient := insurance.NewRoute().Subrouter()
	insurancePatient.Use(middleware.RequirePatient)
	insurancePatient.HandleFunc("/connections", r.insuranceHandler.RequestConnection).Methods(http.MethodPost)
	insurancePatient.HandleFunc("/connections", r.insuranceHandler.GetMyConnections).Methods(http.MethodGet)
	insurancePatient.HandleFunc("/connections/{id}/pay", r.insuranceHandler.PayMonthlyFee).Methods(http.MethodPost)

	// Claim routes (protected)
	claims := api.PathPrefix("/claims").Subrouter()
	claims.Use(r.walletMiddleware.Authenticate)

	claimsHospital := claims.NewRoute().Subrouter()
	claimsHospital.Use(middleware.RequireHospital)
	claimsHospital.HandleFunc("", r.claimHandler.Submit).Methods(http.MethodPost)

	claimsPatient := claims.NewRoute().Subrouter()
	claimsPatient.Use(middleware.RequirePatient)
	claimsPatient.HandleFunc("/mine", r.claimHandler.GetMyClaims).Methods(http.MethodGet)
	claimsPatient.HandleFunc("/{id}/approve", r.claimHandler.PatientApprove).Methods(http.MethodPost)
	claimsPatient.HandleFunc("/{id}/reject", r.claimHandler.PatientReject).Methods(http.MethodPost)

	claimsProvider := claims.NewRoute().Subrouter()
	claimsProvider.Use(middleware.RequireInsuranceProvider)
	claimsProvider.HandleFunc("/provider", r.claimHandler.GetProviderClaims).Methods(http.MethodGet)
	claimsProvider.HandleFunc("/{id}/provider-approve", r.claimHandler.ProviderApprove).Methods(http.MethodPost)
	claimsProvider.HandleFunc("/{id}/provider-reject", r.claimHandler.ProviderReject).Methods(http.MethodPost)
	claimsProvider.HandleFunc("/{id}/pay", r.claimHandler.Pay).Methods(http.MethodPost)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.walletMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/users/{id}/verify", r.identityHandler.VerifyUser).Methods(http.MethodPost)
	admin.HandleFunc("/billing/sweep", r.billingHandler.RunSweep).Methods(http.MethodPost)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{targetType}/{targetId}", r.auditLogHandler.GetAuditLogsByTarget).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
