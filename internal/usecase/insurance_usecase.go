package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"health-records-platform/internal/converter"
	"health-records-platform/internal/delivery/dto"
	"health-records-platform/internal/delivery/http/middleware"
	"health-records-platform/internal/domain/entity"
	"health-records-platform/internal/domain/repository"
	"health-records-platform/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrProviderNotFound        = errors.New("insurance provider not found")
	ErrProviderExists          = errors.New("a provider profile already exists for this user")
	ErrNotProviderOwner        = errors.New("you do not own this insurance provider")
	ErrConnectionNotFound      = errors.New("insurance connection not found")
	ErrConnectionExists        = errors.New("a pending or connected connection already exists for this provider")
	ErrConnectionNotOwned      = errors.New("insurance connection does not belong to you")
	ErrConnectionNotPending    = errors.New("insurance connection is not pending")
	ErrConnectionNotConnected  = errors.New("insurance connection is not active")
	ErrRejectionReasonRequired = errors.New("a rejection reason is required")
)

// InsuranceUsecase manages provider offerings and the patient-to-insurer
// connection lifecycle.
type InsuranceUsecase interface {
	RegisterProvider(ctx context.Context, req *dto.RegisterProviderRequest) (*dto.InsuranceProviderResponse, error)
	ListProviders(ctx context.Context) (*dto.ProviderListResponse, error)
	RequestConnection(ctx context.Context, req *dto.RequestConnectionRequest) (*dto.ConnectionResponse, error)
	ApproveConnection(ctx context.Context, connectionID uuid.UUID) (*dto.ConnectionResponse, error)
	RejectConnection(ctx context.Context, connectionID uuid.UUID, reason string) (*dto.ConnectionResponse, error)
	PayMonthlyFee(ctx context.Context, connectionID uuid.UUID) (*dto.ConnectionResponse, error)
	ListMyConnections(ctx context.Context) (*dto.ConnectionListResponse, error)
	ListProviderConnections(ctx context.Context) (*dto.ConnectionListResponse, error)
}

type insuranceUsecase struct {
	db             *gorm.DB
	log            *logrus.Logger
	providerRepo   repository.InsuranceProviderRepository
	connectionRepo repository.InsuranceConnectionRepository
	auditService   service.AuditService
}

func NewInsuranceUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	providerRepo repository.InsuranceProviderRepository,
	connectionRepo repository.InsuranceConnectionRepository,
	auditService service.AuditService,
) InsuranceUsecase {
	return &insuranceUsecase{
		db:             db,
		log:            log,
		providerRepo:   providerRepo,
		connectionRepo: connectionRepo,
		auditService:   auditService,
	}
}

// RegisterProvider creates the caller's service offering. One offering per
// provider account.
func (u *insuranceUsecase) RegisterProvider(ctx context.Context, req *dto.RegisterProviderRequest) (*dto.InsuranceProviderResponse, error) {
	ownerID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	existing, err := u.providerRepo.FindByOwnerID(u.db.WithContext(ctx), ownerID)
	if err != nil {
		u.log.Warnf("Failed to check provider for owner %s: %+v", ownerID, err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrProviderExists
	}

	provider := &entity.InsuranceProvider{
		OwnerID:       ownerID,
		Name:          req.Name,
		Description:   req.Description,
		MonthlyFee:    req.MonthlyFee,
		CoverageLimit: req.CoverageLimit,
		CoverageTypes: entity.StringList(req.CoverageTypes),
		IsActive:      true,
	}

	if err := u.providerRepo.Create(u.db.WithContext(ctx), provider); err != nil {
		u.log.Errorf("Failed to create provider for owner %s: %+v", ownerID, err)
		return nil, err
	}

	u.log.Infof("Insurance provider registered: id=%s, owner=%s, name=%s", provider.ID, ownerID, provider.Name)
	return converter.ProviderToResponse(provider), nil
}

// ListProviders returns all active offerings
func (u *insuranceUsecase) ListProviders(ctx context.Context) (*dto.ProviderListResponse, error) {
	providers, err := u.providerRepo.FindAllActive(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to list providers: %+v", err)
		return nil, err
	}

	return &dto.ProviderListResponse{
		Providers: converter.ProvidersToResponses(providers),
		Total:     len(providers),
	}, nil
}

// RequestConnection opens a pending connection between the calling patient and
// a provider. A second request while a pending or connected row exists for the
// pair is rejected; a disconnected history never blocks a fresh request.
func (u *insuranceUsecase) RequestConnection(ctx context.Context, req *dto.RequestConnectionRequest) (*dto.ConnectionResponse, error) {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	provider, err := u.providerRepo.FindByID(u.db.WithContext(ctx), req.ProviderID)
	if err != nil {
		u.log.Warnf("Failed to find provider %s: %+v", req.ProviderID, err)
		return nil, err
	}
	if provider == nil || !provider.IsActive {
		return nil, ErrProviderNotFound
	}

	live, err := u.connectionRepo.FindLiveByPair(u.db.WithContext(ctx), patientID, provider.ID)
	if err != nil {
		u.log.Warnf("Failed to check live connection: %+v", err)
		return nil, err
	}
	if live != nil {
		return nil, ErrConnectionExists
	}

	connection := &entity.PatientInsuranceConnection{
		PatientID:        patientID,
		ProviderID:       provider.ID,
		Status:           entity.ConnectionStatusPending,
		ConnectionReason: req.Reason,
	}

	if err := u.connectionRepo.Create(u.db.WithContext(ctx), connection); err != nil {
		u.log.Errorf("Failed to create connection: %+v", err)
		return nil, err
	}

	u.auditService.Record(ctx, &patientID, entity.AuditActionConnectionRequest, "patient_insurance_connection", connection.ID.String(), entity.JSON{
		"provider_id": provider.ID.String(),
	})

	u.log.Infof("Insurance connection requested: connection=%s, patient=%s, provider=%s", connection.ID, patientID, provider.ID)
	return converter.ConnectionToResponse(connection), nil
}

// ApproveConnection activates a pending connection and seeds the billing clock
func (u *insuranceUsecase) ApproveConnection(ctx context.Context, connectionID uuid.UUID) (*dto.ConnectionResponse, error) {
	connection, err := u.findOwnedConnection(ctx, connectionID)
	if err != nil {
		return nil, err
	}

	if !connection.IsPending() {
		return nil, ErrConnectionNotPending
	}

	reviewerID, _ := middleware.GetUserIDFromContext(ctx)
	connection.Approve(time.Now().UTC())

	if err := u.connectionRepo.Update(u.db.WithContext(ctx), connection); err != nil {
		u.log.Errorf("Failed to approve connection %s: %+v", connectionID, err)
		return nil, err
	}

	u.auditService.Record(ctx, &reviewerID, entity.AuditActionConnectionApprove, "patient_insurance_connection", connection.ID.String(), nil)

	u.log.Infof("Insurance connection approved: connection=%s", connection.ID)
	return converter.ConnectionToResponse(connection), nil
}

// RejectConnection moves a live connection to its terminal status with a
// mandatory reason. The same disconnected value covers rejecting a pending
// request and disconnecting an active one.
func (u *insuranceUsecase) RejectConnection(ctx context.Context, connectionID uuid.UUID, reason string) (*dto.ConnectionResponse, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrRejectionReasonRequired
	}

	connection, err := u.findOwnedConnection(ctx, connectionID)
	if err != nil {
		return nil, err
	}

	if !connection.IsLive() {
		return nil, ErrConnectionNotPending
	}

	reviewerID, _ := middleware.GetUserIDFromContext(ctx)
	wasConnected := connection.IsConnected()
	connection.Disconnect(time.Now().UTC(), reason)

	if err := u.connectionRepo.Update(u.db.WithContext(ctx), connection); err != nil {
		u.log.Errorf("Failed to reject connection %s: %+v", connectionID, err)
		return nil, err
	}

	action := entity.AuditActionConnectionReject
	if wasConnected {
		action = entity.AuditActionConnectionDisconnect
	}
	u.auditService.Record(ctx, &reviewerID, action, "patient_insurance_connection", connection.ID.String(), entity.JSON{
		"reason": reason,
	})

	u.log.Infof("Insurance connection rejected: connection=%s, reason=%s", connection.ID, reason)
	return converter.ConnectionToResponse(connection), nil
}

// PayMonthlyFee is the patient-initiated manual payment. There is no payment
// gateway; an active connection always charges successfully, resetting the
// missed-payment counter.
func (u *insuranceUsecase) PayMonthlyFee(ctx context.Context, connectionID uuid.UUID) (*dto.ConnectionResponse, error) {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	connection, err := u.connectionRepo.FindByID(u.db.WithContext(ctx), connectionID)
	if err != nil {
		u.log.Warnf("Failed to find connection %s: %+v", connectionID, err)
		return nil, err
	}
	if connection == nil {
		return nil, ErrConnectionNotFound
	}

	if connection.PatientID != patientID {
		return nil, ErrConnectionNotOwned
	}
	if !connection.IsConnected() {
		return nil, ErrConnectionNotConnected
	}

	connection.RecordSuccessfulCharge(time.Now().UTC())
	if err := u.connectionRepo.Update(u.db.WithContext(ctx), connection); err != nil {
		u.log.Errorf("Failed to record manual payment for connection %s: %+v", connectionID, err)
		return nil, err
	}

	u.auditService.Record(ctx, &patientID, entity.AuditActionBillingCharge, "patient_insurance_connection", connection.ID.String(), entity.JSON{
		"manual": true,
	})

	u.log.Infof("Monthly fee paid: connection=%s, patient=%s", connection.ID, patientID)
	return converter.ConnectionToResponse(connection), nil
}

// ListMyConnections returns the calling patient's connections
func (u *insuranceUsecase) ListMyConnections(ctx context.Context) (*dto.ConnectionListResponse, error) {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	connections, err := u.connectionRepo.FindByPatientID(u.db.WithContext(ctx), patientID)
	if err != nil {
		u.log.Warnf("Failed to list connections for patient %s: %+v", patientID, err)
		return nil, err
	}

	return &dto.ConnectionListResponse{
		Connections: converter.ConnectionsToResponses(connections),
		Total:       len(connections),
	}, nil
}

// ListProviderConnections returns connections against the caller's offering
func (u *insuranceUsecase) ListProviderConnections(ctx context.Context) (*dto.ConnectionListResponse, error) {
	ownerID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	provider, err := u.providerRepo.FindByOwnerID(u.db.WithContext(ctx), ownerID)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, ErrProviderNotFound
	}

	connections, err := u.connectionRepo.FindByProviderID(u.db.WithContext(ctx), provider.ID)
	if err != nil {
		u.log.Warnf("Failed to list connections for provider %s: %+v", provider.ID, err)
		return nil, err
	}

	return &dto.ConnectionListResponse{
		Connections: converter.ConnectionsToResponses(connections),
		Total:       len(connections),
	}, nil
}

// findOwnedConnection loads a connection and verifies the caller owns the
// provider side of it.
func (u *insuranceUsecase) findOwnedConnection(ctx context.Context, connectionID uuid.UUID) (*entity.PatientInsuranceConnection, error) {
	reviewerID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	connection, err := u.connectionRepo.FindByID(u.db.WithContext(ctx), connectionID)
	if err != nil {
		u.log.Warnf("Failed to find connection %s: %+v", connectionID, err)
		return nil, err
	}
	if connection == nil {
		return nil, ErrConnectionNotFound
	}

	provider, err := u.providerRepo.FindByID(u.db.WithContext(ctx), connection.ProviderID)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, ErrProviderNotFound
	}
	if provider.OwnerID != reviewerID {
		return nil, ErrNotProviderOwner
	}

	return connection, nil
}
