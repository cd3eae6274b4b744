package usecase

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
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
	ErrClaimNotFound           = errors.New("claim not found")
	ErrInvalidConnection       = errors.New("claim requires an active insurance connection owned by the patient")
	ErrClaimNotOwned           = errors.New("claim does not belong to you")
	ErrClaimNotPending         = errors.New("claim is not awaiting patient confirmation")
	ErrClaimNotPatientApproved = errors.New("claim is not awaiting provider decision")
	ErrClaimNotApproved        = errors.New("claim is not approved for payout")
	ErrClaimReasonRequired     = errors.New("a rejection reason is required")
)

// ClaimUsecase drives the two-stage claim workflow: a hospital submits against
// a patient's active insurance connection, the patient confirms the event
// happened, and the provider settles or rejects.
type ClaimUsecase interface {
	Submit(ctx context.Context, req *dto.SubmitClaimRequest) (*dto.ClaimResponse, error)
	PatientApprove(ctx context.Context, claimID uuid.UUID, note string) (*dto.ClaimResponse, error)
	PatientReject(ctx context.Context, claimID uuid.UUID, reason string) (*dto.ClaimResponse, error)
	ProviderApprove(ctx context.Context, claimID uuid.UUID) (*dto.ClaimResponse, error)
	ProviderReject(ctx context.Context, claimID uuid.UUID, reason string) (*dto.ClaimResponse, error)
	Pay(ctx context.Context, claimID uuid.UUID) (*dto.ClaimResponse, error)
	ListForPatient(ctx context.Context) (*dto.ClaimListResponse, error)
	ListForProvider(ctx context.Context) (*dto.ClaimListResponse, error)
}

type claimUsecase struct {
	db             *gorm.DB
	log            *logrus.Logger
	userRepo       repository.UserRepository
	providerRepo   repository.InsuranceProviderRepository
	connectionRepo repository.InsuranceConnectionRepository
	claimRepo      repository.ClaimRepository
	auditService   service.AuditService
}

func NewClaimUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	providerRepo repository.InsuranceProviderRepository,
	connectionRepo repository.InsuranceConnectionRepository,
	claimRepo repository.ClaimRepository,
	auditService service.AuditService,
) ClaimUsecase {
	return &claimUsecase{
		db:             db,
		log:            log,
		userRepo:       userRepo,
		providerRepo:   providerRepo,
		connectionRepo: connectionRepo,
		claimRepo:      claimRepo,
		auditService:   auditService,
	}
}

// Submit files a claim against a patient's connection. The connection must
// belong to the named patient and be in connected status at submission time; a
// pending or disconnected connection cannot carry a claim.
func (u *claimUsecase) Submit(ctx context.Context, req *dto.SubmitClaimRequest) (*dto.ClaimResponse, error) {
	hospitalID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	patient, err := u.userRepo.FindByUID(u.db.WithContext(ctx), req.PatientUID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", req.PatientUID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	connection, err := u.connectionRepo.FindByID(u.db.WithContext(ctx), req.ConnectionID)
	if err != nil {
		u.log.Warnf("Failed to find connection %s: %+v", req.ConnectionID, err)
		return nil, err
	}
	if connection == nil || connection.PatientID != patient.ID || !connection.IsConnected() {
		return nil, ErrInvalidConnection
	}

	claimNumber, err := u.generateClaimNumber()
	if err != nil {
		u.log.Errorf("Failed to generate claim number: %+v", err)
		return nil, err
	}

	claim := &entity.Claim{
		ClaimNumber:  claimNumber,
		PatientID:    patient.ID,
		HospitalID:   hospitalID,
		ConnectionID: connection.ID,
		Amount:       req.Amount,
		ClaimType:    entity.ClaimType(req.ClaimType),
		Status:       entity.ClaimStatusPending,
		Description:  req.Description,
	}

	if err := u.claimRepo.Create(u.db.WithContext(ctx), claim); err != nil {
		u.log.Errorf("Failed to create claim: %+v", err)
		return nil, err
	}

	u.auditService.Record(ctx, &hospitalID, entity.AuditActionClaimSubmit, "claim", claim.ID.String(), entity.JSON{
		"claim_number": claim.ClaimNumber,
		"patient_id":   patient.ID.String(),
		"amount":       req.Amount,
		"claim_type":   req.ClaimType,
	})

	u.log.Infof("Claim submitted: claim=%s, number=%s, patient=%s, hospital=%s",
		claim.ID, claim.ClaimNumber, patient.ID, hospitalID)
	return converter.ClaimToResponse(claim), nil
}

// PatientApprove is the patient confirming the billed event. Only the claim's
// patient may confirm, and only from pending.
func (u *claimUsecase) PatientApprove(ctx context.Context, claimID uuid.UUID, note string) (*dto.ClaimResponse, error) {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	claim, err := u.claimRepo.FindByID(u.db.WithContext(ctx), claimID)
	if err != nil {
		u.log.Warnf("Failed to find claim %s: %+v", claimID, err)
		return nil, err
	}
	if claim == nil {
		return nil, ErrClaimNotFound
	}

	if claim.PatientID != patientID {
		return nil, ErrClaimNotOwned
	}
	if !claim.IsPending() {
		return nil, ErrClaimNotPending
	}

	now := time.Now().UTC()
	claim.Status = entity.ClaimStatusPatientApproved
	claim.PatientNote = note
	claim.RespondedAt = &now

	if err := u.claimRepo.Update(u.db.WithContext(ctx), claim); err != nil {
		u.log.Errorf("Failed to update claim %s: %+v", claimID, err)
		return nil, err
	}

	u.auditService.Record(ctx, &patientID, entity.AuditActionClaimRespond, "claim", claim.ID.String(), entity.JSON{
		"status": string(claim.Status),
	})

	u.log.Infof("Claim confirmed by patient: claim=%s", claim.ID)
	return converter.ClaimToResponse(claim), nil
}

// PatientReject is the patient disputing the billed event, with a reason
func (u *claimUsecase) PatientReject(ctx context.Context, claimID uuid.UUID, reason string) (*dto.ClaimResponse, error) {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	if strings.TrimSpace(reason) == "" {
		return nil, ErrClaimReasonRequired
	}

	claim, err := u.claimRepo.FindByID(u.db.WithContext(ctx), claimID)
	if err != nil {
		u.log.Warnf("Failed to find claim %s: %+v", claimID, err)
		return nil, err
	}
	if claim == nil {
		return nil, ErrClaimNotFound
	}

	if claim.PatientID != patientID {
		return nil, ErrClaimNotOwned
	}
	if !claim.IsPending() {
		return nil, ErrClaimNotPending
	}

	now := time.Now().UTC()
	claim.Status = entity.ClaimStatusRejected
	claim.RejectionReason = reason
	claim.RespondedAt = &now

	if err := u.claimRepo.Update(u.db.WithContext(ctx), claim); err != nil {
		u.log.Errorf("Failed to update claim %s: %+v", claimID, err)
		return nil, err
	}

	u.auditService.Record(ctx, &patientID, entity.AuditActionClaimRespond, "claim", claim.ID.String(), entity.JSON{
		"status": string(claim.Status),
		"reason": reason,
	})

	u.log.Infof("Claim rejected by patient: claim=%s", claim.ID)
	return converter.ClaimToResponse(claim), nil
}

// ProviderApprove accepts a patient-confirmed claim for payout
func (u *claimUsecase) ProviderApprove(ctx context.Context, claimID uuid.UUID) (*dto.ClaimResponse, error) {
	claim, err := u.findProviderClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}

	if !claim.IsPatientApproved() {
		return nil, ErrClaimNotPatientApproved
	}

	reviewerID, _ := middleware.GetUserIDFromContext(ctx)
	now := time.Now().UTC()
	claim.Status = entity.ClaimStatusApproved
	claim.ProviderRespondedAt = &now

	if err := u.claimRepo.Update(u.db.WithContext(ctx), claim); err != nil {
		u.log.Errorf("Failed to approve claim %s: %+v", claimID, err)
		return nil, err
	}

	u.auditService.Record(ctx, &reviewerID, entity.AuditActionClaimRespond, "claim", claim.ID.String(), entity.JSON{
		"status": string(claim.Status),
	})

	u.log.Infof("Claim approved by provider: claim=%s", claim.ID)
	return converter.ClaimToResponse(claim), nil
}

// ProviderReject declines a patient-confirmed claim, with a reason
func (u *claimUsecase) ProviderReject(ctx context.Context, claimID uuid.UUID, reason string) (*dto.ClaimResponse, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrClaimReasonRequired
	}

	claim, err := u.findProviderClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}

	if !claim.IsPatientApproved() {
		return nil, ErrClaimNotPatientApproved
	}

	reviewerID, _ := middleware.GetUserIDFromContext(ctx)
	now := time.Now().UTC()
	claim.Status = entity.ClaimStatusRejected
	claim.RejectionReason = reason
	claim.ProviderRespondedAt = &now

	if err := u.claimRepo.Update(u.db.WithContext(ctx), claim); err != nil {
		u.log.Errorf("Failed to reject claim %s: %+v", claimID, err)
		return nil, err
	}

	u.auditService.Record(ctx, &reviewerID, entity.AuditActionClaimRespond, "claim", claim.ID.String(), entity.JSON{
		"status": string(claim.Status),
		"reason": reason,
	})

	u.log.Infof("Claim rejected by provider: claim=%s, reason=%s", claim.ID, reason)
	return converter.ClaimToResponse(claim), nil
}

// Pay settles an approved claim in full. Paying from any other status,
// including paying a paid claim twice, is an invalid-state error.
func (u *claimUsecase) Pay(ctx context.Context, claimID uuid.UUID) (*dto.ClaimResponse, error) {
	claim, err := u.findProviderClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}

	if !claim.IsApproved() {
		return nil, ErrClaimNotApproved
	}

	reviewerID, _ := middleware.GetUserIDFromContext(ctx)
	claim.Pay(time.Now().UTC())

	if err := u.claimRepo.Update(u.db.WithContext(ctx), claim); err != nil {
		u.log.Errorf("Failed to pay claim %s: %+v", claimID, err)
		return nil, err
	}

	u.auditService.Record(ctx, &reviewerID, entity.AuditActionClaimPay, "claim", claim.ID.String(), entity.JSON{
		"paid_amount": claim.PaidAmount,
	})

	u.log.Infof("Claim paid: claim=%s, amount=%.2f", claim.ID, claim.PaidAmount)
	return converter.ClaimToResponse(claim), nil
}

// ListForPatient returns all claims filed against the caller
func (u *claimUsecase) ListForPatient(ctx context.Context) (*dto.ClaimListResponse, error) {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	claims, err := u.claimRepo.FindByPatientID(u.db.WithContext(ctx), patientID)
	if err != nil {
		u.log.Warnf("Failed to list claims for patient %s: %+v", patientID, err)
		return nil, err
	}

	return &dto.ClaimListResponse{
		Claims: converter.ClaimsToResponses(claims),
		Total:  len(claims),
	}, nil
}

// ListForProvider returns claims against connections of the caller's offering
func (u *claimUsecase) ListForProvider(ctx context.Context) (*dto.ClaimListResponse, error) {
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

	var claims []entity.Claim
	for _, connection := range connections {
		batch, err := u.claimRepo.FindByConnectionID(u.db.WithContext(ctx), connection.ID)
		if err != nil {
			u.log.Warnf("Failed to list claims for connection %s: %+v", connection.ID, err)
			return nil, err
		}
		claims = append(claims, batch...)
	}

	return &dto.ClaimListResponse{
		Claims: converter.ClaimsToResponses(claims),
		Total:  len(claims),
	}, nil
}

// findProviderClaim loads a claim and verifies the caller owns the provider
// behind the claim's connection.
func (u *claimUsecase) findProviderClaim(ctx context.Context, claimID uuid.UUID) (*entity.Claim, error) {
	reviewerID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	claim, err := u.claimRepo.FindByID(u.db.WithContext(ctx), claimID)
	if err != nil {
		u.log.Warnf("Failed to find claim %s: %+v", claimID, err)
		return nil, err
	}
	if claim == nil {
		return nil, ErrClaimNotFound
	}

	connection, err := u.connectionRepo.FindByID(u.db.WithContext(ctx), claim.ConnectionID)
	if err != nil {
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

	return claim, nil
}

// generateClaimNumber generates a unique human-readable claim number:
// CLM-YYYYMMDD-XXXXXX
func (u *claimUsecase) generateClaimNumber() (string, error) {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	suffix := binary.BigEndian.Uint32(buf[:]) % 0x1000000
	return fmt.Sprintf("CLM-%s-%06X", time.Now().UTC().Format("20060102"), suffix), nil
}
