package usecase

import (
	"context"
	"errors"
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
	ErrGrantNotFound         = errors.New("access grant not found")
	ErrPatientNotFound       = errors.New("patient not found")
	ErrRequesterNotFound     = errors.New("requester not found")
	ErrGrantNotOwned         = errors.New("access grant does not belong to you")
	ErrGrantAlreadyResponded = errors.New("access grant has already been responded to")
	ErrGrantNotGranted       = errors.New("access grant is not in granted status")
)

// AccessGrantUsecase implements the request/approve/reject/revoke lifecycle
// governing who may read a patient's records.
type AccessGrantUsecase interface {
	RequestAccess(ctx context.Context, req *dto.RequestAccessRequest) (*dto.AccessGrantResponse, error)
	Respond(ctx context.Context, grantID uuid.UUID, approve bool) (*dto.AccessGrantResponse, error)
	Revoke(ctx context.Context, grantID uuid.UUID) (*dto.AccessGrantResponse, error)
	CheckAccess(ctx context.Context, patientUID, requesterUID string) (*dto.CheckAccessResponse, error)
	ListForPatient(ctx context.Context) (*dto.AccessGrantListResponse, error)
	ListForRequester(ctx context.Context) (*dto.AccessGrantListResponse, error)
}

type accessGrantUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	userRepo     repository.UserRepository
	grantRepo    repository.AccessGrantRepository
	auditService service.AuditService
}

func NewAccessGrantUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	grantRepo repository.AccessGrantRepository,
	auditService service.AuditService,
) AccessGrantUsecase {
	return &accessGrantUsecase{
		db:           db,
		log:          log,
		userRepo:     userRepo,
		grantRepo:    grantRepo,
		auditService: auditService,
	}
}

// RequestAccess creates a new pending grant for the caller against the given
// patient. Every request starts a fresh row; earlier rejected or revoked rows
// are never reused. For emergency requests against a patient with a recorded
// hospital affiliation the hospital-notified flag is set. The flag is auditable
// state, not a delivery guarantee.
func (u *accessGrantUsecase) RequestAccess(ctx context.Context, req *dto.RequestAccessRequest) (*dto.AccessGrantResponse, error) {
	requesterID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	requester, err := u.userRepo.FindByID(u.db.WithContext(ctx), requesterID)
	if err != nil {
		u.log.Warnf("Failed to find requester %s: %+v", requesterID, err)
		return nil, err
	}
	if requester == nil {
		return nil, ErrRequesterNotFound
	}

	patient, err := u.userRepo.FindByUID(u.db.WithContext(ctx), req.PatientUID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", req.PatientUID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	grant := &entity.AccessGrant{
		PatientID:        patient.ID,
		RequesterID:      requester.ID,
		AccessType:       entity.AccessType(req.AccessType),
		Status:           entity.GrantStatusPending,
		Reason:           req.Reason,
		IsEmergency:      req.IsEmergency,
		ProofImage:       req.ProofImage,
		ProofText:        req.ProofText,
		HospitalNotified: req.IsEmergency && patient.HasHospitalAffiliation(),
	}

	if err := u.grantRepo.Create(u.db.WithContext(ctx), grant); err != nil {
		u.log.Errorf("Failed to create access grant: %+v", err)
		return nil, err
	}

	u.auditService.Record(ctx, &requester.ID, entity.AuditActionAccessRequest, "access_grant", grant.ID.String(), entity.JSON{
		"patient_id":        patient.ID.String(),
		"access_type":       req.AccessType,
		"is_emergency":      req.IsEmergency,
		"hospital_notified": grant.HospitalNotified,
	})

	u.log.Infof("Access requested: grant=%s, patient=%s, requester=%s, emergency=%t",
		grant.ID, patient.ID, requester.ID, req.IsEmergency)
	return converter.AccessGrantToResponse(grant), nil
}

// Respond settles a pending grant. Only the patient may decide, and only a
// pending grant can be decided: re-responding is rejected rather than silently
// overwriting the previous decision.
func (u *accessGrantUsecase) Respond(ctx context.Context, grantID uuid.UUID, approve bool) (*dto.AccessGrantResponse, error) {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	grant, err := u.grantRepo.FindByID(u.db.WithContext(ctx), grantID)
	if err != nil {
		u.log.Warnf("Failed to find grant %s: %+v", grantID, err)
		return nil, err
	}
	if grant == nil {
		return nil, ErrGrantNotFound
	}

	if grant.PatientID != patientID {
		return nil, ErrGrantNotOwned
	}
	if !grant.IsPending() {
		return nil, ErrGrantAlreadyResponded
	}

	now := time.Now().UTC()
	if approve {
		grant.Grant(now)
	} else {
		grant.Reject(now)
	}

	if err := u.grantRepo.Update(u.db.WithContext(ctx), grant); err != nil {
		u.log.Errorf("Failed to update grant %s: %+v", grantID, err)
		return nil, err
	}

	u.auditService.Record(ctx, &patientID, entity.AuditActionAccessRespond, "access_grant", grant.ID.String(), entity.JSON{
		"status": string(grant.Status),
	})

	u.log.Infof("Access grant responded: grant=%s, status=%s", grant.ID, grant.Status)
	return converter.AccessGrantToResponse(grant), nil
}

// Revoke withdraws a granted row. Revoking anything but a granted row is an
// error; it must never silently grant.
func (u *accessGrantUsecase) Revoke(ctx context.Context, grantID uuid.UUID) (*dto.AccessGrantResponse, error) {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	grant, err := u.grantRepo.FindByID(u.db.WithContext(ctx), grantID)
	if err != nil {
		u.log.Warnf("Failed to find grant %s: %+v", grantID, err)
		return nil, err
	}
	if grant == nil {
		return nil, ErrGrantNotFound
	}

	if grant.PatientID != patientID {
		return nil, ErrGrantNotOwned
	}
	if !grant.IsGranted() {
		return nil, ErrGrantNotGranted
	}

	grant.Revoke()
	if err := u.grantRepo.Update(u.db.WithContext(ctx), grant); err != nil {
		u.log.Errorf("Failed to revoke grant %s: %+v", grantID, err)
		return nil, err
	}

	u.auditService.Record(ctx, &patientID, entity.AuditActionAccessRevoke, "access_grant", grant.ID.String(), nil)

	u.log.Infof("Access grant revoked: grant=%s, requester=%s", grant.ID, grant.RequesterID)
	return converter.AccessGrantToResponse(grant), nil
}

// CheckAccess reports whether any grant row for the pair is in granted status.
// This is an existence check over the pair's full history, not most-recent-wins:
// a newer pending or rejected row does not disturb access conferred by an older
// granted row.
func (u *accessGrantUsecase) CheckAccess(ctx context.Context, patientUID, requesterUID string) (*dto.CheckAccessResponse, error) {
	patient, err := u.userRepo.FindByUID(u.db.WithContext(ctx), patientUID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	requester, err := u.userRepo.FindByUID(u.db.WithContext(ctx), requesterUID)
	if err != nil {
		return nil, err
	}
	if requester == nil {
		return nil, ErrRequesterNotFound
	}

	count, err := u.grantRepo.CountGrantedForPair(u.db.WithContext(ctx), patient.ID, requester.ID)
	if err != nil {
		u.log.Warnf("Failed to check access for patient %s, requester %s: %+v", patient.ID, requester.ID, err)
		return nil, err
	}

	return &dto.CheckAccessResponse{HasAccess: count > 0}, nil
}

// ListForPatient returns all grants where the caller is the patient
func (u *accessGrantUsecase) ListForPatient(ctx context.Context) (*dto.AccessGrantListResponse, error) {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	grants, err := u.grantRepo.FindByPatientID(u.db.WithContext(ctx), patientID)
	if err != nil {
		u.log.Warnf("Failed to list grants for patient %s: %+v", patientID, err)
		return nil, err
	}

	return &dto.AccessGrantListResponse{
		Grants: converter.AccessGrantsToResponses(grants),
		Total:  len(grants),
	}, nil
}

// ListForRequester returns all grants where the caller is the requester
func (u *accessGrantUsecase) ListForRequester(ctx context.Context) (*dto.AccessGrantListResponse, error) {
	requesterID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	grants, err := u.grantRepo.FindByRequesterID(u.db.WithContext(ctx), requesterID)
	if err != nil {
		u.log.Warnf("Failed to list grants for requester %s: %+v", requesterID, err)
		return nil, err
	}

	return &dto.AccessGrantListResponse{
		Grants: converter.AccessGrantsToResponses(grants),
		Total:  len(grants),
	}, nil
}
