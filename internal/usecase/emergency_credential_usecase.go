package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"health-records-platform/internal/delivery/dto"
	"health-records-platform/internal/delivery/http/middleware"
	"health-records-platform/internal/domain/entity"
	"health-records-platform/internal/domain/repository"
	"health-records-platform/internal/service"
	"health-records-platform/pkg/signature"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrMalformedPayload   = errors.New("credential payload is not valid")
	ErrCredentialNotFound = errors.New("no live credential exists for this user")
)

// credentialPayload is the flat JSON document embedded in the QR code. It is a
// self-contained snapshot: decoding needs nothing from the database beyond a
// UID lookup, so the QR works for a scanner with no other connectivity context.
type credentialPayload struct {
	Username              string    `json:"username"`
	UID                   string    `json:"uid"`
	WalletAddress         string    `json:"wallet_address"`
	Role                  string    `json:"role"`
	HospitalName          string    `json:"hospital_name,omitempty"`
	BloodType             string    `json:"blood_type,omitempty"`
	Allergies             string    `json:"allergies,omitempty"`
	ChronicConditions     string    `json:"chronic_conditions,omitempty"`
	Medications           string    `json:"medications,omitempty"`
	EmergencyContactName  string    `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string    `json:"emergency_contact_phone,omitempty"`
	GeneratedAt           time.Time `json:"generated_at"`
	Signature             string    `json:"signature,omitempty"`
}

// EmergencyCredentialUsecase builds and decodes the scannable emergency QR
// payload.
type EmergencyCredentialUsecase interface {
	Generate(ctx context.Context) (*dto.CredentialResponse, error)
	GetLive(ctx context.Context) (*dto.CredentialResponse, error)
	Decode(ctx context.Context, req *dto.DecodeCredentialRequest) (*dto.DecodedCredentialResponse, error)
}

type emergencyCredentialUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	userRepo         repository.UserRepository
	profileRepo      repository.HealthProfileRepository
	credentialRepo   repository.EmergencyCredentialRepository
	auditService     service.AuditService
	cache            service.CredentialCache
	signatureService *signature.Service
	ttl              time.Duration
}

func NewEmergencyCredentialUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	profileRepo repository.HealthProfileRepository,
	credentialRepo repository.EmergencyCredentialRepository,
	auditService service.AuditService,
	cache service.CredentialCache,
	signatureService *signature.Service,
	ttl time.Duration,
) EmergencyCredentialUsecase {
	return &emergencyCredentialUsecase{
		db:               db,
		log:              log,
		userRepo:         userRepo,
		profileRepo:      profileRepo,
		credentialRepo:   credentialRepo,
		auditService:     auditService,
		cache:            cache,
		signatureService: signatureService,
		ttl:              ttl,
	}
}

// Generate snapshots the caller's identity and emergency health summary into a
// fresh payload and persists it as the user's single live credential. The
// previous payload is overwritten; the scan counter carries over.
func (u *emergencyCredentialUsecase) Generate(ctx context.Context) (*dto.CredentialResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	user, err := u.userRepo.FindByID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find user %s: %+v", userID, err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	now := time.Now().UTC()
	payload := credentialPayload{
		Username:      user.Username,
		UID:           user.UID,
		WalletAddress: user.WalletAddress,
		Role:          string(user.Role),
		HospitalName:  user.HospitalName,
		GeneratedAt:   now,
	}

	profile, err := u.profileRepo.FindByUserID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to load health profile for user %s: %+v", userID, err)
		return nil, err
	}
	if profile != nil {
		payload.BloodType = profile.BloodType
		payload.Allergies = profile.Allergies
		payload.ChronicConditions = profile.ChronicConditions
		payload.Medications = profile.Medications
		payload.EmergencyContactName = profile.EmergencyContactName
		payload.EmergencyContactPhone = profile.EmergencyContactPhone
	}

	unsigned, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	sig, err := u.signatureService.Sign(user.ID, unsigned)
	if err != nil {
		u.log.Errorf("Failed to sign credential payload for user %s: %+v", userID, err)
		return nil, err
	}
	payload.Signature = sig

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	expiresAt := now.Add(u.ttl)
	credential := &entity.EmergencyCredential{
		UserID:      user.ID,
		Payload:     string(encoded),
		Signature:   sig,
		GeneratedAt: now,
		ExpiresAt:   &expiresAt,
	}

	if err := u.credentialRepo.Upsert(u.db.WithContext(ctx), credential); err != nil {
		u.log.Errorf("Failed to persist credential for user %s: %+v", userID, err)
		return nil, err
	}

	// Regeneration carries the accumulated scan count over; reload the row so
	// the response reflects the stored state.
	stored, err := u.credentialRepo.FindByUserID(u.db.WithContext(ctx), user.ID)
	if err != nil {
		u.log.Warnf("Failed to reload credential for user %s: %+v", userID, err)
		return nil, err
	}
	if stored != nil {
		credential = stored
	}

	resp := &dto.CredentialResponse{
		Payload:     credential.Payload,
		Signature:   credential.Signature,
		GeneratedAt: credential.GeneratedAt,
		ExpiresAt:   credential.ExpiresAt,
		ScanCount:   credential.ScanCount,
	}
	u.cacheResponse(ctx, user.ID, resp)

	u.auditService.Record(ctx, &user.ID, entity.AuditActionCredentialGenerate, "emergency_credential", user.ID.String(), nil)

	u.log.Infof("Emergency credential generated: user=%s, uid=%s", user.ID, user.UID)
	return resp, nil
}

// cacheResponse replaces the cached live credential with a fresh serialized
// response. The previous entry is dropped first so a failed write cannot leave
// a stale snapshot live.
func (u *emergencyCredentialUsecase) cacheResponse(ctx context.Context, userID uuid.UUID, resp *dto.CredentialResponse) {
	if u.cache == nil {
		return
	}

	u.cache.Invalidate(ctx, userID)

	data, err := json.Marshal(resp)
	if err != nil {
		u.log.Warnf("Failed to serialize credential response for user %s: %+v", userID, err)
		return
	}
	u.cache.Put(ctx, userID, string(data), u.ttl)
}

// GetLive returns the caller's current credential, preferring the cache. The
// cache holds the full serialized response so a hit and a miss look identical
// to the caller; an entry that fails to deserialize falls through to the
// database.
func (u *emergencyCredentialUsecase) GetLive(ctx context.Context) (*dto.CredentialResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	if u.cache != nil {
		if cached, hit := u.cache.Get(ctx, userID); hit {
			var resp dto.CredentialResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return &resp, nil
			}
			u.log.Warnf("Discarding unreadable cached credential for user %s", userID)
		}
	}

	credential, err := u.credentialRepo.FindByUserID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to load credential for user %s: %+v", userID, err)
		return nil, err
	}
	if credential == nil {
		return nil, ErrCredentialNotFound
	}

	resp := &dto.CredentialResponse{
		Payload:     credential.Payload,
		Signature:   credential.Signature,
		GeneratedAt: credential.GeneratedAt,
		ExpiresAt:   credential.ExpiresAt,
		ScanCount:   credential.ScanCount,
	}
	u.cacheResponse(ctx, userID, resp)

	return resp, nil
}

// Decode validates a scanned payload and returns its embedded snapshot
// verbatim. Decode trusts the snapshot: emergency details are not re-read from
// the database, and the stored expiry is metadata only. The embedded signature
// is opaque and deliberately not verified. A failed decode leaves no trace; the
// scan counter and audit trail move only on success.
func (u *emergencyCredentialUsecase) Decode(ctx context.Context, req *dto.DecodeCredentialRequest) (*dto.DecodedCredentialResponse, error) {
	scannerID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	var payload credentialPayload
	if err := json.Unmarshal([]byte(req.Payload), &payload); err != nil {
		return nil, ErrMalformedPayload
	}
	if payload.UID == "" {
		return nil, ErrMalformedPayload
	}

	patient, err := u.userRepo.FindByUID(u.db.WithContext(ctx), payload.UID)
	if err != nil {
		u.log.Warnf("Failed to resolve credential UID %s: %+v", payload.UID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	rows, err := u.credentialRepo.IncrementScanCount(u.db.WithContext(ctx), patient.ID)
	if err != nil {
		u.log.Warnf("Failed to increment scan count for patient %s: %+v", patient.ID, err)
		return nil, err
	}
	if rows == 0 {
		// The payload may outlive its stored row. The scan still succeeds;
		// there is just no counter left to bump.
		u.log.Warnf("Credential scanned but no live row exists for patient %s", patient.ID)
	} else if u.cache != nil {
		// The cached response carries the scan count; drop it so the next
		// read reflects the increment.
		u.cache.Invalidate(ctx, patient.ID)
	}

	u.auditService.Record(ctx, &scannerID, entity.AuditActionCredentialScan, "emergency_credential", patient.ID.String(), entity.JSON{
		"patient_id": patient.ID.String(),
		"scanned_at": time.Now().UTC(),
	})

	u.log.Infof("Emergency credential scanned: patient=%s, scanner=%s", patient.ID, scannerID)
	return &dto.DecodedCredentialResponse{
		Username:              payload.Username,
		UID:                   payload.UID,
		WalletAddress:         payload.WalletAddress,
		Role:                  payload.Role,
		HospitalName:          payload.HospitalName,
		BloodType:             payload.BloodType,
		Allergies:             payload.Allergies,
		ChronicConditions:     payload.ChronicConditions,
		Medications:           payload.Medications,
		EmergencyContactName:  payload.EmergencyContactName,
		EmergencyContactPhone: payload.EmergencyContactPhone,
		GeneratedAt:           payload.GeneratedAt,
	}, nil
}
