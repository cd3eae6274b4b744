package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"health-records-platform/config"
	"health-records-platform/internal/delivery/dto"
	"health-records-platform/internal/domain/entity"
	"health-records-platform/internal/repository"
	"health-records-platform/internal/service"
	"health-records-platform/pkg/signature"

	"github.com/google/uuid"
)

func newCredentialUsecase(t *testing.T) (EmergencyCredentialUsecase, *testEnv) {
	return newCredentialUsecaseWithCache(t, nil)
}

func newCredentialUsecaseWithCache(t *testing.T, cache service.CredentialCache) (EmergencyCredentialUsecase, *testEnv) {
	env := newTestEnv(t)
	signatureService := signature.NewService(config.CredentialConfig{SigningSecret: "test-secret"})
	uc := NewEmergencyCredentialUsecase(
		env.db,
		env.log,
		repository.NewUserRepository(),
		repository.NewHealthProfileRepository(),
		repository.NewEmergencyCredentialRepository(),
		env.audit,
		cache,
		signatureService,
		365*24*time.Hour,
	)
	return uc, env
}

// memoryCredentialCache is an in-process stand-in for the redis-backed cache,
// recording the order of writes and invalidations.
type memoryCredentialCache struct {
	entries map[uuid.UUID]string
	ops     []string
}

func newMemoryCredentialCache() *memoryCredentialCache {
	return &memoryCredentialCache{entries: make(map[uuid.UUID]string)}
}

func (c *memoryCredentialCache) Put(_ context.Context, userID uuid.UUID, payload string, _ time.Duration) {
	c.entries[userID] = payload
	c.ops = append(c.ops, "put")
}

func (c *memoryCredentialCache) Get(_ context.Context, userID uuid.UUID) (string, bool) {
	payload, ok := c.entries[userID]
	return payload, ok
}

func (c *memoryCredentialCache) Invalidate(_ context.Context, userID uuid.UUID) {
	delete(c.entries, userID)
	c.ops = append(c.ops, "invalidate")
}

func TestGenerateEmbedsSnapshot(t *testing.T) {
	uc, env := newCredentialUsecase(t)
	patient := createTestUser(t, env.db, entity.RolePatient, "City General")
	if err := env.db.Create(&entity.HealthProfile{UserID: patient.ID, BloodType: "O-", Allergies: "latex"}).Error; err != nil {
		t.Fatalf("Failed to seed health profile: %v", err)
	}

	credential, err := uc.Generate(ctxForUser(patient.ID))
	if err != nil {
		t.Fatalf("Failed to generate credential: %v", err)
	}
	if credential.Payload == "" || credential.Signature == "" {
		t.Fatal("Expected payload and signature to be set")
	}

	scanner := createTestUser(t, env.db, entity.RoleEmergencyResponder, "")
	decoded, err := uc.Decode(ctxForUser(scanner.ID), &dto.DecodeCredentialRequest{Payload: credential.Payload})
	if err != nil {
		t.Fatalf("Failed to decode credential: %v", err)
	}

	if decoded.UID != patient.UID {
		t.Errorf("Expected UID %s, got %s", patient.UID, decoded.UID)
	}
	if decoded.BloodType != "O-" || decoded.Allergies != "latex" {
		t.Errorf("Expected embedded health summary, got blood_type=%s allergies=%s", decoded.BloodType, decoded.Allergies)
	}
	if decoded.HospitalName != "City General" {
		t.Errorf("Expected hospital name in snapshot, got %s", decoded.HospitalName)
	}
}

func TestDecodeReturnsSnapshotNotCurrentState(t *testing.T) {
	uc, env := newCredentialUsecase(t)
	patient := createTestUser(t, env.db, entity.RolePatient, "")
	if err := env.db.Create(&entity.HealthProfile{UserID: patient.ID, BloodType: "A+"}).Error; err != nil {
		t.Fatalf("Failed to seed health profile: %v", err)
	}

	credential, err := uc.Generate(ctxForUser(patient.ID))
	if err != nil {
		t.Fatalf("Failed to generate credential: %v", err)
	}

	// Change the profile after generation; the QR snapshot must not move
	if err := env.db.Model(&entity.HealthProfile{}).
		Where("user_id = ?", patient.ID).
		Update("blood_type", "B-").Error; err != nil {
		t.Fatalf("Failed to update health profile: %v", err)
	}

	scanner := createTestUser(t, env.db, entity.RoleEmergencyResponder, "")
	decoded, err := uc.Decode(ctxForUser(scanner.ID), &dto.DecodeCredentialRequest{Payload: credential.Payload})
	if err != nil {
		t.Fatalf("Failed to decode credential: %v", err)
	}
	if decoded.BloodType != "A+" {
		t.Errorf("Decode must return the generation-time snapshot, got %s", decoded.BloodType)
	}

	// Regenerating folds the current state into a fresh snapshot
	fresh, err := uc.Generate(ctxForUser(patient.ID))
	if err != nil {
		t.Fatalf("Failed to regenerate credential: %v", err)
	}
	decoded, err = uc.Decode(ctxForUser(scanner.ID), &dto.DecodeCredentialRequest{Payload: fresh.Payload})
	if err != nil {
		t.Fatalf("Failed to decode regenerated credential: %v", err)
	}
	if decoded.BloodType != "B-" {
		t.Errorf("Regenerated snapshot must carry the updated profile, got %s", decoded.BloodType)
	}
}

func TestDecodeIncrementsScanCountOnlyOnSuccess(t *testing.T) {
	uc, env := newCredentialUsecase(t)
	patient := createTestUser(t, env.db, entity.RolePatient, "")
	scanner := createTestUser(t, env.db, entity.RoleEmergencyResponder, "")

	credential, err := uc.Generate(ctxForUser(patient.ID))
	if err != nil {
		t.Fatalf("Failed to generate credential: %v", err)
	}

	scanCount := func() int64 {
		var stored entity.EmergencyCredential
		if err := env.db.First(&stored, "user_id = ?", patient.ID).Error; err != nil {
			t.Fatalf("Failed to reload credential: %v", err)
		}
		return stored.ScanCount
	}

	// A malformed payload fails fast and leaves no trace
	if _, err := uc.Decode(ctxForUser(scanner.ID), &dto.DecodeCredentialRequest{Payload: "not-json"}); err != ErrMalformedPayload {
		t.Fatalf("Expected ErrMalformedPayload, got %v", err)
	}
	if scanCount() != 0 {
		t.Error("Failed decode must not increment the scan counter")
	}

	for i := 0; i < 3; i++ {
		if _, err := uc.Decode(ctxForUser(scanner.ID), &dto.DecodeCredentialRequest{Payload: credential.Payload}); err != nil {
			t.Fatalf("Failed to decode credential: %v", err)
		}
	}
	if got := scanCount(); got != 3 {
		t.Errorf("Expected scan count 3, got %d", got)
	}
}

func TestGenerateOverwritesPreviousCredential(t *testing.T) {
	uc, env := newCredentialUsecase(t)
	patient := createTestUser(t, env.db, entity.RolePatient, "")

	if _, err := uc.Generate(ctxForUser(patient.ID)); err != nil {
		t.Fatalf("Failed to generate credential: %v", err)
	}
	if _, err := uc.Generate(ctxForUser(patient.ID)); err != nil {
		t.Fatalf("Failed to regenerate credential: %v", err)
	}

	var count int64
	if err := env.db.Model(&entity.EmergencyCredential{}).
		Where("user_id = ?", patient.ID).
		Count(&count).Error; err != nil {
		t.Fatalf("Failed to count credentials: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected a single live credential row, got %d", count)
	}
}

func TestGetLiveWithoutCredential(t *testing.T) {
	uc, env := newCredentialUsecase(t)
	patient := createTestUser(t, env.db, entity.RolePatient, "")

	if _, err := uc.GetLive(ctxForUser(patient.ID)); err != ErrCredentialNotFound {
		t.Errorf("Expected ErrCredentialNotFound, got %v", err)
	}
}

func TestDecodeUnknownUIDLeavesNoTrace(t *testing.T) {
	uc, env := newCredentialUsecase(t)
	patient := createTestUser(t, env.db, entity.RolePatient, "")
	scanner := createTestUser(t, env.db, entity.RoleEmergencyResponder, "")

	credential, err := uc.Generate(ctxForUser(patient.ID))
	if err != nil {
		t.Fatalf("Failed to generate credential: %v", err)
	}

	// A well-formed payload whose embedded UID resolves to nobody
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(credential.Payload), &payload); err != nil {
		t.Fatalf("Failed to unmarshal payload: %v", err)
	}
	payload["uid"] = "HID123456789"
	rewritten, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal payload: %v", err)
	}

	if _, err := uc.Decode(ctxForUser(scanner.ID), &dto.DecodeCredentialRequest{Payload: string(rewritten)}); err != ErrPatientNotFound {
		t.Fatalf("Expected ErrPatientNotFound, got %v", err)
	}

	var stored entity.EmergencyCredential
	if err := env.db.First(&stored, "user_id = ?", patient.ID).Error; err != nil {
		t.Fatalf("Failed to reload credential: %v", err)
	}
	if stored.ScanCount != 0 {
		t.Errorf("Failed decode must not increment the scan counter, got %d", stored.ScanCount)
	}

	var auditCount int64
	if err := env.db.Model(&entity.AuditLog{}).
		Where("action = ?", entity.AuditActionCredentialScan).
		Count(&auditCount).Error; err != nil {
		t.Fatalf("Failed to count audit rows: %v", err)
	}
	if auditCount != 0 {
		t.Errorf("Failed decode must not be audited as a scan, got %d rows", auditCount)
	}
}

func TestGetLiveServesFullResponseFromCache(t *testing.T) {
	cache := newMemoryCredentialCache()
	uc, env := newCredentialUsecaseWithCache(t, cache)
	patient := createTestUser(t, env.db, entity.RolePatient, "")

	generated, err := uc.Generate(ctxForUser(patient.ID))
	if err != nil {
		t.Fatalf("Failed to generate credential: %v", err)
	}
	if len(cache.ops) < 2 || cache.ops[0] != "invalidate" || cache.ops[1] != "put" {
		t.Errorf("Generation must drop the old entry before caching, got %v", cache.ops)
	}

	// Tamper with the stored row; a cache hit must serve the cached response
	if err := env.db.Model(&entity.EmergencyCredential{}).
		Where("user_id = ?", patient.ID).
		Update("signature", "tampered").Error; err != nil {
		t.Fatalf("Failed to update credential row: %v", err)
	}

	live, err := uc.GetLive(ctxForUser(patient.ID))
	if err != nil {
		t.Fatalf("Failed to get live credential: %v", err)
	}
	if live.Payload != generated.Payload {
		t.Error("Expected cached payload to be served")
	}
	if live.Signature != generated.Signature {
		t.Errorf("Cache hit must carry the full response, got signature %q", live.Signature)
	}
	if live.GeneratedAt.IsZero() || live.ExpiresAt == nil {
		t.Error("Cache hit must carry generated_at and expires_at")
	}
}

func TestDecodeInvalidatesCachedCredential(t *testing.T) {
	cache := newMemoryCredentialCache()
	uc, env := newCredentialUsecaseWithCache(t, cache)
	patient := createTestUser(t, env.db, entity.RolePatient, "")
	scanner := createTestUser(t, env.db, entity.RoleEmergencyResponder, "")

	credential, err := uc.Generate(ctxForUser(patient.ID))
	if err != nil {
		t.Fatalf("Failed to generate credential: %v", err)
	}
	if _, ok := cache.Get(context.Background(), patient.ID); !ok {
		t.Fatal("Expected generation to populate the cache")
	}

	if _, err := uc.Decode(ctxForUser(scanner.ID), &dto.DecodeCredentialRequest{Payload: credential.Payload}); err != nil {
		t.Fatalf("Failed to decode credential: %v", err)
	}
	if _, ok := cache.Get(context.Background(), patient.ID); ok {
		t.Error("A successful scan must invalidate the cached response")
	}

	live, err := uc.GetLive(ctxForUser(patient.ID))
	if err != nil {
		t.Fatalf("Failed to get live credential: %v", err)
	}
	if live.ScanCount != 1 {
		t.Errorf("Expected refreshed scan count 1, got %d", live.ScanCount)
	}
}
