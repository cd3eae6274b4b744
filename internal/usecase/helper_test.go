package usecase

import (
	"context"
	"fmt"
	"io"
	"testing"

	"health-records-platform/internal/delivery/http/middleware"
	"health-records-platform/internal/domain/entity"
	"health-records-platform/internal/repository"
	"health-records-platform/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// testEnv bundles the dependencies every usecase constructor needs
type testEnv struct {
	db    *gorm.DB
	log   *logrus.Logger
	audit service.AuditService
}

func newTestEnv(t *testing.T) *testEnv {
	db := setupTestDB(t)
	return &testEnv{
		db:    db,
		log:   testLogger(),
		audit: testAuditService(db),
	}
}

// ctx returns an unauthenticated request context
func (e *testEnv) ctx() context.Context {
	return context.Background()
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	err = db.AutoMigrate(
		&entity.User{},
		&entity.HealthProfile{},
		&entity.AccessGrant{},
		&entity.EmergencyCredential{},
		&entity.InsuranceProvider{},
		&entity.PatientInsuranceConnection{},
		&entity.Claim{},
		&entity.AuditLog{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testAuditService(db *gorm.DB) service.AuditService {
	return service.NewAuditService(db, testLogger(), repository.NewAuditLogRepository())
}

// ctxForUser simulates an authenticated request context
func ctxForUser(userID uuid.UUID) context.Context {
	return context.WithValue(context.Background(), middleware.UserIDKey, userID)
}

var testUserSeq int

func createTestUser(t *testing.T, db *gorm.DB, role entity.Role, hospitalName string) *entity.User {
	t.Helper()
	testUserSeq++

	user := &entity.User{
		WalletAddress: fmt.Sprintf("0xwallet%04d", testUserSeq),
		UID:           fmt.Sprintf("HID%09d", testUserSeq),
		Username:      fmt.Sprintf("user%04d", testUserSeq),
		Role:          role,
		Status:        entity.UserStatusVerified,
		HospitalName:  hospitalName,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func createConnectedInsurance(t *testing.T, db *gorm.DB, patient, owner *entity.User) (*entity.InsuranceProvider, *entity.PatientInsuranceConnection) {
	t.Helper()

	provider := &entity.InsuranceProvider{
		OwnerID:       owner.ID,
		Name:          "Test Insurance",
		MonthlyFee:    50,
		CoverageLimit: 100000,
		IsActive:      true,
	}
	if err := db.Create(provider).Error; err != nil {
		t.Fatalf("Failed to create test provider: %v", err)
	}

	connection := &entity.PatientInsuranceConnection{
		PatientID:  patient.ID,
		ProviderID: provider.ID,
		Status:     entity.ConnectionStatusConnected,
	}
	if err := db.Create(connection).Error; err != nil {
		t.Fatalf("Failed to create test connection: %v", err)
	}

	return provider, connection
}
