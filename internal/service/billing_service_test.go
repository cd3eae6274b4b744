package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"health-records-platform/internal/domain/entity"
	"health-records-platform/internal/domain/repository"
	repoimpl "health-records-platform/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	err = db.AutoMigrate(
		&entity.User{},
		&entity.InsuranceProvider{},
		&entity.PatientInsuranceConnection{},
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

// fixedChargePolicy always produces the same outcome
type fixedChargePolicy struct {
	outcome bool
}

func (p fixedChargePolicy) Charge(_ *entity.PatientInsuranceConnection, _ *entity.InsuranceProvider) bool {
	return p.outcome
}

// scriptedChargePolicy replays a fixed sequence of outcomes
type scriptedChargePolicy struct {
	outcomes []bool
	pos      int
}

func (p *scriptedChargePolicy) Charge(_ *entity.PatientInsuranceConnection, _ *entity.InsuranceProvider) bool {
	if p.pos >= len(p.outcomes) {
		return true
	}
	outcome := p.outcomes[p.pos]
	p.pos++
	return outcome
}

// faultyConnectionRepo fails connection listing for one provider
type faultyConnectionRepo struct {
	repository.InsuranceConnectionRepository
	failFor uuid.UUID
}

func (r *faultyConnectionRepo) FindConnectedByProviderID(db *gorm.DB, providerID uuid.UUID) ([]entity.PatientInsuranceConnection, error) {
	if providerID == r.failFor {
		return nil, errors.New("simulated storage failure")
	}
	return r.InsuranceConnectionRepository.FindConnectedByProviderID(db, providerID)
}

var billingUserSeq int

func seedBillingPair(t *testing.T, db *gorm.DB) (*entity.InsuranceProvider, *entity.PatientInsuranceConnection) {
	t.Helper()
	billingUserSeq++

	owner := &entity.User{
		WalletAddress: fmt.Sprintf("0xowner%04d", billingUserSeq),
		UID:           fmt.Sprintf("HID10000%04d", billingUserSeq),
		Username:      fmt.Sprintf("owner%04d", billingUserSeq),
		Role:          entity.RoleInsuranceProvider,
		Status:        entity.UserStatusVerified,
	}
	patient := &entity.User{
		WalletAddress: fmt.Sprintf("0xpatient%04d", billingUserSeq),
		UID:           fmt.Sprintf("HID20000%04d", billingUserSeq),
		Username:      fmt.Sprintf("patient%04d", billingUserSeq),
		Role:          entity.RolePatient,
		Status:        entity.UserStatusVerified,
	}
	if err := db.Create(owner).Error; err != nil {
		t.Fatalf("Failed to create owner: %v", err)
	}
	if err := db.Create(patient).Error; err != nil {
		t.Fatalf("Failed to create patient: %v", err)
	}

	provider := &entity.InsuranceProvider{
		OwnerID:       owner.ID,
		Name:          fmt.Sprintf("Provider %d", billingUserSeq),
		MonthlyFee:    50,
		CoverageLimit: 100000,
		IsActive:      true,
	}
	if err := db.Create(provider).Error; err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	now := time.Now().UTC()
	connection := &entity.PatientInsuranceConnection{
		PatientID:       patient.ID,
		ProviderID:      provider.ID,
		Status:          entity.ConnectionStatusConnected,
		ApprovedAt:      &now,
		LastBillingDate: &now,
	}
	if err := db.Create(connection).Error; err != nil {
		t.Fatalf("Failed to create connection: %v", err)
	}

	return provider, connection
}

func newBillingService(db *gorm.DB, policy ChargePolicy) *BillingService {
	log := testLogger()
	auditService := NewAuditService(db, log, repoimpl.NewAuditLogRepository())
	return NewBillingService(
		db,
		log,
		repoimpl.NewInsuranceProviderRepository(),
		repoimpl.NewInsuranceConnectionRepository(),
		auditService,
		policy,
	)
}

func reloadConnection(t *testing.T, db *gorm.DB, id uuid.UUID) *entity.PatientInsuranceConnection {
	t.Helper()
	var connection entity.PatientInsuranceConnection
	if err := db.First(&connection, "id = ?", id).Error; err != nil {
		t.Fatalf("Failed to reload connection: %v", err)
	}
	return &connection
}

func TestSweepChargesConnectedConnections(t *testing.T) {
	db := setupTestDB(t)
	_, connection := seedBillingPair(t, db)
	svc := newBillingService(db, fixedChargePolicy{outcome: true})

	before := *connection.LastBillingDate
	result, err := svc.RunBillingSweep(context.Background())
	if err != nil {
		t.Fatalf("Failed to run billing sweep: %v", err)
	}

	if result.Charged != 1 || result.Missed != 0 || result.Disconnected != 0 {
		t.Errorf("Unexpected sweep result: %+v", result)
	}

	stored := reloadConnection(t, db, connection.ID)
	if stored.MissedPaymentsCount != 0 {
		t.Errorf("Expected missed counter 0, got %d", stored.MissedPaymentsCount)
	}
	if stored.LastBillingDate == nil || stored.LastBillingDate.Before(before) {
		t.Error("Expected billing clock to advance on successful charge")
	}
}

func TestSweepDisconnectsAfterThreeConsecutiveMisses(t *testing.T) {
	db := setupTestDB(t)
	_, connection := seedBillingPair(t, db)
	svc := newBillingService(db, fixedChargePolicy{outcome: false})

	for i := 1; i <= 2; i++ {
		if _, err := svc.RunBillingSweep(context.Background()); err != nil {
			t.Fatalf("Failed to run billing sweep %d: %v", i, err)
		}
		stored := reloadConnection(t, db, connection.ID)
		if stored.Status != entity.ConnectionStatusConnected {
			t.Fatalf("Connection must stay connected after %d misses, got %s", i, stored.Status)
		}
		if stored.MissedPaymentsCount != i {
			t.Fatalf("Expected missed counter %d, got %d", i, stored.MissedPaymentsCount)
		}
	}

	result, err := svc.RunBillingSweep(context.Background())
	if err != nil {
		t.Fatalf("Failed to run third billing sweep: %v", err)
	}
	if result.Disconnected != 1 {
		t.Errorf("Expected 1 disconnection, got %d", result.Disconnected)
	}

	stored := reloadConnection(t, db, connection.ID)
	if stored.Status != entity.ConnectionStatusDisconnected {
		t.Fatalf("Expected disconnected after third miss, got %s", stored.Status)
	}
	if stored.DisconnectedAt == nil {
		t.Error("Expected disconnected_at to be stamped")
	}
	if stored.RejectionReason == "" {
		t.Error("Expected auto-disconnect reason to be recorded")
	}

	// The audit trail must carry the disconnect
	var auditCount int64
	if err := db.Model(&entity.AuditLog{}).
		Where("action = ? AND target_id = ?", entity.AuditActionConnectionDisconnect, connection.ID.String()).
		Count(&auditCount).Error; err != nil {
		t.Fatalf("Failed to count audit logs: %v", err)
	}
	if auditCount != 1 {
		t.Errorf("Expected 1 disconnect audit entry, got %d", auditCount)
	}

	// A disconnected connection is never billed again
	result, err = svc.RunBillingSweep(context.Background())
	if err != nil {
		t.Fatalf("Failed to run fourth billing sweep: %v", err)
	}
	if result.Connections != 0 {
		t.Errorf("Disconnected connection must be excluded from sweeps, processed %d", result.Connections)
	}
}

func TestSuccessfulChargeResetsConsecutiveMisses(t *testing.T) {
	db := setupTestDB(t)
	_, connection := seedBillingPair(t, db)

	// miss, miss, success, miss, miss, miss
	policy := &scriptedChargePolicy{outcomes: []bool{false, false, true, false, false, false}}
	svc := newBillingService(db, policy)

	for i := 0; i < 5; i++ {
		if _, err := svc.RunBillingSweep(context.Background()); err != nil {
			t.Fatalf("Failed to run billing sweep %d: %v", i+1, err)
		}
		stored := reloadConnection(t, db, connection.ID)
		if stored.Status != entity.ConnectionStatusConnected {
			t.Fatalf("Connection disconnected too early on sweep %d", i+1)
		}
	}

	if _, err := svc.RunBillingSweep(context.Background()); err != nil {
		t.Fatalf("Failed to run final billing sweep: %v", err)
	}
	stored := reloadConnection(t, db, connection.ID)
	if stored.Status != entity.ConnectionStatusDisconnected {
		t.Errorf("Expected disconnect after three consecutive misses, got %s", stored.Status)
	}
}

func TestSweepIsolatesProviderFailures(t *testing.T) {
	db := setupTestDB(t)
	faultyProvider, _ := seedBillingPair(t, db)
	_, healthyConnection := seedBillingPair(t, db)

	log := testLogger()
	auditService := NewAuditService(db, log, repoimpl.NewAuditLogRepository())
	connectionRepo := &faultyConnectionRepo{
		InsuranceConnectionRepository: repoimpl.NewInsuranceConnectionRepository(),
		failFor:                       faultyProvider.ID,
	}
	svc := NewBillingService(
		db,
		log,
		repoimpl.NewInsuranceProviderRepository(),
		connectionRepo,
		auditService,
		fixedChargePolicy{outcome: true},
	)

	result, err := svc.RunBillingSweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep must not abort on a per-provider failure: %v", err)
	}

	if result.Failures != 1 {
		t.Errorf("Expected 1 isolated failure, got %d", result.Failures)
	}
	if result.Charged != 1 {
		t.Errorf("Expected healthy provider's connection to be charged, got %d", result.Charged)
	}

	stored := reloadConnection(t, db, healthyConnection.ID)
	if stored.MissedPaymentsCount != 0 {
		t.Errorf("Healthy connection must be charged despite the failure, missed=%d", stored.MissedPaymentsCount)
	}
}
