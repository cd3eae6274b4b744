package usecase

import (
	"strings"
	"testing"

	"health-records-platform/internal/delivery/dto"
	"health-records-platform/internal/domain/entity"
	"health-records-platform/internal/repository"
)

func newClaimUsecase(t *testing.T) (ClaimUsecase, *testEnv) {
	env := newTestEnv(t)
	uc := NewClaimUsecase(
		env.db,
		env.log,
		repository.NewUserRepository(),
		repository.NewInsuranceProviderRepository(),
		repository.NewInsuranceConnectionRepository(),
		repository.NewClaimRepository(),
		env.audit,
	)
	return uc, env
}

type claimFixture struct {
	patient    *entity.User
	hospital   *entity.User
	owner      *entity.User
	connection *entity.PatientInsuranceConnection
}

func setupClaimFixture(t *testing.T, env *testEnv) *claimFixture {
	t.Helper()
	patient := createTestUser(t, env.db, entity.RolePatient, "")
	hospital := createTestUser(t, env.db, entity.RoleHospital, "City General")
	owner := createTestUser(t, env.db, entity.RoleInsuranceProvider, "")
	_, connection := createConnectedInsurance(t, env.db, patient, owner)

	return &claimFixture{
		patient:    patient,
		hospital:   hospital,
		owner:      owner,
		connection: connection,
	}
}

func submitTestClaim(t *testing.T, uc ClaimUsecase, f *claimFixture) *dto.ClaimResponse {
	t.Helper()
	claim, err := uc.Submit(ctxForUser(f.hospital.ID), &dto.SubmitClaimRequest{
		PatientUID:   f.patient.UID,
		ConnectionID: f.connection.ID,
		Amount:       1200,
		ClaimType:    "outpatient",
		Description:  "consultation and imaging",
	})
	if err != nil {
		t.Fatalf("Failed to submit claim: %v", err)
	}
	return claim
}

func TestSubmitClaimRequiresConnectedConnection(t *testing.T) {
	uc, env := newClaimUsecase(t)
	f := setupClaimFixture(t, env)

	claim := submitTestClaim(t, uc, f)
	if claim.Status != string(entity.ClaimStatusPending) {
		t.Errorf("Expected pending claim, got %s", claim.Status)
	}
	if !strings.HasPrefix(claim.ClaimNumber, "CLM-") {
		t.Errorf("Expected CLM- claim number, got %s", claim.ClaimNumber)
	}

	// A disconnected connection cannot carry new claims
	if err := env.db.Model(f.connection).Update("status", entity.ConnectionStatusDisconnected).Error; err != nil {
		t.Fatalf("Failed to disconnect connection: %v", err)
	}
	_, err := uc.Submit(ctxForUser(f.hospital.ID), &dto.SubmitClaimRequest{
		PatientUID:   f.patient.UID,
		ConnectionID: f.connection.ID,
		Amount:       500,
		ClaimType:    "emergency",
	})
	if err != ErrInvalidConnection {
		t.Errorf("Expected ErrInvalidConnection, got %v", err)
	}
}

func TestSubmitClaimRejectsForeignConnection(t *testing.T) {
	uc, env := newClaimUsecase(t)
	f := setupClaimFixture(t, env)
	stranger := createTestUser(t, env.db, entity.RolePatient, "")

	// The connection belongs to f.patient, not to the stranger
	_, err := uc.Submit(ctxForUser(f.hospital.ID), &dto.SubmitClaimRequest{
		PatientUID:   stranger.UID,
		ConnectionID: f.connection.ID,
		Amount:       800,
		ClaimType:    "inpatient",
	})
	if err != ErrInvalidConnection {
		t.Errorf("Expected ErrInvalidConnection, got %v", err)
	}
}

func TestClaimTwoStageApproval(t *testing.T) {
	uc, env := newClaimUsecase(t)
	f := setupClaimFixture(t, env)
	claim := submitTestClaim(t, uc, f)

	// The provider cannot move before the patient confirms
	if _, err := uc.ProviderApprove(ctxForUser(f.owner.ID), claim.ID); err != ErrClaimNotPatientApproved {
		t.Fatalf("Expected ErrClaimNotPatientApproved before patient decision, got %v", err)
	}

	confirmed, err := uc.PatientApprove(ctxForUser(f.patient.ID), claim.ID, "treatment received")
	if err != nil {
		t.Fatalf("Failed to confirm claim: %v", err)
	}
	if confirmed.Status != string(entity.ClaimStatusPatientApproved) {
		t.Errorf("Expected patient_approved, got %s", confirmed.Status)
	}
	if confirmed.PatientNote != "treatment received" {
		t.Errorf("Expected patient note to be stored, got %s", confirmed.PatientNote)
	}

	// Paying before the provider decision is a state conflict
	if _, err := uc.Pay(ctxForUser(f.owner.ID), claim.ID); err != ErrClaimNotApproved {
		t.Fatalf("Expected ErrClaimNotApproved before provider approval, got %v", err)
	}

	approved, err := uc.ProviderApprove(ctxForUser(f.owner.ID), claim.ID)
	if err != nil {
		t.Fatalf("Failed to approve claim: %v", err)
	}
	if approved.Status != string(entity.ClaimStatusApproved) {
		t.Errorf("Expected approved, got %s", approved.Status)
	}

	paid, err := uc.Pay(ctxForUser(f.owner.ID), claim.ID)
	if err != nil {
		t.Fatalf("Failed to pay claim: %v", err)
	}
	if paid.Status != string(entity.ClaimStatusPaid) {
		t.Errorf("Expected paid, got %s", paid.Status)
	}
	if paid.PaidAmount != paid.Amount {
		t.Errorf("Expected full payout %0.2f, got %0.2f", paid.Amount, paid.PaidAmount)
	}
	if paid.PaidAt == nil {
		t.Error("Expected paid_at to be stamped")
	}

	// Paying a paid claim twice must fail
	if _, err := uc.Pay(ctxForUser(f.owner.ID), claim.ID); err != ErrClaimNotApproved {
		t.Errorf("Expected ErrClaimNotApproved on double pay, got %v", err)
	}
}

func TestPatientRejectStopsWorkflow(t *testing.T) {
	uc, env := newClaimUsecase(t)
	f := setupClaimFixture(t, env)
	claim := submitTestClaim(t, uc, f)

	rejected, err := uc.PatientReject(ctxForUser(f.patient.ID), claim.ID, "never admitted")
	if err != nil {
		t.Fatalf("Failed to reject claim: %v", err)
	}
	if rejected.Status != string(entity.ClaimStatusRejected) {
		t.Errorf("Expected rejected, got %s", rejected.Status)
	}

	// Rejected is terminal for both stages
	if _, err := uc.PatientApprove(ctxForUser(f.patient.ID), claim.ID, ""); err != ErrClaimNotPending {
		t.Errorf("Expected ErrClaimNotPending, got %v", err)
	}
	if _, err := uc.ProviderApprove(ctxForUser(f.owner.ID), claim.ID); err != ErrClaimNotPatientApproved {
		t.Errorf("Expected ErrClaimNotPatientApproved, got %v", err)
	}
}

func TestProviderRejectRecordsReason(t *testing.T) {
	uc, env := newClaimUsecase(t)
	f := setupClaimFixture(t, env)
	claim := submitTestClaim(t, uc, f)

	if _, err := uc.PatientApprove(ctxForUser(f.patient.ID), claim.ID, ""); err != nil {
		t.Fatalf("Failed to confirm claim: %v", err)
	}

	rejected, err := uc.ProviderReject(ctxForUser(f.owner.ID), claim.ID, "outside coverage")
	if err != nil {
		t.Fatalf("Failed to reject claim: %v", err)
	}
	if rejected.Status != string(entity.ClaimStatusRejected) {
		t.Errorf("Expected rejected, got %s", rejected.Status)
	}
	if rejected.RejectionReason != "outside coverage" {
		t.Errorf("Expected rejection reason to be stored, got %s", rejected.RejectionReason)
	}
}

func TestClaimDecisionsRequireOwnership(t *testing.T) {
	uc, env := newClaimUsecase(t)
	f := setupClaimFixture(t, env)
	claim := submitTestClaim(t, uc, f)

	otherPatient := createTestUser(t, env.db, entity.RolePatient, "")
	if _, err := uc.PatientApprove(ctxForUser(otherPatient.ID), claim.ID, ""); err != ErrClaimNotOwned {
		t.Errorf("Expected ErrClaimNotOwned, got %v", err)
	}

	if _, err := uc.PatientApprove(ctxForUser(f.patient.ID), claim.ID, ""); err != nil {
		t.Fatalf("Failed to confirm claim: %v", err)
	}

	otherInsurer := createTestUser(t, env.db, entity.RoleInsuranceProvider, "")
	if err := env.db.Create(&entity.InsuranceProvider{
		OwnerID:       otherInsurer.ID,
		Name:          "Other Insurance",
		MonthlyFee:    30,
		CoverageLimit: 5000,
		IsActive:      true,
	}).Error; err != nil {
		t.Fatalf("Failed to create second provider: %v", err)
	}
	if _, err := uc.ProviderApprove(ctxForUser(otherInsurer.ID), claim.ID); err != ErrNotProviderOwner {
		t.Errorf("Expected ErrNotProviderOwner, got %v", err)
	}
}

func TestRejectClaimRequiresReason(t *testing.T) {
	uc, env := newClaimUsecase(t)
	f := setupClaimFixture(t, env)
	claim := submitTestClaim(t, uc, f)

	if _, err := uc.PatientReject(ctxForUser(f.patient.ID), claim.ID, "   "); err != ErrClaimReasonRequired {
		t.Errorf("Expected ErrClaimReasonRequired, got %v", err)
	}

	// A refused rejection leaves the claim untouched
	var stored entity.Claim
	if err := env.db.First(&stored, "id = ?", claim.ID).Error; err != nil {
		t.Fatalf("Failed to reload claim: %v", err)
	}
	if stored.Status != entity.ClaimStatusPending {
		t.Errorf("Expected claim to stay pending, got %s", stored.Status)
	}

	if _, err := uc.PatientApprove(ctxForUser(f.patient.ID), claim.ID, "confirmed"); err != nil {
		t.Fatalf("Failed to confirm claim: %v", err)
	}
	if _, err := uc.ProviderReject(ctxForUser(f.owner.ID), claim.ID, ""); err != ErrClaimReasonRequired {
		t.Errorf("Expected ErrClaimReasonRequired, got %v", err)
	}
	if err := env.db.First(&stored, "id = ?", claim.ID).Error; err != nil {
		t.Fatalf("Failed to reload claim: %v", err)
	}
	if stored.Status != entity.ClaimStatusPatientApproved {
		t.Errorf("Expected claim to stay patient_approved, got %s", stored.Status)
	}
}
