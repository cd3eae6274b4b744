package usecase

import (
	"testing"

	"health-records-platform/internal/delivery/dto"
	"health-records-platform/internal/domain/entity"
	"health-records-platform/internal/repository"

	"github.com/google/uuid"
)

func newAccessGrantUsecase(t *testing.T) (AccessGrantUsecase, *testEnv) {
	env := newTestEnv(t)
	uc := NewAccessGrantUsecase(env.db, env.log, repository.NewUserRepository(), repository.NewAccessGrantRepository(), env.audit)
	return uc, env
}

func TestRequestAccessCreatesPendingGrant(t *testing.T) {
	uc, env := newAccessGrantUsecase(t)
	patient := createTestUser(t, env.db, entity.RolePatient, "")
	doctor := createTestUser(t, env.db, entity.RoleDoctor, "")

	grant, err := uc.RequestAccess(ctxForUser(doctor.ID), &dto.RequestAccessRequest{
		PatientUID: patient.UID,
		AccessType: "full",
		Reason:     "ongoing treatment",
	})
	if err != nil {
		t.Fatalf("Failed to request access: %v", err)
	}

	if grant.Status != string(entity.GrantStatusPending) {
		t.Errorf("Expected pending grant, got %s", grant.Status)
	}
	if grant.HospitalNotified {
		t.Error("Non-emergency request must not set hospital_notified")
	}
}

func TestEmergencyRequestNotifiesAffiliatedHospital(t *testing.T) {
	uc, env := newAccessGrantUsecase(t)
	affiliated := createTestUser(t, env.db, entity.RolePatient, "City General")
	unaffiliated := createTestUser(t, env.db, entity.RolePatient, "")
	responder := createTestUser(t, env.db, entity.RoleEmergencyResponder, "")

	grant, err := uc.RequestAccess(ctxForUser(responder.ID), &dto.RequestAccessRequest{
		PatientUID:  affiliated.UID,
		AccessType:  "emergency_only",
		Reason:      "roadside emergency",
		IsEmergency: true,
	})
	if err != nil {
		t.Fatalf("Failed to request emergency access: %v", err)
	}
	if !grant.HospitalNotified {
		t.Error("Emergency request against affiliated patient must set hospital_notified")
	}

	grant, err = uc.RequestAccess(ctxForUser(responder.ID), &dto.RequestAccessRequest{
		PatientUID:  unaffiliated.UID,
		AccessType:  "emergency_only",
		Reason:      "roadside emergency",
		IsEmergency: true,
	})
	if err != nil {
		t.Fatalf("Failed to request emergency access: %v", err)
	}
	if grant.HospitalNotified {
		t.Error("Emergency request against unaffiliated patient must not set hospital_notified")
	}
}

func TestRespondOnlyFromPending(t *testing.T) {
	uc, env := newAccessGrantUsecase(t)
	patient := createTestUser(t, env.db, entity.RolePatient, "")
	doctor := createTestUser(t, env.db, entity.RoleDoctor, "")

	grant, err := uc.RequestAccess(ctxForUser(doctor.ID), &dto.RequestAccessRequest{
		PatientUID: patient.UID,
		AccessType: "full",
		Reason:     "checkup",
	})
	if err != nil {
		t.Fatalf("Failed to request access: %v", err)
	}

	responded, err := uc.Respond(ctxForUser(patient.ID), grant.ID, true)
	if err != nil {
		t.Fatalf("Failed to respond to grant: %v", err)
	}
	if responded.Status != string(entity.GrantStatusGranted) {
		t.Errorf("Expected granted, got %s", responded.Status)
	}

	// A second decision must be rejected, not silently overwrite
	if _, err := uc.Respond(ctxForUser(patient.ID), grant.ID, false); err != ErrGrantAlreadyResponded {
		t.Errorf("Expected ErrGrantAlreadyResponded, got %v", err)
	}
}

func TestRespondRequiresOwnership(t *testing.T) {
	uc, env := newAccessGrantUsecase(t)
	patient := createTestUser(t, env.db, entity.RolePatient, "")
	other := createTestUser(t, env.db, entity.RolePatient, "")
	doctor := createTestUser(t, env.db, entity.RoleDoctor, "")

	grant, err := uc.RequestAccess(ctxForUser(doctor.ID), &dto.RequestAccessRequest{
		PatientUID: patient.UID,
		AccessType: "full",
		Reason:     "checkup",
	})
	if err != nil {
		t.Fatalf("Failed to request access: %v", err)
	}

	if _, err := uc.Respond(ctxForUser(other.ID), grant.ID, true); err != ErrGrantNotOwned {
		t.Errorf("Expected ErrGrantNotOwned, got %v", err)
	}
}

func TestCheckAccessCoversPairHistory(t *testing.T) {
	uc, env := newAccessGrantUsecase(t)
	patient := createTestUser(t, env.db, entity.RolePatient, "")
	doctor := createTestUser(t, env.db, entity.RoleDoctor, "")

	request := func() *dto.AccessGrantResponse {
		grant, err := uc.RequestAccess(ctxForUser(doctor.ID), &dto.RequestAccessRequest{
			PatientUID: patient.UID,
			AccessType: "full",
			Reason:     "treatment",
		})
		if err != nil {
			t.Fatalf("Failed to request access: %v", err)
		}
		return grant
	}
	hasAccess := func() bool {
		result, err := uc.CheckAccess(env.ctx(), patient.UID, doctor.UID)
		if err != nil {
			t.Fatalf("Failed to check access: %v", err)
		}
		return result.HasAccess
	}

	if hasAccess() {
		t.Error("No grants yet, expected no access")
	}

	first := request()
	if hasAccess() {
		t.Error("Pending grant must not confer access")
	}

	if _, err := uc.Respond(ctxForUser(patient.ID), first.ID, true); err != nil {
		t.Fatalf("Failed to approve grant: %v", err)
	}
	if !hasAccess() {
		t.Error("Granted row must confer access")
	}

	// A newer rejected row must not disturb the older granted one
	second := request()
	if _, err := uc.Respond(ctxForUser(patient.ID), second.ID, false); err != nil {
		t.Fatalf("Failed to reject grant: %v", err)
	}
	if !hasAccess() {
		t.Error("Access must hold while any granted row exists for the pair")
	}

	if _, err := uc.Revoke(ctxForUser(patient.ID), first.ID); err != nil {
		t.Fatalf("Failed to revoke grant: %v", err)
	}
	if hasAccess() {
		t.Error("Revoking the only granted row must remove access")
	}
}

func TestRevokeOnlyGrantedRows(t *testing.T) {
	uc, env := newAccessGrantUsecase(t)
	patient := createTestUser(t, env.db, entity.RolePatient, "")
	doctor := createTestUser(t, env.db, entity.RoleDoctor, "")

	grant, err := uc.RequestAccess(ctxForUser(doctor.ID), &dto.RequestAccessRequest{
		PatientUID: patient.UID,
		AccessType: "full",
		Reason:     "treatment",
	})
	if err != nil {
		t.Fatalf("Failed to request access: %v", err)
	}

	// Revoking a pending grant must error, never flip state
	if _, err := uc.Revoke(ctxForUser(patient.ID), grant.ID); err != ErrGrantNotGranted {
		t.Errorf("Expected ErrGrantNotGranted, got %v", err)
	}

	var stored entity.AccessGrant
	if err := env.db.First(&stored, "id = ?", grant.ID).Error; err != nil {
		t.Fatalf("Failed to reload grant: %v", err)
	}
	if stored.Status != entity.GrantStatusPending {
		t.Errorf("Expected grant to stay pending, got %s", stored.Status)
	}
}

func TestRequestAccessUnknownPatient(t *testing.T) {
	uc, env := newAccessGrantUsecase(t)
	doctor := createTestUser(t, env.db, entity.RoleDoctor, "")

	_, err := uc.RequestAccess(ctxForUser(doctor.ID), &dto.RequestAccessRequest{
		PatientUID: "HID999999999",
		AccessType: "full",
		Reason:     "treatment",
	})
	if err != ErrPatientNotFound {
		t.Errorf("Expected ErrPatientNotFound, got %v", err)
	}
}

func TestRespondUnknownGrant(t *testing.T) {
	uc, env := newAccessGrantUsecase(t)
	patient := createTestUser(t, env.db, entity.RolePatient, "")

	if _, err := uc.Respond(ctxForUser(patient.ID), uuid.New(), true); err != ErrGrantNotFound {
		t.Errorf("Expected ErrGrantNotFound, got %v", err)
	}
}
