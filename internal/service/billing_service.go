package service

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"health-records-platform/internal/domain/entity"
	"health-records-platform/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ChargePolicy decides the outcome of one monthly-fee charge attempt. There is
// no real payment gateway; the default policy simulates outcomes with a
// configured success probability. A failed charge is a modeled outcome handled
// by the missed-payment counter, not an error.
type ChargePolicy interface {
	Charge(connection *entity.PatientInsuranceConnection, provider *entity.InsuranceProvider) bool
}

type randomChargePolicy struct {
	successRate float64
}

// NewRandomChargePolicy returns a policy that succeeds with the given
// probability (0.9 in the default configuration).
func NewRandomChargePolicy(successRate float64) ChargePolicy {
	return &randomChargePolicy{successRate: successRate}
}

func (p *randomChargePolicy) Charge(_ *entity.PatientInsuranceConnection, _ *entity.InsuranceProvider) bool {
	return rand.Float64() < p.successRate
}

// SweepResult summarizes one billing sweep run.
type SweepResult struct {
	Providers    int `json:"providers"`
	Connections  int `json:"connections"`
	Charged      int `json:"charged"`
	Missed       int `json:"missed"`
	Disconnected int `json:"disconnected"`
	Failures     int `json:"failures"`
}

// BillingService runs the recurring billing sweep over every active provider's
// connected patients. The missed-payment increment is a read-modify-write, so
// sweeps are serialized: a mutex guarantees one sweep runs to completion before
// the next starts.
type BillingService struct {
	db             *gorm.DB
	log            *logrus.Logger
	providerRepo   repository.InsuranceProviderRepository
	connectionRepo repository.InsuranceConnectionRepository
	auditService   AuditService
	chargePolicy   ChargePolicy

	sweepMu sync.Mutex
}

func NewBillingService(
	db *gorm.DB,
	log *logrus.Logger,
	providerRepo repository.InsuranceProviderRepository,
	connectionRepo repository.InsuranceConnectionRepository,
	auditService AuditService,
	chargePolicy ChargePolicy,
) *BillingService {
	return &BillingService{
		db:             db,
		log:            log,
		providerRepo:   providerRepo,
		connectionRepo: connectionRepo,
		auditService:   auditService,
		chargePolicy:   chargePolicy,
	}
}

// RunBillingSweep charges every connected connection of every active provider
// once. Per-provider and per-connection failures are isolated: they are logged,
// counted, and never abort the rest of the sweep.
func (s *BillingService) RunBillingSweep(ctx context.Context) (*SweepResult, error) {
	s.sweepMu.Lock()
	defer s.sweepMu.Unlock()

	result := &SweepResult{}

	providers, err := s.providerRepo.FindAllActive(s.db.WithContext(ctx))
	if err != nil {
		s.log.Errorf("Billing sweep aborted, failed to list active providers: %+v", err)
		return nil, err
	}
	result.Providers = len(providers)

	for i := range providers {
		provider := &providers[i]
		if err := s.sweepProvider(ctx, provider, result); err != nil {
			s.log.Errorf("Billing sweep failed for provider %s (continuing): %+v", provider.ID, err)
			result.Failures++
		}
	}

	s.log.Infof("Billing sweep complete: providers=%d connections=%d charged=%d missed=%d disconnected=%d failures=%d",
		result.Providers, result.Connections, result.Charged, result.Missed, result.Disconnected, result.Failures)

	return result, nil
}

func (s *BillingService) sweepProvider(ctx context.Context, provider *entity.InsuranceProvider, result *SweepResult) error {
	connections, err := s.connectionRepo.FindConnectedByProviderID(s.db.WithContext(ctx), provider.ID)
	if err != nil {
		return err
	}

	for i := range connections {
		connection := &connections[i]
		result.Connections++
		if err := s.chargeConnection(ctx, provider, connection, result); err != nil {
			s.log.Errorf("Billing charge failed for connection %s (continuing): %+v", connection.ID, err)
			result.Failures++
		}
	}

	return nil
}

func (s *BillingService) chargeConnection(
	ctx context.Context,
	provider *entity.InsuranceProvider,
	connection *entity.PatientInsuranceConnection,
	result *SweepResult,
) error {
	now := time.Now().UTC()

	if s.chargePolicy.Charge(connection, provider) {
		connection.RecordSuccessfulCharge(now)
		if err := s.connectionRepo.Update(s.db.WithContext(ctx), connection); err != nil {
			return err
		}
		result.Charged++
		s.log.Infof("Billing charge succeeded: connection=%s provider=%s fee=%.2f", connection.ID, provider.ID, provider.MonthlyFee)
		return nil
	}

	limitReached := connection.RecordMissedCharge()
	if limitReached {
		connection.Disconnect(now, "3 consecutive missed payments")
	}
	if err := s.connectionRepo.Update(s.db.WithContext(ctx), connection); err != nil {
		return err
	}

	result.Missed++
	s.log.Warnf("Billing charge missed: connection=%s provider=%s missed_count=%d", connection.ID, provider.ID, connection.MissedPaymentsCount)

	if limitReached {
		result.Disconnected++
		s.auditService.Record(ctx, nil, entity.AuditActionConnectionDisconnect,
			"patient_insurance_connection", connection.ID.String(), entity.JSON{
				"reason":                "3 consecutive missed payments",
				"missed_payments_count": connection.MissedPaymentsCount,
				"provider_id":           provider.ID.String(),
				"provider_name":         provider.Name,
				"patient_id":            connection.PatientID.String(),
			})
		s.log.Warnf("Connection auto-disconnected after %d missed payments: connection=%s provider=%s",
			connection.MissedPaymentsCount, connection.ID, provider.ID)
	}

	return nil
}
