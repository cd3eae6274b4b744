package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// BillingScheduler owns the recurring billing sweep timer. It is started once
// at process initialization and stopped through context cancellation during
// shutdown. The interval is a deployment parameter: monthly in production,
// hours in development.
type BillingScheduler struct {
	billing  *BillingService
	log      *logrus.Logger
	interval time.Duration
	done     chan struct{}
}

func NewBillingScheduler(billing *BillingService, log *logrus.Logger, interval time.Duration) *BillingScheduler {
	return &BillingScheduler{
		billing:  billing,
		log:      log,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop in a background goroutine.
func (s *BillingScheduler) Start(ctx context.Context) {
	s.log.Infof("Billing scheduler started, sweep interval %s", s.interval)
	go s.run(ctx)
}

func (s *BillingScheduler) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Billing scheduler stopped")
			return
		case <-ticker.C:
			if _, err := s.billing.RunBillingSweep(ctx); err != nil {
				s.log.Errorf("Scheduled billing sweep failed: %+v", err)
			}
		}
	}
}

// Wait blocks until the sweep loop has exited after cancellation.
func (s *BillingScheduler) Wait() {
	<-s.done
}
