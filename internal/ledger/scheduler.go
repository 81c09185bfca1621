package ledger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// InterestAccrualScheduler periodically applies interest to every savings
// account. Each account is accrued through Ledger.Apply, so a sweep holds one
// account lock at a time and never blocks foreground operations on other
// accounts.
type InterestAccrualScheduler struct {
	ledger   *Ledger
	interval time.Duration
	log      *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func NewInterestAccrualScheduler(l *Ledger, interval time.Duration, log *zap.Logger) *InterestAccrualScheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &InterestAccrualScheduler{
		ledger:   l,
		interval: interval,
		log:      log,
		done:     make(chan struct{}),
	}
}

// Start launches the accrual loop. Call Stop to shut it down.
func (s *InterestAccrualScheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.run(ctx)
	s.log.Info("interest accrual scheduler started", zap.Duration("interval", s.interval))
}

func (s *InterestAccrualScheduler) run(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep applies one accrual tick to each savings account. The stop signal is
// checked between accounts so shutdown is not delayed by a long sweep.
func (s *InterestAccrualScheduler) sweep(ctx context.Context) {
	for _, acct := range s.ledger.SavingsAccounts() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		applied, err := s.ledger.AccrueInterest(ctx, acct.Number())
		if err != nil {
			s.log.Warn("interest accrual failed",
				zap.Int("account", acct.Number()),
				zap.Error(err))
			continue
		}
		if applied.IsPositive() {
			s.log.Debug("interest applied",
				zap.Int("account", acct.Number()),
				zap.String("amount", applied.String()))
		}
	}
}

// Stop cancels the loop and waits up to grace for the in-flight sweep to
// finish, so final state is flushed before the process exits.
func (s *InterestAccrualScheduler) Stop(grace time.Duration) error {
	if s.cancel == nil {
		return nil
	}
	s.cancel()
	select {
	case <-s.done:
		return nil
	case <-time.After(grace):
		return errors.New("accrual scheduler did not stop within grace period")
	}
}
