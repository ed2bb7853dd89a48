package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	appmarketplace "github.com/lakshya-byte/krishinetra-backend/internal/application/marketplace"
)

// BiddingCloser runs one closeout pass over due bidding windows
type BiddingCloser interface {
	CloseDue(ctx context.Context) (*appmarketplace.CloseoutStats, error)
}

// BiddingCloseoutTriggerConfig holds configuration for the closeout trigger
type BiddingCloseoutTriggerConfig struct {
	// CheckInterval is how often to look for overdue bidding windows
	CheckInterval time.Duration
}

// DefaultBiddingCloseoutTriggerConfig returns default trigger configuration
func DefaultBiddingCloseoutTriggerConfig() BiddingCloseoutTriggerConfig {
	return BiddingCloseoutTriggerConfig{
		CheckInterval: time.Minute,
	}
}

// BiddingCloseoutTrigger periodically closes bidding windows whose
// closing date has passed. Closing is idempotent and version-guarded,
// so running more than one trigger instance is safe.
type BiddingCloseoutTrigger struct {
	config BiddingCloseoutTriggerConfig
	closer BiddingCloser
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewBiddingCloseoutTrigger creates a new closeout trigger
func NewBiddingCloseoutTrigger(
	config BiddingCloseoutTriggerConfig,
	closer BiddingCloser,
	logger *zap.Logger,
) *BiddingCloseoutTrigger {
	return &BiddingCloseoutTrigger{
		config: config,
		closer: closer,
		logger: logger,
	}
}

// Start starts the trigger
func (t *BiddingCloseoutTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Bidding closeout trigger started",
		zap.Duration("check_interval", t.config.CheckInterval),
	)

	return nil
}

// Stop stops the trigger
func (t *BiddingCloseoutTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Bidding closeout trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runLoop runs a closeout pass on every tick
func (t *BiddingCloseoutTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.runOnce(ctx)
		}
	}
}

func (t *BiddingCloseoutTrigger) runOnce(ctx context.Context) {
	stats, err := t.closer.CloseDue(ctx)
	if err != nil {
		t.logger.Error("Bidding closeout pass failed", zap.Error(err))
		return
	}

	if stats.TotalDue > 0 {
		t.logger.Info("Bidding closeout pass finished",
			zap.Int("total_due", stats.TotalDue),
			zap.Int("closed", stats.Closed),
			zap.Int("with_winner", stats.WithWinner),
			zap.Int("failed", stats.Failed),
		)
	}
}
