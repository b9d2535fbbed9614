package scheduler

import (
	"context"
	"time"

	"auctionhouse/pkg/logger"
)

// Sweeper is the slice of ItemService the runners invoke.
type Sweeper interface {
	CheckAndCompleteExpiredAuctions(ctx context.Context) (int, error)
	BroadcastEndingSoon(ctx context.Context, horizon time.Duration) (int, error)
}

// Runner drives the periodic completion sweep and the finer-grained
// countdown broadcast. Both loops stop when their context is cancelled.
type Runner struct {
	sweeper          Sweeper
	sweepInterval    time.Duration
	countdownEvery   time.Duration
	countdownHorizon time.Duration
	log              *logger.Logger
}

func NewRunner(sweeper Sweeper, sweepInterval, countdownEvery, countdownHorizon time.Duration, log *logger.Logger) *Runner {
	return &Runner{
		sweeper:          sweeper,
		sweepInterval:    sweepInterval,
		countdownEvery:   countdownEvery,
		countdownHorizon: countdownHorizon,
		log:              log,
	}
}

// RunCompletionSweep resolves expired auctions on a ticker.
func (r *Runner) RunCompletionSweep(ctx context.Context) {
	ticker := time.NewTicker(r.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := r.sweeper.CheckAndCompleteExpiredAuctions(ctx)
			if err != nil {
				r.log.Errorf("completion sweep failed: %v", err)
				continue
			}
			if count > 0 {
				r.log.Infof("completion sweep resolved %d auction(s) into transactions", count)
			}
		}
	}
}

// RunCountdown emits advisory auction_ending broadcasts on a faster ticker.
func (r *Runner) RunCountdown(ctx context.Context) {
	ticker := time.NewTicker(r.countdownEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := r.sweeper.BroadcastEndingSoon(ctx, r.countdownHorizon)
			if err != nil {
				r.log.Errorf("countdown sweep failed: %v", err)
				continue
			}
			if count > 0 {
				r.log.Infof("sent %d countdown notification(s)", count)
			}
		}
	}
}
