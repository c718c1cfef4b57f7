package videogen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"padhai/internal/domain"
	"padhai/internal/infra"
)

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type poller struct {
	provider Provider
	cfg      PollConfig
	sleep    Sleeper
	logger   infra.Logger
}

// wait refreshes job until it is done or MaxAttempts refreshes happened. It
// returns the last snapshot and the number of refresh calls made.
func (p *poller) wait(ctx context.Context, job *Job) (*Job, int, error) {
	attempts := 0
	for !job.Done && attempts < p.cfg.MaxAttempts {
		p.logger.Debug().
			Str("operation", job.OperationName).
			Int("attempt", attempts+1).
			Int("max_attempts", p.cfg.MaxAttempts).
			Msg("videogen: waiting for operation")

		if err := p.sleep(ctx, p.cfg.Interval); err != nil {
			return job, attempts, err
		}
		next, err := p.provider.Refresh(ctx, job)
		attempts++
		if err != nil {
			return job, attempts, err
		}
		if next == nil {
			return job, attempts, errors.New("provider returned empty operation status")
		}
		job = next
	}
	if !job.Done {
		return job, attempts, fmt.Errorf("%w after %d attempts of %s", domain.ErrGenerationTimeout, attempts, p.cfg.Interval)
	}
	return job, attempts, nil
}
