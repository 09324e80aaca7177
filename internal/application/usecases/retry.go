package usecases

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/remimse/tennis-bots/internal/domain/booking"
)

// RetryPolicy bounds how often a failed attempt is repeated.
type RetryPolicy struct {
	Tries     int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Tries: 3, BaseDelay: 2 * time.Second, MaxDelay: 10 * time.Second}
}

// Delay is the wait before the n-th retry (n >= 1):
// min(MaxDelay, BaseDelay * 2^(n-1)).
func (p RetryPolicy) Delay(n int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < n; i++ {
		if d >= p.MaxDelay {
			break
		}
		d *= 2
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// AttemptFunc runs one full attempt. try counts from 1.
type AttemptFunc func(ctx context.Context, try int) (booking.Outcome, error)

// Retrier repeats attempts that end in booking.ErrAttemptFailed. Any other
// result, including a nil error with a no-slots outcome, is final.
type Retrier struct {
	Policy RetryPolicy
	Sleep  SleepFunc
	Logger *slog.Logger
}

// Do returns the final outcome, the number of tries made and, when every try
// failed, the last failure unchanged.
func (r Retrier) Do(ctx context.Context, fn AttemptFunc) (booking.Outcome, int, error) {
	tries := r.Policy.Tries
	if tries < 1 {
		tries = 1
	}
	sleep := r.Sleep
	if sleep == nil {
		sleep = SleepContext
	}
	log := r.Logger
	if log == nil {
		log = slog.Default()
	}

	var (
		out booking.Outcome
		err error
	)
	for try := 1; try <= tries; try++ {
		out, err = fn(ctx, try)
		if err == nil || !errors.Is(err, booking.ErrAttemptFailed) {
			return out, try, err
		}
		if try == tries {
			log.Error("booking failed, retries exhausted", "tries", try, "err", err)
			break
		}
		delay := r.Policy.Delay(try)
		log.Warn("booking attempt failed, retrying", "try", try, "of", tries, "delay", delay, "err", err)
		if serr := sleep(ctx, delay); serr != nil {
			log.Info("retry wait interrupted", "err", serr)
			return out, try, err
		}
	}
	return out, tries, err
}
