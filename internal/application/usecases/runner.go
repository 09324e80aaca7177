package usecases

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/remimse/tennis-bots/internal/domain/booking"
	"github.com/remimse/tennis-bots/internal/internaltypes"
)

// Trigger names recorded with each run.
const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
	TriggerOnce     = "once"
)

// Runner owns the booking run: it decides whether today is a booking day,
// wraps attempts in retries, notifies and records the result. At most one run
// executes at a time; overlapping calls get internaltypes.ErrRunInProgress.
type Runner struct {
	Booker   Booker
	Retry    Retrier
	Prefs    booking.Preferences
	Notifier booking.Notifier    // optional
	Recorder booking.RunRecorder // optional

	Location *time.Location
	Now      func() time.Time
	Logger   *slog.Logger

	running atomic.Bool
}

// Today is the current calendar date in the runner's time zone.
func (r *Runner) Today() time.Time {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	t := now()
	if r.Location != nil {
		t = t.In(r.Location)
	}
	return booking.DateOf(t)
}

// RunScheduledBooking is what the daily trigger calls.
func (r *Runner) RunScheduledBooking(ctx context.Context) (booking.Run, error) {
	today := r.Today()
	target := booking.TargetDate(today, r.Prefs)
	if !booking.ShouldBookToday(today, r.Prefs) {
		r.logger().Info("target date is not a preferred day, skipping",
			"target", target.Format(booking.DateLayout), "weekday", target.Weekday().String())
		run := booking.Run{
			ID:         uuid.NewString(),
			Trigger:    TriggerSchedule,
			StartedAt:  time.Now().UTC(),
			FinishedAt: time.Now().UTC(),
			TargetDate: target,
			Skipped:    true,
		}
		r.record(ctx, run)
		return run, nil
	}
	return r.BookDate(ctx, target, TriggerSchedule)
}

// BookDate runs a retried booking for target regardless of the weekday rule.
// The returned error is the last attempt failure once retries are used up.
func (r *Runner) BookDate(ctx context.Context, target time.Time, trigger string) (booking.Run, error) {
	if !r.running.CompareAndSwap(false, true) {
		return booking.Run{}, internaltypes.ErrRunInProgress
	}
	defer r.running.Store(false)

	run := booking.Run{
		ID:         uuid.NewString(),
		Trigger:    trigger,
		StartedAt:  time.Now().UTC(),
		TargetDate: booking.DateOf(target),
	}
	log := r.logger().With("run_id", run.ID, "target", run.TargetDate.Format(booking.DateLayout), "trigger", trigger)
	log.Info("booking run started")

	retry := r.Retry
	retry.Logger = log
	out, tries, err := retry.Do(ctx, func(ctx context.Context, try int) (booking.Outcome, error) {
		log.Info("booking attempt", "try", try)
		return r.Booker.Attempt(ctx, run.TargetDate)
	})
	run.Tries = tries
	run.Outcome = out
	run.FinishedAt = time.Now().UTC()

	switch {
	case err != nil:
		if out.Kind == "" {
			out = booking.Failed(err.Error())
			run.Outcome = out
		}
		r.notify(ctx, log, FailureMessage(out.Reason))
	case out.Succeeded():
		log.Info("booking run succeeded", "slot", out.Slot.String(), "tries", tries)
		r.notify(ctx, log, SuccessMessage(out.Slot))
	default:
		log.Warn("booking run ended without a booking", "reason", out.Reason, "tries", tries)
		r.notify(ctx, log, FailureMessage(out.Reason))
	}

	r.record(ctx, run)
	return run, err
}

// Busy reports whether a run is executing right now.
func (r *Runner) Busy() bool { return r.running.Load() }

func (r *Runner) notify(ctx context.Context, log *slog.Logger, text string) {
	if r.Notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()
	if !r.Notifier.Send(ctx, text) {
		log.Warn("notification not delivered")
	}
}

func (r *Runner) record(ctx context.Context, run booking.Run) {
	if r.Recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := r.Recorder.Record(ctx, run); err != nil {
		r.logger().Warn("recording booking run", "run_id", run.ID, "err", err)
	}
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
