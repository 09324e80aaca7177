// Package scheduler fires the booking run once a day at a fixed wall-clock
// time in the portal's time zone.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/remimse/tennis-bots/internal/domain/booking"
)

// Job is what the trigger runs; usecases.Runner satisfies it.
type Job interface {
	RunScheduledBooking(ctx context.Context) (booking.Run, error)
}

var parser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Spec turns an offset from midnight into a six-field cron expression.
func Spec(at time.Duration) string {
	at = at.Truncate(time.Second) % (24 * time.Hour)
	h := int(at / time.Hour)
	m := int(at % time.Hour / time.Minute)
	s := int(at % time.Minute / time.Second)
	return fmt.Sprintf("%d %d %d * * *", s, m, h)
}

type Daily struct {
	Job      Job
	At       time.Duration // offset from midnight
	Location *time.Location
	Logger   *slog.Logger

	// spec overrides Spec(At); tests use it to fire every second.
	spec string

	mu    sync.Mutex
	cron  *cron.Cron
	entry cron.EntryID
}

func (d *Daily) expr() string {
	if d.spec != "" {
		return d.spec
	}
	return Spec(d.At)
}

func (d *Daily) location() *time.Location {
	if d.Location != nil {
		return d.Location
	}
	return time.Local
}

// NextRun is the first trigger strictly after now.
func (d *Daily) NextRun(now time.Time) time.Time {
	d.mu.Lock()
	c, id := d.cron, d.entry
	d.mu.Unlock()
	if c != nil {
		if e := c.Entry(id); e.Valid() && !e.Next.IsZero() {
			return e.Next
		}
	}
	sched, err := parser.Parse(d.expr())
	if err != nil {
		return time.Time{}
	}
	return sched.Next(now.In(d.location()))
}

// Run blocks until ctx is done. A run still in flight when ctx ends is
// waited for; a trigger that fires while the previous run is going is skipped.
func (d *Daily) Run(ctx context.Context) error {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "scheduler")
	clog := cronLogger{log}

	c := cron.New(
		cron.WithLocation(d.location()),
		cron.WithParser(parser),
		cron.WithLogger(clog),
		cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)),
	)
	id, err := c.AddFunc(d.expr(), func() { d.fire(ctx, log) })
	if err != nil {
		return fmt.Errorf("schedule %q: %w", d.expr(), err)
	}

	d.mu.Lock()
	d.cron, d.entry = c, id
	d.mu.Unlock()

	c.Start()
	log.Info("scheduler started", "spec", d.expr(), "tz", d.location().String(), "next", c.Entry(id).Next)

	<-ctx.Done()
	log.Info("scheduler stopping")
	<-c.Stop().Done()

	d.mu.Lock()
	d.cron = nil
	d.mu.Unlock()
	return nil
}

func (d *Daily) fire(ctx context.Context, log *slog.Logger) {
	if ctx.Err() != nil {
		return
	}
	run, err := d.Job.RunScheduledBooking(ctx)
	if err != nil {
		log.Error("scheduled booking failed", "run_id", run.ID, "err", err)
		return
	}
	if run.Skipped {
		return
	}
	log.Info("scheduled booking finished", "run_id", run.ID, "outcome", run.Outcome.String())
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct{ l *slog.Logger }

func (c cronLogger) Info(msg string, kv ...any) { c.l.Debug("cron: "+msg, kv...) }

func (c cronLogger) Error(err error, msg string, kv ...any) {
	c.l.Error("cron: "+msg, append(kv, "err", err)...)
}
