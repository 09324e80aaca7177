package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/remimse/tennis-bots/internal/domain/booking"
)

// Screenshot tags, used as file name prefixes.
const (
	TagLoginFailed = "login_failed"
	TagNoSlots     = "no_slots"
	TagError       = "error"
)

// ScreenshotPolicy decides when diagnostic screenshots are written and where.
type ScreenshotPolicy struct {
	Dir       string
	OnError   bool
	OnNoSlots bool
}

// Path names a screenshot <dir>/<tag>_<YYYYMMDD_HHMMSS>.png.
func (p ScreenshotPolicy) Path(tag string, at time.Time) string {
	return filepath.Join(p.Dir, fmt.Sprintf("%s_%s.png", tag, at.Format("20060102_150405")))
}

// Booker performs one booking attempt for a target date.
type Booker interface {
	Attempt(ctx context.Context, target time.Time) (booking.Outcome, error)
}

// Attempter is the booking attempt state machine. Each call to Attempt opens
// its own browser session and closes it before returning.
type Attempter struct {
	Sessions booking.SessionFactory
	Username string
	Password string
	Prefs    booking.Preferences

	Screenshots ScreenshotPolicy
	// SettleDelay lets the calendar finish rendering before slots are read.
	SettleDelay time.Duration

	Sleep  SleepFunc
	Now    func() time.Time
	Logger *slog.Logger
}

// Attempt walks login, navigation, date selection, slot scan and booking.
// Failures that deserve a retry return a *booking.AttemptError; an empty or
// exhausted slot list is the no-slots outcome with a nil error.
func (a *Attempter) Attempt(ctx context.Context, target time.Time) (out booking.Outcome, err error) {
	target = booking.DateOf(target)
	log := a.logger().With("target", target.Format(booking.DateLayout))

	state := booking.StateIdle
	enter := func(s booking.State) {
		state = s
		log.Debug("attempt state", "state", s)
	}

	sess, err := a.Sessions.NewSession(ctx)
	if err != nil {
		return a.fail(log, nil, state, "", "could not open browser session", err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			log.Warn("closing browser session", "err", cerr)
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			out, err = a.fail(log, sess, state, TagError, "booking failed", fmt.Errorf("panic: %v", r))
		}
	}()

	enter(booking.StateLoggingIn)
	login := sess.Login()
	if err := login.Navigate(ctx); err != nil {
		return a.fail(log, sess, state, TagLoginFailed, "login failed", fmt.Errorf("%w: %v", booking.ErrLoginFailed, err))
	}
	ok, err := login.Login(ctx, a.Username, a.Password)
	if err != nil {
		return a.fail(log, sess, state, TagLoginFailed, "login failed", fmt.Errorf("%w: %v", booking.ErrLoginFailed, err))
	}
	if !ok {
		return a.fail(log, sess, state, TagLoginFailed, "login failed", booking.ErrLoginFailed)
	}

	enter(booking.StateNavigatingToResource)
	if err := ctx.Err(); err != nil {
		return a.fail(log, sess, state, "", "booking cancelled", err)
	}
	page := sess.Booking()
	if err := page.NavigateToResource(ctx); err != nil {
		return a.fail(log, sess, state, TagError, "navigation failed", err)
	}

	enter(booking.StateSelectingDate)
	page.SelectDate(ctx, target)

	enter(booking.StateScanningSlots)
	if err := a.sleep(ctx, a.SettleDelay); err != nil {
		return a.fail(log, sess, state, "", "booking cancelled", err)
	}
	slots, err := page.ScanSlots(ctx)
	if err != nil {
		return a.fail(log, sess, state, TagError, "slot scan failed", err)
	}
	slots = validSlots(log, slots)
	ranked, fallback := booking.RankDetailed(slots, a.Prefs)
	log.Info("slots scanned", "found", len(slots), "ranked", len(ranked), "window_fallback", fallback)
	if fallback {
		log.Warn("no slots in preferred window, trying any available slot", "window", a.Prefs.Window.String())
	}

	enter(booking.StateAttemptingSlot)
	for i, s := range ranked {
		if err := ctx.Err(); err != nil {
			return a.fail(log, sess, state, "", "booking cancelled", err)
		}
		s = s.WithDate(target)
		slotLog := log.With("court", s.Resource, "start", s.Start.String(), "rank", i+1)
		if a.tryBook(ctx, slotLog, page, s) {
			enter(booking.StateSucceeded)
			slotLog.Info("slot booked")
			return booking.Booked(s), nil
		}
		slotLog.Warn("slot booking rejected, moving on")
	}

	enter(booking.StateNoSlotsFound)
	reason := "No available slots matching preferences"
	if len(ranked) > 0 {
		reason = fmt.Sprintf("None of the %d candidate slots could be booked", len(ranked))
	}
	if a.Screenshots.OnNoSlots {
		a.screenshot(log, sess, TagNoSlots)
	}
	log.Warn("no slot booked", "reason", reason)
	return booking.NoSlots(reason), nil
}

// validSlots drops scraped slots whose start is not before their end.
func validSlots(log *slog.Logger, slots []booking.Slot) []booking.Slot {
	out := make([]booking.Slot, 0, len(slots))
	for _, s := range slots {
		if err := s.Validate(); err != nil {
			log.Warn("ignoring invalid slot", "err", err)
			continue
		}
		out = append(out, s)
	}
	return out
}

// tryBook keeps a misbehaving page from ending the whole attempt.
func (a *Attempter) tryBook(ctx context.Context, log *slog.Logger, page booking.BookingPage, s booking.Slot) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("slot booking panicked", "panic", r)
			ok = false
		}
	}()
	return page.BookSlot(ctx, s)
}

func (a *Attempter) fail(log *slog.Logger, sess booking.Session, state booking.State, tag, reason string, cause error) (booking.Outcome, error) {
	if sess != nil && tag != "" && a.Screenshots.OnError {
		a.screenshot(log, sess, tag)
	}
	aerr := &booking.AttemptError{State: state, Reason: reason, Err: cause}
	log.Error("booking attempt failed", "state", state, "err", aerr)
	return booking.Failed(aerr.Error()), aerr
}

// screenshot is best effort: errors are logged and dropped.
func (a *Attempter) screenshot(log *slog.Logger, sess booking.Session, tag string) {
	path := a.Screenshots.Path(tag, a.now())
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Warn("screenshot dir", "dir", dir, "err", err)
			return
		}
	}
	if err := sess.Screenshot(path); err != nil {
		log.Warn("screenshot failed", "path", path, "err", err)
		return
	}
	log.Info("screenshot saved", "path", path)
}

func (a *Attempter) sleep(ctx context.Context, d time.Duration) error {
	if a.Sleep != nil {
		return a.Sleep(ctx, d)
	}
	return SleepContext(ctx, d)
}

func (a *Attempter) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *Attempter) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}
