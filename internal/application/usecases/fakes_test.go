package usecases

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/remimse/tennis-bots/internal/domain/booking"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeLogin struct {
	navigateErr error
	ok          bool
	loginErr    error
	gotUser     string
	gotPass     string
	// dropped makes IsLoggedIn fail after a successful Login.
	dropped bool
}

func (f *fakeLogin) Navigate(context.Context) error { return f.navigateErr }

func (f *fakeLogin) Login(_ context.Context, u, p string) (bool, error) {
	f.gotUser, f.gotPass = u, p
	return f.ok, f.loginErr
}

func (f *fakeLogin) IsLoggedIn(context.Context) bool { return f.ok && !f.dropped }

type fakeBookingPage struct {
	navErr    error
	slots     []booking.Slot
	scanErr   error
	scanPanic bool

	// accept decides per court; missing courts are rejected.
	accept    map[string]bool
	panicOn   string
	selected  []time.Time
	attempted []booking.Slot
}

func (f *fakeBookingPage) NavigateToResource(context.Context) error { return f.navErr }

func (f *fakeBookingPage) SelectDate(_ context.Context, d time.Time) {
	f.selected = append(f.selected, d)
}

func (f *fakeBookingPage) ScanSlots(context.Context) ([]booking.Slot, error) {
	if f.scanPanic {
		panic("calendar exploded")
	}
	return f.slots, f.scanErr
}

func (f *fakeBookingPage) BookSlot(_ context.Context, s booking.Slot) bool {
	f.attempted = append(f.attempted, s)
	if s.Resource == f.panicOn {
		panic("click on detached node")
	}
	return f.accept[s.Resource]
}

type fakeSession struct {
	login         *fakeLogin
	page          *fakeBookingPage
	screenshotErr error
	screenshots   []string
	closed        int
}

func (f *fakeSession) Login() booking.LoginPage     { return f.login }
func (f *fakeSession) Booking() booking.BookingPage { return f.page }

func (f *fakeSession) Screenshot(path string) error {
	f.screenshots = append(f.screenshots, path)
	return f.screenshotErr
}

func (f *fakeSession) Close() error {
	f.closed++
	return nil
}

type fakeSessions struct {
	next   func() *fakeSession
	err    error
	opened []*fakeSession
}

func (f *fakeSessions) NewSession(context.Context) (booking.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	s := f.next()
	f.opened = append(f.opened, s)
	return s, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
	ok   bool
}

func (f *fakeNotifier) Send(_ context.Context, text string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return f.ok
}

type fakeRecorder struct {
	mu   sync.Mutex
	runs []booking.Run
	err  error
}

func (f *fakeRecorder) Record(_ context.Context, run booking.Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, run)
	return f.err
}

func (f *fakeRecorder) Recent(context.Context, int) ([]booking.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]booking.Run(nil), f.runs...), nil
}

// scriptedBooker replays outcomes in order, repeating the last one.
type scriptedBooker struct {
	mu      sync.Mutex
	results []result
	calls   int
	targets []time.Time
	block   chan struct{}
}

type result struct {
	out booking.Outcome
	err error
}

func (b *scriptedBooker) Attempt(_ context.Context, target time.Time) (booking.Outcome, error) {
	if b.block != nil {
		<-b.block
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.targets = append(b.targets, target)
	i := b.calls
	if i >= len(b.results) {
		i = len(b.results) - 1
	}
	b.calls++
	return b.results[i].out, b.results[i].err
}

func attemptFailure(reason string) result {
	err := &booking.AttemptError{State: booking.StateScanningSlots, Reason: reason, Err: errors.New(reason)}
	return result{out: booking.Failed(err.Error()), err: err}
}

type recordedSleep struct {
	delays []time.Duration
	err    error
}

func (r *recordedSleep) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return r.err
}
