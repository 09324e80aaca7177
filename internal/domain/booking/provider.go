package booking

import (
	"context"
	"time"
)

// LoginPage drives the portal sign-in form.
type LoginPage interface {
	Navigate(ctx context.Context) error
	Login(ctx context.Context, username, password string) (bool, error)
	IsLoggedIn(ctx context.Context) bool
}

// BookingPage drives the facility calendar.
type BookingPage interface {
	NavigateToResource(ctx context.Context) error
	// SelectDate is best effort and never fails; the page may already show
	// the right day.
	SelectDate(ctx context.Context, date time.Time)
	ScanSlots(ctx context.Context) ([]Slot, error)
	BookSlot(ctx context.Context, slot Slot) bool
}

// Session is one isolated browser context. Close releases everything it
// holds and is safe to call more than once.
type Session interface {
	Login() LoginPage
	Booking() BookingPage
	Screenshot(path string) error
	Close() error
}

type SessionFactory interface {
	NewSession(ctx context.Context) (Session, error)
}

// Notifier delivers a message to the operator. A false return is logged by
// the caller and otherwise ignored.
type Notifier interface {
	Send(ctx context.Context, text string) bool
}

type RunRecorder interface {
	Record(ctx context.Context, run Run) error
	Recent(ctx context.Context, limit int) ([]Run, error)
}
