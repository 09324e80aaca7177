package booking

import (
	"errors"
	"fmt"
	"time"
)

// OutcomeKind is the terminal result of one booking attempt.
type OutcomeKind string

const (
	OutcomeBooked  OutcomeKind = "booked"
	OutcomeNoSlots OutcomeKind = "no_slots"
	OutcomeFailed  OutcomeKind = "failed"
)

type Outcome struct {
	Kind   OutcomeKind
	Slot   Slot   // set for OutcomeBooked
	Reason string // set for OutcomeNoSlots and OutcomeFailed
}

func Booked(s Slot) Outcome { return Outcome{Kind: OutcomeBooked, Slot: s} }

func NoSlots(reason string) Outcome { return Outcome{Kind: OutcomeNoSlots, Reason: reason} }

func Failed(reason string) Outcome { return Outcome{Kind: OutcomeFailed, Reason: reason} }

func (o Outcome) Succeeded() bool { return o.Kind == OutcomeBooked }

func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeBooked:
		return "booked " + o.Slot.String()
	case "":
		return "none"
	default:
		return fmt.Sprintf("%s: %s", o.Kind, o.Reason)
	}
}

// State is a step of the attempt state machine.
type State string

const (
	StateIdle                 State = "idle"
	StateLoggingIn            State = "logging_in"
	StateNavigatingToResource State = "navigating_to_resource"
	StateSelectingDate        State = "selecting_date"
	StateScanningSlots        State = "scanning_slots"
	StateAttemptingSlot       State = "attempting_slot"
	StateSucceeded            State = "succeeded"
	StateNoSlotsFound         State = "no_slots_found"
	StateFailed               State = "failed"
)

var (
	// ErrAttemptFailed marks failures worth retrying with a fresh session.
	ErrAttemptFailed = errors.New("booking attempt failed")
	ErrLoginFailed   = errors.New("login failed")
)

// AttemptError carries the state an attempt failed in and its cause.
// It matches ErrAttemptFailed under errors.Is.
type AttemptError struct {
	State  State
	Reason string
	Err    error
}

func (e *AttemptError) Error() string {
	if e.Err == nil || e.Err.Error() == e.Reason {
		return fmt.Sprintf("%s (state=%s)", e.Reason, e.State)
	}
	return fmt.Sprintf("%s (state=%s): %v", e.Reason, e.State, e.Err)
}

func (e *AttemptError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrAttemptFailed}
	}
	return []error{ErrAttemptFailed, e.Err}
}

// Run is the record of one scheduled or manual booking run.
type Run struct {
	ID         string
	Trigger    string
	StartedAt  time.Time
	FinishedAt time.Time
	TargetDate time.Time
	Skipped    bool
	Tries      int
	Outcome    Outcome
}
