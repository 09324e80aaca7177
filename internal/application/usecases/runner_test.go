package usecases

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remimse/tennis-bots/internal/domain/booking"
	"github.com/remimse/tennis-bots/internal/internaltypes"
)

type runnerFixture struct {
	booker   *scriptedBooker
	notifier *fakeNotifier
	recorder *fakeRecorder
	sleep    *recordedSleep
	r        *Runner
}

func newRunnerFixture(now time.Time, results ...result) *runnerFixture {
	f := &runnerFixture{
		booker:   &scriptedBooker{results: results},
		notifier: &fakeNotifier{ok: true},
		recorder: &fakeRecorder{},
		sleep:    &recordedSleep{},
	}
	loc, _ := time.LoadLocation("Asia/Singapore")
	if loc == nil {
		loc = time.UTC
	}
	f.r = &Runner{
		Booker: f.booker,
		Retry:  Retrier{Policy: DefaultRetryPolicy(), Sleep: f.sleep.sleep},
		Prefs: booking.Preferences{
			Window:       booking.Window{Start: booking.Clock(8, 0), End: booking.Clock(11, 0)},
			Weekdays:     []time.Weekday{time.Saturday, time.Sunday},
			AdvanceDays:  7,
			SlotDuration: time.Hour,
		},
		Notifier: f.notifier,
		Recorder: f.recorder,
		Location: loc,
		Now:      func() time.Time { return now },
		Logger:   quietLogger(),
	}
	return f
}

// 2024-06-01 is a Saturday, so 7 days ahead is a Saturday too.
var saturdayMorning = time.Date(2024, 6, 1, 0, 0, 5, 0, time.UTC)

func TestRunScheduledBooking_SkipsNonPreferredDay(t *testing.T) {
	monday := time.Date(2024, 6, 3, 0, 0, 5, 0, time.UTC)
	f := newRunnerFixture(monday, result{out: booking.NoSlots("unused")})

	run, err := f.r.RunScheduledBooking(context.Background())

	require.NoError(t, err)
	assert.True(t, run.Skipped)
	assert.Equal(t, 0, f.booker.calls)
	assert.Empty(t, f.notifier.sent)
	require.Len(t, f.recorder.runs, 1)
	assert.True(t, f.recorder.runs[0].Skipped)
	assert.Equal(t, time.Monday, run.TargetDate.Weekday())
}

func TestRunScheduledBooking_BooksAndNotifies(t *testing.T) {
	slot := booking.Slot{Resource: "CourtB", Date: time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC),
		Start: booking.Clock(8, 0), End: booking.Clock(9, 0), Available: true}
	f := newRunnerFixture(saturdayMorning, result{out: booking.Booked(slot)})

	run, err := f.r.RunScheduledBooking(context.Background())

	require.NoError(t, err)
	assert.True(t, run.Outcome.Succeeded())
	assert.Equal(t, 1, run.Tries)
	assert.Equal(t, TriggerSchedule, run.Trigger)
	assert.NotEmpty(t, run.ID)
	require.Len(t, f.booker.targets, 1)
	assert.Equal(t, "2024-06-08", f.booker.targets[0].Format(booking.DateLayout))
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, SuccessMessage(slot), f.notifier.sent[0])
	require.Len(t, f.recorder.runs, 1)
	assert.Equal(t, run.ID, f.recorder.runs[0].ID)
}

func TestBookDate_AllSlotsRejectedIsNotRetried(t *testing.T) {
	f := newRunnerFixture(saturdayMorning, result{out: booking.NoSlots("None of the 2 candidate slots could be booked")})

	run, err := f.r.BookDate(context.Background(), saturdayMorning, TriggerManual)

	require.NoError(t, err)
	assert.Equal(t, booking.OutcomeNoSlots, run.Outcome.Kind)
	assert.Equal(t, 1, f.booker.calls)
	assert.Empty(t, f.sleep.delays)
	require.Len(t, f.notifier.sent, 1)
	assert.Contains(t, f.notifier.sent[0], "booking failed")
	assert.Contains(t, f.notifier.sent[0], "None of the 2 candidate slots")
}

func TestBookDate_RetriesThenNotifiesOnce(t *testing.T) {
	f := newRunnerFixture(saturdayMorning, attemptFailure("login failed"))

	run, err := f.r.BookDate(context.Background(), saturdayMorning, TriggerManual)

	require.Error(t, err)
	assert.ErrorIs(t, err, booking.ErrAttemptFailed)
	assert.Equal(t, 3, f.booker.calls)
	assert.Equal(t, 3, run.Tries)
	assert.Equal(t, booking.OutcomeFailed, run.Outcome.Kind)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, f.sleep.delays)
	require.Len(t, f.notifier.sent, 1)
	assert.Contains(t, f.notifier.sent[0], "login failed")
	require.Len(t, f.recorder.runs, 1)
}

func TestBookDate_RecorderErrorIsNotFatal(t *testing.T) {
	f := newRunnerFixture(saturdayMorning, result{out: booking.NoSlots("nothing")})
	f.recorder.err = assert.AnError

	_, err := f.r.BookDate(context.Background(), saturdayMorning, TriggerOnce)

	assert.NoError(t, err)
}

func TestBookDate_NotificationFailureIsNotFatal(t *testing.T) {
	slot := courtSlot("CourtA", 8).WithDate(time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC))
	f := newRunnerFixture(saturdayMorning, result{out: booking.Booked(slot)})
	f.notifier.ok = false

	run, err := f.r.BookDate(context.Background(), saturdayMorning, TriggerManual)

	require.NoError(t, err)
	assert.True(t, run.Outcome.Succeeded())
	assert.Len(t, f.notifier.sent, 1)
	require.Len(t, f.recorder.runs, 1)
	assert.Equal(t, run.ID, f.recorder.runs[0].ID)
}

func TestBookDate_RejectsOverlappingRun(t *testing.T) {
	f := newRunnerFixture(saturdayMorning, result{out: booking.NoSlots("nothing")})
	f.booker.block = make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = f.r.BookDate(context.Background(), saturdayMorning, TriggerSchedule)
	}()

	require.Eventually(t, f.r.Busy, time.Second, 5*time.Millisecond)
	_, err := f.r.BookDate(context.Background(), saturdayMorning, TriggerManual)
	assert.ErrorIs(t, err, internaltypes.ErrRunInProgress)

	close(f.booker.block)
	wg.Wait()
	assert.False(t, f.r.Busy())
	assert.Equal(t, 1, f.booker.calls)
}

func TestRunnerToday_UsesLocation(t *testing.T) {
	// 20:00 UTC on Friday is already Saturday in Singapore.
	f := newRunnerFixture(time.Date(2024, 5, 31, 20, 0, 0, 0, time.UTC))
	if f.r.Location == time.UTC {
		t.Skip("tz database not available")
	}
	assert.Equal(t, time.Saturday, f.r.Today().Weekday())
}
