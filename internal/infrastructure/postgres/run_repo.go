package postgres

import (
	"context"
	"time"

	"github.com/remimse/tennis-bots/internal/domain/booking"
)

// RunRepo implements booking.RunRecorder.
type RunRepo struct{ db *DB }

func NewRunRepo(db *DB) *RunRepo { return &RunRepo{db: db} }

func (r *RunRepo) Record(ctx context.Context, run booking.Run) error {
	var start, end string
	if run.Outcome.Succeeded() {
		start, end = run.Outcome.Slot.Start.String(), run.Outcome.Slot.End.String()
	}
	return WrapNotFound(r.db.Exec(ctx, `
		INSERT INTO booking_runs
			(id, trigger, started_at, finished_at, target_date, skipped, tries, outcome, court, slot_start, slot_end, reason)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (id) DO UPDATE SET
			finished_at = EXCLUDED.finished_at,
			tries = EXCLUDED.tries,
			outcome = EXCLUDED.outcome,
			court = EXCLUDED.court,
			slot_start = EXCLUDED.slot_start,
			slot_end = EXCLUDED.slot_end,
			reason = EXCLUDED.reason
	`,
		run.ID, run.Trigger, run.StartedAt, run.FinishedAt, run.TargetDate.Format(booking.DateLayout),
		run.Skipped, run.Tries, string(run.Outcome.Kind), run.Outcome.Slot.Resource, start, end, run.Outcome.Reason,
	))
}

// Recent returns up to limit runs, newest first.
func (r *RunRepo) Recent(ctx context.Context, limit int) ([]booking.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, trigger, started_at, finished_at, target_date::text, skipped, tries, outcome, court, slot_start, slot_end, reason
		FROM booking_runs ORDER BY started_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, WrapNotFound(err)
	}
	defer rows.Close()

	var out []booking.Run
	for rows.Next() {
		var run booking.Run
		var target, kind, start, end string
		if err := rows.Scan(&run.ID, &run.Trigger, &run.StartedAt, &run.FinishedAt, &target, &run.Skipped,
			&run.Tries, &kind, &run.Outcome.Slot.Resource, &start, &end, &run.Outcome.Reason); err != nil {
			return nil, WrapNotFound(err)
		}
		decodeRun(&run, target, kind, start, end)
		out = append(out, run)
	}
	return out, WrapNotFound(rows.Err())
}

func decodeRun(run *booking.Run, target, kind, start, end string) {
	run.TargetDate, _ = booking.ParseDate(target, time.UTC)
	run.Outcome.Kind = booking.OutcomeKind(kind)
	if run.Outcome.Succeeded() {
		run.Outcome.Slot.Date = run.TargetDate
		run.Outcome.Slot.Available = true
		run.Outcome.Slot.Start, _ = booking.ParseClock(start)
		run.Outcome.Slot.End, _ = booking.ParseClock(end)
	}
}
