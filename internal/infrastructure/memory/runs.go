// Package memory holds run history when no database is configured.
package memory

import (
	"context"
	"sync"

	"github.com/remimse/tennis-bots/internal/domain/booking"
)

// RunLog is a fixed-size ring of the most recent runs.
type RunLog struct {
	mu   sync.Mutex
	runs []booking.Run
	next int
	full bool
}

func NewRunLog(size int) *RunLog {
	if size <= 0 {
		size = 50
	}
	return &RunLog{runs: make([]booking.Run, size)}
}

func (l *RunLog) Record(_ context.Context, run booking.Run) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.runs[l.next] = run
	l.next = (l.next + 1) % len(l.runs)
	if l.next == 0 {
		l.full = true
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (l *RunLog) Recent(_ context.Context, limit int) ([]booking.Run, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := l.next
	if l.full {
		n = len(l.runs)
	}
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]booking.Run, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (l.next - i + len(l.runs)) % len(l.runs)
		out = append(out, l.runs[idx])
	}
	return out, nil
}
