package browser

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/playwright-community/playwright-go"
)

const minPerSelector = time.Second

// Finder resolves the first visible element among fallback selectors.
type Finder struct {
	page playwright.Page
	log  *slog.Logger
}

// FindVisible splits total across the selectors, with at least one second
// each, and reports false when none became visible.
func (f Finder) FindVisible(ctx context.Context, selectors []string, total time.Duration) (playwright.Locator, bool) {
	if len(selectors) == 0 {
		return nil, false
	}
	per := total / time.Duration(len(selectors))
	if per < minPerSelector {
		per = minPerSelector
	}
	for _, sel := range selectors {
		if ctx.Err() != nil {
			return nil, false
		}
		loc := f.page.Locator(sel).First()
		err := loc.WaitFor(playwright.LocatorWaitForOptions{
			State:   playwright.WaitForSelectorStateVisible,
			Timeout: millis(per),
		})
		if err == nil {
			f.log.Debug("element found", "selector", sel)
			return loc, true
		}
	}
	return nil, false
}

// pause waits a random duration in [lo, hi] so clicks are not machine-timed.
func pause(ctx context.Context, lo, hi time.Duration) {
	d := lo
	if hi > lo {
		d += rand.N(hi - lo + 1)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func humanPause(ctx context.Context) { pause(ctx, 100*time.Millisecond, 500*time.Millisecond) }

func millis(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}
