package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/remimse/tennis-bots/internal/domain/booking"
)

type BookingPage struct {
	page playwright.Page
	find Finder
	opts Options
	log  *slog.Logger
}

// NavigateToResource opens the tennis court calendar. The facilities menu is
// optional since some landing pages already list the courts.
func (p *BookingPage) NavigateToResource(ctx context.Context) error {
	if menu, ok := p.find.FindVisible(ctx, facilitiesMenus, 10*time.Second); ok {
		if err := menu.Click(); err != nil {
			return fmt.Errorf("click facilities: %w", err)
		}
		humanPause(ctx)
	} else {
		p.log.Warn("facilities menu not found, assuming booking page is open")
	}

	tennis, ok := p.find.FindVisible(ctx, tennisOptions, 10*time.Second)
	if !ok {
		return fmt.Errorf("tennis court option not found")
	}
	if err := tennis.Click(); err != nil {
		return fmt.Errorf("click tennis: %w", err)
	}
	humanPause(ctx)
	p.log.Info("tennis court calendar opened")
	return nil
}

// SelectDate fills a date input when there is one, otherwise clicks "next"
// once per day between today and d. Failure is logged and left to the scan.
func (p *BookingPage) SelectDate(ctx context.Context, d time.Time) {
	value := d.Format(booking.DateLayout)
	if picker, ok := p.find.FindVisible(ctx, datePickers, 5*time.Second); ok {
		if err := picker.Fill(value); err == nil {
			humanPause(ctx)
			p.log.Info("date selected", "date", value, "via", "input")
			return
		}
		p.log.Debug("date picker is not fillable, using next buttons")
	}

	today := booking.DateOf(p.opts.Now().In(d.Location()))
	days := booking.DaysBetween(today, d)
	for i := 0; i < days; i++ {
		next, ok := p.find.FindVisible(ctx, nextDateButtons, 3*time.Second)
		if !ok {
			p.log.Warn("next date button not found, assuming date is shown", "clicked", i, "wanted", days)
			return
		}
		if err := next.Click(); err != nil {
			p.log.Warn("clicking next date", "err", err)
			return
		}
		pause(ctx, 50*time.Millisecond, 150*time.Millisecond)
	}
	p.log.Info("date selected", "date", value, "via", "next", "clicks", days)
}

func (p *BookingPage) ScanSlots(ctx context.Context) ([]booking.Slot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n, err := p.page.Evaluate(tagScript)
	if err != nil {
		return nil, fmt.Errorf("tag slot candidates: %w", err)
	}
	html, err := p.page.Content()
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	slots, err := ParseSlots(html, ParseOptions{DefaultCourt: p.opts.DefaultCourt, Duration: p.opts.SlotDuration})
	if err != nil {
		return nil, err
	}
	p.log.Info("slots scanned", "candidates", n, "available", len(slots))
	return slots, nil
}

// BookSlot clicks the slot, confirms and waits 10s for a success marker.
// Every failure is reported as false.
func (p *BookingPage) BookSlot(ctx context.Context, s booking.Slot) bool {
	log := p.log.With("court", s.Resource, "start", s.Start.String())

	target := p.page.Locator(s.Locator).First()
	if s.Locator == "" {
		target = p.page.Locator("text=" + s.Start.String()).First()
	}
	if err := target.Click(playwright.LocatorClickOptions{Timeout: millis(p.opts.Timeout)}); err != nil {
		log.Warn("clicking slot", "err", err)
		return false
	}
	humanPause(ctx)

	confirm, ok := p.find.FindVisible(ctx, confirmButtons, 10*time.Second)
	if !ok {
		log.Warn("confirm button not found")
		return false
	}
	if err := confirm.Click(); err != nil {
		log.Warn("clicking confirm", "err", err)
		return false
	}

	if _, ok := p.find.FindVisible(ctx, successMessages, 10*time.Second); !ok {
		log.Warn("no success message after confirm")
		return false
	}
	log.Info("booking confirmed by portal")
	return true
}
