package browser

import (
	"fmt"
	"log/slog"

	"github.com/playwright-community/playwright-go"

	"github.com/remimse/tennis-bots/internal/domain/booking"
)

type session struct {
	bctx    playwright.BrowserContext
	page    playwright.Page
	login   *LoginPage
	booking *BookingPage
}

func newSession(bctx playwright.BrowserContext, page playwright.Page, opts Options, log *slog.Logger) *session {
	f := Finder{page: page, log: log}
	return &session{
		bctx: bctx,
		page: page,
		login: &LoginPage{
			page:    page,
			find:    f,
			url:     opts.PortalURL,
			timeout: opts.Timeout,
			log:     log.With("page", "login"),
		},
		booking: &BookingPage{
			page: page,
			find: f,
			opts: opts,
			log:  log.With("page", "booking"),
		},
	}
}

func (s *session) Login() booking.LoginPage     { return s.login }
func (s *session) Booking() booking.BookingPage { return s.booking }

func (s *session) Screenshot(path string) error {
	_, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("screenshot %s: %w", path, err)
	}
	return nil
}

func (s *session) Close() error {
	return s.bctx.Close()
}
