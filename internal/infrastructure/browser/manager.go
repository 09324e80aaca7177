// Package browser drives the resident portal through a Playwright-controlled
// Chromium.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/remimse/tennis-bots/internal/domain/booking"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var launchArgs = []string{
	"--disable-gpu",
	"--disable-dev-shm-usage",
	"--no-sandbox",
	"--disable-setuid-sandbox",
}

type Options struct {
	PortalURL string
	Headless  bool
	SlowMo    time.Duration
	// Timeout bounds navigation and each element wait.
	Timeout   time.Duration
	UserAgent string
	// InstallDriver downloads the driver and Chromium on first start.
	InstallDriver bool

	DefaultCourt string
	SlotDuration time.Duration

	Now    func() time.Time
	Logger *slog.Logger
}

// Manager owns the Playwright driver and one Chromium process. Sessions get
// their own browser context, so cookies never leak between attempts.
type Manager struct {
	opts Options
	log  *slog.Logger

	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
}

func NewManager(opts Options) *Manager {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.DefaultCourt == "" {
		opts.DefaultCourt = "Tennis Court"
	}
	if opts.SlotDuration <= 0 {
		opts.SlotDuration = time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Manager{opts: opts, log: log.With("component", "browser")}
}

// Start launches Chromium if it is not running. A browser that lost its
// connection is relaunched.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.browser != nil && m.browser.IsConnected() {
		return nil
	}
	m.stopLocked()

	if m.opts.InstallDriver {
		m.log.Info("installing playwright driver")
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return fmt.Errorf("install playwright: %w", err)
		}
	}

	m.log.Info("starting browser", "headless", m.opts.Headless, "slow_mo", m.opts.SlowMo)
	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("start playwright: %w", err)
	}
	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(m.opts.Headless),
		SlowMo:   millis(m.opts.SlowMo),
		Args:     launchArgs,
	})
	if err != nil {
		_ = pw.Stop()
		return fmt.Errorf("launch chromium: %w", err)
	}
	m.pw, m.browser = pw, b
	return nil
}

func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopLocked()
}

func (m *Manager) stopLocked() error {
	var errs []error
	if m.browser != nil {
		errs = append(errs, m.browser.Close())
		m.browser = nil
	}
	if m.pw != nil {
		errs = append(errs, m.pw.Stop())
		m.pw = nil
		m.log.Info("browser stopped")
	}
	return errors.Join(errs...)
}

// NewSession opens a fresh context and page, starting the browser on demand.
func (m *Manager) NewSession(ctx context.Context) (booking.Session, error) {
	if err := m.Start(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	b := m.browser
	m.mu.Unlock()
	if b == nil {
		return nil, errors.New("browser stopped")
	}

	bctx, err := b.NewContext(playwright.BrowserNewContextOptions{
		Viewport:  &playwright.Size{Width: 1280, Height: 720},
		UserAgent: playwright.String(m.opts.UserAgent),
	})
	if err != nil {
		return nil, fmt.Errorf("new browser context: %w", err)
	}
	bctx.SetDefaultTimeout(float64(m.opts.Timeout.Milliseconds()))
	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("new page: %w", err)
	}
	return newSession(bctx, page, m.opts, m.log), nil
}
