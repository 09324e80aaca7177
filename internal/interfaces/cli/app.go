package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/remimse/tennis-bots/internal/application/usecases"
	"github.com/remimse/tennis-bots/internal/domain/booking"
	"github.com/remimse/tennis-bots/internal/infrastructure/browser"
	"github.com/remimse/tennis-bots/internal/infrastructure/config"
	"github.com/remimse/tennis-bots/internal/infrastructure/logging"
	"github.com/remimse/tennis-bots/internal/infrastructure/memory"
	"github.com/remimse/tennis-bots/internal/infrastructure/postgres"
	"github.com/remimse/tennis-bots/internal/infrastructure/telegram"
)

// app is the wired process: configuration, logger and the collaborators the
// booking core needs. close releases whatever was opened.
type app struct {
	cfg   config.Config
	log   *slog.Logger
	prefs booking.Preferences
	loc   *time.Location

	db       *postgres.DB // nil without DATABASE_URL
	browser  *browser.Manager
	notifier booking.Notifier
	recorder booking.RunRecorder
}

func loadConfig(opts *rootOptions) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return cfg, nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	log := logging.New(logging.Options{
		Level:   cfg.Log.Level,
		Format:  logging.Format(cfg.Log.Format),
		Version: Version,
	})
	slog.SetDefault(log)
	return cfg, log, nil
}

// newApp loads configuration, applies flag overrides and opens the run
// history store. The browser is created but not launched; the first session
// starts it.
func newApp(ctx context.Context, opts *rootOptions, overrides ...func(*config.Config)) (*app, error) {
	cfg, log, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	for _, o := range overrides {
		o(&cfg)
	}
	prefs, err := cfg.Preferences()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, prefs: prefs, loc: loc}
	if err := a.openRecorder(ctx); err != nil {
		return nil, err
	}
	if cfg.TelegramEnabled() {
		a.notifier = telegram.New(telegram.Options{
			Token:  cfg.Notifications.BotToken,
			ChatID: cfg.Notifications.ChatID,
			Logger: log,
		})
	} else {
		log.Info("telegram notifications disabled")
	}
	a.browser = browser.NewManager(browser.Options{
		PortalURL:     cfg.Portal.URL,
		Headless:      cfg.Browser.Headless,
		SlowMo:        time.Duration(cfg.Browser.SlowMoMillis) * time.Millisecond,
		Timeout:       cfg.Browser.Timeout,
		UserAgent:     cfg.Browser.UserAgent,
		InstallDriver: cfg.Browser.InstallDriver,
		DefaultCourt:  firstOr(prefs.ResourcePriority, ""),
		SlotDuration:  prefs.SlotDuration,
		Logger:        log,
	})
	return a, nil
}

func (a *app) openRecorder(ctx context.Context) error {
	if a.cfg.DatabaseURL == "" {
		a.recorder = memory.NewRunLog(0)
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	d, err := postgres.Open(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := d.Ping(ctx); err != nil {
		d.Close()
		return fmt.Errorf("db ping: %w", err)
	}
	if err := postgres.Migrate(ctx, d); err != nil {
		d.Close()
		return err
	}
	a.db = d
	a.recorder = postgres.NewRunRepo(d)
	return nil
}

func (a *app) runner() *usecases.Runner {
	return &usecases.Runner{
		Booker: &usecases.Attempter{
			Sessions:    a.browser,
			Username:    a.cfg.Portal.Username,
			Password:    a.cfg.Portal.Password,
			Prefs:       a.prefs,
			Screenshots: a.cfg.ScreenshotPolicy(),
			SettleDelay: a.cfg.Browser.SettleDelay,
			Logger:      a.log,
		},
		Retry:    usecases.Retrier{Policy: a.cfg.RetryPolicy()},
		Prefs:    a.prefs,
		Notifier: a.notifier,
		Recorder: a.recorder,
		Location: a.loc,
		Logger:   a.log,
	}
}

func (a *app) close() {
	if a.browser != nil {
		if err := a.browser.Stop(); err != nil {
			a.log.Warn("stopping browser", "err", err)
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}

func firstOr(s []string, d string) string {
	if len(s) > 0 {
		return s[0]
	}
	return d
}
