package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/remimse/tennis-bots/internal/application/usecases"
	"github.com/remimse/tennis-bots/internal/domain/booking"
	"github.com/remimse/tennis-bots/internal/infrastructure/crypto"
)

const DefaultPath = "config/config.yaml"

// Error lists every problem found while loading. Nothing should touch the
// portal once Load or RequireCredentials returned one.
type Error struct {
	Problems []string
}

func (e *Error) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

func (e *Error) add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

func (e *Error) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

type Config struct {
	Portal        PortalConfig       `yaml:"portal"`
	Booking       BookingConfig      `yaml:"booking"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
	Browser       BrowserConfig      `yaml:"browser"`
	Log           LogConfig          `yaml:"log"`
	Web           WebConfig          `yaml:"web"`

	DatabaseURL string `yaml:"-"`
	CredEncKey  []byte `yaml:"-"`
}

type PortalConfig struct {
	URL      string `yaml:"url"`
	Username string `yaml:"-"`
	Password string `yaml:"-"`
}

type BookingConfig struct {
	PreferredDays   []string    `yaml:"preferred_days"`
	PreferredTimes  TimesConfig `yaml:"preferred_times"`
	PreferredCourts []string    `yaml:"preferred_courts"`
	DurationHours   int         `yaml:"booking_duration_hours"`
	AdvanceDays     int         `yaml:"advance_booking_days"`
}

type TimesConfig struct {
	Start string `yaml:"start_time"`
	End   string `yaml:"end_time"`
}

type SchedulerConfig struct {
	TriggerTime    string        `yaml:"trigger_time"`
	Timezone       string        `yaml:"timezone"`
	RetryCount     int           `yaml:"retry_count"`
	RetryBaseDelay time.Duration `yaml:"retry_base_delay"`
	RetryMaxDelay  time.Duration `yaml:"retry_max_delay"`
}

type NotificationConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"-"`
	ChatID   string `yaml:"-"`
}

type BrowserConfig struct {
	Headless            bool          `yaml:"headless"`
	SlowMoMillis        int           `yaml:"slow_mo"`
	Timeout             time.Duration `yaml:"timeout"`
	SettleDelay         time.Duration `yaml:"settle_delay"`
	UserAgent           string        `yaml:"user_agent"`
	InstallDriver       bool          `yaml:"install_driver"`
	ScreenshotOnError   bool          `yaml:"screenshot_on_error"`
	ScreenshotOnNoSlots bool          `yaml:"screenshot_on_no_slots"`
	ScreenshotDir       string        `yaml:"screenshot_dir"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// WebConfig drives the optional status UI; an empty Addr turns it off.
type WebConfig struct {
	Addr              string `yaml:"addr"`
	AdminUsername     string `yaml:"-"`
	AdminPasswordHash string `yaml:"-"`
	SessionHashKey    []byte `yaml:"-"`
	SessionBlockKey   []byte `yaml:"-"`
}

func Default() Config {
	return Config{
		Portal: PortalConfig{URL: "https://resident.icondo.asia"},
		Booking: BookingConfig{
			PreferredDays:   []string{"saturday", "sunday"},
			PreferredTimes:  TimesConfig{Start: "08:00", End: "11:00"},
			PreferredCourts: []string{"Tennis Court 1", "Tennis Court 2"},
			DurationHours:   1,
			AdvanceDays:     7,
		},
		Scheduler: SchedulerConfig{
			TriggerTime:    "00:00:05",
			Timezone:       "Asia/Singapore",
			RetryCount:     3,
			RetryBaseDelay: 2 * time.Second,
			RetryMaxDelay:  10 * time.Second,
		},
		Notifications: NotificationConfig{Enabled: true},
		Browser: BrowserConfig{
			Headless:            true,
			Timeout:             30 * time.Second,
			SettleDelay:         time.Second,
			ScreenshotOnError:   true,
			ScreenshotOnNoSlots: true,
			ScreenshotDir:       "screenshots",
		},
		Log: LogConfig{Level: "info", Format: "text"},
		Web: WebConfig{AdminUsername: "admin"},
	}
}

// Load reads .env, then the YAML file at path (missing is fine), then the
// environment. Malformed values come back as *Error.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = getEnv("CONFIG_FILE", DefaultPath)
	}
	if err := cfg.readFile(path); err != nil {
		return cfg, err
	}

	problems := &Error{}
	cfg.applyEnv(problems)
	cfg.validate(problems)
	return cfg, problems.orNil()
}

func (c *Config) readFile(path string) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return &Error{Problems: []string{fmt.Sprintf("%s: %v", path, err)}}
	}
	return nil
}

func (c *Config) applyEnv(problems *Error) {
	c.Portal.Username = strings.TrimSpace(os.Getenv("PORTAL_USERNAME"))
	c.Portal.Password = os.Getenv("PORTAL_PASSWORD")
	c.Portal.URL = strings.TrimRight(getEnv("PORTAL_URL", c.Portal.URL), "/")

	c.Notifications.BotToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	c.Notifications.ChatID = strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID"))

	c.Browser.Headless = getBoolEnv("BROWSER_HEADLESS", c.Browser.Headless)
	c.Scheduler.Timezone = getEnv("TIMEZONE", c.Scheduler.Timezone)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)

	c.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	c.Web.Addr = getEnv("WEB_ADDR", c.Web.Addr)
	c.Web.AdminUsername = getEnv("ADMIN_USERNAME", c.Web.AdminUsername)
	c.Web.AdminPasswordHash = strings.TrimSpace(os.Getenv("ADMIN_PASSWORD_HASH"))

	var err error
	if c.CredEncKey, err = optB64("CRED_ENC_KEY"); err != nil {
		problems.add("%v", err)
	}
	if c.Web.SessionHashKey, err = optB64("SESSION_HASH_KEY"); err != nil {
		problems.add("%v", err)
	}
	if c.Web.SessionBlockKey, err = optB64("SESSION_BLOCK_KEY"); err != nil {
		problems.add("%v", err)
	}

	if crypto.IsSealed(c.Portal.Password) {
		if len(c.CredEncKey) == 0 {
			problems.add("PORTAL_PASSWORD is sealed but CRED_ENC_KEY is not set")
			return
		}
		s, err := crypto.New(c.CredEncKey)
		if err != nil {
			problems.add("CRED_ENC_KEY: %v", err)
			return
		}
		if c.Portal.Password, err = s.Open(c.Portal.Password); err != nil {
			problems.add("PORTAL_PASSWORD: %v", err)
		}
	}
}

func (c *Config) validate(problems *Error) {
	if _, err := c.Preferences(); err != nil {
		problems.add("booking: %v", err)
	}
	if _, err := c.Location(); err != nil {
		problems.add("scheduler.timezone: %v", err)
	}
	if _, err := c.TriggerClock(); err != nil {
		problems.add("scheduler.trigger_time: %v", err)
	}
	if c.Scheduler.RetryCount < 1 {
		problems.add("scheduler.retry_count must be >= 1 (got %d)", c.Scheduler.RetryCount)
	}
	if c.Scheduler.RetryBaseDelay <= 0 || c.Scheduler.RetryMaxDelay < c.Scheduler.RetryBaseDelay {
		problems.add("scheduler retry delays must satisfy 0 < base <= max (got %s, %s)",
			c.Scheduler.RetryBaseDelay, c.Scheduler.RetryMaxDelay)
	}
	if c.Portal.URL == "" {
		problems.add("portal.url is required")
	}
	if c.Web.Addr != "" {
		if c.Web.AdminPasswordHash == "" {
			problems.add("ADMIN_PASSWORD_HASH is required when WEB_ADDR is set")
		}
		if len(c.Web.SessionHashKey) < 32 {
			problems.add("SESSION_HASH_KEY must decode to at least 32 bytes")
		}
		if n := len(c.Web.SessionBlockKey); n != 16 && n != 24 && n != 32 {
			problems.add("SESSION_BLOCK_KEY must decode to 16, 24 or 32 bytes (got %d)", n)
		}
	}
}

// RequireCredentials is checked by every command that logs in to the portal.
func (c Config) RequireCredentials() error {
	problems := &Error{}
	if c.Portal.Username == "" {
		problems.add("PORTAL_USERNAME is required")
	}
	if c.Portal.Password == "" {
		problems.add("PORTAL_PASSWORD is required")
	}
	return problems.orNil()
}

func (c Config) Preferences() (booking.Preferences, error) {
	days, err := booking.ParseWeekdays(c.Booking.PreferredDays)
	if err != nil {
		return booking.Preferences{}, err
	}
	start, err := booking.ParseClock(c.Booking.PreferredTimes.Start)
	if err != nil {
		return booking.Preferences{}, fmt.Errorf("start_time: %w", err)
	}
	end, err := booking.ParseClock(c.Booking.PreferredTimes.End)
	if err != nil {
		return booking.Preferences{}, fmt.Errorf("end_time: %w", err)
	}
	p := booking.Preferences{
		Window:           booking.Window{Start: start, End: end},
		ResourcePriority: append([]string(nil), c.Booking.PreferredCourts...),
		Weekdays:         days,
		AdvanceDays:      c.Booking.AdvanceDays,
		SlotDuration:     time.Duration(c.Booking.DurationHours) * time.Hour,
	}
	return p, p.Validate()
}

func (c Config) RetryPolicy() usecases.RetryPolicy {
	return usecases.RetryPolicy{
		Tries:     c.Scheduler.RetryCount,
		BaseDelay: c.Scheduler.RetryBaseDelay,
		MaxDelay:  c.Scheduler.RetryMaxDelay,
	}
}

func (c Config) ScreenshotPolicy() usecases.ScreenshotPolicy {
	return usecases.ScreenshotPolicy{
		Dir:       c.Browser.ScreenshotDir,
		OnError:   c.Browser.ScreenshotOnError,
		OnNoSlots: c.Browser.ScreenshotOnNoSlots,
	}
}

func (c Config) Location() (*time.Location, error) {
	if c.Scheduler.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Scheduler.Timezone)
}

// TriggerClock parses scheduler.trigger_time, "HH:MM" or "HH:MM:SS".
func (c Config) TriggerClock() (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(c.Scheduler.TriggerTime), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("want HH:MM[:SS], got %q", c.Scheduler.TriggerTime)
	}
	limits := []int{23, 59, 59}
	units := []time.Duration{time.Hour, time.Minute, time.Second}
	var d time.Duration
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > limits[i] {
			return 0, fmt.Errorf("want HH:MM[:SS], got %q", c.Scheduler.TriggerTime)
		}
		d += time.Duration(n) * units[i]
	}
	return d, nil
}

// TelegramEnabled is true when notifications are on and both secrets are set.
func (c Config) TelegramEnabled() bool {
	return c.Notifications.Enabled && c.Notifications.BotToken != "" && c.Notifications.ChatID != ""
}

func getEnv(k, d string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d
	}
	return v
}

func getBoolEnv(k string, d bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return d
	}
	return b
}

func optB64(k string) ([]byte, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return nil, nil
	}
	b, err := crypto.DecodeKey(v)
	if err != nil {
		return nil, fmt.Errorf("%s is not valid base64", k)
	}
	return b, nil
}
