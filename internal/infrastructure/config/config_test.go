package config

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remimse/tennis-bots/internal/domain/booking"
	"github.com/remimse/tennis-bots/internal/infrastructure/crypto"
)

var envKeys = []string{
	"CONFIG_FILE", "PORTAL_USERNAME", "PORTAL_PASSWORD", "PORTAL_URL", "CRED_ENC_KEY",
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "BROWSER_HEADLESS", "LOG_LEVEL", "LOG_FORMAT",
	"DATABASE_URL", "WEB_ADDR", "ADMIN_USERNAME", "ADMIN_PASSWORD_HASH",
	"SESSION_HASH_KEY", "SESSION_BLOCK_KEY", "TIMEZONE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func missing(t *testing.T) string {
	return filepath.Join(t.TempDir(), "nope.yaml")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORTAL_USERNAME", "resident@example.com")
	t.Setenv("PORTAL_PASSWORD", "pw")

	cfg, err := Load(missing(t))
	require.NoError(t, err)
	require.NoError(t, cfg.RequireCredentials())

	prefs, err := cfg.Preferences()
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Saturday, time.Sunday}, prefs.Weekdays)
	assert.Equal(t, booking.Window{Start: booking.Clock(8, 0), End: booking.Clock(11, 0)}, prefs.Window)
	assert.Equal(t, []string{"Tennis Court 1", "Tennis Court 2"}, prefs.ResourcePriority)
	assert.Equal(t, 7, prefs.AdvanceDays)
	assert.Equal(t, time.Hour, prefs.SlotDuration)

	rp := cfg.RetryPolicy()
	assert.Equal(t, 3, rp.Tries)
	assert.Equal(t, 2*time.Second, rp.BaseDelay)
	assert.Equal(t, 10*time.Second, rp.MaxDelay)

	trigger, err := cfg.TriggerClock()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, trigger)

	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, "https://resident.icondo.asia", cfg.Portal.URL)
	assert.False(t, cfg.TelegramEnabled())
	assert.Empty(t, cfg.Web.Addr)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
booking:
  preferred_days: [friday, Sat]
  preferred_times:
    start_time: "07:30"
    end_time: "09:00"
  preferred_courts: ["Court 3"]
  booking_duration_hours: 2
  advance_booking_days: 3
scheduler:
  trigger_time: "06:15"
  timezone: UTC
  retry_count: 5
  retry_base_delay: 1s
  retry_max_delay: 4s
browser:
  headless: true
  screenshot_dir: /tmp/shots
`)
	t.Setenv("BROWSER_HEADLESS", "false")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := Load(path)
	require.NoError(t, err)

	prefs, err := cfg.Preferences()
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Friday, time.Saturday}, prefs.Weekdays)
	assert.Equal(t, booking.Clock(7, 30), prefs.Window.Start)
	assert.Equal(t, 2*time.Hour, prefs.SlotDuration)
	assert.Equal(t, 3, prefs.AdvanceDays)
	assert.Equal(t, 5, cfg.RetryPolicy().Tries)

	trigger, err := cfg.TriggerClock()
	require.NoError(t, err)
	assert.Equal(t, 6*time.Hour+15*time.Minute, trigger)

	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, "/tmp/shots", cfg.ScreenshotPolicy().Dir)
	assert.True(t, cfg.TelegramEnabled())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoad_CollectsProblems(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
booking:
  preferred_days: [someday]
  booking_duration_hours: 3
scheduler:
  trigger_time: "25:00"
  timezone: Mars/Olympus
  retry_count: 0
`)

	_, err := Load(path)

	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.GreaterOrEqual(t, len(cerr.Problems), 4)
	assert.Contains(t, err.Error(), "someday")
	assert.Contains(t, err.Error(), "trigger_time")
	assert.Contains(t, err.Error(), "timezone")
	assert.Contains(t, err.Error(), "retry_count")
}

func TestLoad_MalformedYAML(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeFile(t, "booking: [unclosed"))
	var cerr *Error
	assert.True(t, errors.As(err, &cerr))
}

func TestRequireCredentials(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(missing(t))
	require.NoError(t, err)

	err = cfg.RequireCredentials()
	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.Len(t, cerr.Problems, 2)
}

func TestLoad_SealedPassword(t *testing.T) {
	clearEnv(t)
	key, err := crypto.NewKey()
	require.NoError(t, err)
	raw, err := crypto.DecodeKey(key)
	require.NoError(t, err)
	s, err := crypto.New(raw)
	require.NoError(t, err)
	sealed, err := s.Seal("secret-pw")
	require.NoError(t, err)

	t.Setenv("PORTAL_USERNAME", "u")
	t.Setenv("PORTAL_PASSWORD", sealed)
	t.Setenv("CRED_ENC_KEY", key)

	cfg, err := Load(missing(t))
	require.NoError(t, err)
	assert.Equal(t, "secret-pw", cfg.Portal.Password)

	t.Setenv("CRED_ENC_KEY", "")
	_, err = Load(missing(t))
	assert.ErrorContains(t, err, "CRED_ENC_KEY is not set")
}

func TestLoad_WebRequiresSecrets(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEB_ADDR", ":8080")

	_, err := Load(missing(t))
	assert.ErrorContains(t, err, "ADMIN_PASSWORD_HASH")

	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abcdefghijklmnopqrstuv")
	t.Setenv("SESSION_HASH_KEY", base64.StdEncoding.EncodeToString(make([]byte, 32)))
	t.Setenv("SESSION_BLOCK_KEY", base64.StdEncoding.EncodeToString(make([]byte, 32)))
	cfg, err := Load(missing(t))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Web.Addr)
	assert.Equal(t, "admin", cfg.Web.AdminUsername)
}
