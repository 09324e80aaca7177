// Package telegram sends booking notifications through the Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
)

const defaultBaseURL = "https://api.telegram.org"

type Options struct {
	Token   string
	ChatID  string
	BaseURL string // tests point this at httptest
	Client  *http.Client
	Logger  *slog.Logger

	// Breaker trips after this many consecutive failures and stays open for
	// OpenFor before letting a probe through.
	FailureThreshold uint32
	OpenFor          time.Duration
}

// Notifier implements booking.Notifier. Send never returns an error; the
// outcome is logged and reported as a bool.
type Notifier struct {
	http    *http.Client
	base    string
	token   string
	chatID  string
	log     *slog.Logger
	breaker *gobreaker.CircuitBreaker[struct{}]
}

func New(opts Options) *Notifier {
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 10 * time.Second}
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = 3
	}
	if opts.OpenFor <= 0 {
		opts.OpenFor = time.Minute
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "telegram")

	threshold := opts.FailureThreshold
	return &Notifier{
		http:   opts.Client,
		base:   strings.TrimRight(opts.BaseURL, "/"),
		token:  opts.Token,
		chatID: opts.ChatID,
		log:    log,
		breaker: gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
			Name:    "telegram",
			Timeout: opts.OpenFor,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= threshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Info("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			},
		}),
	}
}

func (n *Notifier) Send(ctx context.Context, text string) bool {
	_, err := n.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, n.sendMessage(ctx, text)
	})
	switch {
	case err == nil:
		n.log.Info("telegram message sent")
		return true
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		n.log.Warn("telegram breaker open, message dropped")
	default:
		n.log.Error("telegram send failed", "err", err)
	}
	return false
}

func (n *Notifier) sendMessage(ctx context.Context, text string) error {
	b, err := json.Marshal(map[string]any{
		"chat_id":    n.chatID,
		"text":       html.EscapeString(text),
		"parse_mode": "HTML",
	})
	if err != nil {
		return err
	}
	endpoint := n.base + "/bot" + n.token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("content-type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		// The request URL carries the token.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return fmt.Errorf("telegram request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var parsed struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && !parsed.OK {
		return fmt.Errorf("telegram api: %s", parsed.Description)
	}
	return nil
}
