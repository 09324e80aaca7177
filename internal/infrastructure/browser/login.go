package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

type LoginPage struct {
	page    playwright.Page
	find    Finder
	url     string
	timeout time.Duration
	log     *slog.Logger
}

func (p *LoginPage) Navigate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.log.Info("opening portal", "url", p.url)
	_, err := p.page.Goto(p.url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   millis(p.timeout),
	})
	if err != nil {
		return fmt.Errorf("goto %s: %w", p.url, err)
	}
	return nil
}

// Login fills the form and waits up to 15s for a logged-in marker. A form
// that never shows up is an error; a missing marker after submit is false.
func (p *LoginPage) Login(ctx context.Context, username, password string) (bool, error) {
	p.log.Info("logging in", "user", username)

	user, ok := p.find.FindVisible(ctx, usernameInputs, 10*time.Second)
	if !ok {
		return false, fmt.Errorf("username field not found")
	}
	if err := user.Fill(username); err != nil {
		return false, fmt.Errorf("fill username: %w", err)
	}
	pass, ok := p.find.FindVisible(ctx, passwordInputs, 10*time.Second)
	if !ok {
		return false, fmt.Errorf("password field not found")
	}
	if err := pass.Fill(password); err != nil {
		return false, fmt.Errorf("fill password: %w", err)
	}
	btn, ok := p.find.FindVisible(ctx, loginButtons, 10*time.Second)
	if !ok {
		return false, fmt.Errorf("login button not found")
	}
	if err := btn.Click(); err != nil {
		return false, fmt.Errorf("click login: %w", err)
	}

	if _, ok := p.find.FindVisible(ctx, loggedInIndicators, 15*time.Second); ok {
		p.log.Info("login succeeded")
		return true, nil
	}
	p.log.Warn("no logged-in marker after submit", "portal_error", p.visibleError())
	return false, nil
}

func (p *LoginPage) IsLoggedIn(ctx context.Context) bool {
	_, ok := p.find.FindVisible(ctx, loggedInIndicators, 3*time.Second)
	return ok
}

// visibleError returns the first error banner text on the page, if any.
func (p *LoginPage) visibleError() string {
	for _, sel := range loginErrors {
		loc := p.page.Locator(sel).First()
		visible, err := loc.IsVisible()
		if err != nil || !visible {
			continue
		}
		text, err := loc.TextContent()
		if err != nil {
			continue
		}
		return strings.TrimSpace(text)
	}
	return ""
}
