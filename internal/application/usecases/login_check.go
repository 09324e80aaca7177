package usecases

import (
	"context"
	"fmt"

	"github.com/remimse/tennis-bots/internal/domain/booking"
)

// CheckLogin signs in on sess and then confirms the portal still shows the
// logged-in page. Every failure wraps booking.ErrLoginFailed.
func CheckLogin(ctx context.Context, sess booking.Session, username, password string) error {
	lp := sess.Login()
	if err := lp.Navigate(ctx); err != nil {
		return fmt.Errorf("%w: open login page: %v", booking.ErrLoginFailed, err)
	}
	ok, err := lp.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("%w: %v", booking.ErrLoginFailed, err)
	}
	if !ok {
		return fmt.Errorf("%w: portal did not show the logged-in page", booking.ErrLoginFailed)
	}
	if !lp.IsLoggedIn(ctx) {
		return fmt.Errorf("%w: session dropped right after sign-in", booking.ErrLoginFailed)
	}
	return nil
}
