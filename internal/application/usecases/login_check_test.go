package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/remimse/tennis-bots/internal/domain/booking"
)

func TestCheckLogin(t *testing.T) {
	tests := []struct {
		name    string
		login   fakeLogin
		wantErr string
	}{
		{name: "ok", login: fakeLogin{ok: true}},
		{name: "unreachable", login: fakeLogin{navigateErr: errors.New("dns")}, wantErr: "open login page: dns"},
		{name: "error", login: fakeLogin{loginErr: errors.New("no form")}, wantErr: "no form"},
		{name: "rejected", login: fakeLogin{}, wantErr: "did not show the logged-in page"},
		{name: "dropped", login: fakeLogin{ok: true, dropped: true}, wantErr: "session dropped"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			login := tt.login
			sess := &fakeSession{login: &login}

			err := CheckLogin(context.Background(), sess, "u", "p")

			if tt.wantErr == "" {
				assert.NoError(t, err)
				assert.Equal(t, "u", login.gotUser)
				return
			}
			assert.ErrorIs(t, err, booking.ErrLoginFailed)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
