package web

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"

	"github.com/remimse/tennis-bots/internal/internaltypes"
)

// Admin is the single operator account, configured through the environment.
type Admin struct {
	Username     string
	PasswordHash string // bcrypt
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

func (a Admin) Authenticate(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.Username)) == 1
	// Always run bcrypt so a wrong username costs the same as a wrong password.
	passOK := CheckPassword(a.PasswordHash, password)
	if !userOK || !passOK || a.PasswordHash == "" {
		return internaltypes.ErrUnauthorized
	}
	return nil
}
