package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// Credentials holds the single username/password pair allowed to log in.
// The plaintext password is hashed at construction and not retained.
type Credentials struct {
	username     string
	passwordHash []byte
}

func NewCredentials(username, password string) (*Credentials, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &Credentials{
		username:     username,
		passwordHash: hash,
	}, nil
}

func (c *Credentials) Username() string {
	return c.username
}

// Authenticate checks a supplied username/password pair against the stored
// credential. Both comparisons run to completion regardless of where the
// mismatch is, and the result never indicates which field was wrong.
func (c *Credentials) Authenticate(username, password string) (string, bool) {
	usernameOk := subtle.ConstantTimeCompare([]byte(c.username), []byte(username)) == 1
	passwordOk := bcrypt.CompareHashAndPassword(c.passwordHash, []byte(password)) == nil

	if !usernameOk || !passwordOk {
		return "", false
	}
	return username, true
}

// MatchSubject reports whether a verified token subject names the configured
// user. Kept separate from token verification so a future multi-user setup
// cannot silently widen trust.
func (c *Credentials) MatchSubject(subject string) bool {
	return subtle.ConstantTimeCompare([]byte(c.username), []byte(subject)) == 1
}
