package navigation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Session identifies the signed-in user. It is loaded once at startup and
// never mutated; logging out replaces it with the zero value.
type Session struct {
	userID string
	token  string
}

type sessionFile struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"userId"`
	Token         string `json:"token"`
}

// NewSession builds an authenticated session.
func NewSession(userID, token string) Session {
	return Session{userID: userID, token: token}
}

// Authenticated reports whether the session carries a user and a token.
func (s Session) Authenticated() bool {
	return s.userID != "" && s.token != ""
}

// UserID is the signed-in user, or empty.
func (s Session) UserID() string { return s.userID }

// Token is the bearer token sent with every request.
func (s Session) Token() string { return s.token }

// LoadSession reads a session file. A missing file yields an anonymous
// session.
func LoadSession(path string) (Session, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session %s: %w", path, err)
	}

	var f sessionFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return Session{}, fmt.Errorf("decode session %s: %w", path, err)
	}
	if !f.Authenticated {
		return Session{}, nil
	}
	return NewSession(f.UserID, f.Token), nil
}

// SaveSession persists the session so the next start stays signed in.
func SaveSession(path string, s Session) error {
	raw, err := json.Marshal(sessionFile{Authenticated: s.Authenticated(), UserID: s.userID, Token: s.token})
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("write session %s: %w", path, err)
	}
	return nil
}
