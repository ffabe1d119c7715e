package config

import (
	"encoding/json"
	"os"

	"github.com/hatidata/hati/pkg/consts"
	"github.com/pkg/errors"
)

// Session is the login session persisted as .hati/session.json after
// `hati auth login` or signup. Expiry is informational only; the control
// plane is the authority on token validity.
type Session struct {
	Token     string `json:"token"`
	Email     string `json:"email"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

// LoadSession reads a session from path.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read session file: %s", path)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "failed to parse session file")
	}

	return &s, nil
}

// Save writes the session to path.
func (s *Session) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal session")
	}

	return errors.Wrapf(os.WriteFile(path, data, consts.ModeFile), "failed to write session file: %s", path)
}

// RemoveSession deletes the session file. A missing file is not an error.
func RemoveSession(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to remove session file: %s", path)
	}
	return nil
}
