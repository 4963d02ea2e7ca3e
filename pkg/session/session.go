package session

import (
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/zfogg/pageshare/pkg/config"
)

// Session records the handle the CLI acts as.
type Session struct {
	Handle    string    `json:"handle"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Load loads the session from disk. A missing file is not an error.
func Load() (*Session, error) {
	data, err := os.ReadFile(config.GetSessionPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Save saves the session to disk, readable only by the owner.
func Save(s *Session) error {
	s.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(config.GetSessionPath(), data, 0600)
}

// Delete deletes the session file.
func Delete() error {
	err := os.Remove(config.GetSessionPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Handle resolves the acting handle: override when set, otherwise the saved session.
func Handle(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	s, err := Load()
	if err != nil || s == nil {
		return "", err
	}
	return s.Handle, nil
}
