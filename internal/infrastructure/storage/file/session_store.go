// Package file keeps the current session in a JSON file, the durable
// client-side storage of a single running instance.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/sponsormatch/matchbot/internal/core/domain"
	"github.com/sponsormatch/matchbot/internal/core/ports"
)

const fileMode = 0o600

// SessionStore writes the profile snapshot to <dir>/auth_user.json. Writes
// go through a temp file and a rename, so a reader sees either the old or
// the new snapshot, never a torn one.
type SessionStore struct {
	path string
	log  zerolog.Logger
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates dir if needed.
func NewSessionStore(dir string, log zerolog.Logger) (*SessionStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("session dir: %w", err)
	}
	return &SessionStore{
		path: filepath.Join(dir, ports.SessionStoreKey+".json"),
		log:  log,
	}, nil
}

// Path is the file the snapshot lives in.
func (s *SessionStore) Path() string { return s.path }

func (s *SessionStore) Save(_ context.Context, profile *domain.UserProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".auth_user-*")
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write: %v", domain.ErrStorageUnavailable, err)
	}
	if err := tmp.Chmod(fileMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: chmod: %v", domain.ErrStorageUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close: %v", domain.ErrStorageUnavailable, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("%w: rename: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *SessionStore) Load(_ context.Context) (*domain.UserProfile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read: %v", domain.ErrStorageUnavailable, err)
	}

	var profile domain.UserProfile
	if err := json.Unmarshal(data, &profile); err != nil || profile.ID == "" {
		s.log.Warn().Str("path", s.path).Msg("ignoring undecodable session snapshot")
		return nil, nil
	}
	return &profile, nil
}

func (s *SessionStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: remove: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}
