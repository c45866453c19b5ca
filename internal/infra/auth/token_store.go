// Package auth keeps the dashboard session: where the bearer token lives and
// what can be learned from it locally.
package auth

import (
	"os"
	"path/filepath"
	"sync"

	"assettrack/config"
	"assettrack/internal/domain/entity"
	"assettrack/internal/domain/service"
	"assettrack/internal/errors"

	"gopkg.in/yaml.v3"
)

const sessionFileMode = 0o600

// fileTokenStore keeps the session in memory and, when the user asked to be
// remembered, in a YAML file. Load always consults memory first, then the file.
type fileTokenStore struct {
	mu      sync.Mutex
	path    string
	current *entity.Session
}

// NewTokenStore creates the token store configured for this process.
func NewTokenStore(cfg *config.Config) service.TokenStore {
	return NewFileTokenStore(cfg.Session.File)
}

// NewFileTokenStore creates a token store persisting remembered sessions to path.
func NewFileTokenStore(path string) service.TokenStore {
	return &fileTokenStore{path: path}
}

func (s *fileTokenStore) Load() (*entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		c := *s.current

		return &c, nil
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read session file")
	}

	var session entity.Session
	if err := yaml.Unmarshal(data, &session); err != nil {
		return nil, errors.Wrap(err, "decode session file")
	}
	if session.Token == "" {
		return nil, nil
	}
	s.current = &session
	c := session

	return &c, nil
}

func (s *fileTokenStore) Save(session *entity.Session) error {
	if session == nil || session.Token == "" {
		return errors.New("session token is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := *session
	s.current = &c

	if !session.RememberMe {
		return s.removeFile()
	}

	data, err := yaml.Marshal(&c)
	if err != nil {
		return errors.Wrap(err, "encode session")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "create session directory")
	}
	if err := os.WriteFile(s.path, data, sessionFileMode); err != nil {
		return errors.Wrap(err, "write session file")
	}

	return nil
}

func (s *fileTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil

	return s.removeFile()
}

func (s *fileTokenStore) removeFile() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "remove session file")
	}

	return nil
}
