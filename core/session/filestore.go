package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// fileDocument is the on-disk layout. The user summary is kept as a
// JSON-serialized string next to the token and a denormalized role copy,
// mirroring how the hosted web client lays out its storage keys.
type fileDocument struct {
	AuthToken string `json:"authToken,omitempty"`
	User      string `json:"user,omitempty"`
	UserRole  string `json:"userRole,omitempty"`
}

// FileStore persists the session as a single JSON document on disk.
// All fields are written together and cleared together. Writes go through a
// temp file plus rename so a crash never leaves a half-written document.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a file-backed store at path, creating parent
// directories as needed.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.Join(ErrStoreFailed, errors.New("empty path"))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Join(ErrStoreFailed, err)
	}
	return &FileStore{path: path}, nil
}

// Write persists token and user summary together.
func (s *FileStore) Write(ctx context.Context, token string, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := fileDocument{AuthToken: token}
	if user != nil {
		raw, err := json.Marshal(user)
		if err != nil {
			return errors.Join(ErrStoreFailed, err)
		}
		doc.User = string(raw)
		doc.UserRole = user.Role
	}

	return s.save(doc)
}

// Read returns the stored token. A document holding leftover fields without a
// token is an invalid state and reads as logged out.
func (s *FileStore) Read(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return "", err
	}
	return doc.AuthToken, nil
}

// ReadUser returns the stored user summary. A corrupt summary clears the
// whole store and reads as absent.
func (s *FileStore) ReadUser(ctx context.Context) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	if doc.AuthToken == "" || doc.User == "" {
		return nil, nil
	}

	user := &User{}
	if err := json.Unmarshal([]byte(doc.User), user); err != nil {
		// Defensive clearing: a session with an unparseable summary must not
		// survive in storage.
		if clearErr := s.clearLocked(); clearErr != nil {
			return nil, clearErr
		}
		return nil, nil
	}

	return user, nil
}

// Clear removes all session fields.
func (s *FileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.clearLocked()
}

func (s *FileStore) clearLocked() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Join(ErrStoreFailed, err)
	}
	return nil
}

func (s *FileStore) load() (fileDocument, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileDocument{}, nil
		}
		return fileDocument{}, errors.Join(ErrStoreFailed, err)
	}

	doc := fileDocument{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		// The document itself is corrupt: clear and read as absent.
		if clearErr := s.clearLocked(); clearErr != nil {
			return fileDocument{}, clearErr
		}
		return fileDocument{}, nil
	}

	return doc, nil
}

func (s *FileStore) save(doc fileDocument) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return errors.Join(ErrStoreFailed, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".session-*")
	if err != nil {
		return errors.Join(ErrStoreFailed, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.Join(ErrStoreFailed, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.Join(ErrStoreFailed, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.Join(ErrStoreFailed, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return errors.Join(ErrStoreFailed, err)
	}
	return nil
}
