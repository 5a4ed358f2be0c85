// Package jsonfile stores the user document as a single JSON file.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"wordtrainer/internal/domain"
)

// UserRepo implements repository.UserStore on top of a JSON file
type UserRepo struct {
	path string
	mu   sync.Mutex
}

// NewUserRepo creates a repository backed by the file at path
func NewUserRepo(path string) *UserRepo {
	return &UserRepo{path: path}
}

// Path returns the backing file location
func (r *UserRepo) Path() string {
	return r.path
}

// Load reads the whole document. A missing file is created as an empty mapping.
func (r *UserRepo) Load() (domain.Users, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := r.write([]byte("{}")); err != nil {
			return nil, fmt.Errorf("failed to create user store: %w", err)
		}
		return domain.Users{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user store: %w", err)
	}

	users := domain.Users{}
	if len(bytes.TrimSpace(data)) == 0 {
		return users, nil
	}
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to decode user store: %w", err)
	}
	users.Normalize()

	return users, nil
}

// Save replaces the document with users
func (r *UserRepo) Save(users domain.Users) error {
	if users == nil {
		users = domain.Users{}
	}

	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode user store: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.write(data); err != nil {
		return fmt.Errorf("failed to write user store: %w", err)
	}
	return nil
}

// write replaces the file through a temporary sibling so readers never see a partial document
func (r *UserRepo) write(data []byte) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), r.path)
}
