package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/pdxmph/tasks-tui/internal/logging"
)

// FileBackend keeps all values in a single JSON object on disk.
// Every Set or Delete rewrites the whole file.
type FileBackend struct {
	path   string
	values map[string]string
	closed bool
}

// OpenFile opens (or creates on first write) a JSON file backend. A file
// that does not parse is moved aside to path+".corrupt" and the backend
// starts empty.
func OpenFile(path string) (*FileBackend, error) {
	if path == "" {
		return nil, errors.New("file backend requires a path")
	}

	f := &FileBackend{path: path, values: make(map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, fmt.Errorf("reading store file: %w", err)
	}
	if len(data) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(data, &f.values); err != nil {
		if err := f.quarantine(err); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (f *FileBackend) quarantine(parseErr error) error {
	aside := f.path + ".corrupt"
	if err := os.Rename(f.path, aside); err != nil {
		return fmt.Errorf("moving aside unreadable store file %s: %w", f.path, err)
	}
	logging.Logger.WithError(parseErr).WithFields(logrus.Fields{
		"path":  f.path,
		"moved": aside,
	}).Warn("store file unreadable, starting empty")
	f.values = make(map[string]string)
	return nil
}

// Name returns the backend identifier
func (f *FileBackend) Name() string {
	return "file"
}

// Path returns the file the backend writes to
func (f *FileBackend) Path() string {
	return f.path
}

// Get returns the value stored under key
func (f *FileBackend) Get(key string) (string, bool, error) {
	if f.closed {
		return "", false, ErrClosed
	}
	v, ok := f.values[key]
	return v, ok, nil
}

// Set stores value under key and rewrites the file
func (f *FileBackend) Set(key, value string) error {
	if f.closed {
		return ErrClosed
	}
	prev, had := f.values[key]
	f.values[key] = value
	if err := f.flush(); err != nil {
		if had {
			f.values[key] = prev
		} else {
			delete(f.values, key)
		}
		return err
	}
	return nil
}

// Delete removes key and rewrites the file
func (f *FileBackend) Delete(key string) error {
	if f.closed {
		return ErrClosed
	}
	prev, had := f.values[key]
	if !had {
		return nil
	}
	delete(f.values, key)
	if err := f.flush(); err != nil {
		f.values[key] = prev
		return err
	}
	return nil
}

// Close marks the backend closed. The file already holds every write.
func (f *FileBackend) Close() error {
	f.closed = true
	return nil
}

func (f *FileBackend) flush() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	data, err := json.MarshalIndent(f.values, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding store file: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing store file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing store file: %w", err)
	}
	return nil
}

// Register the file backend
func init() {
	Register("file", func(path string) (Backend, error) { return OpenFile(path) })
}
