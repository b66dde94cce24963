package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// preference is the order tried when no backend is configured. Only
// durable backends take part; memory must be asked for by name.
var preference = []string{"sqlite", "file"}

// Open opens the named backend. If name is empty, it tries the durable
// backends in order of preference and uses the first that opens. Each
// candidate gets its own file next to path so that one backend never
// reads another's data.
func Open(name, path string, log logrus.FieldLogger) (Backend, error) {
	if name != "" {
		backend, err := CreateBackend(name, path)
		if err != nil {
			return nil, fmt.Errorf("opening backend %s: %w", name, err)
		}
		return backend, nil
	}

	for i, candidate := range preference {
		location := candidatePath(candidate, path)
		backend, err := CreateBackend(candidate, location)
		if err != nil {
			log.WithError(err).WithField("backend", candidate).Warn("storage backend unavailable")
			continue
		}
		if i > 0 {
			log.WithFields(logrus.Fields{"backend": candidate, "path": location}).Warn("using fallback storage backend")
		}
		return backend, nil
	}

	return nil, fmt.Errorf("no durable storage backend available (registered: %v)", ListBackends())
}

// candidatePath maps the configured path to the file a backend uses when
// none is named: file always reads a .json file, sqlite never does.
func candidatePath(backend, path string) string {
	if path == "" {
		return path
	}
	ext := filepath.Ext(path)
	switch {
	case backend == "file" && ext != ".json":
		return strings.TrimSuffix(path, ext) + ".json"
	case backend == "sqlite" && ext == ".json":
		return strings.TrimSuffix(path, ext) + ".db"
	}
	return path
}
