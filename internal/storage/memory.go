package storage

// MemoryBackend keeps values in process memory. Nothing survives Close.
type MemoryBackend struct {
	values map[string]string
	closed bool
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]string)}
}

// Name returns the backend identifier
func (m *MemoryBackend) Name() string {
	return "memory"
}

// Get returns the value stored under key
func (m *MemoryBackend) Get(key string) (string, bool, error) {
	if m.closed {
		return "", false, ErrClosed
	}
	v, ok := m.values[key]
	return v, ok, nil
}

// Set stores value under key
func (m *MemoryBackend) Set(key, value string) error {
	if m.closed {
		return ErrClosed
	}
	m.values[key] = value
	return nil
}

// Delete removes key
func (m *MemoryBackend) Delete(key string) error {
	if m.closed {
		return ErrClosed
	}
	delete(m.values, key)
	return nil
}

// Close drops all values
func (m *MemoryBackend) Close() error {
	m.closed = true
	m.values = nil
	return nil
}

// Register the memory backend
func init() {
	Register("memory", func(string) (Backend, error) { return NewMemoryBackend(), nil })
}
