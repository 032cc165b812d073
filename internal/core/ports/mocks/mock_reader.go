package mocks

import (
	"context"
	"sync"
)

// MockReader is a mock implementation of the MetadataReader port for testing
type MockReader struct {
	mu     sync.Mutex
	fields map[string]map[string]string
	err    error
	calls  []string
}

// NewMockReader creates a new mock reader
func NewMockReader() *MockReader {
	return &MockReader{
		fields: make(map[string]map[string]string),
	}
}

// DateFields returns the configured tags for path.
func (m *MockReader) DateFields(ctx context.Context, path string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, path)

	if m.err != nil {
		return nil, m.err
	}
	if f, ok := m.fields[path]; ok {
		return f, nil
	}
	return map[string]string{}, nil
}

// SetFields configures the tags returned for path.
func (m *MockReader) SetFields(path string, fields map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fields[path] = fields
}

// SetShouldFail makes every call return err.
func (m *MockReader) SetShouldFail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// GetCalls returns the paths queried so far.
func (m *MockReader) GetCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]string, len(m.calls))
	copy(calls, m.calls)
	return calls
}
