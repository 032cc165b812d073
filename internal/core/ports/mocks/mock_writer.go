package mocks

import (
	"context"
	"sync"
	"time"
)

// WriterCall records one Apply invocation.
type WriterCall struct {
	Path  string
	Taken time.Time
}

// MockWriter is a mock implementation of the MetadataWriter port for testing
type MockWriter struct {
	mu         sync.Mutex
	calls      []WriterCall
	failPaths  map[string]error
	failAll    error
	applyDelay time.Duration
}

// NewMockWriter creates a new mock writer
func NewMockWriter() *MockWriter {
	return &MockWriter{
		failPaths: make(map[string]error),
	}
}

// Apply records the call and returns any configured failure.
func (m *MockWriter) Apply(ctx context.Context, path string, taken time.Time) error {
	if m.applyDelay > 0 {
		select {
		case <-time.After(m.applyDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, WriterCall{Path: path, Taken: taken})

	if err, ok := m.failPaths[path]; ok {
		return err
	}
	return m.failAll
}

// GetCalls returns a copy of the recorded calls.
func (m *MockWriter) GetCalls() []WriterCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]WriterCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// SetShouldFail makes every Apply call return err.
func (m *MockWriter) SetShouldFail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAll = err
}

// SetFailPath makes Apply fail for one specific path only.
func (m *MockWriter) SetFailPath(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPaths[path] = err
}

// SetDelay makes every Apply call block for d, respecting context cancellation.
func (m *MockWriter) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyDelay = d
}
