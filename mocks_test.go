package shopstate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// MockStorage implements the Storage interface for testing
type MockStorage struct {
	mu      sync.RWMutex
	data    map[string]map[string][]byte
	closed  bool
	saveErr error
	loadErr error
	saves   map[string]int // writes per namespace
	gate    chan struct{}  // when set, Save blocks until it receives
}

func NewMockStorage() *MockStorage {
	return &MockStorage{
		data:  make(map[string]map[string][]byte),
		saves: make(map[string]int),
	}
}

func (m *MockStorage) Load(ctx context.Context, profileID, namespace string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStorageUnavailable
	}
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if blobs, ok := m.data[profileID]; ok {
		if data, ok := blobs[namespace]; ok {
			return append([]byte(nil), data...), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MockStorage) Save(ctx context.Context, profileID, namespace string, data []byte) error {
	m.mu.RLock()
	gate := m.gate
	m.mu.RUnlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStorageUnavailable
	}
	m.saves[namespace]++
	if m.saveErr != nil {
		return m.saveErr
	}
	if _, ok := m.data[profileID]; !ok {
		m.data[profileID] = make(map[string][]byte)
	}
	m.data[profileID][namespace] = append([]byte(nil), data...)
	return nil
}

func (m *MockStorage) Delete(ctx context.Context, profileID, namespace string) error {
	_, _ = ctx.Deadline()
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStorageUnavailable
	}
	if blobs, ok := m.data[profileID]; ok {
		if _, ok := blobs[namespace]; ok {
			delete(blobs, namespace)
			return nil
		}
	}
	return ErrNotFound
}

func (m *MockStorage) Namespaces(ctx context.Context, profileID string) ([]string, error) {
	_, _ = ctx.Deadline()
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStorageUnavailable
	}
	var out []string
	for ns := range m.data[profileID] {
		out = append(out, ns)
	}
	return out, nil
}

func (m *MockStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// put seeds a raw blob, bypassing the persister.
func (m *MockStorage) put(profileID, namespace, data string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[profileID]; !ok {
		m.data[profileID] = make(map[string][]byte)
	}
	m.data[profileID][namespace] = []byte(data)
}

// blob returns the stored blob as a string, or "" when absent.
func (m *MockStorage) blob(profileID, namespace string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return string(m.data[profileID][namespace])
}

func (m *MockStorage) saveCount(namespace string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves[namespace]
}

func (m *MockStorage) setSaveErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

func (m *MockStorage) setLoadErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

func (m *MockStorage) isClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

// mockCacheEntry holds a value and an error for a cache key.
// This allows tests to pre-configure specific return values and errors for MockCache.Get.
type mockCacheEntry struct {
	value []byte
	err   error
}

// MockCache implements the Cache interface for testing
type MockCache struct {
	mu     sync.RWMutex
	data   map[string]mockCacheEntry
	closed bool
}

// NewMockCache creates a new MockCache for testing.
func NewMockCache() *MockCache {
	return &MockCache{
		data: make(map[string]mockCacheEntry),
	}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	_, _ = ctx.Deadline()
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrCacheUnavailable
	}
	entry, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return entry.value, entry.err
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, _ = ctx.Deadline()
	_ = ttl

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrCacheUnavailable
	}
	m.data[key] = mockCacheEntry{value: append([]byte(nil), value...)}
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	_, _ = ctx.Deadline()
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrCacheUnavailable
	}
	if _, ok := m.data[key]; ok {
		delete(m.data, key)
		return nil
	}
	return ErrNotFound
}

func (m *MockCache) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockCache) has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok
}

func (m *MockCache) isClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

// MockLogger implements the Logger interface for testing
type MockLogger struct {
	mu       sync.Mutex
	Messages []string
}

func (m *MockLogger) Debug(msg string, args ...any) { m.record("DEBUG", msg, args...) }
func (m *MockLogger) Info(msg string, args ...any)  { m.record("INFO", msg, args...) }
func (m *MockLogger) Warn(msg string, args ...any)  { m.record("WARN", msg, args...) }
func (m *MockLogger) Error(msg string, args ...any) { m.record("ERROR", msg, args...) }

// SetLevel records the attempt to set the log level for test verification.
func (m *MockLogger) SetLevel(level LogLevel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, fmt.Sprintf("SET_LEVEL: %v", level))
}

// Contains reports whether any recorded message contains substr.
func (m *MockLogger) Contains(substr string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.Messages {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

func (m *MockLogger) record(level, msg string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(args) > 0 {
		m.Messages = append(m.Messages, fmt.Sprintf("%s: %s %v", level, msg, args))
		return
	}
	m.Messages = append(m.Messages, fmt.Sprintf("%s: %s", level, msg))
}
