// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/streamz/internal/models"
	"github.com/desertthunder/streamz/internal/shared"
)

// MockAuthClient is a scripted test double for [services.AuthClient].
//
// Each call consults the matching func field; a nil field answers with [shared.ErrNotImplemented].
type MockAuthClient struct {
	mu     sync.Mutex
	tokens []string
	calls  map[string]int

	LoginFunc         func(ctx context.Context, username, password string) (*models.AuthResponse, error)
	RegisterFunc      func(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	ProfileFunc       func(ctx context.Context) (*models.User, error)
	UpdateProfileFunc func(ctx context.Context, patch models.ProfilePatch) (*models.User, error)
}

func (m *MockAuthClient) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[name]++
}

// Calls returns how many times the named method was invoked.
func (m *MockAuthClient) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

// Tokens returns every token installed through SetToken, in order.
func (m *MockAuthClient) Tokens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.tokens...)
}

func (m *MockAuthClient) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	m.record("Login")
	if m.LoginFunc == nil {
		return nil, shared.ErrNotImplemented
	}
	return m.LoginFunc(ctx, username, password)
}

func (m *MockAuthClient) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	m.record("Register")
	if m.RegisterFunc == nil {
		return nil, shared.ErrNotImplemented
	}
	return m.RegisterFunc(ctx, req)
}

func (m *MockAuthClient) Profile(ctx context.Context) (*models.User, error) {
	m.record("Profile")
	if m.ProfileFunc == nil {
		return nil, shared.ErrNotImplemented
	}
	return m.ProfileFunc(ctx)
}

func (m *MockAuthClient) UpdateProfile(ctx context.Context, patch models.ProfilePatch) (*models.User, error) {
	m.record("UpdateProfile")
	if m.UpdateProfileFunc == nil {
		return nil, shared.ErrNotImplemented
	}
	return m.UpdateProfileFunc(ctx, patch)
}

func (m *MockAuthClient) SetToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = append(m.tokens, token)
}

// MockReporter records progress updates and optionally fails them.
type MockReporter struct {
	mu      sync.Mutex
	updates []models.ProgressUpdate
	Err     error
}

func (m *MockReporter) UpdateProgress(_ context.Context, update models.ProgressUpdate) (*models.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, update)
	if m.Err != nil {
		return nil, m.Err
	}
	return &models.HistoryEntry{Content: update.Content, Episode: update.Episode, WatchedTime: update.WatchedTime}, nil
}

// Updates returns a copy of the recorded updates.
func (m *MockReporter) Updates() []models.ProgressUpdate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ProgressUpdate(nil), m.updates...)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
