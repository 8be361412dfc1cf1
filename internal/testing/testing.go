// package testing contains fakes and assertions shared by the ytdash test suites
package testing

import (
	"errors"
	"io"
	"net/http"
	"os"
	"sync/atomic"
	"testing"
)

// ErrInjected is returned by the failing writers and readers below.
var ErrInjected = errors.New("injected failure")

// FailingWriter rejects every write.
type FailingWriter struct{}

func (FailingWriter) Write(p []byte) (int, error) {
	return 0, ErrInjected
}

// LimitedWriter forwards the first n writes to its target and rejects the rest.
type LimitedWriter struct {
	remaining int
	target    io.Writer
}

func NewLimitedWriter(n int, target io.Writer) *LimitedWriter {
	return &LimitedWriter{remaining: n, target: target}
}

func (l *LimitedWriter) Write(p []byte) (int, error) {
	if l.remaining <= 0 {
		return 0, ErrInjected
	}
	l.remaining--
	return l.target.Write(p)
}

// MockRoundTripper answers every request with the same response or error and counts the requests.
type MockRoundTripper struct {
	response *http.Response
	err      error
	calls    atomic.Int32
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	m.response.Request = req
	return m.response, nil
}

// Calls returns how many requests reached the round tripper.
func (m *MockRoundTripper) Calls() int {
	return int(m.calls.Load())
}

// FailingBody is a response body whose reads always fail.
type FailingBody struct{}

func (FailingBody) Read(p []byte) (int, error) {
	return 0, ErrInjected
}

func (FailingBody) Close() error {
	return nil
}

// Chdir switches into dir for the rest of the test.
func Chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change directory to %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Errorf("failed to restore working directory %s: %v", wd, err)
		}
	})
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("file does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file %s: %v", path, err)
	}
	return string(content)
}
