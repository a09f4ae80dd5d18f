package testutil

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"gopkg.in/dnaeon/go-vcr.v2/cassette"
	"gopkg.in/dnaeon/go-vcr.v2/recorder"

	"github.com/kbukum/httppipe/logger"
)

// NewRecorder returns a round tripper that replays the named cassette from
// testdata/fixtures. Requests match on method and full URL. The recorder is
// stopped when the test ends.
func NewRecorder(t testing.TB, cassetteName string) *recorder.Recorder {
	t.Helper()

	mode := recorder.ModeReplaying
	if os.Getenv("VCR_MODE") == "record" {
		mode = recorder.ModeRecording
	}

	r, err := recorder.NewAsMode(filepath.Join("testdata", "fixtures", cassetteName), mode, nil)
	if err != nil {
		t.Fatalf("failed to create recorder for %s: %v", cassetteName, err)
	}
	r.SetMatcher(func(req *http.Request, i cassette.Request) bool {
		return req.Method == i.Method && req.URL.String() == i.URL
	})

	t.Cleanup(func() {
		if err := r.Stop(); err != nil {
			t.Errorf("failed to stop recorder for %s: %v", cassetteName, err)
		}
	})
	return r
}

// LogBuffer collects JSON log records. It is safe for concurrent writes.
type LogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// String returns everything written so far.
func (b *LogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Lines returns the non-empty records written so far.
func (b *LogBuffer) Lines() []string {
	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// BufferLogger returns a JSON logger at level writing to the returned buffer.
func BufferLogger(level string) (*logger.Logger, *LogBuffer) {
	buf := &LogBuffer{}
	return logger.NewWithWriter(buf, &logger.Config{Level: level, Format: "json"}, "test"), buf
}
