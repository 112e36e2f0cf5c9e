package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

const defaultLogFile = "treecombo.log"

var (
	mu           sync.Mutex
	traceEnabled bool
	logPath      = defaultLogFile
	now          = time.Now
)

type entry struct {
	Time    time.Time `json:"time"`
	Event   string    `json:"event"`
	Payload any       `json:"payload,omitempty"`
}

// Error appends err to the log file. Nil errors are ignored.
func Error(err error) {
	if err == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	withLogFile(func(w io.Writer) error {
		logger := log.New(w, "", log.LstdFlags)
		logger.Println(err)
		return nil
	})
}

// SetTraceEnabled toggles emission of structured trace entries.
func SetTraceEnabled(enabled bool) {
	mu.Lock()
	traceEnabled = enabled
	mu.Unlock()
}

// TraceEnabled reports whether Trace writes anything.
func TraceEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return traceEnabled
}

// Trace appends one JSON line to the log when tracing is enabled.
func Trace(event string, payload any) {
	mu.Lock()
	defer mu.Unlock()
	if !traceEnabled {
		return
	}
	e := entry{Time: now().UTC(), Event: event, Payload: payload}
	withLogFile(func(w io.Writer) error {
		return json.NewEncoder(w).Encode(e)
	})
}

// Configure sets the log destination. Empty values fall back to the default
// path. Missing directories are created.
func Configure(path string) {
	mu.Lock()
	defer mu.Unlock()
	if strings.TrimSpace(path) == "" {
		logPath = defaultLogFile
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "unable to create log directory: %v\n", err)
		logPath = defaultLogFile
		return
	}
	logPath = path
}

// Path returns the configured log file.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return logPath
}

// callers hold mu.
func withLogFile(write func(io.Writer) error) {
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging failed: %v\n", err)
		return
	}
	defer f.Close()
	if err := write(f); err != nil {
		fmt.Fprintf(os.Stderr, "log write failed: %v\n", err)
	}
}
