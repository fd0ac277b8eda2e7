package log

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// TraceEntry is one step recorded while serving a request
type TraceEntry struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Time    string `json:"time"`
}

// Trace collects the steps of one request. When enabled the entries are
// returned to the caller in debug responses; every entry is also mirrored to
// the process logger at debug level. A nil *Trace is valid and records nothing.
type Trace struct {
	mu      sync.Mutex
	enabled bool
	entries []TraceEntry
	logger  *logrus.Entry
	now     func() time.Time
}

// NewTrace returns a trace bound to logger. enabled controls whether entries
// are retained for the response.
func NewTrace(logger *logrus.Entry, enabled bool) *Trace {
	return &Trace{enabled: enabled, logger: logger, now: time.Now}
}

// Add records one step
func (t *Trace) Add(message string, data any) {
	if t == nil {
		return
	}
	if t.logger != nil {
		if data != nil {
			t.logger.WithField("data", data).Debug(message)
		} else {
			t.logger.Debug(message)
		}
	}
	if !t.enabled {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, TraceEntry{
		Message: message,
		Data:    data,
		Time:    t.now().Format("15:04:05.000"),
	})
}

// Enabled reports whether entries are retained
func (t *Trace) Enabled() bool {
	return t != nil && t.enabled
}

// Entries returns a copy of the recorded steps
func (t *Trace) Entries() []TraceEntry {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TraceEntry, len(t.entries))
	copy(out, t.entries)
	return out
}
