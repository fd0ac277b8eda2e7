package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		level     string
		format    string
		wantLevel logrus.Level
		wantJSON  bool
	}{
		"json debug":       {level: "debug", format: "json", wantLevel: logrus.DebugLevel, wantJSON: true},
		"text warn":        {level: "warn", format: "text", wantLevel: logrus.WarnLevel},
		"invalid level":    {level: "loud", format: "json", wantLevel: logrus.InfoLevel, wantJSON: true},
		"empty everything": {wantLevel: logrus.InfoLevel, wantJSON: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			logger := New(tc.level, tc.format, &buf)
			if logger.GetLevel() != tc.wantLevel {
				t.Errorf("level = %v, want %v", logger.GetLevel(), tc.wantLevel)
			}
			Service(logger, "posteria").Warn("hello")
			line := buf.String()
			if tc.wantJSON {
				var fields map[string]any
				if err := json.Unmarshal([]byte(line), &fields); err != nil {
					t.Fatalf("output %q is not JSON: %v", line, err)
				}
				if fields["service"] != "posteria" {
					t.Errorf("service field = %v, want posteria", fields["service"])
				}
			} else if !strings.Contains(line, "service=posteria") {
				t.Errorf("text output %q missing service field", line)
			}
		})
	}
}

func TestTrace(t *testing.T) {
	t.Parallel()

	tr := NewTrace(Discard(), true)
	fixed := time.Date(2024, 5, 1, 10, 20, 30, 456000000, time.UTC)
	tr.now = func() time.Time { return fixed }

	tr.Add("search", map[string]string{"q": "alien"})
	tr.Add("done", nil)

	want := []TraceEntry{
		{Message: "search", Data: map[string]string{"q": "alien"}, Time: "10:20:30.456"},
		{Message: "done", Time: "10:20:30.456"},
	}
	if diff := cmp.Diff(want, tr.Entries()); diff != "" {
		t.Errorf("Entries() mismatch (-want +got):\n%s", diff)
	}
}

func TestTraceDisabledAndNil(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New("debug", "json", &buf)
	tr := NewTrace(logrus.NewEntry(logger), false)
	tr.Add("mirrored only", nil)

	if got := tr.Entries(); len(got) != 0 {
		t.Errorf("disabled trace retained %d entries, want 0", len(got))
	}
	if !strings.Contains(buf.String(), "mirrored only") {
		t.Errorf("disabled trace did not mirror to logger, got %q", buf.String())
	}

	var nilTrace *Trace
	nilTrace.Add("ignored", nil)
	if nilTrace.Enabled() || nilTrace.Entries() != nil {
		t.Error("nil trace should be disabled and empty")
	}
}
