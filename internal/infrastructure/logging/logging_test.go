package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-kit/log/level"
)

func TestNew_LevelFilter(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"debug", true, true, true},
		{"info", false, true, true},
		{"WARN", false, false, true},
		{"error", false, false, false},
		{"bogus", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(&buf, tt.level)

			level.Debug(l).Log("msg", "d")
			level.Info(l).Log("msg", "i")
			level.Warn(l).Log("msg", "w")
			out := buf.String()

			if got := strings.Contains(out, "msg=d"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, expected %v", got, tt.wantDebug)
			}
			if got := strings.Contains(out, "msg=i"); got != tt.wantInfo {
				t.Errorf("info logged = %v, expected %v", got, tt.wantInfo)
			}
			if got := strings.Contains(out, "msg=w"); got != tt.wantWarn {
				t.Errorf("warn logged = %v, expected %v", got, tt.wantWarn)
			}
		})
	}
}

func TestNew_Keys(t *testing.T) {
	var buf bytes.Buffer
	level.Info(New(&buf, "info")).Log("msg", "hello")

	for _, key := range []string{"ts=", "caller=", "level=info", "msg=hello"} {
		if !strings.Contains(buf.String(), key) {
			t.Errorf("expected %q in %q", key, buf.String())
		}
	}
}
