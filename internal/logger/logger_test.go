package logger

import (
	"bytes"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
)

func capture(t *testing.T, verboseOn bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verboseOn)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	if IsVerbose() {
		t.Error("verbose should start off")
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("SetVerbose(true) should enable debug output")
	}
	SetVerbose(false)
	if IsVerbose() {
		t.Error("SetVerbose(false) should restore the error threshold")
	}
}

func TestLevels_WhenVerbose(t *testing.T) {
	tests := []struct {
		name string
		log  func()
		want string
	}{
		{"debug", func() { Debug("view %s recomputed", "issues") }, "[DEBUG] view issues recomputed\n"},
		{"info", func() { Info("loaded %d rows", 42) }, "[INFO] loaded 42 rows\n"},
		{"warn", func() { Warn("slow source") }, "[WARN] slow source\n"},
		{"error", func() { Error("boom") }, "[ERROR] boom\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, true)
			tt.log()
			if got := buf.String(); got != tt.want {
				t.Errorf("unexpected output: %q", got)
			}
		})
	}
}

func TestLevels_WhenNotVerbose(t *testing.T) {
	buf := capture(t, false)

	Debug("hidden")
	Info("hidden")
	Warn("hidden")

	if buf.Len() > 0 {
		t.Errorf("expected no output when verbose is disabled, got %q", buf.String())
	}
}

func TestError_AlwaysPrinted(t *testing.T) {
	buf := capture(t, false)

	Error("reload %s failed: %v", "issues", io.ErrUnexpectedEOF)

	if got := buf.String(); got != "[ERROR] reload issues failed: unexpected EOF\n" {
		t.Errorf("unexpected error output: %q", got)
	}
}

func TestLevel_String(t *testing.T) {
	want := map[Level]string{
		LevelDebug: "DEBUG",
		LevelInfo:  "INFO",
		LevelWarn:  "WARN",
		LevelError: "ERROR",
		Level(42):  "ERROR",
	}
	for level, name := range want {
		if got := level.String(); got != name {
			t.Errorf("Level(%d).String() = %q, want %q", int(level), got, name)
		}
	}
}

func TestTimed(t *testing.T) {
	buf := capture(t, true)

	done := Timed("loading %s", "people")
	done()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	if lines[0] != "[DEBUG] loading people..." {
		t.Errorf("unexpected start line: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "[DEBUG] loading people took ") {
		t.Errorf("unexpected end line: %q", lines[1])
	}
}

func TestConcurrentAccess(t *testing.T) {
	SetOutput(io.Discard)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			SetVerbose(i%2 == 0)
			Debug("concurrent %d", i)
			Error("concurrent %d", i)
			_ = IsVerbose()
		}()
	}
	wg.Wait()
}
