package logger

import (
	"bytes"
	"os"
	"sync"
	"testing"
)

// capture redirects output to a buffer at the given level for one test.
func capture(t *testing.T, l Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(l)
	t.Cleanup(func() {
		SetLevel(LevelWarn)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	t.Cleanup(func() { SetVerbose(false) })

	SetVerbose(true)
	if !IsVerbose() || GetLevel() != LevelDebug {
		t.Errorf("expected debug level after SetVerbose(true), got %s", GetLevel())
	}

	SetVerbose(false)
	if IsVerbose() || GetLevel() != LevelWarn {
		t.Errorf("expected warn level after SetVerbose(false), got %s", GetLevel())
	}
}

func TestDebug_WhenVerbose(t *testing.T) {
	buf := capture(t, LevelDebug)

	Debug("stage %s", "chunked")

	if got := buf.String(); got != "[DEBUG] stage chunked\n" {
		t.Errorf("unexpected debug output: %q", got)
	}
}

func TestDefaultLevel_HidesDebugAndInfo(t *testing.T) {
	buf := capture(t, LevelWarn)

	Debug("hidden")
	Section("hidden")
	Info("hidden")
	Warn("embedding failed: %v", "timeout")

	if got := buf.String(); got != "[WARN] embedding failed: timeout\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestSection(t *testing.T) {
	buf := capture(t, LevelDebug)

	Section("Retrieval")

	if got := buf.String(); got != "\n=== Retrieval ===\n" {
		t.Errorf("unexpected section output: %q", got)
	}
}

func TestInfo_AtInfoLevel(t *testing.T) {
	buf := capture(t, LevelInfo)

	Debug("hidden")
	Info("POST /api/retrieve %d", 200)

	if got := buf.String(); got != "[INFO] POST /api/retrieve 200\n" {
		t.Errorf("unexpected info output: %q", got)
	}
}

func TestSilent(t *testing.T) {
	buf := capture(t, LevelSilent)

	Warn("hidden")

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{" warning ", LevelWarn, false},
		{"none", LevelSilent, false},
		{"loud", LevelWarn, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}

	if LevelInfo.String() != "info" || Level(9).String() != "level(9)" {
		t.Error("unexpected level names")
	}
}

func TestConcurrentAccess(t *testing.T) {
	capture(t, LevelDebug)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			Debug("message %d", n)
			Warn("warning %d", n)
		}(i)
		go func(n int) {
			defer wg.Done()
			SetVerbose(n%2 == 0)
		}(i)
	}
	wg.Wait()
}
