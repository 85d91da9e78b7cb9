package debug

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func withCapturedLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	prevEnabled, prevLogger := enabled, logger
	t.Cleanup(func() {
		enabled, logger = prevEnabled, prevLogger
	})
	var buf bytes.Buffer
	SetEnabled(true)
	SetOutput(&buf)
	return &buf
}

func TestLogDisabledIsSilent(t *testing.T) {
	buf := withCapturedLog(t)
	SetEnabled(false)

	Log("hidden %d", 1)
	AssertNoError(errors.New("ignored while disabled"), "hidden")
	LogEnterExit("hidden")()

	if buf.Len() != 0 {
		t.Errorf("expected no output while disabled, got %q", buf.String())
	}
}

func TestLogEnabled(t *testing.T) {
	buf := withCapturedLog(t)

	Log("loaded %d paths", 3)
	AssertNoError(nil, "quiet")

	out := buf.String()
	for _, want := range []string{"[CT_DEBUG]", "loaded 3 paths"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output %q", want, out)
		}
	}
	if strings.Contains(out, "quiet") {
		t.Errorf("a nil error should not log: %q", out)
	}
}

func TestLogEnterExit(t *testing.T) {
	buf := withCapturedLog(t)

	LogEnterExit("reload")()

	out := buf.String()
	if !strings.Contains(out, "-> reload") || !strings.Contains(out, "<- reload") {
		t.Errorf("expected enter/exit lines, got %q", out)
	}
}

func TestAssertNoErrorPanics(t *testing.T) {
	withCapturedLog(t)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on non-nil error")
		}
	}()
	AssertNoError(errors.New("broken invariant"), "toggle")
}
