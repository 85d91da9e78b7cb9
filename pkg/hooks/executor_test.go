package hooks

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func preHooks(hooks ...Hook) *Config  { return &Config{Hooks: HooksByPhase{PreExport: hooks}} }
func postHooks(hooks ...Hook) *Config { return &Config{Hooks: HooksByPhase{PostExport: hooks}} }

func TestExecutorCapturesStdout(t *testing.T) {
	e := NewExecutor(preHooks(Hook{Name: "hello", Command: "echo hello", Timeout: 5 * time.Second, OnError: OnErrorFail}), ExportContext{})
	if err := e.RunPreExport(); err != nil {
		t.Fatalf("RunPreExport: %v", err)
	}
	res := e.Results()
	if len(res) != 1 || !res[0].Success || res[0].Stdout != "hello" {
		t.Fatalf("unexpected results %+v", res)
	}
	if res[0].Phase != PreExport {
		t.Errorf("phase = %s", res[0].Phase)
	}
}

func TestExecutorExportEnvironment(t *testing.T) {
	t.Setenv("HOOK_TARGET", "staging")
	ctx := ExportContext{ExportPath: "/data/cats.db", ExportFormat: "sqlite", CategoryCount: 99, SelectedCount: 7, Timestamp: time.Now()}
	hook := Hook{
		Name:    "env",
		Command: `echo "$CATTREE_EXPORT_PATH $CATTREE_EXPORT_FORMAT $CATTREE_CATEGORY_COUNT $CATTREE_SELECTED_COUNT $DEST"`,
		Timeout: 5 * time.Second,
		Env:     map[string]string{"DEST": "${HOOK_TARGET}"},
	}

	e := NewExecutor(preHooks(hook), ctx)
	if err := e.RunPreExport(); err != nil {
		t.Fatalf("RunPreExport: %v", err)
	}
	if got, want := e.Results()[0].Stdout, "/data/cats.db sqlite 99 7 staging"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestPreExportStopsAtFirstFailure(t *testing.T) {
	e := NewExecutor(preHooks(
		Hook{Name: "gate", Command: "exit 1", Timeout: time.Second, OnError: OnErrorFail},
		Hook{Name: "never", Command: "echo nope", Timeout: time.Second, OnError: OnErrorFail},
	), ExportContext{})

	if err := e.RunPreExport(); err == nil {
		t.Fatal("expected an error")
	}
	if n := len(e.Results()); n != 1 {
		t.Errorf("expected 1 hook to run, got %d", n)
	}
}

func TestPreExportContinueKeepsGoing(t *testing.T) {
	e := NewExecutor(preHooks(
		Hook{Name: "soft", Command: "exit 1", Timeout: time.Second, OnError: OnErrorContinue},
		Hook{Name: "next", Command: "echo next", Timeout: time.Second, OnError: OnErrorFail},
	), ExportContext{})

	if err := e.RunPreExport(); err != nil {
		t.Fatalf("RunPreExport: %v", err)
	}
	res := e.Results()
	if len(res) != 2 || res[0].Success || res[1].Stdout != "next" {
		t.Errorf("unexpected results %+v", res)
	}
}

func TestPostExportRunsEveryHook(t *testing.T) {
	e := NewExecutor(postHooks(
		Hook{Name: "strict", Command: "exit 1", Timeout: time.Second, OnError: OnErrorFail},
		Hook{Name: "after", Command: "echo ok", Timeout: time.Second, OnError: OnErrorContinue},
	), ExportContext{})

	if err := e.RunPostExport(); err == nil {
		t.Fatal("a failing on_error=fail post-export hook should be reported")
	}
	res := e.Results()
	if len(res) != 2 || res[1].Stdout != "ok" {
		t.Errorf("expected the second hook to run, got %+v", res)
	}

	e = NewExecutor(postHooks(Hook{Name: "soft", Command: "exit 1", Timeout: time.Second, OnError: OnErrorContinue}), ExportContext{})
	if err := e.RunPostExport(); err != nil {
		t.Errorf("on_error=continue should not fail the export: %v", err)
	}
}

func TestExecutorTimeout(t *testing.T) {
	e := NewExecutor(preHooks(Hook{Name: "slow", Command: "sleep 10", Timeout: 100 * time.Millisecond, OnError: OnErrorFail}), ExportContext{})

	start := time.Now()
	if err := e.RunPreExport(); err == nil {
		t.Fatal("expected a timeout error")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("timeout took %v", elapsed)
	}
	res := e.Results()[0]
	if res.Success || !strings.Contains(res.Error.Error(), "timed out") {
		t.Errorf("unexpected result %+v", res)
	}
	if res.Duration < 100*time.Millisecond {
		t.Errorf("duration %v shorter than the timeout", res.Duration)
	}
}

func TestExecutorCommandErrors(t *testing.T) {
	script := filepath.Join(t.TempDir(), "not-executable.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho hi\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	for name, cmd := range map[string]string{
		"not found":         "definitely-not-a-real-command-xyz",
		"permission denied": script,
	} {
		t.Run(name, func(t *testing.T) {
			e := NewExecutor(preHooks(Hook{Name: name, Command: cmd, Timeout: time.Second, OnError: OnErrorFail}), ExportContext{})
			if err := e.RunPreExport(); err == nil {
				t.Fatal("expected an error")
			}
			res := e.Results()[0]
			if res.Success || res.Stderr == "" {
				t.Errorf("expected a failure with stderr, got %+v", res)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	cfg := &Config{Hooks: HooksByPhase{
		PreExport:  []Hook{{Name: "ok", Command: "echo ok", Timeout: time.Second, OnError: OnErrorContinue}},
		PostExport: []Hook{{Name: "noisy", Command: "printf '%0300d' 0 1>&2; exit 1", Timeout: time.Second, OnError: OnErrorContinue}},
	}}
	e := NewExecutor(cfg, ExportContext{})
	if s := e.Summary(); s != "" {
		t.Errorf("summary before any run = %q", s)
	}
	_ = e.RunPreExport()
	_ = e.RunPostExport()

	summary := e.Summary()
	if !strings.HasPrefix(summary, "Hooks: 1 succeeded, 1 failed") {
		t.Errorf("unexpected summary:\n%s", summary)
	}
	for _, line := range strings.Split(summary, "\n") {
		if strings.Contains(line, "stderr:") && len(line) > 230 {
			t.Errorf("stderr line not truncated (%d bytes)", len(line))
		}
	}
	if !strings.Contains(summary, "...") {
		t.Error("expected a truncation marker")
	}
}

func TestRunHooks(t *testing.T) {
	dir := t.TempDir()

	e, err := RunHooks(dir, ExportContext{}, false)
	if err != nil || e != nil {
		t.Fatalf("no hooks file: executor=%v err=%v", e, err)
	}

	writeHooksFile(t, dir, "hooks:\n  pre-export:\n    - command: echo hi\n")
	e, err = RunHooks(dir, ExportContext{}, true)
	if err != nil || e != nil {
		t.Fatalf("noHooks should short-circuit: executor=%v err=%v", e, err)
	}

	e, err = RunHooks(dir, ExportContext{ExportFormat: "json"}, false)
	if err != nil {
		t.Fatalf("RunHooks: %v", err)
	}
	if e == nil || len(e.config.Hooks.PreExport) != 1 {
		t.Fatalf("expected an executor with one hook, got %+v", e)
	}
	if len(e.Results()) != 0 {
		t.Error("nothing should run before RunPreExport")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abcdefghijklmnopqrstuvwxyz", 8); got != "abcde..." {
		t.Errorf("truncate = %q", got)
	}
}
