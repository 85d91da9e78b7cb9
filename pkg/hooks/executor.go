package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/vanderheijden86/cattree/pkg/debug"
)

// HookResult records one hook run.
type HookResult struct {
	Hook     Hook
	Phase    HookPhase
	Success  bool
	Stdout   string
	Stderr   string
	Duration time.Duration
	Error    error
}

// Executor runs the configured hooks for one export.
type Executor struct {
	config  *Config
	context ExportContext
	results []HookResult
}

// NewExecutor creates an executor for config and the export described by ctx.
func NewExecutor(config *Config, ctx ExportContext) *Executor {
	if config == nil {
		config = &Config{}
	}
	return &Executor{config: config, context: ctx}
}

// RunPreExport runs the pre-export hooks in order. The first failing hook with
// on_error "fail" stops the run and its error is returned.
func (e *Executor) RunPreExport() error {
	for _, hook := range e.config.Hooks.PreExport {
		result := e.runHook(hook, PreExport)
		e.results = append(e.results, result)
		if !result.Success && hook.OnError != OnErrorContinue {
			return fmt.Errorf("pre-export hook %q failed: %w", hook.Name, result.Error)
		}
	}
	return nil
}

// RunPostExport runs every post-export hook. Hooks with on_error "fail" make
// the run return an error, but later hooks still run.
func (e *Executor) RunPostExport() error {
	var errs []error
	for _, hook := range e.config.Hooks.PostExport {
		result := e.runHook(hook, PostExport)
		e.results = append(e.results, result)
		if !result.Success && hook.OnError == OnErrorFail {
			errs = append(errs, fmt.Errorf("post-export hook %q failed: %w", hook.Name, result.Error))
		}
	}
	return errors.Join(errs...)
}

func (e *Executor) runHook(hook Hook, phase HookPhase) HookResult {
	timeout := hook.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", hook.Command)
	cmd.Env = append(os.Environ(), e.context.ToEnv()...)
	for k, v := range hook.Env {
		cmd.Env = append(cmd.Env, k+"="+os.ExpandEnv(v))
	}
	// Children of the shell may keep the pipes open after a timeout kill.
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	result := HookResult{
		Hook:     hook,
		Phase:    phase,
		Success:  err == nil,
		Stdout:   strings.TrimSpace(stdout.String()),
		Stderr:   strings.TrimSpace(stderr.String()),
		Duration: time.Since(start),
	}
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			err = fmt.Errorf("timed out after %v", timeout)
		}
		result.Error = err
	}
	debug.Log("hooks: %s %q finished in %v (ok=%v)", phase, hook.Name, result.Duration, result.Success)
	return result
}

// Results returns the results of every hook run so far.
func (e *Executor) Results() []HookResult {
	return e.results
}

// Summary describes the runs: counts, then one line per failure with its
// stderr.
func (e *Executor) Summary() string {
	if len(e.results) == 0 {
		return ""
	}

	var ok, failed int
	for _, r := range e.results {
		if r.Success {
			ok++
		} else {
			failed++
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Hooks: %d succeeded, %d failed", ok, failed)
	for _, r := range e.results {
		if r.Success {
			continue
		}
		fmt.Fprintf(&sb, "\n  ✗ %s (%s): %v", r.Hook.Name, r.Phase, r.Error)
		if r.Stderr != "" {
			fmt.Fprintf(&sb, "\n    stderr: %s", truncate(r.Stderr, 200))
		}
	}
	return sb.String()
}

// RunHooks loads the hooks configured in projectDir and returns an executor
// for them. It returns nil when noHooks is set or nothing is configured.
func RunHooks(projectDir string, ctx ExportContext, noHooks bool) (*Executor, error) {
	if noHooks {
		return nil, nil
	}
	loader := NewLoader(WithProjectDir(projectDir))
	if err := loader.Load(); err != nil {
		return nil, err
	}
	for _, w := range loader.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	if !loader.HasHooks() {
		return nil, nil
	}
	return NewExecutor(loader.Config(), ctx), nil
}

// truncate shortens s to max bytes, ending in "...".
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
