// Package hooks runs user commands around exports. Hooks are configured in
// .cattree/hooks.yaml and run before (pre-export) and after (post-export) a
// categories file or database is written.
package hooks

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// HookPhase says when a hook runs.
type HookPhase string

const (
	// PreExport runs before the output is written. By default a failure
	// cancels the export.
	PreExport HookPhase = "pre-export"
	// PostExport runs after the output is written. By default a failure is
	// reported and the export still succeeds.
	PostExport HookPhase = "post-export"
)

// Values for Hook.OnError.
const (
	OnErrorFail     = "fail"
	OnErrorContinue = "continue"
)

// DefaultTimeout bounds a hook that sets no timeout.
const DefaultTimeout = 30 * time.Second

// ConfigDir and ConfigFile locate the hooks file inside a project directory.
const (
	ConfigDir  = ".cattree"
	ConfigFile = "hooks.yaml"
)

// Hook is one configured command.
type Hook struct {
	Name    string            `yaml:"name" json:"name"`
	Command string            `yaml:"command" json:"command"` // Run with sh -c
	Timeout time.Duration     `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Env     map[string]string `yaml:"env,omitempty" json:"env,omitempty"` // Values are expanded against the environment
	OnError string            `yaml:"on_error,omitempty" json:"on_error,omitempty"`
}

// Config is the hooks file.
type Config struct {
	Hooks HooksByPhase `yaml:"hooks" json:"hooks"`
}

// HooksByPhase groups hooks by phase, in run order.
type HooksByPhase struct {
	PreExport  []Hook `yaml:"pre-export,omitempty" json:"pre-export,omitempty"`
	PostExport []Hook `yaml:"post-export,omitempty" json:"post-export,omitempty"`
}

// ExportContext describes the export to the hooks through environment
// variables.
type ExportContext struct {
	ExportPath    string    // CATTREE_EXPORT_PATH
	ExportFormat  string    // CATTREE_EXPORT_FORMAT: "json" or "sqlite"
	CategoryCount int       // CATTREE_CATEGORY_COUNT
	SelectedCount int       // CATTREE_SELECTED_COUNT
	Timestamp     time.Time // CATTREE_TIMESTAMP, RFC3339
}

// ToEnv returns the context as KEY=value pairs.
func (c ExportContext) ToEnv() []string {
	return []string{
		"CATTREE_EXPORT_PATH=" + c.ExportPath,
		"CATTREE_EXPORT_FORMAT=" + c.ExportFormat,
		"CATTREE_CATEGORY_COUNT=" + strconv.Itoa(c.CategoryCount),
		"CATTREE_SELECTED_COUNT=" + strconv.Itoa(c.SelectedCount),
		"CATTREE_TIMESTAMP=" + c.Timestamp.Format(time.RFC3339),
	}
}

// Loader reads the hooks file of one project directory.
type Loader struct {
	projectDir string
	config     *Config
	warnings   []string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithProjectDir sets the directory holding .cattree (default: working
// directory).
func WithProjectDir(dir string) LoaderOption {
	return func(l *Loader) {
		l.projectDir = dir
	}
}

func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	if l.projectDir == "" {
		l.projectDir, _ = os.Getwd()
	}
	return l
}

// Path returns the hooks file location.
func (l *Loader) Path() string {
	return filepath.Join(l.projectDir, ConfigDir, ConfigFile)
}

// Load reads the hooks file. A missing file means no hooks.
func (l *Loader) Load() error {
	path := l.Path()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		l.config = &Config{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading hooks config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.Hooks.PreExport = l.normalize(cfg.Hooks.PreExport, PreExport)
	cfg.Hooks.PostExport = l.normalize(cfg.Hooks.PostExport, PostExport)
	l.config = &cfg
	return nil
}

// normalize fills in defaults and drops hooks without a command.
func (l *Loader) normalize(hooks []Hook, phase HookPhase) []Hook {
	var out []Hook
	for i, h := range hooks {
		if strings.TrimSpace(h.Command) == "" {
			l.warnings = append(l.warnings, fmt.Sprintf("%s hook %d has empty command; skipping", phase, i+1))
			continue
		}
		if h.Name == "" {
			h.Name = fmt.Sprintf("%s-%d", phase, i+1)
		}
		if h.Timeout == 0 {
			h.Timeout = DefaultTimeout
		}
		if h.OnError == "" {
			h.OnError = OnErrorContinue
			if phase == PreExport {
				h.OnError = OnErrorFail
			}
		}
		out = append(out, h)
	}
	return out
}

// Config returns the loaded configuration, empty before Load.
func (l *Loader) Config() *Config {
	if l.config == nil {
		return &Config{}
	}
	return l.config
}

// HasHooks reports whether any phase has a hook.
func (l *Loader) HasHooks() bool {
	c := l.Config()
	return len(c.Hooks.PreExport) > 0 || len(c.Hooks.PostExport) > 0
}

// GetHooks returns the hooks of phase, nil for unknown phases.
func (l *Loader) GetHooks(phase HookPhase) []Hook {
	if l.config == nil {
		return nil
	}
	switch phase {
	case PreExport:
		return l.config.Hooks.PreExport
	case PostExport:
		return l.config.Hooks.PostExport
	}
	return nil
}

// Warnings returns the problems found while loading.
func (l *Loader) Warnings() []string {
	return l.warnings
}

// LoadDefault loads the hooks of the working directory.
func LoadDefault() (*Loader, error) {
	l := NewLoader()
	if err := l.Load(); err != nil {
		return nil, err
	}
	return l, nil
}

// UnmarshalYAML accepts timeouts as durations ("5s") or plain seconds ("30").
func (h *Hook) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Name    string            `yaml:"name"`
		Command string            `yaml:"command"`
		Timeout string            `yaml:"timeout"`
		Env     map[string]string `yaml:"env"`
		OnError string            `yaml:"on_error"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	*h = Hook{Name: raw.Name, Command: raw.Command, Env: raw.Env, OnError: raw.OnError}
	if raw.Timeout == "" {
		return nil
	}
	if d, err := time.ParseDuration(raw.Timeout); err == nil {
		h.Timeout = d
		return nil
	}
	secs, err := strconv.ParseFloat(raw.Timeout, 64)
	if err != nil {
		return fmt.Errorf("invalid timeout %q", raw.Timeout)
	}
	h.Timeout = time.Duration(secs * float64(time.Second))
	return nil
}
