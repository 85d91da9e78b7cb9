package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// wizardAnswers holds the form fields as entered. Numbers stay strings until
// apply so the inputs can validate them.
type wizardAnswers struct {
	Source        string
	Locale        string
	ExpandDepth   string
	ShowSelection bool
	Watch         bool
	Column        string
}

func answersFrom(cfg Config) wizardAnswers {
	return wizardAnswers{
		Source:        cfg.Source,
		Locale:        cfg.UI.Locale,
		ExpandDepth:   strconv.Itoa(cfg.UI.ExpandDepth),
		ShowSelection: cfg.UI.SelectionVisible(),
		Watch:         cfg.Watch.IsEnabled(),
		Column:        cfg.Extract.Column,
	}
}

// apply copies the answers onto cfg and validates the result.
func (a wizardAnswers) apply(cfg Config) (Config, error) {
	depth, err := parseExpandDepth(a.ExpandDepth)
	if err != nil {
		return cfg, err
	}
	cfg.Source = strings.TrimSpace(a.Source)
	if locale := strings.TrimSpace(a.Locale); locale != "" {
		cfg.UI.Locale = locale
	}
	cfg.UI.ExpandDepth = depth
	cfg.UI.ShowSelection = boolPtr(a.ShowSelection)
	cfg.Watch.Enabled = boolPtr(a.Watch)
	if column := strings.TrimSpace(a.Column); column != "" {
		cfg.Extract.Column = column
	}
	return cfg, cfg.Validate()
}

func parseExpandDepth(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("expand depth must be a number")
	}
	if n < -1 {
		return 0, fmt.Errorf("expand depth must be -1 or more")
	}
	return n, nil
}

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// RunWizard asks for the common settings, starting from cfg, and returns the
// edited config. It does not save.
func RunWizard(cfg Config) (Config, error) {
	a := answersFrom(cfg)

	form := newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Categories file").
				Description("JSON array of \"A|B|C\" paths. Leave empty to use categorie_uniche.json in the working directory.").
				Placeholder("~/data/categorie_uniche.json").
				Value(&a.Source).
				Validate(func(s string) error {
					s = strings.TrimSpace(s)
					if s == "" {
						return nil
					}
					if info, err := os.Stat(ExpandHome(s)); err == nil && info.IsDir() {
						return errors.New("path is a directory")
					}
					return nil
				}),
			huh.NewInput().
				Title("CSV column for --extract").
				Value(&a.Column),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Sort locale for the selection panel").
				Placeholder("it").
				Value(&a.Locale),
			huh.NewInput().
				Title("Expand depth").
				Description("0 opens top-level categories, -1 starts fully collapsed.").
				Value(&a.ExpandDepth).
				Validate(func(s string) error {
					_, err := parseExpandDepth(s)
					return err
				}),
			huh.NewConfirm().
				Title("Show the selection panel?").
				Value(&a.ShowSelection),
			huh.NewConfirm().
				Title("Reload when the categories file changes?").
				Value(&a.Watch),
		),
	)

	if err := form.Run(); err != nil {
		return cfg, err
	}
	return a.apply(cfg)
}
