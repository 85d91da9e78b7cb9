package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/cattree/pkg/config"
	"github.com/vanderheijden86/cattree/pkg/debug"
	"github.com/vanderheijden86/cattree/pkg/export"
	"github.com/vanderheijden86/cattree/pkg/extract"
	"github.com/vanderheijden86/cattree/pkg/hooks"
	"github.com/vanderheijden86/cattree/pkg/loader"
	"github.com/vanderheijden86/cattree/pkg/metrics"
	"github.com/vanderheijden86/cattree/pkg/tree"
	"github.com/vanderheijden86/cattree/pkg/ui"
	"github.com/vanderheijden86/cattree/pkg/version"
	"github.com/vanderheijden86/cattree/pkg/watcher"
)

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	os.Exit(cattree(os.Args[1:]))
}

// cattree runs the command line and returns the process exit code. Deferred
// cleanup such as stopping the CPU profile runs before main exits.
func cattree(args []string) int {
	var selects stringList

	fs := flag.NewFlagSet("cattree", flag.ContinueOnError)

	cpuProfile := fs.String("cpu-profile", "", "Write CPU profile to file")
	help := fs.Bool("help", false, "Show help")
	versionFlag := fs.Bool("version", false, "Show version")
	initFlag := fs.Bool("init", false, "Create or edit the config file interactively")
	configPath := fs.String("config", "", "Config file (default: ~/.config/cattree/config.yaml)")
	source := fs.String("source", "", "Categories JSON file (default: $CATTREE_SOURCE, config, or ./categorie_uniche.json)")
	printFlag := fs.Bool("print", false, "Print instead of starting the TUI: the selection when --select is given, otherwise the tree outline")
	filter := fs.String("filter", "", "Only print nodes matching this text (with --print)")
	fs.Var(&selects, "select", "Check a category path before printing or exporting (repeatable)")
	format := fs.String("format", "text", "Selection output format: text, json or markdown")
	extractFiles := fs.String("extract", "", "Comma-separated CSV files to extract categories from")
	column := fs.String("column", "", "CSV column holding categories (with --extract or --count-rows)")
	out := fs.String("out", loader.DefaultSourceName, "Output file for --extract")
	exportSQLite := fs.String("export-sqlite", "", "Write the tree and selection to a SQLite database")
	blacklist := fs.String("blacklist", "", "Report how a blacklist file (one category per line) covers the tree")
	countRows := fs.String("count-rows", "", "Comma-separated CSV files whose rows are counted against --blacklist")
	noHooks := fs.Bool("no-hooks", false, "Skip the hooks in .cattree/hooks.yaml when exporting")
	stats := fs.Bool("stats", false, "Print timing statistics on exit")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	// CPU profiling support
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			return 1
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	if *help {
		fmt.Println("Usage: cattree [options]")
		fmt.Println("\nBrowse and select product categories from a JSON list of \"A|B|C\" paths.")
		fs.PrintDefaults()
		return 0
	}

	if *versionFlag {
		fmt.Printf("cattree %s\n", version.String())
		return 0
	}

	cfgFile := *configPath
	if cfgFile == "" {
		cfgFile = config.ConfigPath()
	}
	cfg, err := config.LoadFrom(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}

	if *initFlag {
		if err := runInit(cfg, cfgFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	code := run(cfg, runOptions{
		source:       *source,
		print:        *printFlag,
		filter:       *filter,
		selects:      selects,
		format:       *format,
		extractFiles: *extractFiles,
		column:       *column,
		out:          *out,
		exportSQLite: *exportSQLite,
		blacklist:    *blacklist,
		countRows:    *countRows,
		noHooks:      *noHooks,
	})

	if *stats {
		metrics.WriteReport(os.Stderr)
	}
	return code
}

type runOptions struct {
	source       string
	print        bool
	filter       string
	selects      []string
	format       string
	extractFiles string
	column       string
	out          string
	exportSQLite string
	blacklist    string
	countRows    string
	noHooks      bool
}

// run executes one invocation and returns the process exit code.
func run(cfg config.Config, opts runOptions) int {
	if opts.extractFiles != "" {
		if err := runExtract(cfg, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	if opts.countRows != "" {
		return runBlacklistRows(opts)
	}

	path, err := loader.ResolveSource(opts.source, cfg.Source, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	interactive := !opts.print && opts.exportSQLite == "" && opts.blacklist == ""
	t, stats, err := loader.LoadFile(path)
	if err != nil {
		// The TUI can start empty and pick the file up once it appears.
		if !interactive || !errors.Is(err, loader.ErrNotFound) || !cfg.Watch.IsEnabled() {
			fmt.Fprintf(os.Stderr, "Error loading categories: %v\n", err)
			return 1
		}
	}
	if stats.Skipped > 0 {
		fmt.Fprintf(os.Stderr, "warning: skipped %d non-text entries in %s\n", stats.Skipped, path)
	}
	if stats.NotArray {
		fmt.Fprintf(os.Stderr, "warning: %s does not hold a JSON array; the tree is empty\n", path)
	}

	if t != nil {
		if missing := applySelections(t, opts.selects); len(missing) > 0 {
			for _, p := range missing {
				fmt.Fprintf(os.Stderr, "warning: no category %q\n", p)
			}
		}
	}

	if opts.exportSQLite != "" {
		hctx := hooks.ExportContext{
			ExportPath:    opts.exportSQLite,
			ExportFormat:  "sqlite",
			CategoryCount: t.Len() - 1,
			SelectedCount: t.SelectedCount(),
			Timestamp:     time.Now(),
		}
		err := withExportHooks(opts.noHooks, hctx, func() error {
			return export.NewSQLiteExporter(t, path).Export(opts.exportSQLite)
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stderr, "Exported %d categories to %s\n", t.Len()-1, opts.exportSQLite)
		if !opts.print {
			return 0
		}
	}

	if opts.blacklist != "" {
		return runBlacklistCover(t, opts)
	}

	if opts.print {
		f, err := export.ParseFormat(opts.format)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 2
		}
		if err := printTree(os.Stdout, t, opts.selects, opts.filter, f); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	if err := runTUI(cfg, t, path, err); err != nil {
		fmt.Printf("Error running cattree: %v\n", err)
		return 1
	}
	return 0
}

func runExtract(cfg config.Config, opts runOptions) error {
	eo := extract.Options{
		Column:      cfg.Extract.Column,
		MaxLevels:   cfg.Extract.MaxLevels,
		StripTokens: cfg.Extract.StripTokens,
	}
	if opts.column != "" {
		eo.Column = opts.column
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := extract.Extract(ctx, splitList(opts.extractFiles), eo)
	if err != nil {
		return err
	}
	for _, a := range res.Anomalies {
		fmt.Fprintf(os.Stderr, "warning: more than %d levels, truncated: %s\n", eo.MaxLevels, a)
	}
	hctx := hooks.ExportContext{
		ExportPath:    opts.out,
		ExportFormat:  "json",
		CategoryCount: len(res.Paths),
		Timestamp:     time.Now(),
	}
	err = withExportHooks(opts.noHooks, hctx, func() error {
		return extract.WriteJSONFile(opts.out, res.Paths)
	})
	if err != nil {
		return err
	}

	read := 0
	for _, fr := range res.Files {
		if fr.Err == nil {
			read++
		}
	}
	fmt.Printf("Wrote %d categories to %s (%d of %d files, %d anomalies)\n",
		len(res.Paths), opts.out, read, len(res.Files), len(res.Anomalies))
	return nil
}

func runInit(cfg config.Config, path string) error {
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	edited, err := config.RunWizard(cfg)
	if err != nil {
		return err
	}
	if err := config.SaveTo(edited, path); err != nil {
		return err
	}
	fmt.Printf("Saved %s\n", path)
	return nil
}

// runTUI starts the interactive viewer. loadErr is the startup load error, if
// any; the viewer then starts empty and waits for the file.
func runTUI(cfg config.Config, t *tree.Tree, path string, loadErr error) error {
	session := tree.NewSession(t)

	opts := ui.Options{
		Source:        path,
		Locale:        cfg.UI.Locale,
		ExpandDepth:   cfg.UI.ExpandDepth,
		ShowSelection: cfg.UI.SelectionVisible(),
	}
	if loadErr != nil {
		opts.Status = fmt.Sprintf("⚠ %v; waiting for it to appear", loadErr)
		opts.StatusIsError = true
	}

	if cfg.Watch.IsEnabled() {
		removed := make(chan struct{}, 1)
		w, err := watcher.NewWatcher(path,
			watcher.WithDebounceDuration(cfg.Watch.Debounce()),
			watcher.WithPollInterval(cfg.Watch.PollInterval()),
			watcher.WithOnError(func(err error) {
				if errors.Is(err, watcher.ErrFileRemoved) {
					select {
					case removed <- struct{}{}:
					default:
					}
					return
				}
				debug.Log("watcher error: %v", err)
			}),
		)
		if err == nil {
			err = w.Start(context.Background())
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: live reload disabled: %v\n", err)
		} else {
			defer w.Stop()
			opts.Watcher = w
			opts.Removed = removed
		}
	}

	return runTUIProgram(ui.NewModel(session, opts))
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set CATTREE_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("CATTREE_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if err != nil && (errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted)) {
		return nil
	}
	return err
}
