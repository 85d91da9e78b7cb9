package main

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/cattree/pkg/export"
	"github.com/vanderheijden86/cattree/pkg/extract"
	"github.com/vanderheijden86/cattree/pkg/tree"
)

// maxListed caps the unknown and residual lists in text reports.
const maxListed = 100

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printCover reports how a blacklist maps onto the tree: the fewest nodes
// that block exactly the listed leaves, per-root coverage, and the entries
// that did not fit.
func printCover(w io.Writer, c tree.Cover, format export.Format) error {
	if format == export.FormatJSON {
		return writeJSON(w, c)
	}

	fmt.Fprintln(w, "Suggested keywords:")
	if len(c.Keywords) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, k := range c.Keywords {
		fmt.Fprintf(w, "  - %s\n", k)
	}

	fmt.Fprintln(w, "\nCoverage by root (listed/total leaves):")
	for _, r := range c.Roots {
		fmt.Fprintf(w, "  - %s: %d/%d (%.1f%%)\n", r.Name, r.Listed, r.Leaves, r.Percent())
	}

	printCapped(w, "\nUnknown entries:", c.Unknown)
	printCapped(w, "\nResidual entries (inner nodes only partly listed):", c.Residual)
	return nil
}

func printCapped(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(w, title)
	for i, it := range items {
		if i == maxListed {
			fmt.Fprintf(w, "  ... (+%d more)\n", len(items)-maxListed)
			break
		}
		fmt.Fprintf(w, "  - %s\n", it)
	}
}

// fileCounts pairs a CSV with its row counts for reports.
type fileCounts struct {
	Path string `json:"path"`
	extract.RowCounts
}

// printRowCounts reports how many rows of each CSV the blacklist removes.
func printRowCounts(w io.Writer, counts []fileCounts, format export.Format) error {
	if format == export.FormatJSON {
		return writeJSON(w, counts)
	}
	for i, fc := range counts {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if len(counts) > 1 {
			fmt.Fprintf(w, "%s\n", fc.Path)
		}
		fmt.Fprintf(w, "Rows: %d\n", fc.Total)
		fmt.Fprintf(w, "Blacklisted: %d (%.1f%%)\n", fc.Blacklisted, fc.BlacklistedPercent())
		fmt.Fprintf(w, "Kept: %d (%.1f%%)\n", fc.Kept(), fc.KeptPercent())
		if fc.Missing > 0 {
			fmt.Fprintf(w, "Missing category: %d\n", fc.Missing)
		}
	}
	return nil
}

// runCountRows counts the rows of every file against the blacklist.
func runCountRows(w io.Writer, files []string, column string, entries []string, format export.Format) error {
	if column == "" {
		column = extract.DefaultCountColumn
	}
	bl := extract.NewBlacklist(entries)
	counts := make([]fileCounts, 0, len(files))
	for _, f := range files {
		c, err := extract.CountRowsFile(f, column, bl)
		if err != nil {
			return err
		}
		counts = append(counts, fileCounts{Path: f, RowCounts: c})
	}
	return printRowCounts(w, counts, format)
}

// runBlacklistCover handles --blacklist against the loaded tree.
func runBlacklistCover(t *tree.Tree, opts runOptions) int {
	f, err := export.ParseFormat(opts.format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	entries, err := extract.ReadListFile(opts.blacklist)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading blacklist: %v\n", err)
		return 1
	}
	if err := printCover(os.Stdout, t.Cover(entries), f); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// runBlacklistRows handles --count-rows, which needs no categories file.
func runBlacklistRows(opts runOptions) int {
	if opts.blacklist == "" {
		fmt.Fprintln(os.Stderr, "Error: --count-rows needs --blacklist")
		return 2
	}
	f, err := export.ParseFormat(opts.format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	entries, err := extract.ReadListFile(opts.blacklist)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading blacklist: %v\n", err)
		return 1
	}
	if err := runCountRows(os.Stdout, splitList(opts.countRows), opts.column, entries, f); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
