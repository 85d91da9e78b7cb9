// Package extract derives a category path list from shop CSV exports.
//
// Each CSV is ";"-separated with a header row. One column holds raw category
// paths such as "Root|Fucili|Elettrici|AK|Ricambi". Extraction normalizes
// every value (strip tokens dropped, depth capped), merges all files, dedupes
// and sorts the result, which is the JSON array the loader reads.
package extract

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/cattree/pkg/debug"
	"github.com/vanderheijden86/cattree/pkg/metrics"
	"github.com/vanderheijden86/cattree/pkg/tree"
)

const (
	// DefaultColumn is the category column of the main shop export.
	DefaultColumn = "Categories_IT"
	// DefaultMaxLevels caps normalized paths at three segments.
	DefaultMaxLevels = 3
	// Separator is the CSV field delimiter.
	Separator = ';'
)

// DefaultStripTokens are navigation segments that carry no category meaning.
var DefaultStripTokens = []string{"Root", "Home"}

var (
	// ErrColumnNotFound is returned when the header lacks the category column.
	ErrColumnNotFound = errors.New("column not found")
	// ErrNoHeader is returned for files with no non-blank row.
	ErrNoHeader = errors.New("header row not found")
)

const bom = "\ufeff"

// Options controls normalization.
type Options struct {
	Column      string
	MaxLevels   int
	StripTokens []string
}

// DefaultOptions returns the options used by the shop exports.
func DefaultOptions() Options {
	return Options{
		Column:      DefaultColumn,
		MaxLevels:   DefaultMaxLevels,
		StripTokens: append([]string(nil), DefaultStripTokens...),
	}
}

func (o Options) withDefaults() Options {
	if o.Column == "" {
		o.Column = DefaultColumn
	}
	if o.MaxLevels <= 0 {
		o.MaxLevels = DefaultMaxLevels
	}
	if o.StripTokens == nil {
		o.StripTokens = DefaultStripTokens
	}
	return o
}

// ReadColumn returns the non-blank values of column, in file order and with
// duplicates removed. Leading blank rows and a UTF-8 BOM are tolerated. Rows
// too short to reach the column are skipped.
func ReadColumn(r io.Reader, column string) ([]string, error) {
	cr, idx, err := openColumn(r, column)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var values []string
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		if idx >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[idx])
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	return values, nil
}

// openColumn reads up to the header row and returns the reader positioned at
// the first data row together with the index of column.
func openColumn(r io.Reader, column string) (*csv.Reader, int, error) {
	cr := csv.NewReader(r)
	cr.Comma = Separator
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var header []string
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return nil, -1, ErrNoHeader
		}
		if err != nil {
			return nil, -1, fmt.Errorf("reading header: %w", err)
		}
		if blankRow(row) {
			continue
		}
		header = row
		break
	}

	idx := -1
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, bom))
		header[i] = h
		if h == column && idx < 0 {
			idx = i
		}
	}
	if idx < 0 {
		return nil, -1, fmt.Errorf("%w: %q (available: %s)", ErrColumnNotFound, column, strings.Join(header, ", "))
	}
	return cr, idx, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(strings.TrimPrefix(cell, bom)) != "" {
			return false
		}
	}
	return true
}

// Normalize cleans one raw path: segments are trimmed, empty segments and
// strip tokens dropped, and the result truncated to MaxLevels. It reports
// false when nothing remains.
func Normalize(raw string, opts Options) (string, bool) {
	opts = opts.withDefaults()
	segments := tree.SplitPath(raw)
	kept := segments[:0]
	for _, s := range segments {
		if !containsToken(opts.StripTokens, s) {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return "", false
	}
	if len(kept) > opts.MaxLevels {
		kept = kept[:opts.MaxLevels]
	}
	return tree.JoinPath(kept), true
}

func containsToken(tokens []string, s string) bool {
	for _, t := range tokens {
		if t == s {
			return true
		}
	}
	return false
}

// FileResult is the outcome of reading one CSV.
type FileResult struct {
	Path   string
	Values int
	Err    error
}

// Result is the merged output of Extract.
type Result struct {
	// Paths are the normalized, deduplicated paths in byte order.
	Paths []string
	// Anomalies are raw values deeper than MaxLevels, before truncation.
	Anomalies []string
	Files     []FileResult
}

// Extract reads every file concurrently and merges their category columns.
// A file that fails is recorded in Result.Files and logged; Extract only
// fails when no file could be read or ctx is cancelled.
func Extract(ctx context.Context, files []string, opts Options) (Result, error) {
	defer metrics.Timer(metrics.CSVExtract)()
	opts = opts.withDefaults()

	if len(files) == 0 {
		return Result{}, errors.New("no input files")
	}

	values := make([][]string, len(files))
	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := readFile(path, opts.Column)
			values[i] = v
			results[i] = FileResult{Path: path, Values: len(v), Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{Files: results}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{Files: results}, err
	}

	res := Result{Files: results}
	ok := 0
	set := make(map[string]struct{})
	rawSeen := make(map[string]struct{})
	for i, fr := range results {
		if fr.Err != nil {
			log.Printf("warning: skipping %s: %v", fr.Path, fr.Err)
			continue
		}
		ok++
		for _, raw := range values[i] {
			if _, dup := rawSeen[raw]; dup {
				continue
			}
			rawSeen[raw] = struct{}{}
			if len(tree.SplitPath(raw)) > opts.MaxLevels {
				res.Anomalies = append(res.Anomalies, raw)
			}
			if norm, keep := Normalize(raw, opts); keep {
				set[norm] = struct{}{}
			}
		}
	}
	if ok == 0 {
		return res, fmt.Errorf("no readable input: %w", results[0].Err)
	}

	res.Paths = make([]string, 0, len(set))
	for p := range set {
		res.Paths = append(res.Paths, p)
	}
	sort.Strings(res.Paths)
	debug.Log("extract: %d files, %d paths, %d anomalies", len(files), len(res.Paths), len(res.Anomalies))
	return res, nil
}

func readFile(path, column string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	v, err := ReadColumn(f, column)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// WriteJSON writes paths as an indented JSON array without HTML escaping, so
// segments such as "Ottiche & Mirini" stay readable.
func WriteJSON(w io.Writer, paths []string) error {
	if paths == nil {
		paths = []string{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(paths)
}

// WriteJSONFile writes paths to path, replacing any existing file.
func WriteJSONFile(path string, paths []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteJSON(f, paths); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
