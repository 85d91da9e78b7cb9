package extract

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/cases"

	"github.com/vanderheijden86/cattree/pkg/metrics"
)

// DefaultCountColumn is the category column of the secondary shop export,
// which holds one plain category name per row.
const DefaultCountColumn = "Categoria"

// FoldCategory collapses whitespace runs to single spaces, trims, and case
// folds s, so "  Coltelli   CACCIA " and "coltelli caccia" compare equal.
func FoldCategory(s string) string {
	return cases.Fold().String(strings.Join(strings.Fields(s), " "))
}

// Blacklist is a set of folded category values.
type Blacklist map[string]struct{}

// NewBlacklist folds every non-blank entry.
func NewBlacklist(entries []string) Blacklist {
	b := make(Blacklist, len(entries))
	for _, e := range entries {
		if f := FoldCategory(e); f != "" {
			b[f] = struct{}{}
		}
	}
	return b
}

// Contains reports whether v folds to a listed value.
func (b Blacklist) Contains(v string) bool {
	_, ok := b[FoldCategory(v)]
	return ok
}

// ReadList reads one entry per line, trimming each and dropping blank lines.
func ReadList(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(strings.TrimPrefix(sc.Text(), bom)); line != "" {
			out = append(out, line)
		}
	}
	return out, sc.Err()
}

// ReadListFile is ReadList over the named file.
func ReadListFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadList(f)
}

// RowCounts tallies the data rows of one CSV against a blacklist.
type RowCounts struct {
	// Total counts non-blank rows after the header.
	Total       int `json:"total_rows"`
	Blacklisted int `json:"blacklisted_rows"`
	// Missing counts rows whose category cell is absent or blank. They are
	// part of Kept.
	Missing int `json:"empty_or_missing"`
}

// Kept is the number of rows not blacklisted.
func (c RowCounts) Kept() int { return c.Total - c.Blacklisted }

func share(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100 / float64(total)
}

// BlacklistedPercent is Blacklisted as a share of Total.
func (c RowCounts) BlacklistedPercent() float64 { return share(c.Blacklisted, c.Total) }

// KeptPercent is Kept as a share of Total.
func (c RowCounts) KeptPercent() float64 { return share(c.Kept(), c.Total) }

// CountRows classifies every data row by the value in column. Unlike
// ReadColumn it keeps duplicates, since it counts products rather than
// categories.
func CountRows(r io.Reader, column string, bl Blacklist) (RowCounts, error) {
	defer metrics.Timer(metrics.CSVExtract)()

	var c RowCounts
	cr, idx, err := openColumn(r, column)
	if err != nil {
		return c, err
	}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return c, nil
		}
		if err != nil {
			return c, fmt.Errorf("reading row: %w", err)
		}
		if blankRow(row) {
			continue
		}
		c.Total++
		if idx >= len(row) || strings.TrimSpace(row[idx]) == "" {
			c.Missing++
			continue
		}
		if bl.Contains(row[idx]) {
			c.Blacklisted++
		}
	}
}

// CountRowsFile is CountRows over the named file.
func CountRowsFile(path, column string, bl Blacklist) (RowCounts, error) {
	f, err := os.Open(path)
	if err != nil {
		return RowCounts{}, err
	}
	defer f.Close()
	c, err := CountRows(f, column, bl)
	if err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
