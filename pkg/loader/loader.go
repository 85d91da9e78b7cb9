// Package loader reads category path lists and turns them into trees.
//
// The source format is a JSON array of strings, each a "|"-delimited path:
//
//	["Fucili|Elettrici|AK", "Ottiche | Red Dot"]
//
// A top-level value that is not an array yields an empty tree. Elements that
// are not strings are skipped. Anything that cannot be read or decoded is a
// load failure and is returned as a single error.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/cattree/pkg/config"
	"github.com/vanderheijden86/cattree/pkg/debug"
	"github.com/vanderheijden86/cattree/pkg/metrics"
	"github.com/vanderheijden86/cattree/pkg/tree"
)

// SourceEnvVar overrides the categories file location.
const SourceEnvVar = "CATTREE_SOURCE"

// DefaultSourceName is the file looked up in the working directory when no
// source is configured.
const DefaultSourceName = "categorie_uniche.json"

// ErrNotFound is returned when the source file does not exist.
var ErrNotFound = errors.New("categories file not found")

// ErrTrailingData is returned when the JSON document is followed by more input.
var ErrTrailingData = errors.New("decoding categories JSON: trailing data after top-level value")

// Stats describes one load.
type Stats struct {
	Path     string // Source path, empty for readers
	Entries  int    // Array elements seen
	Skipped  int    // Elements that were not strings
	NotArray bool   // Top-level value was not an array
	Nodes    int    // Nodes in the built tree, root excluded
}

// ResolveSource picks the source file: an explicit path wins, then
// CATTREE_SOURCE, then the configured path, then DefaultSourceName in dir (or
// the working directory when dir is empty).
func ResolveSource(explicit, configured, dir string) (string, error) {
	for _, p := range []string{explicit, os.Getenv(SourceEnvVar), configured} {
		if p = strings.TrimSpace(p); p != "" {
			return config.ExpandHome(p), nil
		}
	}
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current working directory: %w", err)
		}
	}
	return filepath.Join(dir, DefaultSourceName), nil
}

// ParsePaths decodes a JSON document into path strings. Non-string elements
// are dropped and counted in the returned Stats.
func ParsePaths(r io.Reader) ([]string, Stats, error) {
	defer metrics.Timer(metrics.JSONParsing)()

	var stats Stats
	var doc any
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, stats, fmt.Errorf("decoding categories JSON: %w", err)
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, stats, ErrTrailingData
	}

	values, ok := doc.([]any)
	if !ok {
		stats.NotArray = true
		return nil, stats, nil
	}

	stats.Entries = len(values)
	paths := make([]string, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			stats.Skipped++
			continue
		}
		paths = append(paths, s)
	}
	return paths, stats, nil
}

// Load parses r and builds a tree.
func Load(r io.Reader) (*tree.Tree, Stats, error) {
	paths, stats, err := ParsePaths(r)
	if err != nil {
		return nil, stats, err
	}
	t := tree.Build(paths)
	stats.Nodes = t.Len() - 1
	return t, stats, nil
}

// LoadFile reads and builds the tree stored at path.
func LoadFile(path string) (*tree.Tree, Stats, error) {
	defer debug.LogEnterExit("loader.LoadFile")()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, Stats{Path: path}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, Stats{Path: path}, fmt.Errorf("failed to open categories file: %w", err)
	}
	defer f.Close()

	t, stats, err := Load(f)
	stats.Path = path
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", path, err)
	}
	debug.Log("loaded %s: %d entries, %d skipped, %d nodes", path, stats.Entries, stats.Skipped, stats.Nodes)
	return t, stats, nil
}
