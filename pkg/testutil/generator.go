// Package testutil provides deterministic category fixtures for tests and
// benchmarks. All generators produce the same output for the same seed.
package testutil

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/goccy/go-json"
)

// defaultWords are realistic segment names for random paths.
var defaultWords = []string{
	"Fucili", "Pistole", "Carabine", "Ottiche", "Red Dot", "Mirini",
	"Accessori", "Caricatori", "Batterie", "Elettrici", "Gas", "Molla",
	"Abbigliamento", "Guanti", "Maschere", "Caschi", "Borse", "Fondine",
	"Pallini", "Bombolette", "Ricambi", "Hop-Up", "Canne", "Motori",
}

// GeneratorConfig controls path generation.
type GeneratorConfig struct {
	Seed     int64    // Random seed for determinism (0 = 42)
	MaxDepth int      // Deepest random path (default: 3)
	Words    []string // Segment vocabulary for random paths (default: defaultWords)
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:     42,
		MaxDepth: 3,
		Words:    defaultWords,
	}
}

// Generator creates category path fixtures.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 3
	}
	if len(cfg.Words) == 0 {
		cfg.Words = defaultWords
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// NewDefault creates a Generator with DefaultConfig.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Full returns the leaf paths of a complete tree with the given depth and
// breadth. Segment names are "N<depth>-<index>", so Full(2, 2) yields
// N1-0|N2-0, N1-0|N2-1, N1-1|N2-0, N1-1|N2-1.
func (g *Generator) Full(depth, breadth int) []string {
	if depth <= 0 || breadth <= 0 {
		return nil
	}
	paths := []string{""}
	for d := 1; d <= depth; d++ {
		next := make([]string, 0, len(paths)*breadth)
		for _, p := range paths {
			for i := 0; i < breadth; i++ {
				seg := fmt.Sprintf("N%d-%d", d, i)
				if p == "" {
					next = append(next, seg)
				} else {
					next = append(next, p+"|"+seg)
				}
			}
		}
		paths = next
	}
	return paths
}

// FullNodeCount returns the number of nodes, root excluded, in the tree built
// from Full(depth, breadth).
func FullNodeCount(depth, breadth int) int {
	total, level := 0, 1
	for d := 0; d < depth; d++ {
		level *= breadth
		total += level
	}
	return total
}

// Random returns n paths of random depth drawn from the word list. The
// result contains duplicates and shared prefixes, like real exports.
func (g *Generator) Random(n int) []string {
	paths := make([]string, n)
	for i := range paths {
		depth := 1 + g.rng.Intn(g.cfg.MaxDepth)
		segs := make([]string, depth)
		for j := range segs {
			segs[j] = g.cfg.Words[g.rng.Intn(len(g.cfg.Words))]
		}
		paths[i] = strings.Join(segs, "|")
	}
	return paths
}

// Messy rewrites paths the way hand-edited files look: padding around
// segments and the occasional empty segment. Building a tree from the result
// gives the same shape as building it from paths.
func (g *Generator) Messy(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		segs := strings.Split(p, "|")
		var sb strings.Builder
		for j, s := range segs {
			if j > 0 {
				sb.WriteString("|")
			}
			switch g.rng.Intn(4) {
			case 0:
				sb.WriteString(" " + s + " ")
			case 1:
				sb.WriteString(s + " | ")
			default:
				sb.WriteString(s)
			}
		}
		out[i] = sb.String()
	}
	return out
}

// ToJSON encodes paths as the JSON array format the loader reads.
func ToJSON(paths []string) string {
	if paths == nil {
		paths = []string{}
	}
	data, err := json.Marshal(paths)
	if err != nil {
		panic(err)
	}
	return string(data)
}

// Quick helpers for common cases

// QuickFull returns Full(depth, breadth) from a default generator.
func QuickFull(depth, breadth int) []string {
	return NewDefault().Full(depth, breadth)
}

// QuickRandom returns Random(n) from a default generator.
func QuickRandom(n int) []string {
	return NewDefault().Random(n)
}
