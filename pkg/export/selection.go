// Package export writes the current selection and tree snapshots out of the
// viewer: plain text, JSON, a Markdown outline, the system clipboard, or a
// standalone SQLite database.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/goccy/go-json"

	"github.com/vanderheijden86/cattree/pkg/tree"
)

// ErrEmptySelection is returned by Clipboard when nothing is selected.
var ErrEmptySelection = errors.New("nothing selected")

// Format names a selection output format.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts a format name, case-insensitively. "md" is an alias
// for markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown format %q (want text, json or markdown)", s)
}

// clipboardWrite is swapped in tests.
var clipboardWrite = clipboard.WriteAll

// Text writes one leaf path per line.
func Text(w io.Writer, leaves []string) error {
	if len(leaves) == 0 {
		return nil
	}
	_, err := io.WriteString(w, strings.Join(leaves, "\n")+"\n")
	return err
}

// JSON writes leaves as an indented JSON array. An empty selection is "[]".
func JSON(w io.Writer, leaves []string) error {
	if leaves == nil {
		leaves = []string{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(leaves)
}

// Markdown writes the checked part of t as a nested task list. Fully checked
// nodes are "[x]", partially checked ones "[-]"; unchecked branches are left
// out.
func Markdown(w io.Writer, t *tree.Tree) error {
	var sb strings.Builder
	t.Walk(func(n tree.Node) bool {
		var box string
		switch n.State() {
		case tree.Checked:
			box = "[x]"
		case tree.Indeterminate:
			box = "[-]"
		default:
			return false
		}
		sb.WriteString(strings.Repeat("  ", n.Depth))
		sb.WriteString("- ")
		sb.WriteString(box)
		sb.WriteString(" ")
		sb.WriteString(n.Name)
		sb.WriteString("\n")
		return true
	})
	_, err := io.WriteString(w, sb.String())
	return err
}

// Write dispatches on format. Markdown needs the tree; the other formats only
// use the selected leaves.
func Write(w io.Writer, format Format, t *tree.Tree) error {
	switch format {
	case FormatJSON:
		return JSON(w, t.SelectedLeaves())
	case FormatMarkdown:
		return Markdown(w, t)
	default:
		return Text(w, t.SelectedLeaves())
	}
}

// Clipboard copies the newline-joined leaves to the system clipboard.
func Clipboard(leaves []string) error {
	if len(leaves) == 0 {
		return ErrEmptySelection
	}
	if err := clipboardWrite(strings.Join(leaves, "\n")); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	return nil
}
