package ui

import (
	"testing"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/cattree/pkg/tree"
)

func TestDefaultTheme(t *testing.T) {
	renderer := lipgloss.NewRenderer(nil)
	theme := DefaultTheme(renderer)

	if theme.Renderer != renderer {
		t.Error("DefaultTheme renderer mismatch")
	}
	if isColorEmpty(theme.Primary) {
		t.Error("DefaultTheme Primary color is empty")
	}
	if isColorEmpty(theme.Checked) || isColorEmpty(theme.Partial) {
		t.Error("DefaultTheme check state colors are empty")
	}
}

func isColorEmpty(c lipgloss.AdaptiveColor) bool {
	return c.Light == "" && c.Dark == ""
}

func TestColorProfile_Detection(t *testing.T) {
	valid := map[colorprofile.Profile]bool{
		colorprofile.Unknown:   true,
		colorprofile.NoTTY:     true,
		colorprofile.ASCII:     true,
		colorprofile.ANSI:      true,
		colorprofile.ANSI256:   true,
		colorprofile.TrueColor: true,
	}
	if !valid[TermProfile] {
		t.Errorf("TermProfile has unexpected value: %d", TermProfile)
	}
}

func TestThemeBg(t *testing.T) {
	saved := TermProfile
	defer func() { TermProfile = saved }()

	TermProfile = colorprofile.TrueColor
	if _, ok := ThemeBg("#282A36").(lipgloss.NoColor); ok {
		t.Error("ThemeBg should return hex color in TrueColor mode, got NoColor")
	}

	TermProfile = colorprofile.ANSI256
	if _, ok := ThemeBg("#282A36").(lipgloss.NoColor); !ok {
		t.Error("ThemeBg should return NoColor below TrueColor")
	}
}

func TestThemeFg(t *testing.T) {
	saved := TermProfile
	defer func() { TermProfile = saved }()

	TermProfile = colorprofile.ANSI256
	if _, ok := ThemeFg("#FF6B6B").(lipgloss.ANSIColor); ok {
		t.Error("ThemeFg should return hex color in ANSI256 mode, got ANSIColor")
	}

	TermProfile = colorprofile.ANSI
	if _, ok := ThemeFg("#FF6B6B").(lipgloss.ANSIColor); !ok {
		t.Error("ThemeFg should fall back to an ANSI color in 16-color mode")
	}
}

func TestCheckboxGlyph(t *testing.T) {
	tests := []struct {
		state tree.CheckState
		want  string
	}{
		{tree.Unchecked, "[ ]"},
		{tree.Checked, "[x]"},
		{tree.Indeterminate, "[-]"},
	}
	theme := DefaultTheme(lipgloss.NewRenderer(nil))
	for _, tt := range tests {
		if got := CheckboxGlyph(tt.state); got != tt.want {
			t.Errorf("CheckboxGlyph(%v) = %q, want %q", tt.state, got, tt.want)
		}
		if got := stripANSI(RenderCheckbox(tt.state, theme)); got != tt.want {
			t.Errorf("RenderCheckbox(%v) = %q, want %q", tt.state, got, tt.want)
		}
	}
}
