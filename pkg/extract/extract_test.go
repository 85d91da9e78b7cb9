package extract_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/vanderheijden86/cattree/pkg/extract"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadColumn(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		column string
		want   []string
	}{
		{
			name:   "basic",
			input:  "SKU;Categories_IT\n1;Fucili|Elettrici\n2;Ottiche\n",
			column: "Categories_IT",
			want:   []string{"Fucili|Elettrici", "Ottiche"},
		},
		{
			name:   "bom and blank leading rows",
			input:  "\ufeff\n;;\nCategoria;Nome\nA|B;x\n",
			column: "Categoria",
			want:   []string{"A|B"},
		},
		{
			name:   "bom on header cell",
			input:  "\ufeffCategoria;Nome\nA|B;x\n",
			column: "Categoria",
			want:   []string{"A|B"},
		},
		{
			name:   "short rows and blanks skipped",
			input:  "SKU;Cat\n1\n2;  \n3; A \n",
			column: "Cat",
			want:   []string{"A"},
		},
		{
			name:   "duplicates keep first position",
			input:  "Cat\nB\nA\nB\n",
			column: "Cat",
			want:   []string{"B", "A"},
		},
		{
			name:   "quoted field with separator",
			input:  "Cat;SKU\n\"A;B|C\";1\n",
			column: "Cat",
			want:   []string{"A;B|C"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extract.ReadColumn(strings.NewReader(tt.input), tt.column)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadColumn_MissingColumnListsHeaders(t *testing.T) {
	_, err := extract.ReadColumn(strings.NewReader("SKU;Nome\n1;x\n"), "Categoria")
	if !errors.Is(err, extract.ErrColumnNotFound) {
		t.Fatalf("expected ErrColumnNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "SKU, Nome") {
		t.Errorf("error should list available headers: %v", err)
	}
}

func TestReadColumn_Empty(t *testing.T) {
	for _, input := range []string{"", "\n\n", ";;\n  ;\n"} {
		if _, err := extract.ReadColumn(strings.NewReader(input), "Cat"); !errors.Is(err, extract.ErrNoHeader) {
			t.Errorf("%q: expected ErrNoHeader, got %v", input, err)
		}
	}
}

func TestNormalize(t *testing.T) {
	opts := extract.DefaultOptions()
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"Fucili|Elettrici", "Fucili|Elettrici", true},
		{" Root | Fucili | Elettrici ", "Fucili|Elettrici", true},
		{"Home|A|B|C|D", "A|B|C", true},
		{"A||B", "A|B", true},
		{"Root|Home", "", false},
		{"  |  ", "", false},
		{"root|A", "root|A", true},
	}
	for _, tt := range tests {
		got, ok := extract.Normalize(tt.raw, opts)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Normalize(%q) = %q, %v; want %q, %v", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestNormalize_CustomOptions(t *testing.T) {
	opts := extract.Options{MaxLevels: 1, StripTokens: []string{"Shop"}}
	got, ok := extract.Normalize("Shop|Root|A|B", opts)
	if !ok || got != "Root" {
		t.Errorf("got %q, %v; want Root", got, ok)
	}
}

func TestExtract_MergesFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeCSV(t, dir, "a.csv", "SKU;Categories_IT\n1;Root|Ottiche|Red Dot\n2;Fucili|Elettrici|AK|Ricambi\n")
	b := writeCSV(t, dir, "b.csv", "Categories_IT\nOttiche|Red Dot\nAccessori\n")

	res, err := extract.Extract(context.Background(), []string{a, b}, extract.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Accessori", "Fucili|Elettrici|AK", "Ottiche|Red Dot"}
	if !reflect.DeepEqual(res.Paths, want) {
		t.Errorf("paths = %q, want %q", res.Paths, want)
	}
	if !reflect.DeepEqual(res.Anomalies, []string{"Fucili|Elettrici|AK|Ricambi"}) {
		t.Errorf("anomalies = %q", res.Anomalies)
	}
	if len(res.Files) != 2 || res.Files[0].Values != 2 || res.Files[1].Values != 2 {
		t.Errorf("unexpected file results %+v", res.Files)
	}
}

func TestExtract_PartialFailure(t *testing.T) {
	dir := t.TempDir()
	good := writeCSV(t, dir, "good.csv", "Categories_IT\nA|B\n")
	bad := writeCSV(t, dir, "bad.csv", "Other\nx\n")

	res, err := extract.Extract(context.Background(), []string{good, bad, filepath.Join(dir, "missing.csv")}, extract.DefaultOptions())
	if err != nil {
		t.Fatalf("one readable file should be enough: %v", err)
	}
	if !reflect.DeepEqual(res.Paths, []string{"A|B"}) {
		t.Errorf("paths = %q", res.Paths)
	}
	if !errors.Is(res.Files[1].Err, extract.ErrColumnNotFound) {
		t.Errorf("bad.csv error = %v", res.Files[1].Err)
	}
	if res.Files[2].Err == nil {
		t.Error("missing file should record an error")
	}
}

func TestExtract_AllFail(t *testing.T) {
	dir := t.TempDir()
	bad := writeCSV(t, dir, "bad.csv", "Other\nx\n")
	if _, err := extract.Extract(context.Background(), []string{bad}, extract.DefaultOptions()); err == nil {
		t.Error("expected error when nothing is readable")
	}
	if _, err := extract.Extract(context.Background(), nil, extract.DefaultOptions()); err == nil {
		t.Error("expected error for no inputs")
	}
}

func TestExtract_Cancelled(t *testing.T) {
	dir := t.TempDir()
	a := writeCSV(t, dir, "a.csv", "Categories_IT\nA\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := extract.Extract(ctx, []string{a}, extract.DefaultOptions()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := extract.WriteJSON(&buf, []string{"Ottiche & Mirini", "Fucili|AK"}); err != nil {
		t.Fatal(err)
	}
	want := "[\n  \"Ottiche & Mirini\",\n  \"Fucili|AK\"\n]\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}

	buf.Reset()
	if err := extract.WriteJSON(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("nil paths should encode as [], got %q", buf.String())
	}
}

func TestWriteJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	if err := extract.WriteJSONFile(path, []string{"A"}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\"A\"") {
		t.Errorf("unexpected file content %q", data)
	}
}
