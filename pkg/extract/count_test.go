package extract_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/vanderheijden86/cattree/pkg/extract"
)

func TestFoldCategory(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Coltelli   CACCIA ", "coltelli caccia"},
		{"ANFIBI/SCARPE", "anfibi/scarpe"},
		{"Straße", "strasse"},
		{"\tUSATO\n", "usato"},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := extract.FoldCategory(tt.in); got != tt.want {
			t.Errorf("FoldCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBlacklist(t *testing.T) {
	bl := extract.NewBlacklist([]string{"Katane", " Pistole  a salve ", "", "  "})
	if len(bl) != 2 {
		t.Errorf("blank entries should be dropped, got %d entries", len(bl))
	}
	for _, v := range []string{"KATANE", "pistole a salve", "Pistole\ta  Salve"} {
		if !bl.Contains(v) {
			t.Errorf("%q should be blacklisted", v)
		}
	}
	if bl.Contains("Pistole") {
		t.Error("partial names must not match")
	}
}

func TestReadList(t *testing.T) {
	got, err := extract.ReadList(strings.NewReader("\ufeffFucili|AK\n\n  Ottiche  \r\n\t\nAccessori"))
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"Fucili|AK", "Ottiche", "Accessori"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ReadList = %q, want %q", got, want)
	}
}

func TestCountRows(t *testing.T) {
	input := "\ufeff\n" +
		"Codice;Categoria;Prezzo\n" +
		"1;Katane;10\n" +
		"2;  katane ;10\n" +
		"3;Fucili;20\n" +
		"4;Fucili;20\n" +
		"5; ;1\n" +
		"6\n" +
		";;\n" +
		"7;COLTELLI   tascabili;5\n"
	bl := extract.NewBlacklist([]string{"Katane", "Coltelli tascabili"})

	got, err := extract.CountRows(strings.NewReader(input), extract.DefaultCountColumn, bl)
	if err != nil {
		t.Fatal(err)
	}
	want := extract.RowCounts{Total: 7, Blacklisted: 3, Missing: 2}
	if got != want {
		t.Errorf("CountRows = %+v, want %+v", got, want)
	}
	if got.Kept() != 4 {
		t.Errorf("Kept = %d, want 4", got.Kept())
	}
	if p := got.BlacklistedPercent(); p < 42.8 || p > 42.9 {
		t.Errorf("BlacklistedPercent = %.2f", p)
	}
}

func TestCountRows_Errors(t *testing.T) {
	_, err := extract.CountRows(strings.NewReader("SKU;Categories_IT\n1;A\n"), "Categoria", nil)
	if !errors.Is(err, extract.ErrColumnNotFound) {
		t.Errorf("err = %v, want ErrColumnNotFound", err)
	}
	_, err = extract.CountRows(strings.NewReader("\n\n"), "Categoria", nil)
	if !errors.Is(err, extract.ErrNoHeader) {
		t.Errorf("err = %v, want ErrNoHeader", err)
	}

	empty, err := extract.CountRows(strings.NewReader("Categoria\n"), "Categoria", nil)
	if err != nil || empty != (extract.RowCounts{}) || empty.KeptPercent() != 0 {
		t.Errorf("header only: %+v, %v", empty, err)
	}
}
