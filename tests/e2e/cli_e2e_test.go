package main_test

import (
	"database/sql"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"
)

var e2ePaths = []string{
	"Fucili|Elettrici|AK",
	"Fucili|Elettrici|M4",
	"Fucili|Gas|Glock",
	" Ottiche | Red Dot ",
	"Ottiche|Mirini",
	"Accessori",
}

func TestVersionFlag(t *testing.T) {
	res := newWorkspace(t).mustRun("--version")
	if !strings.HasPrefix(res.stdout, "cattree ") {
		t.Errorf("unexpected version output %q", res.stdout)
	}
}

func TestPrintOutlineFromWorkingDir(t *testing.T) {
	w := newWorkspace(t, e2ePaths...)

	got := w.mustRun("--print").stdout
	want := strings.Join([]string{
		"[ ] Fucili",
		"  [ ] Elettrici",
		"    [ ] AK",
		"    [ ] M4",
		"  [ ] Gas",
		"    [ ] Glock",
		"[ ] Ottiche",
		"  [ ] Red Dot",
		"  [ ] Mirini",
		"[ ] Accessori",
	}, "\n") + "\n"
	if got != want {
		t.Errorf("outline mismatch:\n got:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrintFilteredOutline(t *testing.T) {
	w := newWorkspace(t, e2ePaths...)

	got := w.mustRun("--source", w.source(), "--print", "--filter", "red").stdout
	if want := "[ ] Ottiche\n  [ ] Red Dot\n"; got != want {
		t.Errorf("filtered outline = %q, want %q", got, want)
	}
}

func TestPrintSelectionJSON(t *testing.T) {
	w := newWorkspace(t, e2ePaths...)

	res := w.mustRun("--print", "--select", "Fucili|Elettrici", "--select", "Accessori", "--format", "json")

	var got []string
	if err := json.Unmarshal([]byte(res.stdout), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, res.stdout)
	}
	want := []string{"Fucili|Elettrici|AK", "Fucili|Elettrici|M4", "Accessori"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("selection = %q, want %q", got, want)
	}
}

func TestSourceEnvVar(t *testing.T) {
	elsewhere := newWorkspace(t, "Only|Env")
	w := newWorkspace(t)
	w.setenv("CATTREE_SOURCE=" + elsewhere.source())

	res := w.mustRun("--print", "--select", "Only", "--format", "text")
	if res.stdout != "Only|Env\n" {
		t.Errorf("output = %q", res.stdout)
	}
}

func TestSourceFromConfigFile(t *testing.T) {
	elsewhere := newWorkspace(t, "Da|Config")
	w := newWorkspace(t)
	cfg := w.writeFile("cattree.yaml", "source: "+elsewhere.source()+"\n")

	res := w.mustRun("--config", cfg, "--print")
	if res.stdout != "[ ] Da\n  [ ] Config\n" {
		t.Errorf("output = %q", res.stdout)
	}
}

func TestUnknownSelectionWarns(t *testing.T) {
	w := newWorkspace(t, e2ePaths...)

	res := w.mustRun("--print", "--select", "Nope|Missing")
	if !strings.Contains(res.stderr, `warning: no category "Nope|Missing"`) {
		t.Errorf("expected a warning, got:\n%s", res.stderr)
	}
}

func TestNonStringEntriesWarn(t *testing.T) {
	w := newWorkspace(t)
	w.writeFile("categorie_uniche.json", `["Fucili|AK", 42, null, "Ottiche"]`)

	res := w.mustRun("--print")
	if !strings.Contains(res.stderr, "skipped 2 non-text entries") {
		t.Errorf("expected a skipped-entries warning, got:\n%s", res.stderr)
	}
	if res.stdout != "[ ] Fucili\n  [ ] AK\n[ ] Ottiche\n" {
		t.Errorf("outline = %q", res.stdout)
	}
}

func TestMissingSourceFails(t *testing.T) {
	res := newWorkspace(t).run("--print")
	if res.code == 0 {
		t.Fatalf("expected failure, got:\n%s", res.stdout)
	}
	if !strings.Contains(res.stderr, "categories file not found") {
		t.Errorf("unexpected error output:\n%s", res.stderr)
	}
}

func TestTrailingGarbageFails(t *testing.T) {
	w := newWorkspace(t)
	w.writeFile("categorie_uniche.json", `["Fucili|AK"] junk`)

	res := w.run("--print")
	if res.code != 1 || !strings.Contains(res.stderr, "trailing data") {
		t.Errorf("exit %d, stderr:\n%s", res.code, res.stderr)
	}
}

func TestBadFormatExitCode(t *testing.T) {
	w := newWorkspace(t, e2ePaths...)

	if res := w.run("--print", "--select", "Accessori", "--format", "xml"); res.code != 2 {
		t.Errorf("exit code %d, want 2\n%s", res.code, res.stderr)
	}
}

func TestExtractThenPrint(t *testing.T) {
	w := newWorkspace(t)
	csvPath := w.writeFile("export.csv", "sku;Categories_IT\n1;Fucili|Elettrici\n2;Ottiche|Red Dot\n3;Fucili|Elettrici\n")
	outPath := filepath.Join(w.dir, "cats.json")

	res := w.mustRun("--extract", csvPath, "--out", outPath)
	if !strings.Contains(res.stdout+res.stderr, "Wrote 2 categories to "+outPath) {
		t.Errorf("unexpected extract output:\n%s%s", res.stdout, res.stderr)
	}

	printed := w.mustRun("--source", outPath, "--print").stdout
	if !strings.Contains(printed, "  [ ] Red Dot\n") {
		t.Errorf("extracted file should load:\n%s", printed)
	}
}

func TestExportSQLite(t *testing.T) {
	w := newWorkspace(t, e2ePaths...)
	dbPath := filepath.Join(w.dir, "cats.db")

	w.mustRun("--select", "Ottiche", "--export-sqlite", dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var nodes int
	if err := db.QueryRow(`SELECT COUNT(*) FROM nodes`).Scan(&nodes); err != nil {
		t.Fatal(err)
	}
	if nodes != 10 {
		t.Errorf("nodes = %d, want 10", nodes)
	}

	rows, err := db.Query(`SELECT full_path FROM selected`)
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()
	var selected []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			t.Fatal(err)
		}
		selected = append(selected, p)
	}
	if want := []string{"Ottiche|Red Dot", "Ottiche|Mirini"}; !reflect.DeepEqual(selected, want) {
		t.Errorf("selected = %q, want %q", selected, want)
	}
}

func TestExportHookSeesSelection(t *testing.T) {
	w := newWorkspace(t, e2ePaths...)
	w.writeFile(".cattree/hooks.yaml", `hooks:
  post-export:
    - name: record
      command: echo "$CATTREE_EXPORT_FORMAT $CATTREE_SELECTED_COUNT" > hook.out
`)
	dbPath := filepath.Join(w.dir, "cats.db")

	w.mustRun("--select", "Fucili", "--export-sqlite", dbPath)
	got := readFile(t, filepath.Join(w.dir, "hook.out"))
	if got != "sqlite 3\n" {
		t.Errorf("hook saw %q, want %q", got, "sqlite 3\n")
	}

	w.mustRun("--no-hooks", "--select", "Ottiche", "--export-sqlite", dbPath)
	if got := readFile(t, filepath.Join(w.dir, "hook.out")); got != "sqlite 3\n" {
		t.Errorf("--no-hooks still ran the hook: %q", got)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestBlacklistCoverReport(t *testing.T) {
	w := newWorkspace(t, e2ePaths...)
	bl := w.writeFile("blacklist.txt", "Fucili|Elettrici|AK\nFucili|Elettrici|M4\n\nGranate\n")

	res := w.mustRun("--blacklist", bl, "--format", "json")
	var got struct {
		Keywords []string `json:"keywords"`
		Unknown  []string `json:"unknown"`
	}
	if err := json.Unmarshal([]byte(res.stdout), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, res.stdout)
	}
	if !reflect.DeepEqual(got.Keywords, []string{"Fucili|Elettrici"}) || !reflect.DeepEqual(got.Unknown, []string{"Granate"}) {
		t.Errorf("report = %+v", got)
	}
}

func TestCountRowsAgainstBlacklist(t *testing.T) {
	w := newWorkspace(t)
	bl := w.writeFile("blacklist.txt", "Katane\nPistole a salve\n")
	csvPath := w.writeFile("prodotti.csv", "Codice;Categoria\n1;KATANE\n2;Fucili\n3;pistole  a  salve\n4;Ottiche\n")

	res := w.mustRun("--count-rows", csvPath, "--blacklist", bl)
	if !strings.Contains(res.stdout, "Blacklisted: 2 (50.0%)") || !strings.Contains(res.stdout, "Kept: 2 (50.0%)") {
		t.Errorf("unexpected counts:\n%s", res.stdout)
	}
}
