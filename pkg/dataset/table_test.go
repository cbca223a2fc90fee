package dataset

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestReadFileTabSeparated(t *testing.T) {
	path := writeFile(t, "raw.txt", "A\tB\tC\n1\tx\t\n2\ty\tz\n")

	table, err := ReadFile(path, '\t')
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Columns) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(table.Columns))
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	if got := table.Get(table.Rows[0], "B"); got != "x" {
		t.Fatalf("expected x, got %q", got)
	}
	if got := table.Get(table.Rows[0], "C"); got != "" {
		t.Fatalf("expected empty trailing field, got %q", got)
	}
	if got := table.Get(table.Rows[0], "missing"); got != "" {
		t.Fatalf("expected empty for absent column, got %q", got)
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "nope.txt"), '\t'); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestRenameAndSelect(t *testing.T) {
	path := writeFile(t, "raw.txt", "Long Name [TAG_001]\tOther\nv1\tv2\n")
	table, err := ReadFile(path, '\t')
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	table.Rename(map[string]string{"Long Name [TAG_001]": "short"})
	if !table.HasColumn("short") {
		t.Fatal("expected renamed column")
	}

	selected := table.Select([]string{"short", "absent"})
	if len(selected.Columns) != 1 || selected.Columns[0] != "short" {
		t.Fatalf("expected only existing columns kept, got %v", selected.Columns)
	}
	if got := selected.Get(selected.Rows[0], "short"); got != "v1" {
		t.Fatalf("expected v1, got %q", got)
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	table := New([]string{"a", "b"})
	table.Append([]string{"1", "x"})
	table.Append([]string{"2", ""})

	out := filepath.Join(dir, "sub", "out.csv")
	if err := table.WriteCSV(out); err != nil {
		t.Fatalf("write: %v", err)
	}

	back, err := ReadFile(out, ',')
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(back.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(back.Rows))
	}
	if got := back.Get(back.Rows[1], "b"); got != "" {
		t.Fatalf("expected empty field preserved, got %q", got)
	}
}
