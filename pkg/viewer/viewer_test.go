package viewer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/edwenger/prism-data-viewer/pkg/common/logger"
	"github.com/edwenger/prism-data-viewer/pkg/common/models"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

const cleanedHeader = "date,id,Household_Id,age,age_at_enrollment,gender,temperature,fever,parasitedensity,gametocytes,LAMP,visittype,hemoglobin,malaria_diagnosis,antimalarial\n"

// One household, two members, three microscopy-positive observations.
const cleanedCSV = cleanedHeader +
	"2011-06-01,P1,H1,5.4,5,Female,38.5,Yes,15200,Yes,,Scheduled visit,11.2,Yes,Artmether-lumefantrine for 3 days\n" +
	"2011-07-01,P1,H1,5.5,5,Female,36.5,No,450,No,,Scheduled visit,11.5,No,\n" +
	"2011-08-01,P2,H1,34.6,34,Male,37.9,Yes,980,No,,Scheduled visit,13.0,Yes,\n" +
	"2011-09-01,P2,H1,34.7,34,Male,36.4,No,0,No,,Scheduled visit,13.1,No,\n"

func buildPage(t *testing.T, csv string) string {
	t.Helper()
	dir := t.TempDir()
	in := filepath.Join(dir, "prism_cleaned_nagongera.csv")
	if err := os.WriteFile(in, []byte(csv), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	out := filepath.Join(dir, "nagongera.html")
	b := NewBuilder(DefaultTreatmentRules())
	if err := b.Build(models.Sites()[0], in, out); err != nil {
		t.Fatalf("build: %v", err)
	}

	page, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	return string(page)
}

func TestBuildEndToEnd(t *testing.T) {
	page := buildPage(t, cleanedCSV)

	if got := strings.Count(page, "HH H1 (2m, 3i)"); got != 1 {
		t.Fatalf("expected exactly one dropdown entry for H1, got %d", got)
	}
	if !strings.Contains(page, "Household H1 - 2 members, 3 microscopy-positive observations") {
		t.Fatal("expected household title in button args")
	}
	if !strings.Contains(page, "PRISM Household Viewer - NAGONGERA (1 households)") {
		t.Fatal("expected page title with household count")
	}
	if got := strings.Count(page, `"legendgroup":"parasite"`); got != 1 {
		t.Fatalf("expected one parasite layer, got %d", got)
	}
	if !strings.Contains(page, "var totalHouseholds = 1;") {
		t.Fatal("expected navigation script wired to one household")
	}
	// Global x-range: 2011-06-01 minus 4 months to 2011-09-01 plus 4 months.
	if !strings.Contains(page, "2011-02-01") || !strings.Contains(page, "2012-01-01") {
		t.Fatal("expected padded global date range")
	}
}

func TestBuildEmptySiteStillEmitsValidPage(t *testing.T) {
	page := buildPage(t, cleanedHeader)

	if !strings.Contains(page, "PRISM Household Viewer - NAGONGERA (0 households)") {
		t.Fatal("expected empty-viewer title")
	}
	if !strings.Contains(page, "var totalHouseholds = 0;") {
		t.Fatal("expected navigation script with zero households")
	}
	if strings.Contains(page, `"updatemenus":`) {
		t.Fatal("expected no dropdown for empty site")
	}
	if !strings.Contains(page, "Plotly.newPlot(") {
		t.Fatal("expected a renderable plot call")
	}
}

func TestBuildMissingInputIsFatal(t *testing.T) {
	b := NewBuilder(DefaultTreatmentRules())
	err := b.Build(models.Sites()[0], filepath.Join(t.TempDir(), "missing.csv"), filepath.Join(t.TempDir(), "out.html"))
	if err == nil {
		t.Fatal("expected error for missing cleaned CSV")
	}
}

func TestFigureVisibilityAndButtons(t *testing.T) {
	density := 100.0
	records := []models.CleanedRecord{
		rec("A", "A1", 1, &density),
		rec("A", "A2", 2, nil),
		rec("B", "B1", 1, &density),
		rec("B", "B1", 2, &density),
		rec("B", "B2", 3, nil),
	}

	b := NewBuilder(DefaultTreatmentRules())
	fig, total := b.Figure(models.Sites()[0], records)

	if total != 2 {
		t.Fatalf("expected 2 qualifying households, got %d", total)
	}
	if len(fig.Data) != 2*TracesPerHousehold {
		t.Fatalf("expected %d traces, got %d", 2*TracesPerHousehold, len(fig.Data))
	}

	// B has more infections, so its traces come first and start visible.
	menu := fig.Layout.UpdateMenus[0]
	if len(menu.Buttons) != 2 {
		t.Fatalf("expected 2 buttons, got %d", len(menu.Buttons))
	}
	if menu.Buttons[0].Label != "HH B (2m, 2i)" {
		t.Fatalf("unexpected first button label %q", menu.Buttons[0].Label)
	}
	for i, trace := range fig.Data {
		wantVisible := i < TracesPerHousehold
		if trace.Visible == nil || *trace.Visible != wantVisible {
			t.Fatalf("trace %d: expected visible=%v", i, wantVisible)
		}
	}

	visible, ok := menu.Buttons[1].Args[0].(map[string]interface{})["visible"].([]bool)
	if !ok || len(visible) != 2*TracesPerHousehold {
		t.Fatalf("expected full-length visibility array, got %v", menu.Buttons[1].Args[0])
	}
	for i, v := range visible {
		if v != (i >= TracesPerHousehold) {
			t.Fatalf("second button visibility wrong at %d", i)
		}
	}
}
