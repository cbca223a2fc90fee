package viewer

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/edwenger/prism-data-viewer/pkg/common/models"
)

func TestMarkerSize(t *testing.T) {
	// 50*log10(100) = 100, above the floor, then /4.5.
	if got := MarkerSize(100); math.Abs(got-100.0/4.5) > 1e-9 {
		t.Fatalf("density 100: expected %.4f, got %.4f", 100.0/4.5, got)
	}
	// 50*log10(1) = 0, clamped to 10, then /4.5.
	if got := MarkerSize(1); math.Abs(got-10.0/4.5) > 1e-9 {
		t.Fatalf("density 1: expected %.4f, got %.4f", 10.0/4.5, got)
	}
}

func TestFormatDensity(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{950, "950"},
		{1500, "1.5K"},
		{2500000, "2.5M"},
	}
	for _, tc := range cases {
		if got := FormatDensity(tc.in); got != tc.want {
			t.Fatalf("%v: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func layerFixture() (*Household, map[string]int) {
	density := 15200.0
	zero := 0.0
	records := []models.CleanedRecord{
		{
			Date: time.Date(2011, 6, 1, 0, 0, 0, 0, time.UTC), ParticipantID: "P1", HouseholdID: "H",
			Fever: "Yes", ParasiteDensity: &density, Gametocytes: "Yes",
			Antimalarial: "Artmether-lumefantrine for 3 days",
		},
		{
			Date: time.Date(2011, 7, 1, 0, 0, 0, 0, time.UTC), ParticipantID: "P2", HouseholdID: "H",
			LAMP: "Positive",
		},
		{
			Date: time.Date(2011, 8, 1, 0, 0, 0, 0, time.UTC), ParticipantID: "P2", HouseholdID: "H",
			LAMP: "Negative",
		},
		{
			Date: time.Date(2011, 9, 1, 0, 0, 0, 0, time.UTC), ParticipantID: "P1", HouseholdID: "H",
			ParasiteDensity: &zero,
		},
	}
	h := GroupHouseholds(records)[0]
	_, index := h.RowOrder()
	return h, index
}

func TestBuildTracesLayerMembership(t *testing.T) {
	h, index := layerFixture()
	traces := BuildTraces(h, index, true, DefaultTreatmentRules())

	if len(traces) != TracesPerHousehold {
		t.Fatalf("expected %d traces, got %d", TracesPerHousehold, len(traces))
	}

	counts := []int{4, 1, 1, 1, 1, 1, 1} // all, fever, lamp-, lamp+, micro-, micro+, gametocytes
	for i, want := range counts {
		if len(traces[i].X) != want {
			t.Fatalf("layer %d: expected %d points, got %d", i+1, want, len(traces[i].X))
		}
	}

	hover := traces[5].HoverText[0]
	for _, want := range []string{"Density: 15.2K /µL", "Fever: Yes", "Gametocytes: Yes", "Treatment: AL treatment", "ID: P1"} {
		if !strings.Contains(hover, want) {
			t.Fatalf("hover text missing %q: %s", want, hover)
		}
	}
}

func TestBuildTracesPlaceholdersWithoutPositives(t *testing.T) {
	records := []models.CleanedRecord{
		{Date: time.Date(2011, 6, 1, 0, 0, 0, 0, time.UTC), ParticipantID: "P1", HouseholdID: "H"},
		{Date: time.Date(2011, 6, 2, 0, 0, 0, 0, time.UTC), ParticipantID: "P2", HouseholdID: "H"},
	}
	h := GroupHouseholds(records)[0]
	_, index := h.RowOrder()

	traces := BuildTraces(h, index, false, DefaultTreatmentRules())
	if len(traces) != TracesPerHousehold {
		t.Fatalf("expected fixed %d traces, got %d", TracesPerHousehold, len(traces))
	}
	for _, i := range []int{5, 6} {
		if len(traces[i].X) != 0 || len(traces[i].Y) != 0 {
			t.Fatalf("layer %d: expected empty placeholder", i+1)
		}
		if traces[i].ShowLegend == nil || *traces[i].ShowLegend {
			t.Fatalf("layer %d: placeholder must hide its legend entry", i+1)
		}
	}
}

func TestBuildTracesColorbarOnlyOnFirstHousehold(t *testing.T) {
	h, index := layerFixture()

	first := BuildTraces(h, index, true, DefaultTreatmentRules())
	if first[5].Marker.ColorBar == nil {
		t.Fatal("expected colorbar on first household")
	}
	if first[0].ShowLegend == nil || !*first[0].ShowLegend {
		t.Fatal("expected legend entries on first household")
	}

	later := BuildTraces(h, index, false, DefaultTreatmentRules())
	if later[5].Marker.ColorBar != nil {
		t.Fatal("expected no colorbar on later households")
	}
	if later[0].ShowLegend == nil || *later[0].ShowLegend {
		t.Fatal("expected legend entries suppressed on later households")
	}
}

func TestBuildTracesGametocyteRingTracksMarkerSize(t *testing.T) {
	h, index := layerFixture()
	traces := BuildTraces(h, index, true, DefaultTreatmentRules())

	sizes, ok := traces[5].Marker.Size.([]float64)
	if !ok || len(sizes) != 1 {
		t.Fatalf("expected per-point sizes on parasite layer, got %T", traces[5].Marker.Size)
	}
	rings, ok := traces[6].Marker.Size.([]float64)
	if !ok || len(rings) != 1 {
		t.Fatalf("expected per-point sizes on gametocyte layer, got %T", traces[6].Marker.Size)
	}
	if math.Abs(rings[0]-(sizes[0]+2)) > 1e-9 {
		t.Fatalf("expected ring = marker + 2, got %v vs %v", rings[0], sizes[0])
	}
}
