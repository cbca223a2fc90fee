package viewer

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAbbreviateKnownTreatments(t *testing.T) {
	rules := DefaultTreatmentRules()

	cases := []struct {
		in   string
		want string
	}{
		{"Artmether-lumefantrine for 3 days", "AL treatment"},
		{"Quinine for complicated malaria", "Quinine (complicated)"},
		{"Quinine repeated for 14 days", "Quinine (repeat)"},
		{"Quinine during pregnancy", "Quinine (pregnancy)"},
		{"Artesunate for complicated malaria", "Artesunate (complicated)"},
	}
	for _, tc := range cases {
		got, ok := rules.Abbreviate(tc.in)
		if !ok {
			t.Fatalf("%q: expected treatment to be shown", tc.in)
		}
		if got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestAbbreviateRuleOrderForOverlappingInputs(t *testing.T) {
	rules := DefaultTreatmentRules()

	// Matches both the "complicated" and "14 days" qualified rules; the
	// earlier one must win.
	got, ok := rules.Abbreviate("Quinine for complicated malaria, repeated after 14 days")
	if !ok || got != "Quinine (complicated)" {
		t.Fatalf("expected Quinine (complicated), got %q (ok=%v)", got, ok)
	}
}

func TestAbbreviatePassthroughAndSuppression(t *testing.T) {
	rules := DefaultTreatmentRules()

	if got, ok := rules.Abbreviate("Chloroquine single dose"); !ok || got != "Chloroquine single dose" {
		t.Fatalf("expected passthrough, got %q (ok=%v)", got, ok)
	}
	if _, ok := rules.Abbreviate(""); ok {
		t.Fatal("expected empty treatment suppressed")
	}
	if _, ok := rules.Abbreviate(NoTreatment); ok {
		t.Fatal("expected placeholder treatment suppressed")
	}
}

func TestLoadTreatmentRulesFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := "rules:\n" +
		"  - contains: [\"Primaquine\"]\n" +
		"    short: PQ\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	rules, err := LoadTreatmentRules(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, ok := rules.Abbreviate("Primaquine low dose"); !ok || got != "PQ" {
		t.Fatalf("expected PQ, got %q (ok=%v)", got, ok)
	}
}

func TestLoadTreatmentRulesDefault(t *testing.T) {
	rules, err := LoadTreatmentRules("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules.Rules) != 5 {
		t.Fatalf("expected 5 default rules, got %d", len(rules.Rules))
	}
}
