package viewer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// NoTreatment is the extract's placeholder for an untreated visit; it is
// suppressed from hover text along with the empty string.
const NoTreatment = "No malaria medications given"

// TreatmentRule abbreviates free-text antimalarial entries that contain
// every listed substring.
type TreatmentRule struct {
	Contains []string `yaml:"contains" json:"contains"`
	Short    string   `yaml:"short" json:"short"`
}

// TreatmentRules is an ordered match list: the first rule whose
// substrings all appear wins, so overlapping rules must keep their
// position (the qualified Quinine rules sit before any plain Quinine
// match would).
type TreatmentRules struct {
	Rules []TreatmentRule `yaml:"rules" json:"rules"`
}

func LoadTreatmentRules(path string) (TreatmentRules, error) {
	if path == "" {
		return DefaultTreatmentRules(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultTreatmentRules(), err
	}

	var rules TreatmentRules
	if err := yaml.Unmarshal(content, &rules); err != nil {
		return TreatmentRules{}, err
	}
	if len(rules.Rules) == 0 {
		return TreatmentRules{}, fmt.Errorf("no treatment rules configured")
	}
	return rules, nil
}

func DefaultTreatmentRules() TreatmentRules {
	return TreatmentRules{Rules: []TreatmentRule{
		{Contains: []string{"Artmether-lumefantrine"}, Short: "AL treatment"},
		{Contains: []string{"Quinine", "complicated"}, Short: "Quinine (complicated)"},
		{Contains: []string{"Quinine", "14 days"}, Short: "Quinine (repeat)"},
		{Contains: []string{"Quinine", "pregnancy"}, Short: "Quinine (pregnancy)"},
		{Contains: []string{"Artesunate"}, Short: "Artesunate (complicated)"},
	}}
}

// Abbreviate shortens a treatment entry for display. ok is false when the
// entry means "no treatment" and should be suppressed; unmatched non-empty
// text passes through unabbreviated.
func (r TreatmentRules) Abbreviate(text string) (short string, ok bool) {
	if text == "" || text == NoTreatment {
		return "", false
	}
	for _, rule := range r.Rules {
		if containsAll(text, rule.Contains) {
			return rule.Short, true
		}
	}
	return text, true
}

func containsAll(text string, subs []string) bool {
	for _, s := range subs {
		if !strings.Contains(text, s) {
			return false
		}
	}
	return len(subs) > 0
}
