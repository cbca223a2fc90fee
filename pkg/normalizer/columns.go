package normalizer

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ColumnMapping renames one long tagged extract header to its short
// internal name.
type ColumnMapping struct {
	Source string `yaml:"source" json:"source"`
	Short  string `yaml:"short" json:"short"`
}

// Catalog is the fixed header-rename table. It can be overridden from a
// yaml file; headers absent from a given extract are simply ignored.
type Catalog struct {
	Mappings []ColumnMapping `yaml:"mappings" json:"mappings"`
}

// SubCountyColumn tags each household with its site. It is used for the
// site partition and never renamed.
const SubCountyColumn = "Sub-county in Uganda [EUPATH_0000054]"

// Join keys, shared across extracts.
const (
	participantKey = "Participant_Id"
	householdKey   = "Household_Id"
	measureKey     = "Participant_repeated_measure_Id"
)

func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultCatalog(), err
	}

	var cat Catalog
	if err := yaml.Unmarshal(content, &cat); err != nil {
		return Catalog{}, err
	}
	if len(cat.Mappings) == 0 {
		return Catalog{}, fmt.Errorf("column catalog empty")
	}
	return cat, nil
}

func DefaultCatalog() Catalog {
	return Catalog{Mappings: []ColumnMapping{
		{Source: "Observation date [EUPATH_0004991]", Short: "date"},
		{Source: "Participant_Id", Short: "id"},
		{Source: "Sex [PATO_0000047]", Short: "gender"},
		{Source: "Age at enrollment (years) [EUPATH_0000120]", Short: "age_at_enrollment"},
		{Source: "Enrollment date [EUPATH_0000151]", Short: "enrollment_date"},
		{Source: "Age (years) [OBI_0001169]", Short: "age"},
		{Source: "Temperature (C) [EUPATH_0000110]", Short: "temperature"},
		{Source: "Febrile [EUPATH_0000097]", Short: "fever"},
		{Source: "Plasmodium asexual stages, by microscopy result (/uL) [EUPATH_0000092]", Short: "parasitedensity"},
		{Source: "Plasmodium gametocytes, by microscopy [EUPATH_0000207]", Short: "gametocytes"},
		{Source: "Plasmodium, by LAMP [EUPATH_0000487]", Short: "LAMP"},
		{Source: "Observation type [BFO_0000015]", Short: "visittype"},
		{Source: "Hemoglobin (g/dL) [EUPATH_0000047]", Short: "hemoglobin"},
		{Source: "Malaria diagnosis [EUPATH_0000090]", Short: "malaria_diagnosis"},
		{Source: "Antimalarial medication [EUPATH_0000058]", Short: "antimalarial"},
	}}
}

// Mapping returns the rename table as a map for dataset.Table.Rename.
func (c Catalog) Mapping() map[string]string {
	out := make(map[string]string, len(c.Mappings))
	for _, m := range c.Mappings {
		out[m.Source] = m.Short
	}
	return out
}

// RelevantColumns is the fixed cleaned-CSV schema, in output order. The
// actual output is the intersection of this list with what the join
// produced.
func RelevantColumns() []string {
	return []string{
		"date", "id", householdKey, "age", "age_at_enrollment", "gender",
		"temperature", "fever", "parasitedensity", "gametocytes", "LAMP",
		"visittype", "hemoglobin", "malaria_diagnosis", "antimalarial",
	}
}
