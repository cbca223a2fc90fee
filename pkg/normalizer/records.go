package normalizer

import (
	"fmt"
	"strconv"
	"time"

	"github.com/edwenger/prism-data-viewer/pkg/common/models"
	"github.com/edwenger/prism-data-viewer/pkg/dataset"
)

// Records converts a cleaned table into typed records. Empty numeric
// fields become nil; a bad date or density is an error, not a skipped row.
func Records(t *dataset.Table) ([]models.CleanedRecord, error) {
	records := make([]models.CleanedRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		date, err := time.Parse(dateLayout, t.Get(row, "date"))
		if err != nil {
			return nil, fmt.Errorf("row %d: parse date %q: %w", i+1, t.Get(row, "date"), err)
		}

		var density *float64
		if raw := t.Get(row, "parasitedensity"); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: parse parasite density %q: %w", i+1, raw, err)
			}
			if v < 0 {
				return nil, fmt.Errorf("row %d: negative parasite density %v", i+1, v)
			}
			density = &v
		}

		records = append(records, models.CleanedRecord{
			Date:             date,
			ParticipantID:    t.Get(row, "id"),
			HouseholdID:      t.Get(row, householdKey),
			Age:              parseFloat(t.Get(row, "age")),
			AgeAtEnrollment:  parseFloat(t.Get(row, "age_at_enrollment")),
			Gender:           t.Get(row, "gender"),
			Temperature:      parseFloat(t.Get(row, "temperature")),
			Fever:            t.Get(row, "fever"),
			ParasiteDensity:  density,
			Gametocytes:      t.Get(row, "gametocytes"),
			LAMP:             t.Get(row, "LAMP"),
			VisitType:        t.Get(row, "visittype"),
			Hemoglobin:       parseFloat(t.Get(row, "hemoglobin")),
			MalariaDiagnosis: t.Get(row, "malaria_diagnosis"),
			Antimalarial:     t.Get(row, "antimalarial"),
		})
	}
	return records, nil
}

// LoadCleaned reads a cleaned per-site CSV back into typed records.
func LoadCleaned(path string) ([]models.CleanedRecord, error) {
	table, err := dataset.ReadFile(path, ',')
	if err != nil {
		return nil, err
	}
	return Records(table)
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// Records converts one site's cleaned output to typed records.
func (c *Cleaned) Records() ([]models.CleanedRecord, error) {
	return Records(c.Table)
}
