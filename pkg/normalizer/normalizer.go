// Package normalizer turns the four raw PRISM cohort extracts into one
// cleaned, flat CSV per study site. It owns the cleaned-file schema; the
// viewer and the archive both consume its output.
package normalizer

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/edwenger/prism-data-viewer/pkg/common/logger"
	"github.com/edwenger/prism-data-viewer/pkg/common/models"
	"github.com/edwenger/prism-data-viewer/pkg/dataset"
)

// Raw extract file names, fixed by the upstream export.
const (
	HouseholdsFile       = "PRISM_cohort_Households.txt"
	ParticipantsFile     = "PRISM_cohort_Participants.txt"
	RepeatedMeasuresFile = "PRISM_cohort_Participant_repeated_measures.txt"
	SamplesFile          = "PRISM_cohort_Samples.txt"
)

const dateLayout = "2006-01-02"

type Normalizer struct {
	catalog Catalog
}

func New(catalog Catalog) *Normalizer {
	return &Normalizer{catalog: catalog}
}

// Cleaned is one site's normalized output.
type Cleaned struct {
	Site  models.Site
	Table *dataset.Table
}

// OutputName is the cleaned CSV file name for the site.
func (c *Cleaned) OutputName() string {
	return fmt.Sprintf("prism_cleaned_%s.csv", c.Site.Key())
}

type participantInfo struct {
	householdID     string
	gender          string
	ageAtEnrollment string
	enrollmentDate  string
}

// Run loads the four extracts from dataDir, joins and partitions them,
// and writes one cleaned CSV per site into outDir. Every repeated-measure
// row of a site household survives the join; absent sample data becomes
// empty fields. A missing extract is a fatal error for the whole run.
func (n *Normalizer) Run(dataDir, outDir string) ([]*Cleaned, error) {
	mapping := n.catalog.Mapping()

	households, err := loadExtract(dataDir, HouseholdsFile, mapping)
	if err != nil {
		return nil, err
	}
	participants, err := loadExtract(dataDir, ParticipantsFile, mapping)
	if err != nil {
		return nil, err
	}
	measures, err := loadExtract(dataDir, RepeatedMeasuresFile, mapping)
	if err != nil {
		return nil, err
	}
	samples, err := loadExtract(dataDir, SamplesFile, mapping)
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"households":   len(households.Rows),
		"participants": len(participants.Rows),
		"observations": len(measures.Rows),
		"samples":      len(samples.Rows),
	}).Info("Loaded PRISM extracts")

	siteByHousehold := make(map[string]string, len(households.Rows))
	for _, row := range households.Rows {
		siteByHousehold[households.Get(row, householdKey)] = households.Get(row, SubCountyColumn)
	}

	infoByParticipant := make(map[string]participantInfo, len(participants.Rows))
	for _, row := range participants.Rows {
		infoByParticipant[participants.Get(row, "id")] = participantInfo{
			householdID:     participants.Get(row, householdKey),
			gender:          participants.Get(row, "gender"),
			ageAtEnrollment: participants.Get(row, "age_at_enrollment"),
			enrollmentDate:  participants.Get(row, "enrollment_date"),
		}
	}

	samplesByMeasure := make(map[string][][]string, len(samples.Rows))
	for _, row := range samples.Rows {
		id := samples.Get(row, measureKey)
		samplesByMeasure[id] = append(samplesByMeasure[id], row)
	}

	columns := n.outputColumns(measures, participants, samples)

	var outputs []*Cleaned
	for _, site := range models.Sites() {
		cleaned, err := n.buildSite(site, columns, measures, samples, siteByHousehold, infoByParticipant, samplesByMeasure)
		if err != nil {
			return nil, err
		}

		path := filepath.Join(outDir, cleaned.OutputName())
		if err := cleaned.Table.WriteCSV(path); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		logger.WithFields(logrus.Fields{
			"site": site.Name,
			"path": path,
			"rows": len(cleaned.Table.Rows),
		}).Info("Saved cleaned site file")

		outputs = append(outputs, cleaned)
	}
	return outputs, nil
}

func loadExtract(dataDir, name string, mapping map[string]string) (*dataset.Table, error) {
	table, err := dataset.ReadFile(filepath.Join(dataDir, name), '\t')
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	table.Rename(mapping)
	return table, nil
}

// outputColumns intersects the fixed relevant-column list with what the
// join can actually produce, preserving the fixed order.
func (n *Normalizer) outputColumns(measures, participants, samples *dataset.Table) []string {
	available := func(col string) bool {
		switch col {
		case "age_at_enrollment", "gender":
			return participants.HasColumn(col)
		case "parasitedensity", "gametocytes", "LAMP", "hemoglobin":
			return samples.HasColumn(col)
		case householdKey:
			return measures.HasColumn(col) || participants.HasColumn(col)
		default:
			return measures.HasColumn(col)
		}
	}

	var columns []string
	for _, col := range RelevantColumns() {
		if available(col) {
			columns = append(columns, col)
		}
	}
	return columns
}

func (n *Normalizer) buildSite(
	site models.Site,
	columns []string,
	measures, samples *dataset.Table,
	siteByHousehold map[string]string,
	infoByParticipant map[string]participantInfo,
	samplesByMeasure map[string][][]string,
) (*Cleaned, error) {
	out := dataset.New(append([]string(nil), columns...))

	var (
		siteHouseholds   = make(map[string]struct{})
		siteParticipants = make(map[string]struct{})
		sampleRows       int
		minDate, maxDate time.Time
		perParticipant   = make(map[string]int)
		positives        []float64
	)

	for _, row := range measures.Rows {
		pid := measures.Get(row, "id")
		info, ok := infoByParticipant[pid]
		if !ok {
			continue
		}
		householdID := measures.Get(row, householdKey)
		if householdID == "" {
			householdID = info.householdID
		}
		if siteByHousehold[householdID] != site.Name {
			continue
		}

		rawDate := measures.Get(row, "date")
		date, err := time.Parse(dateLayout, rawDate)
		if err != nil {
			return nil, fmt.Errorf("site %s: parse observation date %q: %w", site.Name, rawDate, err)
		}
		if minDate.IsZero() || date.Before(minDate) {
			minDate = date
		}
		if maxDate.IsZero() || date.After(maxDate) {
			maxDate = date
		}

		siteHouseholds[householdID] = struct{}{}
		siteParticipants[pid] = struct{}{}
		perParticipant[pid]++

		// Left join: a measure without samples still yields one row.
		matched := samplesByMeasure[measures.Get(row, measureKey)]
		if len(matched) == 0 {
			matched = [][]string{nil}
		} else {
			sampleRows += len(matched)
		}

		for _, sampleRow := range matched {
			record := make([]string, len(columns))
			for i, col := range columns {
				switch col {
				case "date":
					record[i] = date.Format(dateLayout)
				case householdKey:
					record[i] = householdID
				case "age_at_enrollment":
					record[i] = info.ageAtEnrollment
				case "gender":
					record[i] = info.gender
				case "parasitedensity", "gametocytes", "LAMP", "hemoglobin":
					if sampleRow != nil {
						record[i] = samples.Get(sampleRow, col)
					}
				default:
					record[i] = measures.Get(row, col)
				}
			}
			out.Append(record)

			if sampleRow != nil {
				if d := parseFloat(samples.Get(sampleRow, "parasitedensity")); d != nil && *d > 0 {
					positives = append(positives, *d)
				}
			}
		}
	}

	n.logSiteSummary(site, out, siteHouseholds, siteParticipants, sampleRows, minDate, maxDate, perParticipant, positives)

	return &Cleaned{Site: site, Table: out}, nil
}

func (n *Normalizer) logSiteSummary(
	site models.Site,
	out *dataset.Table,
	households, participants map[string]struct{},
	sampleRows int,
	minDate, maxDate time.Time,
	perParticipant map[string]int,
	positives []float64,
) {
	fields := logrus.Fields{
		"site":         site.Name,
		"transmission": site.Transmission,
		"district":     site.District,
		"households":   len(households),
		"participants": len(participants),
		"observations": len(out.Rows),
		"samples":      sampleRows,
	}
	if !minDate.IsZero() {
		fields["date_min"] = minDate.Format(dateLayout)
		fields["date_max"] = maxDate.Format(dateLayout)
	}
	if len(perParticipant) > 0 {
		counts := make([]float64, 0, len(perParticipant))
		for _, c := range perParticipant {
			counts = append(counts, float64(c))
		}
		fields["obs_per_participant_mean"] = fmt.Sprintf("%.1f", mean(counts))
		fields["obs_per_participant_median"] = fmt.Sprintf("%.1f", median(counts))
	}
	if len(out.Rows) > 0 {
		fields["prevalence_pct"] = fmt.Sprintf("%.2f", 100*float64(len(positives))/float64(len(out.Rows)))
	}
	if len(positives) > 0 {
		fields["positive_density_mean"] = fmt.Sprintf("%.0f", mean(positives))
		fields["positive_density_median"] = fmt.Sprintf("%.0f", median(positives))
	}
	logger.WithFields(fields).Info("Processed site")
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
