package models

import (
	"strings"
	"time"
)

// Raw extract models. All four are immutable after load.
type Household struct {
	ID        string
	SubCounty string
}

type Participant struct {
	ID              string
	HouseholdID     string
	Gender          string
	AgeAtEnrollment *float64
	EnrollmentDate  *time.Time
}

// Observation is one participant repeated measure (a clinic or home visit).
type Observation struct {
	MeasureID        string
	ParticipantID    string
	HouseholdID      string
	Date             time.Time
	Age              *float64
	Temperature      *float64
	Fever            string
	VisitType        string
	MalariaDiagnosis string
	Antimalarial     string
}

// SampleResult holds the lab results attached to one repeated measure.
type SampleResult struct {
	MeasureID       string
	ParasiteDensity *float64
	Gametocytes     string
	LAMP            string
	Hemoglobin      *float64
}

// CleanedRecord is the flattened join of observation, participant, sample
// and household site label: one row of the per-site cleaned CSV.
// Date, ParticipantID and HouseholdID are always set; ParasiteDensity,
// when present, is >= 0 (0 means microscopy negative, nil means not measured).
type CleanedRecord struct {
	Date             time.Time
	ParticipantID    string
	HouseholdID      string
	Age              *float64
	AgeAtEnrollment  *float64
	Gender           string
	Temperature      *float64
	Fever            string
	ParasiteDensity  *float64
	Gametocytes      string
	LAMP             string
	VisitType        string
	Hemoglobin       *float64
	MalariaDiagnosis string
	Antimalarial     string
}

// MicroscopyPositive reports whether the record carries a positive
// parasite density. Absent density counts as negative.
func (r CleanedRecord) MicroscopyPositive() bool {
	return r.ParasiteDensity != nil && *r.ParasiteDensity > 0
}

// Site is one of the three PRISM sub-counties.
type Site struct {
	Name         string
	District     string
	Transmission string
}

// Key is the lowercase site name used in file names.
func (s Site) Key() string {
	return strings.ToLower(s.Name)
}

// Sites returns the three fixed study sites. Households outside these
// sub-counties are excluded from every output.
func Sites() []Site {
	return []Site{
		{Name: "Nagongera", District: "Tororo", Transmission: "high"},
		{Name: "Walukuba", District: "Jinja", Transmission: "medium"},
		{Name: "Kihihi", District: "Kanungu", Transmission: "low"},
	}
}
