// Package viewer derives per-household view models from cleaned records
// and assembles them into a single interactive timeline page.
package viewer

import (
	"fmt"
	"sort"

	"github.com/edwenger/prism-data-viewer/pkg/common/models"
)

// Household is one household's slice of the site timeline, in original
// encounter order.
type Household struct {
	ID         string
	Records    []models.CleanedRecord
	Members    int // distinct participants
	Infections int // observations with parasite density > 0
}

// Member is one distinct participant with their assigned chart row.
type Member struct {
	ID              string
	AgeAtEnrollment *float64
	Gender          string
	Index           int
}

// GroupHouseholds buckets records by household, preserving first-encounter
// order of households and of records within each.
func GroupHouseholds(records []models.CleanedRecord) []*Household {
	var order []*Household
	byID := make(map[string]*Household)

	for _, r := range records {
		h, ok := byID[r.HouseholdID]
		if !ok {
			h = &Household{ID: r.HouseholdID}
			byID[r.HouseholdID] = h
			order = append(order, h)
		}
		h.Records = append(h.Records, r)
	}

	for _, h := range order {
		seen := make(map[string]struct{})
		for _, r := range h.Records {
			if _, ok := seen[r.ParticipantID]; !ok {
				seen[r.ParticipantID] = struct{}{}
				h.Members++
			}
			if r.MicroscopyPositive() {
				h.Infections++
			}
		}
	}
	return order
}

// Qualifying keeps multi-member households with at least one infection and
// orders them by descending infection count. Ties keep encounter order.
func Qualifying(households []*Household) []*Household {
	var kept []*Household
	for _, h := range households {
		if h.Members >= 2 && h.Infections > 0 {
			kept = append(kept, h)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Infections > kept[j].Infections
	})
	return kept
}

// RowOrder assigns each distinct participant a zero-based row index by
// ascending age at enrollment; ties and missing ages keep encounter order
// (missing ages sort last). Returns the members in row order plus an
// id -> index lookup.
func (h *Household) RowOrder() ([]Member, map[string]int) {
	var members []Member
	seen := make(map[string]struct{})
	for _, r := range h.Records {
		if _, ok := seen[r.ParticipantID]; ok {
			continue
		}
		seen[r.ParticipantID] = struct{}{}
		members = append(members, Member{
			ID:              r.ParticipantID,
			AgeAtEnrollment: r.AgeAtEnrollment,
			Gender:          r.Gender,
		})
	}

	sort.SliceStable(members, func(i, j int) bool {
		ai, aj := members[i].AgeAtEnrollment, members[j].AgeAtEnrollment
		switch {
		case ai == nil:
			return false
		case aj == nil:
			return true
		default:
			return *ai < *aj
		}
	})

	index := make(map[string]int, len(members))
	for i := range members {
		members[i].Index = i
		index[members[i].ID] = i
	}
	return members, index
}

// YTicks builds the thinned y-axis labels: every strideth member in row
// order gets an "{age} {first letter of gender}" label, every row gets a
// gridline tick. stride = max(1, members/50).
func YTicks(members []Member) (positions []int, labels []string) {
	stride := len(members) / 50
	if stride < 1 {
		stride = 1
	}

	labeled := make(map[int]string)
	for i := 0; i < len(members); i += stride {
		labeled[members[i].Index] = memberLabel(members[i])
	}

	positions = make([]int, len(members))
	labels = make([]string, len(members))
	for i := range members {
		positions[i] = i
		labels[i] = labeled[i]
	}
	return positions, labels
}

func memberLabel(m Member) string {
	age := "?"
	if m.AgeAtEnrollment != nil {
		age = fmt.Sprintf("%d", int(*m.AgeAtEnrollment))
	}
	gender := "?"
	if m.Gender != "" {
		gender = string([]rune(m.Gender)[0])
	}
	return age + " " + gender
}
