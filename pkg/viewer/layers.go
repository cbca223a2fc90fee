package viewer

import (
	"fmt"
	"math"

	"github.com/edwenger/prism-data-viewer/pkg/common/models"
	"github.com/edwenger/prism-data-viewer/pkg/plotly"
)

// TracesPerHousehold is fixed so the global visibility arrays can address
// every household's layers by relative offset.
const TracesPerHousehold = 7

const (
	dateLayout  = "2006-01-02"
	lampColor   = "rgba(255, 237, 160, 0.6)"
	transparent = "rgba(0,0,0,0)"

	// Microscopy marker scaling: raw size 50*log10(density), clamped to a
	// 10 floor, then shrunk by a fixed visual constant.
	markerScale    = 50.0
	markerFloor    = 10.0
	markerShrink   = 4.5
	gametocytePad  = 2.0
	colorScaleMin  = 1.0 // log10 domain: 10 parasites/uL
	colorScaleMax  = 5.5 // ~316K parasites/uL
)

// MarkerSize converts a positive parasite density to a marker size.
func MarkerSize(density float64) float64 {
	size := markerScale * math.Log10(density)
	if size < markerFloor {
		size = markerFloor
	}
	return size / markerShrink
}

// FormatDensity renders a density for hover text: raw integer below 1K,
// "X.YK" below 1M, "X.YM" above.
func FormatDensity(density float64) string {
	switch {
	case density >= 1e6:
		return fmt.Sprintf("%.1fM", density/1e6)
	case density >= 1e3:
		return fmt.Sprintf("%.1fK", density/1e3)
	default:
		return fmt.Sprintf("%d", int64(density))
	}
}

// lampTested reports whether the LAMP field carries an actual test
// outcome (as opposed to unset/other text).
func lampTested(lamp string) bool {
	return lamp == "Positive" || lamp == "Negative" || lamp == "No result"
}

// microscopyOnly selects rows judged by microscopy alone: no usable LAMP
// outcome but a measured density.
func microscopyOnly(r models.CleanedRecord) bool {
	return !lampTested(r.LAMP) && r.ParasiteDensity != nil
}

// BuildTraces derives the seven chart layers for one household. first
// controls the shared legend and the single colorbar. Households without
// microscopy-positive rows still emit placeholder layers 6 and 7 so the
// layer offsets stay fixed.
func BuildTraces(h *Household, rowIndex map[string]int, first bool, rules TreatmentRules) []plotly.Trace {
	traces := make([]plotly.Trace, 0, TracesPerHousehold)

	points := func(keep func(models.CleanedRecord) bool) (dates []string, ys []int, rows []models.CleanedRecord) {
		dates, ys = []string{}, []int{}
		for _, r := range h.Records {
			if !keep(r) {
				continue
			}
			dates = append(dates, r.Date.Format(dateLayout))
			ys = append(ys, rowIndex[r.ParticipantID])
			rows = append(rows, r)
		}
		return dates, ys, rows
	}

	// 1. All visits (background)
	dates, ys, _ := points(func(models.CleanedRecord) bool { return true })
	traces = append(traces, plotly.Trace{
		Type:        "scatter",
		X:           dates,
		Y:           ys,
		Mode:        "markers",
		Marker:      &plotly.Marker{Size: 3, Color: "darkgray"},
		Name:        "All visits",
		HoverInfo:   "skip",
		LegendGroup: "visits",
		ShowLegend:  plotly.Bool(first),
	})

	// 2. Fever
	dates, ys, _ = points(func(r models.CleanedRecord) bool { return r.Fever == "Yes" })
	traces = append(traces, plotly.Trace{
		Type:        "scatter",
		X:           dates,
		Y:           ys,
		Mode:        "markers",
		Marker:      &plotly.Marker{Size: 5, Color: "firebrick"},
		Name:        "Fever",
		HoverInfo:   "skip",
		LegendGroup: "fever",
		ShowLegend:  plotly.Bool(first),
	})

	// 3. LAMP negative
	dates, ys, rows := points(func(r models.CleanedRecord) bool { return r.LAMP == "Negative" })
	traces = append(traces, plotly.Trace{
		Type: "scatter",
		X:    dates,
		Y:    ys,
		Mode: "markers",
		Marker: &plotly.Marker{
			Size:  8,
			Color: transparent,
			Line:  &plotly.MarkerLine{Color: "darkgray", Width: 1},
		},
		Name:          "LAMP negative",
		HoverTemplate: "<b>LAMP Negative</b><br>Date: %{x|%Y-%m-%d}<br>ID: %{customdata[0]}<extra></extra>",
		CustomData:    participantIDs(rows),
		LegendGroup:   "lamp_neg",
		ShowLegend:    plotly.Bool(first),
	})

	// 4. LAMP positive; labeled submicroscopic since LAMP detects below
	// the microscopy threshold.
	dates, ys, rows = points(func(r models.CleanedRecord) bool { return r.LAMP == "Positive" })
	traces = append(traces, plotly.Trace{
		Type: "scatter",
		X:    dates,
		Y:    ys,
		Mode: "markers",
		Marker: &plotly.Marker{
			Size:  10,
			Color: lampColor,
			Line:  &plotly.MarkerLine{Color: "darkgray", Width: 1},
		},
		Name:          "LAMP positive (submicroscopic)",
		HoverTemplate: "<b>LAMP Positive</b><br>Date: %{x|%Y-%m-%d}<br>ID: %{customdata[0]}<extra></extra>",
		CustomData:    participantIDs(rows),
		LegendGroup:   "lamp_pos",
		ShowLegend:    plotly.Bool(first),
	})

	// 5. Microscopy negative
	dates, ys, rows = points(func(r models.CleanedRecord) bool {
		return microscopyOnly(r) && *r.ParasiteDensity == 0
	})
	traces = append(traces, plotly.Trace{
		Type: "scatter",
		X:    dates,
		Y:    ys,
		Mode: "markers",
		Marker: &plotly.Marker{
			Size:  10,
			Color: transparent,
			Line:  &plotly.MarkerLine{Color: "darkgray", Width: 1},
		},
		Name:          "Microscopy negative",
		HoverTemplate: "<b>Microscopy Negative</b><br>Date: %{x|%Y-%m-%d}<br>ID: %{customdata[0]}<extra></extra>",
		CustomData:    participantIDs(rows),
		LegendGroup:   "micro_neg",
		ShowLegend:    plotly.Bool(first),
	})

	// 6 + 7. Microscopy positive with density-scaled markers, and the
	// gametocyte ring overlay on its subset.
	dates, ys, rows = points(func(r models.CleanedRecord) bool {
		return microscopyOnly(r) && *r.ParasiteDensity > 0
	})
	if len(rows) == 0 {
		traces = append(traces, placeholder(), placeholder())
		return traces
	}

	sizes := make([]float64, len(rows))
	colors := make([]float64, len(rows))
	hover := make([]string, len(rows))
	for i, r := range rows {
		sizes[i] = MarkerSize(*r.ParasiteDensity)
		colors[i] = math.Log10(*r.ParasiteDensity)
		hover[i] = hoverLine(r, rules)
	}

	marker := &plotly.Marker{
		Size:       sizes,
		Color:      colors,
		ColorScale: "YlOrRd",
		CMin:       plotly.Float(colorScaleMin),
		CMax:       plotly.Float(colorScaleMax),
		Line:       &plotly.MarkerLine{Color: "darkgray", Width: 0.5},
	}
	if first {
		// One colorbar for the whole page; repeating it per household
		// stacks duplicate legends.
		marker.ColorBar = &plotly.ColorBar{
			Title:    "Parasite<br>Density<br>(log10)",
			TickVals: []float64{1, 2, 3, 4, 5},
			TickText: []string{"10", "100", "1K", "10K", "100K"},
			Len:      0.4,
			Y:        0.4,
			YAnchor:  "top",
		}
	}
	traces = append(traces, plotly.Trace{
		Type:          "scatter",
		X:             dates,
		Y:             ys,
		Mode:          "markers",
		Marker:        marker,
		Name:          "Parasite positive",
		HoverTemplate: "%{hovertext}<extra></extra>",
		HoverText:     hover,
		LegendGroup:   "parasite",
		ShowLegend:    plotly.Bool(first),
	})

	gamDates, gamYs := []string{}, []int{}
	var gamSizes []float64
	for i, r := range rows {
		if r.Gametocytes == "Yes" {
			gamDates = append(gamDates, dates[i])
			gamYs = append(gamYs, ys[i])
			gamSizes = append(gamSizes, sizes[i]+gametocytePad)
		}
	}
	if len(gamDates) == 0 {
		traces = append(traces, placeholder())
		return traces
	}
	traces = append(traces, plotly.Trace{
		Type: "scatter",
		X:    gamDates,
		Y:    gamYs,
		Mode: "markers",
		Marker: &plotly.Marker{
			Size:  gamSizes,
			Color: transparent,
			Line:  &plotly.MarkerLine{Color: "olive", Width: 2},
		},
		Name:        "Gametocytes detected",
		HoverInfo:   "skip",
		LegendGroup: "gametocytes",
		ShowLegend:  plotly.Bool(first),
	})
	return traces
}

func placeholder() plotly.Trace {
	t := plotly.Scatter()
	t.ShowLegend = plotly.Bool(false)
	return t
}

func participantIDs(rows []models.CleanedRecord) [][]string {
	if len(rows) == 0 {
		return nil
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{r.ParticipantID}
	}
	return out
}

func hoverLine(r models.CleanedRecord, rules TreatmentRules) string {
	line := fmt.Sprintf("<b>Parasite Positive</b><br>Density: %s /µL<br>Date: %s<br>ID: %s",
		FormatDensity(*r.ParasiteDensity), r.Date.Format(dateLayout), r.ParticipantID)
	if r.Fever == "Yes" {
		line += "<br>Fever: Yes"
	}
	if r.Gametocytes == "Yes" {
		line += "<br>Gametocytes: Yes"
	}
	if treatment, ok := rules.Abbreviate(r.Antimalarial); ok {
		line += "<br>Treatment: " + treatment
	}
	return line
}
