package viewer

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/edwenger/prism-data-viewer/pkg/common/logger"
	"github.com/edwenger/prism-data-viewer/pkg/common/models"
	"github.com/edwenger/prism-data-viewer/pkg/normalizer"
	"github.com/edwenger/prism-data-viewer/pkg/plotly"
)

// Padding added to each side of the site-wide date range so households
// can be compared without axis rescaling.
const xAxisPadMonths = 4

type Builder struct {
	rules TreatmentRules
}

func NewBuilder(rules TreatmentRules) *Builder {
	return &Builder{rules: rules}
}

// Build reads one site's cleaned CSV and writes its standalone viewer
// page. A missing input is fatal; a site with zero qualifying households
// still produces a valid, empty page.
func (b *Builder) Build(site models.Site, csvPath, outPath string) error {
	records, err := normalizer.LoadCleaned(csvPath)
	if err != nil {
		return fmt.Errorf("load cleaned data for %s: %w", site.Name, err)
	}

	fig, total := b.Figure(site, records)
	config := plotly.Config{
		DisplayModeBar:         true,
		DisplayLogo:            false,
		ModeBarButtonsToRemove: []string{"lasso2d", "select2d"},
	}
	title := fmt.Sprintf("PRISM Household Viewer - %s", strings.ToUpper(site.Name))
	if err := plotly.WriteFile(outPath, title, fig, config, NavScript(total)); err != nil {
		return fmt.Errorf("write viewer for %s: %w", site.Name, err)
	}

	logger.WithFields(logrus.Fields{
		"site":       site.Name,
		"records":    len(records),
		"households": total,
		"path":       outPath,
	}).Info("Generated interactive viewer")
	return nil
}

// Figure assembles the full chart: seven layers per qualifying household
// plus the dropdown that switches visibility between them. It returns the
// qualifying-household count for the navigation script.
func (b *Builder) Figure(site models.Site, records []models.CleanedRecord) (*plotly.Figure, int) {
	households := Qualifying(GroupHouseholds(records))

	var xRange []interface{}
	if len(records) > 0 {
		minDate, maxDate := dateRange(records)
		xRange = []interface{}{
			minDate.AddDate(0, -xAxisPadMonths, 0).Format(dateLayout),
			maxDate.AddDate(0, xAxisPadMonths, 0).Format(dateLayout),
		}
	}

	var traces []plotly.Trace
	var buttons []plotly.Button
	var firstPositions []int
	var firstLabels []string
	var firstMembers int

	total := TracesPerHousehold * len(households)
	for i, h := range households {
		members, rowIndex := h.RowOrder()
		traces = append(traces, BuildTraces(h, rowIndex, i == 0, b.rules)...)

		positions, labels := YTicks(members)
		if i == 0 {
			firstPositions, firstLabels, firstMembers = positions, labels, len(members)
		}

		visible := make([]bool, total)
		for t := i * TracesPerHousehold; t < (i+1)*TracesPerHousehold; t++ {
			visible[t] = true
		}

		buttons = append(buttons, plotly.Button{
			Label:  fmt.Sprintf("HH %s (%dm, %di)", h.ID, h.Members, h.Infections),
			Method: "update",
			Args: []interface{}{
				map[string]interface{}{"visible": visible},
				map[string]interface{}{
					"title":          fmt.Sprintf("Household %s - %d members, %d microscopy-positive observations", h.ID, h.Members, h.Infections),
					"yaxis.tickvals": positions,
					"yaxis.ticktext": labels,
					"yaxis.range":    []interface{}{-0.5, float64(len(members)) - 0.5},
					"xaxis.range":    xRange,
				},
			},
		})
	}

	// Start on the first household: its layers visible, all others hidden.
	for t := range traces {
		traces[t].Visible = plotly.Bool(t < TracesPerHousehold)
	}

	layout := plotly.Layout{
		Title: &plotly.Title{
			Text:    fmt.Sprintf("PRISM Household Viewer - %s (%d households)", strings.ToUpper(site.Name), len(households)),
			Font:    &plotly.Font{Size: 18},
			X:       0.5,
			XAnchor: "center",
		},
		XAxis: &plotly.Axis{
			Title:     "Date",
			GridColor: "lightgray",
			GridWidth: 0.5,
			Range:     xRange,
		},
		YAxis: &plotly.Axis{
			Title:         "Age (years) & Gender",
			TickMode:      "array",
			TickVals:      firstPositions,
			TickText:      firstLabels,
			GridColor:     "lightgray",
			GridWidth:     0.5,
			ShowGrid:      plotly.Bool(true),
			GridDash:      "solid",
			ZeroLine:      plotly.Bool(true),
			ZeroLineColor: "lightgray",
			ZeroLineWidth: 0.5,
		},
		PlotBGColor: "white",
		HoverMode:   "closest",
		Height:      800,
		ShowLegend:  plotly.Bool(true),
		Legend: &plotly.Legend{
			Orientation: "v",
			YAnchor:     "top",
			Y:           0.98,
			XAnchor:     "left",
			X:           1.02,
			BGColor:     "rgba(255,255,255,0.8)",
			BorderColor: "black",
			BorderWidth: 1,
		},
	}
	if firstMembers > 0 {
		layout.YAxis.Range = []interface{}{-0.5, float64(firstMembers) - 0.5}
	}
	if len(buttons) > 0 {
		layout.UpdateMenus = []plotly.UpdateMenu{{
			Buttons:     buttons,
			Direction:   "down",
			Pad:         map[string]int{"r": 10, "t": 10},
			ShowActive:  true,
			Active:      0,
			X:           0.01,
			XAnchor:     "left",
			Y:           1.15,
			YAnchor:     "top",
			BGColor:     "lightblue",
			BorderColor: "black",
			BorderWidth: 1,
		}}
	}

	if traces == nil {
		traces = []plotly.Trace{}
	}
	return &plotly.Figure{Data: traces, Layout: layout}, len(households)
}

func dateRange(records []models.CleanedRecord) (min, max time.Time) {
	min, max = records[0].Date, records[0].Date
	for _, r := range records[1:] {
		if r.Date.Before(min) {
			min = r.Date
		}
		if r.Date.After(max) {
			max = r.Date
		}
	}
	return min, max
}
