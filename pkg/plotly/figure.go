// Package plotly holds just enough of the Plotly.js figure schema to
// serialize the household viewer: scatter traces, a dropdown updatemenu,
// and array-tick axes. Fields marshal to the literal JSON the runtime
// expects.
package plotly

// Trace is a scatter trace. X carries ISO dates; Y carries row indices.
// Size and Color are either a scalar or a per-point array, so they stay
// untyped.
type Trace struct {
	Type          string     `json:"type"`
	X             []string   `json:"x"`
	Y             []int      `json:"y"`
	Mode          string     `json:"mode,omitempty"`
	Marker        *Marker    `json:"marker,omitempty"`
	Name          string     `json:"name,omitempty"`
	HoverInfo     string     `json:"hoverinfo,omitempty"`
	HoverTemplate string     `json:"hovertemplate,omitempty"`
	HoverText     []string   `json:"hovertext,omitempty"`
	CustomData    [][]string `json:"customdata,omitempty"`
	LegendGroup   string     `json:"legendgroup,omitempty"`
	ShowLegend    *bool      `json:"showlegend,omitempty"`
	Visible       *bool      `json:"visible,omitempty"`
}

// Scatter returns an empty scatter trace with non-nil point slices, so an
// empty placeholder serializes as [] rather than null.
func Scatter() Trace {
	return Trace{Type: "scatter", X: []string{}, Y: []int{}}
}

type Marker struct {
	Size       interface{} `json:"size,omitempty"`
	Color      interface{} `json:"color,omitempty"`
	ColorScale string      `json:"colorscale,omitempty"`
	CMin       *float64    `json:"cmin,omitempty"`
	CMax       *float64    `json:"cmax,omitempty"`
	Line       *MarkerLine `json:"line,omitempty"`
	ColorBar   *ColorBar   `json:"colorbar,omitempty"`
}

type MarkerLine struct {
	Color string  `json:"color,omitempty"`
	Width float64 `json:"width,omitempty"`
}

type ColorBar struct {
	Title    string    `json:"title,omitempty"`
	TickVals []float64 `json:"tickvals,omitempty"`
	TickText []string  `json:"ticktext,omitempty"`
	Len      float64   `json:"len,omitempty"`
	Y        float64   `json:"y,omitempty"`
	YAnchor  string    `json:"yanchor,omitempty"`
}

type Layout struct {
	UpdateMenus []UpdateMenu `json:"updatemenus,omitempty"`
	Title       *Title       `json:"title,omitempty"`
	XAxis       *Axis        `json:"xaxis,omitempty"`
	YAxis       *Axis        `json:"yaxis,omitempty"`
	PlotBGColor string       `json:"plot_bgcolor,omitempty"`
	HoverMode   string       `json:"hovermode,omitempty"`
	Height      int          `json:"height,omitempty"`
	ShowLegend  *bool        `json:"showlegend,omitempty"`
	Legend      *Legend      `json:"legend,omitempty"`
}

type Title struct {
	Text    string  `json:"text"`
	Font    *Font   `json:"font,omitempty"`
	X       float64 `json:"x,omitempty"`
	XAnchor string  `json:"xanchor,omitempty"`
}

type Font struct {
	Size int `json:"size,omitempty"`
}

// Axis range entries are date strings on x and floats on y.
type Axis struct {
	Title         string        `json:"title,omitempty"`
	GridColor     string        `json:"gridcolor,omitempty"`
	GridWidth     float64       `json:"gridwidth,omitempty"`
	GridDash      string        `json:"griddash,omitempty"`
	Range         []interface{} `json:"range,omitempty"`
	TickMode      string        `json:"tickmode,omitempty"`
	TickVals      []int         `json:"tickvals,omitempty"`
	TickText      []string      `json:"ticktext,omitempty"`
	ShowGrid      *bool         `json:"showgrid,omitempty"`
	ZeroLine      *bool         `json:"zeroline,omitempty"`
	ZeroLineColor string        `json:"zerolinecolor,omitempty"`
	ZeroLineWidth float64       `json:"zerolinewidth,omitempty"`
}

type Legend struct {
	Orientation string  `json:"orientation,omitempty"`
	YAnchor     string  `json:"yanchor,omitempty"`
	Y           float64 `json:"y,omitempty"`
	XAnchor     string  `json:"xanchor,omitempty"`
	X           float64 `json:"x,omitempty"`
	BGColor     string  `json:"bgcolor,omitempty"`
	BorderColor string  `json:"bordercolor,omitempty"`
	BorderWidth float64 `json:"borderwidth,omitempty"`
}

type UpdateMenu struct {
	Buttons     []Button       `json:"buttons"`
	Direction   string         `json:"direction,omitempty"`
	Pad         map[string]int `json:"pad,omitempty"`
	ShowActive  bool           `json:"showactive"`
	Active      int            `json:"active"`
	X           float64        `json:"x,omitempty"`
	XAnchor     string         `json:"xanchor,omitempty"`
	Y           float64        `json:"y,omitempty"`
	YAnchor     string         `json:"yanchor,omitempty"`
	BGColor     string         `json:"bgcolor,omitempty"`
	BorderColor string         `json:"bordercolor,omitempty"`
	BorderWidth float64        `json:"borderwidth,omitempty"`
}

// Button args follow the "update" method convention: args[0] restyles
// trace visibility, args[1] relayouts title and axes.
type Button struct {
	Label  string        `json:"label"`
	Method string        `json:"method"`
	Args   []interface{} `json:"args"`
}

type Config struct {
	DisplayModeBar         bool     `json:"displayModeBar"`
	DisplayLogo            bool     `json:"displaylogo"`
	ModeBarButtonsToRemove []string `json:"modeBarButtonsToRemove,omitempty"`
	Responsive             bool     `json:"responsive,omitempty"`
}

type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Bool is a pointer helper for the tri-state showlegend/visible fields.
func Bool(b bool) *bool {
	return &b
}

// Float is a pointer helper for cmin/cmax.
func Float(f float64) *float64 {
	return &f
}
