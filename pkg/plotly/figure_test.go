package plotly

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestEmptyScatterSerializesAsEmptyArrays(t *testing.T) {
	trace := Scatter()
	trace.ShowLegend = Bool(false)

	out, err := json.Marshal(trace)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, `"x":[]`) || !strings.Contains(s, `"y":[]`) {
		t.Fatalf("expected empty point arrays, got %s", s)
	}
	if !strings.Contains(s, `"showlegend":false`) {
		t.Fatalf("expected explicit showlegend false, got %s", s)
	}
}

func TestShowLegendOmittedWhenUnset(t *testing.T) {
	out, err := json.Marshal(Scatter())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(out), "showlegend") {
		t.Fatalf("expected showlegend omitted, got %s", out)
	}
}

func TestButtonArgsShape(t *testing.T) {
	button := Button{
		Label:  "HH 1 (2m, 3i)",
		Method: "update",
		Args: []interface{}{
			map[string]interface{}{"visible": []bool{true, false}},
			map[string]interface{}{"yaxis.range": []interface{}{-0.5, 1.5}},
		},
	}

	out, err := json.Marshal(button)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, `"method":"update"`) {
		t.Fatalf("expected update method, got %s", s)
	}
	if !strings.Contains(s, `"yaxis.range"`) {
		t.Fatalf("expected dotted layout key preserved, got %s", s)
	}
}

func TestRenderEmbedsFigureAndExtra(t *testing.T) {
	fig := &Figure{
		Data:   []Trace{Scatter()},
		Layout: Layout{Height: 800},
	}

	var buf bytes.Buffer
	err := Render(&buf, "Viewer", fig, Config{DisplayModeBar: true}, "<script>var marker = 1;</script>")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	page := buf.String()
	for _, want := range []string{
		"plotly-graph-div",
		CDNScript,
		"Plotly.newPlot(",
		`"displayModeBar":true`,
		"var marker = 1;",
		"height:800px",
	} {
		if !strings.Contains(page, want) {
			t.Fatalf("page missing %q", want)
		}
	}
}
