package plotly

import (
	"encoding/json"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// CDNScript is the charting runtime reference embedded in every page; it
// is the page's only external dependency.
const CDNScript = "https://cdn.plot.ly/plotly-2.35.2.min.js"

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8" />
<title>{{.Title}}</title>
</head>
<body>
<div id="{{.DivID}}" class="plotly-graph-div" style="height:{{.Height}}px; width:100%;"></div>
<script src="{{.CDN}}" charset="utf-8"></script>
<script type="text/javascript">
    Plotly.newPlot("{{.DivID}}", {{.Data}}, {{.Layout}}, {{.Config}});
</script>
{{.Extra}}
</body>
</html>
`))

type pageData struct {
	Title  string
	DivID  string
	Height int
	CDN    string
	Data   template.JS
	Layout template.JS
	Config template.JS
	Extra  template.HTML
}

// Render writes a standalone HTML page for the figure. extra is appended
// before the closing body tag, for page-level scripts.
func Render(w io.Writer, title string, fig *Figure, cfg Config, extra string) error {
	data, err := json.Marshal(fig.Data)
	if err != nil {
		return err
	}
	layout, err := json.Marshal(fig.Layout)
	if err != nil {
		return err
	}
	config, err := json.Marshal(cfg)
	if err != nil {
		return err
	}

	height := fig.Layout.Height
	if height == 0 {
		height = 450
	}

	return pageTemplate.Execute(w, pageData{
		Title:  title,
		DivID:  uuid.New().String(),
		Height: height,
		CDN:    CDNScript,
		Data:   template.JS(data),
		Layout: template.JS(layout),
		Config: template.JS(config),
		Extra:  template.HTML(extra),
	})
}

// WriteFile renders the page to path, creating parent directories.
func WriteFile(path, title string, fig *Figure, cfg Config, extra string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return err
	}
	defer f.Close()
	return Render(f, title, fig, cfg, extra)
}
