package report

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/KaramelBytes/dfstats-cli/internal/analysis"
	"github.com/KaramelBytes/dfstats-cli/internal/dataset"
	"github.com/KaramelBytes/dfstats-cli/internal/plot"
	"github.com/KaramelBytes/dfstats-cli/internal/utils"
)

func writeHTML(ctx context.Context, ds *dataset.Dataset, req Request, opt Options) (*Result, error) {
	if len(req.Variables) == 0 {
		return nil, ErrVariablesRequired
	}
	var buf bytes.Buffer
	if err := RenderHTML(ctx, &buf, ds, req.Title, req.Variables, opt); err != nil {
		return nil, err
	}
	path := req.Name + ".html"
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return nil, fmt.Errorf("write html: %w", err)
	}
	zerolog.Ctx(ctx).Info().Str("path", path).Msg("html report generated")
	return &Result{Path: path, Format: FormatHTML}, nil
}

type htmlVariable struct {
	analysis.ColumnSummary
	Histogram template.URL
}

type htmlPage struct {
	Title     string
	Generated string
	Profile   *analysis.Profile
	Variables []htmlVariable
	Pairs     []analysis.PairCorr
}

// RenderHTML writes the profiling report for the given variables to w.
func RenderHTML(ctx context.Context, w io.Writer, ds *dataset.Dataset, title string, variables []string, opt Options) error {
	prof, err := analysis.BuildProfile(ds, variables, opt.Profile)
	if err != nil {
		return err
	}
	page := htmlPage{
		Title:     title,
		Generated: time.Now().Format(time.RFC1123),
		Profile:   prof,
		Pairs:     prof.Corr.TopPairs(10),
	}
	for _, c := range prof.Variables {
		hv := htmlVariable{ColumnSummary: c}
		if c.Numeric() {
			var img bytes.Buffer
			if err := plot.RenderHistogram(&img, ds, c.Name, "png", plot.Options{Bins: opt.Bins, Width: 4, Height: 3}); err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Str("variable", c.Name).Msg("histogram skipped")
			} else {
				hv.Histogram = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(img.Bytes()))
			}
		}
		page.Variables = append(page.Variables, hv)
	}
	if err := profileTemplate.Execute(w, page); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

func fmtNum(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "N/A"
	}
	return strconv.FormatFloat(analysis.Round4(v), 'f', -1, 64)
}

var profileTemplate = template.Must(template.New("profile").Funcs(template.FuncMap{
	"num": fmtNum,
	"pct": func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) + "%" },
}).Parse(profileHTML))

const profileHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
:root { --bg: #fff; --fg: #1a1a2e; --card-bg: #f8f9fa; --border: #dee2e6; --muted: #6c757d; --warn: #fd7e14; }
* { box-sizing: border-box; }
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; background: var(--bg); color: var(--fg); line-height: 1.5; padding: 1rem; max-width: 1200px; margin: 0 auto; }
header p { color: var(--muted); font-size: .875rem; }
.cards { display: grid; grid-template-columns: repeat(auto-fit, minmax(140px, 1fr)); gap: .75rem; margin: 1rem 0; }
.card { background: var(--card-bg); border: 1px solid var(--border); border-radius: 8px; padding: .75rem; text-align: center; }
.card .value { font-size: 1.5rem; font-weight: 700; }
.card .label { font-size: .75rem; color: var(--muted); text-transform: uppercase; }
.variable { display: grid; grid-template-columns: 1fr 1fr; gap: 1rem; border: 1px solid var(--border); border-radius: 8px; padding: 1rem; margin-bottom: 1rem; }
.variable h3 { margin: 0 0 .5rem; }
.kind { color: var(--muted); font-size: .75rem; text-transform: uppercase; }
table { border-collapse: collapse; font-size: .8125rem; width: 100%; }
th, td { padding: .25rem .5rem; text-align: left; border-bottom: 1px solid var(--border); }
.alerts li { color: var(--warn); }
img { max-width: 100%; }
</style>
</head>
<body>
<header>
<h1>{{.Title}}</h1>
<p>{{.Profile.Name}} &middot; generated {{.Generated}}</p>
</header>

<section id="overview">
<h2>Overview</h2>
<div class="cards">
<div class="card"><div class="value">{{len .Variables}}</div><div class="label">Variables</div></div>
<div class="card"><div class="value">{{.Profile.Rows}}</div><div class="label">Observations</div></div>
<div class="card"><div class="value">{{.Profile.MissingCells}}</div><div class="label">Missing cells</div></div>
<div class="card"><div class="value">{{.Profile.DuplicateRows}}</div><div class="label">Duplicate rows</div></div>
</div>
{{- if .Profile.Alerts}}
<h3>Alerts</h3>
<ul class="alerts">
{{- range .Profile.Alerts}}
<li>{{.}}</li>
{{- end}}
</ul>
{{- end}}
</section>

<section id="variables">
<h2>Variables</h2>
{{- range .Variables}}
<div class="variable" id="var-{{.Name}}">
<div>
<h3>{{.Name}}</h3>
<div class="kind">{{.Kind}}</div>
<table>
<tr><th>Non-null</th><td>{{.NonNull}}</td></tr>
<tr><th>Missing</th><td>{{.Missing}} ({{pct .MissingPct}})</td></tr>
<tr><th>Distinct</th><td>{{.Unique}}</td></tr>
{{- if .Numeric}}
<tr><th>Mean</th><td>{{num .Mean}}</td></tr>
<tr><th>Std</th><td>{{num .Std}}</td></tr>
<tr><th>Min</th><td>{{num .Min}}</td></tr>
<tr><th>25%</th><td>{{num .Q1}}</td></tr>
<tr><th>Median</th><td>{{num .Median}}</td></tr>
<tr><th>75%</th><td>{{num .Q3}}</td></tr>
<tr><th>Max</th><td>{{num .Max}}</td></tr>
<tr><th>Skewness</th><td>{{num .Skew}}</td></tr>
<tr><th>Kurtosis</th><td>{{num .Kurtosis}}</td></tr>
<tr><th>Zeros</th><td>{{.Zeros}}</td></tr>
{{- if gt .OutlierThreshold 0.0}}
<tr><th>Outliers (|z|&gt;{{num .OutlierThreshold}})</th><td>{{.OutliersCount}}</td></tr>
{{- end}}
{{- end}}
</table>
</div>
<div>
{{- if .Histogram}}
<img alt="Distribution of {{.Name}}" src="{{.Histogram}}">
{{- else if .TopValues}}
<table>
<tr><th>Value</th><th>Count</th></tr>
{{- range .TopValues}}
<tr><td>{{.Value}}</td><td>{{.Count}}</td></tr>
{{- end}}
</table>
{{- end}}
</div>
</div>
{{- end}}
</section>

{{- if .Profile.Corr}}
<section id="correlations">
<h2>Correlations</h2>
<table>
<tr><th></th>{{range .Profile.Corr.Columns}}<th>{{.}}</th>{{end}}</tr>
{{- range $i, $row := .Profile.Corr.Values}}
<tr><th>{{index $.Profile.Corr.Columns $i}}</th>{{range $row}}<td>{{num .}}</td>{{end}}</tr>
{{- end}}
</table>
{{- if .Pairs}}
<h3>Strongest pairs</h3>
<ul>
{{- range .Pairs}}
<li>{{.A}} ~ {{.B}}: r={{num .R}}</li>
{{- end}}
</ul>
{{- end}}
</section>
{{- end}}

<section id="sample">
<h2>Sample</h2>
<table>
<tr>{{range .Profile.SampleHeader}}<th>{{.}}</th>{{end}}</tr>
{{- range .Profile.Samples}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</table>
</section>
</body>
</html>
`
