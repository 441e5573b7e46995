package internal

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"text/template"
	"time"

	"go.uber.org/multierr"
)

const dateLayout = "02-01-2006 15:04:05"

// DefaultExport is the export selection used when none is given.
const DefaultExport = "json"

var validExportFormats = []string{"json", "text", "markdown", "csv"}

// VerifyExportFormats parses a comma separated list of export formats.
// "none" and the empty string select nothing, "all" selects everything.
func VerifyExportFormats(formats string) ([]string, error) {
	formats = strings.TrimSpace(strings.ToLower(formats))
	switch formats {
	case "", "none":
		return nil, nil
	case "all":
		return slices.Clone(validExportFormats), nil
	}
	var out []string
	for _, f := range strings.Split(formats, ",") {
		f = strings.TrimSpace(f)
		if f == "md" {
			f = "markdown"
		}
		if !slices.Contains(validExportFormats, f) {
			return nil, fmt.Errorf("invalid export format: %s", f)
		}
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out, nil
}

var summaryText = `Case Report: {{ .Case }}
{{- if .Description }}
{{ .Description }}
{{- end }}

Run ID:      {{ .RunID }}
Fingerprint: {{ .Fingerprint }}
Started:     {{ .Started.Format "` + dateLayout + `" }}
Ended:       {{ .Ended.Format "` + dateLayout + `" }}
{{- with .Baseline }}

baseline
  time:      {{ dur .ExecTime }} ± {{ dur .IQR }} (IQR)
  cpu:       {{ dur .CPUTime }}
  trials:    {{ .Successes }}/{{ .Attempts }}
{{- end }}
{{ range .Variants }}
{{ .Name }}
  time:      {{ dur .ExecTime }} ± {{ dur .IQR }} (IQR)
  cpu:       {{ dur .CPUTime }}
  trials:    {{ .Successes }}/{{ .Attempts }}
  speedup:   {{ printf "%.2f" .Comparison.TimeRatio }}x time, {{ printf "%.2f" .Comparison.CPURatio }}x cpu
  memory:    {{ printf "%+.2f" .Comparison.MemoryDeltaMB }} MB
  correct:   {{ .Comparison.Correct }}
  score:     {{ printf "%.1f" .Score.Total }} {{ .GradeLabel }}
{{- end }}
{{- range $name, $reason := .Skipped }}

{{ $name }} skipped: {{ $reason }}
{{- end }}
{{- if .Best }}

Best variant: {{ .Best }}
{{- end }}
`

var summaryMarkdown = `# {{ .Case }}
{{ if .Description }}
{{ .Description }}
{{ end }}
| Fields      | Values |
| ----------- | ------ |
| Run ID      | {{ .RunID }} |
| Started     | {{ .Started.Format "` + dateLayout + `" }} |
| Ended       | {{ .Ended.Format "` + dateLayout + `" }} |
| Best        | {{ .Best }} |

| Version | Time | IQR | Time ratio | CPU ratio | Memory Δ (MB) | Correct | Score | Grade |
| ------- | ---- | --- | ---------- | --------- | ------------- | ------- | ----- | ----- |
{{- with .Baseline }}
| baseline | {{ dur .ExecTime }} | {{ dur .IQR }} | 1.00 | 1.00 | | | | |
{{- end }}
{{- range .Variants }}
| {{ .Name }} | {{ dur .ExecTime }} | {{ dur .IQR }} | {{ printf "%.2f" .Comparison.TimeRatio }} | {{ printf "%.2f" .Comparison.CPURatio }} | {{ printf "%+.2f" .Comparison.MemoryDeltaMB }} | {{ .Comparison.Correct }} | {{ printf "%.1f" .Score.Total }} | {{ .Score.Grade }} |
{{- end }}
{{- if .Skipped }}

## Skipped
{{ range $name, $reason := .Skipped }}
- **{{ $name }}**: {{ $reason }}
{{- end }}
{{- end }}
`

func renderTemplate(name, text string, r *Report, unit time.Duration) (string, error) {
	funcs := template.FuncMap{
		"dur": func(seconds float64) string { return secondsIn(seconds, unit) },
	}
	tmpl, err := template.New(name).Funcs(funcs).Parse(text)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, r); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Text renders the plain text summary.
func (r *Report) Text(unit time.Duration) (string, error) {
	return renderTemplate("text", summaryText, r, unit)
}

// Markdown renders the markdown summary.
func (r *Report) Markdown(unit time.Duration) (string, error) {
	return renderTemplate("markdown", summaryMarkdown, r, unit)
}

// JSON renders the full report.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "    ")
}

// CSV renders one row per version.
func (r *Report) CSV() (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	rows := [][]string{{"case", "version", "exec_time_s", "iqr_s", "cpu_time_s", "time_ratio", "cpu_ratio", "memory_delta_mb", "correct", "score", "grade"}}
	for _, name := range r.Order {
		v := r.Versions[name]
		row := []string{r.Case, v.Name, ftoa(v.ExecTime), ftoa(v.IQR), ftoa(v.CPUTime)}
		if v.Comparison != nil && v.Score != nil {
			row = append(row,
				ftoa(v.Comparison.TimeRatio),
				ftoa(v.Comparison.CPURatio),
				ftoa(v.Comparison.MemoryDeltaMB),
				strconv.FormatBool(v.Comparison.Correct),
				ftoa(v.Score.Total),
				string(v.Score.Grade),
			)
		} else {
			row = append(row, "", "", "", "", "", "")
		}
		rows = append(rows, row)
	}
	if err := w.WriteAll(rows); err != nil {
		return "", err
	}
	return b.String(), nil
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FileStem is the report file name without extension, like
// report_LIST_LOOKUP_1718000000.
func (r *Report) FileStem() string {
	return format("report_${case}_${unix}", map[string]string{
		"case": safeFileName(r.Case),
		"unix": strconv.FormatInt(r.Started.Unix(), 10),
	})
}

var formatExtensions = map[string]string{
	"json":     "json",
	"text":     "txt",
	"markdown": "md",
	"csv":      "csv",
}

// Export writes the report to dir in every requested format. It keeps going
// after a failed format and returns the written paths plus all errors.
func (r *Report) Export(formats []string, dir string, unit time.Duration) ([]string, error) {
	if len(formats) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, err
	}

	var (
		written []string
		errs    error
	)
	for _, f := range formats {
		var (
			text string
			err  error
		)
		switch f {
		case "json":
			var data []byte
			data, err = r.JSON()
			text = string(data)
		case "text":
			text, err = r.Text(unit)
		case "markdown":
			text, err = r.Markdown(unit)
		case "csv":
			text, err = r.CSV()
		default:
			err = fmt.Errorf("invalid export format: %s", f)
		}
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s export: %w", f, err))
			continue
		}

		path := filepath.Join(dir, addExtension(r.FileStem(), formatExtensions[f]))
		if err := writeToFile(text, path); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s export: %w", f, err))
			continue
		}
		written = append(written, path)
	}
	return written, errs
}
