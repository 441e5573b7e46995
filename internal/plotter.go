package internal

import (
	"fmt"
	"image/color"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

var colors = []color.RGBA{
	{R: 244, G: 164, B: 96, A: 128},  // SandyBrown
	{R: 135, G: 206, B: 235, A: 128}, // SkyBlue
	{R: 60, G: 179, B: 113, A: 128},  // MediumSeaGreen
	{R: 147, G: 112, B: 219, A: 128}, // MediumPurple
	{R: 255, G: 105, B: 180, A: 128}, // HotPink
	{R: 255, G: 165, B: 0, A: 128},   // Orange
	{R: 32, G: 178, B: 170, A: 128},  // LightSeaGreen
	{R: 100, G: 149, B: 237, A: 128}, // CornflowerBlue
}

var validPlotFormats = []string{"hist", "histogram", "box", "boxplot", "bar", "score"}

// VerifyPlotFormats parses a comma separated list of plot kinds.
func VerifyPlotFormats(formats string) ([]string, error) {
	formats = strings.TrimSpace(strings.ToLower(formats))
	switch formats {
	case "", "none":
		return nil, nil
	case "all":
		return []string{"histogram", "boxplot", "bar", "score"}, nil
	}
	formatList := strings.Split(formats, ",")
	for _, f := range formatList {
		if !slices.Contains(validPlotFormats, f) {
			return nil, fmt.Errorf("invalid plot format: %s", f)
		}
	}
	return formatList, nil
}

func unitName(unit time.Duration) string {
	return strings.TrimPrefix(unitSuffix(unit), " ")
}

// trialValues converts the per-trial times of v into unit.
func trialValues(v *VersionReport, unit time.Duration) plotter.Values {
	vals := make(plotter.Values, len(v.Times))
	for i, s := range v.Times {
		vals[i] = inUnit(time.Duration(s*float64(time.Second)), unit)
	}
	return vals
}

func histogram(r *Report, unit time.Duration, path string) error {
	p := plot.New()
	p.Title.Text = r.Case + " trial times"
	p.X.Label.Text = unitName(unit)

	for i, name := range r.Order {
		v := r.Versions[name]
		if len(v.Times) == 0 {
			continue
		}
		h, err := plotter.NewHist(trialValues(v, unit), 16)
		if err != nil {
			return err
		}
		h.FillColor = colors[i%len(colors)]
		p.Legend.Add(name, h)
		p.Add(h)
	}
	p.Legend.Top = true

	return p.Save(4*vg.Inch, 4*vg.Inch, path)
}

func boxPlot(r *Report, unit time.Duration, path string) error {
	p := plot.New()
	p.Title.Text = r.Case + " trial times"
	p.Y.Label.Text = unitName(unit)

	w := vg.Points(20)
	var names []string
	for _, name := range r.Order {
		v := r.Versions[name]
		if len(v.Times) == 0 {
			continue
		}
		b, err := plotter.NewBoxPlot(w, float64(len(names)), trialValues(v, unit))
		if err != nil {
			return err
		}
		b.FillColor = colors[len(names)%len(colors)]
		p.Add(b)
		names = append(names, name)
	}
	p.NominalX(names...)

	width := max(3, len(names))
	return p.Save(font.Length(width)*vg.Inch, 4*vg.Inch, path)
}

func barPlot(r *Report, unit time.Duration, path string) error {
	p := plot.New()
	p.Title.Text = r.Case
	p.Y.Label.Text = fmt.Sprintf("Median time (in %s)", unitName(unit))

	vals := make(plotter.Values, len(r.Order))
	for i, name := range r.Order {
		vals[i] = inUnit(time.Duration(r.Versions[name].ExecTime*float64(time.Second)), unit)
	}
	bars, err := plotter.NewBarChart(vals, vg.Points(20))
	if err != nil {
		return err
	}
	bars.LineStyle.Width = vg.Length(0)
	bars.Color = plotutil.Color(0)
	p.Add(bars)
	p.NominalX(r.Order...)

	width := max(3, len(r.Order))
	return p.Save(font.Length(width)*vg.Inch, 3*vg.Inch, path)
}

func scorePlot(r *Report, path string) error {
	variants := r.Variants()
	p := plot.New()
	p.Title.Text = r.Case + " scores"
	p.Y.Label.Text = "Score"
	p.Y.Min, p.Y.Max = 0, 100

	vals := make(plotter.Values, len(variants))
	names := make([]string, len(variants))
	for i, v := range variants {
		vals[i] = v.Score.Total
		names[i] = v.Name
	}
	bars, err := plotter.NewBarChart(vals, vg.Points(20))
	if err != nil {
		return err
	}
	bars.LineStyle.Width = vg.Length(0)
	bars.Color = plotutil.Color(1)
	p.Add(bars)
	p.NominalX(names...)

	width := max(3, len(variants))
	return p.Save(font.Length(width)*vg.Inch, 3*vg.Inch, path)
}

// Plot renders each requested chart for r into dir as PNG and returns the
// written paths.
func Plot(plotFormats []string, r *Report, dir string, unit time.Duration) ([]string, error) {
	var (
		written []string
		errs    error
	)
	for _, plotFormat := range plotFormats {
		var (
			kind string
			err  error
		)
		switch plotFormat {
		case "hist", "histogram":
			kind = "hist"
		case "box", "boxplot":
			kind = "box"
		case "bar":
			kind = "bar"
		case "score":
			kind = "score"
		default:
			errs = multierr.Append(errs, fmt.Errorf("invalid plot format: %s", plotFormat))
			continue
		}
		path := filepath.Join(dir, addExtension(r.FileStem()+"_"+kind, "png"))
		if slices.Contains(written, path) {
			continue
		}
		switch kind {
		case "hist":
			err = histogram(r, unit, path)
		case "box":
			err = boxPlot(r, unit, path)
		case "bar":
			err = barPlot(r, unit, path)
		case "score":
			if len(r.Variants()) == 0 {
				continue
			}
			err = scorePlot(r, path)
		}
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s plot: %w", kind, err))
			continue
		}
		written = append(written, path)
	}
	return written, errs
}
