package chart

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"imputelab/domain/run"
	"imputelab/domain/stats"
	"imputelab/internal"
	"imputelab/internal/errors"
	"imputelab/internal/report"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// bandAlpha is the opacity of the mean±std shading
const bandAlpha = 60

// RendererConfig controls where and how large charts are written
type RendererConfig struct {
	OutputDir string
	Prefix    string // prepended to every file name, usually the short run id
	Width     vg.Length
	Height    vg.Length
}

// DefaultRendererConfig returns an 8×6 inch layout in dir
func DefaultRendererConfig(dir string) RendererConfig {
	return RendererConfig{
		OutputDir: dir,
		Width:     8 * vg.Inch,
		Height:    6 * vg.Inch,
	}
}

// Renderer implements ports.ChartRendererPort by writing PNG files with gonum/plot
type Renderer struct {
	config RendererConfig
	logger *internal.Logger
}

// NewRenderer creates a chart renderer
func NewRenderer(config RendererConfig, logger *internal.Logger) *Renderer {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if config.Width == 0 {
		config.Width = 8 * vg.Inch
	}
	if config.Height == 0 {
		config.Height = 6 * vg.Inch
	}
	return &Renderer{config: config, logger: logger.With("Chart")}
}

// RenderLineComparison draws loss or goodness of fit against the missing percentage:
// a dashed baseline, then one line with a shaded mean±std band per method.
func (r *Renderer) RenderLineComparison(table *stats.ResultTable, metric stats.Metric) (string, error) {
	name := fmt.Sprintf("mcar_%s", metric)
	series := report.SeriesFor(table, metric)
	if len(series) == 0 {
		return "", errors.RenderError(name, errors.InvalidInput("no methods to plot"))
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("MCAR imputation: %s", metric.Label())
	p.X.Label.Text = "missing values (%)"
	p.Y.Label.Text = metric.Label()
	p.Add(plotter.NewGrid())

	xmin, xmax := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, x := range s.Xs() {
			xmin = math.Min(xmin, x)
			xmax = math.Max(xmax, x)
		}
	}

	base := table.Baseline.Get(metric).Mean
	baseline, err := plotter.NewLine(plotter.XYs{{X: xmin, Y: base}, {X: xmax, Y: base}})
	if err != nil {
		return "", errors.RenderError(name, err)
	}
	baseline.Color = color.Black
	baseline.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	p.Add(baseline)
	p.Legend.Add(stats.BaselineKey, baseline)

	for i, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		c := plotutil.Color(i)

		band, err := plotter.NewPolygon(bandOutline(s))
		if err != nil {
			return "", errors.RenderError(name, err)
		}
		band.Color = withAlpha(c, bandAlpha)
		band.LineStyle.Width = 0
		p.Add(band)

		means := make(plotter.XYs, len(s.Points))
		for k, pt := range s.Points {
			means[k] = plotter.XY{X: pt.X, Y: pt.Mean}
		}
		line, err := plotter.NewLine(means)
		if err != nil {
			return "", errors.RenderError(name, err)
		}
		line.Color = c
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(s.Name, line)
	}
	p.Legend.Top = metric == stats.Loss

	return r.save(p, name)
}

// RenderBarComparison draws one horizontal bar per MNAR method, baseline first,
// with std whiskers.
func (r *Renderer) RenderBarComparison(table *stats.MNARTable, metric stats.Metric) (string, error) {
	name := fmt.Sprintf("mnar_%s", metric)
	bars := table.Bars(metric)
	if len(bars) == 0 {
		return "", errors.RenderError(name, errors.InvalidInput("no methods to plot"))
	}

	values := make(plotter.Values, len(bars))
	labels := make([]string, len(bars))
	points := errPoints{
		XYs:     make(plotter.XYs, len(bars)),
		XErrors: make(plotter.XErrors, len(bars)),
	}
	for i, b := range bars {
		values[i] = b.Aggregate.Mean
		labels[i] = b.Label
		points.XYs[i] = plotter.XY{X: b.Aggregate.Mean, Y: float64(i)}
		points.XErrors[i].Low = b.Aggregate.StdDev
		points.XErrors[i].High = b.Aggregate.StdDev
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("MNAR imputation: %s", metric.Label())
	p.X.Label.Text = metric.Label()

	chart, err := plotter.NewBarChart(values, vg.Points(24))
	if err != nil {
		return "", errors.RenderError(name, err)
	}
	chart.Horizontal = true
	chart.Color = plotutil.Color(0)
	chart.LineStyle.Width = vg.Length(0)
	p.Add(chart)

	whiskers, err := plotter.NewXErrorBars(points)
	if err != nil {
		return "", errors.RenderError(name, err)
	}
	whiskers.Color = color.Black
	p.Add(whiskers)
	p.NominalY(labels...)

	return r.save(p, name)
}

// RenderReport writes the four comparison charts of a run and returns their paths
func (r *Renderer) RenderReport(rep *run.Report) ([]string, error) {
	var paths []string
	if rep.MCAR != nil {
		for _, m := range stats.Metrics {
			path, err := r.RenderLineComparison(rep.MCAR, m)
			if err != nil {
				return paths, err
			}
			paths = append(paths, path)
		}
	}
	if rep.MNAR != nil {
		for _, m := range stats.Metrics {
			path, err := r.RenderBarComparison(rep.MNAR, m)
			if err != nil {
				return paths, err
			}
			paths = append(paths, path)
		}
	}
	return paths, nil
}

func (r *Renderer) save(p *plot.Plot, name string) (string, error) {
	if err := os.MkdirAll(r.config.OutputDir, 0o755); err != nil {
		return "", errors.RenderError(name, err)
	}
	file := name + ".png"
	if r.config.Prefix != "" {
		file = r.config.Prefix + "_" + file
	}
	path := filepath.Join(r.config.OutputDir, file)
	if err := p.Save(r.config.Width, r.config.Height, path); err != nil {
		return "", errors.RenderError(name, err)
	}
	r.logger.Info("wrote %s", path)
	return path, nil
}

// errPoints pairs bar positions with their horizontal error extents
type errPoints struct {
	plotter.XYs
	plotter.XErrors
}

// bandOutline walks the upper edge left to right and the lower edge back
func bandOutline(s report.Series) plotter.XYs {
	n := len(s.Points)
	outline := make(plotter.XYs, 0, 2*n)
	for _, pt := range s.Points {
		outline = append(outline, plotter.XY{X: pt.X, Y: pt.Upper})
	}
	for k := n - 1; k >= 0; k-- {
		outline = append(outline, plotter.XY{X: s.Points[k].X, Y: s.Points[k].Lower})
	}
	return outline
}

func withAlpha(c color.Color, alpha uint8) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: alpha}
}
