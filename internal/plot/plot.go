// Package plot renders histograms and scatter plots of dataset variables,
// either to an image file or to the system image viewer.
package plot

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/browser"
	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/KaramelBytes/dfstats-cli/internal/dataset"
	"github.com/KaramelBytes/dfstats-cli/internal/utils"
)

const (
	DefaultHistogramPath = "plot_var.png"
	DefaultScatterPath   = "plot_two_vars.png"
	DefaultBins          = 30
)

var (
	skyBlue = color.RGBA{R: 135, G: 206, B: 235, A: 255}
	green   = color.RGBA{G: 128, A: 255}
)

// display opens a rendered image; replaced in tests.
var display = browser.OpenFile

// Interactive plots stay on disk while the viewer reads them; files older
// than tempMaxAge are swept on the next interactive render.
const (
	tempPrefix = "dfstats-"
	tempMaxAge = time.Hour
)

// Options controls rendering and output.
type Options struct {
	// Interactive opens the plot in the system viewer instead of writing Path.
	Interactive bool
	// Path of the image file; the extension selects the format.
	Path string
	// Width and Height in inches; 0 means 6.4 x 4.8.
	Width, Height float64
	// Bins for histograms; 0 means 30.
	Bins int
}

func (o Options) size() (vg.Length, vg.Length) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = 6.4
	}
	if h <= 0 {
		h = 4.8
	}
	return vg.Length(w) * vg.Inch, vg.Length(h) * vg.Inch
}

// Histogram plots the distribution of a numeric variable.
func Histogram(ds *dataset.Dataset, variable string, opt Options) error {
	p, err := histogram(ds, variable, opt.Bins)
	if err != nil {
		return err
	}
	return output(p, opt, DefaultHistogramPath)
}

// Scatter plots y against x over rows where both values are present.
func Scatter(ds *dataset.Dataset, x, y string, opt Options) error {
	p, err := scatter(ds, x, y)
	if err != nil {
		return err
	}
	return output(p, opt, DefaultScatterPath)
}

// RenderHistogram writes the histogram of variable to w in the given format (png, svg, ...).
func RenderHistogram(w io.Writer, ds *dataset.Dataset, variable, format string, opt Options) error {
	p, err := histogram(ds, variable, opt.Bins)
	if err != nil {
		return err
	}
	return render(w, p, format, opt)
}

// RenderScatter writes the scatter plot of x and y to w in the given format.
func RenderScatter(w io.Writer, ds *dataset.Dataset, x, y, format string, opt Options) error {
	p, err := scatter(ds, x, y)
	if err != nil {
		return err
	}
	return render(w, p, format, opt)
}

func histogram(ds *dataset.Dataset, variable string, bins int) (*gplot.Plot, error) {
	vals, err := ds.Floats(variable)
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("%w: %q", dataset.ErrNoValues, variable)
	}
	if bins <= 0 {
		bins = DefaultBins
	}
	p := gplot.New()
	p.Title.Text = fmt.Sprintf("Distribution of %s", variable)
	p.X.Label.Text = variable
	p.Y.Label.Text = "Frequency"
	h, err := plotter.NewHist(plotter.Values(vals), bins)
	if err != nil {
		return nil, fmt.Errorf("histogram %q: %w", variable, err)
	}
	h.FillColor = skyBlue
	h.LineStyle.Color = color.Black
	p.Add(h)
	return p, nil
}

func scatter(ds *dataset.Dataset, x, y string) (*gplot.Plot, error) {
	xs, err := ds.RawFloats(x)
	if err != nil {
		return nil, err
	}
	ys, err := ds.RawFloats(y)
	if err != nil {
		return nil, err
	}
	pts := make(plotter.XYs, 0, len(xs))
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		pts = append(pts, plotter.XY{X: xs[i], Y: ys[i]})
	}
	if len(pts) == 0 {
		return nil, fmt.Errorf("%w: no rows with both %q and %q", dataset.ErrNoValues, x, y)
	}
	p := gplot.New()
	p.Title.Text = fmt.Sprintf("Scatter Plot of %s vs %s", x, y)
	p.X.Label.Text = x
	p.Y.Label.Text = y
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("scatter %q/%q: %w", x, y, err)
	}
	s.GlyphStyle.Color = green
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Radius = vg.Points(3)
	p.Add(s)
	return p, nil
}

func output(p *gplot.Plot, opt Options, defaultPath string) error {
	w, h := opt.size()
	if opt.Interactive {
		ext := filepath.Ext(opt.Path)
		if ext == "" {
			ext = ".png"
		}
		sweepTemp(os.TempDir(), tempMaxAge)
		tmp := filepath.Join(os.TempDir(), tempPrefix+uuid.NewString()+ext)
		if err := p.Save(w, h, tmp); err != nil {
			return fmt.Errorf("render plot: %w", err)
		}
		if err := display(tmp); err != nil {
			return fmt.Errorf("display plot: %w", err)
		}
		return nil
	}
	path := opt.Path
	if path == "" {
		path = defaultPath
	}
	if err := utils.EnsureParentDir(path); err != nil {
		return fmt.Errorf("create plot dir: %w", err)
	}
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}

// sweepTemp removes interactive plot files in dir older than maxAge.
func sweepTemp(dir string, maxAge time.Duration) {
	matches, err := filepath.Glob(filepath.Join(dir, tempPrefix+"*"))
	if err != nil {
		return
	}
	cutoff := time.Now().Add(-maxAge)
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() || info.ModTime().After(cutoff) {
			continue
		}
		_ = os.Remove(m)
	}
}

func render(w io.Writer, p *gplot.Plot, format string, opt Options) error {
	width, height := opt.size()
	format = strings.TrimPrefix(strings.ToLower(format), ".")
	if format == "" {
		format = "png"
	}
	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return fmt.Errorf("render plot: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write plot: %w", err)
	}
	return nil
}
