package report

import (
	"errors"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// ErrEmptyTrace is returned when there is nothing to plot.
var ErrEmptyTrace = errors.New("trace has no points")

// PlotOptions configures PlotTrace. Zero sizes default to 6x4 inches.
type PlotOptions struct {
	Title  string
	Width  vg.Length
	Height vg.Length

	// Measure plots the convergence measure on a log scale instead of the
	// objective value. Non-positive measures are skipped.
	Measure bool
}

// PlotTrace draws one line per trace segment against the iteration number
// and saves the figure to path. The image format follows the file
// extension (.png, .svg, .pdf, ...).
func PlotTrace(path string, opts PlotOptions, traces ...*Trace) error {
	if opts.Width == 0 {
		opts.Width = 6 * vg.Inch
	}
	if opts.Height == 0 {
		opts.Height = 4 * vg.Inch
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "objective"
	if opts.Measure {
		p.Y.Label.Text = "convergence measure"
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	p.Add(plotter.NewGrid())

	lines := 0
	for _, tr := range traces {
		segments := tr.Segments()
		for s, seg := range segments {
			pts := make(plotter.XYs, 0, len(seg))
			for _, it := range seg {
				y := it.F
				if opts.Measure {
					if !(it.GradNorm > 0) {
						continue
					}
					y = it.GradNorm
				}
				pts = append(pts, plotter.XY{X: float64(it.Iter), Y: y})
			}
			if len(pts) == 0 {
				continue
			}
			l, err := plotter.NewLine(pts)
			if err != nil {
				return fmt.Errorf("failed to plot %s: %w", tr.Name, err)
			}
			l.Color = plotutil.Color(lines)
			l.Dashes = plotutil.Dashes(lines / len(plotutil.DefaultColors))
			p.Add(l)

			name := tr.Name
			if len(segments) > 1 {
				name = fmt.Sprintf("%s #%d", tr.Name, s+1)
			}
			p.Legend.Add(name, l)
			lines++
		}
	}
	if lines == 0 {
		return ErrEmptyTrace
	}

	if err := p.Save(opts.Width, opts.Height, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}
