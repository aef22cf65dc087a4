package voltplot

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Series is a plotter.XYer so it can be handed to gonum directly.
func (s Series) XY(i int) (float64, float64) {
	return float64(s.RelativeTimes[i]), s.Volts[i]
}

// NewPlot builds the figure for a Series.
func NewPlot(s Series, opts PlotOptions) (*plot.Plot, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if s.Len() == 0 {
		return nil, ErrNoReadings
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YAxisLabel()

	if opts.Grid {
		p.Add(plotter.NewGrid())
	}

	data, err := newDataPlotter(s, opts)
	if err != nil {
		return nil, err
	}
	p.Add(data)

	if opts.YMin != nil {
		p.Y.Min = *opts.YMin
	}
	if opts.YMax != nil {
		p.Y.Max = *opts.YMax
	}

	return p, nil
}

func newDataPlotter(s Series, opts PlotOptions) (plot.Plotter, error) {
	switch opts.Style {
	case StyleScatter:
		scatter, err := plotter.NewScatter(s)
		if err != nil {
			return nil, fmt.Errorf("failed to create scatter plot: %w", err)
		}
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		scatter.GlyphStyle.Radius = vg.Points(opts.MarkerSize / 2)
		return scatter, nil

	default:
		line, err := plotter.NewLine(s)
		if err != nil {
			return nil, fmt.Errorf("failed to create line plot: %w", err)
		}
		line.LineStyle.Width = vg.Points(opts.LineWidth)
		return line, nil
	}
}

var supportedFormats = map[string]bool{
	"eps":  true,
	"jpg":  true,
	"jpeg": true,
	"pdf":  true,
	"png":  true,
	"svg":  true,
	"tif":  true,
	"tiff": true,
}

// Returns the canvas for the given format. Raster formats honour opts.DPI.
func newCanvas(opts PlotOptions, format string) (vg.CanvasWriterTo, error) {
	w := vg.Length(opts.Width) * vg.Inch
	h := vg.Length(opts.Height) * vg.Inch

	switch strings.ToLower(format) {
	case "png":
		return vgimg.PngCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(opts.DPI))}, nil
	case "jpg", "jpeg":
		return vgimg.JpegCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(opts.DPI))}, nil
	case "tif", "tiff":
		return vgimg.TiffCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(opts.DPI))}, nil
	default:
		return draw.NewFormattedCanvas(w, h, format)
	}
}

// WritePlot encodes p in the given format ("png", "svg", "pdf", ...).
func WritePlot(p *plot.Plot, opts PlotOptions, output io.Writer, format string) error {
	c, err := newCanvas(opts, format)
	if err != nil {
		return err
	}

	p.Draw(draw.New(c))
	_, err = c.WriteTo(output)
	return err
}

func combineErrors(errors ...error) (err error) {
	for _, e := range errors {
		switch {
		case e == nil:
			// ignore
		case err == nil:
			err = e
		default:
			err = multierror.Append(err, e)
		}
	}
	return err
}

func WriteClosePlot(p *plot.Plot, opts PlotOptions, output io.WriteCloser, format string) (err error) {
	defer func() {
		e := output.Close()
		err = combineErrors(err, e)
	}()
	return WritePlot(p, opts, output, format)
}

// The format is taken from the extension of path, png if there is none.
func formatFromPath(path string) string {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	if format == "" {
		return "png"
	}
	return strings.ToLower(format)
}

// SavePlot writes p to path, picking the format from the file extension.
func SavePlot(p *plot.Plot, opts PlotOptions, path string) error {
	format := formatFromPath(path)

	if !supportedFormats[format] {
		return fmt.Errorf("unsupported image format %q for %s", format, path)
	}

	output, err := os.Create(path)
	if err != nil {
		return err
	}

	err = WriteClosePlot(p, opts, output, format)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"tag":    "Render",
		"path":   path,
		"format": format,
	}).Info("saved figure")
	return nil
}
