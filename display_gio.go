//go:build !nogui

package voltplot

import (
	"os"

	"gioui.org/app"
	"gioui.org/io/key"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/unit"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vggio"
)

type PlotWidget struct {
	Plot *plot.Plot
	DPI  int
}

// Redraws the plot to fill the available space on every frame.
func (p *PlotWidget) Layout(gtx layout.Context) layout.Dimensions {
	size := gtx.Constraints.Max
	wAdjusted := vg.Points(float64(size.X) * vg.Inch.Points() / float64(p.DPI))
	hAdjusted := vg.Points(float64(size.Y) * vg.Inch.Points() / float64(p.DPI))
	cnv := vggio.New(gtx, wAdjusted, hAdjusted, vggio.UseDPI(p.DPI))
	p.Plot.Draw(draw.New(cnv))
	return layout.Dimensions{Size: size}
}

// DisplayPlot opens a window showing p and blocks. Q or Escape closes the
// window, which terminates the process.
func DisplayPlot(p *plot.Plot, opts PlotOptions) error {
	plotWidget := &PlotWidget{
		Plot: p,
		DPI:  opts.DPI,
	}

	title := opts.Title
	if title == "" {
		title = "voltplot"
	}

	logger := logrus.WithField("tag", "Display")

	go func() {
		win := app.NewWindow(
			app.Title(title),
			app.Size(
				unit.Px(float32(opts.Width*float64(opts.DPI))),
				unit.Px(float32(opts.Height*float64(opts.DPI))),
			),
		)
		defer win.Close()

		for e := range win.Events() {
			switch e := e.(type) {
			case system.FrameEvent:
				ops := new(op.Ops)
				gtx := layout.NewContext(ops, e)
				layout.UniformInset(unit.Dp(10)).Layout(gtx, plotWidget.Layout)
				e.Frame(ops)

			case key.Event:
				switch e.Name {
				case "Q", key.NameEscape:
					win.Close()
				}

			case system.DestroyEvent:
				if e.Err != nil {
					logger.WithError(e.Err).Error("window closed with error")
					os.Exit(1)
				}
				logger.Debug("window closed")
				os.Exit(0)
			}
		}
	}()

	app.Main()
	return nil
}
