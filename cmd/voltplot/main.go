package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/cactusdynamics/voltplot"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Options holds the command line of voltplot. Options left at their zero
// value do not override the defaults or the --config file.
type Options struct {
	Config     string  `short:"c" long:"config" env:"VOLTPLOT_CONFIG" description:"YAML file with plot options"`
	Style      string  `short:"s" long:"style" env:"VOLTPLOT_STYLE" choice:"line" choice:"scatter" description:"Plot style"`
	Title      string  `short:"t" long:"title" description:"Figure title"`
	XLabel     string  `long:"x-label" description:"X axis label"`
	YLabel     string  `long:"y-label" description:"Y axis label"`
	DPI        int     `long:"dpi" env:"VOLTPLOT_DPI" description:"Figure resolution in dots per inch"`
	LineWidth  float64 `long:"line-width" description:"Line width in points"`
	MarkerSize float64 `long:"marker-size" description:"Scatter marker size in points"`
	Window     int     `short:"w" long:"window" env:"VOLTPLOT_WINDOW" description:"Only plot the last N readings (0 plots all)"`
	NoShow     bool    `long:"no-show" env:"VOLTPLOT_NO_SHOW" description:"Do not display the figure"`
	Verbose    bool    `short:"v" long:"verbose" description:"Enable debug logging"`

	Args struct {
		Input  string `positional-arg-name:"input_path" required:"yes" description:"Readings file, one \"<timestamp> <voltage>\" per line"`
		Output string `positional-arg-name:"output_path" description:"Also save the figure here; the extension picks the format"`
	} `positional-args:"yes"`
}

// Merges defaults, the --config file and the command line, in that order.
func buildPlotOptions(opts Options) (voltplot.PlotOptions, error) {
	plotOpts := voltplot.DefaultPlotOptions()

	if opts.Config != "" {
		var err error
		plotOpts, err = voltplot.LoadPlotOptions(opts.Config)
		if err != nil {
			return voltplot.PlotOptions{}, err
		}
	}

	if opts.Style != "" {
		plotOpts.Style = opts.Style
	}
	if opts.Title != "" {
		plotOpts.Title = opts.Title
	}
	if opts.XLabel != "" {
		plotOpts.XLabel = opts.XLabel
	}
	if opts.YLabel != "" {
		plotOpts.YLabel = opts.YLabel
	}
	if opts.DPI != 0 {
		plotOpts.DPI = opts.DPI
	}
	if opts.LineWidth != 0 {
		plotOpts.LineWidth = opts.LineWidth
	}
	if opts.MarkerSize != 0 {
		plotOpts.MarkerSize = opts.MarkerSize
	}

	if err := plotOpts.Validate(); err != nil {
		return voltplot.PlotOptions{}, err
	}

	return plotOpts, nil
}

func run(ctx context.Context, opts Options) error {
	if opts.Window < 0 {
		return fmt.Errorf("window must not be negative, got %d", opts.Window)
	}

	plotOpts, err := buildPlotOptions(opts)
	if err != nil {
		return err
	}

	series, err := voltplot.ReadSeries(ctx, opts.Args.Input, opts.Window)
	if err != nil {
		return err
	}

	logrus.WithField("tag", "voltplot").
		WithFields(voltplot.Summarize(series).Fields()).
		Info("series summary")

	p, err := voltplot.NewPlot(series, plotOpts)
	if err != nil {
		return err
	}

	if opts.Args.Output != "" {
		if err := voltplot.SavePlot(p, plotOpts, opts.Args.Output); err != nil {
			return fmt.Errorf("failed to save figure: %w", err)
		}
	}

	if opts.NoShow {
		return nil
	}

	return voltplot.DisplayPlot(p, plotOpts)
}

// Loads VOLTPLOT_* defaults from a .env file. A missing file is not an error
// and variables already set in the environment win.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func main() {
	if err := loadDotEnv(".env"); err != nil {
		logrus.WithError(err).Warn("failed to load .env file")
	}

	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if err := run(context.Background(), opts); err != nil {
		logrus.WithError(err).Fatal("voltplot failed")
	}
}
