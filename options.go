package voltplot

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	StyleLine    = "line"
	StyleScatter = "scatter"
)

var ErrInvalidOptions = errors.New("invalid plot options")

// PlotOptions describes how the Series is drawn. It can be loaded from a YAML
// file with LoadPlotOptions and then overridden from the command line.
type PlotOptions struct {
	Title  string   `yaml:"title"`
	XLabel string   `yaml:"x_label"`
	YLabel string   `yaml:"y_label"`
	YUnit  string   `yaml:"y_unit"`
	YMin   *float64 `yaml:"y_min,omitempty"`
	YMax   *float64 `yaml:"y_max,omitempty"`

	// Either StyleLine or StyleScatter.
	Style string `yaml:"style"`

	// In points.
	LineWidth  float64 `yaml:"line_width"`
	MarkerSize float64 `yaml:"marker_size"`

	DPI int `yaml:"dpi"`

	// Figure size in inches.
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`

	Grid bool `yaml:"grid"`
}

func DefaultPlotOptions() PlotOptions {
	return PlotOptions{
		XLabel:     "Time",
		YLabel:     "Voltage",
		YUnit:      "V",
		Style:      StyleLine,
		LineWidth:  0.5,
		MarkerSize: 2,
		DPI:        200,
		Width:      6.4,
		Height:     4.8,
		Grid:       true,
	}
}

func (o PlotOptions) Validate() error {
	switch o.Style {
	case StyleLine, StyleScatter:
	default:
		return fmt.Errorf("%w: unknown style %q", ErrInvalidOptions, o.Style)
	}

	if o.DPI <= 0 {
		return fmt.Errorf("%w: dpi must be positive, got %d", ErrInvalidOptions, o.DPI)
	}

	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("%w: figure size must be positive, got %vx%v", ErrInvalidOptions, o.Width, o.Height)
	}

	if o.LineWidth <= 0 {
		return fmt.Errorf("%w: line width must be positive, got %v", ErrInvalidOptions, o.LineWidth)
	}

	if o.MarkerSize <= 0 {
		return fmt.Errorf("%w: marker size must be positive, got %v", ErrInvalidOptions, o.MarkerSize)
	}

	if o.YMin != nil && o.YMax != nil && *o.YMin >= *o.YMax {
		return fmt.Errorf("%w: y_min (%v) must be less than y_max (%v)", ErrInvalidOptions, *o.YMin, *o.YMax)
	}

	return nil
}

// The Y axis label with its unit, e.g. "Voltage (V)".
func (o PlotOptions) YAxisLabel() string {
	if o.YUnit == "" {
		return o.YLabel
	}

	return fmt.Sprintf("%s (%s)", o.YLabel, o.YUnit)
}

// LoadPlotOptions reads a YAML file on top of DefaultPlotOptions. Keys missing
// from the file keep their default value.
func LoadPlotOptions(path string) (PlotOptions, error) {
	c, err := os.ReadFile(path)
	if err != nil {
		return PlotOptions{}, fmt.Errorf("failed to read plot options %q: %w", path, err)
	}

	opts := DefaultPlotOptions()
	err = yaml.Unmarshal(c, &opts)
	if err != nil {
		return PlotOptions{}, fmt.Errorf("failed to parse plot options %q: %w", path, err)
	}

	err = opts.Validate()
	if err != nil {
		return PlotOptions{}, err
	}

	return opts, nil
}
