package voltplot

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
)

// One sample from the readings file.
type Reading struct {
	Timestamp int64
	Voltage   float64
}

// Series is what gets plotted: the time since the first reading and the
// voltage, index-aligned.
type Series struct {
	RelativeTimes []int64
	Volts         []float64
}

func (s Series) Len() int {
	return len(s.RelativeTimes)
}

// NewSeries normalizes readings against the timestamp of the first one. An
// empty slice gives an empty Series. Differences that do not fit in an int64
// wrap around; ParseSeries rejects such input instead.
func NewSeries(readings []Reading) Series {
	if len(readings) == 0 {
		return Series{RelativeTimes: []int64{}, Volts: []float64{}}
	}

	return normalize(readings, readings[0].Timestamp)
}

func normalize(readings []Reading, offset int64) Series {
	series := Series{
		RelativeTimes: make([]int64, 0, len(readings)),
		Volts:         make([]float64, 0, len(readings)),
	}

	for _, reading := range readings {
		series.RelativeTimes = append(series.RelativeTimes, reading.Timestamp-offset)
		series.Volts = append(series.Volts, reading.Voltage)
	}

	return series
}

// Returns timestamp - offset, and false if the subtraction overflows.
func relativeTime(timestamp, offset int64) (int64, bool) {
	d := timestamp - offset
	return d, (timestamp^offset)&(timestamp^d) >= 0
}

// ParseSeries reads every reading from input and returns them as a Series.
//
//   - window: if > 0, only the last window readings are kept. Relative times
//     are still measured from the first reading of the input.
//
// Any malformed line aborts the parse with a *ParseError.
func ParseSeries(ctx context.Context, input io.Reader, window int) (Series, error) {
	lines := NewRelaxedStringReader(input)
	var reader Reader = &ReadingReader{Input: lines}

	var (
		offset   int64
		count    int
		readings []Reading
		ring     *ThreadUnsafeRing[Reading]
	)

	if window > 0 {
		ring = NewRing[Reading](window)
	}

	for {
		reading, err := reader.Read(ctx)
		if err == io.EOF {
			break
		} else if err != nil {
			return Series{}, err
		}

		if count == 0 {
			offset = reading.Timestamp
		}
		count++

		if _, ok := relativeTime(reading.Timestamp, offset); !ok {
			line := lines.Last()
			return Series{}, &ParseError{
				LineNum: line.Num,
				Line:    line.Text,
				Err:     fmt.Errorf("%w: timestamp is too far from the first timestamp %d", ErrNumber, offset),
			}
		}

		if ring != nil {
			ring.Push(reading)
		} else {
			readings = append(readings, reading)
		}
	}

	if count == 0 {
		return Series{}, ErrNoReadings
	}

	if ring != nil {
		readings = ring.ReadAllOrdered()
	}

	return normalize(readings, offset), nil
}

// ReadSeries opens the readings file at path and parses it with ParseSeries.
// The file is closed on every path; a close failure is reported alongside any
// parse error.
func ReadSeries(ctx context.Context, path string, window int) (series Series, re error) {
	logger := logrus.WithFields(logrus.Fields{
		"tag":  "ReadingParser",
		"path": path,
	})

	f, err := os.Open(path)
	if err != nil {
		return Series{}, fmt.Errorf("failed to open readings file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			re = multierror.Append(re, fmt.Errorf("failed to close readings file: %w", err))
		}
	}()

	series, err = ParseSeries(ctx, f, window)
	if err != nil {
		return Series{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	logger.WithField("numReadings", series.Len()).Info("parsed readings")
	return series, nil
}
