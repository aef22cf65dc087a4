package voltplot

import (
	"context"
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeReadings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "readings.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewSeries(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		s := NewSeries(nil)
		assert.Equal(t, 0, s.Len())
		assert.Empty(t, s.Volts)
	})

	t.Run("offset from first reading", func(t *testing.T) {
		s := NewSeries([]Reading{
			{Timestamp: 1000, Voltage: 3.3},
			{Timestamp: 990, Voltage: 3.2},
			{Timestamp: 1010, Voltage: 3.1},
		})
		// Order is kept even when timestamps go backwards.
		assert.Equal(t, []int64{0, -10, 10}, s.RelativeTimes)
		assert.Equal(t, []float64{3.3, 3.2, 3.1}, s.Volts)
	})
}

func TestParseSeries(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		window    int
		times     []int64
		volts     []float64
		expectErr error
	}{
		{
			name:  "example",
			in:    "100 1.5\n105 2.0\n110 1.8",
			times: []int64{0, 5, 10},
			volts: []float64{1.5, 2.0, 1.8},
		}, {
			name:  "trailing newline",
			in:    "100 1.5\n105 2.0\n110 1.8\n",
			times: []int64{0, 5, 10},
			volts: []float64{1.5, 2.0, 1.8},
		}, {
			name:  "several trailing blank lines",
			in:    "100 1.5\n105 2.0\n\n\n",
			times: []int64{0, 5},
			volts: []float64{1.5, 2.0},
		}, {
			name:  "single record",
			in:    "1679000000123 4.95\n",
			times: []int64{0},
			volts: []float64{4.95},
		}, {
			name:   "window keeps last readings",
			in:     "100 1\n101 2\n102 3\n103 4\n104 5\n",
			window: 2,
			times:  []int64{3, 4},
			volts:  []float64{4, 5},
		}, {
			name:   "window larger than input",
			in:     "100 1\n101 2\n",
			window: 10,
			times:  []int64{0, 1},
			volts:  []float64{1, 2},
		}, {
			name:   "window of one",
			in:     "100 1\n101 2\n",
			window: 1,
			times:  []int64{1},
			volts:  []float64{2},
		}, {
			name:      "empty input",
			in:        "",
			expectErr: ErrNoReadings,
		}, {
			name:      "only blank lines",
			in:        "\n\n",
			expectErr: ErrNoReadings,
		}, {
			name:      "empty line in the middle",
			in:        "100 1.5\n\n110 1.8\n",
			expectErr: ErrFormat,
		}, {
			name:      "non-numeric voltage",
			in:        "100 abc\n",
			expectErr: ErrNumber,
		}, {
			name:      "nan voltage",
			in:        "100 1.5\n105 nan\n110 1.8\n",
			expectErr: ErrNumber,
		}, {
			name:      "infinite voltage",
			in:        "100 1.5\n105 -inf\n",
			expectErr: ErrNumber,
		}, {
			name:  "extreme but representable offsets",
			in:    "-4611686018427387904 1\n4611686018427387903 2\n",
			times: []int64{0, 9223372036854775807},
			volts: []float64{1, 2},
		}, {
			name:      "relative time overflows",
			in:        "-9223372036854775808 1\n9223372036854775807 2\n",
			expectErr: ErrNumber,
		}, {
			name:      "missing voltage",
			in:        "100 1.5\n105\n",
			expectErr: ErrFormat,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			s, err := ParseSeries(context.Background(), strings.NewReader(tc.in), tc.window)

			if tc.expectErr != nil {
				assert.ErrorIs(err, tc.expectErr)
				assert.Equal(0, s.Len())
				return
			}

			require.NoError(t, err)
			assert.Equal(tc.times, s.RelativeTimes)
			assert.Equal(tc.volts, s.Volts)
			assert.Equal(len(s.RelativeTimes), len(s.Volts))
		})
	}
}

func TestParseSeriesFirstIsZero(t *testing.T) {
	inputs := []string{
		"5 0\n",
		"-20 1\n-10 2\n",
		"42 1.5\n41 1.6\n50 1.7\n",
	}

	for _, in := range inputs {
		s, err := ParseSeries(context.Background(), strings.NewReader(in), 0)
		require.NoError(t, err)
		assert.Equal(t, int64(0), s.RelativeTimes[0], in)
		assert.Equal(t, strings.Count(in, "\n"), s.Len(), in)
	}
}

func TestParseSeriesOverflowNamesLine(t *testing.T) {
	in := "9223372036854775807 1\n9223372036854775806 2\n-2 3\n"

	_, err := ParseSeries(context.Background(), strings.NewReader(in), 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNumber)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr), "expected *ParseError, got %T", err)
	assert.Equal(t, 3, parseErr.LineNum)
	assert.Equal(t, "-2 3", parseErr.Line)
}

func TestRelativeTime(t *testing.T) {
	tests := []struct {
		timestamp, offset int64
		expect            int64
		ok                bool
	}{
		{timestamp: 110, offset: 100, expect: 10, ok: true},
		{timestamp: 90, offset: 100, expect: -10, ok: true},
		{timestamp: math.MaxInt64, offset: 0, expect: math.MaxInt64, ok: true},
		{timestamp: math.MinInt64, offset: 0, expect: math.MinInt64, ok: true},
		{timestamp: math.MaxInt64, offset: -1, ok: false},
		{timestamp: math.MinInt64, offset: 1, ok: false},
		{timestamp: -1, offset: math.MaxInt64, expect: math.MinInt64, ok: true},
	}

	for _, tc := range tests {
		got, ok := relativeTime(tc.timestamp, tc.offset)
		assert.Equal(t, tc.ok, ok, "%d - %d", tc.timestamp, tc.offset)
		if tc.ok {
			assert.Equal(t, tc.expect, got, "%d - %d", tc.timestamp, tc.offset)
		}
	}
}

func TestReadSeries(t *testing.T) {
	t.Run("idempotent", func(t *testing.T) {
		path := writeReadings(t, "100 1.5\n105 2.0\n110 1.8\n")

		first, err := ReadSeries(context.Background(), path, 0)
		require.NoError(t, err)
		second, err := ReadSeries(context.Background(), path, 0)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, []int64{0, 5, 10}, first.RelativeTimes)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadSeries(context.Background(), filepath.Join(t.TempDir(), "nope.txt"), 0)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("parse error names the file and line", func(t *testing.T) {
		path := writeReadings(t, "100 1.5\n105 2.0\n\n110 1.8\n")

		_, err := ReadSeries(context.Background(), path, 0)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrFormat)
		assert.Contains(t, err.Error(), path)

		var parseErr *ParseError
		require.True(t, errors.As(err, &parseErr))
		assert.Equal(t, 3, parseErr.LineNum)
	})

	t.Run("non-numeric token", func(t *testing.T) {
		path := writeReadings(t, "100 abc\n")

		_, err := ReadSeries(context.Background(), path, 0)
		assert.ErrorIs(t, err, ErrNumber)
	})
}
