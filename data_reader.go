package voltplot

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// The pipeline starts with an io.Reader (the readings file), which is split
// into lines and fields by the RelaxedStringReader. The fields are then
// converted into a Reading by the ReadingReader. ParseSeries drains the
// ReadingReader and normalizes the timestamps into a Series.

var (
	// A line does not have the "<timestamp> <voltage>" shape.
	ErrFormat = errors.New("malformed reading")

	// A field could not be parsed as the expected numeric type.
	ErrNumber = errors.New("invalid number")

	// The input did not contain a single reading.
	ErrNoReadings = errors.New("no readings")
)

// ParseError reports the line that failed to parse. Err wraps either
// ErrFormat or ErrNumber.
type ParseError struct {
	LineNum int
	Line    string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.LineNum, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// A single line of input, split into fields.
type Line struct {
	Num    int // 1-based
	Text   string
	Fields []string
}

// When Read is called, return the next non-blank line.
type StringReader interface {
	Read(context.Context) (Line, error)
}

// When Read is called, return the next Reading.
type Reader interface {
	Read(context.Context) (Reading, error)
}

// Reads an io.Reader line by line and splits every line on runs of spaces or
// tabs. Blank lines at the end of the input are skipped, as files usually end
// with a newline. A blank line followed by more data is a format error.
type RelaxedStringReader struct {
	input   io.Reader
	scanner *bufio.Scanner

	lineCount int

	// First blank line seen since the last non-blank one, 0 if none.
	pendingBlank     int
	pendingBlankText string

	last Line
}

func NewRelaxedStringReader(input io.Reader) *RelaxedStringReader {
	return &RelaxedStringReader{
		input:   input,
		scanner: bufio.NewScanner(input),

		lineCount: 0,
	}
}

// Split on any number of spaces or tabs
var relaxedSplitter = regexp.MustCompile("[ \t]+")

func (r *RelaxedStringReader) Read(ctx context.Context) (Line, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Line{}, err
		}

		if !r.scanner.Scan() {
			if err := r.scanner.Err(); err != nil {
				logrus.WithField("tag", "RelaxedString").WithError(err).Error("unable to read line")
				return Line{}, err
			}

			if r.pendingBlank != 0 {
				logrus.WithFields(logrus.Fields{
					"tag":     "RelaxedString",
					"lineNum": r.pendingBlank,
				}).Debug("ignoring trailing blank lines")
			}

			return Line{}, io.EOF
		}

		r.lineCount++
		text := strings.TrimSuffix(r.scanner.Text(), "\r")

		fields := Filter(relaxedSplitter.Split(text, -1), func(value string) bool {
			return len(value) > 0
		})

		if len(fields) == 0 {
			if r.pendingBlank == 0 {
				r.pendingBlank = r.lineCount
				r.pendingBlankText = text
			}
			continue
		}

		if r.pendingBlank != 0 {
			return Line{}, &ParseError{
				LineNum: r.pendingBlank,
				Line:    r.pendingBlankText,
				Err:     fmt.Errorf("%w: blank line before line %d", ErrFormat, r.lineCount),
			}
		}

		r.last = Line{Num: r.lineCount, Text: text, Fields: fields}
		return r.last, nil
	}
}

// The line most recently returned by Read.
func (r *RelaxedStringReader) Last() Line {
	return r.last
}

// Converts the lines of a StringReader into Readings. Every line must hold
// exactly an integer timestamp followed by a real voltage.
type ReadingReader struct {
	// The input reader object (usually a RelaxedStringReader)
	Input StringReader
}

func (r *ReadingReader) Read(ctx context.Context) (Reading, error) {
	line, err := r.Input.Read(ctx)
	if err != nil {
		return Reading{}, err
	}

	logger := logrus.WithFields(logrus.Fields{
		"tag":     "ReadingReader",
		"lineNum": line.Num,
		"line":    line.Text,
	})

	if len(line.Fields) != 2 {
		logger.Debugf("expected 2 fields, got %d", len(line.Fields))
		return Reading{}, &ParseError{
			LineNum: line.Num,
			Line:    line.Text,
			Err:     fmt.Errorf("%w: expected 2 fields, got %d", ErrFormat, len(line.Fields)),
		}
	}

	timestamp, err := strconv.ParseInt(line.Fields[0], 10, 64)
	if err != nil {
		logger.Debug("cannot parse timestamp")
		return Reading{}, &ParseError{
			LineNum: line.Num,
			Line:    line.Text,
			Err:     fmt.Errorf("%w: timestamp: %w", ErrNumber, err),
		}
	}

	voltage, err := strconv.ParseFloat(line.Fields[1], 64)
	if err != nil {
		logger.Debug("cannot parse voltage")
		return Reading{}, &ParseError{
			LineNum: line.Num,
			Line:    line.Text,
			Err:     fmt.Errorf("%w: voltage: %w", ErrNumber, err),
		}
	}

	// ParseFloat accepts "nan" and "inf", which cannot be plotted.
	if math.IsNaN(voltage) || math.IsInf(voltage, 0) {
		logger.Debug("voltage is not finite")
		return Reading{}, &ParseError{
			LineNum: line.Num,
			Line:    line.Text,
			Err:     fmt.Errorf("%w: voltage %q is not finite", ErrNumber, line.Fields[1]),
		}
	}

	return Reading{Timestamp: timestamp, Voltage: voltage}, nil
}
