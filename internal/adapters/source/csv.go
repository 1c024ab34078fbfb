// Package source loads weekly age-band death rates from HMD-style CSV files.
package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/okian/excess/internal/domain/model"
	"github.com/okian/excess/pkg/logger"
	"github.com/okian/excess/pkg/metrics"
)

// DefaultPaths are tried in order when no path is configured.
var DefaultPaths = []string{"./data/HMD.csv", "../data/HMD.csv", "data/HMD.csv"}

// Column names read from the header.
const (
	colCountry = "CountryCode"
	colSex     = "Sex"
	colYear    = "Year"
	colWeek    = "Week"
	colR0_14   = "R0_14"
	colR15_64  = "R15_64"
	colR65_74  = "R65_74"
	colR75_84  = "R75_84"
	colR85p    = "R85p"
)

// Stats describes one parse.
type Stats struct {
	Records   int
	Skipped   int
	Malformed int
}

// Parse reads an HMD-style CSV. Blank and '#' lines are ignored, the first
// remaining line is the header, rows whose column count differs from the
// header are skipped and empty cells are missing values. Rows with a
// non-numeric Year or Week are counted as malformed and dropped.
func Parse(r io.Reader) ([]model.Record, Stats, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, Stats{}, ErrNoHeader
	}
	if err != nil {
		return nil, Stats{}, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}
	width := len(header)
	for _, required := range []string{colCountry, colSex, colYear, colWeek} {
		if _, ok := index[required]; !ok {
			return nil, Stats{}, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	var (
		out   []model.Record
		stats Stats
	)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read row: %w", err)
		}
		if len(row) != width {
			stats.Skipped++
			continue
		}
		cell := func(name string) string {
			i, ok := index[name]
			if !ok {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		year, errY := strconv.Atoi(cell(colYear))
		week, errW := strconv.Atoi(cell(colWeek))
		if errY != nil || errW != nil {
			stats.Malformed++
			continue
		}
		out = append(out, model.Record{
			CountryCode: cell(colCountry),
			Sex:         cell(colSex),
			Year:        year,
			Week:        week,
			Rates: model.AgeBandRates{
				R0_14:  number(cell(colR0_14)),
				R15_64: number(cell(colR15_64)),
				R65_74: number(cell(colR65_74)),
				R75_84: number(cell(colR75_84)),
				R85p:   number(cell(colR85p)),
			},
		})
		stats.Records++
	}
	return out, stats, nil
}

func number(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// CSVLoader reads the first readable file among its paths.
type CSVLoader struct {
	paths  []string
	logger logger.Logger
}

// NewCSVLoader creates a loader. An empty path list uses DefaultPaths.
func NewCSVLoader(paths []string, opts ...Option) *CSVLoader {
	if len(paths) == 0 {
		paths = DefaultPaths
	}
	l := &CSVLoader{paths: paths, logger: logger.Get().Named("source")}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load tries each path in order and returns the records of the first one that parses.
func (l *CSVLoader) Load(ctx context.Context) ([]model.Record, error) {
	for _, path := range l.paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, stats, err := l.loadFile(path)
		if err != nil {
			l.logger.Warn(ctx, "failed to load data file", logger.String("path", path), logger.Error(err))
			metrics.RecordErrorByComponent("source", "load_failed")
			continue
		}
		l.logger.Info(ctx, "data file loaded",
			logger.String("path", path),
			logger.Int("records", stats.Records),
			logger.Int("skipped", stats.Skipped),
			logger.Int("malformed", stats.Malformed),
		)
		if stats.Malformed > 0 {
			metrics.RecordRowsRejected("malformed", stats.Malformed)
		}
		if stats.Skipped > 0 {
			metrics.RecordRowsRejected("column_mismatch", stats.Skipped)
		}
		return records, nil
	}
	return nil, fmt.Errorf("%w: tried %s", ErrNoSource, strings.Join(l.paths, ", "))
}

func (l *CSVLoader) loadFile(path string) ([]model.Record, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, err
	}
	defer f.Close()
	return Parse(f)
}
