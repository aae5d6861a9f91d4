// Package dataset loads the yearly crime-count CSV once and serves
// read-only selections of it.
package dataset

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/crimecast/crimecast/internal/config"
	"github.com/crimecast/crimecast/internal/utils"
)

// Columns names the CSV header of each field
type Columns struct {
	Jurisdiction string
	Category     string
	Period       string
	Value        string
}

// DefaultColumns returns the header names of the published dataset
func DefaultColumns() Columns {
	return Columns{
		Jurisdiction: "STATE/UT",
		Category:     "Purpose",
		Period:       "Year",
		Value:        "Total No. of cases reported",
	}
}

// ColumnsFromConfig converts configured column names
func ColumnsFromConfig(cfg config.ColumnsConfig) Columns {
	return Columns{
		Jurisdiction: cfg.Jurisdiction,
		Category:     cfg.Category,
		Period:       cfg.Period,
		Value:        cfg.Value,
	}
}

// ParseError reports a malformed CSV line
type ParseError struct {
	Line   int
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: column %q: %v", e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ErrMissingColumn is returned when the header lacks a configured column
var ErrMissingColumn = errors.New("missing column")

// LoadFile reads and parses the CSV at path
func LoadFile(path string, cols Columns) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	store, err := Load(f, cols)
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", path, err)
	}
	return store, nil
}

// Load parses a CSV stream with a header row. Years must be whole numbers
// and counts must parse as finite numbers; validity of the count itself is
// left to the series builder so one bad selection does not reject the file.
func Load(r io.Reader, cols Columns) (*Store, error) {
	hash := sha256.New()
	reader := csv.NewReader(io.TeeReader(r, hash))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Line: 1, Err: errors.New("empty file")}
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	index, err := headerIndex(header, cols)
	if err != nil {
		return nil, err
	}

	var records []Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if isBlank(row) {
			continue
		}

		rec, err := parseRecord(row, index, cols, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return newStore(records, hex.EncodeToString(hash.Sum(nil))[:16]), nil
}

type columnIndex struct {
	jurisdiction, category, period, value int
}

func headerIndex(header []string, cols Columns) (columnIndex, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		positions[h] = i
	}

	lookup := func(name string) (int, error) {
		i, ok := positions[name]
		if !ok {
			return 0, fmt.Errorf("%w %q", ErrMissingColumn, name)
		}
		return i, nil
	}

	var idx columnIndex
	var err error
	if idx.jurisdiction, err = lookup(cols.Jurisdiction); err != nil {
		return idx, err
	}
	if idx.category, err = lookup(cols.Category); err != nil {
		return idx, err
	}
	if idx.period, err = lookup(cols.Period); err != nil {
		return idx, err
	}
	if idx.value, err = lookup(cols.Value); err != nil {
		return idx, err
	}
	return idx, nil
}

func parseRecord(row []string, idx columnIndex, cols Columns, line int) (Record, error) {
	cell := func(i int, name string) (string, error) {
		if i >= len(row) {
			return "", &ParseError{Line: line, Column: name, Err: errors.New("missing value")}
		}
		return strings.TrimSpace(row[i]), nil
	}

	jurisdiction, err := cell(idx.jurisdiction, cols.Jurisdiction)
	if err != nil {
		return Record{}, err
	}
	category, err := cell(idx.category, cols.Category)
	if err != nil {
		return Record{}, err
	}

	rawYear, err := cell(idx.period, cols.Period)
	if err != nil {
		return Record{}, err
	}
	year, err := utils.ParseWholeNumber(rawYear)
	if err != nil {
		return Record{}, &ParseError{Line: line, Column: cols.Period, Err: err}
	}

	rawCount, err := cell(idx.value, cols.Value)
	if err != nil {
		return Record{}, err
	}
	count, err := utils.ParseFloat(rawCount)
	if err != nil {
		return Record{}, &ParseError{Line: line, Column: cols.Value, Err: err}
	}

	return Record{
		Jurisdiction: jurisdiction,
		Category:     category,
		Year:         year,
		Count:        count,
	}, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
