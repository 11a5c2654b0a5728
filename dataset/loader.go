// Package dataset loads the launch records CSV and serves it from memory.
package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/tfkr-ae/launchdash/domain"
)

// Column headers read from the CSV file. Any other column is ignored.
const (
	ColumnSite     = "Launch Site"
	ColumnPayload  = "Payload Mass (kg)"
	ColumnClass    = "class"
	ColumnCategory = "Booster Version Category"
)

var (
	// ErrNotTabular is returned when the input file is not a text/csv file.
	ErrNotTabular = errors.New("input is not a csv file")

	// ErrMissingColumn is returned when a required column header is absent.
	ErrMissingColumn = errors.New("missing required column")
)

// Load reads the launch records CSV at path.
func Load(path string) (domain.Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset %s : %w", path, err)
	}
	ds, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing dataset %s : %w", path, err)
	}
	return ds, nil
}

// Parse decodes launch records from CSV bytes. The first row must be the header.
func Parse(raw []byte) (domain.Dataset, error) {
	detected := mimetype.Detect(raw)
	if !isText(detected) {
		return nil, fmt.Errorf("%w: detected %s", ErrNotTabular, detected.String())
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty file", ErrNotTabular)
		}
		return nil, fmt.Errorf("reading header : %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	ds := make(domain.Dataset, 0)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d : %w", len(ds)+2, err)
		}
		rec, err := parseRecord(row, cols)
		if err != nil {
			return nil, fmt.Errorf("row %d : %w", len(ds)+2, err)
		}
		ds = append(ds, rec)
	}
	return ds, nil
}

// isText reports whether the detected type is text/plain or one of its children (text/csv).
func isText(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

type columns struct {
	site, payload, class, category int
}

func columnIndex(header []string) (columns, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		// Excel exports prefix the first header with a byte order mark
		name = strings.TrimPrefix(name, "\ufeff")
		index[strings.TrimSpace(name)] = i
	}
	lookup := func(name string) (int, error) {
		i, ok := index[name]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
		return i, nil
	}

	var cols columns
	var err error
	if cols.site, err = lookup(ColumnSite); err != nil {
		return cols, err
	}
	if cols.payload, err = lookup(ColumnPayload); err != nil {
		return cols, err
	}
	if cols.class, err = lookup(ColumnClass); err != nil {
		return cols, err
	}
	if cols.category, err = lookup(ColumnCategory); err != nil {
		return cols, err
	}
	return cols, nil
}

func parseRecord(row []string, cols columns) (domain.LaunchRecord, error) {
	payload, err := strconv.ParseFloat(strings.TrimSpace(row[cols.payload]), 64)
	if err != nil {
		return domain.LaunchRecord{}, fmt.Errorf("parsing %s %q : %w", ColumnPayload, row[cols.payload], err)
	}
	if payload < 0 {
		return domain.LaunchRecord{}, fmt.Errorf("negative %s %v", ColumnPayload, payload)
	}

	class, err := strconv.Atoi(strings.TrimSpace(row[cols.class]))
	if err != nil {
		return domain.LaunchRecord{}, fmt.Errorf("parsing %s %q : %w", ColumnClass, row[cols.class], err)
	}
	if class != 0 && class != 1 {
		return domain.LaunchRecord{}, fmt.Errorf("%s must be 0 or 1, got %d", ColumnClass, class)
	}

	return domain.LaunchRecord{
		Site:                   strings.TrimSpace(row[cols.site]),
		PayloadMassKg:          payload,
		Class:                  class,
		BoosterVersionCategory: strings.TrimSpace(row[cols.category]),
	}, nil
}
