package alloy

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// targetColumns maps a target property name to its dataset column.
var targetColumns = map[string]string{
	"YS":  "YS (MPa)",
	"UTS": "UTS (MPa)",
}

// TargetColumn returns the dataset column recording the given target
// property.
func TargetColumn(target string) (string, bool) {
	col, ok := targetColumns[target]
	return col, ok
}

// ErrMissingColumn is returned when a dataset lacks the requested target
// column.
var ErrMissingColumn = errors.New("alloy: dataset is missing the target column")

// Row is one historical record: named feature values plus the recorded
// target-property value.
type Row struct {
	Values map[string]float64
	Target float64
}

// Dataset supplies historical records for the lookup strategy. Absence
// of a dataset is not an error; the strategy simply contributes nothing.
type Dataset interface {
	Rows(targetColumn string) ([]Row, error)
}

// CSVDataset is an in-memory tabular dataset read from a CSV file.
type CSVDataset struct {
	header  []string
	records [][]string
}

// FindDataset resolves the first existing path among the candidates,
// substituting the {target} placeholder. Paths are tried in the given
// priority order; the first match wins.
func FindDataset(paths []string, target string) (string, bool) {
	for _, p := range paths {
		p = strings.ReplaceAll(p, "{target}", target)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}

// LoadCSVDataset reads a CSV file, transparently decompressing files
// with a .gz suffix.
func LoadCSVDataset(path string) (*CSVDataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip dataset: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	cr := csv.NewReader(reader)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("dataset is empty")
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	return &CSVDataset{header: header, records: rows[1:]}, nil
}

// Columns returns the dataset header.
func (d *CSVDataset) Columns() []string {
	return append([]string(nil), d.header...)
}

// Rows converts the records into named numeric rows keyed by the given
// target column. Cells that fail to parse are treated as 0.
func (d *CSVDataset) Rows(targetColumn string) ([]Row, error) {
	targetIdx := -1
	for i, col := range d.header {
		if col == targetColumn {
			targetIdx = i
			break
		}
	}
	if targetIdx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, targetColumn)
	}

	out := make([]Row, 0, len(d.records))
	for _, rec := range d.records {
		row := Row{Values: make(map[string]float64, len(d.header))}
		for i, col := range d.header {
			if i >= len(rec) {
				break
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
			if err != nil {
				continue
			}
			row.Values[col] = v
			if i == targetIdx {
				row.Target = v
			}
		}
		out = append(out, row)
	}
	return out, nil
}
