package functions

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	dateColumn        = "Date"
	temperatureColumn = "Temperature"
)

// Dataset maps YYYY-MM-DD dates to reference temperatures for one location.
type Dataset map[string]int

// DatasetPath returns the CSV path for a location under dir. Locations that
// would leave dir fail with ErrOutsideDataDir.
func DatasetPath(dir, location string) (string, error) {
	name := filepath.Clean(strings.ToLower(strings.TrimSpace(location)) + ".csv")
	if filepath.IsAbs(name) || hasParentTraversal(name) {
		return "", fmt.Errorf("%w: location %q", ErrOutsideDataDir, location)
	}
	return confinePath(filepath.Join(dir, name), dir)
}

// LoadDataset reads the reference table for location. A missing file yields
// (nil, nil): callers fall back to generated values.
func LoadDataset(dir, location string) (Dataset, error) {
	if strings.TrimSpace(location) == "" {
		return nil, nil
	}
	path, err := DatasetPath(dir, location)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	ds, err := ParseDataset(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return ds, nil
}

// ParseDataset reads a CSV with a header row containing Date and Temperature
// columns. Extra columns are ignored; the first row for a date wins.
func ParseDataset(r io.Reader) (Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty dataset")
		}
		return nil, err
	}
	dateIdx, tempIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case dateColumn:
			dateIdx = i
		case temperatureColumn:
			tempIdx = i
		}
	}
	if dateIdx < 0 || tempIdx < 0 {
		return nil, fmt.Errorf("header must contain %s and %s columns", dateColumn, temperatureColumn)
	}

	ds := Dataset{}
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if dateIdx >= len(record) || tempIdx >= len(record) {
			return nil, fmt.Errorf("line %d: missing columns", line)
		}
		date := strings.TrimSpace(record[dateIdx])
		if _, seen := ds[date]; seen {
			continue
		}
		value, err := parseTemperature(record[tempIdx])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		ds[date] = value
	}
	return ds, nil
}

// parseTemperature accepts integers and truncates decimals toward zero.
func parseTemperature(s string) (int, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid temperature %q", s)
	}
	return int(f), nil
}
