package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"

	wsErrors "github.com/wellsync/wellsync-ai/pkg/errors"
)

// LoadCSV reads a headed CSV file into a Frame. A column is numeric when
// every non-empty cell parses as a float; otherwise it is categorical.
// Empty numeric cells become NaN so the imputer can fill them later.
func LoadCSV(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wsErrors.NewModelError("LoadCSV", "failed to open file", err)
	}
	defer func() { _ = f.Close() }()

	return ReadCSV(f)
}

// ReadCSV reads headed CSV data from r into a Frame.
func ReadCSV(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, wsErrors.NewModelError("ReadCSV", "failed to read header", err)
	}

	raw := make([][]string, len(header))
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, wsErrors.NewModelError("ReadCSV", "failed to read row", err)
		}
		for j, v := range rec {
			raw[j] = append(raw[j], v)
		}
	}

	if len(raw[0]) == 0 {
		return nil, wsErrors.NewModelError("ReadCSV", "no data rows", wsErrors.ErrEmptyData)
	}

	frame := NewFrame()
	for j, name := range header {
		if isNumericColumn(raw[j]) {
			vals := make([]float64, len(raw[j]))
			for i, cell := range raw[j] {
				if cell == "" {
					vals[i] = math.NaN()
					continue
				}
				v, _ := strconv.ParseFloat(cell, 64)
				vals[i] = v
			}
			frame.AddNumeric(name, vals)
		} else {
			frame.AddCategorical(name, raw[j])
		}
	}

	return frame, nil
}

func isNumericColumn(cells []string) bool {
	nonEmpty := 0
	for _, cell := range cells {
		if cell == "" {
			continue
		}
		nonEmpty++
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			return false
		}
	}
	return nonEmpty > 0
}
