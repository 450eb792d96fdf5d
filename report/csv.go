package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
)

// WriteMatrix serializes the comparison rows as CSV: one header line, then one line
// per row, columns in declared VM type order. Absent values render as empty fields,
// never as 0, because 0 is a legitimate measurement. When normalize is set, one
// normalized column per VM type is appended after the value columns.
func WriteMatrix(w io.Writer, rows []*ComparisonRow, vmTypes []string, normalize bool) error {
	cw := csv.NewWriter(w)

	header := []string{"metric"}
	header = append(header, vmTypes...)
	if normalize {
		for _, vmType := range vmTypes {
			header = append(header, vmType+" (%)")
		}
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{row.Identity.Label()}
		for _, vmType := range vmTypes {
			if v, ok := row.Values[vmType]; ok {
				record = append(record, formatValue(v))
			} else {
				record = append(record, "")
			}
		}
		if normalize {
			for _, vmType := range vmTypes {
				if v, ok := row.Normalized[vmType]; ok {
					record = append(record, formatPercent(v))
				} else {
					record = append(record, "")
				}
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteMatrixFile writes the matrix into a file, replacing it if it exists.
func WriteMatrixFile(path string, rows []*ComparisonRow, vmTypes []string, normalize bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteMatrix(f, rows, vmTypes, normalize); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Whole percent is plenty of precision for comparing VM types.
func formatPercent(v float64) string {
	return strconv.FormatFloat(math.Round(v), 'f', -1, 64) + "%"
}
