// Package export serializes measurement sets to CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"dotblot-quant/internal/measure"
)

// Header is the fixed CSV column order, matching the measurement table.
var Header = []string{"well", "x_center", "y_center", "median", "mean", "stdev", "mode", "min", "max"}

// WriteCSV writes the measurement set to path, one row per well plus a header
// row. Mean and stdev carry one decimal; all other values are integers.
func WriteCSV(path string, records []measure.Record) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(Header); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Well,
			strconv.Itoa(r.X),
			strconv.Itoa(r.Y),
			strconv.Itoa(r.Median),
			strconv.FormatFloat(r.Mean, 'f', 1, 64),
			strconv.FormatFloat(r.Stdev, 'f', 1, 64),
			strconv.Itoa(r.Mode),
			strconv.Itoa(r.Min),
			strconv.Itoa(r.Max),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadCSV parses a measurement CSV written by WriteCSV.
func ReadCSV(path string) ([]measure.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty CSV")
	}
	if len(rows[0]) != len(Header) {
		return nil, fmt.Errorf("unexpected column count %d", len(rows[0]))
	}

	records := make([]measure.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec, err := parseRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(row []string) (measure.Record, error) {
	var rec measure.Record
	if len(row) != len(Header) {
		return rec, fmt.Errorf("unexpected field count %d", len(row))
	}

	rec.Well = row[0]
	ints := []struct {
		dst *int
		val string
	}{
		{&rec.X, row[1]}, {&rec.Y, row[2]}, {&rec.Median, row[3]},
		{&rec.Mode, row[6]}, {&rec.Min, row[7]}, {&rec.Max, row[8]},
	}
	for _, f := range ints {
		v, err := strconv.Atoi(f.val)
		if err != nil {
			return rec, fmt.Errorf("well %s: %w", rec.Well, err)
		}
		*f.dst = v
	}

	var err error
	if rec.Mean, err = strconv.ParseFloat(row[4], 64); err != nil {
		return rec, fmt.Errorf("well %s: %w", rec.Well, err)
	}
	if rec.Stdev, err = strconv.ParseFloat(row[5], 64); err != nil {
		return rec, fmt.Errorf("well %s: %w", rec.Well, err)
	}
	return rec, nil
}
