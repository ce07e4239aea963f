// Package sessionlog keeps an append-only CSV record of generated jobs and
// exports it as a spreadsheet.
package sessionlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/tabletpath/internal/model"
)

// Header is the first row of every session log.
var Header = []string{"timestamp", "job_id", "shape", "quantity", "head_mode", "api_total_mg", "unit_weight_mg"}

// Entry is one generated job.
type Entry struct {
	Timestamp    time.Time
	JobID        string
	Shape        model.ShapeKind
	Quantity     int
	HeadMode     model.HeadMode
	APITotalMg   float64
	UnitWeightMg float64
}

// Record returns the CSV fields of the entry in Header order.
func (e Entry) Record() []string {
	return []string{
		e.Timestamp.Format(time.RFC3339),
		e.JobID,
		string(e.Shape),
		strconv.Itoa(e.Quantity),
		e.HeadMode.String(),
		strconv.FormatFloat(e.APITotalMg, 'f', -1, 64),
		strconv.FormatFloat(e.UnitWeightMg, 'f', -1, 64),
	}
}

// Append writes one entry to the log at path, creating the file and its
// directory when needed. The header is written only to an empty file.
// A zero timestamp is replaced with the current time, to the second.
func Append(path string, e Entry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().Truncate(time.Second)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open session log: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to stat session log: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(Header); err != nil {
			f.Close()
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	if err := w.Write(e.Record()); err != nil {
		f.Close()
		return fmt.Errorf("failed to write entry: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush session log: %w", err)
	}
	return f.Close()
}

// Read loads every entry of a session log. A missing file is an empty log.
// Logs written before job IDs were recorded (six columns) are accepted.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open session log: %w", err)
	}
	defer f.Close()
	return ReadFrom(f)
}

// ReadFrom parses session log CSV from r.
func ReadFrom(r io.Reader) ([]Entry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read session log: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[name] = i
	}
	for _, required := range []string{"timestamp", "shape", "quantity"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("session log header missing %q", required)
		}
	}

	get := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	entries := make([]Entry, 0, len(records)-1)
	for n, row := range records[1:] {
		line := n + 2
		ts, err := parseTimestamp(get(row, "timestamp"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		qty, err := strconv.Atoi(get(row, "quantity"))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid quantity: %w", line, err)
		}
		head, err := model.ParseHeadMode(get(row, "head_mode"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		api, err := parseOptionalFloat(get(row, "api_total_mg"))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid api_total_mg: %w", line, err)
		}
		weight, err := parseOptionalFloat(get(row, "unit_weight_mg"))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid unit_weight_mg: %w", line, err)
		}

		entries = append(entries, Entry{
			Timestamp:    ts,
			JobID:        get(row, "job_id"),
			Shape:        model.ShapeKind(get(row, "shape")),
			Quantity:     qty,
			HeadMode:     head,
			APITotalMg:   api,
			UnitWeightMg: weight,
		})
	}
	return entries, nil
}

// parseTimestamp accepts RFC 3339 and the zone-less ISO form of older logs.
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
	}
	return t, nil
}

func parseOptionalFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// SheetName is the worksheet written by ExportXLSX.
const SheetName = "Sessions"

// ExportXLSX writes entries to an Excel workbook with a bold header row
// and native numeric and date cells.
func ExportXLSX(path string, entries []Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(Header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			e.Timestamp.Format(time.RFC3339),
			e.JobID,
			string(e.Shape),
			e.Quantity,
			e.HeadMode.String(),
			e.APITotalMg,
			e.UnitWeightMg,
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
