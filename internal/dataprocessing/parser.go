// Package dataprocessing loads survey exports into response rows.
// Excel workbooks are read with excelize; CSV exports use the same
// header mapping. Cell values are passed through untouched so that
// score interpretation stays in one place downstream.
package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"formcli/internal/analysis"
)

// Source describes where the survey export lives and which columns
// carry the organizational dimensions.
type Source struct {
	FilePath string
	// Sheet is optional; when empty the loader scans the workbook for
	// a sheet whose header row contains both dimension columns.
	Sheet          string
	TeamColumn     string
	LocationColumn string
}

// Load reads the survey export and returns one ResponseRow per data
// row. The file extension selects the format: .csv is parsed as CSV,
// anything else is opened as an Excel workbook.
func Load(src Source, logger *slog.Logger) ([]analysis.ResponseRow, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		records [][]string
		err     error
	)
	if strings.EqualFold(filepath.Ext(src.FilePath), ".csv") {
		records, err = readCSV(src.FilePath)
	} else {
		records, err = readWorkbook(src, logger)
	}
	if err != nil {
		return nil, err
	}

	return buildRows(records, src, logger)
}

func readWorkbook(src Source, logger *slog.Logger) ([][]string, error) {
	f, err := excelize.OpenFile(src.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if src.Sheet != "" {
		rows, err := f.GetRows(src.Sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", src.Sheet, err)
		}
		return rows, nil
	}

	// No sheet configured: find the one whose header row carries both
	// dimension columns.
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil || len(rows) == 0 {
			continue
		}
		if headerHasColumns(rows[0], src.TeamColumn, src.LocationColumn) {
			logger.Info("found survey data sheet",
				slog.String("sheet_name", name),
				slog.Int("total_rows", len(rows)))
			return rows, nil
		}
	}

	return nil, fmt.Errorf("could not find a sheet with columns %q and %q in %s",
		src.TeamColumn, src.LocationColumn, src.FilePath)
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return records, nil
}

func buildRows(records [][]string, src Source, logger *slog.Logger) ([]analysis.ResponseRow, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%s contains no rows", src.FilePath)
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = analysis.SanitizeText(h)
	}

	teamIdx := indexOf(headers, src.TeamColumn)
	locationIdx := indexOf(headers, src.LocationColumn)
	if teamIdx < 0 {
		return nil, fmt.Errorf("required column %q not found in %s", src.TeamColumn, src.FilePath)
	}
	if locationIdx < 0 {
		return nil, fmt.Errorf("required column %q not found in %s", src.LocationColumn, src.FilePath)
	}

	rows := make([]analysis.ResponseRow, 0, len(records)-1)
	for i, record := range records[1:] {
		if isEmptyRecord(record) {
			continue
		}

		row := analysis.ResponseRow{
			ID:      fmt.Sprintf("r%04d", i+1),
			Answers: make(map[string]string, len(headers)),
		}
		for j, header := range headers {
			if header == "" || j >= len(record) {
				continue
			}
			row.Answers[header] = record[j]
		}
		if teamIdx < len(record) {
			row.Team = strings.TrimSpace(record[teamIdx])
		}
		if locationIdx < len(record) {
			row.Location = strings.TrimSpace(record[locationIdx])
		}
		rows = append(rows, row)
	}

	logger.Info("survey data loaded",
		slog.String("file", src.FilePath),
		slog.Int("responses", len(rows)),
		slog.Int("columns", len(headers)))

	return rows, nil
}

func headerHasColumns(header []string, columns ...string) bool {
	sanitized := make([]string, len(header))
	for i, h := range header {
		sanitized[i] = analysis.SanitizeText(h)
	}
	for _, col := range columns {
		if indexOf(sanitized, col) < 0 {
			return false
		}
	}
	return true
}

func indexOf(headers []string, column string) int {
	want := analysis.SanitizeText(column)
	for i, h := range headers {
		if h == want {
			return i
		}
	}
	return -1
}

func isEmptyRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
