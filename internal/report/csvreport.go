package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"formcli/internal/analysis"
)

// WriteCSV renders summary.csv: a sectioned flat file for spreadsheet
// import. Sections are separated by blank rows, each with its own
// header row. A UTF-8 BOM is prepended so Excel detects the encoding.
func WriteCSV(result *analysis.RunResult, run Run) (string, error) {
	path := run.Path("summary.csv")

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return "", fmt.Errorf("failed to write BOM: %w", err)
	}

	w := csv.NewWriter(file)
	defer w.Flush()

	rows := [][]string{
		{"Section", "Analysis Metadata"},
		{"Run ID", run.ID},
		{"Generated", run.CreatedAt.Format("2006-01-02 15:04:05")},
		{"Team", result.Selection.TeamDisplay()},
		{"Location", result.Selection.LocationDisplay()},
		{"Filtered Responses", strconv.Itoa(result.Subset.Rows)},
		{"Total Responses", strconv.Itoa(result.Population.Rows)},
		{},
		{"Section", "Category Performance"},
		{"Category", "Filtered Score", "Overall Score", "Difference", "Status", "Valid Answers", "Missing Answers"},
	}

	labels := make(map[string]analysis.PerformanceLabel, len(result.Assessment.Categories))
	for _, ca := range result.Assessment.Categories {
		labels[ca.Category] = ca.Label
	}

	for _, cat := range result.Subset.Categories {
		cc, _ := result.Comparison.CategoryByName(cat.Name)
		rows = append(rows, []string{
			cat.Name,
			formatMean(cat.Mean, cat.HasData),
			formatMean(cc.Population.Mean, cc.Population.HasData),
			formatDelta(cc.Delta),
			string(labels[cat.Name]),
			strconv.Itoa(cat.Valid),
			strconv.Itoa(cat.Missing),
		})
	}

	rows = append(rows,
		[]string{},
		[]string{"Section", "Question Detail"},
		[]string{"Category", "Question", "Filtered Score", "Overall Score", "Difference", "Responses"},
	)
	for _, cc := range result.Comparison.Categories {
		for _, qc := range cc.Questions {
			rows = append(rows, []string{
				cc.Category,
				qc.Question,
				formatMean(qc.Selection.Mean, qc.Selection.HasData),
				formatMean(qc.Population.Mean, qc.Population.HasData),
				formatDelta(qc.Delta),
				strconv.Itoa(qc.Selection.Valid),
			})
		}
	}

	rows = append(rows,
		[]string{},
		[]string{"Section", "Recommendations"},
	)
	for i, g := range result.Assessment.Guidance {
		rows = append(rows, []string{strconv.Itoa(i + 1), g})
	}

	if len(result.Notes) > 0 {
		rows = append(rows,
			[]string{},
			[]string{"Section", "Data Quality Notes"},
		)
		for _, n := range result.Notes {
			rows = append(rows, []string{string(n.Kind), n.String()})
		}
	}

	for i, row := range rows {
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return path, nil
}

func formatMean(mean float64, hasData bool) string {
	if !hasData {
		return "N/A"
	}
	return strconv.FormatFloat(mean, 'f', 2, 64)
}

func formatDelta(d analysis.Delta) string {
	if !d.Comparable {
		return "N/A"
	}
	return fmt.Sprintf("%+.2f", d.Value)
}
