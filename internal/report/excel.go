package report

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"formcli/internal/analysis"
)

const (
	sheetSummary   = "Executive Summary"
	sheetCategory  = "Category Analysis"
	sheetBreakdown = "Team-Location Breakdown"
	sheetData      = "Detailed Data"
	sheetComments  = "Comments"
)

// DashboardOptions carries the configuration the dashboard needs beyond
// the run result itself.
type DashboardOptions struct {
	Scale          analysis.Scale
	Categories     []analysis.Category
	CommentColumns map[string]string
}

type dashboardStyles struct {
	header    int
	subheader int
	number    int
}

// WriteDashboard renders dashboard.xlsx: an executive summary sheet, a
// category sheet with a comparison column chart, a per-group breakdown
// with a bar chart when a dimension is the wildcard, the filtered data,
// and collected comments.
func WriteDashboard(result *analysis.RunResult, opts DashboardOptions, run Run) (string, error) {
	path := run.Path("dashboard.xlsx")

	f := excelize.NewFile()
	defer f.Close()

	styles, err := newDashboardStyles(f)
	if err != nil {
		return "", err
	}

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return "", err
	}
	if err := writeSummarySheet(f, result, run, styles); err != nil {
		return "", fmt.Errorf("summary sheet: %w", err)
	}
	if err := writeCategorySheet(f, result, styles); err != nil {
		return "", fmt.Errorf("category sheet: %w", err)
	}

	wildcard := result.Selection.Team == analysis.AllGroups || result.Selection.Location == analysis.AllGroups
	if wildcard {
		if err := writeBreakdownSheet(f, result, opts, styles); err != nil {
			return "", fmt.Errorf("breakdown sheet: %w", err)
		}
	}

	if err := writeDataSheet(f, result, opts, styles); err != nil {
		return "", fmt.Errorf("data sheet: %w", err)
	}
	if len(result.Comments) > 0 {
		if err := writeCommentsSheet(f, result, styles); err != nil {
			return "", fmt.Errorf("comments sheet: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}
	return path, nil
}

func newDashboardStyles(f *excelize.File) (dashboardStyles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return dashboardStyles{}, err
	}

	subheader, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"D9E2F3"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return dashboardStyles{}, err
	}

	// Built-in format 2 is "0.00".
	number, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return dashboardStyles{}, err
	}

	return dashboardStyles{header: header, subheader: subheader, number: number}, nil
}

func writeSummarySheet(f *excelize.File, result *analysis.RunResult, run Run, styles dashboardStyles) error {
	sheet := sheetSummary

	f.SetColWidth(sheet, "A", "A", 28)
	f.SetColWidth(sheet, "B", "D", 16)

	if err := f.MergeCell(sheet, "A1", "D1"); err != nil {
		return err
	}
	f.SetCellValue(sheet, "A1", "Survey Analysis Dashboard: "+result.Selection.String())
	f.SetCellStyle(sheet, "A1", "D1", styles.header)

	meta := [][]interface{}{
		{"Analysis Date:", run.CreatedAt.Format("2006-01-02 15:04")},
		{"Run ID:", run.ID},
		{"Filtered Responses:", result.Subset.Rows},
		{"Total Dataset Responses:", result.Population.Rows},
	}
	row := 3
	for _, m := range meta {
		cell := fmt.Sprintf("A%d", row)
		f.SetSheetRow(sheet, cell, &m)
		f.SetCellStyle(sheet, cell, cell, styles.subheader)
		row++
	}
	row++

	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Category Performance Summary")
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), styles.subheader)
	row++

	headers := []interface{}{"Category", "Filtered Score", "Overall Score", "Difference"}
	f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &headers)
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row), styles.subheader)
	row++

	for _, cat := range result.Subset.Categories {
		cc, _ := result.Comparison.CategoryByName(cat.Name)
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), cat.Name)
		setMeanCell(f, sheet, fmt.Sprintf("B%d", row), cat.Mean, cat.HasData, styles)
		setMeanCell(f, sheet, fmt.Sprintf("C%d", row), cc.Population.Mean, cc.Population.HasData, styles)
		setMeanCell(f, sheet, fmt.Sprintf("D%d", row), cc.Delta.Value, cc.Delta.Comparable, styles)
		row++
	}
	return nil
}

func writeCategorySheet(f *excelize.File, result *analysis.RunResult, styles dashboardStyles) error {
	sheet := sheetCategory
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	f.SetColWidth(sheet, "A", "A", 32)
	f.SetColWidth(sheet, "B", "C", 16)

	if err := f.MergeCell(sheet, "A1", "C1"); err != nil {
		return err
	}
	f.SetCellValue(sheet, "A1", "Category Performance Analysis")
	f.SetCellStyle(sheet, "A1", "C1", styles.header)

	headers := []interface{}{"Category", "Filtered Score", "Overall Average"}
	f.SetSheetRow(sheet, "A3", &headers)
	f.SetCellStyle(sheet, "A3", "C3", styles.subheader)

	row := 4
	start := row
	for _, cat := range result.Subset.Categories {
		cc, _ := result.Comparison.CategoryByName(cat.Name)
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), cat.Name)
		// Charts need numbers; no-data categories plot as zero.
		setChartCell(f, sheet, fmt.Sprintf("B%d", row), cat.Mean, cat.HasData, styles)
		setChartCell(f, sheet, fmt.Sprintf("C%d", row), cc.Population.Mean, cc.Population.HasData, styles)
		row++
	}
	end := row - 1

	if end < start {
		return nil
	}

	return f.AddChart(sheet, "E2", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{
			{
				Name:       "Selected Combination",
				Categories: fmt.Sprintf("'%s'!$A$%d:$A$%d", sheet, start, end),
				Values:     fmt.Sprintf("'%s'!$B$%d:$B$%d", sheet, start, end),
			},
			{
				Name:       "Overall Average",
				Categories: fmt.Sprintf("'%s'!$A$%d:$A$%d", sheet, start, end),
				Values:     fmt.Sprintf("'%s'!$C$%d:$C$%d", sheet, start, end),
			},
		},
		Title:  []excelize.RichTextRun{{Text: "Category Performance Comparison"}},
		XAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Categories"}}},
		YAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Average Score"}}},
		Legend: excelize.ChartLegend{Position: "bottom"},
	})
}

func writeBreakdownSheet(f *excelize.File, result *analysis.RunResult, opts DashboardOptions, styles dashboardStyles) error {
	sheet := sheetBreakdown
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	f.SetColWidth(sheet, "A", "A", 28)
	f.SetColWidth(sheet, "B", "B", 16)

	if err := f.MergeCell(sheet, "A1", "B1"); err != nil {
		return err
	}
	f.SetCellValue(sheet, "A1", "Team and Location Breakdown")
	f.SetCellStyle(sheet, "A1", "B1", styles.header)

	row := 3
	if result.Selection.Team == analysis.AllGroups {
		var err error
		row, err = writeGroupScores(f, sheet, row, "Team", teamOf, result, opts, styles)
		if err != nil {
			return err
		}
		row += 2
	}
	if result.Selection.Location == analysis.AllGroups {
		if _, err := writeGroupScores(f, sheet, row, "Location", locationOf, result, opts, styles); err != nil {
			return err
		}
	}
	return nil
}

func teamOf(r analysis.ResponseRow) string     { return r.Team }
func locationOf(r analysis.ResponseRow) string { return r.Location }

// writeGroupScores writes one dimension's per-group mean table plus a
// bar chart, returning the next free row.
func writeGroupScores(f *excelize.File, sheet string, row int, dimension string, keyOf func(analysis.ResponseRow) string, result *analysis.RunResult, opts DashboardOptions, styles dashboardStyles) (int, error) {
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), dimension+" Performance")
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), styles.subheader)
	row += 2

	headers := []interface{}{dimension, "Average Score"}
	f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &headers)
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), styles.subheader)
	row++

	scores := groupMeans(result.Rows, keyOf, opts)
	start := row
	for _, gs := range scores {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), gs.name)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), gs.mean)
		f.SetCellStyle(sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), styles.number)
		row++
	}
	end := row - 1

	if end < start {
		return row, nil
	}

	anchor := fmt.Sprintf("D%d", start-2)
	err := f.AddChart(sheet, anchor, &excelize.Chart{
		Type: excelize.Bar,
		Series: []excelize.ChartSeries{{
			Name:       dimension + " Performance",
			Categories: fmt.Sprintf("'%s'!$A$%d:$A$%d", sheet, start, end),
			Values:     fmt.Sprintf("'%s'!$B$%d:$B$%d", sheet, start, end),
		}},
		Title: []excelize.RichTextRun{{Text: "Performance by " + dimension}},
	})
	return row, err
}

type groupScore struct {
	name string
	mean float64
}

// groupMeans computes each group's mean over all configured question
// scores, sorted by descending mean.
func groupMeans(rows []analysis.ResponseRow, keyOf func(analysis.ResponseRow) string, opts DashboardOptions) []groupScore {
	norm := analysis.NewNormalizer(opts.Scale)

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range rows {
		key := keyOf(r)
		if key == "" {
			continue
		}
		for _, cat := range opts.Categories {
			for _, q := range cat.Questions {
				raw, ok := r.Answer(q)
				if !ok {
					continue
				}
				if score, _ := norm.Normalize(raw); score.Valid {
					sums[key] += float64(score.Value)
					counts[key]++
				}
			}
		}
	}

	out := make([]groupScore, 0, len(sums))
	for name, sum := range sums {
		if counts[name] == 0 {
			continue
		}
		out = append(out, groupScore{name: name, mean: sum / float64(counts[name])})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].mean != out[j].mean {
			return out[i].mean > out[j].mean
		}
		return out[i].name < out[j].name
	})
	return out
}

func writeDataSheet(f *excelize.File, result *analysis.RunResult, opts DashboardOptions, styles dashboardStyles) error {
	sheet := sheetData
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	f.SetCellValue(sheet, "A1", "Filtered Dataset")
	f.SetCellStyle(sheet, "A1", "A1", styles.header)

	norm := analysis.NewNormalizer(opts.Scale)

	headers := []interface{}{"Response", "Team", "Location"}
	var questions []string
	for _, cat := range opts.Categories {
		questions = append(questions, cat.Questions...)
	}
	for _, q := range questions {
		headers = append(headers, q)
	}
	var commentCols []string
	for _, cat := range opts.Categories {
		if col, ok := opts.CommentColumns[cat.Name]; ok {
			commentCols = append(commentCols, col)
			headers = append(headers, col)
		}
	}

	f.SetSheetRow(sheet, "A3", &headers)
	endCol, err := excelize.CoordinatesToCellName(len(headers), 3)
	if err != nil {
		return err
	}
	f.SetCellStyle(sheet, "A3", endCol, styles.subheader)

	row := 4
	for _, r := range result.Rows {
		values := []interface{}{r.ID, r.Team, r.Location}
		for _, q := range questions {
			raw, ok := r.Answer(q)
			if !ok {
				values = append(values, "")
				continue
			}
			if score, _ := norm.Normalize(raw); score.Valid {
				values = append(values, score.Value)
			} else {
				values = append(values, "")
			}
		}
		for _, col := range commentCols {
			raw, _ := r.Answer(col)
			values = append(values, analysis.SanitizeText(raw))
		}
		f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &values)
		row++
	}
	return nil
}

func writeCommentsSheet(f *excelize.File, result *analysis.RunResult, styles dashboardStyles) error {
	sheet := sheetComments
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	f.SetColWidth(sheet, "A", "A", 30)
	f.SetColWidth(sheet, "B", "B", 60)
	f.SetColWidth(sheet, "C", "D", 15)

	if err := f.MergeCell(sheet, "A1", "D1"); err != nil {
		return err
	}
	f.SetCellValue(sheet, "A1", "Comments by Category")
	f.SetCellStyle(sheet, "A1", "D1", styles.header)

	headers := []interface{}{"Category", "Comment", "Team", "Location"}
	f.SetSheetRow(sheet, "A3", &headers)
	f.SetCellStyle(sheet, "A3", "D3", styles.subheader)

	row := 4
	for _, c := range result.Comments {
		values := []interface{}{c.Category, c.Text, c.Team, c.Location}
		f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &values)
		row++
	}
	return nil
}

func setMeanCell(f *excelize.File, sheet, cell string, v float64, ok bool, styles dashboardStyles) {
	if !ok {
		f.SetCellValue(sheet, cell, "N/A")
		return
	}
	f.SetCellValue(sheet, cell, v)
	f.SetCellStyle(sheet, cell, cell, styles.number)
}

func setChartCell(f *excelize.File, sheet, cell string, v float64, ok bool, styles dashboardStyles) {
	if !ok {
		v = 0
	}
	f.SetCellValue(sheet, cell, v)
	f.SetCellStyle(sheet, cell, cell, styles.number)
}
