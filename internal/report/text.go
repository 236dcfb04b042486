package report

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"formcli/internal/analysis"
)

// WriteText renders report.txt: a human-readable report mirroring the
// console output, with per-question detail and recommendations.
func WriteText(result *analysis.RunResult, run Run) (string, error) {
	path := run.Path("report.txt")

	var b strings.Builder

	focus := result.Selection.String()

	fmt.Fprintf(&b, "SURVEY ANALYSIS REPORT - %s\n", focus)
	b.WriteString(strings.Repeat("=", 80) + "\n")
	fmt.Fprintf(&b, "Generated on: %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Run ID: %s\n", run.ID)
	fmt.Fprintf(&b, "Analysis Focus: %s\n", focus)
	fmt.Fprintf(&b, "Filtered Responses: %d\n", result.Subset.Rows)
	fmt.Fprintf(&b, "Total Responses in Dataset: %d\n", result.Population.Rows)
	fmt.Fprintf(&b, "Categories Analyzed: %d\n", len(result.Subset.Categories))
	if n := countUndefinedQuestions(result.Notes); n > 0 {
		fmt.Fprintf(&b, "Missing Questions: %d configured questions not found in data\n", n)
	}
	b.WriteString("\n")

	writeExecutiveSummary(&b, result)
	writeCategorySection(&b, result, focus)
	writeQuestionSection(&b, result)
	writeCommentSection(&b, result)
	writeRecommendationSection(&b, result, focus)
	writeNoteSection(&b, result)

	b.WriteString("\n" + strings.Repeat("=", 80) + "\n")
	fmt.Fprintf(&b, "End of Detailed Report for %s\n", focus)

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func writeExecutiveSummary(b *strings.Builder, result *analysis.RunResult) {
	b.WriteString("EXECUTIVE SUMMARY\n")
	b.WriteString(strings.Repeat("-", 40) + "\n")

	best, worst, ok := bestAndWorst(result.Subset.Categories)
	if ok {
		fmt.Fprintf(b, "* Highest performing category: %s (avg: %.2f)\n", best.Name, best.Mean)
		fmt.Fprintf(b, "* Lowest performing category: %s (avg: %.2f)\n", worst.Name, worst.Mean)
		if result.Subset.Overall.HasData {
			fmt.Fprintf(b, "* Overall average across all questions: %.2f (%d valid answers)\n",
				result.Subset.Overall.Mean, result.Subset.Overall.Valid)
		}
	} else {
		b.WriteString("No data available for selected combination.\n")
	}
	b.WriteString("\n")
}

func writeCategorySection(b *strings.Builder, result *analysis.RunResult, focus string) {
	fmt.Fprintf(b, "CATEGORY PERFORMANCE ANALYSIS - %s\n", focus)
	b.WriteString(strings.Repeat("-", 40) + "\n")

	if result.Subset.Rows == 0 {
		b.WriteString("No data available for selected combination.\n\n")
		return
	}

	// Configured order, not ranked order.
	for i, cat := range result.Subset.Categories {
		if !cat.HasData {
			fmt.Fprintf(b, "%d. %s: No data\n", i+1, cat.Name)
			continue
		}
		cc, _ := result.Comparison.CategoryByName(cat.Name)
		if cc.Delta.Comparable {
			fmt.Fprintf(b, "%d. %s: %.2f (vs overall %.2f, %+.2f) %s\n",
				i+1, cat.Name, cat.Mean, cc.Population.Mean, cc.Delta.Value, trendMarker(cc.Delta.Value))
		} else {
			fmt.Fprintf(b, "%d. %s: %.2f\n", i+1, cat.Name, cat.Mean)
		}
	}
	b.WriteString("\n")
}

func writeQuestionSection(b *strings.Builder, result *analysis.RunResult) {
	b.WriteString("DETAILED QUESTION ANALYSIS\n")
	b.WriteString(strings.Repeat("-", 40) + "\n")

	for _, cat := range result.Subset.Categories {
		cc, ok := result.Comparison.CategoryByName(cat.Name)
		if !ok {
			continue
		}

		fmt.Fprintf(b, "\n%s:\n", cat.Name)

		if high, low, found := highLowQuestions(cc.Questions); found {
			fmt.Fprintf(b, "   Highest: %s (%.2f)\n", high.Question, high.Selection.Mean)
			fmt.Fprintf(b, "   Lowest: %s (%.2f)\n\n", low.Question, low.Selection.Mean)
		}

		for _, qc := range cc.Questions {
			if !qc.Selection.HasData {
				fmt.Fprintf(b, "   * %s: No data (%d responses)\n", qc.Question, qc.Selection.Valid)
				continue
			}
			if qc.Delta.Comparable {
				fmt.Fprintf(b, "   * %s: %.2f (vs overall %.2f, %+.2f) (%d responses)\n",
					qc.Question, qc.Selection.Mean, qc.Population.Mean, qc.Delta.Value, qc.Selection.Valid)
			} else {
				fmt.Fprintf(b, "   * %s: %.2f (%d responses)\n",
					qc.Question, qc.Selection.Mean, qc.Selection.Valid)
			}
		}
	}
	b.WriteString("\n")
}

func writeCommentSection(b *strings.Builder, result *analysis.RunResult) {
	if len(result.Comments) == 0 {
		return
	}

	b.WriteString("COMMENTS BY CATEGORY\n")
	b.WriteString(strings.Repeat("-", 40) + "\n")

	allTeams := result.Selection.Team == analysis.AllGroups
	allLocations := result.Selection.Location == analysis.AllGroups

	for _, group := range groupComments(result.Comments) {
		fmt.Fprintf(b, "\n%s (%d comments):\n", group.Category, group.Count)
		for i, c := range group.Comments {
			line := fmt.Sprintf("   %d. %q", i+1, c.Text)
			if allTeams && c.Team != "" {
				line += " - " + c.Team
			}
			if allLocations && c.Location != "" {
				line += " (" + c.Location + ")"
			}
			b.WriteString(line + "\n")
		}
	}
	b.WriteString("\n")
}

func writeRecommendationSection(b *strings.Builder, result *analysis.RunResult, focus string) {
	fmt.Fprintf(b, "RECOMMENDATIONS FOR %s\n", focus)
	b.WriteString(strings.Repeat("-", 40) + "\n")
	for i, g := range result.Assessment.Guidance {
		fmt.Fprintf(b, "%d. %s\n", i+1, g)
	}
}

func writeNoteSection(b *strings.Builder, result *analysis.RunResult) {
	if len(result.Notes) == 0 {
		return
	}

	b.WriteString("\nDATA QUALITY NOTES\n")
	b.WriteString(strings.Repeat("-", 40) + "\n")
	for _, n := range result.Notes {
		fmt.Fprintf(b, "* %s\n", n.String())
	}
}

func trendMarker(delta float64) string {
	switch {
	case delta > 0.1:
		return "[+]"
	case delta < -0.1:
		return "[-]"
	default:
		return "[=]"
	}
}

func bestAndWorst(categories []analysis.CategoryStats) (best, worst analysis.CategoryStats, ok bool) {
	for _, c := range categories {
		if !c.HasData {
			continue
		}
		if !ok {
			best, worst, ok = c, c, true
			continue
		}
		if c.Mean > best.Mean {
			best = c
		}
		if c.Mean < worst.Mean {
			worst = c
		}
	}
	return best, worst, ok
}

func highLowQuestions(questions []analysis.QuestionComparison) (high, low analysis.QuestionComparison, ok bool) {
	withData := make([]analysis.QuestionComparison, 0, len(questions))
	for _, q := range questions {
		if q.Selection.HasData {
			withData = append(withData, q)
		}
	}
	if len(withData) == 0 {
		return high, low, false
	}
	sort.SliceStable(withData, func(i, j int) bool {
		return withData[i].Selection.Mean > withData[j].Selection.Mean
	})
	return withData[0], withData[len(withData)-1], true
}

func countUndefinedQuestions(notes []analysis.Note) int {
	n := 0
	for _, note := range notes {
		if note.Kind == analysis.NoteUndefinedQuestion {
			n++
		}
	}
	return n
}
