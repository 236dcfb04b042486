package report

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"formcli/internal/analysis"
)

// summary is the on-disk shape of summary.json.
type summary struct {
	AnalysisMetadata   summaryMetadata    `json:"analysis_metadata"`
	CategoryScores     categoryScores     `json:"category_performance"`
	QuestionAnalysis   []questionAnalysis `json:"detailed_question_analysis"`
	CommentsByCategory []commentGroup     `json:"comments_by_category,omitempty"`
	Recommendations    []string           `json:"recommendations"`
	DataQualityNotes   []string           `json:"data_quality_notes,omitempty"`
}

type summaryMetadata struct {
	RunID             string `json:"run_id"`
	Timestamp         string `json:"timestamp"`
	AnalysisFocus     string `json:"analysis_focus"`
	SelectedTeam      string `json:"selected_team"`
	SelectedLocation  string `json:"selected_location"`
	FilteredResponses int    `json:"filtered_responses"`
	TotalResponses    int    `json:"total_responses"`
}

type categoryScores struct {
	FilteredAverages      map[string]*float64           `json:"filtered_averages"`
	ComparisonWithOverall map[string]categoryComparison `json:"comparison_with_overall"`
	RankedCategories      []rankedCategory              `json:"ranked_categories"`
}

type categoryComparison struct {
	FilteredScore *float64 `json:"filtered_score"`
	OverallScore  *float64 `json:"overall_score"`
	Difference    *float64 `json:"difference"`
	Status        string   `json:"status"`
	Level         string   `json:"level"`
}

type rankedCategory struct {
	Rank         int     `json:"rank"`
	Category     string  `json:"category"`
	AverageScore float64 `json:"average_score"`
}

type questionAnalysis struct {
	Category  string           `json:"category"`
	Questions []questionDetail `json:"questions"`
}

type questionDetail struct {
	Question          string   `json:"question"`
	FilteredScore     *float64 `json:"filtered_score"`
	OverallScore      *float64 `json:"overall_score"`
	Difference        *float64 `json:"difference"`
	FilteredResponses int      `json:"filtered_responses"`
	MissingResponses  int      `json:"missing_responses"`
}

type commentGroup struct {
	Category string        `json:"category"`
	Count    int           `json:"count"`
	Comments []commentItem `json:"comments"`
}

type commentItem struct {
	Text     string `json:"text"`
	Team     string `json:"team"`
	Location string `json:"location"`
}

// WriteJSON renders summary.json for the run.
func WriteJSON(result *analysis.RunResult, run Run) (string, error) {
	path := run.Path("summary.json")

	assessmentByCategory := make(map[string]analysis.CategoryAssessment, len(result.Assessment.Categories))
	for _, ca := range result.Assessment.Categories {
		assessmentByCategory[ca.Category] = ca
	}

	s := summary{
		AnalysisMetadata: summaryMetadata{
			RunID:             run.ID,
			Timestamp:         run.CreatedAt.Format(time.RFC3339),
			AnalysisFocus:     result.Selection.String(),
			SelectedTeam:      result.Selection.Team,
			SelectedLocation:  result.Selection.Location,
			FilteredResponses: result.Subset.Rows,
			TotalResponses:    result.Population.Rows,
		},
		CategoryScores: categoryScores{
			FilteredAverages:      make(map[string]*float64, len(result.Subset.Categories)),
			ComparisonWithOverall: make(map[string]categoryComparison, len(result.Comparison.Categories)),
		},
		Recommendations: result.Assessment.Guidance,
	}

	for _, cat := range result.Subset.Categories {
		s.CategoryScores.FilteredAverages[cat.Name] = nullableMean(cat.Mean, cat.HasData)
	}

	for _, cc := range result.Comparison.Categories {
		ca := assessmentByCategory[cc.Category]
		s.CategoryScores.ComparisonWithOverall[cc.Category] = categoryComparison{
			FilteredScore: nullableMean(cc.Selection.Mean, cc.Selection.HasData),
			OverallScore:  nullableMean(cc.Population.Mean, cc.Population.HasData),
			Difference:    nullableDelta(cc.Delta),
			Status:        string(ca.Label),
			Level:         string(ca.Level),
		}
	}

	s.CategoryScores.RankedCategories = rankCategories(result.Subset.Categories)

	for _, cc := range result.Comparison.Categories {
		qa := questionAnalysis{Category: cc.Category}
		for _, qc := range cc.Questions {
			qa.Questions = append(qa.Questions, questionDetail{
				Question:          qc.Question,
				FilteredScore:     nullableMean(qc.Selection.Mean, qc.Selection.HasData),
				OverallScore:      nullableMean(qc.Population.Mean, qc.Population.HasData),
				Difference:        nullableDelta(qc.Delta),
				FilteredResponses: qc.Selection.Valid,
				MissingResponses:  qc.Selection.Missing,
			})
		}
		s.QuestionAnalysis = append(s.QuestionAnalysis, qa)
	}

	s.CommentsByCategory = groupComments(result.Comments)

	for _, note := range result.Notes {
		s.DataQualityNotes = append(s.DataQualityNotes, note.String())
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func nullableMean(mean float64, hasData bool) *float64 {
	if !hasData {
		return nil
	}
	return &mean
}

func nullableDelta(d analysis.Delta) *float64 {
	if !d.Comparable {
		return nil
	}
	return &d.Value
}

// rankCategories orders categories with data by descending mean.
func rankCategories(categories []analysis.CategoryStats) []rankedCategory {
	withData := make([]analysis.CategoryStats, 0, len(categories))
	for _, c := range categories {
		if c.HasData {
			withData = append(withData, c)
		}
	}
	sort.SliceStable(withData, func(i, j int) bool {
		if withData[i].Mean != withData[j].Mean {
			return withData[i].Mean > withData[j].Mean
		}
		return withData[i].Name < withData[j].Name
	})

	out := make([]rankedCategory, len(withData))
	for i, c := range withData {
		out[i] = rankedCategory{Rank: i + 1, Category: c.Name, AverageScore: c.Mean}
	}
	return out
}

// groupComments buckets comments by category, keeping input order.
func groupComments(comments []analysis.Comment) []commentGroup {
	if len(comments) == 0 {
		return nil
	}

	index := make(map[string]int)
	var groups []commentGroup
	for _, c := range comments {
		i, ok := index[c.Category]
		if !ok {
			i = len(groups)
			index[c.Category] = i
			groups = append(groups, commentGroup{Category: c.Category})
		}
		groups[i].Comments = append(groups[i].Comments, commentItem{
			Text:     c.Text,
			Team:     c.Team,
			Location: c.Location,
		})
		groups[i].Count++
	}
	return groups
}
