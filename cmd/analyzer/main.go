// Command analyzer runs one survey analysis from the terminal: it
// loads the configured survey export, prompts for (or accepts via
// flags) a team and location, prints the results, and writes the run's
// artifacts into a timestamped output directory.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"formcli/internal/analysis"
	"formcli/internal/config"
	"formcli/internal/dataprocessing"
	"formcli/internal/infrastructure"
	"formcli/internal/report"
	"formcli/internal/selection"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	team := flag.String("team", "", "team to analyze (skips the interactive prompt; use 'all' for every team)")
	location := flag.String("location", "", "location to analyze (skips the interactive prompt; use 'all' for every location)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := infrastructure.MustInitializeLogger(cfg.Logging)
	defer infrastructure.CloseLogFile()

	ctx := infrastructure.ContextWithTraceID(context.Background())

	rows, err := dataprocessing.Load(dataprocessing.Source{
		FilePath:       cfg.DataSource.FilePath,
		Sheet:          cfg.DataSource.Sheet,
		TeamColumn:     cfg.Columns.Team,
		LocationColumn: cfg.Columns.Location,
	}, logger)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load survey data", "error", err)
		os.Exit(1)
	}

	groups := selection.Available(rows)

	var sel analysis.Selection
	if *team != "" || *location != "" {
		sel, err = selection.ResolveNames(groups, *team, *location)
		if err != nil {
			logger.ErrorContext(ctx, "Invalid selection", "error", err)
			os.Exit(1)
		}
	} else {
		sel, err = promptSelection(groups)
		if err != nil {
			fmt.Println("\nAnalysis cancelled.")
			os.Exit(1)
		}
	}

	runner := analysis.NewRunner(rows, cfg.ToCategories(), cfg.ToScale(), cfg.Thresholds(), cfg.CommentColumns(), logger)
	result, err := runner.Run(ctx, sel)
	if err != nil {
		logger.ErrorContext(ctx, "Analysis failed", "error", err)
		os.Exit(1)
	}

	displayResult(result)

	run, err := report.NewRun(cfg.Output.Dir, sel, *cfg.Output.IncludeTimestamp)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create run directory", "error", err)
		os.Exit(1)
	}

	writer := report.NewWriter(cfg.ToScale(), cfg.ToCategories(), cfg.CommentColumns(), logger)
	paths, err := writer.WriteAll(ctx, result, run)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to write artifacts", "error", err)
		os.Exit(1)
	}

	fmt.Println("\nSAVING ANALYSIS RESULTS")
	fmt.Println(strings.Repeat("=", 50))
	for _, p := range paths {
		fmt.Printf("  Saved: %s\n", p)
	}
	fmt.Printf("\nAll files saved in: %s\n", run.Dir)
}

// promptSelection walks the user through the numbered team and location
// menus. The last option in each menu is the wildcard.
func promptSelection(groups selection.Groups) (analysis.Selection, error) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("DETAILED ANALYSIS SELECTION")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("Select a team and location combination for detailed analysis.")
	fmt.Println("The last option in each menu includes all groups in that dimension.")

	scanner := bufio.NewScanner(os.Stdin)

	teamChoice, err := promptChoice(scanner, "team", "Available Teams", "All Teams", groups.Teams)
	if err != nil {
		return analysis.Selection{}, err
	}
	locationChoice, err := promptChoice(scanner, "location", "Available Locations", "All Locations", groups.Locations)
	if err != nil {
		return analysis.Selection{}, err
	}

	sel, err := selection.Resolve(groups, teamChoice, locationChoice)
	if err != nil {
		return analysis.Selection{}, err
	}

	fmt.Printf("\nFinal Selection: %s\n", sel.String())
	return sel, nil
}

func promptChoice(scanner *bufio.Scanner, dimension, heading, wildcardLabel string, options []selection.GroupCount) (int, error) {
	fmt.Printf("\n%s (%d):\n", heading, len(options))
	for i, g := range options {
		fmt.Printf("   %d. %s (%d responses)\n", i+1, g.Name, g.Responses)
	}
	wildcard := len(options) + 1
	fmt.Printf("   %d. %s\n", wildcard, wildcardLabel)

	for {
		fmt.Printf("\nSelect %s (1-%d): ", dimension, wildcard)
		if !scanner.Scan() {
			return 0, fmt.Errorf("input closed")
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			fmt.Println("Please enter a number.")
			continue
		}
		choice, err := strconv.Atoi(input)
		if err != nil || choice < 1 || choice > wildcard {
			fmt.Printf("Please enter a number between 1 and %d.\n", wildcard)
			continue
		}
		return choice, nil
	}
}

// displayResult prints the run's findings to the console.
func displayResult(result *analysis.RunResult) {
	focus := result.Selection.String()

	fmt.Println()
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("DETAILED ANALYSIS: %s\n", focus)
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Filtered Dataset: %d responses\n", result.Subset.Rows)

	if result.Subset.Rows == 0 {
		fmt.Println("No responses found for this team+location combination!")
		return
	}

	fmt.Printf("\nCategory Performance for %s:\n", focus)
	rank := 1
	for _, cc := range result.Comparison.Categories {
		if !cc.Selection.HasData {
			fmt.Printf("   %d. %s: No data\n", rank, cc.Category)
		} else {
			fmt.Printf("   %d. %s: %.2f\n", rank, cc.Category, cc.Selection.Mean)
		}
		rank++
	}

	fmt.Println("\nDetailed Question Analysis:")
	for _, cat := range result.Subset.Categories {
		fmt.Printf("\n   %s:\n", cat.Name)
		for _, q := range cat.Questions {
			if q.HasData {
				fmt.Printf("      * %s: %.2f (%d responses)\n", q.Question, q.Mean, q.Valid)
			} else {
				fmt.Printf("      * %s: No data (%d responses)\n", q.Question, q.Valid)
			}
		}
	}

	if len(result.Comments) > 0 {
		allTeams := result.Selection.Team == analysis.AllGroups
		allLocations := result.Selection.Location == analysis.AllGroups

		fmt.Println("\nComments by Category:")
		var lastCategory string
		n := 0
		for _, c := range result.Comments {
			if c.Category != lastCategory {
				fmt.Printf("\n   %s:\n", c.Category)
				lastCategory = c.Category
				n = 0
			}
			n++
			text := c.Text
			if len(text) > 100 {
				text = text[:97] + "..."
			}
			line := fmt.Sprintf("      %d. %q", n, text)
			if allTeams && c.Team != "" {
				line += " - " + c.Team
			}
			if allLocations && c.Location != "" {
				line += " (" + c.Location + ")"
			}
			fmt.Println(line)
		}
	}

	fmt.Println("\nComparison with Overall Averages:")
	for _, cc := range result.Comparison.Categories {
		if !cc.Delta.Comparable {
			fmt.Printf("   %s: not comparable\n", cc.Category)
			continue
		}
		status := "Similar"
		if cc.Delta.Value > 0.1 {
			status = "Above"
		} else if cc.Delta.Value < -0.1 {
			status = "Below"
		}
		fmt.Printf("   %s: %.2f vs %.2f (%+.2f) %s\n",
			cc.Category, cc.Selection.Mean, cc.Population.Mean, cc.Delta.Value, status)
	}

	fmt.Println("\nRecommendations:")
	for i, g := range result.Assessment.Guidance {
		fmt.Printf("   %d. %s\n", i+1, g)
	}

	if len(result.Notes) > 0 {
		fmt.Println("\nData Quality Notes:")
		for _, n := range result.Notes {
			fmt.Printf("   * %s\n", n.String())
		}
	}
}
