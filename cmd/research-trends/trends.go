// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-trends/internal/dataset"
	"github.com/pdiddy/research-trends/internal/pipeline"
	"github.com/pdiddy/research-trends/internal/taxonomy"
	"github.com/pdiddy/research-trends/internal/thememap"
	"github.com/pdiddy/research-trends/internal/trend"
)

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Analyse quarterly theme trends and strategic priorities",
	Long: `Trends buckets papers by calendar quarter for every theme, computes mean
quarter-over-quarter growth, lists fast-growing topics, and ranks themes by
a priority score combining growth, strategic tier, and volume.

Use --theme to print the leading universities of one theme.`,
	RunE: runTrends,
}

func runTrends(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	overrideString(cmd, "papers", &cfg.PapersPath)
	overrideString(cmd, "output-dir", &cfg.OutputDir)
	overrideFloat(cmd, "emerging-threshold", &cfg.Trend.EmergingThreshold)
	overrideInt(cmd, "recent-quarters", &cfg.Trend.RecentQuarters)
	mappingPath, _ := cmd.Flags().GetString("mapping")
	if mappingPath == "" {
		mappingPath = filepath.Join(cfg.OutputDir, pipeline.MappingFile)
	}
	theme, _ := cmd.Flags().GetString("theme")

	tax, err := taxonomy.Load(cfg.TaxonomyPath)
	if err != nil {
		return err
	}
	papers, err := dataset.Load(cfg.PapersPath)
	if err != nil {
		return err
	}
	mapping, err := thememap.LoadMapping(mappingPath)
	if err != nil {
		return err
	}
	papers = pipeline.AssignThemes(papers, mapping)

	analyzer := trend.New(mapping, tax, trend.WithLogger(logger))

	if theme != "" {
		fmt.Fprintf(os.Stdout, "%-40s  %6s  %s\n", "University", "Papers", "Active days")
		for _, r := range analyzer.RankEntitiesByTheme(papers, theme) {
			fmt.Fprintf(os.Stdout, "%-40s  %6d  %d\n", r.Name, r.PaperCount, r.ActiveDays)
		}
		return nil
	}

	bundle := analyzer.Bundle(papers, cfg.Trend.EmergingThreshold, cfg.Trend.RecentQuarters)
	for _, p := range bundle.StrategicPriorities {
		fmt.Fprintf(os.Stdout, "%-26s %-6s score %.3f  growth %+.3f  papers %d\n",
			p.Theme, p.Category, p.PriorityScore, p.GrowthRate, p.TotalPapers)
	}
	fmt.Fprintf(os.Stdout, "%d emerging topics\n", len(bundle.EmergingTopics))

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	jsonPath := filepath.Join(cfg.OutputDir, pipeline.TrendJSONFile)
	yamlPath := filepath.Join(cfg.OutputDir, pipeline.TrendYAMLFile)
	if err := pipeline.WriteJSON(jsonPath, bundle); err != nil {
		return err
	}
	if err := pipeline.WriteYAML(yamlPath, bundle); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "wrote %s\nwrote %s\n", jsonPath, yamlPath)
	return nil
}

func init() {
	trendsCmd.Flags().String("papers", "", "paper table (.csv, .json, .yaml)")
	trendsCmd.Flags().String("mapping", "", "topic mapping JSON (default: <output-dir>/topic_mapping.json)")
	trendsCmd.Flags().String("output-dir", "", "directory for trend_analysis.json and .yaml")
	trendsCmd.Flags().Float64("emerging-threshold", trend.DefaultEmergingThreshold, "recent growth a topic must exceed")
	trendsCmd.Flags().Int("recent-quarters", trend.DefaultRecentQuarters, "quarters in the recent growth window")
	trendsCmd.Flags().String("theme", "", "print university rankings for this theme instead")

	rootCmd.AddCommand(trendsCmd)
}
