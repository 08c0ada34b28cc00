// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-trends/internal/pipeline"
	"github.com/pdiddy/research-trends/internal/taxonomy"
	"github.com/pdiddy/research-trends/internal/thememap"
	"github.com/pdiddy/research-trends/internal/topicmodel"
	"github.com/pdiddy/research-trends/pkg/types"
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Map topic-model topics onto themes",
	Long: `Map compares each topic's leading keywords with every theme's keyword
list by cosine similarity and assigns the best theme, or Other when the best
score is under that theme's threshold. Topics scoring highly against several
themes are reported as cross-theme topics.`,
	RunE: runMap,
}

func runMap(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	overrideString(cmd, "topics", &cfg.TopicModelPath)
	overrideString(cmd, "output-dir", &cfg.OutputDir)
	overrideFloat(cmd, "threshold", &cfg.Mapping.DefaultThreshold)
	overrideFloat(cmd, "cross-threshold", &cfg.Mapping.CrossThemeThreshold)
	if cmd.Flags().Changed("weighting") {
		w, _ := cmd.Flags().GetString("weighting")
		cfg.Mapping.Weighting = types.Weighting(strings.ToLower(w))
	}
	opts, err := pipeline.MapperOptions(cfg.Mapping, logger)
	if err != nil {
		return err
	}

	tax, err := taxonomy.Load(cfg.TaxonomyPath)
	if err != nil {
		return err
	}
	model, err := topicmodel.Load(cfg.TopicModelPath)
	if err != nil {
		return err
	}

	mapper := thememap.New(tax, opts...)
	mapping, err := mapper.CreateThemeMapping(model)
	if err != nil {
		return err
	}
	cross := mapper.IdentifyCrossThemeTopics(mapping, cfg.Mapping.CrossThemeThreshold)

	perTheme := make(map[string]int)
	for _, tm := range mapping {
		perTheme[tm.Theme]++
	}
	for _, name := range append(tax.Names(), types.ThemeOther) {
		if n := perTheme[name]; n > 0 {
			fmt.Fprintf(os.Stdout, "%-26s %d topics\n", name, n)
		}
	}
	for _, c := range cross {
		fmt.Fprintf(os.Stdout, "cross-theme topic %d: %s\n", c.TopicID, strings.Join(c.Themes, ", "))
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(cfg.OutputDir, pipeline.MappingFile)
	if err := thememap.SaveMapping(path, mapping); err != nil {
		return err
	}
	crossPath := filepath.Join(cfg.OutputDir, pipeline.CrossThemeFile)
	if cross == nil {
		cross = []types.CrossThemeTopic{}
	}
	if err := pipeline.WriteJSON(crossPath, cross); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "wrote %s\nwrote %s\n", path, crossPath)
	return nil
}

func init() {
	mapCmd.Flags().String("topics", "", "topic model file (.json, .yaml)")
	mapCmd.Flags().String("output-dir", "", "directory for topic_mapping.json")
	mapCmd.Flags().Float64("threshold", thememap.DefaultThreshold, "default similarity threshold")
	mapCmd.Flags().Float64("cross-threshold", thememap.DefaultCrossThemeThreshold, "per-theme score for cross-theme topics")
	mapCmd.Flags().String("weighting", "tf", "term weighting: tf or tfidf")

	rootCmd.AddCommand(mapCmd)
}
