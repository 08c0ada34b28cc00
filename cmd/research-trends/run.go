// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-trends/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run relevance, mapping, trends, and emergingness in one pass",
	Long: `Run loads the paper table and topic model, filters papers by theme
relevance, maps topics onto themes, and writes topic_mapping.json,
cross_theme_topics.json, trend_analysis.json, trend_analysis.yaml, and
emerging_topics.json into the output directory.

When store.data_dir is configured the run, its papers, its mapping, and any
generated labels are recorded in the SQLite store.`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	overrideString(cmd, "papers", &cfg.PapersPath)
	overrideString(cmd, "topics", &cfg.TopicModelPath)
	overrideString(cmd, "output-dir", &cfg.OutputDir)
	overrideString(cmd, "data-dir", &cfg.Store.DataDir)
	overrideFloat(cmd, "min-score", &cfg.Relevance.MinScore)
	overrideBool(cmd, "labels", &cfg.Emerging.GenerateLabels)

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	deps := pipeline.Deps{
		Generator: labelGenerator(cfg.Emerging),
		Logger:    logger,
		Out:       os.Stdout,
	}
	if s != nil {
		defer s.Close()
		deps.Store = s
	}

	_, err = pipeline.Run(cmd.Context(), cfg, deps)
	return err
}

func init() {
	runCmd.Flags().String("papers", "", "paper table (.csv, .json, .yaml)")
	runCmd.Flags().String("topics", "", "topic model file (.json, .yaml)")
	runCmd.Flags().String("output-dir", "", "directory for analysis artifacts")
	runCmd.Flags().String("data-dir", "", "directory holding research-trends.db")
	runCmd.Flags().Float64("min-score", 0.5, "minimum relevance score")
	runCmd.Flags().Bool("labels", false, "generate human-readable topic labels")

	rootCmd.AddCommand(runCmd)
}
