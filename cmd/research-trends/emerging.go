// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-trends/internal/dataset"
	"github.com/pdiddy/research-trends/internal/emerging"
	"github.com/pdiddy/research-trends/internal/pipeline"
	"github.com/pdiddy/research-trends/internal/thememap"
)

var emergingCmd = &cobra.Command{
	Use:   "emerging",
	Short: "Score topics by recency, growth, and volume",
	Long: `Emerging scores every topic with a weighted blend of how recent its
papers are, how fast it is growing, and how large it is relative to other
topics, then lists the highest scoring topics. With --labels each topic
gets a short human-readable name.`,
	RunE: runEmerging,
}

func runEmerging(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ec := &cfg.Emerging
	overrideString(cmd, "papers", &cfg.PapersPath)
	overrideString(cmd, "output-dir", &cfg.OutputDir)
	overrideString(cmd, "data-dir", &cfg.Store.DataDir)
	overrideFloat(cmd, "min", &ec.MinEmergingness)
	overrideInt(cmd, "top", &ec.TopN)
	overrideBool(cmd, "labels", &ec.GenerateLabels)
	mappingPath, _ := cmd.Flags().GetString("mapping")
	if mappingPath == "" {
		mappingPath = filepath.Join(cfg.OutputDir, pipeline.MappingFile)
	}

	weights, err := pipeline.WeightsOf(*ec)
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

	scorer := emerging.New(papers, mapping,
		emerging.WithWeights(weights),
		emerging.WithLogger(logger),
	)
	records := scorer.IdentifyEmergingTopics(ec.MinEmergingness, ec.TopN)

	if ec.GenerateLabels {
		var cache emerging.LabelCache = emerging.NewMemoryCache()
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		if s != nil {
			defer s.Close()
			cache = s
		}
		labeler := emerging.NewLabeler(labelGenerator(*ec), cache,
			emerging.WithMaxRetries(ec.MaxRetries),
			emerging.WithLabelLogger(logger),
		)
		if records, err = labeler.LabelAll(cmd.Context(), records); err != nil {
			return err
		}
	}

	for _, r := range records {
		name := r.Label
		if name == "" {
			name = emerging.FallbackLabel(emerging.RequestFor(r))
		}
		fmt.Fprintf(os.Stdout, "%4d  %.3f  %-24s %s\n", r.TopicID, r.Emergingness, r.Theme, name)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(cfg.OutputDir, pipeline.EmergingFile)
	if err := pipeline.WriteJSON(path, records); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "wrote %s\n", path)
	return nil
}

func init() {
	emergingCmd.Flags().String("papers", "", "paper table (.csv, .json, .yaml)")
	emergingCmd.Flags().String("mapping", "", "topic mapping JSON (default: <output-dir>/topic_mapping.json)")
	emergingCmd.Flags().String("output-dir", "", "directory for emerging_topics.json")
	emergingCmd.Flags().String("data-dir", "", "directory holding research-trends.db (label cache)")
	emergingCmd.Flags().Float64("min", emerging.DefaultMinEmergingness, "minimum emergingness score")
	emergingCmd.Flags().Int("top", emerging.DefaultTopN, "number of topics to keep (0 = all)")
	emergingCmd.Flags().Bool("labels", false, "generate human-readable topic labels")

	rootCmd.AddCommand(emergingCmd)
}
