// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/research-trends/internal/collect"
	"github.com/pdiddy/research-trends/internal/dataset"
	"github.com/pdiddy/research-trends/internal/secrets"
	"github.com/pdiddy/research-trends/internal/taxonomy"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Fetch theme-tagged papers from OpenAlex",
	Long: `Collect builds one OpenAlex search per theme from the theme's leading
keywords, pages through matching journal articles inside the date window,
and keeps papers whose relevance to their theme reaches collector.min_relevance.
Duplicates by DOI and id are removed before writing the paper table.`,
	RunE: runCollect,
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cc := cfg.Collector
	overrideString(cmd, "out", &cfg.PapersPath)
	overrideString(cmd, "data-dir", &cfg.Store.DataDir)
	overrideInt(cmd, "max-per-theme", &cc.MaxPerTheme)
	overrideBool(cmd, "priority-only", &cc.PriorityOnly)
	overrideFloat(cmd, "min-relevance", &cc.MinRelevance)
	if cc.Email == "" {
		cc.Email = loadedSecrets.Get(secrets.OpenAlexEmail)
	}
	for _, f := range []struct {
		flag string
		dst  *time.Time
	}{{"from", &cc.StartDate}, {"to", &cc.EndDate}} {
		if !cmd.Flags().Changed(f.flag) {
			continue
		}
		s, _ := cmd.Flags().GetString(f.flag)
		t, err := dataset.ParseDate(s)
		if err != nil {
			return fmt.Errorf("--%s: %w", f.flag, err)
		}
		*f.dst = t
	}

	tax, err := taxonomy.Load(cfg.TaxonomyPath)
	if err != nil {
		return err
	}

	papers, _, err := collect.New(cc, collect.WithLogger(logger)).FetchAll(cmd.Context(), tax, os.Stdout)
	if err != nil {
		return err
	}
	if err := dataset.Write(cfg.PapersPath, papers); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "wrote %d papers to %s\n", len(papers), cfg.PapersPath)

	s, err := openStore(cfg)
	if err != nil || s == nil {
		return err
	}
	defer s.Close()
	n, err := s.UpsertPapers(cmd.Context(), papers)
	if err != nil {
		return err
	}
	logger.Info("papers stored", zap.Int("count", n), zap.String("db", s.Path()))
	return nil
}

func init() {
	collectCmd.Flags().String("out", "", "paper table to write (.csv, .json, .yaml)")
	collectCmd.Flags().String("from", "", "earliest publication date (YYYY-MM-DD)")
	collectCmd.Flags().String("to", "", "latest publication date (YYYY-MM-DD)")
	collectCmd.Flags().Int("max-per-theme", 500, "papers to fetch per theme (0 = no cap)")
	collectCmd.Flags().Bool("priority-only", false, "collect HIGH priority themes only")
	collectCmd.Flags().Float64("min-relevance", 0.5, "drop papers below this relevance score")
	collectCmd.Flags().String("data-dir", "", "also upsert papers into research-trends.db in this directory")

	rootCmd.AddCommand(collectCmd)
}
