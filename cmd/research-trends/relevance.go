// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-trends/internal/dataset"
	"github.com/pdiddy/research-trends/internal/relevance"
	"github.com/pdiddy/research-trends/internal/taxonomy"
)

var relevanceCmd = &cobra.Command{
	Use:   "relevance",
	Short: "Score papers against their theme and drop the irrelevant ones",
	Long: `Relevance scores every paper against the theme it carries using theme
keyword, technical-term, and domain-indicator matches, then keeps papers at or
above --min-score. Use --explain to print each paper's sub-scores.`,
	RunE: runRelevance,
}

func runRelevance(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	overrideString(cmd, "papers", &cfg.PapersPath)
	overrideFloat(cmd, "min-score", &cfg.Relevance.MinScore)
	out, _ := cmd.Flags().GetString("out")
	explain, _ := cmd.Flags().GetBool("explain")
	minCitations, _ := cmd.Flags().GetInt("min-citations")

	tax, err := taxonomy.Load(cfg.TaxonomyPath)
	if err != nil {
		return err
	}
	papers, err := dataset.Load(cfg.PapersPath)
	if err != nil {
		return err
	}

	if minCitations > 0 {
		before := len(papers)
		papers = dataset.FilterByCitations(papers, minCitations)
		fmt.Fprintf(os.Stdout, "%d of %d papers have at least %d citations\n", len(papers), before, minCitations)
	}

	if explain {
		fmt.Fprintf(os.Stdout, "%-14s  %-24s  %7s  %7s  %7s  %6s\n", "ID", "Theme", "Keyword", "Tech", "Domain", "Score")
		for _, p := range papers {
			theme, ok := tax.Lookup(p.Theme)
			if !ok {
				fmt.Fprintf(os.Stdout, "%-14s  %-24s  (theme not in taxonomy)\n", p.ID, p.Theme)
				continue
			}
			b := relevance.Explain(p, theme)
			fmt.Fprintf(os.Stdout, "%-14s  %-24s  %7.3f  %7.3f  %7.3f  %6.3f\n",
				p.ID, p.Theme, b.Keyword, b.Technical, b.Domain, b.Score)
		}
	}

	kept, summary := relevance.NewFilter(tax, logger).FilterByRelevance(papers, cfg.Relevance.MinScore)
	fmt.Fprintf(os.Stdout, "kept %d of %d papers (%.1f%%) at min score %.2f\n",
		summary.After, summary.Before, summary.RetentionRate*100, summary.Threshold)

	if out == "" {
		return nil
	}
	if err := dataset.Write(out, kept); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "wrote %s\n", out)
	return nil
}

func init() {
	relevanceCmd.Flags().String("papers", "", "paper table to score")
	relevanceCmd.Flags().String("out", "", "write the retained papers here")
	relevanceCmd.Flags().Float64("min-score", 0.5, "minimum relevance score")
	relevanceCmd.Flags().Int("min-citations", 0, "drop papers with fewer citations before scoring")
	relevanceCmd.Flags().Bool("explain", false, "print sub-scores for every paper")

	rootCmd.AddCommand(relevanceCmd)
}
