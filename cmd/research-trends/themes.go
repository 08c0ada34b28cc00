// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-trends/internal/taxonomy"
)

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List the theme taxonomy",
	Long: `Themes prints every theme of the active taxonomy with its strategic
priority, keyword count, and sub-themes. The built-in taxonomy is used unless
--taxonomy or taxonomy_path names a YAML file.

Use --export to write the active taxonomy as YAML, a starting point for a
custom taxonomy file.`,
	RunE: runThemes,
}

func runThemes(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tax, err := taxonomy.Load(cfg.TaxonomyPath)
	if err != nil {
		return err
	}

	if export, _ := cmd.Flags().GetString("export"); export != "" {
		if err := taxonomy.Write(export, tax); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "wrote %s\n", export)
		return nil
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tax)
	}

	fmt.Fprintf(os.Stdout, "%-26s  %-8s  %8s  %s\n", "Theme", "Priority", "Keywords", "Sub-themes")
	for _, th := range tax.Themes {
		fmt.Fprintf(os.Stdout, "%-26s  %-8s  %8d  %d\n", th.Name, th.Priority, len(th.Keywords), len(th.SubThemes))
	}
	counts := taxonomy.Count(tax)
	fmt.Fprintf(os.Stdout, "\n%d themes, %d sub-themes, %d distinct keywords\n",
		counts.Themes, counts.SubThemes, len(taxonomy.AllKeywords(tax)))
	return nil
}

func init() {
	themesCmd.Flags().Bool("json", false, "print the taxonomy as JSON")
	themesCmd.Flags().String("export", "", "write the taxonomy as YAML to this path")

	rootCmd.AddCommand(themesCmd)
}
