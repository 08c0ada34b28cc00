// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List pipeline runs recorded in the store",
	RunE:  runRuns,
}

func runRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	overrideString(cmd, "data-dir", &cfg.Store.DataDir)
	if cfg.Store.DataDir == "" {
		return fmt.Errorf("no store configured: set store.data_dir or pass --data-dir")
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.Runs(cmd.Context())
	if err != nil {
		return err
	}
	stats, err := s.Stats(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "%-36s  %-20s  %-9s  %6s  %6s  %8s\n", "Run", "Started", "Status", "Papers", "Topics", "Emerging")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 96))
	for _, r := range runs {
		fmt.Fprintf(os.Stdout, "%-36s  %-20s  %-9s  %6d  %6d  %8d\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Status, r.Papers, r.Topics, r.Emerging)
		if r.Error != "" {
			fmt.Fprintf(os.Stdout, "    error: %s\n", r.Error)
		}
	}
	fmt.Fprintf(os.Stdout, "\n%s: %d papers, %d runs, %d cached labels\n", s.Path(), stats.Papers, stats.Runs, stats.Labels)
	return nil
}

func init() {
	runsCmd.Flags().String("data-dir", "", "directory holding research-trends.db")

	rootCmd.AddCommand(runsCmd)
}
