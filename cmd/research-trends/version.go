// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the research-trends version and build revision",
	Run: func(cmd *cobra.Command, args []string) {
		info, _ := debug.ReadBuildInfo()
		fmt.Fprintln(os.Stdout, describeVersion(version, info))
	},
}

// describeVersion appends the VCS revision, shortened to 12 characters,
// and a dirty marker when the binary was built from a checkout.
func describeVersion(v string, info *debug.BuildInfo) string {
	out := "research-trends " + v
	if info == nil {
		return out
	}
	var rev string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if rev == "" {
		return out
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	if dirty {
		rev += "-dirty"
	}
	return fmt.Sprintf("%s (%s, %s)", out, rev, info.GoVersion)
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
