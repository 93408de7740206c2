// Package main provides the entry point for the devdedup CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/devdedup/cmd/devdedup/commands"
	"github.com/Sumatoshi-tech/devdedup/pkg/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "devdedup",
		Short: "Devdedup - developer identity deduplication for git histories",
		Long: `Devdedup groups the aliases of the same developer across a git history.

Commands:
  analyze   Extract identities from a repository and cluster duplicates
  evaluate  Compare a clustering against ground-truth labels`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewAnalyzeCommand())
	rootCmd.AddCommand(commands.NewEvaluateCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "devdedup %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
