package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gridplan",
		Short: "Street-network energy infrastructure planner",
	}

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(graphCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "run [project.yaml]",
		Short: "Run a scenario through the full analysis pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runScenario(args[0], out)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write the dual network export to this file")
	return cmd
}

func graphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph [project.yaml]",
		Short: "Build and route the street network without simulating",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runGraph(args[0])
		},
	}
}
