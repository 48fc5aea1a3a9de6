package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"strata/internal/diag"
)

var graphCmd = &cobra.Command{
	Use:   "graph [flags] [path]",
	Short: "Print the dependency graph of a project",
	Long: `Collect sources, scan imports and print the solved dependency
graph level by level, roots first. No artifacts are built.`,
	Args: cobra.MaximumNArgs(1),
	RunE: graphExecution,
}

func init() {
	addBuildFlags(graphCmd)
}

func graphExecution(cmd *cobra.Command, args []string) error {
	cfg, err := resolveDriverConfig(cmd, args)
	if err != nil {
		return err
	}
	setupColor(cmd)

	bag := diag.NewBag(cfg.MaxDiagnostics)
	d := newDriver(cmd, cfg, bag)

	g, solveErr := d.Solve(contextOrBackground(cmd))

	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	printDiagnostics(bag, quiet)
	if d.Timer != nil {
		fmt.Fprint(os.Stderr, d.Timer.Summary())
	}

	if g != nil {
		g.Dump(os.Stdout)
	}
	if solveErr != nil {
		cmd.SilenceUsage = true
		return fmt.Errorf("graph: %w", solveErr)
	}
	return nil
}
