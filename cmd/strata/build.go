package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"strata/internal/diag"
	"strata/internal/driver"
	"strata/internal/observ"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [path]",
	Short: "Build a strata project",
	Long:  "Build a strata project, using strata.toml for defaults when present.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  buildExecution,
}

func init() {
	addBuildFlags(buildCmd)
	buildCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
}

// addBuildFlags registers the driver configuration flags, shared by
// build and graph.
func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().String("src-root", "", "directory scanned for unit sources")
	cmd.Flags().String("build-root", "", "directory receiving generated artifacts")
	cmd.Flags().String("preamble", "", "shared preamble source file")
	cmd.Flags().StringP("output", "o", "", "linked binary path")
	cmd.Flags().String("header-dir", "", "directory receiving generated headers")
	cmd.Flags().StringArrayP("lib", "L", nil, "library path searched for external declarations")
	cmd.Flags().IntP("jobs", "j", 0, "parallel job count (0 = all CPUs)")
	cmd.Flags().String("preamble-args", "", "extra frontend arguments for the preamble phase")
	cmd.Flags().String("parse-args", "", "extra frontend arguments for import scanning")
	cmd.Flags().String("codegen-args", "", "extra frontend arguments for codegen")
	cmd.Flags().String("link-args", "", "extra linker arguments")
	cmd.Flags().String("frontend", "", "frontend binary (default stratac)")
	cmd.Flags().String("linker", "", "link driver (default: frontend link subcommand)")
	cmd.Flags().BoolP("verbose", "v", false, "log every frontend invocation")
	cmd.Flags().Bool("dry-run", false, "log frontend commands without running them")
}

// resolveDriverConfig merges flags over the manifest. A flag that was
// set explicitly always wins.
func resolveDriverConfig(cmd *cobra.Command, args []string) (driver.Config, error) {
	startDir := "."
	if len(args) > 0 {
		startDir = args[0]
	}
	manifest, found, err := loadProjectManifest(startDir)
	if err != nil {
		return driver.Config{}, err
	}

	var cfg driver.Config
	if found {
		mb := manifest.Config.Build
		cfg = driver.Config{
			SourceRoot:        manifest.resolve(mb.SourceRoot),
			BuildRoot:         manifest.resolve(mb.BuildRoot),
			PreambleSource:    manifest.resolve(mb.Preamble),
			Output:            manifest.resolve(mb.Output),
			HeaderDir:         manifest.resolve(mb.HeaderDir),
			Jobs:              mb.Jobs,
			ExtraPreambleArgs: mb.PreambleArgs,
			ExtraParseArgs:    mb.ParseArgs,
			ExtraCodegenArgs:  mb.CodegenArgs,
			ExtraLinkArgs:     mb.LinkArgs,
		}
		for _, dir := range mb.LibPaths {
			cfg.LibPaths = append(cfg.LibPaths, manifest.resolve(dir))
		}
		if cfg.SourceRoot == "" {
			cfg.SourceRoot = filepath.Join(manifest.Root, "src")
		}
		if cfg.BuildRoot == "" {
			cfg.BuildRoot = filepath.Join(manifest.Root, ".strata")
		}
		if cfg.Output == "" && manifest.Config.Package.Name != "" {
			cfg.Output = filepath.Join(manifest.Root, "bin", manifest.Config.Package.Name)
		}
	}

	flags := cmd.Flags()
	overrideString := func(name string, dest *string) {
		if flags.Changed(name) {
			*dest, _ = flags.GetString(name)
		}
	}
	overrideString("src-root", &cfg.SourceRoot)
	overrideString("build-root", &cfg.BuildRoot)
	overrideString("preamble", &cfg.PreambleSource)
	overrideString("output", &cfg.Output)
	overrideString("header-dir", &cfg.HeaderDir)
	overrideString("preamble-args", &cfg.ExtraPreambleArgs)
	overrideString("parse-args", &cfg.ExtraParseArgs)
	overrideString("codegen-args", &cfg.ExtraCodegenArgs)
	overrideString("link-args", &cfg.ExtraLinkArgs)
	if flags.Changed("jobs") {
		cfg.Jobs, _ = flags.GetInt("jobs")
	}
	if flags.Changed("lib") {
		cfg.LibPaths, _ = flags.GetStringArray("lib")
	}
	cfg.Verbose, _ = flags.GetBool("verbose")
	cfg.DryRun, _ = flags.GetBool("dry-run")
	cfg.MaxDiagnostics, _ = cmd.Root().PersistentFlags().GetInt("max-diagnostics")

	if cfg.SourceRoot == "" {
		return driver.Config{}, errNoProject
	}
	return cfg, nil
}

func newDriver(cmd *cobra.Command, cfg driver.Config, bag *diag.Bag) *driver.Driver {
	flags := cmd.Flags()
	frontend, _ := flags.GetString("frontend")
	linker, _ := flags.GetString("linker")

	d := &driver.Driver{
		Config: cfg,
		Tool: &driver.ExecToolchain{
			Frontend: frontend,
			Linker:   linker,
			Verbose:  cfg.Verbose,
			DryRun:   cfg.DryRun,
		},
		Reporter: diag.BagReporter{Bag: bag},
	}
	if timings, _ := cmd.Root().PersistentFlags().GetBool("timings"); timings {
		d.Timer = observ.NewTimer()
	}
	return d
}

func buildExecution(cmd *cobra.Command, args []string) error {
	cfg, err := resolveDriverConfig(cmd, args)
	if err != nil {
		return err
	}
	uiValue, _ := cmd.Flags().GetString("ui")
	uiModeValue, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	setupColor(cmd)

	bag := diag.NewBag(cfg.MaxDiagnostics)
	d := newDriver(cmd, cfg, bag)

	var runErr error
	if shouldUseTUI(uiModeValue) && !cfg.Verbose && !cfg.DryRun {
		runErr = runBuildWithUI(cmd.Context(), cfg, d)
	} else {
		runErr = d.Run(contextOrBackground(cmd))
	}

	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	printDiagnostics(bag, quiet)
	if d.Timer != nil {
		fmt.Fprint(os.Stderr, d.Timer.Summary())
	}

	if runErr != nil {
		cmd.SilenceUsage = true
		return fmt.Errorf("build failed: %w", runErr)
	}
	if !quiet {
		fmt.Println("build succeeded")
	}
	return nil
}

func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

var errNoProject = errors.New("no strata.toml found and no --src-root given")
