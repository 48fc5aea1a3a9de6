package driver

import (
	"fmt"
	"path/filepath"
	"runtime"

	"strata/internal/diag"
)

// Config carries everything one build invocation needs. It is filled by
// the CLI (flags merged over the strata.toml manifest) and validated once
// before the run starts.
type Config struct {
	// SourceRoot is the directory scanned for unit sources.
	SourceRoot string
	// BuildRoot receives every generated artifact, mirroring the
	// source tree layout.
	BuildRoot string

	// PreambleSource, when set, is built once into a shared preamble
	// artifact all units consume.
	PreambleSource string

	// Output is the linked binary path. Empty disables linking.
	Output string
	// HeaderDir receives generated headers for public units.
	// Defaults to the build root.
	HeaderDir string
	// LibPaths are searched for declaration artifacts of external units.
	LibPaths []string

	// Jobs caps worker parallelism. Zero means GOMAXPROCS.
	Jobs int

	// Extra arguments appended to the frontend invocation, per phase.
	// Raw strings as given on the command line; split during Validate.
	ExtraPreambleArgs string
	ExtraParseArgs    string
	ExtraCodegenArgs  string
	ExtraLinkArgs     string

	// Verbose enables per-action command logging.
	Verbose bool
	// DryRun logs frontend commands without running them.
	DryRun bool

	// MaxDiagnostics caps the diagnostic bag. Zero means the default.
	MaxDiagnostics int

	// Split extra args, populated by Validate.
	PreambleArgs []string
	ParseArgs    []string
	CodegenArgs  []string
	LinkArgs     []string
}

// Validate normalizes the config and reports every problem through r.
// Returns false when the config cannot drive a build.
func (c *Config) Validate(r diag.Reporter) bool {
	ok := true

	if c.SourceRoot == "" {
		diag.Error(r, diag.CfgMissingSourceRoot, "", "source root is required")
		ok = false
	}
	if c.BuildRoot == "" {
		diag.Error(r, diag.CfgMissingBuildRoot, "", "build root is required")
		ok = false
	}
	if c.Jobs < 0 {
		diag.Error(r, diag.CfgBadJobs, "",
			fmt.Sprintf("job count %d is negative", c.Jobs))
		ok = false
	}
	if c.Jobs == 0 {
		c.Jobs = runtime.GOMAXPROCS(0)
	}
	if c.HeaderDir == "" {
		c.HeaderDir = c.BuildRoot
	}

	c.SourceRoot = filepath.Clean(c.SourceRoot)
	c.BuildRoot = filepath.Clean(c.BuildRoot)

	split := func(raw string, dest *[]string) {
		args, err := SplitArgs(raw)
		if err != nil {
			diag.Error(r, diag.CfgBadExtraArgs, "", err.Error())
			ok = false
			return
		}
		*dest = args
	}
	split(c.ExtraPreambleArgs, &c.PreambleArgs)
	split(c.ExtraParseArgs, &c.ParseArgs)
	split(c.ExtraCodegenArgs, &c.CodegenArgs)
	split(c.ExtraLinkArgs, &c.LinkArgs)

	return ok
}
