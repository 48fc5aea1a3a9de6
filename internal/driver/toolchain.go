package driver

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"strata/internal/deps"
	"strata/internal/source"
)

// PreambleRequest asks for the shared preamble artifact.
type PreambleRequest struct {
	Source    string
	Output    string
	ExtraArgs []string
}

// ParseRequest asks for the dependency list of one unit. Implementations
// must leave a deps record plus its hash-meta sidecar at DepsOut.
type ParseRequest struct {
	UnitPath   string
	Source     string
	SourceRoot string
	DepsOut    string
	ExtraArgs  []string
}

// BuildRequest asks for a declaration or object artifact. DepDecls are
// the declaration artifacts of every dependency, in deterministic order.
type BuildRequest struct {
	UnitPath  string
	Source    string
	Output    string
	DepDecls  []string
	Preamble  string // empty when no preamble is configured
	ExtraArgs []string
}

// HeaderRequest asks for the generated header of a public unit.
type HeaderRequest struct {
	UnitPath string
	DeclAST  string
	Output   string
}

// LinkRequest asks for the final binary.
type LinkRequest struct {
	Objects   []string
	Output    string
	LibPaths  []string
	ExtraArgs []string
}

// Toolchain is the frontend collaborator boundary. Every build action
// leaves its artifact plus a hash-meta sidecar on disk; the orchestrator
// only ever inspects those files.
type Toolchain interface {
	BuildPreamble(ctx context.Context, req PreambleRequest) error
	ParseImport(ctx context.Context, req ParseRequest) error
	BuildDeclaration(ctx context.Context, req BuildRequest) error
	BuildObject(ctx context.Context, req BuildRequest) error
	GenerateHeader(ctx context.Context, req HeaderRequest) error
	Link(ctx context.Context, req LinkRequest) error
}

// ExecToolchain drives an external frontend binary. Each action is one
// subprocess; after a successful run the meta sidecar is written from
// freshly computed content hashes.
type ExecToolchain struct {
	// Frontend is the compiler binary, "stratac" by default.
	Frontend string
	// Linker is the link driver, Frontend's link subcommand when empty.
	Linker string

	Stderr  io.Writer
	Verbose bool
	DryRun  bool
}

func (t *ExecToolchain) frontend() string {
	if t.Frontend != "" {
		return t.Frontend
	}
	// Prefer a frontend sitting next to this binary, fall back to PATH.
	if exe, err := os.Executable(); err == nil {
		sibling := filepath.Join(filepath.Dir(exe), "stratac")
		if _, err := os.Stat(sibling); err == nil {
			return sibling
		}
	}
	return "stratac"
}

// ensureDir creates the directory an artifact lands in. Frontends are
// not expected to mkdir their own output paths.
func (t *ExecToolchain) ensureDir(output string) error {
	if t.DryRun || output == "" {
		return nil
	}
	return os.MkdirAll(filepath.Dir(output), 0o755)
}

func (t *ExecToolchain) run(ctx context.Context, name string, args []string) ([]byte, error) {
	if t.Verbose || t.DryRun {
		cmdLine := name + " " + strings.Join(args, " ")
		fmt.Fprintln(t.stderr(), color.CyanString("run:"), cmdLine)
	}
	if t.DryRun {
		return nil, nil
	}
	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = t.stderr()
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out.Bytes(), nil
}

func (t *ExecToolchain) stderr() io.Writer {
	if t.Stderr != nil {
		return t.Stderr
	}
	return os.Stderr
}

// writeMeta hashes the source and the produced artifact and persists the
// sidecar next to the artifact.
func (t *ExecToolchain) writeMeta(srcPath, artifact string) error {
	if t.DryRun {
		return nil
	}
	srcHash, err := source.HashFile(srcPath)
	if err != nil {
		return err
	}
	artHash, err := source.HashFile(artifact)
	if err != nil {
		return err
	}
	return deps.WriteMetaFile(artifact+ExtMeta, deps.NewMeta(srcHash, artHash, nil))
}

func (t *ExecToolchain) BuildPreamble(ctx context.Context, req PreambleRequest) error {
	if err := t.ensureDir(req.Output); err != nil {
		return err
	}
	args := []string{"preamble", "-o", req.Output}
	args = append(args, req.ExtraArgs...)
	args = append(args, req.Source)
	if _, err := t.run(ctx, t.frontend(), args); err != nil {
		return err
	}
	return t.writeMeta(req.Source, req.Output)
}

// ParseImport invokes the frontend import scanner and converts its plain
// text output into the on-disk deps record. The expected output is one
// directive per line: "decl <path>", "def <path>", "public", "external".
func (t *ExecToolchain) ParseImport(ctx context.Context, req ParseRequest) error {
	if err := t.ensureDir(req.DepsOut); err != nil {
		return err
	}
	args := []string{"parse-imports", "--src-root", req.SourceRoot}
	args = append(args, req.ExtraArgs...)
	args = append(args, req.Source)
	out, err := t.run(ctx, t.frontend(), args)
	if err != nil {
		return err
	}
	if t.DryRun {
		return nil
	}
	record, err := parseImportOutput(req.UnitPath, out)
	if err != nil {
		return err
	}
	if err := deps.WriteDepsFile(req.DepsOut, record); err != nil {
		return err
	}
	return t.writeMeta(req.Source, req.DepsOut)
}

func parseImportOutput(unitPath string, out []byte) (*deps.UnitDeps, error) {
	record := &deps.UnitDeps{Schema: deps.SchemaVersion, Path: unitPath}
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		directive, rest, _ := strings.Cut(line, " ")
		switch directive {
		case "decl":
			record.DeclarationDeps = append(record.DeclarationDeps, rest)
		case "def":
			record.DefinitionDeps = append(record.DefinitionDeps, rest)
		case "public":
			record.Public = true
		case "external":
			record.External = true
		default:
			return nil, fmt.Errorf("unit %s: bad import-scan directive %q", unitPath, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return record, nil
}

func (t *ExecToolchain) BuildDeclaration(ctx context.Context, req BuildRequest) error {
	return t.build(ctx, "decl", req)
}

func (t *ExecToolchain) BuildObject(ctx context.Context, req BuildRequest) error {
	return t.build(ctx, "object", req)
}

func (t *ExecToolchain) build(ctx context.Context, verb string, req BuildRequest) error {
	if err := t.ensureDir(req.Output); err != nil {
		return err
	}
	args := []string{verb, "-o", req.Output}
	if req.Preamble != "" {
		args = append(args, "--preamble", req.Preamble)
	}
	for _, dep := range req.DepDecls {
		args = append(args, "--dep", dep)
	}
	args = append(args, req.ExtraArgs...)
	args = append(args, req.Source)
	if _, err := t.run(ctx, t.frontend(), args); err != nil {
		return err
	}
	return t.writeMeta(req.Source, req.Output)
}

func (t *ExecToolchain) GenerateHeader(ctx context.Context, req HeaderRequest) error {
	if err := t.ensureDir(req.Output); err != nil {
		return err
	}
	args := []string{"header", "-o", req.Output, req.DeclAST}
	_, err := t.run(ctx, t.frontend(), args)
	return err
}

func (t *ExecToolchain) Link(ctx context.Context, req LinkRequest) error {
	if err := t.ensureDir(req.Output); err != nil {
		return err
	}
	name := t.Linker
	var args []string
	if name == "" {
		name = t.frontend()
		args = append(args, "link")
	}
	args = append(args, "-o", req.Output)
	for _, dir := range req.LibPaths {
		args = append(args, "-L", dir)
	}
	args = append(args, req.ExtraArgs...)
	args = append(args, req.Objects...)
	_, err := t.run(ctx, name, args)
	return err
}
