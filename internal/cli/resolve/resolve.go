// Package resolve implements 'recipe resolve', which prints the configuration
// a recipe resolves to and optionally records it in the lockfile.
package resolve

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/platoengine/recipe/internal/cli/workspace"
	"github.com/platoengine/recipe/internal/core/envmod"
	"github.com/platoengine/recipe/internal/core/resolver"
)

// NewResolveCommand creates the 'resolve' command.
func NewResolveCommand() *cli.Command {
	flags := append(workspace.Flags(),
		&cli.StringFlag{
			Name:  "prefix",
			Usage: "Install prefix (default <store root>/<name>-<version>)",
		},
		&cli.StringFlag{
			Name:  "stage",
			Usage: "Unpacked source directory (default <dir>/stage/<name>-<version>)",
		},
		&cli.BoolFlag{
			Name:  "lock",
			Usage: "Record the resolved configuration in the lockfile",
		},
		&cli.BoolFlag{
			Name:  "args-only",
			Usage: "Print only the build arguments, one per line",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable verbose output",
		},
	)
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Resolves a recipe into build arguments and environment operations",
		ArgsUsage: "<package>[@version][+variant~variant] [name=value ...]",
		Flags:     flags,
		Action:    resolveAction,
	}
}

func resolveAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Error: Missing package argument.", 1)
	}
	verbose := c.Bool("verbose")
	out := c.App.Writer

	target, err := workspace.ParseTarget(c.Args().Slice()...)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}

	ws, err := workspace.Open(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	if verbose {
		_, _ = fmt.Fprintf(out, "Using recipes from %s and installs from %s\n", ws.Project.Repo.Path, ws.Project.Store.Path)
	}

	pkg, res, err := workspace.Resolve(ws, target, workspace.Locations{
		Prefix:   c.String("prefix"),
		StageDir: c.String("stage"),
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: failed to resolve %s: %v", target.Name, err), 1)
	}
	if verbose {
		_, _ = fmt.Fprintf(out, "Resolved %d dependencies of %s from the install store\n", len(res.Spec.Deps), pkg.Name)
	}

	warnColor := color.New(color.FgYellow).SprintFunc()
	for _, m := range res.Mismatches {
		_, _ = fmt.Fprintf(c.App.ErrWriter, "%s dependency %s\n", warnColor("Warning:"), m)
	}

	if c.Bool("args-only") {
		for _, a := range res.Args {
			_, _ = fmt.Fprintln(out, a)
		}
	} else {
		printResult(out, res)
	}

	if c.Bool("lock") {
		entry := workspace.LockEntry(target, res)
		changed := ws.Lock.AddOrUpdatePackage(pkg.Name, entry)
		if err := ws.SaveLock(); err != nil {
			return cli.Exit(fmt.Sprintf("Error: failed to save lockfile: %v", err), 1)
		}
		if changed {
			_, _ = fmt.Fprintf(c.App.ErrWriter, "Locked %s@%s (%s)\n", pkg.Name, entry.Version, entry.Digest)
		} else if verbose {
			_, _ = fmt.Fprintf(c.App.ErrWriter, "Lock entry for %s is unchanged\n", pkg.Name)
		}
	}
	return nil
}

func printResult(w io.Writer, res *resolver.Result) {
	specColor := color.New(color.FgMagenta, color.Bold).SprintFunc()
	headerColor := color.New(color.FgCyan, color.Bold).SprintFunc()
	dimColor := color.New(color.FgHiBlack).SprintFunc()

	_, _ = fmt.Fprintln(w, specColor(res.Spec.String()))
	if res.Spec.Compiler.Name != "" {
		_, _ = fmt.Fprintf(w, "compiler: %s\n", res.Spec.Compiler)
	}
	_, _ = fmt.Fprintf(w, "source:   %s\n", res.Fetch)
	_, _ = fmt.Fprintf(w, "integrity: %s\n", res.Fetch.Integrity())
	if res.Fetch.Canonical != "" {
		_, _ = fmt.Fprintf(w, "canonical: %s\n", res.Fetch.Canonical)
	}
	_, _ = fmt.Fprintf(w, "prefix:   %s\n", res.Spec.Prefix)
	_, _ = fmt.Fprintf(w, "workdir:  %s\n", res.WorkDir)

	if names := res.Spec.DepNames(); len(names) > 0 {
		_, _ = fmt.Fprintln(w, headerColor("dependencies:"))
		for _, name := range names {
			d, _ := res.Spec.Dep(name)
			_, _ = fmt.Fprintf(w, "  %s %s\n", d, dimColor(d.Prefix))
		}
	}

	_, _ = fmt.Fprintln(w, headerColor("args:"))
	for _, a := range res.Args {
		_, _ = fmt.Fprintf(w, "  %s\n", a)
	}
	printEnv(w, headerColor("build env:"), res.BuildEnv)
	printEnv(w, headerColor("run env:"), res.RunEnv)

	if len(res.Patches) > 0 {
		_, _ = fmt.Fprintln(w, headerColor("patches:"))
		for _, p := range res.Patches {
			_, _ = fmt.Fprintf(w, "  %s\n", p)
		}
	}
	_, _ = fmt.Fprintf(w, "digest:   %s\n", res.Digest())
}

func printEnv(w io.Writer, header string, ms envmod.Modifications) {
	if len(ms) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w, header)
	for _, m := range ms {
		_, _ = fmt.Fprintf(w, "  %s\n", m)
	}
}
