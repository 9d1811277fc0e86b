package add

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/platoengine/recipe/internal/cli/workspace"
	"github.com/platoengine/recipe/internal/core/store"
)

// NewAddCommand creates the 'add' command, which registers an installed
// package in the store so recipes can depend on it.
func NewAddCommand() *cli.Command {
	flags := append(workspace.Flags(),
		&cli.StringFlag{
			Name:    "prefix",
			Aliases: []string{"p"},
			Usage:   "Install prefix (default <store root>/<name>-<version>)",
		},
		&cli.StringSliceFlag{
			Name:    "attr",
			Aliases: []string{"a"},
			Usage:   "Extra attribute as key=value (e.g. mpicc=/usr/bin/mpicc); repeatable",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable verbose output",
		},
	)
	return &cli.Command{
		Name:      "add",
		Usage:     "Registers an installed package in the install store",
		ArgsUsage: "<name>@<version>[+variant~variant] [name=value ...]",
		Flags:     flags,
		Action:    addAction,
	}
}

func addAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Error: <name>@<version> argument is required.", 1)
	}
	verbose := c.Bool("verbose")
	out := c.App.Writer

	target, err := workspace.ParseTarget(c.Args().Slice()...)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	if target.Version == "" {
		return cli.Exit(fmt.Sprintf("Error: %s needs a version (%s@<version>).", target.Name, target.Name), 1)
	}

	attrs := map[string]string{}
	for _, kv := range c.StringSlice("attr") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return cli.Exit(fmt.Sprintf("Error: invalid --attr %q, expected key=value", kv), 1)
		}
		attrs[k] = v
	}
	if len(attrs) == 0 {
		attrs = nil
	}

	ws, err := workspace.Open(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}

	in := store.Install{
		Version:  target.Version,
		Prefix:   c.String("prefix"),
		Variants: strings.Join(workspace.OverrideStrings(target.Overrides), " "),
		Attrs:    attrs,
	}
	if verbose {
		if _, err := ws.Repo.Get(target.Name); err != nil {
			_, _ = fmt.Fprintf(out, "Note: no recipe named %s; recording an external install.\n", target.Name)
		}
	}
	_, replaced := ws.Store.Installs[target.Name]
	if err := ws.Store.Add(target.Name, in); err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	if err := ws.SaveStore(); err != nil {
		return cli.Exit(fmt.Sprintf("Error: failed to save install store: %v", err), 1)
	}

	sp, err := ws.Store.Spec(target.Name)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	verb := "Added"
	if replaced {
		verb = "Replaced"
	}
	_, _ = fmt.Fprintf(out, "%s %s at %s\n", verb, sp, sp.Prefix)
	return nil
}
