// Package env implements 'recipe env', which prints the shell commands that
// apply a resolved recipe's environment to the current one.
package env

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/platoengine/recipe/internal/cli/workspace"
	"github.com/platoengine/recipe/internal/core/envmod"
)

// NewEnvCommand creates the 'env' command.
func NewEnvCommand() *cli.Command {
	flags := append(workspace.Flags(),
		&cli.BoolFlag{
			Name:  "build",
			Usage: "Use the build-time environment instead of the run-time one",
		},
		&cli.StringFlag{
			Name:  "prefix",
			Usage: "Install prefix (default <store root>/<name>-<version>)",
		},
	)
	return &cli.Command{
		Name:      "env",
		Usage:     "Prints export/unset lines for a resolved recipe's environment",
		ArgsUsage: "<package>[@version][+variant~variant] [name=value ...]",
		Flags:     flags,
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return cli.Exit("Error: Missing package argument.", 1)
			}
			target, err := workspace.ParseTarget(c.Args().Slice()...)
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
			}
			ws, err := workspace.Open(c)
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
			}
			_, res, err := workspace.Resolve(ws, target, workspace.Locations{Prefix: c.String("prefix")})
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error: failed to resolve %s: %v", target.Name, err), 1)
			}
			ms := res.RunEnv
			if c.Bool("build") {
				ms = res.BuildEnv
			}
			for _, line := range shellLines(ms, envmod.Current()) {
				_, _ = fmt.Fprintln(c.App.Writer, line)
			}
			return nil
		},
	}
}

// shellLines applies ms to base and renders what changed as POSIX shell.
func shellLines(ms envmod.Modifications, base envmod.Environment) []string {
	var out []string
	for _, ch := range ms.Apply(base).Diff(base) {
		if !ch.Present {
			out = append(out, "unset "+ch.Name)
			continue
		}
		out = append(out, fmt.Sprintf("export %s=%s", ch.Name, shellQuote(ch.Value)))
	}
	return out
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
