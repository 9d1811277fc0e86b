// Package info implements 'recipe info', which prints a recipe's declaration
// after capabilities are merged in.
package info

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/platoengine/recipe/internal/cli/workspace"
	"github.com/platoengine/recipe/internal/core/guard"
	"github.com/platoengine/recipe/internal/core/recipe"
	"github.com/platoengine/recipe/internal/core/source"
)

// NewInfoCommand creates the 'info' command.
func NewInfoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Shows the versions, variants and rules a recipe declares",
		ArgsUsage: "<package>",
		Flags:     workspace.Flags(),
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("Error: 'info' command requires exactly one package name.", 1)
			}
			ws, err := workspace.Open(c)
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
			}
			pkg, err := ws.Repo.Get(c.Args().First())
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
			}
			printPackage(c.App.Writer, pkg)
			return nil
		},
	}
}

func when(g guard.Guard) string {
	if guard.IsAlways(g) {
		return ""
	}
	return " when " + g.String()
}

func printPackage(w io.Writer, pkg *recipe.Package) {
	nameColor := color.New(color.FgMagenta, color.Bold, color.Underline).SprintFunc()
	headerColor := color.New(color.FgCyan, color.Bold).SprintFunc()
	dimColor := color.New(color.FgHiBlack).SprintFunc()

	_, _ = fmt.Fprintln(w, nameColor(pkg.Name))
	if pkg.Description != "" {
		_, _ = fmt.Fprintf(w, "  %s\n", pkg.Description)
	}
	if pkg.Homepage != "" {
		_, _ = fmt.Fprintf(w, "  homepage: %s\n", pkg.Homepage)
	}
	if len(pkg.Maintainers) > 0 {
		_, _ = fmt.Fprintf(w, "  maintainers: %s\n", strings.Join(pkg.Maintainers, ", "))
	}
	if len(pkg.Capabilities) > 0 {
		_, _ = fmt.Fprintf(w, "  capabilities: %s\n", strings.Join(pkg.Capabilities, ", "))
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, headerColor("versions:"))
	def, _ := pkg.DefaultVersion()
	for _, v := range pkg.Versions {
		where := "?"
		if f, err := source.Describe(pkg, v); err == nil {
			where = f.String()
		}
		mark := ""
		if v.ID.Equal(def.ID) {
			mark = " (default)"
		}
		_, _ = fmt.Fprintf(w, "  %-20s %s%s\n", v.ID, dimColor(where), mark)
	}

	if len(pkg.Variants) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, headerColor("variants:"))
		for _, d := range pkg.Variants {
			val := "(unset)"
			if d.Default.IsSet() {
				val = d.Default.String()
			}
			domain := ""
			if len(d.Values) > 0 {
				domain = " [" + strings.Join(d.Values, ", ") + "]"
			}
			_, _ = fmt.Fprintf(w, "  %-20s %s%s  %s\n", d.Name, val, domain, dimColor(d.Description))
		}
	}

	if len(pkg.Dependencies) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, headerColor("depends_on:"))
		for _, d := range pkg.Dependencies {
			types := ""
			if len(d.Types) > 0 {
				types = " " + dimColor("("+strings.Join(d.Types, ",")+")")
			}
			_, _ = fmt.Fprintf(w, "  %s%s\n", d, types)
		}
	}

	if len(pkg.Conflicts) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, headerColor("conflicts:"))
		for _, cf := range pkg.Conflicts {
			msg := ""
			if cf.Msg != "" {
				msg = "  " + dimColor(cf.Msg)
			}
			_, _ = fmt.Fprintf(w, "  %s%s\n", cf, msg)
		}
	}

	if len(pkg.Patches) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, headerColor("patches:"))
		for _, p := range pkg.Patches {
			_, _ = fmt.Fprintf(w, "  %s%s\n", p.File, when(p.When))
		}
	}
}
