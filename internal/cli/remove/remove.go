package remove

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/platoengine/recipe/internal/cli/workspace"
)

// RemoveCommand defines the structure for the 'remove' CLI command. It drops
// a package from the install store and its lockfile entry.
func RemoveCommand() *cli.Command {
	flags := append(workspace.Flags(),
		&cli.BoolFlag{
			Name:  "keep-lock",
			Usage: "Leave the lockfile entry in place",
		},
	)
	return &cli.Command{
		Name:      "remove",
		Aliases:   []string{"rm"},
		Usage:     "Removes a package from the install store and the lockfile",
		ArgsUsage: "<package_name>",
		Flags:     flags,
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return cli.Exit("Error: Missing package name argument.", 1)
			}
			name := c.Args().First()

			ws, err := workspace.Open(c)
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
			}

			removedInstall := ws.Store.Remove(name)
			removedLock := false
			if !c.Bool("keep-lock") {
				removedLock = ws.Lock.RemovePackage(name)
			}
			if !removedInstall && !removedLock {
				return cli.Exit(fmt.Sprintf("Error: Package '%s' is neither installed nor locked.", name), 1)
			}

			if removedInstall {
				if err := ws.SaveStore(); err != nil {
					return cli.Exit(fmt.Sprintf("Error: failed to save install store: %v", err), 1)
				}
				_, _ = fmt.Fprintf(c.App.Writer, "Removed '%s' from %s\n", name, ws.Project.Store.Path)
			}
			if removedLock {
				if err := ws.SaveLock(); err != nil {
					return cli.Exit(fmt.Sprintf("Error: failed to save lockfile: %v", err), 1)
				}
				_, _ = fmt.Fprintf(c.App.Writer, "Removed '%s' from %s\n", name, ws.Project.Lock.Path)
			}
			return nil
		},
	}
}
