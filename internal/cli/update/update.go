package update

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/platoengine/recipe/internal/cli/workspace"
	"github.com/platoengine/recipe/internal/core/hasher"
)

// NewUpdateCommand creates a new cli.Command for the "update" command. It
// re-resolves locked packages with the version and overrides they were locked
// with and records any configuration that changed.
func NewUpdateCommand() *cli.Command {
	flags := append(workspace.Flags(),
		&cli.BoolFlag{
			Name:  "check",
			Usage: "Report drift without writing the lockfile; fails if anything changed",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable verbose output",
		},
	)
	return &cli.Command{
		Name:      "update",
		Usage:     "Re-resolves locked packages and updates their lockfile entries",
		ArgsUsage: "[package_names...]",
		Flags:     flags,
		Action:    updateAction,
	}
}

func updateAction(c *cli.Context) error {
	verbose := c.Bool("verbose")
	check := c.Bool("check")
	out := c.App.Writer

	ws, err := workspace.Open(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}

	names := c.Args().Slice()
	if len(names) == 0 {
		names = ws.Lock.Names()
		if len(names) == 0 {
			_, _ = fmt.Fprintf(out, "No packages found in %s to update.\n", ws.Project.Lock.Path)
			return nil
		}
		if verbose {
			_, _ = fmt.Fprintf(out, "Targeting all %d locked packages.\n", len(names))
		}
	}

	changedColor := color.New(color.FgYellow).SprintFunc()
	okColor := color.New(color.FgGreen).SprintFunc()

	var changed, failed []string
	for _, name := range names {
		entry, ok := ws.Lock.Packages[name]
		if !ok {
			_, _ = fmt.Fprintf(c.App.ErrWriter, "Warning: Package '%s' is not in the lockfile. Skipping.\n", name)
			continue
		}
		target, err := workspace.TargetFromLock(name, entry)
		if err != nil {
			_, _ = fmt.Fprintf(c.App.ErrWriter, "Error: %v\n", err)
			failed = append(failed, name)
			continue
		}
		_, res, err := workspace.Resolve(ws, target, workspace.Locations{Prefix: entry.Prefix})
		if err != nil {
			_, _ = fmt.Fprintf(c.App.ErrWriter, "Error: failed to resolve %s: %v\n", name, err)
			failed = append(failed, name)
			continue
		}
		if verbose {
			for _, m := range res.Mismatches {
				_, _ = fmt.Fprintf(c.App.ErrWriter, "Warning: %s: dependency %s\n", name, m)
			}
		}

		fresh := workspace.LockEntry(target, res)
		if fresh.Digest == entry.Digest {
			_, _ = fmt.Fprintf(out, "%s %s\n", name, okColor("up to date"))
			continue
		}
		changed = append(changed, name)
		_, _ = fmt.Fprintf(out, "%s %s %s -> %s\n", name, changedColor("changed"),
			hasher.Short(entry.Digest, 12), hasher.Short(fresh.Digest, 12))
		if !check {
			ws.Lock.AddOrUpdatePackage(name, fresh)
		}
	}

	if len(changed) > 0 && !check {
		if err := ws.SaveLock(); err != nil {
			return cli.Exit(fmt.Sprintf("Error: failed to save lockfile: %v", err), 1)
		}
		if verbose {
			_, _ = fmt.Fprintf(out, "Updated %d entries in %s\n", len(changed), ws.Project.Lock.Path)
		}
	}
	if len(failed) > 0 {
		return cli.Exit(fmt.Sprintf("Error: failed to update %d package(s): %v", len(failed), failed), 1)
	}
	if check && len(changed) > 0 {
		return cli.Exit(fmt.Sprintf("Error: %d locked package(s) drifted: %v", len(changed), changed), 1)
	}
	return nil
}
