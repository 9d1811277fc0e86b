package self

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/urfave/cli/v2"
)

// DefaultRepoSlug is where releases of the recipe binary are published.
const DefaultRepoSlug = "platoengine/recipe"

// NewSelfCommand creates a new command for self-management.
func NewSelfCommand() *cli.Command {
	return &cli.Command{
		Name:  "self",
		Usage: "Manage the recipe CLI application itself",
		Subcommands: []*cli.Command{
			{
				Name:  "update",
				Usage: "Update recipe to the latest version",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Automatically confirm the update",
					},
					&cli.BoolFlag{
						Name:  "check",
						Usage: "Check for available updates without installing",
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "GitHub repository to take releases from, as owner/repo",
						Value: DefaultRepoSlug,
					},
					&cli.BoolFlag{
						Name:  "verbose",
						Usage: "Enable verbose output",
					},
				},
				Action: updateAction,
			},
		},
	}
}

// parseCurrentVersion accepts vX.Y.Z as well as X.Y.Z.
func parseCurrentVersion(s string) (*semver.Version, error) {
	v, err := semver.NewVersion(strings.TrimPrefix(s, "v"))
	if err != nil {
		return nil, fmt.Errorf("error parsing current version '%s': %w. Ensure version is like vX.Y.Z or X.Y.Z", s, err)
	}
	return v, nil
}

// repoSlug validates a --source value, falling back to DefaultRepoSlug.
func repoSlug(source string) (string, error) {
	if source == "" {
		return DefaultRepoSlug, nil
	}
	owner, repo, ok := strings.Cut(source, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", fmt.Errorf("invalid --source format. Expected 'owner/repo', got: %s", source)
	}
	return source, nil
}

func updateAction(c *cli.Context) error {
	out := c.App.Writer
	verbose := c.Bool("verbose")

	current, err := parseCurrentVersion(c.App.Version)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	slug, err := repoSlug(c.String("source"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	updater, err := newUpdater()
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	if verbose {
		_, _ = fmt.Fprintf(out, "Checking %s for releases newer than %s\n", slug, current)
	}
	release, found, err := updater.DetectLatest(c.Context, selfupdate.ParseSlug(slug))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: failed to detect latest release: %v", err), 1)
	}
	if !found || !release.GreaterThan(current.String()) {
		_, _ = fmt.Fprintf(out, "recipe %s is up to date.\n", c.App.Version)
		return nil
	}

	_, _ = fmt.Fprintf(out, "recipe %s is available (running %s).\n", release.Version(), c.App.Version)
	if verbose && release.ReleaseNotes != "" {
		_, _ = fmt.Fprintf(out, "%s\n", release.ReleaseNotes)
	}
	if c.Bool("check") {
		return nil
	}
	if !c.Bool("yes") && !confirm(c.App.Reader, out, "Install it? (y/N): ") {
		_, _ = fmt.Fprintln(out, "Update cancelled.")
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: could not locate the running binary: %v", err), 1)
	}
	if err := updater.UpdateTo(c.Context, release, exe); err != nil {
		return cli.Exit(fmt.Sprintf("Error: failed to update: %v", err), 1)
	}
	_, _ = fmt.Fprintf(out, "Updated recipe to %s.\n", release.Version())
	return nil
}

func newUpdater() (*selfupdate.Updater, error) {
	src, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub source: %w", err)
	}
	updater, err := selfupdate.NewUpdater(selfupdate.Config{Source: src})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize updater: %w", err)
	}
	return updater, nil
}

// confirm asks a yes/no question; anything but "y" is a no.
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	_, _ = fmt.Fprint(out, prompt)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	return strings.EqualFold(strings.TrimSpace(answer), "y")
}
