package list

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/platoengine/recipe/internal/cli/workspace"
	"github.com/platoengine/recipe/internal/core/hasher"
)

// recipeDisplayInfo holds all information needed for displaying a recipe.
type recipeDisplayInfo struct {
	Name           string
	DefaultVersion string
	Capabilities   []string
	LockedVersion  string
	LockedDigest   string
	IsLocked       bool
	Installed      string // installed version, empty when not in the store
}

// NewListCommand creates the 'list' command.
func NewListCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "Displays the recipes in the repository and their lock and install status.",
		Flags:   workspace.Flags(),
		Action:  listAction,
	}
}

func listAction(c *cli.Context) error {
	ws, err := workspace.Open(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	out := c.App.Writer

	var displayRecipes []recipeDisplayInfo
	for _, name := range ws.Repo.Names() {
		pkg, err := ws.Repo.Get(name)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
		}
		info := recipeDisplayInfo{Name: name, Capabilities: pkg.Capabilities}
		if v, ok := pkg.DefaultVersion(); ok {
			info.DefaultVersion = v.ID.String()
		}
		if entry, ok := ws.Lock.Packages[name]; ok {
			info.IsLocked = true
			info.LockedVersion = entry.Version
			info.LockedDigest = entry.Digest
		}
		if in, ok := ws.Store.Installs[name]; ok {
			info.Installed = in.Version
		}
		displayRecipes = append(displayRecipes, info)
	}

	repoPathColor := color.New(color.FgHiBlack, color.Bold, color.Underline).SprintFunc()
	recipesHeaderColor := color.New(color.FgCyan, color.Bold).SprintFunc()
	nameColor := color.New(color.FgWhite).SprintFunc()
	versionColor := color.New(color.FgMagenta).SprintFunc()
	digestColor := color.New(color.FgYellow).SprintFunc()
	dimColor := color.New(color.FgHiBlack).SprintFunc()
	installedColor := color.New(color.FgGreen).SprintFunc()

	_, _ = fmt.Fprintln(out, repoPathColor(ws.Repo.Dir))
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, recipesHeaderColor("recipes:"))

	if len(displayRecipes) == 0 {
		_, _ = fmt.Fprintf(out, "No recipes found in %s.\n", ws.Repo.Dir)
		return nil
	}

	for _, r := range displayRecipes {
		lockState := "not locked"
		if r.IsLocked {
			lockState = fmt.Sprintf("locked %s %s", r.LockedVersion, hasher.Short(r.LockedDigest, 12))
		}
		line := fmt.Sprintf("%s@%s %s", nameColor(r.Name), versionColor(r.DefaultVersion), digestColor(lockState))
		if len(r.Capabilities) > 0 {
			line += " " + dimColor("["+strings.Join(r.Capabilities, ",")+"]")
		}
		if r.Installed != "" {
			line += " " + installedColor("installed "+r.Installed)
		}
		_, _ = fmt.Fprintln(out, line)
	}
	return nil
}
