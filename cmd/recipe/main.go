package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/platoengine/recipe/internal/cli/add"
	"github.com/platoengine/recipe/internal/cli/env"
	"github.com/platoengine/recipe/internal/cli/info"
	"github.com/platoengine/recipe/internal/cli/list"
	"github.com/platoengine/recipe/internal/cli/remove"
	"github.com/platoengine/recipe/internal/cli/resolve"
	"github.com/platoengine/recipe/internal/cli/self"
	"github.com/platoengine/recipe/internal/cli/update"
)

// version is stamped at release time with -ldflags "-X main.version=...".
var version = "v0.1.0"

func main() {
	app := &cli.App{
		Name:    "recipe",
		Usage:   "Resolves build recipes into build arguments and environments",
		Version: version,
		Action: func(c *cli.Context) error {
			_ = cli.ShowAppHelp(c)
			return nil
		},
		Commands: []*cli.Command{
			list.NewListCommand(),
			info.NewInfoCommand(),
			resolve.NewResolveCommand(),
			env.NewEnvCommand(),
			add.NewAddCommand(),
			remove.RemoveCommand(),
			update.NewUpdateCommand(),
			self.NewSelfCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
