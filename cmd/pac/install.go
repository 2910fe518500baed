package main

import (
	"slices"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	pcli "github.com/PlanktoScope/pac/internal/app/pac/cli"
)

var installCmd = &cli.Command{
	Name:      "install",
	Aliases:   []string{"i"},
	Category:  "Modify plugins",
	Usage:     "Installs plugins, or every plugin in the package set if none are specified",
	ArgsUsage: "[owner/repo|remote_url]...",
	Flags: append([]cli.Flag{
		&cli.BoolFlag{
			Name:    "opt",
			Aliases: []string{"o"},
			Usage:   "Install the plugins to be loaded on demand rather than at startup",
		},
		&cli.StringFlag{
			Name:    "category",
			Aliases: []string{"c"},
			Usage:   "Category to install the plugins under (default: the category in the settings)",
		},
		&cli.StringFlag{
			Name:  "branch",
			Usage: "Branch of the plugins to check out",
		},
		&cli.StringFlag{
			Name:  "tag",
			Usage: "Tag of the plugins to check out",
		},
		&cli.StringFlag{
			Name:  "commit",
			Usage: "Full hash of the commit of the plugins to check out",
		},
		&cli.StringFlag{
			Name:  "rev",
			Usage: "Branch, tag (as a semantic version), or full commit hash to check out",
		},
		&cli.StringFlag{
			Name:  "as",
			Usage: "Name of the plugin's directory, if a single plugin is installed",
		},
		&cli.StringFlag{
			Name:  "on",
			Usage: "Command which loads the plugin on demand when it's first run; implies --opt",
		},
		&cli.StringFlag{
			Name:  "for",
			Usage: "Comma-separated file types which load the plugin on demand; implies --opt",
		},
		&cli.StringFlag{
			Name:  "build",
			Usage: "Command to run in the plugin's directory after it's installed",
		},
	}, taskFlags...),
	Action: installAction,
}

func installAction(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return err
	}
	opts, err := taskOptions(c, env.Settings)
	if err != nil {
		return err
	}
	category := env.Settings.Category
	if c.IsSet("category") {
		category = c.String("category")
	}
	targets, err := pcli.MakeTargets(c.Args().Slice(), pcli.TargetOptions{
		Opt:          c.Bool("opt"),
		Category:     category,
		Branch:       c.String("branch"),
		Tag:          c.String("tag"),
		Commit:       c.String("commit"),
		Rev:          c.String("rev"),
		As:           c.String("as"),
		LoadCommand:  c.String("on"),
		ForTypes:     c.String("for"),
		BuildCommand: c.String("build"),
	})
	if err != nil {
		return err
	}
	return pcli.InstallPackages(c.Context, env, targets, opts)
}

var updateCmd = &cli.Command{
	Name:      "update",
	Aliases:   []string{"up"},
	Category:  "Modify plugins",
	Usage:     "Updates plugins, or every plugin in the package set if none are specified",
	ArgsUsage: "[name|idname]...",
	Flags: append([]cli.Flag{
		&cli.StringSliceFlag{
			Name:    "skip",
			Aliases: []string{"s"},
			Usage:   "Glob pattern or substring of idnames of plugins not to update",
		},
	}, taskFlags...),
	Action: updateAction,
}

func updateAction(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return err
	}
	opts, err := taskOptions(c, env.Settings)
	if err != nil {
		return err
	}
	if c.IsSet("skip") {
		opts.Skip = slices.Concat(opts.Skip, c.StringSlice("skip"))
	}
	return pcli.UpdatePackages(c.Context, env, c.Args().Slice(), opts)
}

var uninstallCmd = &cli.Command{
	Name:      "uninstall",
	Aliases:   []string{"rm"},
	Category:  "Modify plugins",
	Usage:     "Removes plugins",
	ArgsUsage: "name|idname...",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "all",
			Usage: "Also remove the plugin-specific config files of the plugins",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() == 0 {
			return errors.New("at least one plugin must be specified")
		}
		env, err := getEnv(c)
		if err != nil {
			return err
		}
		return pcli.UninstallPackages(0, env, c.Args().Slice(), c.Bool("all"))
	},
}

var moveCmd = &cli.Command{
	Name:      "move",
	Aliases:   []string{"mv"},
	Category:  "Modify plugins",
	Usage:     "Moves a plugin to another category, or between start and opt loading",
	ArgsUsage: "name|idname [category]",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    "opt",
			Aliases: []string{"o"},
			Usage:   "Move the plugin to be loaded on demand rather than at startup",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 || c.NArg() > 2 {
			return errors.New("a plugin and an optional category must be specified")
		}
		env, err := getEnv(c)
		if err != nil {
			return err
		}
		return pcli.MovePackage(0, env, c.Args().Get(0), c.Args().Get(1), c.Bool("opt"))
	},
}

var listCmd = &cli.Command{
	Name:     "list",
	Aliases:  []string{"ls"},
	Category: "Query plugins",
	Usage:    "Lists plugins in the package set",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "start",
			Usage: "Only list plugins loaded at startup",
		},
		&cli.BoolFlag{
			Name:  "opt",
			Usage: "Only list plugins loaded on demand",
		},
		&cli.StringFlag{
			Name:    "category",
			Aliases: []string{"c"},
			Usage:   "Only list plugins in the category",
		},
		&cli.BoolFlag{
			Name:  "detached",
			Usage: "List plugin directories which aren't in the package set",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Describe the state of each plugin",
		},
	},
	Action: func(c *cli.Context) error {
		env, err := getEnv(c)
		if err != nil {
			return err
		}
		return pcli.ListPackages(0, env, pcli.ListOptions{
			StartOnly: c.Bool("start"),
			OptOnly:   c.Bool("opt"),
			Category:  c.String("category"),
			Detached:  c.Bool("detached"),
			Verbose:   c.Bool("verbose"),
		})
	},
}

var generateCmd = &cli.Command{
	Name:     "generate",
	Category: "Modify plugins",
	Usage:    "Regenerates the plugin loader from the package set",
	Action: func(c *cli.Context) error {
		env, err := getEnv(c)
		if err != nil {
			return err
		}
		return pcli.Generate(0, env)
	},
}
