package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/PlanktoScope/pac/internal/app/pac"
	pcli "github.com/PlanktoScope/pac/internal/app/pac/cli"
	"github.com/PlanktoScope/pac/internal/clients/git"
)

// getEnv loads the settings and sets up the network transport for git operations.
func getEnv(c *cli.Context) (pcli.Env, error) {
	vimDir := c.String("vim-dir")
	if vimDir == "" {
		return pcli.Env{}, errors.New("couldn't determine the Vim directory; set --vim-dir")
	}
	layout := pac.Layout{VimDir: vimDir}
	settingsPath := c.String("config")
	if settingsPath == "" {
		settingsPath = layout.SettingsPath()
	}
	settings, err := pac.LoadSettings(settingsPath)
	if err != nil {
		return pcli.Env{}, err
	}
	git.InstallTransport()
	return pcli.Env{
		Layout:   layout,
		Settings: settings,
		Out:      os.Stdout,
		Progress: os.Stderr,
	}, nil
}

var taskFlags = []cli.Flag{
	&cli.IntFlag{
		Name:    "threads",
		Aliases: []string{"j"},
		Usage:   "Maximum number of plugins to process concurrently (default: number of CPUs)",
		EnvVars: []string{"PAC_THREADS"},
	},
	&cli.DurationFlag{
		Name:    "timeout",
		Usage:   "Maximum duration of the processing of each plugin, or 0 for no limit",
		EnvVars: []string{"PAC_TIMEOUT"},
	},
}

// taskOptions combines task flags with the settings, preferring flags which are set.
func taskOptions(c *cli.Context, settings pac.Settings) (pcli.TaskOptions, error) {
	opts := pcli.TaskOptions{
		Workers: settings.Threads,
		Skip:    settings.Skip,
	}
	timeout, err := settings.TaskTimeout()
	if err != nil {
		return pcli.TaskOptions{}, err
	}
	opts.Timeout = timeout
	if c.IsSet("threads") {
		opts.Workers = c.Int("threads")
	}
	if c.IsSet("timeout") {
		opts.Timeout = c.Duration("timeout")
	}
	if opts.Timeout < 0 {
		return pcli.TaskOptions{}, errors.Errorf("timeout %s is negative", opts.Timeout)
	}
	return opts, pac.ValidateWorkers(opts.Workers)
}
