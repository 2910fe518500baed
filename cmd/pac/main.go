package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"

	"github.com/carlmjohnson/versioninfo"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := app.RunContext(ctx, os.Args); err != nil {
		stop()
		log.Fatal(err)
	}
}

var app = &cli.App{
	Name:    "pac",
	Version: toolVersion,
	Usage:   "Manages Vim and Neovim plugins as native packages",
	Commands: []*cli.Command{
		installCmd,
		updateCmd,
		uninstallCmd,
		moveCmd,
		listCmd,
		generateCmd,
		completionsCmd,
	},
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "vim-dir",
			Value:   defaultVimDir(),
			Usage:   "Path of the Vim (or Neovim) configuration directory",
			EnvVars: []string{"PAC_VIM_DIR"},
		},
		&cli.StringFlag{
			Name:    "config",
			Usage:   "Path of the settings file (default: .pac/pac.toml in the Vim directory)",
			EnvVars: []string{"PAC_CONFIG"},
		},
	},
	EnableBashCompletion: true,
	Suggest:              true,
}

func defaultVimDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	if os.Getenv("PAC_NVIM") != "" {
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, "nvim")
		}
		return filepath.Join(home, ".config", "nvim")
	}
	return filepath.Join(home, ".vim")
}

// Versioning

// fallbackVersion is the version which pac reports itself as if its actual version is unknown.
const fallbackVersion = "v0.1.0-dev"

var (
	toolVersion = determineVersion(buildSummary, fallbackVersion)
	// buildSummary should be overridden by ldflags, such as with GoReleaser's "Summary".
	buildSummary = ""
)

// determineVersion returns either a semver, a pseudoversion, or a Git hash based on information
// available from Go's `debug.ReadBuildInfo()`.
func determineVersion(override, fallback string) string {
	if override != "" {
		return override
	}

	const dirtySuffix = "-dirty"
	if info, ok := debug.ReadBuildInfo(); ok &&
		info.Main.Version != "" && info.Main.Version != "(devel)" {
		v := info.Main.Version
		if versioninfo.DirtyBuild {
			v += dirtySuffix
		}
		return v
	}
	if v := versioninfo.Version; v != "unknown" && v != "(devel)" {
		if versioninfo.DirtyBuild {
			v += dirtySuffix
		}
		return v
	}

	if r := versioninfo.Revision; r != "unknown" && r != "" {
		if versioninfo.DirtyBuild {
			r += dirtySuffix
		}
		return r
	}
	return fallback
}
