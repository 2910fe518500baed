package cli

import (
	"io"

	"github.com/pkg/errors"

	"github.com/PlanktoScope/pac/internal/app/pac"
	"github.com/PlanktoScope/pac/internal/clients/git"
)

// Env is what commands need to find and manage the package set.
type Env struct {
	Layout   pac.Layout
	Settings pac.Settings
	// Out receives the normal output of commands.
	Out io.Writer
	// Progress receives progress messages from remotes; it's only used when tasks run serially,
	// because progress messages of concurrent tasks are unreadable when interleaved.
	Progress io.Writer
}

func (e Env) packfile() pac.Packfile {
	return pac.Packfile{Path: e.Layout.PackfilePath()}
}

func (e Env) loadPackages() ([]pac.Package, error) {
	pkgs, err := e.packfile().Load()
	if err != nil {
		return nil, errors.Wrap(err, "couldn't load the package set")
	}
	return pkgs, nil
}

// persist saves the package set and then regenerates the plugin loader from it.
func (e Env) persist(pkgs []pac.Package) error {
	if err := e.packfile().Save(pkgs); err != nil {
		return errors.Wrap(err, "couldn't save the package set")
	}
	if err := pac.GenerateLoader(e.Layout, pkgs); err != nil {
		return errors.Wrap(err, "couldn't update the plugin loader")
	}
	return nil
}

func (e Env) syncOptions(indent, workers int) git.SyncOptions {
	opts := git.SyncOptions{
		Indent:        indent,
		FetchAttempts: e.Settings.FetchAttempts,
	}
	opts.Progress = e.serialOutput(workers)
	return opts
}

// serialOutput returns the writer for progress and build output, which is only shown when tasks run
// one at a time.
func (e Env) serialOutput(workers int) io.Writer {
	if workers != 1 {
		return nil
	}
	return e.Progress
}

func (e Env) installed(pkg pac.Package) bool {
	return pkg.IsInstalled(e.Layout.PackDir())
}
