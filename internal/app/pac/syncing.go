package pac

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/PlanktoScope/pac/internal/clients/git"
)

// SyncFunc brings a local directory to the state of a remote repository at a reference.
type SyncFunc func(
	ctx context.Context, remote, local string, ref *git.Reference, opts git.SyncOptions,
) error

// Syncer installs and updates packages in a directory of packages.
type Syncer struct {
	PackDir string
	Options git.SyncOptions
	// BuildOutput receives the output of build commands, if it's not nil.
	BuildOutput io.Writer

	clone SyncFunc
	pull  SyncFunc
}

func NewSyncer(packDir string, opts git.SyncOptions) *Syncer {
	return &Syncer{
		PackDir: packDir,
		Options: opts,
		clone:   git.Clone,
		pull:    git.Pull,
	}
}

// Install clones the package into its directory and runs its build command. The package's directory
// is removed if the build command fails.
func (s *Syncer) Install(ctx context.Context, pkg Package) error {
	pkgPath := pkg.Path(s.PackDir)
	if DirExists(pkgPath) {
		return errors.Wrapf(ErrAlreadyInstalled, "found under %s", pkgPath)
	}
	if pkg.IsLocal() {
		return errors.Errorf("local plugin has no remote to install from, and %s is missing", pkgPath)
	}
	if err := EnsureExists(filepath.Dir(pkgPath)); err != nil {
		return errors.Wrapf(err, "couldn't make directory for %s", pkgPath)
	}
	if err := s.clone(ctx, pkg.Remote, pkgPath, pkg.Reference, s.Options); err != nil {
		return err
	}
	if pkg.BuildCommand == "" {
		return nil
	}
	if err := RunBuild(ctx, pkgPath, pkg.BuildCommand, s.BuildOutput); err != nil {
		if rerr := os.RemoveAll(pkgPath); rerr != nil {
			return errors.Wrapf(err, "couldn't remove %s after failed build (%s)", pkgPath, rerr)
		}
		return err
	}
	return nil
}

// Update pulls the package's directory to the package's reference.
func (s *Syncer) Update(ctx context.Context, pkg Package) error {
	pkgPath := pkg.Path(s.PackDir)
	if !DirExists(pkgPath) {
		return errors.Wrapf(ErrNotInstalled, "missing %s", pkgPath)
	}
	if pkg.IsLocal() {
		return ErrSkipLocal
	}
	return s.pull(ctx, pkg.Remote, pkgPath, pkg.Reference, s.Options)
}
