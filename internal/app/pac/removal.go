package pac

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"github.com/PlanktoScope/pac/pkg/structures"
)

// FindPackages looks up packages by name or idname. An error wrapping ErrNotInstalled is returned
// if any query matches no package.
func FindPackages(pkgs []Package, queries []string) ([]Package, error) {
	found := make([]Package, 0, len(queries))
	missing := make([]string, 0)
	for _, query := range queries {
		i := slices.IndexFunc(pkgs, func(pkg Package) bool {
			return pkg.Name == query || pkg.IDName == query
		})
		if i < 0 {
			missing = append(missing, query)
			continue
		}
		found = append(found, pkgs[i])
	}
	if len(missing) > 0 {
		return nil, errors.Wrapf(ErrNotInstalled, "couldn't find %s", strings.Join(missing, ", "))
	}
	return found, nil
}

// Uninstall removes the directories of the packages, and their plugin-specific config files if
// purge is set. It returns the package set without the removed packages, sorted by idname.
func Uninstall(
	layout Layout, pkgs []Package, removed []Package, purge bool,
) ([]Package, error) {
	removedIDs := structures.NewSet[string]()
	for _, pkg := range removed {
		configPath := pkg.ConfigPath(layout.ConfigDir())
		if purge && FileExists(configPath) {
			if err := os.Remove(configPath); err != nil {
				return nil, errors.Wrapf(err, "couldn't remove config file %s", configPath)
			}
		}
		pkgPath := pkg.Path(layout.PackDir())
		if DirExists(pkgPath) {
			if err := os.RemoveAll(pkgPath); err != nil {
				return nil, errors.Wrapf(err, "couldn't remove %s", pkgPath)
			}
		}
		removedIDs.Add(pkg.IDName)
	}
	return Finalize(pkgs, removedIDs), nil
}

// Move changes the placement of an installed package to the specified category and loading mode,
// moving its directory. It returns the updated package set, sorted by idname.
func Move(layout Layout, pkgs []Package, moved Package, category string, opt bool) ([]Package, error) {
	i := slices.IndexFunc(pkgs, func(pkg Package) bool { return pkg.IDName == moved.IDName })
	if i < 0 {
		return nil, errors.Wrapf(ErrNotInstalled, "couldn't find %s", moved.IDName)
	}
	updated := slices.Clone(pkgs)
	target := &updated[i]
	oldPath := target.Path(layout.PackDir())
	target.Category = category
	target.Opt = opt
	if err := target.Check(); err != nil {
		return nil, err
	}
	newPath := target.Path(layout.PackDir())
	if oldPath == newPath {
		slices.SortFunc(updated, CompareIDNames)
		return updated, nil
	}
	if err := checkPlacements(updated); err != nil {
		return nil, err
	}
	if _, err := os.Lstat(newPath); err == nil {
		return nil, errors.Errorf("couldn't move %s because %s already exists", target.IDName, newPath)
	}

	if DirExists(oldPath) {
		if err := EnsureExists(filepath.Dir(newPath)); err != nil {
			return nil, errors.Wrapf(err, "couldn't make directory for %s", newPath)
		}
		if err := os.Rename(oldPath, newPath); err != nil {
			return nil, errors.Wrapf(err, "couldn't move %s to %s", oldPath, newPath)
		}
	}
	slices.SortFunc(updated, CompareIDNames)
	return updated, nil
}

// ListUntracked returns the directories of packages under the directory of packages which aren't in
// the package set, sorted by path.
func ListUntracked(packDir string, pkgs []Package) ([]string, error) {
	tracked := structures.NewSet[string]()
	for _, pkg := range pkgs {
		tracked.Add(pkg.Path(packDir))
	}
	matches, err := filepath.Glob(filepath.Join(packDir, "*", "*", "*"))
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't search %s", packDir)
	}
	untracked := make([]string, 0)
	for _, match := range matches {
		loading := filepath.Base(filepath.Dir(match))
		if loading != startDirName && loading != optDirName {
			continue
		}
		if !DirExists(match) || tracked.Has(match) {
			continue
		}
		untracked = append(untracked, match)
	}
	slices.Sort(untracked)
	return untracked, nil
}
