package cli

import (
	"io/fs"
	"path/filepath"

	"github.com/docker/go-units"
	"github.com/pkg/errors"

	"github.com/PlanktoScope/pac/internal/app/pac"
	"github.com/PlanktoScope/pac/internal/clients/git"
)

// ListOptions filters and expands the listing of packages.
type ListOptions struct {
	StartOnly bool
	OptOnly   bool
	Category  string
	// Detached lists directories of packages which aren't in the package set, instead of packages.
	Detached bool
	Verbose  bool
}

func (o ListOptions) includes(pkg pac.Package) bool {
	if o.StartOnly && pkg.Opt {
		return false
	}
	if o.OptOnly && !pkg.Opt {
		return false
	}
	return o.Category == "" || pkg.Category == o.Category
}

// ListPackages prints the packages in the package set.
func ListPackages(indent int, env Env, opts ListOptions) error {
	if opts.StartOnly && opts.OptOnly {
		return errors.New("only one of --start or --opt may be specified")
	}
	pkgs, err := env.loadPackages()
	if err != nil {
		return err
	}

	if opts.Detached {
		untracked, err := pac.ListUntracked(env.Layout.PackDir(), pkgs)
		if err != nil {
			return err
		}
		for _, path := range untracked {
			IndentedFprintln(indent, env.Out, path)
		}
		return nil
	}

	for _, pkg := range pkgs {
		if !opts.includes(pkg) {
			continue
		}
		if !opts.Verbose {
			IndentedFprintf(indent, env.Out, "%s: %s\n", pkg.Name, pkg.IDName)
			continue
		}
		printPackageDetails(indent, env, pkg)
	}
	return nil
}

func printPackageDetails(indent int, env Env, pkg pac.Package) {
	IndentedFprintf(indent, env.Out, "%s:\n", pkg.Name)
	indent++
	IndentedFprintf(indent, env.Out, "ID: %s\n", pkg.IDName)
	if pkg.IsLocal() {
		IndentedFprintln(indent, env.Out, "Remote: (local)")
	} else {
		IndentedFprintf(indent, env.Out, "Remote: %s\n", pkg.Remote)
	}
	if pkg.Reference != nil {
		IndentedFprintf(indent, env.Out, "Requested: %s\n", pkg.Reference)
	}
	loading := "start"
	if pkg.Opt {
		loading = "opt"
	}
	IndentedFprintf(indent, env.Out, "Category: %s (%s)\n", pkg.Category, loading)
	if len(pkg.ForTypes) > 0 {
		IndentedFprintf(indent, env.Out, "For: %v\n", pkg.ForTypes)
	}
	if pkg.LoadCommand != "" {
		IndentedFprintf(indent, env.Out, "On: %s\n", pkg.LoadCommand)
	}

	pkgPath := pkg.Path(env.Layout.PackDir())
	if !pac.DirExists(pkgPath) {
		IndentedFprintln(indent, env.Out, "Path: (not installed)")
		return
	}
	IndentedFprintf(indent, env.Out, "Path: %s\n", pkgPath)
	if size, err := dirSize(pkgPath); err == nil {
		IndentedFprintf(indent, env.Out, "Size: %s\n", units.HumanSize(float64(size)))
	}
	repo, err := git.Open(pkgPath)
	if err != nil {
		return
	}
	if head, detached, err := repo.Head(); err == nil {
		if detached {
			IndentedFprintf(indent, env.Out, "Head: %s (detached)\n", head)
		} else {
			IndentedFprintf(indent, env.Out, "Head: %s\n", head)
		}
	}
	if latest, err := repo.LatestVersionTag(); err == nil && latest != "" {
		IndentedFprintf(indent, env.Out, "Latest version: %s\n", latest)
	}
}

func dirSize(dirPath string) (int64, error) {
	var total int64
	err := filepath.WalkDir(dirPath, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, errors.Wrapf(err, "couldn't measure the size of %s", dirPath)
	}
	return total, nil
}
