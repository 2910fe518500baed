package cli

import (
	"github.com/pkg/errors"

	"github.com/PlanktoScope/pac/internal/app/pac"
)

// UninstallPackages removes the packages with the specified names or idnames. If purge is set,
// their plugin-specific config files are also removed. Nothing is removed if any name is unknown.
func UninstallPackages(indent int, env Env, names []string, purge bool) error {
	pkgs, err := env.loadPackages()
	if err != nil {
		return err
	}
	removed, err := pac.FindPackages(pkgs, names)
	if err != nil {
		return err
	}
	remaining, err := pac.Uninstall(env.Layout, pkgs, removed, purge)
	if err != nil {
		return errors.Wrap(err, "couldn't uninstall plugins")
	}
	if err = env.persist(remaining); err != nil {
		return err
	}
	for _, pkg := range removed {
		IndentedFprintf(indent, env.Out, "Uninstalled %s\n", pkg.IDName)
	}
	return nil
}

// MovePackage moves the package with the specified name or idname to a category (or keeps its
// category, if none is specified) and to start or opt loading.
func MovePackage(indent int, env Env, name, category string, opt bool) error {
	pkgs, err := env.loadPackages()
	if err != nil {
		return err
	}
	found, err := pac.FindPackages(pkgs, []string{name})
	if err != nil {
		return err
	}
	moved := found[0]
	if category == "" {
		category = moved.Category
	}
	updated, err := pac.Move(env.Layout, pkgs, moved, category, opt)
	if err != nil {
		return errors.Wrapf(err, "couldn't move %s", moved.IDName)
	}
	if err = env.persist(updated); err != nil {
		return err
	}
	moved.Category = category
	moved.Opt = opt
	IndentedFprintf(
		indent, env.Out, "Moved %s to %s\n", moved.IDName, moved.Path(env.Layout.PackDir()),
	)
	return nil
}

// Generate regenerates the plugin loader from the package set.
func Generate(indent int, env Env) error {
	pkgs, err := env.loadPackages()
	if err != nil {
		return err
	}
	if err = pac.GenerateLoader(env.Layout, pkgs); err != nil {
		return errors.Wrap(err, "couldn't update the plugin loader")
	}
	IndentedFprintf(indent, env.Out, "Generated %s\n", env.Layout.LoaderPath())
	return nil
}
