package pac

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

func install(t *testing.T, layout Layout, pkgs ...Package) {
	t.Helper()
	for _, p := range pkgs {
		if err := EnsureExists(p.Path(layout.PackDir())); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
	}
}

func TestFindPackages(t *testing.T) {
	t.Parallel()
	pkgs := []Package{pkg("x/a", "alpha", "default", false), pkg("x/b", "beta", "default", false)}

	found, err := FindPackages(pkgs, []string{"beta", "x/a"})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if diff := cmp.Diff([]Package{pkgs[1], pkgs[0]}, found); diff != "" {
		t.Errorf("unexpected packages (-want +got):\n%s", diff)
	}

	if _, err = FindPackages(pkgs, []string{"alpha", "gamma"}); !errors.Is(err, ErrNotInstalled) {
		t.Errorf("expected an error wrapping ErrNotInstalled, got %v", err)
	}
}

func TestUninstall(t *testing.T) {
	t.Parallel()
	layout := Layout{VimDir: t.TempDir()}
	a := pkg("x/a", "a", "default", false)
	b := pkg("x/b", "b", "lang", true)
	c := pkg("x/c", "c", "default", false)
	install(t, layout, a, b, c)
	if err := EnsureExists(layout.ConfigDir()); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	for _, p := range []Package{a, b} {
		if err := os.WriteFile(p.ConfigPath(layout.ConfigDir()), nil, 0o644); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
	}

	remaining, err := Uninstall(layout, []Package{c, b, a}, []Package{a}, false)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if diff := cmp.Diff([]Package{b, c}, remaining); diff != "" {
		t.Errorf("unexpected package set (-want +got):\n%s", diff)
	}
	if DirExists(a.Path(layout.PackDir())) {
		t.Error("expected the package directory to be removed")
	}
	if !FileExists(a.ConfigPath(layout.ConfigDir())) {
		t.Error("expected the config file to be kept without purging")
	}

	remaining, err = Uninstall(layout, remaining, []Package{b}, true)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if diff := cmp.Diff([]Package{c}, remaining); diff != "" {
		t.Errorf("unexpected package set (-want +got):\n%s", diff)
	}
	if FileExists(b.ConfigPath(layout.ConfigDir())) {
		t.Error("expected the config file to be purged")
	}
	if !DirExists(c.Path(layout.PackDir())) {
		t.Error("expected other packages to be untouched")
	}
}

func TestMove(t *testing.T) {
	t.Parallel()
	layout := Layout{VimDir: t.TempDir()}
	a := pkg("x/a", "a", "default", false)
	b := pkg("x/b", "b", "lang", true)
	install(t, layout, a, b)
	marker := filepath.Join(a.Path(layout.PackDir()), "plugin.vim")
	if err := os.WriteFile(marker, []byte("x"), 0o644); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	updated, err := Move(layout, []Package{a, b}, a, "lang", true)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	moved := pkg("x/a", "a", "lang", true)
	if diff := cmp.Diff([]Package{moved, b}, updated); diff != "" {
		t.Errorf("unexpected package set (-want +got):\n%s", diff)
	}
	if !FileExists(filepath.Join(moved.Path(layout.PackDir()), "plugin.vim")) {
		t.Error("expected the package directory to be moved")
	}
	if DirExists(a.Path(layout.PackDir())) {
		t.Error("expected the old package directory to be gone")
	}
}

func TestMoveCollision(t *testing.T) {
	t.Parallel()
	layout := Layout{VimDir: t.TempDir()}
	a := pkg("github.com/x/foo", "foo", "default", false)
	b := pkg("gitlab.com/y/foo", "foo", "lang", false)
	install(t, layout, a, b)

	_, err := Move(layout, []Package{a, b}, a, "lang", false)
	if !errors.Is(err, ErrPathCollision) {
		t.Errorf("expected an error wrapping ErrPathCollision, got %v", err)
	}
	if !DirExists(a.Path(layout.PackDir())) {
		t.Error("expected the package directory to stay in place")
	}
}

func TestMoveInvalidCategory(t *testing.T) {
	t.Parallel()
	for _, category := range []string{"x/y", "..", `x\y`} {
		t.Run(category, func(t *testing.T) {
			t.Parallel()
			layout := Layout{VimDir: t.TempDir()}
			a := pkg("x/a", "a", "default", false)
			install(t, layout, a)

			if _, err := Move(layout, []Package{a}, a, category, false); err == nil {
				t.Error("expected an error")
			}
			if !DirExists(a.Path(layout.PackDir())) {
				t.Error("expected the package directory to stay in place")
			}
		})
	}
}

func TestListUntracked(t *testing.T) {
	t.Parallel()
	layout := Layout{VimDir: t.TempDir()}
	tracked := pkg("x/a", "a", "default", false)
	untrackedStart := pkg("x/b", "b", "default", false)
	untrackedOpt := pkg("x/c", "c", "lang", true)
	install(t, layout, tracked, untrackedStart, untrackedOpt)
	if err := EnsureExists(filepath.Join(layout.PackDir(), "default", "other", "d")); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	untracked, err := ListUntracked(layout.PackDir(), []Package{tracked})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	expected := []string{
		untrackedStart.Path(layout.PackDir()),
		untrackedOpt.Path(layout.PackDir()),
	}
	if diff := cmp.Diff(expected, untracked); diff != "" {
		t.Errorf("unexpected directories (-want +got):\n%s", diff)
	}
}
