package pac

import (
	"github.com/pkg/errors"
)

var (
	// ErrAlreadyInstalled is returned when installing a package whose directory already exists.
	ErrAlreadyInstalled = errors.New("plugin already installed")
	// ErrNotInstalled is returned when a package's directory doesn't exist, or when a named
	// package is not in the package set.
	ErrNotInstalled = errors.New("plugin not installed")
	// ErrSkipLocal is returned when updating a package which has no remote.
	ErrSkipLocal = errors.New("local plugin, skipping")
	// ErrBuild is returned when a package's build command fails.
	ErrBuild = errors.New("couldn't build plugin")
	// ErrPathCollision is returned when two distinct packages would be installed to the same path.
	ErrPathCollision = errors.New("plugins would be installed to the same directory")
)
