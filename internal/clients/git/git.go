// Package git brings local plugin repositories to a requested revision using go-git
package git

import (
	"strings"

	"github.com/blang/semver/v4"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/pkg/errors"
)

var (
	// ErrFormat is returned when a reference is malformed or can't be resolved to a commit.
	ErrFormat = errors.New("invalid format")
	// ErrSync is matched (with errors.Is) by every failure of the underlying git operations.
	ErrSync = errors.New("couldn't synchronize repository")
)

// SyncError is a failure of an underlying git operation, such as a network fetch or a checkout.
type SyncError struct {
	Op  string
	Err error
}

func newSyncError(err error, op string) error {
	return &SyncError{Op: op, Err: err}
}

func (e *SyncError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

func (e *SyncError) Is(target error) bool {
	return target == ErrSync
}

type Repo struct {
	repository *git.Repository
}

func Open(local string) (*Repo, error) {
	repo, err := git.PlainOpen(local)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't open git repo at %s", local)
	}
	return &Repo{repository: repo}, nil
}

// Head describes what the repository's HEAD points to: the branch name if HEAD is attached to a
// branch, or the abbreviated commit hash if HEAD is detached.
func (r *Repo) Head() (name string, detached bool, err error) {
	ref, err := r.repository.Head()
	if err != nil {
		return "", false, errors.Wrap(err, "couldn't resolve HEAD")
	}
	if ref.Name() == plumbing.HEAD {
		return AbbreviateHash(ref.Hash()), true, nil
	}
	return ref.Name().Short(), false, nil
}

// LatestVersionTag returns the name of the tag with the highest semantic version, or an empty
// string if no tag is a semantic version.
func (r *Repo) LatestVersionTag() (string, error) {
	iter, err := r.repository.Tags()
	if err != nil {
		return "", errors.Wrap(err, "couldn't list tags")
	}
	defer iter.Close()

	var (
		latestName    string
		latestVersion semver.Version
	)
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		version, perr := semver.Parse(strings.TrimPrefix(name, "v"))
		if perr != nil {
			return nil
		}
		if latestName == "" || version.GT(latestVersion) {
			latestName = name
			latestVersion = version
		}
		return nil
	})
	return latestName, errors.Wrap(err, "couldn't check tags for versions")
}
