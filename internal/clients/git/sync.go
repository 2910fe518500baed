package git

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/cenk/backoff"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/pkg/errors"

	"github.com/PlanktoScope/pac/internal/clients/cli"
)

// SyncOptions controls the network behavior and output of Clone and Pull.
type SyncOptions struct {
	// Progress receives the progress messages of the remote, if it's not nil.
	Progress io.Writer
	// Indent is the indentation level of progress messages.
	Indent int
	// FetchAttempts bounds how many times a fetch failing with a transient error is tried.
	FetchAttempts int
	// RetryInterval is the initial delay between fetch attempts.
	RetryInterval time.Duration
}

const (
	DefaultFetchAttempts = 3
	defaultRetryInterval = 500 * time.Millisecond
)

// fetchRefSpecs mirrors every branch and tag of the remote into the local refs, so that branch and
// tag references can be resolved directly.
var fetchRefSpecs = []config.RefSpec{
	"+refs/heads/*:refs/heads/*",
	"+refs/tags/*:refs/tags/*",
}

// Clone makes a new repository at the local path and brings it to the requested reference (or the
// remote's default branch, if ref is nil). If any step fails, the local path is removed.
func Clone(ctx context.Context, remote, local string, ref *Reference, opts SyncOptions) error {
	return clone(ctx, remote, local, ref, opts, (*Repo).sync)
}

type syncStep func(
	r *Repo, ctx context.Context, remote string, ref *Reference, opts SyncOptions,
) error

func clone(
	ctx context.Context, remote, local string, ref *Reference, opts SyncOptions, sync syncStep,
) (err error) {
	if _, err = os.Lstat(local); err == nil {
		return errors.Wrapf(git.ErrRepositoryAlreadyExists, "couldn't clone to %s", local)
	}
	repo, err := git.PlainInit(local, false)
	defer func() {
		if err == nil {
			return
		}
		if rerr := os.RemoveAll(local); rerr != nil {
			err = errors.Wrapf(err, "couldn't remove partial clone at %s (%s)", local, rerr)
		}
	}()
	if err != nil {
		return newSyncError(err, "couldn't initialize git repo at "+local)
	}
	return sync(&Repo{repository: repo}, ctx, remote, ref, opts)
}

// Pull brings the existing repository at the local path to the requested reference (or the remote's
// default branch, if ref is nil). The local path is left in place if any step fails.
func Pull(ctx context.Context, remote, local string, ref *Reference, opts SyncOptions) error {
	repo, err := git.PlainOpen(local)
	if err != nil {
		return newSyncError(err, "couldn't open git repo at "+local)
	}
	return (&Repo{repository: repo}).sync(ctx, remote, ref, opts)
}

func (r *Repo) sync(ctx context.Context, remote string, ref *Reference, opts SyncOptions) error {
	target, err := r.fetch(ctx, remote, ref, opts)
	if err != nil {
		return err
	}
	hash, err := r.resolve(target)
	if err != nil {
		return err
	}
	if err = r.checkout(hash); err != nil {
		return err
	}
	if err = r.updateHead(target, hash); err != nil {
		return err
	}
	return walkSubmodules(ctx, repoTree{repository: r.repository})
}

// Fetch

func (r *Repo) fetch(
	ctx context.Context, remoteURL string, ref *Reference, opts SyncOptions,
) (target Reference, err error) {
	remote := git.NewRemote(r.repository.Storer, &config.RemoteConfig{
		Name:  "anonymous",
		URLs:  []string{remoteURL},
		Fetch: fetchRefSpecs,
	})
	fetchOpts := &git.FetchOptions{
		RemoteName: "anonymous",
		RefSpecs:   fetchRefSpecs,
		Tags:       git.AllTags,
		Force:      true,
	}
	if opts.Progress != nil {
		progress := cli.NewIndentedWriter(opts.Indent, opts.Progress)
		defer func() {
			_ = progress.Flush()
		}()
		fetchOpts.Progress = progress
	}
	if err = retryFetch(ctx, opts, func() error {
		ferr := remote.FetchContext(ctx, fetchOpts)
		if errors.Is(ferr, git.NoErrAlreadyUpToDate) {
			return nil
		}
		return ferr
	}); err != nil {
		return Reference{}, newSyncError(err, "couldn't fetch from "+remoteURL)
	}

	if ref != nil {
		return *ref, nil
	}
	refs, err := remote.ListContext(ctx, &git.ListOptions{})
	if err != nil {
		return Reference{}, newSyncError(err, "couldn't list refs of "+remoteURL)
	}
	branch, err := defaultBranch(refs)
	if err != nil {
		return Reference{}, errors.Wrapf(err, "couldn't determine default branch of %s", remoteURL)
	}
	return Reference{Kind: RefBranch, Value: branch}, nil
}

func retryFetch(ctx context.Context, opts SyncOptions, fetch func() error) error {
	attempts := opts.FetchAttempts
	if attempts < 1 {
		attempts = DefaultFetchAttempts
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = opts.RetryInterval
	if b.InitialInterval <= 0 {
		b.InitialInterval = defaultRetryInterval
	}
	b.Reset()

	for attempt := 1; ; attempt++ {
		err := fetch()
		if err == nil || attempt >= attempts || !isTransient(err) {
			return err
		}
		wait := b.NextBackOff()
		if wait == backoff.Stop {
			return err
		}
		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "gave up retrying after %s", err)
		case <-time.After(wait):
		}
	}
}

// isTransient reports whether a failed fetch might succeed if it's tried again.
func isTransient(err error) bool {
	for _, permanent := range []error{
		context.Canceled,
		context.DeadlineExceeded,
		transport.ErrRepositoryNotFound,
		transport.ErrEmptyRemoteRepository,
		transport.ErrAuthenticationRequired,
		transport.ErrAuthorizationFailed,
		transport.ErrInvalidAuthMethod,
	} {
		if errors.Is(err, permanent) {
			return false
		}
	}
	return true
}

// Resolve

func (r *Repo) resolve(ref Reference) (plumbing.Hash, error) {
	switch ref.Kind {
	case RefCommit:
		if !isCommitHash(ref.Value) {
			return plumbing.ZeroHash, errors.Wrapf(ErrFormat, "%s is not a full commit hash", ref.Value)
		}
		hash := plumbing.NewHash(ref.Value)
		if _, err := r.repository.CommitObject(hash); err != nil {
			return plumbing.ZeroHash, errors.Wrapf(ErrFormat, "couldn't find commit %s", ref.Value)
		}
		return hash, nil
	case RefBranch, RefTag:
		resolved, err := r.repository.Reference(ref.ReferenceName(), true)
		if err != nil {
			return plumbing.ZeroHash, errors.Wrapf(ErrFormat, "couldn't resolve %s", ref)
		}
		hash := resolved.Hash()
		// annotated tags point to tag objects rather than commits
		if tag, terr := r.repository.TagObject(hash); terr == nil {
			commit, cerr := tag.Commit()
			if cerr != nil {
				return plumbing.ZeroHash, errors.Wrapf(ErrFormat, "%s doesn't point to a commit", ref)
			}
			hash = commit.Hash
		}
		return hash, nil
	default:
		return plumbing.ZeroHash, errors.Wrapf(ErrFormat, "unknown reference kind %q", ref.Kind)
	}
}

// Checkout

func (r *Repo) checkout(hash plumbing.Hash) error {
	worktree, err := r.repository.Worktree()
	if err != nil {
		return newSyncError(err, "couldn't open worktree")
	}
	if err = worktree.Checkout(&git.CheckoutOptions{Hash: hash, Force: true}); err != nil {
		return newSyncError(err, "couldn't check out "+hash.String())
	}
	return nil
}

// Head

// updateHead attaches HEAD to the branch for branch references, so that later pulls track the
// branch; otherwise HEAD is detached at the resolved commit.
func (r *Repo) updateHead(target Reference, hash plumbing.Hash) error {
	head := plumbing.NewHashReference(plumbing.HEAD, hash)
	if target.Kind == RefBranch {
		head = plumbing.NewSymbolicReference(plumbing.HEAD, target.ReferenceName())
	}
	if err := r.repository.Storer.SetReference(head); err != nil {
		return newSyncError(err, "couldn't update HEAD")
	}
	return nil
}
