package git

import (
	"context"
	"slices"

	"github.com/go-git/go-git/v5"
	"github.com/pkg/errors"
)

// excludedSubmodule is the name of submodules which are never initialized.
const excludedSubmodule = "docs"

// moduleTree is a repository whose submodules can be listed.
type moduleTree interface {
	Submodules(ctx context.Context) ([]submodule, error)
}

// submodule is an entry of a moduleTree which can be brought up to date and opened as a tree.
type submodule interface {
	Name() string
	// Key identifies the remote and commit the submodule is pinned to.
	Key() (string, error)
	Update(ctx context.Context) (moduleTree, error)
}

// walkSubmodules updates every submodule reachable from the root, with an explicit work list
// rather than recursion. A submodule pinned to the same remote and commit as one of its ancestors
// is skipped, so that cyclic submodule graphs terminate.
func walkSubmodules(ctx context.Context, root moduleTree) error {
	type pending struct {
		tree      moduleTree
		ancestors []string
	}
	stack := []pending{{tree: root}}
	for len(stack) > 0 {
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		subs, err := next.tree.Submodules(ctx)
		if err != nil {
			return err
		}
		for _, sub := range subs {
			if sub.Name() == excludedSubmodule {
				continue
			}
			key, err := sub.Key()
			if err != nil {
				return err
			}
			if slices.Contains(next.ancestors, key) {
				continue
			}
			tree, err := sub.Update(ctx)
			if err != nil {
				return err
			}
			stack = append(stack, pending{
				tree:      tree,
				ancestors: append(slices.Clone(next.ancestors), key),
			})
		}
	}
	return nil
}

// repoTree

type repoTree struct {
	repository *git.Repository
}

func (t repoTree) Submodules(ctx context.Context) ([]submodule, error) {
	worktree, err := t.repository.Worktree()
	if err != nil {
		return nil, newSyncError(err, "couldn't open worktree")
	}
	subs, err := worktree.Submodules()
	if err != nil {
		return nil, newSyncError(err, "couldn't list submodules")
	}
	results := make([]submodule, 0, len(subs))
	for _, sub := range subs {
		results = append(results, gitSubmodule{sub: sub})
	}
	return results, nil
}

// gitSubmodule

type gitSubmodule struct {
	sub *git.Submodule
}

func (s gitSubmodule) Name() string {
	return s.sub.Config().Name
}

func (s gitSubmodule) Key() (string, error) {
	status, err := s.sub.Status()
	if err != nil {
		return "", newSyncError(err, "couldn't check status of submodule "+s.Name())
	}
	return s.sub.Config().URL + "@" + status.Expected.String(), nil
}

func (s gitSubmodule) Update(ctx context.Context) (moduleTree, error) {
	if err := s.sub.UpdateContext(ctx, &git.SubmoduleUpdateOptions{Init: true}); err != nil {
		return nil, newSyncError(err, "couldn't update submodule "+s.Name())
	}
	repo, err := s.sub.Repository()
	if err != nil {
		return nil, newSyncError(
			errors.Wrapf(err, "couldn't open %s", s.sub.Config().Path),
			"couldn't open submodule "+s.Name(),
		)
	}
	return repoTree{repository: repo}, nil
}
