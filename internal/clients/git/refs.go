package git

import (
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/pkg/errors"
	"golang.org/x/mod/semver"
)

// RefKind is the kind of revision a Reference pins a repository to.
type RefKind string

const (
	RefBranch RefKind = "branch"
	RefTag    RefKind = "tag"
	RefCommit RefKind = "commit"
)

const commitHashLength = 40

// A Reference identifies a desired revision of a repository.
type Reference struct {
	// Kind is the kind of revision (branch, tag, or commit).
	Kind RefKind `yaml:"kind"`
	// Value is the branch name, tag name, or full commit hash.
	Value string `yaml:"value"`
}

// ParseReference makes a Reference of the specified kind, checking that the value is well-formed.
func ParseReference(kind RefKind, value string) (Reference, error) {
	ref := Reference{Kind: kind, Value: value}
	if err := ref.Check(); err != nil {
		return Reference{}, err
	}
	return ref, nil
}

// InferReference makes a Reference from a revision whose kind is not known: full commit hashes
// are commits, semantic versions are tags, and anything else is a branch.
func InferReference(rev string) Reference {
	switch {
	case isCommitHash(rev):
		return Reference{Kind: RefCommit, Value: rev}
	case semver.IsValid(rev):
		return Reference{Kind: RefTag, Value: rev}
	default:
		return Reference{Kind: RefBranch, Value: rev}
	}
}

// Check looks for errors in the construction of the reference.
func (r Reference) Check() error {
	if r.Value == "" {
		return errors.Wrapf(ErrFormat, "%s reference is missing a value", r.Kind)
	}
	switch r.Kind {
	case RefBranch, RefTag:
		if strings.HasPrefix(r.Value, "-") || strings.Contains(r.Value, "..") ||
			strings.ContainsAny(r.Value, " ~^:?*[\\") {
			return errors.Wrapf(ErrFormat, "invalid %s name %s", r.Kind, r.Value)
		}
		return nil
	case RefCommit:
		if len(r.Value) != commitHashLength {
			return errors.Wrapf(
				ErrFormat, "commit hash %s has length %d instead of %d (the full hash is required)",
				r.Value, len(r.Value), commitHashLength,
			)
		}
		if !isCommitHash(r.Value) {
			return errors.Wrapf(ErrFormat, "commit hash %s is not hexadecimal", r.Value)
		}
		return nil
	default:
		return errors.Wrapf(ErrFormat, "unknown reference kind %q", r.Kind)
	}
}

// ReferenceName returns the name of the ref which the reference resolves through. Commit references
// have no ref name.
func (r Reference) ReferenceName() plumbing.ReferenceName {
	switch r.Kind {
	case RefBranch:
		return plumbing.NewBranchReferenceName(r.Value)
	case RefTag:
		return plumbing.NewTagReferenceName(r.Value)
	default:
		return ""
	}
}

func (r Reference) String() string {
	if r.Kind == RefCommit {
		return fmt.Sprintf("commit %s", ShortCommit(r.Value))
	}
	return fmt.Sprintf("%s %s", r.Kind, r.Value)
}

func isCommitHash(s string) bool {
	if len(s) != commitHashLength {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

func ShortCommit(commit string) string {
	const shortHashLength = 7
	if len(commit) <= shortHashLength {
		return commit
	}
	return commit[:shortHashLength]
}

func AbbreviateHash(h plumbing.Hash) string {
	return ShortCommit(h.String())
}

// defaultBranch determines the default branch of a remote from its advertised refs.
func defaultBranch(refs []*plumbing.Reference) (string, error) {
	var head *plumbing.Reference
	branches := make(map[string]plumbing.Hash)
	for _, ref := range refs {
		switch {
		case ref.Name() == plumbing.HEAD:
			head = ref
		case ref.Name().IsBranch():
			branches[ref.Name().Short()] = ref.Hash()
		}
	}

	if head != nil && head.Type() == plumbing.SymbolicReference && head.Target().IsBranch() {
		return head.Target().Short(), nil
	}
	preferred := []string{"main", "master"}
	if head != nil && head.Type() == plumbing.HashReference {
		for _, name := range preferred {
			if hash, ok := branches[name]; ok && hash == head.Hash() {
				return name, nil
			}
		}
		matching := make([]string, 0, len(branches))
		for name, hash := range branches {
			if hash == head.Hash() {
				matching = append(matching, name)
			}
		}
		if len(matching) > 0 {
			return slices.Min(matching), nil
		}
	}
	for _, name := range preferred {
		if _, ok := branches[name]; ok {
			return name, nil
		}
	}
	return "", errors.Wrap(ErrFormat, "remote doesn't advertise a default branch")
}
