package cli

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/PlanktoScope/pac/internal/app/pac"
	"github.com/PlanktoScope/pac/internal/clients/git"
)

// TargetOptions describes how packages named on the command line should be installed.
type TargetOptions struct {
	Opt      bool
	Category string
	Branch   string
	Tag      string
	Commit   string
	// Rev is a revision whose kind is inferred from its form.
	Rev string
	// As renames the package; it's only allowed with a single package.
	As           string
	LoadCommand  string
	ForTypes     string
	BuildCommand string
}

func (o TargetOptions) reference() (*git.Reference, error) {
	refs := make([]git.Reference, 0, 1)
	for _, candidate := range []struct {
		kind  git.RefKind
		value string
	}{
		{kind: git.RefBranch, value: o.Branch},
		{kind: git.RefTag, value: o.Tag},
		{kind: git.RefCommit, value: o.Commit},
	} {
		if candidate.value == "" {
			continue
		}
		ref, err := git.ParseReference(candidate.kind, candidate.value)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	if o.Rev != "" {
		ref := git.InferReference(o.Rev)
		if err := ref.Check(); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	switch len(refs) {
	case 0:
		return nil, nil
	case 1:
		return &refs[0], nil
	default:
		return nil, errors.New("only one of --branch, --tag, --commit, or --rev may be specified")
	}
}

func splitTypes(types string) []string {
	if types == "" {
		return nil
	}
	split := strings.Split(types, ",")
	result := make([]string, 0, len(split))
	for _, fileType := range split {
		if fileType = strings.TrimSpace(fileType); fileType != "" {
			result = append(result, fileType)
		}
	}
	return result
}

// MakeTargets makes the packages to install from remote arguments (full addresses or GitHub
// shorthand) and install options.
func MakeTargets(args []string, opts TargetOptions) ([]pac.Package, error) {
	if opts.As != "" && len(args) != 1 {
		return nil, errors.New("--as may only be used when installing a single plugin")
	}
	ref, err := opts.reference()
	if err != nil {
		return nil, errors.Wrap(err, "invalid revision")
	}
	category := opts.Category
	if category == "" {
		category = pac.DefaultCategory
	}
	forTypes := splitTypes(opts.ForTypes)
	targets := make([]pac.Package, 0, len(args))
	for _, arg := range args {
		pkg := pac.NewPackage(arg)
		if opts.As != "" {
			pkg.Name = opts.As
		}
		pkg.Category = category
		pkg.Reference = ref
		pkg.LoadCommand = opts.LoadCommand
		pkg.ForTypes = forTypes
		pkg.BuildCommand = opts.BuildCommand
		pkg.Opt = opts.Opt || pkg.LoadCommand != "" || len(pkg.ForTypes) > 0
		if err = pkg.Check(); err != nil {
			return nil, errors.Wrapf(err, "invalid plugin %s", arg)
		}
		targets = append(targets, pkg)
	}
	return targets, nil
}
