package pac

import (
	"bytes"
	"os"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// A PackfileDecl is the persisted set of packages.
type PackfileDecl struct {
	// Packages is the list of tracked packages, sorted by idname.
	Packages []Package `yaml:"packages"`
}

// Packfile loads and saves the persisted package set at a file path.
type Packfile struct {
	Path string
}

// Load loads the persisted package set. A missing packfile is an empty package set.
func (f Packfile) Load() ([]Package, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Package{}, nil
		}
		return nil, errors.Wrapf(err, "couldn't read packfile %s", f.Path)
	}
	decl := PackfileDecl{}
	if err = yaml.Unmarshal(data, &decl); err != nil {
		return nil, errors.Wrapf(err, "couldn't parse packfile %s", f.Path)
	}
	for i, pkg := range decl.Packages {
		if err = pkg.Check(); err != nil {
			return nil, errors.Wrapf(err, "invalid package %d in packfile %s", i, f.Path)
		}
		if pkg.Category == "" {
			decl.Packages[i].Category = DefaultCategory
		}
	}
	if decl.Packages == nil {
		decl.Packages = []Package{}
	}
	return decl.Packages, nil
}

// Save overwrites the persisted package set; the previous packfile is left intact if writing fails.
func (f Packfile) Save(pkgs []Package) error {
	decl := PackfileDecl{Packages: slices.Clone(pkgs)}
	slices.SortFunc(decl.Packages, CompareIDNames)

	buf := &bytes.Buffer{}
	encoder := yaml.NewEncoder(buf)
	const indentation = 2
	encoder.SetIndent(indentation)
	if err := encoder.Encode(decl); err != nil {
		return errors.Wrap(err, "couldn't serialize package set as yaml document")
	}
	if err := encoder.Close(); err != nil {
		return errors.Wrap(err, "couldn't close yaml encoder for package set")
	}
	if err := writeFileAtomic(f.Path, buf.Bytes()); err != nil {
		return errors.Wrapf(err, "couldn't save packfile %s", f.Path)
	}
	return nil
}

// Check looks for errors in the construction of the package.
func (p Package) Check() error {
	if p.IDName == "" {
		return errors.New("package is missing an idname")
	}
	if p.Name == "" {
		return errors.Errorf("package %s is missing a name", p.IDName)
	}
	if p.Name == "." || p.Name == ".." || strings.ContainsAny(p.Name, `/\`) {
		return errors.Errorf("package %s has invalid name %q", p.IDName, p.Name)
	}
	if p.Category == "." || p.Category == ".." || strings.ContainsAny(p.Category, `/\`) {
		return errors.Errorf("package %s has invalid category %q", p.IDName, p.Category)
	}
	if p.Reference != nil {
		if err := p.Reference.Check(); err != nil {
			return errors.Wrapf(err, "package %s has an invalid reference", p.IDName)
		}
	}
	return nil
}
