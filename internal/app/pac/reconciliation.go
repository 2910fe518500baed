package pac

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"github.com/PlanktoScope/pac/pkg/structures"
)

// Reconcile merges the target packages of a command into the persisted package set. It returns the
// working package set (to be finalized and persisted after tasks run) and the operands (the packages
// to run tasks over).
//
// If target is empty, every persisted package is an operand. Otherwise, each target package is
// matched by idname against the persisted packages:
//   - a persisted package which isn't installed adopts the target's category, opt flag, types, and
//     load and build commands, and becomes the operand;
//   - for a persisted package which is installed, the target adopts the persisted package's
//     placement (category, opt flag, and name), and the target becomes the operand;
//   - a target with no persisted match is appended to the working set and becomes the operand.
//
// An error wrapping ErrPathCollision is returned if two distinct packages of the working set would
// be installed to the same directory.
func Reconcile(
	persisted, target []Package, installed func(Package) bool,
) (working, operands []Package, err error) {
	working = slices.Clone(persisted)
	if len(target) == 0 {
		if err = checkPlacements(working); err != nil {
			return nil, nil, err
		}
		return working, slices.Clone(persisted), nil
	}

	workingIndex := make(map[string]int, len(working))
	for i, pkg := range working {
		workingIndex[pkg.IDName] = i
	}
	appended := structures.NewSet[string]()
	operandIndex := make(map[string]int, len(target))
	operands = make([]Package, 0, len(target))
	for _, t := range target {
		operand := t
		if i, ok := workingIndex[t.IDName]; ok && appended.Has(t.IDName) {
			working[i] = t
		} else if ok {
			p := &working[i]
			if !installed(*p) {
				p.Category = t.Category
				p.Opt = t.Opt
				p.ForTypes = slices.Clone(t.ForTypes)
				p.LoadCommand = t.LoadCommand
				p.BuildCommand = t.BuildCommand
				operand = *p
			} else {
				operand.Category = p.Category
				operand.Opt = p.Opt
				operand.Name = p.Name
			}
		} else {
			workingIndex[t.IDName] = len(working)
			working = append(working, t)
			appended.Add(t.IDName)
		}

		if j, ok := operandIndex[operand.IDName]; ok {
			operands[j] = operand
			continue
		}
		operandIndex[operand.IDName] = len(operands)
		operands = append(operands, operand)
	}

	if err = checkPlacements(working); err != nil {
		return nil, nil, err
	}
	return working, operands, nil
}

// checkPlacements returns an error if distinct packages share a (category, opt, name) placement.
func checkPlacements(pkgs []Package) error {
	occupants := make(map[Placement]string, len(pkgs))
	collisions := make([]string, 0)
	for _, pkg := range pkgs {
		placement := pkg.Placement()
		occupant, ok := occupants[placement]
		if !ok {
			occupants[placement] = pkg.IDName
			continue
		}
		if occupant == pkg.IDName {
			continue
		}
		collisions = append(collisions, fmt.Sprintf(
			"%s and %s (%s)", occupant, pkg.IDName, describePlacement(placement),
		))
	}
	if len(collisions) > 0 {
		return errors.Wrapf(ErrPathCollision, "%s", strings.Join(collisions, "; "))
	}
	return nil
}

func describePlacement(p Placement) string {
	loading := startDirName
	if p.Opt {
		loading = optDirName
	}
	return fmt.Sprintf("%s/%s/%s", p.Category, loading, p.Name)
}

// Finalize removes the failed packages from the working package set and sorts the remaining
// packages by idname.
func Finalize(working []Package, failed structures.Set[string]) []Package {
	kept := make([]Package, 0, len(working))
	for _, pkg := range working {
		if failed.Has(pkg.IDName) {
			continue
		}
		kept = append(kept, pkg)
	}
	slices.SortFunc(kept, CompareIDNames)
	return kept
}
