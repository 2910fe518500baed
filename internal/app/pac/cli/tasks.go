package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/PlanktoScope/pac/internal/app/pac"
	"github.com/PlanktoScope/pac/pkg/structures"
)

// TaskOptions controls how tasks are run over packages.
type TaskOptions struct {
	Workers int
	Timeout time.Duration
	// Skip is a list of idname patterns to skip when running over the whole package set.
	Skip []string
}

// InstallPackages merges the target packages into the package set and installs them (or every
// package in the package set, if there are no targets). Packages which fail to install are dropped
// from the package set. If ctx is canceled, the package set is left unchanged.
func InstallPackages(
	ctx context.Context, env Env, targets []pac.Package, opts TaskOptions,
) error {
	if err := pac.ValidateWorkers(opts.Workers); err != nil {
		return err
	}
	persisted, err := env.loadPackages()
	if err != nil {
		return err
	}
	working, operands, err := pac.Reconcile(persisted, targets, env.installed)
	if err != nil {
		return errors.Wrap(err, "couldn't merge plugins into the package set")
	}

	syncer := pac.NewSyncer(env.Layout.PackDir(), env.syncOptions(2, opts.Workers))
	syncer.BuildOutput = env.serialOutput(opts.Workers)
	executor := pac.NewExecutor(pac.TaskInstall, opts.Workers, env.Out).
		WithTimeout(opts.Timeout).
		WithIndent(1)
	executor.Add(operands...)
	IndentedFprintf(0, env.Out, "Installing %s...\n", countPlugins(len(operands)))
	failed := executor.Run(ctx, syncer.Install)
	if err = ctx.Err(); err != nil {
		return errors.Wrap(err, "interrupted before all plugins were installed; the package set was not changed")
	}

	if err = env.persist(pac.Finalize(working, failed)); err != nil {
		return err
	}
	printSummary(0, env, pac.TaskInstall, executor.Outcomes(), failed)
	return nil
}

// UpdatePackages pulls the packages with the specified names or idnames (or every package in the
// package set, except for skipped packages, if no names are specified). Packages which are no
// longer installed are dropped from the package set. If ctx is canceled, the package set is left
// unchanged.
func UpdatePackages(ctx context.Context, env Env, names []string, opts TaskOptions) error {
	if err := pac.ValidateWorkers(opts.Workers); err != nil {
		return err
	}
	persisted, err := env.loadPackages()
	if err != nil {
		return err
	}
	working, operands, err := pac.Reconcile(persisted, nil, env.installed)
	if err != nil {
		return errors.Wrap(err, "couldn't check the package set")
	}
	if len(names) > 0 {
		if operands, err = pac.FindPackages(working, names); err != nil {
			return err
		}
	} else {
		operands = filterSkipped(0, env, operands, opts.Skip)
	}

	syncer := pac.NewSyncer(env.Layout.PackDir(), env.syncOptions(2, opts.Workers))
	executor := pac.NewExecutor(pac.TaskUpdate, opts.Workers, env.Out).
		WithTimeout(opts.Timeout).
		WithIndent(1)
	executor.Add(operands...)
	IndentedFprintf(0, env.Out, "Updating %s...\n", countPlugins(len(operands)))
	failed := executor.Run(ctx, syncer.Update)
	if err = ctx.Err(); err != nil {
		return errors.Wrap(err, "interrupted before all plugins were updated; the package set was not changed")
	}

	if err = env.persist(pac.Finalize(working, failed)); err != nil {
		return err
	}
	printSummary(0, env, pac.TaskUpdate, executor.Outcomes(), failed)
	return nil
}

func filterSkipped(indent int, env Env, pkgs []pac.Package, skip []string) []pac.Package {
	kept := make([]pac.Package, 0, len(pkgs))
	for _, pkg := range pkgs {
		if pac.MatchesSkip(pkg.IDName, skip) {
			IndentedFprintf(indent, env.Out, "Skip %s\n", pkg.IDName)
			continue
		}
		kept = append(kept, pkg)
	}
	return kept
}

func printSummary(
	indent int, env Env, taskType pac.TaskType, outcomes []pac.Outcome,
	failed structures.Set[string],
) {
	var done, skipped, errored int
	for _, outcome := range outcomes {
		switch {
		case outcome.Err == nil:
			done++
		case outcome.Skipped():
			skipped++
		default:
			errored++
		}
	}
	IndentedFprintln(indent, env.Out)
	IndentedFprintf(
		indent, env.Out, "Done: %d succeeded, %d skipped, %d failed (%s).\n",
		done, skipped, errored, taskType,
	)
	if len(failed) == 0 {
		return
	}
	IndentedFprintln(indent, env.Out, "Removed from the package set:")
	for _, idname := range structures.Sorted(failed) {
		BulletedFprintln(indent+1, env.Out, idname)
	}
	if kept := errored - len(failed); kept > 0 {
		IndentedFprintf(
			indent, env.Out, "Kept %d failed plugins in the package set; try again later.\n", kept,
		)
	}
}

func countPlugins(n int) string {
	if n == 1 {
		return "1 plugin"
	}
	return fmt.Sprintf("%d plugins", n)
}
