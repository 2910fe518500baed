package pac

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/PlanktoScope/pac/internal/clients/git"
	"github.com/PlanktoScope/pac/pkg/structures"
)

// TaskType determines how the outcome of a task is reported and whether a package whose task failed
// is kept in the package set.
type TaskType int

const (
	TaskInstall TaskType = iota
	TaskUpdate
)

func (t TaskType) String() string {
	switch t {
	case TaskInstall:
		return "install"
	case TaskUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// Keep reports whether a package should stay in the package set after its task finished with the
// error. Installing a package which is already installed is not a failure; an update which failed
// in the git client (for the network or an unresolvable reference) or because the package is local
// doesn't evict the package.
func (t TaskType) Keep(err error) bool {
	if err == nil {
		return true
	}
	switch t {
	case TaskInstall:
		return errors.Is(err, ErrAlreadyInstalled)
	case TaskUpdate:
		return errors.Is(err, ErrSkipLocal) || errors.Is(err, git.ErrSync) ||
			errors.Is(err, git.ErrFormat)
	default:
		return false
	}
}

func (t TaskType) doneVerb() string {
	switch t {
	case TaskInstall:
		return "Installed"
	case TaskUpdate:
		return "Updated"
	default:
		return "Done"
	}
}

// An Op is the operation run by a task on a package.
type Op func(ctx context.Context, pkg Package) error

// Outcome is the result of a task.
type Outcome struct {
	IDName string
	Err    error
	Keep   bool
}

// Skipped checks whether the task didn't need to do anything.
func (o Outcome) Skipped() bool {
	return errors.Is(o.Err, ErrAlreadyInstalled) || errors.Is(o.Err, ErrSkipLocal)
}

var (
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	skippedStyle = lipgloss.NewStyle().Faint(true)
	failedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

// Executor runs an operation over packages with a fixed number of concurrent workers, reporting
// each task's outcome as soon as the task finishes.
type Executor struct {
	taskType TaskType
	workers  int
	timeout  time.Duration
	indent   int
	pending  []Package

	out      io.Writer
	lock     sync.Mutex
	outcomes []Outcome
}

// NewExecutor makes an executor with the specified number of workers, which must be at least 1;
// outcomes are reported to out.
func NewExecutor(taskType TaskType, workers int, out io.Writer) *Executor {
	if workers < 1 {
		panic(fmt.Sprintf("executor needs at least 1 worker, but was given %d", workers))
	}
	return &Executor{
		taskType: taskType,
		workers:  workers,
		out:      out,
	}
}

// ValidateWorkers checks whether a worker count can be used to make an Executor.
func ValidateWorkers(workers int) error {
	if workers < 1 {
		return errors.Errorf("the number of threads should be greater than 0, but it was %d", workers)
	}
	return nil
}

// WithTimeout bounds the duration of each task; a timeout of zero means no bound.
func (e *Executor) WithTimeout(timeout time.Duration) *Executor {
	e.timeout = timeout
	return e
}

// WithIndent sets the indentation level of reported outcomes.
func (e *Executor) WithIndent(indent int) *Executor {
	e.indent = indent
	return e
}

// Add queues packages to run the operation over.
func (e *Executor) Add(pkgs ...Package) {
	e.pending = append(e.pending, pkgs...)
}

// Run runs the operation over every queued package and waits for all tasks to finish. It returns
// the idnames of the packages which should be dropped from the package set. A failed task never
// stops other tasks.
func (e *Executor) Run(ctx context.Context, op Op) structures.Set[string] {
	queue := make(chan Package, len(e.pending))
	for _, pkg := range e.pending {
		queue <- pkg
	}
	close(queue)
	e.pending = nil

	failed := structures.NewSet[string]()
	eg := errgroup.Group{}
	for range min(e.workers, len(queue)) {
		eg.Go(func() error {
			for pkg := range queue {
				outcome := e.runTask(ctx, op, pkg)
				e.report(outcome, failed)
			}
			return nil
		})
	}
	_ = eg.Wait() // workers never return errors
	return failed
}

// runTask runs the operation on the package. Packages whose tasks are interrupted by cancellation of
// ctx are always kept.
func (e *Executor) runTask(ctx context.Context, op Op, pkg Package) Outcome {
	if err := ctx.Err(); err != nil {
		return Outcome{IDName: pkg.IDName, Err: err, Keep: true}
	}
	taskCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	err := op(taskCtx, pkg)
	return Outcome{IDName: pkg.IDName, Err: err, Keep: ctx.Err() != nil || e.taskType.Keep(err)}
}

func (e *Executor) report(outcome Outcome, failed structures.Set[string]) {
	e.lock.Lock()
	defer e.lock.Unlock()

	e.outcomes = append(e.outcomes, outcome)
	if !outcome.Keep {
		failed.Add(outcome.IDName)
	}
	if e.out == nil {
		return
	}

	prefix := strings.Repeat("  ", e.indent)
	switch {
	case outcome.Err == nil:
		fmt.Fprintf(e.out, "%s%s %s\n", prefix, doneStyle.Render(e.taskType.doneVerb()), outcome.IDName)
	case outcome.Skipped():
		fmt.Fprintf(
			e.out, "%s%s %s: %s\n", prefix, skippedStyle.Render("Skipped"), outcome.IDName, outcome.Err,
		)
	default:
		fmt.Fprintf(
			e.out, "%s%s %s: %s\n", prefix, failedStyle.Render("Failed"), outcome.IDName, outcome.Err,
		)
	}
}

// Outcomes returns the outcomes of all tasks which have finished, sorted by idname.
func (e *Executor) Outcomes() []Outcome {
	e.lock.Lock()
	defer e.lock.Unlock()

	outcomes := slices.Clone(e.outcomes)
	slices.SortFunc(outcomes, func(a, b Outcome) int {
		return strings.Compare(a.IDName, b.IDName)
	})
	return outcomes
}
