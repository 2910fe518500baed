package pac

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"github.com/PlanktoScope/pac/internal/clients/git"
	"github.com/PlanktoScope/pac/pkg/structures"
)

var errOther = errors.New("something else")

var keepTests = map[string]struct {
	taskType TaskType
	err      error
	keep     bool
}{
	"install success":           {taskType: TaskInstall, keep: true},
	"install already installed": {taskType: TaskInstall, err: ErrAlreadyInstalled, keep: true},
	"install wrapped already": {
		taskType: TaskInstall, err: errors.Wrap(ErrAlreadyInstalled, "found"), keep: true,
	},
	"install sync failure":  {taskType: TaskInstall, err: &git.SyncError{Op: "fetch", Err: errOther}},
	"install build failure": {taskType: TaskInstall, err: ErrBuild},
	"install other failure": {taskType: TaskInstall, err: errOther},
	"update success":        {taskType: TaskUpdate, keep: true},
	"update local":          {taskType: TaskUpdate, err: ErrSkipLocal, keep: true},
	"update sync failure": {
		taskType: TaskUpdate, err: errors.Wrap(&git.SyncError{Op: "fetch", Err: errOther}, "x"),
		keep: true,
	},
	"update not installed":   {taskType: TaskUpdate, err: ErrNotInstalled},
	"update bad reference":   {taskType: TaskUpdate, err: git.ErrFormat, keep: true},
	"update other failure":   {taskType: TaskUpdate, err: errOther},
	"update already present": {taskType: TaskUpdate, err: ErrAlreadyInstalled},
}

func TestTaskTypeKeep(t *testing.T) {
	t.Parallel()
	for name, test := range keepTests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if keep := test.taskType.Keep(test.err); keep != test.keep {
				t.Errorf("expected keep=%t for %v, got %t", test.keep, test.err, keep)
			}
		})
	}
}

func makePackages(n int) []Package {
	pkgs := make([]Package, 0, n)
	for i := range n {
		pkgs = append(pkgs, pkg(fmt.Sprintf("x/p%02d", i), fmt.Sprintf("p%02d", i), "default", false))
	}
	return pkgs
}

func TestExecutorDropsNotInstalled(t *testing.T) {
	t.Parallel()
	pkgs := makePackages(10)
	missing := structures.NewSet("x/p01", "x/p04", "x/p08")

	var calls atomic.Int32
	executor := NewExecutor(TaskUpdate, 4, nil)
	executor.Add(pkgs...)
	failed := executor.Run(context.Background(), func(_ context.Context, p Package) error {
		calls.Add(1)
		if missing.Has(p.IDName) {
			return ErrNotInstalled
		}
		return nil
	})

	if calls.Load() != 10 {
		t.Errorf("expected 10 tasks to run, but %d ran", calls.Load())
	}
	if diff := cmp.Diff(missing, failed); diff != "" {
		t.Errorf("unexpected failed set (-want +got):\n%s", diff)
	}
	finalized := Finalize(pkgs, failed)
	expected := []string{"x/p00", "x/p02", "x/p03", "x/p05", "x/p06", "x/p07", "x/p09"}
	actual := make([]string, 0, len(finalized))
	for _, p := range finalized {
		actual = append(actual, p.IDName)
	}
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("unexpected package set (-want +got):\n%s", diff)
	}
}

func TestExecutorFailedSubsetOfInput(t *testing.T) {
	t.Parallel()
	for _, workers := range []int{1, 3, 16} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			t.Parallel()

			pkgs := makePackages(7)
			input := make(structures.Set[string])
			for _, p := range pkgs {
				input.Add(p.IDName)
			}
			executor := NewExecutor(TaskInstall, workers, nil)
			executor.Add(pkgs...)
			failed := executor.Run(context.Background(), func(_ context.Context, p Package) error {
				if strings.HasSuffix(p.IDName, "1") || strings.HasSuffix(p.IDName, "5") {
					return errOther
				}
				return nil
			})
			if len(failed) > len(pkgs) {
				t.Errorf("more failures (%d) than packages (%d)", len(failed), len(pkgs))
			}
			for idname := range failed {
				if !input.Has(idname) {
					t.Errorf("failed package %s wasn't an operand", idname)
				}
			}
			if len(failed) != 2 {
				t.Errorf("expected 2 failures, got %v", structures.Sorted(failed))
			}
			if outcomes := executor.Outcomes(); len(outcomes) != len(pkgs) {
				t.Errorf("expected %d outcomes, got %d", len(pkgs), len(outcomes))
			}
		})
	}
}

func TestExecutorBoundsConcurrency(t *testing.T) {
	t.Parallel()
	const workers = 3
	var (
		lock    sync.Mutex
		running int
		peak    int
	)
	executor := NewExecutor(TaskInstall, workers, nil)
	executor.Add(makePackages(12)...)
	executor.Run(context.Background(), func(context.Context, Package) error {
		lock.Lock()
		running++
		peak = max(peak, running)
		lock.Unlock()
		time.Sleep(5 * time.Millisecond)
		lock.Lock()
		running--
		lock.Unlock()
		return nil
	})
	if peak > workers {
		t.Errorf("expected at most %d concurrent tasks, saw %d", workers, peak)
	}
}

func TestExecutorEmpty(t *testing.T) {
	t.Parallel()
	failed := NewExecutor(TaskUpdate, 4, nil).Run(
		context.Background(), func(context.Context, Package) error {
			t.Error("no task should run")
			return nil
		},
	)
	if len(failed) != 0 {
		t.Errorf("expected no failures, got %v", structures.Sorted(failed))
	}
}

func TestExecutorTimeout(t *testing.T) {
	t.Parallel()
	executor := NewExecutor(TaskInstall, 2, nil).WithTimeout(10 * time.Millisecond)
	executor.Add(makePackages(2)...)
	failed := executor.Run(context.Background(), func(ctx context.Context, _ Package) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if diff := cmp.Diff(structures.NewSet("x/p00", "x/p01"), failed); diff != "" {
		t.Errorf("unexpected failed set (-want +got):\n%s", diff)
	}
	for _, outcome := range executor.Outcomes() {
		if !errors.Is(outcome.Err, context.DeadlineExceeded) {
			t.Errorf("expected %s to time out, got %v", outcome.IDName, outcome.Err)
		}
	}
}

func TestExecutorKeepsInterruptedTasks(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	executor := NewExecutor(TaskInstall, 2, nil)
	executor.Add(makePackages(6)...)
	var started atomic.Int32
	failed := executor.Run(ctx, func(ctx context.Context, _ Package) error {
		if started.Add(1) == 1 {
			cancel()
		}
		<-ctx.Done()
		return ctx.Err()
	})
	if len(failed) > 0 {
		t.Errorf("expected no interrupted package to be dropped, got %v", structures.Sorted(failed))
	}
	if n := started.Load(); n > 2 {
		t.Errorf("expected no task to start after cancellation, but %d started", n)
	}
	outcomes := executor.Outcomes()
	if len(outcomes) != 6 {
		t.Fatalf("expected 6 outcomes, got %d", len(outcomes))
	}
	for _, outcome := range outcomes {
		if !errors.Is(outcome.Err, context.Canceled) {
			t.Errorf("expected %s to be canceled, got %v", outcome.IDName, outcome.Err)
		}
	}
}

func TestExecutorReports(t *testing.T) {
	t.Parallel()
	out := &bytes.Buffer{}
	executor := NewExecutor(TaskInstall, 1, out).WithIndent(1)
	executor.Add(
		pkg("x/done", "done", "default", false),
		pkg("x/present", "present", "default", false),
		pkg("x/broken", "broken", "default", false),
	)
	executor.Run(context.Background(), func(_ context.Context, p Package) error {
		switch p.IDName {
		case "x/present":
			return ErrAlreadyInstalled
		case "x/broken":
			return errOther
		default:
			return nil
		}
	})

	report := out.String()
	for _, expected := range []string{
		"Installed", "x/done", "Skipped", "x/present", "Failed", "x/broken: something else",
	} {
		if !strings.Contains(report, expected) {
			t.Errorf("expected report to contain %q:\n%s", expected, report)
		}
	}
	for _, line := range strings.Split(strings.TrimSpace(report), "\n") {
		if !strings.HasPrefix(line, "  ") {
			t.Errorf("expected line to be indented: %q", line)
		}
	}

	outcomes := executor.Outcomes()
	idnames := make([]string, 0, len(outcomes))
	for _, outcome := range outcomes {
		idnames = append(idnames, outcome.IDName)
	}
	if diff := cmp.Diff([]string{"x/broken", "x/done", "x/present"}, idnames); diff != "" {
		t.Errorf("unexpected outcome order (-want +got):\n%s", diff)
	}
}

func TestNewExecutorRejectsZeroWorkers(t *testing.T) {
	t.Parallel()
	if err := ValidateWorkers(0); err == nil {
		t.Error("expected 0 workers to be rejected")
	}
	defer func() {
		if recover() == nil {
			t.Error("expected NewExecutor to panic")
		}
	}()
	NewExecutor(TaskInstall, 0, nil)
}

func TestExecutorKeepsLocalUpdates(t *testing.T) {
	t.Parallel()
	executor := NewExecutor(TaskUpdate, 4, nil)
	executor.Add(makePackages(5)...)
	executor.Run(context.Background(), func(context.Context, Package) error { return ErrSkipLocal })
	for _, outcome := range executor.Outcomes() {
		if !outcome.Keep || !outcome.Skipped() {
			t.Errorf("expected %s to be kept and skipped", outcome.IDName)
		}
	}
}
