package pac

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestRunBuild(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("build commands are exercised with POSIX utilities")
	}
	t.Parallel()
	dir := t.TempDir()
	out := &bytes.Buffer{}
	if err := RunBuild(context.Background(), dir, `touch "built file"`, out); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !FileExists(filepath.Join(dir, "built file")) {
		t.Error("expected the build command to run in the package directory")
	}
}

func TestRunBuildFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("build commands are exercised with POSIX utilities")
	}
	t.Parallel()
	for name, command := range map[string]string{
		"empty":          "   ",
		"unbalanced":     `echo "oops`,
		"missing binary": "pac-no-such-build-tool --all",
		"nonzero exit":   "ls ./does-not-exist",
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := RunBuild(context.Background(), t.TempDir(), command, nil)
			if !errors.Is(err, ErrBuild) {
				t.Errorf("expected an error wrapping ErrBuild, got %v", err)
			}
		})
	}
}

func TestRunBuildExpandsEnv(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("build commands are exercised with POSIX utilities")
	}
	dir := t.TempDir()
	t.Setenv("PAC_TEST_BUILD_FILE", "from-env")
	if err := RunBuild(context.Background(), dir, "touch $PAC_TEST_BUILD_FILE", nil); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "from-env")); err != nil {
		t.Errorf("expected the variable to be expanded: %s", err)
	}
}

func TestLastLine(t *testing.T) {
	t.Parallel()
	if line := lastLine("a\nb\nlast line\n\n"); line != "last line" {
		t.Errorf("unexpected line %q", line)
	}
	if line := lastLine(strings.Repeat(" ", 3)); line != "" {
		t.Errorf("unexpected line %q", line)
	}
}
