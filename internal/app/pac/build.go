package pac

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/pkg/errors"
)

// RunBuild runs a build command in a package's directory. The command is split into arguments with
// shell quoting rules, and environment variables in it are expanded.
func RunBuild(ctx context.Context, dir, command string, output io.Writer) error {
	parser := shellwords.NewParser()
	parser.ParseEnv = true
	args, err := parser.Parse(command)
	if err != nil {
		return errors.Wrapf(ErrBuild, "couldn't parse build command %q: %s", command, err)
	}
	if len(args) == 0 {
		return errors.Wrapf(ErrBuild, "build command %q is empty", command)
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = dir
	captured := &bytes.Buffer{}
	var combined io.Writer = captured
	if output != nil {
		combined = io.MultiWriter(captured, output)
	}
	cmd.Stdout = combined
	cmd.Stderr = combined
	if err = cmd.Run(); err != nil {
		return errors.Wrapf(ErrBuild, "%q failed (%s): %s", command, err, lastLine(captured.String()))
	}
	return nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
