// Package shell runs external commands for the release pipeline and the git
// helpers. Output is captured and returned; failures carry the command line
// and its output so pipeline errors are actionable.
package shell

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/dukaforge/cicd/internal/logging"
)

// Runner executes one command in a directory and returns its combined
// output. The package-level default shells out; tests swap it.
type Runner func(ctx context.Context, dir, name string, args ...string) (string, error)

// Default is the Runner used by New when none is given.
func Default(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = os.Environ()

	logging.Debug("running %s %s in %s", name, strings.Join(args, " "), dir)
	out, err := cmd.CombinedOutput()
	output := strings.TrimRight(string(out), "\n")
	if err != nil {
		return output, fmt.Errorf("running %s %s: %w: %s", name, strings.Join(args, " "), err, output)
	}
	return output, nil
}

// Line splits a command line on whitespace into name and args. Commands in
// release configuration are plain argument vectors, not shell syntax.
func Line(command string) (string, []string, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("empty command")
	}
	return fields[0], fields[1:], nil
}
