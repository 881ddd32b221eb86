// Package execx runs external CLI tools and captures their output.
//
// envctl delegates every non-trivial operation to the dotenvx, vercel, and
// bw CLIs. This package is the single place subprocesses are spawned:
// callers choose per invocation whether a non-zero exit is fatal (Run),
// absorbable (RunSilent), or whether the command needs the terminal
// directly (RunInteractive). No timeouts and no retries anywhere; a failed
// invocation is surfaced once and the user re-runs the command.
package execx

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	kerrors "github.com/envctl/envctl/internal/errors"
)

// Result holds the captured output of a completed subprocess.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Which reports whether the named tool is on PATH.
func Which(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// Run executes name with args in dir and captures stdout/stderr.
// A non-zero exit returns an error wrapping ErrToolFailed that carries the
// tool's stderr text; a missing executable wraps ErrToolNotFound.
func Run(dir, name string, args ...string) (Result, error) {
	return run(dir, "", name, args...)
}

// RunStdin is Run with the given string supplied on the subprocess's stdin.
func RunStdin(dir, stdin, name string, args ...string) (Result, error) {
	return run(dir, stdin, name, args...)
}

// RunSilent executes the command and absorbs any failure, returning an
// empty Result when the tool is missing or exits non-zero. Callers use it
// when failure means "nothing to do" (e.g. removing an env var that does
// not exist).
func RunSilent(dir, name string, args ...string) Result {
	res, err := run(dir, "", name, args...)
	if err != nil {
		return Result{ExitCode: res.ExitCode}
	}
	return res
}

// RunInteractive executes the command with the current process's stdin,
// stdout, and stderr, for tools that prompt the user directly (e.g. a
// vault unlock or an interactive deploy). Only the exit code is returned.
func RunInteractive(dir, name string, args ...string) (int, error) {
	if !Which(name) {
		return -1, fmt.Errorf("%w: %s", kerrors.ErrToolNotFound, name)
	}

	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	if ee, ok := err.(*exec.ExitError); ok {
		return ee.ExitCode(), nil
	}
	return -1, fmt.Errorf("failed to run %s: %w", name, err)
}

func run(dir, stdin, name string, args ...string) (Result, error) {
	if !Which(name) {
		return Result{ExitCode: -1}, fmt.Errorf("%w: %s", kerrors.ErrToolNotFound, name)
	}

	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()

	res := Result{
		Stdout: outBuf.String(),
		Stderr: errBuf.String(),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			detail := strings.TrimSpace(res.Stderr)
			if detail == "" {
				detail = strings.TrimSpace(res.Stdout)
			}
			if detail == "" {
				detail = fmt.Sprintf("exit code %d", res.ExitCode)
			}
			return res, fmt.Errorf("%w: %s: %s", kerrors.ErrToolFailed, name, detail)
		}
		return res, fmt.Errorf("failed to run %s: %w", name, err)
	}

	return res, nil
}
