// Package shell runs external commands and reports failures with enough context to act on.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/conn-castle/webui-installer/internal/messages"
)

// ExitCodeNotFound is reported when the command binary cannot be located.
const ExitCodeNotFound = 127

// Command describes one external process invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current directory.
	Dir string
	// Env is appended to the runner's environment.
	Env []string
	// Site is the "file:line" reported on failure. Empty means the direct
	// caller of Run or Output.
	Site string
}

// String renders the command line for logs.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Runner executes commands. Run streams output to the runner's writer;
// Output captures stdout and still streams stderr.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
	Output(ctx context.Context, cmd Command) (string, error)
}

// CommandError describes a failed command: what ran, how it exited, and where it was invoked.
type CommandError struct {
	Command  string
	ExitCode int
	Location string
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf(messages.ShellCommandFailedFmt, e.Command, e.ExitCode, e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExitCode extracts the exit code carried by err. Errors that do not describe a
// process exit map to 1; nil maps to 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code > 0 {
			return code
		}
	}
	return 1
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Out receives stdout and stderr of Run, and stderr of Output.
	Out io.Writer
	// Env is the base environment; nil means os.Environ().
	Env []string
}

// Run executes cmd and streams its output.
func (r ExecRunner) Run(ctx context.Context, cmd Command) error {
	location := siteOr(cmd, callerLocation(2))
	c, err := r.build(ctx, cmd)
	if err != nil {
		return err
	}
	out := r.out()
	c.Stdout = out
	c.Stderr = out
	if err := c.Run(); err != nil {
		return wrapErr(ctx, cmd, location, "", err)
	}
	return nil
}

// Output executes cmd and returns its stdout.
func (r ExecRunner) Output(ctx context.Context, cmd Command) (string, error) {
	location := siteOr(cmd, callerLocation(2))
	c, err := r.build(ctx, cmd)
	if err != nil {
		return "", err
	}
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = io.MultiWriter(&stderr, r.out())
	if err := c.Run(); err != nil {
		return stdout.String(), wrapErr(ctx, cmd, location, stderr.String(), err)
	}
	return stdout.String(), nil
}

func (r ExecRunner) build(ctx context.Context, cmd Command) (*exec.Cmd, error) {
	if strings.TrimSpace(cmd.Name) == "" {
		return nil, errors.New(messages.ShellEmptyCommand)
	}
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	base := r.Env
	if base == nil {
		base = os.Environ()
	}
	c.Env = append(append([]string{}, base...), cmd.Env...)
	return c, nil
}

func (r ExecRunner) out() io.Writer {
	if r.Out == nil {
		return io.Discard
	}
	return r.Out
}

func wrapErr(ctx context.Context, cmd Command, location, stderr string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &CommandError{Command: cmd.String(), ExitCode: 130, Location: location, Stderr: stderr, Err: ctxErr}
	}
	code := 1
	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		if exitErr.ExitCode() > 0 {
			code = exitErr.ExitCode()
		}
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, os.ErrNotExist):
		code = ExitCodeNotFound
	}
	return &CommandError{Command: cmd.String(), ExitCode: code, Location: location, Stderr: stderr, Err: err}
}

// Caller returns "file:line" of the frame skip levels above the function that
// calls Caller. Helpers that run commands on behalf of their caller use it to
// fill Command.Site.
func Caller(skip int) string {
	return callerLocation(skip + 2)
}

func siteOr(cmd Command, fallback string) string {
	if cmd.Site != "" {
		return cmd.Site
	}
	return fallback
}

// callerLocation returns "file:line" of the frame skip levels above this one.
func callerLocation(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

// MissingCommands returns the names in required that are not on PATH.
func MissingCommands(required []string) []string {
	var missing []string
	for _, name := range required {
		if _, err := lookPath(name); err != nil {
			missing = append(missing, name)
		}
	}
	return missing
}

var lookPath = exec.LookPath
