// Package stages implements the mutating install stages. Each stage receives an
// explicit Env instead of relying on ambient process state such as the working
// directory or an activated virtual environment.
package stages

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/conn-castle/webui-installer/internal/config"
	"github.com/conn-castle/webui-installer/internal/messages"
	"github.com/conn-castle/webui-installer/internal/retry"
	"github.com/conn-castle/webui-installer/internal/shell"
)

// ErrMissingCommand reports that a required executable is not on PATH.
var ErrMissingCommand = errors.New(messages.PrecheckMissingCommand)

// Env is everything a stage needs.
type Env struct {
	Target config.Target
	Config config.Config
	Runner shell.Runner
	Retry  retry.Runner
	HTTP   *http.Client
	Out    io.Writer
	// Privileged is true when running as root; otherwise package commands go through sudo.
	Privileged bool
}

// RequiredCommands lists the executables the install needs before it starts.
func RequiredCommands(privileged bool) []string {
	required := []string{"apt-get", "bash", "git"}
	if !privileged {
		required = append(required, "sudo", "lslocks")
	}
	return required
}

// Precheck fails with ErrMissingCommand if any required executable is absent.
func Precheck(privileged bool) error {
	missing := missingCommands(RequiredCommands(privileged))
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf(messages.PrecheckMissingCommandsFmt, ErrMissingCommand, strings.Join(missing, ", "))
}

var missingCommands = shell.MissingCommands

// PyenvRoot returns the pyenv installation directory for home.
func PyenvRoot(home string) string {
	return filepath.Join(home, ".pyenv")
}

// EnvPython returns the interpreter inside the environment directory.
func (e Env) EnvPython() string {
	return filepath.Join(e.Target.EnvDir, "bin", "python")
}

func (e Env) printf(format string, args ...any) {
	if e.Out == nil {
		return
	}
	_, _ = fmt.Fprintf(e.Out, format, args...)
}

// run executes cmd through the retry runner. Failures are attributed to the
// stage line that called run.
func (e Env) run(ctx context.Context, label string, cmd shell.Command) error {
	if cmd.Site == "" {
		cmd.Site = shell.Caller(1)
	}
	return e.Retry.Do(ctx, label, func(ctx context.Context, _ int) error {
		return e.Runner.Run(ctx, cmd)
	})
}

// privileged wraps a package-manager command in sudo when needed. The environment
// is passed through `env` because sudo drops the caller's environment.
func (e Env) privileged(env []string, name string, args ...string) shell.Command {
	if e.Privileged {
		return shell.Command{Name: name, Args: args, Env: env}
	}
	full := append([]string{"env"}, env...)
	full = append(full, name)
	full = append(full, args...)
	return shell.Command{Name: "sudo", Args: full}
}

func removeDir(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf(messages.SourceRemoveFailedFmt, path, err)
	}
	return nil
}
