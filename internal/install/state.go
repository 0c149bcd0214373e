package install

import (
	"context"
	"errors"
	"fmt"

	"github.com/conn-castle/webui-installer/internal/messages"
	"github.com/conn-castle/webui-installer/internal/shell"
)

// State is a position in the install state machine.
type State string

const (
	StatePrecheck    State = "precheck"
	StatePackages    State = "packages"
	StateEnvironment State = "environment"
	StateSource      State = "source"
	StatePatch       State = "patch"
	StateAssets      State = "assets"
	StateArtifacts   State = "artifacts"
	StateDone        State = "done"
	StateRollback    State = "rollback"
	StateFailed      State = "failed"
)

// InstallState is the machine-wide install status.
type InstallState string

const (
	Absent     InstallState = "absent"
	Installing InstallState = "installing"
	Installed  InstallState = "installed"
	RolledBack InstallState = "rolled-back"
)

// ExitCodeCancelled is returned when the run is interrupted.
const ExitCodeCancelled = 130

// StageError is the failure context captured for the first failing stage.
type StageError struct {
	Stage    string
	ExitCode int
	Command  string
	Location string
	Err      error
	// Cancelled is set when the run was interrupted rather than failed.
	Cancelled bool
}

func (e *StageError) Error() string {
	return fmt.Sprintf(messages.StageFailedFmt, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// StageResult is the tagged result of one stage.
type StageResult struct {
	Stage string
	Err   *StageError
}

// OK reports whether the stage succeeded.
func (r StageResult) OK() bool {
	return r.Err == nil
}

// newStageError extracts the exit code, command and location carried by err.
func newStageError(ctx context.Context, stage string, err error) *StageError {
	se := &StageError{Stage: stage, ExitCode: shell.ExitCode(err), Err: err}
	var cmdErr *shell.CommandError
	if errors.As(err, &cmdErr) {
		se.Command = cmdErr.Command
		se.Location = cmdErr.Location
	}
	if errors.Is(err, context.Canceled) || ctx.Err() != nil {
		se.ExitCode = ExitCodeCancelled
		se.Cancelled = true
	}
	if se.ExitCode == 0 {
		se.ExitCode = 1
	}
	return se
}
