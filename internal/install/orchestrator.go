// Package install sequences the install stages and owns failure handling and rollback.
package install

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/conn-castle/webui-installer/internal/config"
	"github.com/conn-castle/webui-installer/internal/messages"
	"github.com/conn-castle/webui-installer/internal/metrics"
	"github.com/conn-castle/webui-installer/internal/runlog"
)

// DefaultTailLines is how much of the run log is shown after a failure.
const DefaultTailLines = 40

// Step is one entry of the stage table.
type Step struct {
	Name  string
	State State
	// Mutates arms rollback before the step runs.
	Mutates bool
	Run     func(ctx context.Context) error
}

// Outcome is the result of an orchestrator run.
type Outcome struct {
	State      State
	Install    InstallState
	ExitCode   int
	Failure    *StageError
	RolledBack bool
	Results    []StageResult
	// Path lists the states the run passed through, in order.
	Path []State
}

// Orchestrator drives the stage table. It stops at the first failing stage and,
// if rollback is armed, removes the target's owned directories. An interrupted
// run stops without rollback; the next run recreates both directories.
type Orchestrator struct {
	Target config.Target
	Sys    System
	Out    io.Writer
	// LogPath is read back to show its tail after a failure.
	LogPath   string
	TailLines int
	Metrics   metrics.Metrics
	Now       func() time.Time

	Stages []Step
	// Finalize steps run after rollback is disarmed. Their failures change the
	// exit code but never undo the install.
	Finalize []Step

	armed    bool
	disarmed bool
	path     []State
}

// Armed reports whether a failure now would trigger rollback.
func (o *Orchestrator) Armed() bool {
	return o.armed
}

// Run executes every stage in order and returns the outcome.
func (o *Orchestrator) Run(ctx context.Context) Outcome {
	if err := o.validate(); err != nil {
		return Outcome{State: StateFailed, Install: Absent, ExitCode: 1, Failure: &StageError{Stage: string(StatePrecheck), ExitCode: 1, Err: err}, Path: []State{StateFailed}}
	}
	results := make([]StageResult, 0, len(o.Stages))
	for i, step := range o.Stages {
		o.printf(messages.InstallStageStartFmt, i+1, len(o.Stages), step.Name)
		if step.Mutates {
			o.armed = true
		}
		o.enter(step.State)
		start := o.now()
		err := step.Run(ctx)
		if err == nil && ctx.Err() != nil {
			err = ctx.Err()
		}
		elapsed := o.now().Sub(start)
		if err != nil {
			o.metrics().ObserveStage(step.Name, false, elapsed.Seconds())
			se := newStageError(ctx, step.Name, err)
			results = append(results, StageResult{Stage: step.Name, Err: se})
			return o.fail(se, results)
		}
		o.metrics().ObserveStage(step.Name, true, elapsed.Seconds())
		results = append(results, StageResult{Stage: step.Name})
		o.printf(messages.InstallStageDoneFmt, step.Name, elapsed.Round(time.Millisecond))
	}

	o.disarm()
	o.enter(StateDone)
	outcome := Outcome{State: StateDone, Install: Installed, Results: results, Path: o.path}
	// Recorded before Finalize so a metrics export step sees the outcome.
	o.metrics().SetOutcome(string(outcome.State), 0)
	for _, step := range o.Finalize {
		if err := step.Run(ctx); err != nil {
			o.printf(messages.InstallFinalizeFailedFmt, step.Name, err)
			outcome.ExitCode = 1
		}
	}
	if outcome.ExitCode != 0 {
		o.metrics().SetOutcome(string(outcome.State), outcome.ExitCode)
	}
	return outcome
}

func (o *Orchestrator) enter(s State) {
	if s == "" {
		return
	}
	o.path = append(o.path, s)
}

// disarm turns rollback off. It takes effect once; later calls are no-ops.
func (o *Orchestrator) disarm() {
	if o.disarmed {
		return
	}
	o.disarmed = true
	o.armed = false
	o.printf("%s\n", messages.InstallRollbackDisarmed)
}

// fail reports se, shows the log tail, rolls back if armed and builds the outcome.
func (o *Orchestrator) fail(se *StageError, results []StageResult) Outcome {
	o.printf(messages.InstallStageFailedFmt, se.Stage, se.ExitCode)
	if se.Command != "" {
		o.printf(messages.InstallFailedCommandFmt, se.Command)
	}
	if se.Location != "" {
		o.printf(messages.InstallFailedAtFmt, se.Location)
	}
	o.printf(messages.InstallFailedCauseFmt, se.Err)
	o.printTail()

	outcome := Outcome{State: StateFailed, Install: Absent, ExitCode: se.ExitCode, Failure: se, Results: results}
	switch {
	case o.armed && se.Cancelled:
		o.printf(messages.InstallInterruptedFmt, o.Target.AppDir, o.Target.EnvDir)
		outcome.Install = Installing
	case o.armed:
		o.enter(StateRollback)
		outcome.RolledBack = o.rollback()
		outcome.Install = RolledBack
	}
	o.enter(StateFailed)
	outcome.Path = o.path
	if o.LogPath != "" {
		o.printf(messages.InstallFullLogFmt, o.LogPath)
	}
	o.metrics().SetOutcome(string(outcome.State), outcome.ExitCode)
	return outcome
}

// rollback removes the owned directories. It reports whether both are gone.
func (o *Orchestrator) rollback() bool {
	o.printf("%s\n", messages.InstallRollbackStart)
	clean := true
	for _, dir := range o.Target.OwnedDirs() {
		if err := o.Sys.RemoveAll(dir); err != nil {
			o.printf(messages.InstallRollbackFailedFmt, dir, err)
			clean = false
			continue
		}
		o.printf(messages.InstallRollbackRemovedFmt, dir)
	}
	o.armed = false
	if clean {
		o.printf("%s\n", messages.InstallRollbackDone)
	}
	return clean
}

func (o *Orchestrator) printTail() {
	if o.LogPath == "" {
		return
	}
	n := o.TailLines
	if n <= 0 {
		n = DefaultTailLines
	}
	lines, err := runlog.Tail(o.LogPath, n)
	if err != nil {
		o.printf(messages.InstallLogTailFailedFmt, err)
		return
	}
	o.printf(messages.InstallLogTailHeaderFmt, len(lines), o.LogPath)
	for _, line := range lines {
		o.printf("%s\n", line)
	}
	o.printf("%s\n", messages.InstallLogTailFooter)
}

func (o *Orchestrator) validate() error {
	if err := o.Target.Validate(); err != nil {
		return err
	}
	if o.Sys == nil {
		return errors.New(messages.InstallSystemRequired)
	}
	if len(o.Stages) == 0 {
		return fmt.Errorf(messages.InstallNoStagesFmt, o.Target.Home)
	}
	return nil
}

func (o *Orchestrator) metrics() metrics.Metrics {
	if o.Metrics == nil {
		return metrics.Noop{}
	}
	return o.Metrics
}

func (o *Orchestrator) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

func (o *Orchestrator) printf(format string, args ...any) {
	if o.Out == nil {
		return
	}
	_, _ = fmt.Fprintf(o.Out, format, args...)
}
