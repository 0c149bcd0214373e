package install

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conn-castle/webui-installer/internal/config"
	"github.com/conn-castle/webui-installer/internal/metrics"
	"github.com/conn-castle/webui-installer/internal/shell"
)

func testTarget(t *testing.T) config.Target {
	t.Helper()
	target, err := config.NewTarget(t.TempDir(), config.Default().Layout, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return target
}

func mkdirs(t *testing.T, dirs ...string) {
	t.Helper()
	for _, dir := range dirs {
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "marker"), []byte("x"), 0o644))
	}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// removeFailSystem fails RemoveAll for one path.
type removeFailSystem struct {
	RealSystem
	failOn string
}

func (s removeFailSystem) RemoveAll(path string) error {
	if path == s.failOn {
		return errors.New("device busy")
	}
	return s.RealSystem.RemoveAll(path)
}

func okStep(name string, mutates bool) Step {
	return Step{Name: name, State: State(name), Mutates: mutates, Run: func(context.Context) error { return nil }}
}

func TestRunSucceedsAndDisarmsOnce(t *testing.T) {
	t.Parallel()
	target := testTarget(t)
	var out bytes.Buffer
	o := &Orchestrator{
		Target: target,
		Sys:    RealSystem{},
		Out:    &out,
		Stages: []Step{
			okStep("precheck", false),
			{Name: "source", State: StateSource, Mutates: true, Run: func(context.Context) error {
				mkdirs(t, target.AppDir, target.EnvDir)
				return nil
			}},
			okStep("artifacts", true),
		},
	}

	outcome := o.Run(context.Background())
	assert.Equal(t, 0, outcome.ExitCode)
	assert.Equal(t, StateDone, outcome.State)
	assert.Equal(t, Installed, outcome.Install)
	assert.Nil(t, outcome.Failure)
	assert.Len(t, outcome.Results, 3)
	assert.Equal(t, []State{"precheck", StateSource, "artifacts", StateDone}, outcome.Path)
	assert.False(t, o.Armed())
	assert.Equal(t, 1, strings.Count(out.String(), "rollback disarmed"))
	assert.True(t, exists(target.AppDir))
	assert.True(t, exists(target.EnvDir))

	o.disarm()
	assert.Equal(t, 1, strings.Count(out.String(), "rollback disarmed"))
}

func TestRunRollsBackOnMutatingFailure(t *testing.T) {
	t.Parallel()
	target := testTarget(t)
	bystander := filepath.Join(target.Home, "keep-me")
	mkdirs(t, bystander)

	var out bytes.Buffer
	o := &Orchestrator{
		Target: target,
		Sys:    RealSystem{},
		Out:    &out,
		Stages: []Step{
			okStep("precheck", false),
			{Name: "environment", State: StateEnvironment, Mutates: true, Run: func(context.Context) error {
				mkdirs(t, target.EnvDir)
				return nil
			}},
			{Name: "source", State: StateSource, Mutates: true, Run: func(context.Context) error {
				mkdirs(t, target.AppDir)
				return &shell.CommandError{Command: "git clone --depth 1 repo app", ExitCode: 128, Location: "source.go:20", Err: errors.New("exit status 128")}
			}},
			okStep("artifacts", true),
		},
	}

	outcome := o.Run(context.Background())
	assert.Equal(t, StateFailed, outcome.State)
	assert.Equal(t, RolledBack, outcome.Install)
	assert.True(t, outcome.RolledBack)
	assert.Equal(t, 128, outcome.ExitCode)
	require.NotNil(t, outcome.Failure)
	assert.Equal(t, "source", outcome.Failure.Stage)
	assert.Equal(t, "git clone --depth 1 repo app", outcome.Failure.Command)
	assert.Equal(t, "source.go:20", outcome.Failure.Location)
	assert.Len(t, outcome.Results, 3)
	assert.False(t, outcome.Results[2].OK())
	assert.Equal(t, []State{"precheck", StateEnvironment, StateSource, StateRollback, StateFailed}, outcome.Path)

	assert.False(t, exists(target.AppDir))
	assert.False(t, exists(target.EnvDir))
	assert.True(t, exists(bystander))
	assert.NotContains(t, out.String(), "artifacts")
	assert.Contains(t, out.String(), "Rolling back partial install...")
	assert.Contains(t, out.String(), "location: source.go:20")
}

func TestRunPrecheckFailureLeavesMachineUntouched(t *testing.T) {
	t.Parallel()
	target := testTarget(t)
	// A previous install must survive a failed precheck.
	mkdirs(t, target.AppDir, target.EnvDir)

	o := &Orchestrator{
		Target: target,
		Sys:    RealSystem{},
		Stages: []Step{
			{Name: "precheck", State: StatePrecheck, Run: func(context.Context) error { return errors.New("missing git") }},
			okStep("source", true),
		},
	}

	outcome := o.Run(context.Background())
	assert.Equal(t, 1, outcome.ExitCode)
	assert.Equal(t, Absent, outcome.Install)
	assert.False(t, outcome.RolledBack)
	assert.Equal(t, []State{StatePrecheck, StateFailed}, outcome.Path)
	assert.True(t, exists(target.AppDir))
	assert.True(t, exists(target.EnvDir))
}

func TestRunFinalizeFailureKeepsInstall(t *testing.T) {
	t.Parallel()
	target := testTarget(t)
	var out bytes.Buffer
	o := &Orchestrator{
		Target: target,
		Sys:    RealSystem{},
		Out:    &out,
		Stages: []Step{
			{Name: "source", State: StateSource, Mutates: true, Run: func(context.Context) error {
				mkdirs(t, target.AppDir, target.EnvDir)
				return nil
			}},
		},
		Finalize: []Step{
			{Name: "metrics", Run: func(context.Context) error { return errors.New("disk full") }},
		},
	}

	outcome := o.Run(context.Background())
	assert.Equal(t, 1, outcome.ExitCode)
	assert.Equal(t, Installed, outcome.Install)
	assert.False(t, outcome.RolledBack)
	assert.True(t, exists(target.AppDir))
	assert.True(t, exists(target.EnvDir))
	assert.Contains(t, out.String(), "post-install step metrics failed")
}

func TestRunCancelledReturns130AndLeavesState(t *testing.T) {
	t.Parallel()
	target := testTarget(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out bytes.Buffer
	o := &Orchestrator{
		Target: target,
		Sys:    RealSystem{},
		Out:    &out,
		Stages: []Step{
			{Name: "environment", State: StateEnvironment, Mutates: true, Run: func(context.Context) error {
				mkdirs(t, target.EnvDir)
				cancel()
				return nil
			}},
			okStep("source", true),
		},
	}

	outcome := o.Run(ctx)
	assert.Equal(t, ExitCodeCancelled, outcome.ExitCode)
	assert.False(t, outcome.RolledBack)
	assert.Equal(t, Installing, outcome.Install)
	assert.True(t, exists(target.EnvDir))
	require.NotNil(t, outcome.Failure)
	assert.True(t, outcome.Failure.Cancelled)
	assert.True(t, errors.Is(outcome.Failure, context.Canceled))
	assert.Equal(t, []State{StateEnvironment, StateFailed}, outcome.Path)
	assert.NotContains(t, out.String(), "Rolling back")
	assert.Contains(t, out.String(), "Re-run the installer to recover")
}

func TestRunRollbackContinuesPastRemovalFailure(t *testing.T) {
	t.Parallel()
	target := testTarget(t)
	mkdirs(t, target.AppDir, target.EnvDir)

	var out bytes.Buffer
	o := &Orchestrator{
		Target: target,
		Sys:    removeFailSystem{failOn: target.AppDir},
		Out:    &out,
		Stages: []Step{
			{Name: "packages", State: StatePackages, Mutates: true, Run: func(context.Context) error { return errors.New("apt failed") }},
		},
	}

	outcome := o.Run(context.Background())
	assert.False(t, outcome.RolledBack)
	assert.Equal(t, RolledBack, outcome.Install)
	assert.True(t, exists(target.AppDir))
	assert.False(t, exists(target.EnvDir))
	assert.Contains(t, out.String(), "device busy")
	assert.NotContains(t, out.String(), "Rollback complete")
}

func TestRunPrintsLogTailOnFailure(t *testing.T) {
	t.Parallel()
	target := testTarget(t)
	var lines []string
	for i := 0; i < 60; i++ {
		lines = append(lines, fmt.Sprintf("early line %02d", i))
	}
	lines = append(lines, "fatal: repository not found")
	require.NoError(t, os.WriteFile(target.LogPath, []byte(strings.Join(lines, "\n")+"\n"), 0o644))

	var out bytes.Buffer
	o := &Orchestrator{
		Target:    target,
		Sys:       RealSystem{},
		Out:       &out,
		LogPath:   target.LogPath,
		TailLines: 5,
		Stages: []Step{
			{Name: "source", State: StateSource, Mutates: true, Run: func(context.Context) error { return errors.New("clone failed") }},
		},
	}

	o.Run(context.Background())
	text := out.String()
	assert.Contains(t, text, "---- last 5 lines of "+target.LogPath)
	assert.Contains(t, text, "fatal: repository not found")
	assert.NotContains(t, text, "early line 00")
	assert.Contains(t, text, "Full log: "+target.LogPath)
}

func TestRunRecordsMetrics(t *testing.T) {
	t.Parallel()
	target := testTarget(t)
	rec := &recordingMetrics{}
	o := &Orchestrator{
		Target:  target,
		Sys:     RealSystem{},
		Metrics: rec,
		Stages: []Step{
			okStep("precheck", false),
			{Name: "packages", State: StatePackages, Mutates: true, Run: func(context.Context) error { return errors.New("boom") }},
		},
	}

	o.Run(context.Background())
	assert.Equal(t, []string{"precheck:ok", "packages:failed"}, rec.stages)
	assert.Equal(t, "failed:1", rec.outcome)
}

func TestRunRejectsInvalidConfiguration(t *testing.T) {
	t.Parallel()
	target := testTarget(t)

	outcome := (&Orchestrator{Target: target, Sys: RealSystem{}}).Run(context.Background())
	assert.Equal(t, 1, outcome.ExitCode)

	outcome = (&Orchestrator{Target: target, Stages: []Step{okStep("precheck", false)}}).Run(context.Background())
	assert.Equal(t, 1, outcome.ExitCode)

	bad := target
	bad.AppDir = target.Home
	outcome = (&Orchestrator{Target: bad, Sys: RealSystem{}, Stages: []Step{okStep("precheck", false)}}).Run(context.Background())
	assert.Equal(t, 1, outcome.ExitCode)
	assert.True(t, exists(target.Home))
}

type recordingMetrics struct {
	metrics.Noop
	stages  []string
	outcome string
}

func (r *recordingMetrics) ObserveStage(stage string, ok bool, _ float64) {
	status := "failed"
	if ok {
		status = "ok"
	}
	r.stages = append(r.stages, stage+":"+status)
}

func (r *recordingMetrics) SetOutcome(state string, exitCode int) {
	r.outcome = state + ":" + strconv.Itoa(exitCode)
}
