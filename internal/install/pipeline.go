package install

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/conn-castle/webui-installer/internal/assets"
	"github.com/conn-castle/webui-installer/internal/launchers"
	"github.com/conn-castle/webui-installer/internal/messages"
	"github.com/conn-castle/webui-installer/internal/metrics"
	"github.com/conn-castle/webui-installer/internal/stages"
)

// LockWaiter blocks until the package manager is free.
type LockWaiter interface {
	Wait(ctx context.Context) error
}

// Prober performs the advisory connectivity check.
type Prober interface {
	Probe(ctx context.Context) bool
}

// Pipeline wires the stages to one install run.
type Pipeline struct {
	Env            stages.Env
	Sys            System
	Launchers      launchers.System
	Locks          LockWaiter
	Probe          Prober
	Metrics        metrics.Metrics
	DownloadModels bool
	RunID          string
	Now            func() time.Time
	// Precheck verifies required commands; nil uses stages.Precheck.
	Precheck func() error
	// Finalize runs after a successful install, once rollback is disarmed.
	Finalize []Step

	receipt Receipt
	started time.Time
}

// Receipt returns the receipt assembled so far.
func (p *Pipeline) Receipt() Receipt {
	return p.receipt
}

// Orchestrator builds the stage table for this run.
func (p *Pipeline) Orchestrator(out io.Writer, logPath string) *Orchestrator {
	p.started = p.now()
	if p.RunID == "" {
		p.RunID = NewRunID()
	}
	t := p.Env.Target
	p.receipt = Receipt{
		RunID:         p.RunID,
		StartedAt:     p.started.UTC(),
		Home:          t.Home,
		AppDir:        t.AppDir,
		EnvDir:        t.EnvDir,
		Launcher:      t.LauncherPath,
		Remover:       t.RemoverPath,
		Log:           t.LogPath,
		PythonVersion: p.Env.Config.Python.Version,
		RepoURL:       p.Env.Config.Source.RepoURL,
	}

	o := &Orchestrator{
		Target:   t,
		Sys:      p.Sys,
		Out:      out,
		LogPath:  logPath,
		Metrics:  p.Metrics,
		Now:      p.Now,
		Finalize: p.Finalize,
	}
	o.Stages = []Step{
		{Name: string(StatePrecheck), State: StatePrecheck, Run: p.precheck},
		{Name: string(StatePackages), State: StatePackages, Mutates: true, Run: func(ctx context.Context) error {
			return stages.Packages(ctx, p.Env)
		}},
		{Name: string(StateEnvironment), State: StateEnvironment, Mutates: true, Run: func(ctx context.Context) error {
			return stages.Environment(ctx, p.Env)
		}},
		{Name: string(StateSource), State: StateSource, Mutates: true, Run: p.source},
		{Name: string(StatePatch), State: StatePatch, Mutates: true, Run: p.patch},
		{Name: string(StateAssets), State: StateAssets, Mutates: true, Run: p.assets},
		{Name: string(StateArtifacts), State: StateArtifacts, Mutates: true, Run: p.artifacts},
	}
	return o
}

func (p *Pipeline) precheck(ctx context.Context) error {
	check := p.Precheck
	if check == nil {
		check = func() error { return stages.Precheck(p.Env.Privileged) }
	}
	if err := check(); err != nil {
		return err
	}
	if p.Probe != nil {
		p.Probe.Probe(ctx)
	}
	if p.Locks != nil {
		return p.Locks.Wait(ctx)
	}
	return nil
}

func (p *Pipeline) source(ctx context.Context) error {
	if err := stages.Source(ctx, p.Env); err != nil {
		return err
	}
	head, err := stages.Head(ctx, p.Env)
	if err == nil {
		p.receipt.RepoHead = head
	}
	return nil
}

func (p *Pipeline) patch(context.Context) error {
	report, err := stages.Patch(p.Env)
	if err != nil {
		return err
	}
	root := p.Env.Target.AppDir
	for _, outcome := range report.Outcomes {
		if !outcome.Patched {
			continue
		}
		before, _ := assets.DigestFile(filepath.Join(root, filepath.FromSlash(outcome.Backup)))
		after, _ := assets.DigestFile(filepath.Join(root, filepath.FromSlash(outcome.Path)))
		p.receipt.Patched = append(p.receipt.Patched, PatchedFile{
			Path:   outcome.Path,
			Backup: outcome.Backup,
			Before: before,
			After:  after,
		})
	}
	p.receipt.StaleRemoved = report.StaleRemoved
	return nil
}

func (p *Pipeline) assets(ctx context.Context) error {
	if !p.DownloadModels {
		p.printf(messages.InstallStageSkippedFmt, StateAssets, messages.InstallAssetsDisabled)
		return nil
	}
	results, err := stages.Assets(ctx, p.Env)
	for i, res := range results {
		p.receipt.Assets = append(p.receipt.Assets, AssetRecord{
			Path:    res.Dest,
			URL:     p.Env.Config.Assets.Models[i].URL,
			Skipped: res.Skipped,
			Bytes:   res.Bytes,
			Digest:  res.Digest,
		})
	}
	return err
}

func (p *Pipeline) artifacts(context.Context) error {
	sys := p.Launchers
	if sys == nil {
		sys = launchers.RealSystem{}
	}
	if err := stages.Artifacts(sys, p.Env); err != nil {
		return err
	}
	p.receipt.FinishedAt = p.now().UTC()
	return WriteReceipt(p.Sys, ReceiptPath(p.Env.Target.EnvDir), p.receipt)
}

func (p *Pipeline) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

func (p *Pipeline) printf(format string, args ...any) {
	if p.Env.Out == nil {
		return
	}
	_, _ = fmt.Fprintf(p.Env.Out, format, args...)
}
