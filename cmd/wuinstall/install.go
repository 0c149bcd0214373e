package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/conn-castle/webui-installer/internal/install"
	"github.com/conn-castle/webui-installer/internal/lockwait"
	"github.com/conn-castle/webui-installer/internal/messages"
	"github.com/conn-castle/webui-installer/internal/metrics"
	"github.com/conn-castle/webui-installer/internal/netprobe"
	"github.com/conn-castle/webui-installer/internal/retry"
	"github.com/conn-castle/webui-installer/internal/runlog"
	"github.com/conn-castle/webui-installer/internal/shell"
	"github.com/conn-castle/webui-installer/internal/stages"
	"github.com/conn-castle/webui-installer/internal/terminal"
)

const (
	flagDownloadModels  = "download-models"
	flagMetricsTextfile = "metrics-textfile"
	metricsNamespace    = "wuinstall"
)

var (
	newRunner = func(out io.Writer) shell.Runner { return shell.ExecRunner{Out: out} }
	precheck  = stages.Precheck
)

func newInstallCmd() *cobra.Command {
	var downloadModels bool
	var metricsPath string
	cmd := &cobra.Command{
		Use:   messages.InstallUse,
		Short: messages.InstallShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			log, err := runlog.Open(p.Target.LogPath, out)
			if err != nil {
				return err
			}
			defer func() { _ = log.Close() }()

			runID := install.NewRunID()
			log.Printf(messages.InstallStartFmt, p.Target.Home, runID)
			log.Printf(messages.InstallLogPathFmt, p.Target.LogPath)

			prom := metrics.NewProm(metricsNamespace)
			privileged := geteuidFunc() == 0
			client := &http.Client{}
			env := stages.Env{
				Target: p.Target,
				Config: p.Config,
				Runner: newRunner(log),
				Retry: retry.Runner{
					Policy:  retry.Policy{Attempts: p.Config.Retry.Attempts, Delay: p.Config.Retry.RetryDelay()},
					Out:     log,
					OnRetry: func(label string, _ int) { prom.IncRetry(label) },
				},
				HTTP:       client,
				Out:        log,
				Privileged: privileged,
			}
			locks := lockwait.Waiter{
				Files:    p.Config.Lock.Files,
				Interval: p.Config.Lock.Interval(),
				MaxPolls: p.Config.Lock.Polls,
				Out:      log,
			}
			if !privileged {
				// dpkg lock files are readable only by root.
				locks.Escalate = lockwait.LslocksHolder(env.Runner, true)
			}
			pipeline := &install.Pipeline{
				Env:   env,
				Sys:   install.RealSystem{},
				Locks: locks,
				Probe: netprobe.Prober{
					Client:  client,
					URL:     p.Config.Probe.URL,
					Timeout: p.Config.Probe.Timeout(),
					Out:     log,
				},
				Metrics:        prom,
				DownloadModels: downloadModels || p.Config.Assets.Download,
				RunID:          runID,
				Precheck:       func() error { return precheck(privileged) },
			}
			pipeline.Finalize = []install.Step{{
				Name: "summary",
				Run: func(context.Context) error {
					_, err := fmt.Fprint(out, install.Summary(p.Target, !terminal.IsTerminal(out)))
					return err
				},
			}}
			if metricsPath != "" {
				pipeline.Finalize = append(pipeline.Finalize, install.Step{
					Name: "metrics",
					Run:  func(context.Context) error { return prom.WriteTextfile(metricsPath) },
				})
			}

			outcome := pipeline.Orchestrator(log, p.Target.LogPath).Run(cmd.Context())
			if outcome.ExitCode != 0 {
				if metricsPath != "" && outcome.State == install.StateFailed {
					if err := prom.WriteTextfile(metricsPath); err != nil {
						log.Printf(messages.InstallFinalizeFailedFmt, "metrics", err)
					}
				}
				return &SilentExitError{Code: outcome.ExitCode}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&downloadModels, flagDownloadModels, false, messages.InstallFlagDownloadModels)
	cmd.Flags().StringVar(&metricsPath, flagMetricsTextfile, "", messages.InstallFlagMetricsTextfile)
	return cmd
}
