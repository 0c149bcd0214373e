package main

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/cobra"

	"github.com/conn-castle/webui-installer/internal/install"
	"github.com/conn-castle/webui-installer/internal/messages"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   messages.StatusUse,
		Short: messages.StatusShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			receipt, err := install.ReadReceipt(install.RealSystem{}, install.ReceiptPath(p.Target.EnvDir))
			if errors.Is(err, fs.ErrNotExist) {
				_, _ = fmt.Fprintln(out, messages.StatusNotInstalled)
				return nil
			}
			if err != nil {
				return err
			}
			head := receipt.RepoHead
			if head == "" {
				head = "unknown"
			}
			_, _ = fmt.Fprintf(out, messages.StatusRunIDFmt, receipt.RunID)
			_, _ = fmt.Fprintf(out, messages.StatusFinishedFmt, receipt.FinishedAt.Local().Format(time.RFC3339))
			_, _ = fmt.Fprintf(out, messages.StatusPythonFmt, receipt.PythonVersion)
			_, _ = fmt.Fprintf(out, messages.StatusRepoFmt, receipt.RepoURL, head)
			_, _ = fmt.Fprintf(out, messages.StatusPatchedFmt, len(receipt.Patched))
			_, _ = fmt.Fprintf(out, messages.StatusAssetsFmt, len(receipt.Assets))
			_, _ = fmt.Fprintf(out, messages.StatusLauncherFmt, receipt.Launcher)
			return nil
		},
	}
}
