package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conn-castle/webui-installer/internal/messages"
	"github.com/conn-castle/webui-installer/internal/patch"
)

func newPatchCmd() *cobra.Command {
	var dryRun bool
	var diffLines int
	cmd := &cobra.Command{
		Use:   messages.PatchUse,
		Short: messages.PatchShort,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile(cmd)
			if err != nil {
				return err
			}
			root := p.Target.AppDir
			if len(args) == 1 {
				root = args[0]
			}
			out := cmd.OutOrStdout()
			report, err := patch.Run(patch.Options{
				Root:        root,
				Variants:    p.Config.Patch.LegacyURLs,
				Replacement: p.Config.Patch.ReplacementURL,
				VendoredDir: p.Config.Patch.VendoredDir,
				Scan:        patch.DefaultScanOptions(),
				DryRun:      dryRun,
				Now:         nowFunc,
				Out:         out,
			})
			if err != nil {
				return err
			}
			if !dryRun {
				return nil
			}
			if len(report.Edits) == 0 {
				_, _ = fmt.Fprintln(out, messages.PatchNoEditsDry)
				return nil
			}
			_, _ = fmt.Fprint(out, patch.Preview(report.Edits, diffLines))
			_, _ = fmt.Fprintf(out, messages.PatchDryRunFmt, len(report.Edits))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, messages.PatchFlagDryRun)
	cmd.Flags().IntVar(&diffLines, "diff-lines", patch.DefaultPreviewLines, messages.PatchFlagLines)
	return cmd
}
