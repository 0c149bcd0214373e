package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/conn-castle/webui-installer/internal/messages"
	"github.com/conn-castle/webui-installer/internal/patch"
)

func newHealCmd() *cobra.Command {
	return &cobra.Command{
		Use:   messages.HealUse,
		Short: messages.HealShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			dir := filepath.Join(p.Target.AppDir, filepath.FromSlash(p.Config.Patch.VendoredDir))
			if _, err := os.Stat(filepath.Join(dir, ".git")); errors.Is(err, fs.ErrNotExist) {
				_, _ = fmt.Fprintf(out, messages.HealNotPresentFmt, dir)
				return nil
			}
			changed, err := patch.HealRemote(cmd.Context(), newRunner(cmd.ErrOrStderr()), dir, p.Config.Patch.LegacyURLs, p.Config.Patch.ReplacementURL, out)
			if err != nil {
				return err
			}
			if !changed {
				_, _ = fmt.Fprintln(out, messages.HealNothingToDo)
			}
			return nil
		},
	}
}
