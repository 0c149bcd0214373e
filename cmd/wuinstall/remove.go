package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conn-castle/webui-installer/internal/install"
	"github.com/conn-castle/webui-installer/internal/messages"
	"github.com/conn-castle/webui-installer/internal/prompt"
)

func newRemoveCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   messages.RemoveUse,
		Short: messages.RemoveShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			ok, err := prompt.Ask(newConfirmer(cmd.ErrOrStderr()), yes, fmt.Sprintf(messages.RemoveConfirmFmt, p.Target.AppDir, p.Target.EnvDir))
			if err != nil {
				return err
			}
			if !ok {
				_, _ = fmt.Fprintln(out, messages.RemoveAbortedLine)
				return nil
			}
			install.Remove(install.RealSystem{}, p.Target, out)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, messages.RemoveFlagYes)
	return cmd
}
