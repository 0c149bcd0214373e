package main

import (
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/conn-castle/webui-installer/internal/config"
	"github.com/conn-castle/webui-installer/internal/messages"
	"github.com/conn-castle/webui-installer/internal/prompt"
)

const flagConfig = "config"

var (
	resolveHomeFunc = config.ResolveHome
	geteuidFunc     = os.Geteuid
	nowFunc         = time.Now
	newConfirmer    = func(out io.Writer) prompt.Confirmer { return prompt.NewHuhConfirmer(out) }
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           messages.RootUse,
		Short:         messages.RootShort,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Flags().BoolP("version", "v", false, messages.RootVersionFlag)
	cmd.PersistentFlags().String(flagConfig, "", messages.RootFlagConfig)
	cmd.AddCommand(
		newInstallCmd(),
		newRemoveCmd(),
		newPatchCmd(),
		newHealCmd(),
		newDoctorCmd(),
		newStatusCmd(),
	)
	return cmd
}

// profile is the resolved config and target for one command.
type profile struct {
	Config config.Config
	Target config.Target
}

// loadProfile loads the config named by --config and resolves the install paths
// under the invoking user's home.
func loadProfile(cmd *cobra.Command) (profile, error) {
	path, err := cmd.Flags().GetString(flagConfig)
	if err != nil {
		return profile{}, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return profile{}, err
	}
	home, err := resolveHomeFunc()
	if err != nil {
		return profile{}, err
	}
	target, err := config.NewTarget(home, cfg.Layout, nowFunc())
	if err != nil {
		return profile{}, err
	}
	return profile{Config: cfg, Target: target}, nil
}
