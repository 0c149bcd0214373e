package stages

import (
	"context"

	"github.com/conn-castle/webui-installer/internal/messages"
)

var aptEnv = []string{"DEBIAN_FRONTEND=noninteractive"}

// Packages refreshes the package index and installs the configured system packages.
// The lock waiter must have run first.
func Packages(ctx context.Context, e Env) error {
	e.printf("%s\n", messages.PackagesUpdatingIndex)
	if err := e.run(ctx, "apt-get update", e.privileged(aptEnv, "apt-get", "update")); err != nil {
		return err
	}
	pkgs := e.Config.Packages.Install
	if len(pkgs) == 0 {
		return nil
	}
	e.printf(messages.PackagesInstallingFmt, len(pkgs))
	args := append([]string{"install", "-y"}, pkgs...)
	return e.run(ctx, "apt-get install", e.privileged(aptEnv, "apt-get", args...))
}
