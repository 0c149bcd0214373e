package patch

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/conn-castle/webui-installer/internal/messages"
	"github.com/conn-castle/webui-installer/internal/shell"
)

// HealRemote rewrites the origin remote of the git checkout at dir when it still
// points at a legacy URL. It reports whether a change was made. This is the same
// check the generated launcher performs before every start.
func HealRemote(ctx context.Context, runner shell.Runner, dir string, variants []string, replacement string, out io.Writer) (bool, error) {
	current, err := runner.Output(ctx, shell.Command{Name: "git", Args: []string{"-C", dir, "remote", "get-url", "origin"}})
	if err != nil {
		return false, fmt.Errorf(messages.HealReadRemoteFmt, dir, err)
	}
	current = strings.TrimSpace(current)
	if !slices.Contains(variants, current) {
		return false, nil
	}
	printf(out, messages.HealRepairingFmt, dir, current, replacement)
	if err := runner.Run(ctx, shell.Command{Name: "git", Args: []string{"-C", dir, "remote", "set-url", "origin", replacement}}); err != nil {
		return false, fmt.Errorf(messages.HealSetRemoteFmt, dir, err)
	}
	return true, nil
}
