package install

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/conn-castle/webui-installer/internal/config"
	"github.com/conn-castle/webui-installer/internal/messages"
)

// RemoveResult lists what Remove did.
type RemoveResult struct {
	Removed []string
	Absent  []string
	Failed  []string
}

// Remove deletes the launcher, both owned directories and finally the remover
// script. It is best-effort: every path is attempted, failures are reported as
// warnings and the call never fails. Running it on a clean machine is a no-op.
func Remove(sys System, target config.Target, out io.Writer) RemoveResult {
	var res RemoveResult
	removePath(sys.Remove, sys, target.LauncherPath, out, &res)
	for _, dir := range target.OwnedDirs() {
		removePath(sys.RemoveAll, sys, dir, out, &res)
	}
	fprintf(out, "%s\n", messages.RemoveCompleteLine)
	removePath(sys.Remove, sys, target.RemoverPath, out, &res)
	return res
}

func removePath(remove func(string) error, sys System, path string, out io.Writer, res *RemoveResult) {
	if path == "" {
		return
	}
	if _, err := sys.Lstat(path); errors.Is(err, fs.ErrNotExist) {
		res.Absent = append(res.Absent, path)
		fprintf(out, messages.RemoveAbsentFmt, path)
		return
	}
	if err := remove(path); err != nil {
		res.Failed = append(res.Failed, path)
		fprintf(out, messages.RemoveWarnFmt, path, err)
		return
	}
	res.Removed = append(res.Removed, path)
	fprintf(out, messages.RemoveRemovedFmt, path)
}

func fprintf(out io.Writer, format string, args ...any) {
	if out == nil {
		return
	}
	_, _ = fmt.Fprintf(out, format, args...)
}
