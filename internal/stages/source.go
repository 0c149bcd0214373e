package stages

import (
	"context"
	"strings"

	"github.com/conn-castle/webui-installer/internal/messages"
	"github.com/conn-castle/webui-installer/internal/shell"
)

// Source recreates the application directory from a fresh shallow clone of the
// default branch. Every attempt starts from an empty directory.
func Source(ctx context.Context, e Env) error {
	repo := e.Config.Source.RepoURL
	e.printf(messages.SourceRecreateFmt, repo, e.Target.AppDir)
	return e.Retry.Do(ctx, "git clone", func(ctx context.Context, _ int) error {
		if err := removeDir(e.Target.AppDir); err != nil {
			return err
		}
		return e.Runner.Run(ctx, shell.Command{Name: "git", Args: []string{"clone", "--depth", "1", repo, e.Target.AppDir}})
	})
}

// Head returns the commit checked out in the application directory.
func Head(ctx context.Context, e Env) (string, error) {
	out, err := e.Runner.Output(ctx, shell.Command{Name: "git", Args: []string{"-C", e.Target.AppDir, "rev-parse", "HEAD"}})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
