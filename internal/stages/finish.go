package stages

import (
	"context"
	"path/filepath"

	"github.com/conn-castle/webui-installer/internal/assets"
	"github.com/conn-castle/webui-installer/internal/launchers"
	"github.com/conn-castle/webui-installer/internal/patch"
)

// Patch rewrites legacy URLs across the application tree and removes the stale vendored copy.
func Patch(e Env) (patch.Report, error) {
	opts := patch.DefaultScanOptions()
	opts.SkipDirs = append(opts.SkipDirs, filepath.Base(e.Target.EnvDir))
	return patch.Run(patch.Options{
		Root:        e.Target.AppDir,
		Variants:    e.Config.Patch.LegacyURLs,
		Replacement: e.Config.Patch.ReplacementURL,
		VendoredDir: e.Config.Patch.VendoredDir,
		Scan:        opts,
		Out:         e.Out,
	})
}

// Assets downloads each configured model that is not already present.
func Assets(ctx context.Context, e Env) ([]assets.Result, error) {
	downloader := assets.Downloader{Client: e.HTTP, Retry: e.Retry, Out: e.Out}
	results := make([]assets.Result, 0, len(e.Config.Assets.Models))
	for _, model := range e.Config.Assets.Models {
		res, err := downloader.DownloadIfMissing(ctx, assets.Spec{
			URL:  model.URL,
			Dest: filepath.Join(e.Target.AppDir, filepath.FromSlash(model.Dest)),
		})
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// LauncherParams maps the target and profile onto the generated scripts.
func LauncherParams(e Env) launchers.Params {
	return launchers.Params{
		AppDir:         e.Target.AppDir,
		EnvDir:         e.Target.EnvDir,
		LauncherPath:   e.Target.LauncherPath,
		RemoverPath:    e.Target.RemoverPath,
		VendoredDir:    filepath.Join(e.Target.AppDir, filepath.FromSlash(e.Config.Patch.VendoredDir)),
		LegacyURLs:     e.Config.Patch.LegacyURLs,
		ReplacementURL: e.Config.Patch.ReplacementURL,
		Entry:          e.Config.Launch.Entry,
		Flags:          e.Config.Launch.Flags,
	}
}

// Artifacts writes the launcher and remover scripts.
func Artifacts(sys launchers.System, e Env) error {
	return launchers.Write(sys, LauncherParams(e))
}
