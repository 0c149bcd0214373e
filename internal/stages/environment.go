package stages

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/conn-castle/webui-installer/internal/assets"
	"github.com/conn-castle/webui-installer/internal/messages"
	"github.com/conn-castle/webui-installer/internal/shell"
)

// Environment ensures pyenv and the pinned Python exist, then recreates the
// environment directory from scratch and bootstraps its packages.
func Environment(ctx context.Context, e Env) error {
	pyenvRoot := PyenvRoot(e.Target.Home)
	pyenvBin := filepath.Join(pyenvRoot, "bin", "pyenv")
	pyenvEnv := []string{"HOME=" + e.Target.Home, "PYENV_ROOT=" + pyenvRoot}

	if _, err := os.Stat(pyenvBin); err == nil {
		e.printf(messages.EnvPyenvPresentFmt, pyenvRoot)
	} else if errors.Is(err, os.ErrNotExist) {
		if err := e.installPyenv(ctx, pyenvEnv); err != nil {
			return err
		}
	} else {
		return err
	}

	version := e.Config.Python.Version
	e.printf(messages.EnvPythonInstallFmt, version)
	if err := e.run(ctx, "pyenv install", shell.Command{Name: pyenvBin, Args: []string{"install", "-s", version}, Env: pyenvEnv}); err != nil {
		return err
	}

	e.printf(messages.EnvRecreateFmt, e.Target.EnvDir)
	if err := removeDir(e.Target.EnvDir); err != nil {
		return err
	}
	python := filepath.Join(pyenvRoot, "versions", version, "bin", "python")
	if err := e.Runner.Run(ctx, shell.Command{Name: python, Args: []string{"-m", "venv", e.Target.EnvDir}}); err != nil {
		return err
	}

	e.printf("%s\n", messages.EnvBootstrapPip)
	pip := []string{"-m", "pip", "install", "--upgrade", "pip", "setuptools", "wheel"}
	if err := e.run(ctx, "pip upgrade", shell.Command{Name: e.EnvPython(), Args: pip}); err != nil {
		return err
	}

	torch := e.Config.Python.TorchPackages
	if len(torch) == 0 {
		return nil
	}
	e.printf(messages.EnvInstallTorchFmt, strings.Join(torch, " "), e.Config.Python.TorchIndexURL)
	args := append([]string{"-m", "pip", "install"}, torch...)
	if e.Config.Python.TorchIndexURL != "" {
		args = append(args, "--index-url", e.Config.Python.TorchIndexURL)
	}
	return e.run(ctx, "pip install torch", shell.Command{Name: e.EnvPython(), Args: args})
}

// installPyenv downloads the pyenv installer (retried) and runs it with bash.
func (e Env) installPyenv(ctx context.Context, env []string) error {
	url := e.Config.Python.PyenvInstallerURL
	e.printf(messages.EnvPyenvInstallingFmt, url)
	dir, err := os.MkdirTemp("", "wuinstall-pyenv-")
	if err != nil {
		return fmt.Errorf(messages.EnvPyenvFetchFailedFmt, err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	script := filepath.Join(dir, "pyenv-installer.sh")
	downloader := assets.Downloader{Client: e.HTTP}
	err = e.Retry.Do(ctx, "fetch pyenv installer", func(ctx context.Context, _ int) error {
		_, err := downloader.Fetch(ctx, url, script)
		return err
	})
	if err != nil {
		return fmt.Errorf(messages.EnvPyenvFetchFailedFmt, err)
	}
	return e.Runner.Run(ctx, shell.Command{Name: "bash", Args: []string{script}, Env: env})
}
