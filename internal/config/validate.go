package config

import (
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/conn-castle/webui-installer/internal/messages"
)

// Validate checks the profile invariants the installer relies on.
func (c Config) Validate() error {
	var errs []error
	required := map[string]string{
		"layout.app_dir":             c.Layout.AppDir,
		"layout.env_dir":             c.Layout.EnvDir,
		"layout.launcher":            c.Layout.Launcher,
		"layout.remover":             c.Layout.Remover,
		"layout.log_prefix":          c.Layout.LogPrefix,
		"python.version":             c.Python.Version,
		"python.pyenv_installer_url": c.Python.PyenvInstallerURL,
		"source.repo_url":            c.Source.RepoURL,
		"patch.replacement_url":      c.Patch.ReplacementURL,
		"launch.entry":               c.Launch.Entry,
	}
	for _, key := range slices.Sorted(maps.Keys(required)) {
		if strings.TrimSpace(required[key]) == "" {
			errs = append(errs, fmt.Errorf(messages.ConfigFieldRequiredFmt, key))
		}
	}

	for key, name := range map[string]string{
		"layout.app_dir":  c.Layout.AppDir,
		"layout.env_dir":  c.Layout.EnvDir,
		"layout.launcher": c.Layout.Launcher,
		"layout.remover":  c.Layout.Remover,
	} {
		if name != "" && !isSingleComponent(name) {
			errs = append(errs, fmt.Errorf(messages.ConfigDirNameInvalidFmt, key, name))
		}
	}
	if c.Layout.AppDir != "" && c.Layout.AppDir == c.Layout.EnvDir {
		errs = append(errs, errors.New(messages.ConfigDirNamesEqual))
	}

	if len(c.Patch.LegacyURLs) == 0 {
		errs = append(errs, fmt.Errorf(messages.ConfigFieldRequiredFmt, "patch.legacy_urls"))
	}
	for _, legacy := range c.Patch.LegacyURLs {
		if strings.TrimSpace(legacy) == "" {
			errs = append(errs, fmt.Errorf(messages.ConfigFieldRequiredFmt, "patch.legacy_urls entry"))
			continue
		}
		if strings.Contains(c.Patch.ReplacementURL, legacy) {
			errs = append(errs, errors.New(messages.ConfigReplacementLoops))
		}
	}
	if c.Patch.VendoredDir != "" && !isInsideRelative(c.Patch.VendoredDir) {
		errs = append(errs, fmt.Errorf(messages.ConfigVendoredDirFmt, c.Patch.VendoredDir))
	}

	for i, asset := range c.Assets.Models {
		if strings.TrimSpace(asset.URL) == "" {
			errs = append(errs, fmt.Errorf(messages.ConfigAssetURLFmt, i))
		}
		if !isInsideRelative(asset.Dest) {
			errs = append(errs, fmt.Errorf(messages.ConfigAssetDestFmt, i, asset.Dest))
		}
	}

	if c.Retry.Attempts < 1 {
		errs = append(errs, fmt.Errorf(messages.ConfigFieldPositiveFmt, "retry.attempts", c.Retry.Attempts))
	}
	if c.Retry.DelaySeconds < 0 {
		errs = append(errs, fmt.Errorf(messages.ConfigFieldNegativeFmt, "retry.delay_seconds", c.Retry.DelaySeconds))
	}
	if c.Lock.Polls < 1 {
		errs = append(errs, fmt.Errorf(messages.ConfigFieldPositiveFmt, "lock.polls", c.Lock.Polls))
	}
	if c.Lock.IntervalSeconds < 0 {
		errs = append(errs, fmt.Errorf(messages.ConfigFieldNegativeFmt, "lock.interval_seconds", c.Lock.IntervalSeconds))
	}
	if c.Probe.TimeoutSeconds < 1 {
		errs = append(errs, fmt.Errorf(messages.ConfigFieldPositiveFmt, "probe.timeout_seconds", c.Probe.TimeoutSeconds))
	}
	return errors.Join(errs...)
}

func isSingleComponent(name string) bool {
	return name == filepath.Base(name) && name != "." && name != ".." && !strings.ContainsRune(name, '/')
}

// isInsideRelative reports whether rel is a non-empty relative path that stays inside its base.
func isInsideRelative(rel string) bool {
	if strings.TrimSpace(rel) == "" || filepath.IsAbs(rel) {
		return false
	}
	clean := filepath.Clean(filepath.FromSlash(rel))
	return clean != "." && clean != ".." && !strings.HasPrefix(clean, ".."+string(filepath.Separator))
}
