package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/conn-castle/webui-installer/internal/messages"
)

// LogTimeLayout is the timestamp embedded in install log file names.
const LogTimeLayout = "20060102_150405"

// Target holds the resolved paths an install run creates under the invoking user's home.
type Target struct {
	Home         string
	AppDir       string
	EnvDir       string
	LogPath      string
	LauncherPath string
	RemoverPath  string
}

// NewTarget resolves the install paths for home using layout. now stamps the log file name.
func NewTarget(home string, layout LayoutConfig, now time.Time) (Target, error) {
	if strings.TrimSpace(home) == "" {
		return Target{}, errors.New(messages.TargetHomeRequired)
	}
	home = filepath.Clean(home)
	t := Target{
		Home:         home,
		AppDir:       filepath.Join(home, layout.AppDir),
		EnvDir:       filepath.Join(home, layout.EnvDir),
		LogPath:      filepath.Join(home, fmt.Sprintf("%s_%s.log", layout.LogPrefix, now.Format(LogTimeLayout))),
		LauncherPath: filepath.Join(home, layout.Launcher),
		RemoverPath:  filepath.Join(home, layout.Remover),
	}
	if err := t.Validate(); err != nil {
		return Target{}, err
	}
	return t, nil
}

// OwnedDirs returns the directories an install run creates and may roll back.
func (t Target) OwnedDirs() []string {
	return []string{t.AppDir, t.EnvDir}
}

// Validate checks that both owned directories are distinct direct children of Home.
// Rollback deletes them recursively, so nothing else may be named here.
func (t Target) Validate() error {
	if strings.TrimSpace(t.Home) == "" {
		return errors.New(messages.TargetHomeRequired)
	}
	for _, dir := range t.OwnedDirs() {
		if filepath.Dir(dir) != t.Home || filepath.Base(dir) == "." || filepath.Base(dir) == ".." {
			return fmt.Errorf(messages.TargetNotSiblingsFmt, dir, t.Home)
		}
	}
	if t.AppDir == t.EnvDir {
		return fmt.Errorf(messages.TargetSamePathFmt, t.AppDir)
	}
	return nil
}
