package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/conn-castle/webui-installer/internal/config"
	"github.com/conn-castle/webui-installer/internal/install"
	"github.com/conn-castle/webui-installer/internal/lockwait"
	"github.com/conn-castle/webui-installer/internal/messages"
)

var (
	lookPath          = exec.LookPath
	debianVersionPath = "/etc/debian_version"
)

// Checker performs a network reachability check.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckCommands reports each required command as found or missing.
func CheckCommands(required []string) []Result {
	results := make([]Result, 0, len(required))
	for _, name := range required {
		path, err := lookPath(name)
		if err != nil {
			results = append(results, Result{
				Status:         StatusFail,
				CheckName:      messages.DoctorCheckNameCommands,
				Message:        fmt.Sprintf(messages.DoctorCommandMissingFmt, name),
				Recommendation: fmt.Sprintf(messages.DoctorCommandMissingRecommend, name),
			})
			continue
		}
		results = append(results, Result{
			Status:    StatusOK,
			CheckName: messages.DoctorCheckNameCommands,
			Message:   fmt.Sprintf(messages.DoctorCommandFoundFmt, name, path),
		})
	}
	return results
}

// CheckPlatform warns when the host does not look like a Debian derivative.
func CheckPlatform() Result {
	if _, err := os.Stat(debianVersionPath); err != nil {
		return Result{
			Status:         StatusWarn,
			CheckName:      messages.DoctorCheckNamePlatform,
			Message:        messages.DoctorPlatformUnknown,
			Recommendation: messages.DoctorPlatformRecommend,
		}
	}
	return Result{Status: StatusOK, CheckName: messages.DoctorCheckNamePlatform, Message: messages.DoctorPlatformDebian}
}

// CheckNetwork reports reachability of url. An unreachable network is a warning
// because downloads are retried during install.
func CheckNetwork(ctx context.Context, checker Checker, url string) Result {
	if err := checker.Check(ctx); err != nil {
		return Result{
			Status:         StatusWarn,
			CheckName:      messages.DoctorCheckNameNetwork,
			Message:        fmt.Sprintf(messages.DoctorNetworkFailedFmt, url) + ": " + err.Error(),
			Recommendation: messages.DoctorNetworkRecommend,
		}
	}
	return Result{Status: StatusOK, CheckName: messages.DoctorCheckNameNetwork, Message: fmt.Sprintf(messages.DoctorNetworkOKFmt, url)}
}

// CheckLocks inspects each package manager lock once without waiting.
// holder nil uses lockwait.LockHolder.
func CheckLocks(ctx context.Context, files []string, holder lockwait.Holder) []Result {
	if holder == nil {
		holder = lockwait.LockHolder
	}
	results := make([]Result, 0, len(files))
	for _, path := range files {
		pid, err := holder(ctx, path)
		switch {
		case err != nil:
			results = append(results, Result{
				Status:    StatusWarn,
				CheckName: messages.DoctorCheckNameLocks,
				Message:   fmt.Sprintf(messages.DoctorLockUnknownFmt, path, err),
			})
		case pid != 0:
			results = append(results, Result{
				Status:         StatusWarn,
				CheckName:      messages.DoctorCheckNameLocks,
				Message:        fmt.Sprintf(messages.DoctorLockHeldFmt, path, pid),
				Recommendation: messages.DoctorLockHeldRecommend,
			})
		default:
			results = append(results, Result{
				Status:    StatusOK,
				CheckName: messages.DoctorCheckNameLocks,
				Message:   fmt.Sprintf(messages.DoctorLockFreeFmt, path),
			})
		}
	}
	return results
}

// DetectInstall reports the install state of target from the owned directories.
func DetectInstall(target config.Target) install.InstallState {
	app := dirExists(target.AppDir)
	env := dirExists(target.EnvDir)
	switch {
	case app && env:
		return install.Installed
	case app || env:
		return install.Installing
	default:
		return install.Absent
	}
}

// CheckInstall reports whether an install is present. A partial install is a
// warning since a new install recreates both directories anyway.
func CheckInstall(target config.Target) Result {
	switch DetectInstall(target) {
	case install.Installed:
		return Result{
			Status:    StatusOK,
			CheckName: messages.DoctorCheckNameInstall,
			Message:   fmt.Sprintf(messages.DoctorInstalledFmt, target.AppDir, target.EnvDir),
		}
	case install.Installing:
		present := target.AppDir
		if !dirExists(present) {
			present = target.EnvDir
		}
		return Result{
			Status:         StatusWarn,
			CheckName:      messages.DoctorCheckNameInstall,
			Message:        fmt.Sprintf(messages.DoctorPartialFmt, present),
			Recommendation: messages.DoctorPartialRecommend,
		}
	default:
		return Result{Status: StatusOK, CheckName: messages.DoctorCheckNameInstall, Message: messages.DoctorNotInstalled}
	}
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
