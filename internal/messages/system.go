package messages

// System messages for internal operations.
const (
	// RetryAttemptFailedFmt reports one failed attempt of a retried action.
	RetryAttemptFailedFmt = "warning: %s failed (attempt %d/%d): %v\n"
	RetryWaitingFmt       = "retrying %s in %s\n"
	RetryExhaustedFmt     = "%s failed after %d attempt(s): %v"
	RetryAttemptsInvalid  = "retry attempts must be at least 1 (got %d)"
	RetryDelayInvalid     = "retry delay must not be negative (got %s)"

	// LockWaitingFmt reports a package-manager lock held by another process.
	LockWaitingFmt       = "Waiting for package manager lock %s (held by pid %d)...\n"
	LockEscalatingFmt    = "Lock %s is not readable by this user; inspecting it with lslocks.\n"
	LockUnverifiableFmt  = "%w %s: %v"
	LockTimeoutFmt       = "%w after %d polls: %s"
	LockFree             = "Package manager locks are free."
	LockNoFiles          = "no lock files configured"

	// ProbeOKFmt reports successful connectivity.
	ProbeOKFmt      = "Network check passed (%s)\n"
	ProbeWarningFmt = "warning: network check against %s failed: %v; continuing, later downloads retry on their own\n"
	ProbeStatusFmt  = "unexpected status %s"

	// ShellCommandFailedFmt formats a failed external command.
	ShellCommandFailedFmt = "command `%s` exited with code %d: %v"
	ShellEmptyCommand     = "empty command"

	// RunlogOpenFmt formats log open errors.
	RunlogOpenFmt = "open log %s: %w"
	RunlogReadFmt = "read log %s: %w"

	// FsutilCreateTempFileFmt formats temp file creation errors.
	FsutilCreateTempFileFmt = "create temp file for %s: %w"
	FsutilSetPermissionsFmt = "set permissions for %s: %w"
	FsutilWriteTempFileFmt  = "write temp file for %s: %w"
	FsutilSyncTempFileFmt   = "sync temp file for %s: %w"
	FsutilCloseTempFileFmt  = "close temp file for %s: %w"
	FsutilRenameTempFileFmt = "rename temp file for %s: %w"
)
