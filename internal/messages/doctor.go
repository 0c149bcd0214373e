package messages

// Doctor messages for the doctor command.
const (
	// DoctorUse is the doctor command name.
	DoctorUse   = "doctor"
	DoctorShort = "Run the install prechecks without changing anything"

	DoctorHealthCheckFmt = "Checking install prerequisites for %s...\n"

	DoctorCheckNameCommands = "Commands"
	DoctorCheckNamePlatform = "Platform"
	DoctorCheckNameNetwork  = "Network"
	DoctorCheckNameLocks    = "Locks"
	DoctorCheckNameInstall  = "Install"

	DoctorCommandFoundFmt         = "Found %s at %s"
	DoctorCommandMissingFmt       = "Missing required command: %s"
	DoctorCommandMissingRecommend = "Install it with your package manager (for example: sudo apt-get install -y %s)."

	DoctorPlatformDebian    = "Debian-based system detected"
	DoctorPlatformUnknown   = "Not a Debian-based system (no /etc/debian_version)"
	DoctorPlatformRecommend = "The package stage uses apt-get; other distributions are not supported."

	DoctorNetworkOKFmt     = "Reached %s"
	DoctorNetworkFailedFmt = "Could not reach %s"
	DoctorNetworkRecommend = "Downloads are retried during install, but check your connection or proxy settings."

	DoctorLockFreeFmt       = "Lock free: %s"
	DoctorLockHeldFmt       = "Lock %s held by pid %d"
	DoctorLockHeldRecommend = "Wait for the other package manager process to finish before installing."
	DoctorLockUnknownFmt    = "Cannot inspect lock %s: %v"

	DoctorInstalledFmt     = "Installed: %s and %s exist"
	DoctorNotInstalled     = "Not installed"
	DoctorPartialFmt       = "Partial install: only %s exists"
	DoctorPartialRecommend = "Re-run `wuinstall install` (it recreates both directories) or `wuinstall remove`."

	DoctorStatusOKLabel        = "[OK]  "
	DoctorStatusWarnLabel      = "[WARN]"
	DoctorStatusFailLabel      = "[FAIL]"
	DoctorResultLineFmt        = "%s %-9s %s\n"
	DoctorRecommendationPrefix = "       -> "
	DoctorRecommendationIndent = "          "

	DoctorSuccessSummary = "All prechecks passed."
	DoctorFailureSummary = "Some prechecks failed."
	DoctorFailureError   = "doctor found blocking problems"
)
