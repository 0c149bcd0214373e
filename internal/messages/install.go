package messages

// Install orchestration messages.
const (
	// InstallSystemRequired indicates the orchestrator has no filesystem.
	InstallSystemRequired = "install system is required"
	InstallNoStagesFmt    = "install pipeline %q has no stages"

	InstallStartFmt        = "Installing into %s (run %s)\n"
	InstallLogPathFmt      = "Log file: %s\n"
	InstallStageStartFmt   = "==> [%d/%d] %s\n"
	InstallStageDoneFmt    = "    %s finished in %s\n"
	InstallStageSkippedFmt = "    %s skipped: %s\n"
	InstallAssetsDisabled  = "model downloads disabled"

	InstallStageFailedFmt   = "ERROR: stage %s failed with exit code %d\n"
	InstallFailedCommandFmt = "  command:  %s\n"
	InstallFailedAtFmt      = "  location: %s\n"
	InstallFailedCauseFmt   = "  cause:    %v\n"
	InstallLogTailHeaderFmt = "---- last %d lines of %s ----\n"
	InstallLogTailFooter    = "---- end of log ----"
	InstallLogTailFailedFmt = "warning: could not read log tail: %v\n"
	InstallFullLogFmt       = "Full log: %s\n"

	InstallRollbackStart      = "Rolling back partial install..."
	InstallRollbackRemovedFmt = "rollback: removed %s\n"
	InstallRollbackFailedFmt  = "rollback: could not remove %s: %v\n"
	InstallRollbackDone       = "Rollback complete; the machine is back to the pre-install state."
	InstallRollbackDisarmed   = "rollback disarmed"
	InstallInterruptedFmt     = "Interrupted; %s and %s are left as they were. Re-run the installer to recover.\n"

	InstallFinalizeFailedFmt = "warning: post-install step %s failed: %v (install is complete and was kept)\n"
	InstallDoneTitle         = "Stable Diffusion web UI installed"
	InstallDoneLaunchFmt     = "Start it with:  %s"
	InstallDoneRemoveFmt     = "Remove it with: %s"
	InstallDoneLogFmt        = "Install log:    %s"

	// PrecheckMissingCommandsFmt reports required commands that are not on PATH.
	PrecheckMissingCommandsFmt = "%w: %s"
	PrecheckMissingCommand     = "missing required command(s)"

	// StageFailedFmt wraps a stage error with its stage name.
	StageFailedFmt = "stage %s: %v"

	PackagesUpdatingIndex = "Synchronizing package index..."
	PackagesInstallingFmt = "Installing %d system packages...\n"

	EnvPyenvPresentFmt     = "pyenv already present at %s\n"
	EnvPyenvInstallingFmt  = "Installing pyenv from %s\n"
	EnvPythonInstallFmt    = "Ensuring Python %s via pyenv\n"
	EnvRecreateFmt         = "Recreating environment %s\n"
	EnvBootstrapPip        = "Upgrading pip, setuptools and wheel..."
	EnvInstallTorchFmt     = "Installing %s from %s\n"
	EnvPyenvFetchFailedFmt = "fetch pyenv installer: %w"

	SourceRecreateFmt     = "Cloning %s into %s\n"
	SourceRemoveFailedFmt = "remove %s: %w"

	PatchScanningFmt      = "Scanning %s for legacy URLs...\n"
	PatchNoMatch          = "No files reference a legacy URL; nothing to patch."
	PatchBackupFmt        = "  backup  %s\n"
	PatchPatchedFmt       = "  patched %s\n"
	PatchSkippedFmt       = "  skipped %s (no longer contains a legacy URL)\n"
	PatchSummaryFmt       = "Patched %d file(s).\n"
	PatchStaleRemovedFmt  = "Removed stale vendored directory %s\n"
	PatchStaleOutsideFmt  = "vendored directory %q resolves outside %s"
	PatchRootRequired     = "patch root is required"
	PatchVariantsRequired = "at least one legacy URL is required"
	PatchReadFailedFmt    = "read %s: %w"
	PatchStatFailedFmt    = "stat %s: %w"
	PatchBackupFailedFmt  = "back up %s: %w"
	PatchWriteFailedFmt   = "rewrite %s: %w"
	PatchWalkFailedFmt    = "scan %s: %w"
	PatchGlobInvalidFmt   = "invalid exclude pattern %q: %w"
	PatchRemoveStaleFmt   = "remove stale vendored directory %s: %w"

	HealRepairingFmt  = "Repairing stale remote in %s (%s -> %s)\n"
	HealReadRemoteFmt = "read origin remote of %s: %w"
	HealSetRemoteFmt  = "update origin remote of %s: %w"

	AssetsPresentFmt     = "Asset %s already present, skipping download\n"
	AssetsDownloadingFmt = "Downloading %s -> %s\n"
	AssetsDownloadedFmt  = "Downloaded %s (%d bytes)\n"
	AssetsCreateDirFmt   = "create directory for %s: %w"
	AssetsStatFmt        = "stat %s: %w"
	AssetsRequestFmt     = "build request for %s: %w"
	AssetsFetchFmt       = "download %s: %w"
	AssetsStatusFmt      = "download %s: unexpected status %s"
	AssetsCreateTempFmt  = "create temp file for %s: %w"
	AssetsWriteFmt       = "write %s: %w"
	AssetsCommitFmt      = "move %s into place: %w"

	LaunchersCreateDirFmt    = "create directory %s: %w"
	LaunchersReadTemplateFmt = "read template %s: %w"
	LaunchersRenderFmt       = "render template %s: %w"
	LaunchersWriteFmt        = "write %s: %w"

	ReceiptWriteFmt  = "write install receipt %s: %w"
	ReceiptReadFmt   = "read install receipt %s: %w"
	ReceiptDecodeFmt = "decode install receipt %s: %w"
	ReceiptEncodeFmt = "encode install receipt: %w"
	MetricsWriteFmt  = "write metrics textfile %s: %w"
)
