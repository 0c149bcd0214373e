package messages

// CLI messages for user-facing commands and prompts.
const (
	// RootUse is the CLI command name.
	RootUse = "wuinstall"
	// RootShort is the short description for the root command.
	RootShort       = "Unattended installer for a CPU-only Stable Diffusion web UI"
	RootVersionFlag = "Print version and exit"
	RootFlagConfig  = "Path to a TOML config file overriding the built-in install profile"

	// VersionCommitFmt formats the commit hash for version display.
	VersionCommitFmt = "commit %s"
	VersionBuildFmt  = "built %s"
	VersionFullFmt   = "%s (%s)"
	VersionTemplate  = "{{.Version}}\n"

	// InstallUse is the install command name.
	InstallUse                 = "install"
	InstallShort               = "Install packages, runtime, environment, sources and launch scripts"
	InstallFlagDownloadModels  = "Download the model checkpoints listed in the install profile"
	InstallFlagMetricsTextfile = "Write Prometheus textfile metrics for this run to the given path"

	// RemoveUse is the remove command name.
	RemoveUse          = "remove"
	RemoveShort        = "Remove the launcher, application directory and environment directory"
	RemoveFlagYes      = "Remove without asking for confirmation"
	RemoveConfirmFmt   = "Remove %s, %s and the generated scripts?"
	RemoveAbortedLine  = "Removal cancelled."
	RemoveCompleteLine = "Removal complete."
	RemoveRemovedFmt   = "Removed %s\n"
	RemoveAbsentFmt    = "Not present: %s\n"
	RemoveWarnFmt      = "warning: could not remove %s: %v\n"

	// PatchUse is the patch command usage.
	PatchUse        = "patch [dir]"
	PatchShort      = "Rewrite the retired upstream URL across a cloned tree"
	PatchFlagDryRun = "Print the planned edits as unified diffs without writing files"
	PatchFlagLines  = "Maximum diff lines shown per file"
	PatchNoEditsDry = "Dry run: no files reference a legacy URL."
	PatchDryRunFmt  = "Dry run: %d file(s) would be rewritten.\n"

	// HealUse is the heal command name.
	HealUse           = "heal"
	HealShort         = "Repair the vendored repository remote if it still points at a legacy URL"
	HealNothingToDo   = "Vendored repository remote is current."
	HealNotPresentFmt = "Vendored repository %s is not present; nothing to repair.\n"

	// StatusUse is the status command name.
	StatusUse          = "status"
	StatusShort        = "Show the receipt of the last successful install"
	StatusNotInstalled = "No install receipt found; the web UI is not installed."
	StatusRunIDFmt     = "Run:          %s\n"
	StatusFinishedFmt  = "Finished:     %s\n"
	StatusPythonFmt    = "Python:       %s\n"
	StatusRepoFmt      = "Repository:   %s @ %s\n"
	StatusPatchedFmt   = "Patched:      %d file(s)\n"
	StatusAssetsFmt    = "Assets:       %d file(s)\n"
	StatusLauncherFmt  = "Launcher:     %s\n"

	// PromptRequiresTerminal indicates a prompt needs an interactive terminal.
	PromptRequiresTerminal = "confirmation requires an interactive terminal; re-run with --yes"
)
