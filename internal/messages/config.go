package messages

// Config messages for configuration loading and validation.
const (
	// ConfigReadFailedFmt formats config read errors.
	ConfigReadFailedFmt     = "read config %s: %w"
	ConfigInvalidFmt        = "invalid config %s: %w"
	ConfigUnknownKeysFmt    = "config %s contains unrecognized keys: %w"
	ConfigValidationFmt     = "config %s: %w"
	ConfigFieldRequiredFmt  = "%s is required"
	ConfigFieldPositiveFmt  = "%s must be positive (got %d)"
	ConfigFieldNegativeFmt  = "%s must not be negative (got %d)"
	ConfigDirNameInvalidFmt = "%s %q must be a single path component"
	ConfigDirNamesEqual     = "layout.app_dir and layout.env_dir must differ"
	ConfigReplacementLoops  = "patch.replacement_url must not contain a legacy URL"
	ConfigAssetDestFmt      = "assets.models[%d].dest %q must be a relative path inside the application directory"
	ConfigAssetURLFmt       = "assets.models[%d].url is required"
	ConfigVendoredDirFmt    = "patch.vendored_dir %q must be a relative path inside the application directory"

	// TargetHomeRequired indicates the home directory could not be resolved.
	TargetHomeRequired   = "home directory is required"
	TargetHomeResolveFmt = "resolve home directory: %w"
	TargetNotSiblingsFmt = "%s must be a direct child of %s"
	TargetSamePathFmt    = "application and environment directories must differ (%s)"
)
