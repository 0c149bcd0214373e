// Package config defines the install profile and resolves the install target on disk.
package config

import "time"

// Config is the full install profile. Default returns the built-in profile;
// Load overlays an optional TOML file on top of it.
type Config struct {
	Layout   LayoutConfig   `toml:"layout"`
	Packages PackagesConfig `toml:"packages"`
	Python   PythonConfig   `toml:"python"`
	Source   SourceConfig   `toml:"source"`
	Patch    PatchConfig    `toml:"patch"`
	Assets   AssetsConfig   `toml:"assets"`
	Retry    RetryConfig    `toml:"retry"`
	Lock     LockConfig     `toml:"lock"`
	Probe    ProbeConfig    `toml:"probe"`
	Launch   LaunchConfig   `toml:"launch"`
}

// LayoutConfig names the files and directories created under the home directory.
type LayoutConfig struct {
	AppDir    string `toml:"app_dir"`
	EnvDir    string `toml:"env_dir"`
	Launcher  string `toml:"launcher"`
	Remover   string `toml:"remover"`
	LogPrefix string `toml:"log_prefix"`
}

// PackagesConfig lists the OS packages installed by the package stage.
type PackagesConfig struct {
	Install []string `toml:"install"`
}

// PythonConfig pins the runtime and the packages bootstrapped into the environment.
type PythonConfig struct {
	Version           string   `toml:"version"`
	PyenvInstallerURL string   `toml:"pyenv_installer_url"`
	TorchIndexURL     string   `toml:"torch_index_url"`
	TorchPackages     []string `toml:"torch_packages"`
}

// SourceConfig identifies the application repository.
type SourceConfig struct {
	RepoURL string `toml:"repo_url"`
}

// PatchConfig describes the retired upstream URL and its replacement.
type PatchConfig struct {
	LegacyURLs     []string `toml:"legacy_urls"`
	ReplacementURL string   `toml:"replacement_url"`
	VendoredDir    string   `toml:"vendored_dir"`
}

// AssetsConfig controls the optional model downloads.
type AssetsConfig struct {
	Download bool    `toml:"download"`
	Models   []Asset `toml:"models"`
}

// Asset is one downloadable file; Dest is relative to the application directory.
type Asset struct {
	URL  string `toml:"url"`
	Dest string `toml:"dest"`
}

// RetryConfig bounds retries of network-touching commands.
type RetryConfig struct {
	Attempts     int `toml:"attempts"`
	DelaySeconds int `toml:"delay_seconds"`
}

// LockConfig controls how long the installer waits for package-manager locks.
type LockConfig struct {
	Files           []string `toml:"files"`
	Polls           int      `toml:"polls"`
	IntervalSeconds int      `toml:"interval_seconds"`
}

// ProbeConfig configures the advisory connectivity check.
type ProbeConfig struct {
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// LaunchConfig is the entry point invoked by the generated launcher.
type LaunchConfig struct {
	Entry string   `toml:"entry"`
	Flags []string `toml:"flags"`
}

// Default returns the built-in install profile.
func Default() Config {
	return Config{
		Layout: LayoutConfig{
			AppDir:    "stable-diffusion-webui",
			EnvDir:    "sd-venv",
			Launcher:  "run_sd.sh",
			Remover:   "remove.sh",
			LogPrefix: "sd_install",
		},
		Packages: PackagesConfig{
			Install: []string{
				"build-essential", "git", "curl", "wget", "ca-certificates",
				"libssl-dev", "zlib1g-dev", "libbz2-dev", "libreadline-dev", "libsqlite3-dev",
				"libncursesw5-dev", "xz-utils", "tk-dev", "libxml2-dev", "libxmlsec1-dev",
				"libffi-dev", "liblzma-dev", "libgl1", "libglib2.0-0", "ffmpeg",
				"libgoogle-perftools-dev", "cargo", "rustc",
				"python3", "python3-pip", "python3-venv",
			},
		},
		Python: PythonConfig{
			Version:           "3.10.6",
			PyenvInstallerURL: "https://pyenv.run",
			TorchIndexURL:     "https://download.pytorch.org/whl/cpu",
			TorchPackages:     []string{"torch", "torchvision"},
		},
		Source: SourceConfig{
			RepoURL: "https://github.com/AUTOMATIC1111/stable-diffusion-webui.git",
		},
		Patch: PatchConfig{
			LegacyURLs: []string{
				"https://github.com/Stability-AI/stablediffusion.git",
				"https://github.com/Stability-AI/stablediffusion",
			},
			ReplacementURL: "https://github.com/w-e-w/stablediffusion.git",
			VendoredDir:    "repositories/stable-diffusion-stability-ai",
		},
		Assets: AssetsConfig{
			Download: false,
			Models: []Asset{
				{
					URL:  "https://huggingface.co/runwayml/stable-diffusion-v1-5/resolve/main/v1-5-pruned-emaonly.safetensors",
					Dest: "models/Stable-diffusion/v1-5-pruned-emaonly.safetensors",
				},
			},
		},
		Retry: RetryConfig{
			Attempts:     3,
			DelaySeconds: 5,
		},
		Lock: LockConfig{
			Files: []string{
				"/var/lib/dpkg/lock-frontend",
				"/var/lib/dpkg/lock",
				"/var/lib/apt/lists/lock",
				"/var/cache/apt/archives/lock",
			},
			Polls:           120,
			IntervalSeconds: 1,
		},
		Probe: ProbeConfig{
			URL:            "https://www.google.com",
			TimeoutSeconds: 8,
		},
		Launch: LaunchConfig{
			Entry: "launch.py",
			Flags: []string{
				"--skip-torch-cuda-test",
				"--use-cpu", "all",
				"--no-half",
				"--precision", "full",
				"--listen",
				"--port", "7860",
			},
		},
	}
}

// RetryDelay returns the configured delay between retry attempts.
func (c RetryConfig) RetryDelay() time.Duration {
	return time.Duration(c.DelaySeconds) * time.Second
}

// Interval returns the lock poll interval.
func (c LockConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// Timeout returns the probe timeout.
func (c ProbeConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
