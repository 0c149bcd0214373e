package install

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"

	"github.com/conn-castle/webui-installer/internal/messages"
)

// ReceiptFileName is the receipt's name inside the environment directory. Living
// there means rollback and removal delete it along with the install.
const ReceiptFileName = "install-receipt.yaml"

// Receipt records what an install run produced. Digests are informational only.
type Receipt struct {
	RunID         string        `yaml:"run_id"`
	StartedAt     time.Time     `yaml:"started_at"`
	FinishedAt    time.Time     `yaml:"finished_at"`
	Home          string        `yaml:"home"`
	AppDir        string        `yaml:"app_dir"`
	EnvDir        string        `yaml:"env_dir"`
	Launcher      string        `yaml:"launcher"`
	Remover       string        `yaml:"remover"`
	Log           string        `yaml:"log"`
	PythonVersion string        `yaml:"python_version"`
	RepoURL       string        `yaml:"repo_url"`
	RepoHead      string        `yaml:"repo_head,omitempty"`
	Patched       []PatchedFile `yaml:"patched,omitempty"`
	StaleRemoved  bool          `yaml:"stale_vendored_removed"`
	Assets        []AssetRecord `yaml:"assets,omitempty"`
}

// PatchedFile is one rewritten file.
type PatchedFile struct {
	Path   string `yaml:"path"`
	Backup string `yaml:"backup"`
	Before string `yaml:"blake3_before"`
	After  string `yaml:"blake3_after"`
}

// AssetRecord is one model asset.
type AssetRecord struct {
	Path    string `yaml:"path"`
	URL     string `yaml:"url"`
	Skipped bool   `yaml:"skipped"`
	Bytes   int64  `yaml:"bytes,omitempty"`
	Digest  string `yaml:"blake3,omitempty"`
}

// NewRunID returns a new sortable run identifier.
func NewRunID() string {
	return ulid.Make().String()
}

// ReceiptPath returns the receipt location for envDir.
func ReceiptPath(envDir string) string {
	return filepath.Join(envDir, ReceiptFileName)
}

// WriteReceipt encodes r as YAML and writes it atomically to path.
func WriteReceipt(sys System, path string, r Receipt) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf(messages.ReceiptEncodeFmt, err)
	}
	if err := sys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf(messages.ReceiptWriteFmt, path, err)
	}
	if err := sys.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf(messages.ReceiptWriteFmt, path, err)
	}
	return nil
}

// ReadReceipt loads the receipt at path.
func ReadReceipt(sys System, path string) (Receipt, error) {
	data, err := sys.ReadFile(path)
	if err != nil {
		return Receipt{}, fmt.Errorf(messages.ReceiptReadFmt, path, err)
	}
	var r Receipt
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Receipt{}, fmt.Errorf(messages.ReceiptDecodeFmt, path, err)
	}
	return r, nil
}
