// Package launchers generates the standalone run and remove scripts.
package launchers

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/conn-castle/webui-installer/internal/fsutil"
	"github.com/conn-castle/webui-installer/internal/messages"
	"github.com/conn-castle/webui-installer/internal/templates"
)

// System is the minimal interface needed for launcher operations.
type System interface {
	MkdirAll(path string, perm os.FileMode) error
	WriteFileAtomic(filename string, data []byte, perm os.FileMode) error
}

// RealSystem implements System using actual system calls.
type RealSystem struct{}

const (
	runTemplatePath    = "launchers/run.sh.tmpl"
	removeTemplatePath = "launchers/remove.sh.tmpl"
)

// MkdirAll creates a directory and all parent directories.
func (RealSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// WriteFileAtomic writes data to path atomically.
func (RealSystem) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	return fsutil.WriteFileAtomic(path, data, perm)
}

// Params carries everything the generated scripts embed. The scripts never
// consult the installer again, so all paths must be absolute.
type Params struct {
	AppDir         string
	EnvDir         string
	LauncherPath   string
	RemoverPath    string
	VendoredDir    string
	LegacyURLs     []string
	ReplacementURL string
	Entry          string
	Flags          []string
}

// Write generates the launcher and remover scripts, both executable.
func Write(sys System, p Params) error {
	for _, path := range []string{p.LauncherPath, p.RemoverPath} {
		dir := filepath.Dir(path)
		if err := sys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf(messages.LaunchersCreateDirFmt, dir, err)
		}
	}
	if err := writeTemplateFile(sys, p.LauncherPath, runTemplatePath, p); err != nil {
		return err
	}
	return writeTemplateFile(sys, p.RemoverPath, removeTemplatePath, p)
}

// Render returns the script produced by the template at templatePath.
func Render(templatePath string, p Params) ([]byte, error) {
	data, err := templates.Read(templatePath)
	if err != nil {
		return nil, fmt.Errorf(messages.LaunchersReadTemplateFmt, templatePath, err)
	}
	tmpl, err := template.New(templatePath).Funcs(template.FuncMap{"quote": ShellQuote}).Option("missingkey=error").Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf(messages.LaunchersRenderFmt, templatePath, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, p); err != nil {
		return nil, fmt.Errorf(messages.LaunchersRenderFmt, templatePath, err)
	}
	return buf.Bytes(), nil
}

func writeTemplateFile(sys System, destinationPath string, templatePath string, p Params) error {
	data, err := Render(templatePath, p)
	if err != nil {
		return err
	}
	if err := sys.WriteFileAtomic(destinationPath, data, 0o755); err != nil {
		return fmt.Errorf(messages.LaunchersWriteFmt, destinationPath, err)
	}
	return nil
}

// ShellQuote single-quotes s for POSIX shells.
func ShellQuote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("@%+=:,./_-", r)) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
