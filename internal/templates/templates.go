// Package templates embeds the files generated by the installer.
package templates

import (
	"embed"
	"io/fs"
)

//go:embed launchers/*.tmpl
var content embed.FS

// Read returns the embedded template at path (slash-separated, relative to the template root).
func Read(path string) ([]byte, error) {
	return content.ReadFile(path)
}

// Walk visits every embedded template.
func Walk(fn fs.WalkDirFunc) error {
	return fs.WalkDir(content, ".", fn)
}
