// Package patch rewrites a retired upstream URL to its replacement across a source tree.
package patch

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/conn-castle/webui-installer/internal/messages"
)

// sniffLen is how much of a file is inspected for NUL bytes before it is treated as binary.
const sniffLen = 8000

// DefaultSkipDirs are directory names never descended into.
var DefaultSkipDirs = []string{".git", "venv", ".venv", "__pycache__", "node_modules"}

// DefaultExcludeGlobs match compiled artifacts, model weights and prior backups.
var DefaultExcludeGlobs = []string{
	"**/*.{pyc,pyo,so,o,a,dylib,dll,exe,bin}",
	"**/*.{safetensors,ckpt,pt,pth,onnx}",
	"**/*.{png,jpg,jpeg,gif,webp,ico,woff,woff2,ttf,zip,gz,tar,whl}",
	"**/*" + backupInfix + "*",
}

// ScanOptions narrows which files are searched.
type ScanOptions struct {
	SkipDirs     []string
	ExcludeGlobs []string
}

// DefaultScanOptions returns the directory and glob exclusions used by Run.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		SkipDirs:     slices.Clone(DefaultSkipDirs),
		ExcludeGlobs: slices.Clone(DefaultExcludeGlobs),
	}
}

// Snapshot maps the slash-separated path of each matching file, relative to the scan
// root, to its content at scan time.
type Snapshot map[string][]byte

// Paths returns the snapshot's paths in sorted order.
func (s Snapshot) Paths() []string {
	paths := make([]string, 0, len(s))
	for p := range s {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// Scan walks root and returns every regular text file containing at least one variant.
// Each variant is searched separately and the per-variant results are merged, so a
// file containing several variants appears once.
func Scan(root string, variants []string, opts ScanOptions) (Snapshot, error) {
	if root == "" {
		return nil, errors.New(messages.PatchRootRequired)
	}
	if len(variants) == 0 {
		return nil, errors.New(messages.PatchVariantsRequired)
	}
	for _, pattern := range opts.ExcludeGlobs {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf(messages.PatchGlobInvalidFmt, pattern, doublestar.ErrBadPattern)
		}
	}

	perVariant := make([][]string, len(variants))
	contents := make(map[string][]byte)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != root && slices.Contains(opts.SkipDirs, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if excluded(rel, opts.ExcludeGlobs) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf(messages.PatchReadFailedFmt, path, err)
		}
		if isBinary(data) {
			return nil
		}
		for i, variant := range variants {
			if bytes.Contains(data, []byte(variant)) {
				perVariant[i] = append(perVariant[i], rel)
				contents[rel] = data
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf(messages.PatchWalkFailedFmt, root, err)
	}

	snap := make(Snapshot)
	for _, list := range perVariant {
		for _, rel := range list {
			snap[rel] = contents[rel]
		}
	}
	return snap, nil
}

func excluded(rel string, globs []string) bool {
	for _, pattern := range globs {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func isBinary(data []byte) bool {
	n := len(data)
	if n > sniffLen {
		n = sniffLen
	}
	return bytes.IndexByte(data[:n], 0) >= 0
}
