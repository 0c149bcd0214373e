package patch

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/conn-castle/webui-installer/internal/fsutil"
	"github.com/conn-castle/webui-installer/internal/messages"
)

// Outcome is the per-file result of Apply.
type Outcome struct {
	Path    string
	Backup  string
	Patched bool
}

// Apply performs edits under root. Each file is re-read first and skipped if it no
// longer contains any matched variant. A backup holding the pre-patch content is
// written before the file is atomically replaced.
func Apply(root string, edits []Edit, out io.Writer) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(edits))
	for _, edit := range edits {
		path := filepath.Join(root, filepath.FromSlash(edit.Path))
		current, err := os.ReadFile(path)
		if err != nil {
			return outcomes, fmt.Errorf(messages.PatchReadFailedFmt, path, err)
		}
		if !containsAny(current, edit.Variants) {
			printf(out, messages.PatchSkippedFmt, edit.Path)
			outcomes = append(outcomes, Outcome{Path: edit.Path})
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return outcomes, fmt.Errorf(messages.PatchStatFailedFmt, path, err)
		}
		updated := edit.Updated
		if !bytes.Equal(current, edit.Original) {
			// Changed since the scan; rebuild from what is on disk now.
			updated = []byte(newReplacer(edit.Variants, edit.Replacement).Replace(string(current)))
		}

		backup, err := writeBackup(filepath.Join(root, filepath.FromSlash(edit.Backup)), current, info.Mode().Perm())
		if err != nil {
			return outcomes, fmt.Errorf(messages.PatchBackupFailedFmt, path, err)
		}
		printf(out, messages.PatchBackupFmt, relTo(root, backup))
		if err := fsutil.WriteFileAtomic(path, updated, info.Mode().Perm()); err != nil {
			return outcomes, fmt.Errorf(messages.PatchWriteFailedFmt, path, err)
		}
		printf(out, messages.PatchPatchedFmt, edit.Path)
		outcomes = append(outcomes, Outcome{Path: edit.Path, Backup: relTo(root, backup), Patched: true})
	}
	return outcomes, nil
}

// writeBackup creates path exclusively, appending a counter if a backup with the
// same stamp already exists.
func writeBackup(path string, data []byte, perm os.FileMode) (string, error) {
	candidate := path
	for i := 1; ; i++ {
		file, err := os.OpenFile(candidate, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
		if errors.Is(err, os.ErrExist) {
			candidate = fmt.Sprintf("%s.%d", path, i)
			continue
		}
		if err != nil {
			return "", err
		}
		if _, err := file.Write(data); err != nil {
			_ = file.Close()
			return "", err
		}
		return candidate, file.Close()
	}
}

func containsAny(data []byte, variants []string) bool {
	for _, v := range variants {
		if bytes.Contains(data, []byte(v)) {
			return true
		}
	}
	return false
}

func relTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func printf(out io.Writer, format string, args ...any) {
	if out == nil {
		return
	}
	_, _ = fmt.Fprintf(out, format, args...)
}
