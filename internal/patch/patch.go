package patch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/conn-castle/webui-installer/internal/messages"
)

// Options configures one patch run.
type Options struct {
	Root        string
	Variants    []string
	Replacement string
	// VendoredDir, relative to Root, is removed after patching so the application
	// re-fetches it from the corrected remote. Empty skips removal.
	VendoredDir string
	Scan        ScanOptions
	// DryRun plans edits without touching the tree.
	DryRun bool
	Now    func() time.Time
	Out    io.Writer
}

// Report summarizes a patch run.
type Report struct {
	Edits          []Edit
	Outcomes       []Outcome
	StaleRemoved   bool
	VendoredDirAbs string
}

// Patched returns the number of files rewritten.
func (r Report) Patched() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Patched {
			n++
		}
	}
	return n
}

// Run scans, plans and applies the URL rewrite, then removes the stale vendored
// directory. Finding nothing to patch is not an error.
func Run(opts Options) (Report, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	printf(opts.Out, messages.PatchScanningFmt, opts.Root)
	snap, err := Scan(opts.Root, opts.Variants, opts.Scan)
	if err != nil {
		return Report{}, err
	}
	report := Report{Edits: Plan(snap, opts.Variants, opts.Replacement, now().Format(StampLayout))}
	if opts.DryRun {
		return report, nil
	}

	if len(report.Edits) == 0 {
		printf(opts.Out, "%s\n", messages.PatchNoMatch)
	} else {
		report.Outcomes, err = Apply(opts.Root, report.Edits, opts.Out)
		if err != nil {
			return report, err
		}
		printf(opts.Out, messages.PatchSummaryFmt, report.Patched())
	}

	if opts.VendoredDir != "" {
		abs, err := vendoredPath(opts.Root, opts.VendoredDir)
		if err != nil {
			return report, err
		}
		report.VendoredDirAbs = abs
		if _, statErr := os.Lstat(abs); statErr == nil {
			if err := os.RemoveAll(abs); err != nil {
				return report, fmt.Errorf(messages.PatchRemoveStaleFmt, abs, err)
			}
			report.StaleRemoved = true
			printf(opts.Out, messages.PatchStaleRemovedFmt, abs)
		}
	}
	return report, nil
}

// vendoredPath resolves rel under root and refuses anything that escapes it.
func vendoredPath(root, rel string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	abs := filepath.Join(absRoot, filepath.FromSlash(rel))
	inside, err := filepath.Rel(absRoot, abs)
	if err != nil || inside == "." || inside == ".." || strings.HasPrefix(inside, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", fmt.Errorf(messages.PatchStaleOutsideFmt, rel, root)
	}
	return abs, nil
}
