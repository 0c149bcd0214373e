package patch

import (
	"cmp"
	"slices"
	"strings"
)

// backupInfix separates the original file name from the backup timestamp.
const backupInfix = ".bak."

// StampLayout formats the timestamp embedded in backup names.
const StampLayout = "20060102_150405"

// Edit is one planned file rewrite.
type Edit struct {
	// Path is relative to the scan root, slash-separated.
	Path string
	// Backup is the planned backup path, relative to the scan root.
	Backup   string
	Original []byte
	Updated  []byte
	// Matched lists the variants present in Original.
	Matched     []string
	Variants    []string
	Replacement string
}

// Plan computes the rewrite of every file in snap. It is pure: nothing is read or written.
// All occurrences of every variant are replaced in a single pass, longest variant
// first, so a variant that is a prefix of another never leaves a fragment behind.
func Plan(snap Snapshot, variants []string, replacement string, stamp string) []Edit {
	replacer := newReplacer(variants, replacement)
	edits := make([]Edit, 0, len(snap))
	for _, rel := range snap.Paths() {
		original := snap[rel]
		text := string(original)
		var matched []string
		for _, v := range variants {
			if strings.Contains(text, v) {
				matched = append(matched, v)
			}
		}
		if len(matched) == 0 {
			continue
		}
		edits = append(edits, Edit{
			Path:     rel,
			Backup:   BackupName(rel, stamp),
			Original: original,
			Updated:  []byte(replacer.Replace(text)),
			Matched:  matched,

			Variants:    variants,
			Replacement: replacement,
		})
	}
	return edits
}

// BackupName returns the backup path for rel at stamp.
func BackupName(rel string, stamp string) string {
	return rel + backupInfix + stamp
}

func newReplacer(variants []string, replacement string) *strings.Replacer {
	ordered := slices.Clone(variants)
	slices.SortStableFunc(ordered, func(a, b string) int {
		return cmp.Compare(len(b), len(a))
	})
	pairs := make([]string, 0, len(ordered)*2)
	for _, v := range ordered {
		if v == "" {
			continue
		}
		pairs = append(pairs, v, replacement)
	}
	return strings.NewReplacer(pairs...)
}
