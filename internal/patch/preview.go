package patch

import (
	"fmt"
	"strings"

	"github.com/aymanbagabas/go-udiff"
)

// DefaultPreviewLines caps each rendered diff.
const DefaultPreviewLines = 40

// Preview renders a unified diff per planned edit, truncated to maxLines lines each.
func Preview(edits []Edit, maxLines int) string {
	var b strings.Builder
	for _, edit := range edits {
		rendered, _ := renderTruncatedUnifiedDiff("a/"+edit.Path, "b/"+edit.Path, string(edit.Original), string(edit.Updated), maxLines)
		b.WriteString(rendered)
	}
	return b.String()
}

func renderTruncatedUnifiedDiff(fromName string, toName string, fromContent string, toContent string, maxLines int) (string, bool) {
	limit := maxLines
	if limit <= 0 {
		limit = DefaultPreviewLines
	}
	diff := udiff.Unified(fromName, toName, fromContent, toContent)
	lines := splitDiffLines(diff)
	if len(lines) <= limit {
		return ensureTrailingNewline(strings.Join(lines, "\n")), false
	}
	truncated := lines[:limit]
	truncated = append(truncated, fmt.Sprintf("... (truncated to %d lines; rerun with --diff-lines <n> to see more)", limit))
	return ensureTrailingNewline(strings.Join(truncated, "\n")), true
}

func splitDiffLines(content string) []string {
	trimmed := strings.TrimRight(content, "\n")
	if trimmed == "" {
		return []string{}
	}
	return strings.Split(trimmed, "\n")
}

func ensureTrailingNewline(content string) string {
	if content == "" || strings.HasSuffix(content, "\n") {
		return content
	}
	return content + "\n"
}
