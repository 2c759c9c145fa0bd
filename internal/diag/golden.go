package diag

import (
	"sort"
	"strings"
)

// FormatShort renders diagnostics one per line in a stable order, suitable
// for golden comparisons and for the CLI's --quiet output.
func FormatShort(diags []Diagnostic) string {
	if len(diags) == 0 {
		return ""
	}
	lines := make([]string, 0, len(diags))
	for _, d := range diags {
		lines = append(lines, d.Short())
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
