// Package diffutil renders the unified, 200-change-record-truncated diff
// every diff-capable driver family produces (spec §4.A item 3), sharing
// one implementation instead of each driver rolling its own.
package diffutil

import (
	"strconv"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// MaxChangeRecords is the hard truncation point: a diff longer than this
// many change lines (lines beginning with '+' or '-', not counting the
// '+++'/'---' headers) is cut off with a marker line.
const MaxChangeRecords = 200

// Unified renders a line-oriented unified diff between pre and post,
// truncated to MaxChangeRecords change lines.
func Unified(pre, post string) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(pre),
		B:        difflib.SplitLines(post),
		FromFile: "before",
		ToFile:   "after",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", err
	}
	return truncate(text), nil
}

func truncate(text string) string {
	lines := strings.SplitAfter(text, "\n")
	var out strings.Builder
	changes := 0
	for _, line := range lines {
		trimmed := strings.TrimPrefix(strings.TrimPrefix(line, "+++"), "---")
		isChange := (strings.HasPrefix(line, "+") || strings.HasPrefix(line, "-")) && trimmed == line
		if isChange {
			changes++
			if changes > MaxChangeRecords {
				out.WriteString("... diff truncated after " + strconv.Itoa(MaxChangeRecords) + " change records ...\n")
				break
			}
		}
		out.WriteString(line)
	}
	return out.String()
}
