package diffutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnifiedShowsChangedLine(t *testing.T) {
	pre := "a\nb\nc\n"
	post := "a\nB\nc\n"
	text, err := Unified(pre, post)
	require.NoError(t, err)
	require.Contains(t, text, "-b")
	require.Contains(t, text, "+B")
}

func TestUnifiedTruncatesLongDiffs(t *testing.T) {
	var preLines, postLines []string
	for i := 0; i < 400; i++ {
		preLines = append(preLines, "line")
		postLines = append(postLines, "LINE")
	}
	pre := strings.Join(preLines, "\n")
	post := strings.Join(postLines, "\n")

	text, err := Unified(pre, post)
	require.NoError(t, err)
	require.Contains(t, text, "truncated after 200 change records")
}
