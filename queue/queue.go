// Package queue implements the Work Queue + Worker Loop (SPEC_FULL.md
// §4.G), grounded on original_source/apps/nauto_cli/src/worker.rs.
package queue

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lammesen/netrust/model"
)

// readLines reads a queue file into raw (possibly blank) lines, in file
// order. A missing file is an empty queue, not an error.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("queue: opening %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("queue: reading %s: %w", path, err)
	}
	return lines, nil
}

// writeLines rewrites path wholesale with lines, one per line.
func writeLines(path string, lines []string) error {
	tmp := path + ".tmp"
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(tmp, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("queue: writing %s: %w", path, err)
	}
	return os.Rename(tmp, path)
}

// appendLine appends a single line to path, creating it if needed.
func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("queue: opening %s: %w", path, err)
	}
	defer f.Close()
	_, err = fmt.Fprintln(f, line)
	return err
}

// parseEntry parses one non-blank queue line into a QueueEntry.
func parseEntry(line string) (model.QueueEntry, error) {
	var e model.QueueEntry
	if err := json.Unmarshal([]byte(line), &e); err != nil {
		return model.QueueEntry{}, err
	}
	return e, nil
}

func jsonMarshalIndent(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func writeFileCreatingDirs(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
