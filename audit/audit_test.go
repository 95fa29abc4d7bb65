package audit_test

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/lammesen/netrust/audit"
	"github.com/lammesen/netrust/model"
)

func sampleResult() (model.Job, model.JobResult) {
	job := model.Job{ID: uuid.New(), Name: "show version", Kind: model.JobKind{Type: model.JobKindCommandBatch}}
	diff := "some diff"
	result := model.JobResult{
		JobID:      job.ID,
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
		DeviceResults: []model.TaskSummary{
			{DeviceID: "r1", Status: model.TaskSuccess, Logs: []string{"ok"}},
			{DeviceID: "r2", Status: model.TaskFailed, Logs: []string{"error: boom"}, Diff: &diff},
		},
	}
	return job, result
}

func TestRecordWritesSummaryAndDeviceLines(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "run.jsonl")

	job, result := sampleResult()
	require.NoError(t, audit.Record(base, job, result))

	summaryLines := readLines(t, base)
	require.Len(t, summaryLines, 1)
	var s audit.SummaryRecord
	require.NoError(t, json.Unmarshal([]byte(summaryLines[0]), &s))
	require.Equal(t, 1, s.SuccessCount)
	require.Equal(t, 1, s.FailureCount)
	require.Equal(t, []string{"r2"}, s.FailedDevices)

	deviceLines := readLines(t, audit.DevicesLogPath(base))
	require.Len(t, deviceLines, 2)
	var d1 audit.DeviceRecord
	require.NoError(t, json.Unmarshal([]byte(deviceLines[1]), &d1))
	require.Equal(t, "r2", d1.DeviceID)
	require.True(t, d1.HadDiff)
}

func TestRecordAppendsAcrossCalls(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "run.jsonl")

	job1, result1 := sampleResult()
	job2, result2 := sampleResult()
	require.NoError(t, audit.Record(base, job1, result1))
	require.NoError(t, audit.Record(base, job2, result2))

	require.Len(t, readLines(t, base), 2)
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	return lines
}
