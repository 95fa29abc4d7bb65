package command

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/cli"
	"github.com/stretchr/testify/require"
)

var _ cli.Command = (*WorkerCommand)(nil)

func TestWorkerCommand_AdvancesQueue(t *testing.T) {
	t.Setenv("NAUTO_USE_MOCK_DRIVERS", "true")

	dir := t.TempDir()
	jobPath := filepath.Join(dir, "job.yaml")
	require.NoError(t, os.WriteFile(jobPath, []byte(runJobYAML), 0o644))
	invPath := filepath.Join(dir, "inventory.yaml")
	require.NoError(t, os.WriteFile(invPath, []byte(runInventoryYAML), 0o644))

	queuePath := filepath.Join(dir, "queue.jsonl")
	entry := `{"job":"` + jobPath + `","inventory":"` + invPath + `","dry_run":false}`
	require.NoError(t, os.WriteFile(queuePath, []byte(entry+"\n"), 0o644))

	t.Setenv("NAUTO_RESULTS_DIR", filepath.Join(dir, "results"))
	t.Setenv("NAUTO_WORKER_AUDIT_LOG", filepath.Join(dir, "audit.log"))
	t.Setenv("NAUTO_APPROVALS_PATH", filepath.Join(dir, "approvals.json"))

	ui := cli.NewMockUi()
	cmd := &WorkerCommand{Meta: Meta{Ui: ui}}

	code := cmd.Run([]string{"-queue", queuePath, "-limit", "1"})
	require.Equal(t, 0, code, ui.ErrorWriter.String())
	require.Contains(t, ui.OutputWriter.String(), `"processed": 1`)

	remaining, err := os.ReadFile(queuePath)
	require.NoError(t, err)
	require.Equal(t, "", string(remaining))
}

func TestWorkerCommand_RequiresQueue(t *testing.T) {
	ui := cli.NewMockUi()
	cmd := &WorkerCommand{Meta: Meta{Ui: ui}}

	code := cmd.Run(nil)
	require.Equal(t, 1, code)
}
