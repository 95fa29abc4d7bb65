package command

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lammesen/netrust/approvals"
	"github.com/lammesen/netrust/engine"
	"github.com/lammesen/netrust/internal/nconf"
	"github.com/lammesen/netrust/queue"
)

// WorkerCommand runs one Work Queue iteration, the CLI's equivalent of the
// source's worker entry point processing one batch of queued jobs.
type WorkerCommand struct {
	Meta
}

func (c *WorkerCommand) Help() string {
	return usage("Usage: nauto worker [options]",
		"-queue=<path>      queue file (default: $NAUTO_QUEUE)",
		"-limit=<n>         max entries to process this iteration (default: $NAUTO_WORKER_LIMIT)")
}

func (c *WorkerCommand) Synopsis() string {
	return "Process one batch of the work queue"
}

func (c *WorkerCommand) Run(args []string) int {
	fs := c.FlagSet("worker")
	queuePath := fs.String("queue", nconf.Str(nconf.EnvQueue, ""), "queue file path")
	limit := fs.Int("limit", nconf.WorkerLimit(), "max entries to process")
	if err := fs.Parse(args); err != nil {
		c.Ui.Error(fmt.Sprintf("Error parsing flags: %s", err))
		return 1
	}
	if *queuePath == "" {
		c.Ui.Error("-queue (or NAUTO_QUEUE) is required")
		return 1
	}

	approvalsPath := nconf.Str(nconf.EnvApprovalsPath, defaultUnderHome("approvals.json"))
	resultsDir := nconf.Str(nconf.EnvResultsDir, defaultUnderHome("results"))
	auditLog := nconf.Str(nconf.EnvWorkerAuditLog, defaultUnderHome("audit.log"))

	w := &queue.Worker{
		Engine:          engine.New(buildRegistry(c.logger()), nil, c.logger()),
		Approvals:       approvals.NewStore(approvalsPath),
		ResultsDir:      resultsDir,
		DefaultAuditLog: auditLog,
		Log:             c.logger(),
	}

	stats, err := w.RunIteration(context.Background(), *queuePath, *limit)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Error running worker iteration: %s", err))
		return 1
	}

	out, _ := json.MarshalIndent(stats, "", "  ")
	c.Ui.Output(string(out))
	return 0
}
