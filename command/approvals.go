package command

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/lammesen/netrust/approvals"
	"github.com/lammesen/netrust/internal/nconf"
)

func approvalsStore() *approvals.Store {
	return approvals.NewStore(nconf.Str(nconf.EnvApprovalsPath, defaultUnderHome("approvals.json")))
}

// ApprovalsRequestCommand records a pending approval request, mirroring
// `nauto approvals request`.
type ApprovalsRequestCommand struct {
	Meta
}

func (c *ApprovalsRequestCommand) Help() string {
	return usage("Usage: nauto approvals request -job=<path> -requester=<name> [-note=<text>]",
		"-job=<path>        job document path the request gates",
		"-requester=<name>  who is requesting the change",
		"-note=<text>       optional free-text justification")
}

func (c *ApprovalsRequestCommand) Synopsis() string { return "Request approval for a job" }

func (c *ApprovalsRequestCommand) Run(args []string) int {
	fs := c.FlagSet("approvals request")
	jobPath := fs.String("job", "", "job document path")
	requester := fs.String("requester", "", "requester name")
	note := fs.String("note", "", "optional note")
	if err := fs.Parse(args); err != nil {
		c.Ui.Error(fmt.Sprintf("Error parsing flags: %s", err))
		return 1
	}
	if *jobPath == "" || *requester == "" {
		c.Ui.Error("Both -job and -requester are required")
		return 1
	}

	rec, err := approvalsStore().Request(*jobPath, *requester, *note)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Error requesting approval: %s", err))
		return 1
	}
	c.Ui.Output(fmt.Sprintf("Requested approval %s for %s", rec.ID, rec.JobPath))
	return 0
}

// ApprovalsApproveCommand marks a pending approval approved, mirroring
// `nauto approvals approve`.
type ApprovalsApproveCommand struct {
	Meta
}

func (c *ApprovalsApproveCommand) Help() string {
	return usage("Usage: nauto approvals approve -id=<uuid> -approver=<name>",
		"-id=<uuid>        approval record id",
		"-approver=<name>  who is approving the change")
}

func (c *ApprovalsApproveCommand) Synopsis() string { return "Approve a pending approval request" }

func (c *ApprovalsApproveCommand) Run(args []string) int {
	fs := c.FlagSet("approvals approve")
	id := fs.String("id", "", "approval record id")
	approver := fs.String("approver", "", "approver name")
	if err := fs.Parse(args); err != nil {
		c.Ui.Error(fmt.Sprintf("Error parsing flags: %s", err))
		return 1
	}
	if *id == "" || *approver == "" {
		c.Ui.Error("Both -id and -approver are required")
		return 1
	}

	parsed, err := uuid.Parse(*id)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Error parsing -id: %s", err))
		return 1
	}

	rec, err := approvalsStore().Approve(parsed, *approver)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Error approving %s: %s", *id, err))
		return 1
	}
	c.Ui.Output(fmt.Sprintf("Approved %s (%s)", rec.ID, rec.Note))
	return 0
}

// ApprovalsListCommand lists every record in the ledger, mirroring
// `nauto approvals list`.
type ApprovalsListCommand struct {
	Meta
}

func (c *ApprovalsListCommand) Help() string {
	return usage("Usage: nauto approvals list")
}

func (c *ApprovalsListCommand) Synopsis() string { return "List approval records" }

func (c *ApprovalsListCommand) Run(args []string) int {
	records, err := approvalsStore().List()
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Error listing approvals: %s", err))
		return 1
	}
	if len(records) == 0 {
		c.Ui.Output("No approval records")
		return 0
	}
	for _, r := range records {
		c.Ui.Output(fmt.Sprintf("%s  %-9s  %-30s  requested_by=%s", r.ID, r.Status, r.JobPath, r.Requester))
	}
	return 0
}
