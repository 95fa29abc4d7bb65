package command

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/colorstring"

	"github.com/lammesen/netrust/docs"
	"github.com/lammesen/netrust/drivers"
	"github.com/lammesen/netrust/drivers/mockdriver"
	"github.com/lammesen/netrust/drivers/netconf"
	"github.com/lammesen/netrust/drivers/rest"
	"github.com/lammesen/netrust/drivers/sshcli"
	"github.com/lammesen/netrust/engine"
	"github.com/lammesen/netrust/internal/nconf"
	"github.com/lammesen/netrust/model"
	"github.com/lammesen/netrust/plugins"
	"github.com/lammesen/netrust/security"
)

// RunCommand executes a single job document against an inventory document
// once, printing a one-line-per-device summary. It is the direct
// equivalent of the source's `nauto run` one-shot path.
type RunCommand struct {
	Meta
}

func (c *RunCommand) Help() string {
	return usage("Usage: nauto run -job=<path> -inventory=<path>",
		"-job=<path>        job document to execute (required)",
		"-inventory=<path>  inventory document to resolve targets against (required)",
		"-dry-run           force dry-run regardless of the job document")
}

func (c *RunCommand) Synopsis() string {
	return "Execute a job against an inventory"
}

func (c *RunCommand) Run(args []string) int {
	fs := c.FlagSet("run")
	jobPath := fs.String("job", "", "job document path")
	invPath := fs.String("inventory", "", "inventory document path")
	dryRun := fs.Bool("dry-run", false, "force dry-run")
	if err := fs.Parse(args); err != nil {
		c.Ui.Error(fmt.Sprintf("Error parsing flags: %s", err))
		return 1
	}
	if *jobPath == "" || *invPath == "" {
		c.Ui.Error("Both -job and -inventory are required")
		c.Ui.Error(c.Help())
		return 1
	}

	job, err := docs.LoadJob(*jobPath)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Error loading job: %s", err))
		return 1
	}
	if *dryRun {
		job.DryRun = true
	}

	devices, err := docs.LoadInventory(*invPath)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Error loading inventory: %s", err))
		return 1
	}

	eng := engine.New(buildRegistry(c.logger()), nil, c.logger())
	inv := engine.NewInventory(devices)

	result := eng.Execute(context.Background(), job, inv)

	for _, task := range result.DeviceResults {
		c.Ui.Output(colorstring.Color(fmt.Sprintf("[%s]%s: %s[reset]", statusColor(task.Status), task.DeviceID, task.Status)))
		for _, line := range task.Logs {
			c.Ui.Info("  " + line)
		}
	}
	c.Ui.Output(fmt.Sprintf("%d/%d devices succeeded, started %s", result.SuccessCount(), len(result.DeviceResults), humanize.Time(result.StartedAt)))

	// Per-device failures are reported in the output above, not the exit code.
	return 0
}

func statusColor(s model.TaskStatus) string {
	switch s {
	case model.TaskSuccess:
		return "green"
	case model.TaskSkipped:
		return "yellow"
	default:
		return "red"
	}
}

// buildRegistry assembles the built-in driver registry, followed by a
// placeholder for each verified plugin when NAUTO_ENABLE_PLUGIN_DRIVERS is
// set. NAUTO_USE_MOCK_DRIVERS substitutes a single synthetic driver, the way
// the source's test harness pins a fully synthetic fleet for CI.
func buildRegistry(log hclog.Logger) *drivers.Registry {
	if nconf.UseMockDrivers() {
		return drivers.NewRegistry(mockdriver.New())
	}

	resolver := security.NewResolverFromEnv(log)
	reg := drivers.NewRegistry(
		sshcli.NewGeneric(resolver),
		sshcli.NewCiscoIOS(resolver),
		sshcli.NewAristaEOS(resolver),
		netconf.New(resolver),
		rest.NewNXOS(resolver, log),
		rest.NewMeraki(resolver, log),
	)
	plugins.ExtendRegistry(reg, plugins.LoadInstalled(nconf.Str(nconf.EnvPluginDir, "plugins"), log))
	return reg
}
