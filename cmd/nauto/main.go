// Command nauto is the control-plane CLI: run a job once, advance the
// work queue, and manage the approval ledger, grounded on the
// cli.CLI{Commands: map[string]cli.CommandFactory{...}} entry-point shape
// used throughout _examples/hashicorp-nomad.
package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/cli"
	"github.com/hashicorp/go-hclog"

	"github.com/lammesen/netrust/command"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ui := &cli.BasicUi{
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
		Reader:      os.Stdin,
	}
	level := hclog.Info
	if s := os.Getenv("NAUTO_LOG_LEVEL"); s != "" {
		level = hclog.LevelFromString(s)
	}
	log := hclog.New(&hclog.LoggerOptions{
		Name:  "nauto",
		Level: level,
	})
	meta := command.Meta{Ui: ui, Log: log}

	c := cli.NewCLI("nauto", "0.1.0")
	c.Args = args
	c.Commands = map[string]cli.CommandFactory{
		"run": func() (cli.Command, error) {
			return &command.RunCommand{Meta: meta}, nil
		},
		"worker": func() (cli.Command, error) {
			return &command.WorkerCommand{Meta: meta}, nil
		},
		"approvals request": func() (cli.Command, error) {
			return &command.ApprovalsRequestCommand{Meta: meta}, nil
		},
		"approvals approve": func() (cli.Command, error) {
			return &command.ApprovalsApproveCommand{Meta: meta}, nil
		},
		"approvals list": func() (cli.Command, error) {
			return &command.ApprovalsListCommand{Meta: meta}, nil
		},
		"plugins list": func() (cli.Command, error) {
			return &command.PluginsListCommand{Meta: meta}, nil
		},
	}

	exitCode, err := c.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error executing CLI: %s\n", err)
		return 1
	}
	return exitCode
}
