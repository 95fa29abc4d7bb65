// Package command implements the CLI surface (SPEC_FULL.md §4.K), wired
// as thin scaffolding over engine, queue, and approvals. Grounded on the
// Meta/Command split and cli.NewMockUi test idiom visible in
// _examples/hashicorp-nomad/command/job_run_test.go; the teacher's own
// non-test command sources were not present in the retrieval pack, so the
// flag-handling helpers below are the standard hashicorp/cli shape rather
// than copied from a teacher file.
package command

import (
	"flag"
	"path/filepath"
	"strings"

	"github.com/hashicorp/cli"
	"github.com/hashicorp/go-hclog"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/mitchellh/go-wordwrap"
)

// Meta holds the state every subcommand needs: the UI to print through
// and a logger wired from the process environment.
type Meta struct {
	Ui  cli.Ui
	Log hclog.Logger
}

func (m *Meta) logger() hclog.Logger {
	if m.Log != nil {
		return m.Log
	}
	return hclog.NewNullLogger()
}

// FlagSet returns a flag.FlagSet whose usage output is suppressed; each
// command prints its own Help() text on error instead.
func (m *Meta) FlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {}
	fs.SetOutput(discardWriter{})
	return fs
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func usage(synopsis string, flags ...string) string {
	var b strings.Builder
	b.WriteString(wordwrap.WrapString(synopsis, 78))
	b.WriteString("\n\nOptions:\n\n")
	for _, f := range flags {
		b.WriteString("  ")
		b.WriteString(wordwrap.WrapString(f, 78))
		b.WriteString("\n")
	}
	return b.String()
}

// defaultUnderHome resolves name against $HOME when no explicit path is
// configured, so a bare `nauto worker` run without NAUTO_APPROVALS_PATH /
// NAUTO_RESULTS_DIR set doesn't litter the current working directory.
func defaultUnderHome(name string) string {
	home, err := homedir.Dir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".nauto", name)
}
