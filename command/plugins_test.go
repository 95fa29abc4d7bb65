package command

import (
	"path/filepath"
	"testing"

	"github.com/hashicorp/cli"
	"github.com/stretchr/testify/require"
)

var _ cli.Command = (*PluginsListCommand)(nil)

func TestPluginsListEmptyDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NAUTO_PLUGIN_DIR", filepath.Join(dir, "does-not-exist"))

	ui := cli.NewMockUi()
	cmd := &PluginsListCommand{Meta: Meta{Ui: ui}}
	code := cmd.Run(nil)
	require.Equal(t, 0, code)
	require.Contains(t, ui.OutputWriter.String(), "No plugin drivers registered")
}
