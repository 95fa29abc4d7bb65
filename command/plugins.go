package command

import (
	"fmt"

	"github.com/lammesen/netrust/internal/nconf"
	"github.com/lammesen/netrust/plugins"
)

// PluginsListCommand lists every verified plugin descriptor found in the
// configured plugin directory, mirroring `nauto plugins list`.
type PluginsListCommand struct {
	Meta
}

func (c *PluginsListCommand) Help() string {
	return usage("Usage: nauto plugins list")
}

func (c *PluginsListCommand) Synopsis() string { return "List verified plugin drivers" }

func (c *PluginsListCommand) Run(args []string) int {
	dir := nconf.Str(nconf.EnvPluginDir, "plugins")
	host := plugins.LoadInstalled(dir, c.logger())

	if len(host.Drivers) == 0 {
		c.Ui.Output("No plugin drivers registered")
		return 0
	}
	for _, d := range host.Drivers {
		c.Ui.Output(fmt.Sprintf("%-20s  device_type=%-20s  capabilities=%+v", d.Vendor, d.DeviceType, d.Capabilities))
	}
	return 0
}
