package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/okarlsson/sledge/internal/service"
)

var serviceCmd = &cobra.Command{
	Use:   "service <install|start|stop|restart|reload|status> <name...>",
	Short: "Install or control services on the target host",
	Long: `Manage services through the daemon manager configured for the target
host (systemd, supervisor or upstart).

"install" takes local unit files, uploads them to the daemon manager's
directory and reloads its configuration. Every other action is applied
to each named service in turn; failures are reported but do not stop
the remaining services.

Examples:
  sledge service install deploy/web.service deploy/worker.service
  sledge service restart web worker
  sledge service status web`,
	Args:      cobra.MinimumNArgs(2),
	ValidArgs: []string{"install", "start", "stop", "restart", "reload", "status"},
	Run:       runService,
}

func runService(cmd *cobra.Command, args []string) {
	bgCtx := context.Background()
	c := initContext()
	defer c.Close()

	mgr := serviceManager(c)
	action, names := args[0], args[1:]

	switch action {
	case "install", "start", "stop", "restart", "reload", "status":
	default:
		exitError("unknown action %q (supported: install, start, stop, restart, reload, status)", action)
	}

	if action != "install" {
		mgr.Control(bgCtx, names, action)
		return
	}

	units := make([]service.Unit, 0, len(names))
	for _, file := range names {
		data, err := os.ReadFile(file)
		if err != nil {
			exitError("failed to read unit file: %v", err)
		}
		base := filepath.Base(file)
		name := strings.TrimSuffix(base, filepath.Ext(base))
		units = append(units, service.Unit{Name: name, Data: data})
	}

	if err := mgr.Install(bgCtx, units); err != nil {
		exitError("%v", err)
	}
	for _, unit := range units {
		color.Green("Installed %s", mgr.UnitPath(unit.Name))
	}
}

// serviceManager builds the daemon-manager helper from the loaded config.
func serviceManager(c *cmdContext) *service.Manager {
	if c.Config.Service.Daemon == "" {
		exitError("no service daemon configured (set service.daemon in %s)", c.Config.Path())
	}
	mgr, err := service.NewManager(c.Runner, c.Transfer, c.Config.Service.Daemon, c.Config.Service.TargetDir)
	if err != nil {
		exitError("%v", err)
	}
	return mgr
}
