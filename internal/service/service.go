// Package service installs and controls daemon-managed services on the
// deployment target. The daemon managers differ only in a control-command
// template, an install directory and a unit file extension; everything here
// is driven off that static table.
package service

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/fatih/color"

	"github.com/okarlsson/sledge/internal/runner"
)

// daemonConfig describes one daemon manager. The control command is a
// "<tool> <action> <name>" template with {action} and {name} placeholders.
type daemonConfig struct {
	controlCmd    string
	targetDir     string
	fileExtension string
}

var daemonTypes = map[string]daemonConfig{
	"systemd": {
		controlCmd:    "systemctl {action} {name}",
		targetDir:     "/etc/systemd/system",
		fileExtension: "service",
	},
	"supervisor": {
		controlCmd:    "supervisorctl {action} {name}",
		targetDir:     "/etc/supervisord/conf.d",
		fileExtension: "conf",
	},
	"upstart": {
		controlCmd:    "service {name} {action}",
		targetDir:     "/etc/init",
		fileExtension: "conf",
	},
}

// Unit is one service to install: a target name and the rendered unit file.
type Unit struct {
	Name string
	Data []byte
}

// Manager installs and controls services for one daemon manager on one host.
type Manager struct {
	runner   runner.Runner
	transfer runner.FileTransfer
	daemon   string
	conf     daemonConfig
}

// NewManager creates a Manager for the given daemon type. targetDir
// overrides the manager's default unit directory when non-empty.
func NewManager(r runner.Runner, t runner.FileTransfer, daemon, targetDir string) (*Manager, error) {
	conf, ok := daemonTypes[daemon]
	if !ok {
		supported := make([]string, 0, len(daemonTypes))
		for name := range daemonTypes {
			supported = append(supported, name)
		}
		return nil, fmt.Errorf("unsupported daemon type %q (supported: %s)", daemon, strings.Join(supported, ", "))
	}
	if targetDir != "" {
		conf.targetDir = targetDir
	}
	return &Manager{runner: r, transfer: t, daemon: daemon, conf: conf}, nil
}

// UnitPath returns the install path for a unit name.
func (m *Manager) UnitPath(name string) string {
	return path.Join(m.conf.targetDir, name+"."+m.conf.fileExtension)
}

// Install uploads the unit files and pokes the daemon manager to pick them
// up. The reload commands are best-effort: a failure is reported but does
// not abort the install.
func (m *Manager) Install(ctx context.Context, units []Unit) error {
	for _, unit := range units {
		if err := m.transfer.Upload(ctx, unit.Data, m.UnitPath(unit.Name), true); err != nil {
			return fmt.Errorf("failed to install %s: %w", unit.Name, err)
		}
	}

	switch m.daemon {
	case "supervisor":
		// Ensure configuration files are reloaded
		m.controlBestEffort(ctx, "supervisorctl reread")
		m.controlBestEffort(ctx, "supervisorctl update")
	case "systemd":
		// Ensure configuration files are reloaded
		m.controlBestEffort(ctx, "systemctl daemon-reload")

		// Ensure services are started on startup
		for _, unit := range units {
			m.controlBestEffort(ctx, m.render("enable", unit.Name))
		}
	}
	return nil
}

// Control performs action on each named service. Failures are reported to
// the operator but the remaining services are still attempted.
func (m *Manager) Control(ctx context.Context, names []string, action string) {
	for _, name := range names {
		m.controlBestEffort(ctx, m.render(action, name))
	}
}

func (m *Manager) render(action, name string) string {
	return strings.NewReplacer("{action}", action, "{name}", name).Replace(m.conf.controlCmd)
}

func (m *Manager) controlBestEffort(ctx context.Context, command string) {
	res, err := m.runner.Run(ctx, command, runner.Opts{Privileged: true, WarnOnly: true})
	if err != nil {
		color.Red("Failed: %s", command)
		fmt.Println(err)
		return
	}
	if !res.Succeeded {
		color.Red("Failed: %s", command)
		if out := strings.TrimSpace(res.Output); out != "" {
			fmt.Println(out)
		}
	}
}
