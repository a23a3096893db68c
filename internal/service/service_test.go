package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okarlsson/sledge/internal/runner"
)

// recordingRunner records every command and optionally fails some of them.
type recordingRunner struct {
	commands []string
	opts     []runner.Opts
	failing  map[string]bool
}

func (r *recordingRunner) Run(_ context.Context, command string, opts runner.Opts) (runner.Result, error) {
	r.commands = append(r.commands, command)
	r.opts = append(r.opts, opts)
	if r.failing[command] {
		return runner.Result{Output: "boom", Succeeded: false}, nil
	}
	return runner.Result{Succeeded: true}, nil
}

type upload struct {
	path       string
	data       string
	privileged bool
}

type recordingTransfer struct {
	uploads []upload
}

func (t *recordingTransfer) Upload(_ context.Context, data []byte, remotePath string, privileged bool) error {
	t.uploads = append(t.uploads, upload{path: remotePath, data: string(data), privileged: privileged})
	return nil
}

func TestNewManager_UnknownDaemon(t *testing.T) {
	_, err := NewManager(&recordingRunner{}, &recordingTransfer{}, "launchd", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported daemon type")
}

func TestUnitPath(t *testing.T) {
	tests := []struct {
		daemon string
		want   string
	}{
		{"systemd", "/etc/systemd/system/web.service"},
		{"supervisor", "/etc/supervisord/conf.d/web.conf"},
		{"upstart", "/etc/init/web.conf"},
	}

	for _, tt := range tests {
		t.Run(tt.daemon, func(t *testing.T) {
			m, err := NewManager(&recordingRunner{}, &recordingTransfer{}, tt.daemon, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.UnitPath("web"))
		})
	}
}

func TestUnitPath_TargetDirOverride(t *testing.T) {
	m, err := NewManager(&recordingRunner{}, &recordingTransfer{}, "supervisor", "/etc/supervisor/conf.d")
	require.NoError(t, err)
	assert.Equal(t, "/etc/supervisor/conf.d/web.conf", m.UnitPath("web"))
}

func TestInstall_Systemd(t *testing.T) {
	rr := &recordingRunner{}
	rt := &recordingTransfer{}
	m, err := NewManager(rr, rt, "systemd", "")
	require.NoError(t, err)

	units := []Unit{
		{Name: "web", Data: []byte("[Unit]\nDescription=web\n")},
		{Name: "worker", Data: []byte("[Unit]\nDescription=worker\n")},
	}
	require.NoError(t, m.Install(context.Background(), units))

	require.Len(t, rt.uploads, 2)
	assert.Equal(t, "/etc/systemd/system/web.service", rt.uploads[0].path)
	assert.True(t, rt.uploads[0].privileged)

	assert.Equal(t, []string{
		"systemctl daemon-reload",
		"systemctl enable web",
		"systemctl enable worker",
	}, rr.commands)
	for _, opts := range rr.opts {
		assert.True(t, opts.Privileged)
		assert.True(t, opts.WarnOnly)
	}
}

func TestInstall_Supervisor(t *testing.T) {
	rr := &recordingRunner{}
	rt := &recordingTransfer{}
	m, err := NewManager(rr, rt, "supervisor", "")
	require.NoError(t, err)

	require.NoError(t, m.Install(context.Background(), []Unit{{Name: "web", Data: []byte("[program:web]\n")}}))

	require.Len(t, rt.uploads, 1)
	assert.Equal(t, "/etc/supervisord/conf.d/web.conf", rt.uploads[0].path)
	assert.Equal(t, []string{"supervisorctl reread", "supervisorctl update"}, rr.commands)
}

func TestControl_CommandTemplates(t *testing.T) {
	tests := []struct {
		daemon string
		want   string
	}{
		{"systemd", "systemctl restart web"},
		{"supervisor", "supervisorctl restart web"},
		{"upstart", "service web restart"},
	}

	for _, tt := range tests {
		t.Run(tt.daemon, func(t *testing.T) {
			rr := &recordingRunner{}
			m, err := NewManager(rr, &recordingTransfer{}, tt.daemon, "")
			require.NoError(t, err)

			m.Control(context.Background(), []string{"web"}, "restart")
			assert.Equal(t, []string{tt.want}, rr.commands)
		})
	}
}

func TestControl_FailureDoesNotStopRemaining(t *testing.T) {
	rr := &recordingRunner{failing: map[string]bool{"systemctl restart web": true}}
	m, err := NewManager(rr, &recordingTransfer{}, "systemd", "")
	require.NoError(t, err)

	m.Control(context.Background(), []string{"web", "worker"}, "restart")
	assert.Equal(t, []string{"systemctl restart web", "systemctl restart worker"}, rr.commands)
}
