package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/gethiox/tpsync/internal/pkg/coordinator"
	"github.com/gethiox/tpsync/internal/pkg/settings"
	"github.com/gethiox/tpsync/internal/pkg/shell"
	"github.com/gethiox/tpsync/internal/pkg/synclient"
	"github.com/gethiox/tpsync/internal/pkg/xinput"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const missingTools = `[xinput]
command = /nonexistent/xinput

[synclient]
command = /nonexistent/synclient
`

func execute(t *testing.T, args ...string) error {
	cmd := rootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.Execute()
}

func TestMethodRequiresUsableTool(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFile), []byte(missingTools), 0o644))
	settingsPath := filepath.Join(dir, "settings.toml")

	err := execute(t, "--config", dir, "--nocolor", "method", "xinput")
	assert.True(t, errors.Is(err, coordinator.ErrMethodUnusable))
	_, err = os.Stat(settingsPath)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	err = execute(t, "--config", dir, "--nocolor", "method", "synclient")
	assert.True(t, errors.Is(err, coordinator.ErrMethodUnusable))

	err = execute(t, "--config", dir, "--nocolor", "toggle")
	require.NoError(t, err)
	store, err := settings.Open(context.Background(), settings.ExtensionSchema(),
		settings.NewFile(settingsPath, 0, zap.NewNop()), zap.NewNop())
	require.NoError(t, err)
	assert.False(t, store.Bool(settings.KeyTouchpadEnabled))
	assert.Equal(t, settings.MethodGSettings, store.String(settings.KeySwitchMethod))
}

func TestStatusReport(t *testing.T) {
	runner := shell.NewFake()
	runner.Outputs["xinput --version"] = "xinput version 1.6.3\nXI version on server: 2.3"
	runner.Outputs["xinput --list --short"] = `⎡ Virtual core pointer                    	id=2	[master pointer  (3)]
⎜   ↳ SynPS/2 Synaptics TouchPad              	id=11	[slave  pointer  (2)]
⎜   ↳ TPPS/2 IBM TrackPoint                   	id=12	[slave  pointer  (2)]
⎜   ↳ Logitech USB Receiver                   	id=13	[slave  pointer  (2)]`

	ext, err := settings.Open(context.Background(), settings.ExtensionSchema(),
		settings.NewMemory(map[string]any{settings.KeyTrackpointEnabled: false}), zap.NewNop())
	require.NoError(t, err)
	sys, err := settings.Open(context.Background(), settings.TouchpadSchema(""), settings.NewMemory(nil), zap.NewNop())
	require.NoError(t, err)

	x := xinput.New("", runner, zap.NewNop())
	s := synclient.New("", runner, zap.NewNop())
	report := newStatusReport(ext, sys, x, s)

	assert.True(t, report.Visible)
	assert.Equal(t, map[string]bool{
		settings.KeyTouchpadEnabled:   true,
		settings.KeyTrackpointEnabled: false,
	}, report.Devices)
	assert.Equal(t, []string{"<Super>F9"}, report.ToggleShortcut)
	assert.Equal(t, []string{settings.MethodGSettings, settings.MethodXInput}, report.Methods)
	assert.Equal(t, map[string]toolReport{
		"xinput":    {Usable: true, Version: "xinput version 1.6.3"},
		"synclient": {Usable: false},
	}, report.Tools)
	assert.Equal(t, []string{"SynPS/2 Synaptics TouchPad"}, report.Touchpads)

	var out bytes.Buffer
	require.NoError(t, printYAML(&out, report))
	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, true, decoded["visible"])
	assert.Equal(t, map[string]any{"usable": false}, decoded["tools"].(map[string]any)["synclient"])
	assert.Equal(t, map[string]any{"usable": true, "version": "xinput version 1.6.3"}, decoded["tools"].(map[string]any)["xinput"])
}
