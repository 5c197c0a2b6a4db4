package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaultConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tpsync")
	require.NoError(t, createConfigIfNeeded(dir, zap.NewNop()))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "settings.toml"), cfg.TPSync.SettingsFile)
	assert.Equal(t, filepath.Join(dir, "tpsync.log"), cfg.TPSync.LogFile)
	assert.Equal(t, 200*time.Millisecond, cfg.TPSync.Debounce)
	assert.Equal(t, 3, cfg.TPSync.LogLevel)
	assert.Equal(t, "proc", cfg.Devices.Source)
	assert.Equal(t, "cat /proc/bus/input/devices", cfg.Devices.ListCommand)
	assert.Equal(t, "/dev/input", cfg.Devices.WatchDir)
	assert.Equal(t, "xinput", cfg.XInput)
	assert.Equal(t, "synclient", cfg.Synclient)
	assert.Equal(t, SystemBackendGSettings, cfg.System.Backend)
	assert.Equal(t, "org.gnome.desktop.peripherals.touchpad", cfg.System.Schema)
	assert.Equal(t, filepath.Join(dir, "system.toml"), cfg.System.File)
	assert.Equal(t, "dbus", cfg.Notifications.Backend)
}

func TestCreateConfigKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, configFile)
	require.NoError(t, os.WriteFile(path, []byte("[xinput]\ncommand = /usr/local/bin/xinput\n"), 0o644))

	require.NoError(t, createConfigIfNeeded(dir, zap.NewNop()))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/xinput", cfg.XInput)
	assert.Equal(t, filepath.Join(dir, "settings.toml"), cfg.TPSync.SettingsFile)
	assert.Equal(t, 200*time.Millisecond, cfg.TPSync.Debounce)
}

func TestLoadConfig(t *testing.T) {
	for _, tc := range []struct {
		name   string
		config string
		check  func(t *testing.T, cfg Config)
		err    bool
	}{
		{
			name:   "absolute paths",
			config: "[tpsync]\nsettings_file = /etc/tpsync/settings.toml\n[system]\nbackend = file\nfile = /tmp/system.toml\n",
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, "/etc/tpsync/settings.toml", cfg.TPSync.SettingsFile)
				assert.Equal(t, SystemBackendFile, cfg.System.Backend)
				assert.Equal(t, "/tmp/system.toml", cfg.System.File)
			},
		},
		{
			name:   "unknown choices fall back",
			config: "[devices]\nsource = udev\n[notifications]\nbackend = smoke\n",
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, "proc", cfg.Devices.Source)
				assert.Equal(t, "dbus", cfg.Notifications.Backend)
			},
		},
		{
			name:   "broken debounce",
			config: "[tpsync]\ndebounce = soon\n",
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, 200*time.Millisecond, cfg.TPSync.Debounce)
			},
		},
		{
			name:   "unsupported system backend",
			config: "[system]\nbackend = dconf\n",
			err:    true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, configFile), []byte(tc.config), 0o644))
			cfg, err := LoadConfig(dir)
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tc.check(t, cfg)
		})
	}
}

func TestLoadConfigMissing(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}
