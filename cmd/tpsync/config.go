package main

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gethiox/tpsync/internal/pkg/hotplug"
	"github.com/gethiox/tpsync/internal/pkg/input"
	"github.com/gethiox/tpsync/internal/pkg/logger"
	"github.com/gethiox/tpsync/internal/pkg/notify"
	"github.com/gethiox/tpsync/internal/pkg/settings"
	"github.com/gethiox/tpsync/internal/pkg/synclient"
	"github.com/gethiox/tpsync/internal/pkg/xinput"
	"github.com/go-ini/ini"
	"go.uber.org/zap"
)

const (
	configFile = "tpsync.config"

	SystemBackendGSettings = "gsettings"
	SystemBackendFile      = "file"
)

type TPSync struct {
	SettingsFile string
	LogFile      string
	Debounce     time.Duration
	LogLevel     int
}

type Devices struct {
	Source      string
	ListCommand string
	WatchDir    string
}

type System struct {
	Backend string
	Command string
	Schema  string
	File    string
}

type Notifications struct {
	Backend string
	AppName string
	Icon    string
}

type Config struct {
	Dir           string
	TPSync        TPSync
	Devices       Devices
	XInput        string
	Synclient     string
	System        System
	Notifications Notifications
}

func defaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "tpsync-config"
	}
	return filepath.Join(dir, "tpsync")
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// LoadConfig reads tpsync.config from dir, missing keys hold defaults.
func LoadConfig(dir string) (Config, error) {
	data, err := os.ReadFile(filepath.Join(dir, configFile))
	if err != nil {
		return Config{}, fmt.Errorf("cannot read config: %w", err)
	}

	cfg, err := ini.Load(data)
	if err != nil {
		return Config{}, fmt.Errorf("cannot parse config: %w", err)
	}

	var c = Config{Dir: dir}

	// [tpsync]
	tpsync := cfg.Section("tpsync")
	c.TPSync.SettingsFile = resolve(dir, tpsync.Key("settings_file").MustString("settings.toml"))
	c.TPSync.LogFile = resolve(dir, tpsync.Key("log_file").MustString("tpsync.log"))
	debounce, err := tpsync.Key("debounce").Int()
	if err != nil {
		debounce = int(settings.DefaultDebounce / time.Millisecond)
	}
	c.TPSync.Debounce = time.Millisecond * time.Duration(debounce)
	c.TPSync.LogLevel = tpsync.Key("log_level").MustInt(logger.ActionLvl)

	// [devices]
	devices := cfg.Section("devices")
	c.Devices.Source = devices.Key("source").In(input.SourceProc, []string{input.SourceProc, input.SourceEvdev})
	c.Devices.ListCommand = devices.Key("list_command").MustString(input.DefaultListCommand)
	c.Devices.WatchDir = devices.Key("watch_dir").MustString(hotplug.DefaultDir)

	// [xinput], [synclient]
	c.XInput = cfg.Section("xinput").Key("command").MustString(xinput.DefaultCommand)
	c.Synclient = cfg.Section("synclient").Key("command").MustString(synclient.DefaultCommand)

	// [system]
	system := cfg.Section("system")
	c.System.Backend = system.Key("backend").MustString(SystemBackendGSettings)
	switch c.System.Backend {
	case SystemBackendGSettings, SystemBackendFile:
	default:
		return Config{}, fmt.Errorf("unsupported system backend \"%s\"", c.System.Backend)
	}
	c.System.Command = system.Key("command").MustString(settings.DefaultGSettingsCommand)
	c.System.Schema = system.Key("schema").MustString(settings.TouchpadSchemaID)
	c.System.File = resolve(dir, system.Key("file").MustString("system.toml"))

	// [notifications]
	notifications := cfg.Section("notifications")
	c.Notifications.Backend = notifications.Key("backend").In(notify.BackendDBus, []string{notify.BackendDBus, notify.BackendLog})
	c.Notifications.AppName = notifications.Key("app_name").MustString(notify.DefaultAppName)
	c.Notifications.Icon = notifications.Key("icon").MustString(notify.DefaultIcon)

	return c, nil
}

//go:embed tpsync-config/tpsync.config
var templateConfig []byte

// createConfigIfNeeded writes default tpsync.config into dir, existing file stays intact.
func createConfigIfNeeded(dir string, log *zap.Logger) error {
	path := filepath.Join(dir, configFile)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("cannot open config file: %w", err)
	}

	log.Info("config not exist, generating...", logger.Info)
	err = os.MkdirAll(dir, 0o755)
	if err != nil {
		return fmt.Errorf("cannot create \"%s\" directory: %w", dir, err)
	}
	err = os.WriteFile(path, templateConfig, 0o644)
	if err != nil {
		return fmt.Errorf("cannot write data into \"%s\" file: %w", path, err)
	}
	log.Info(fmt.Sprintf("Created \"%s\" file", path), logger.Debug)
	return nil
}
