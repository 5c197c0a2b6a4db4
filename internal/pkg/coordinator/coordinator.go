// Package coordinator keeps touchpad state consistent between the extension settings,
// the system touchpad settings and the device control tools.
//
// Every callback of Coordinator runs on its event loop. Settings stores notify subscribers
// on the goroutine which changed a value, so stores have to be written from the loop
// (or from a goroutine that owns the process, like one-shot CLI commands), and their
// watchers are dispatched through the loop as well.
package coordinator

import (
	"context"
	"fmt"
	"sync"

	"github.com/gethiox/tpsync/internal/pkg/eventloop"
	"github.com/gethiox/tpsync/internal/pkg/hotplug"
	"github.com/gethiox/tpsync/internal/pkg/input"
	"github.com/gethiox/tpsync/internal/pkg/logger"
	"github.com/gethiox/tpsync/internal/pkg/notify"
	"github.com/gethiox/tpsync/internal/pkg/settings"
	"go.uber.org/zap"
)

// LowLevelTool switches individual input devices, xinput in production.
type LowLevelTool interface {
	Usable() bool
	Present(t input.DeviceType) bool
	EnableAll()
	EnableByType(t input.DeviceType)
	SwitchByType(t input.DeviceType, enabled bool)
}

// DriverTool switches touchpad at driver level, synclient in production.
type DriverTool interface {
	Usable() bool
	TpdOff() bool
	Enable()
	Switch(enabled bool)
}

type Enumerator interface {
	Enumerate(ctx context.Context) ([]input.PointingDevice, error)
}

// device keys other than touchpad, driven directly through LowLevelTool
var nonTouchpadKeys = map[string]input.DeviceType{
	settings.KeyTrackpointEnabled:  input.TrackpointDevice,
	settings.KeyTouchscreenEnabled: input.TouchscreenDevice,
	settings.KeyFingertouchEnabled: input.FingertouchDevice,
	settings.KeyPenEnabled:         input.PenDevice,
}

var nonTouchpadOrder = []string{
	settings.KeyTrackpointEnabled,
	settings.KeyTouchscreenEnabled,
	settings.KeyFingertouchEnabled,
	settings.KeyPenEnabled,
}

// DeviceKeys lists touchpad-enabled followed by keys of device types present according to lowLevel.
func DeviceKeys(lowLevel LowLevelTool) []string {
	keys := []string{settings.KeyTouchpadEnabled}
	for _, key := range nonTouchpadOrder {
		if lowLevel.Present(nonTouchpadKeys[key]) {
			keys = append(keys, key)
		}
	}
	return keys
}

type Config struct {
	Extension  *settings.Store
	System     *settings.Store
	LowLevel   LowLevelTool
	Driver     DriverTool
	Enumerator Enumerator
	Notifier   notify.Notifier
	Loop       *eventloop.Loop
	Options    *logger.Options // optional
	WatchDir   string          // hotplug directory, /dev/input by default
	Log        *zap.Logger
}

type Coordinator struct {
	ext, sys   *settings.Store
	lowLevel   LowLevelTool
	driver     DriverTool
	enumerator Enumerator
	notifier   notify.Notifier
	loop       *eventloop.Loop
	opts       *logger.Options
	watchDir   string
	log        *zap.Logger

	method        string
	methodChanged bool

	deviceKeys []string // device keys with active subscription
	subs       []*settings.Subscription
	visibility *eventloop.Idle

	statusMu sync.Mutex
	status   Status

	cancel  context.CancelFunc
	workers sync.WaitGroup
}

// New resolves switch method and brings the tools which are not in charge back to enabled state.
func New(cfg Config) *Coordinator {
	c := &Coordinator{
		ext:        cfg.Extension,
		sys:        cfg.System,
		lowLevel:   cfg.LowLevel,
		driver:     cfg.Driver,
		enumerator: cfg.Enumerator,
		notifier:   cfg.Notifier,
		loop:       cfg.Loop,
		opts:       cfg.Options,
		watchDir:   cfg.WatchDir,
		log:        cfg.Log,
	}
	c.visibility = eventloop.NewIdle(c.loop, c.updateStatus)

	c.resolveMethod()
	c.log.Info(fmt.Sprintf("switch method: %s", c.method), logger.Info)

	if c.method != settings.MethodSynclient {
		c.driver.Enable()
	}
	if c.method != settings.MethodXInput {
		c.lowLevel.EnableAll()
	}
	if c.method != settings.MethodGSettings &&
		c.sys.String(settings.KeySendEvents) != settings.SendEventsEnabled &&
		c.ext.Bool(settings.KeyTouchpadEnabled) {
		c.setSendEvents(settings.SendEventsEnabled)
	}

	c.status = ComputeStatus(c.ext, c.sys, []string{settings.KeyTouchpadEnabled})
	return c
}

// resolveMethod reads switch method, falling back to gsettings when the selected tool is unusable.
func (c *Coordinator) resolveMethod() {
	method := c.ext.String(settings.KeySwitchMethod)

	switch {
	case method == settings.MethodSynclient && !c.driver.Usable():
		c.log.Info("synclient is not usable, switching to gsettings", logger.Warning)
		c.setString(settings.KeySwitchMethod, settings.MethodGSettings)
		method = settings.MethodGSettings
		c.methodChanged = true
	case method == settings.MethodXInput && !c.lowLevel.Usable():
		c.log.Info("xinput is not usable, switching to gsettings", logger.Warning)
		c.setString(settings.KeySwitchMethod, settings.MethodGSettings)
		c.setBool(settings.KeyAutoswitchTrackpoint, false)
		method = settings.MethodGSettings
		c.methodChanged = true
	}

	c.method = method
}

// Method returns switch method currently in charge.
func (c *Coordinator) Method() string {
	return c.method
}

// Start subscribes to settings, starts watchers and queues initial synchronization.
// Event loop has to be running (or drained) for anything to happen.
func (c *Coordinator) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)

	c.subs = append(c.subs,
		c.sys.Subscribe(settings.KeySendEvents, func(ch settings.Change) {
			c.sync(ch.Key)
		}),
		c.ext.Subscribe(settings.KeyShowPanelIcon, func(settings.Change) {
			c.visibility.Queue()
		}),
		c.ext.Subscribe(settings.KeySwitchMethod, func(settings.Change) {
			c.syncSwitchMethod()
		}),
		c.ext.Subscribe(settings.KeyDebug, func(settings.Change) {
			c.applyDebug()
		}),
		c.ext.Subscribe(settings.KeyDebugToFile, func(settings.Change) {
			c.applyDebug()
		}),
	)

	c.deviceKeys = DeviceKeys(c.lowLevel)
	for _, key := range c.deviceKeys {
		c.subs = append(c.subs, c.ext.Subscribe(key, c.onDeviceKey))
	}
	c.log.Info("device switches", zap.Strings("keys", c.deviceKeys), logger.Debug)

	c.loop.Post(func() {
		c.applyDebug()
		c.autoSwitch(hotplug.Removed)
		c.sync(settings.KeyTouchpadEnabled)
		c.visibility.Queue()
	})

	for _, store := range []*settings.Store{c.ext, c.sys} {
		store := store
		c.workers.Add(1)
		go func() {
			defer c.workers.Done()
			err := store.Watch(ctx, c.loop.Post)
			if err != nil {
				c.log.Info(fmt.Sprintf("settings watcher stopped: %s", err),
					zap.String("schema", store.Schema().ID), logger.Warning)
			}
		}()
	}

	events, err := hotplug.Watch(ctx, c.watchDir, c.log)
	if err != nil {
		c.log.Info(fmt.Sprintf("hotplug detection disabled: %s", err), logger.Warning)
		return
	}
	c.workers.Add(1)
	go func() {
		defer c.workers.Done()
		for event := range events {
			kind := event.Kind
			c.loop.Post(func() {
				c.autoSwitch(kind)
			})
		}
	}()
}

func (c *Coordinator) onDeviceKey(ch settings.Change) {
	c.sync(ch.Key)
	c.visibility.Queue()
}

func (c *Coordinator) applyDebug() {
	if c.opts == nil {
		return
	}
	debug, toFile := c.ext.Bool(settings.KeyDebug), c.ext.Bool(settings.KeyDebugToFile)
	err := c.opts.SetDebug(debug, toFile)
	if err != nil {
		c.log.Info(fmt.Sprintf("cannot apply debug options: %s", err), logger.Warning)
		return
	}
	c.log.Info("debug options", zap.Bool("debug", debug), zap.Bool("to_file", c.opts.ToFile()),
		zap.String("path", c.opts.LogPath()), logger.Debug)
}

// Close detaches from settings and watchers, then leaves every device enabled.
// It must not run concurrently with the event loop.
func (c *Coordinator) Close() {
	for _, sub := range c.subs {
		sub.Close()
	}
	c.subs = nil
	if c.cancel != nil {
		c.cancel()
	}
	c.workers.Wait()
	c.resetContract()
	c.log.Info("coordinator closed", logger.Debug)
}

// resetContract leaves touchpad enabled on every surface.
func (c *Coordinator) resetContract() {
	c.log.Info("enabling all devices", logger.Action)
	c.driver.Enable()
	c.lowLevel.EnableAll()
	c.setSendEvents(settings.SendEventsEnabled)
}

func (c *Coordinator) setBool(key string, value bool) {
	c.log.Info(fmt.Sprintf("set %s", key), zap.Bool("value", value), logger.Action)
	err := c.ext.SetBool(key, value)
	if err != nil {
		c.log.Info(err.Error(), zap.String("key", key), logger.Error)
	}
}

func (c *Coordinator) setString(key, value string) {
	c.log.Info(fmt.Sprintf("set %s", key), zap.String("value", value), logger.Action)
	err := c.ext.SetString(key, value)
	if err != nil {
		c.log.Info(err.Error(), zap.String("key", key), logger.Error)
	}
}

func (c *Coordinator) setSendEvents(value string) {
	c.log.Info(fmt.Sprintf("set %s", settings.KeySendEvents), zap.String("value", value), logger.Action)
	err := c.sys.SetString(settings.KeySendEvents, value)
	if err != nil {
		c.log.Info(err.Error(), zap.String("key", settings.KeySendEvents), logger.Error)
	}
}
