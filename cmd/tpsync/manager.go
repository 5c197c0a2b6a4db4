package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gethiox/tpsync/internal/pkg/coordinator"
	"github.com/gethiox/tpsync/internal/pkg/eventloop"
	"github.com/gethiox/tpsync/internal/pkg/input"
	"github.com/gethiox/tpsync/internal/pkg/logger"
	"github.com/gethiox/tpsync/internal/pkg/notify"
	"github.com/gethiox/tpsync/internal/pkg/settings"
	"github.com/gethiox/tpsync/internal/pkg/synclient"
	"github.com/gethiox/tpsync/internal/pkg/xinput"
	"go.uber.org/zap"
)

func (a *app) extStore(ctx context.Context) (*settings.Store, error) {
	backend := settings.NewFile(a.cfg.TPSync.SettingsFile, a.cfg.TPSync.Debounce, a.log)
	return settings.Open(ctx, settings.ExtensionSchema(), backend, a.log)
}

func (a *app) sysStore(ctx context.Context) (*settings.Store, error) {
	var backend settings.Backend
	switch a.cfg.System.Backend {
	case SystemBackendFile:
		backend = settings.NewFile(a.cfg.System.File, a.cfg.TPSync.Debounce, a.log)
	case SystemBackendGSettings, "":
		backend = settings.NewGSettings(a.cfg.System.Command, a.cfg.System.Schema, a.runner, a.log)
	default:
		return nil, fmt.Errorf("unsupported system settings backend \"%s\"", a.cfg.System.Backend)
	}
	return settings.Open(ctx, settings.TouchpadSchema(a.cfg.System.Schema), backend, a.log)
}

func (a *app) enumerator() (*input.Enumerator, error) {
	return input.NewEnumerator(a.cfg.Devices.Source, a.cfg.Devices.ListCommand, a.cfg.Devices.WatchDir, a.runner, a.log)
}

// coordinator wires every component together, returned closer releases notifier resources
func (a *app) coordinator(ctx context.Context) (*coordinator.Coordinator, *eventloop.Loop, func(), error) {
	ext, err := a.extStore(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	sys, err := a.sysStore(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	enumerator, err := a.enumerator()
	if err != nil {
		return nil, nil, nil, err
	}

	notifier := notify.New(a.cfg.Notifications.Backend, a.cfg.Notifications.AppName, a.cfg.Notifications.Icon, a.log)
	closeNotifier := func() {
		c, ok := notifier.(io.Closer)
		if !ok {
			return
		}
		err := c.Close()
		if err != nil {
			a.log.Info(fmt.Sprintf("failed to close notifier: %s", err), logger.Warning)
		}
	}

	loop := eventloop.New()
	c := coordinator.New(coordinator.Config{
		Extension:  ext,
		System:     sys,
		LowLevel:   xinput.New(a.cfg.XInput, a.runner, a.log),
		Driver:     synclient.New(a.cfg.Synclient, a.runner, a.log),
		Enumerator: enumerator,
		Notifier:   notifier,
		Loop:       loop,
		Options:    a.opts,
		WatchDir:   a.cfg.Devices.WatchDir,
		Log:        a.log,
	})
	return c, loop, closeNotifier, nil
}

// handleSigs cancels the daemon on first termination signal and exits immediately on the second one,
// SIGUSR1 toggles touchpad.
func handleSigs(wg *sync.WaitGroup, sigs <-chan os.Signal, cancel func(), c *coordinator.Coordinator, log *zap.Logger) {
	defer wg.Done()
	var counter int
	for sig := range sigs {
		if sig == syscall.SIGUSR1 {
			c.Toggle()
			continue
		}
		if counter > 0 {
			fmt.Fprintln(os.Stderr, "Dirty exit")
			os.Exit(1)
		}
		log.Info(fmt.Sprintf("signal received: %v", sig), logger.Debug)
		cancel()
		counter++
	}
}

// runDaemon is the main program process, it returns after coordinator restored all devices
func runDaemon(ctx context.Context, a *app) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c, loop, closeNotifier, err := a.coordinator(ctx)
	if err != nil {
		return err
	}
	defer closeNotifier()

	wg := sync.WaitGroup{}
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1)
	wg.Add(1)
	go handleSigs(&wg, sigs, cancel, c, a.log)

	a.log.Info("tpsync running", zap.String("switch_method", c.Method()), logger.Info)
	c.Start(ctx)
	loop.Run(ctx)
	c.Close()

	signal.Stop(sigs)
	close(sigs)
	wg.Wait()
	a.log.Info("tpsync stopped", logger.Info)
	return nil
}
