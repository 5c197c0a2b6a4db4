package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gethiox/tpsync/internal/pkg/coordinator"
	"github.com/gethiox/tpsync/internal/pkg/input"
	"github.com/gethiox/tpsync/internal/pkg/logger"
	"github.com/gethiox/tpsync/internal/pkg/settings"
	"github.com/gethiox/tpsync/internal/pkg/synclient"
	"github.com/gethiox/tpsync/internal/pkg/xinput"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// One-shot commands only write extension settings, running daemon picks the change up
// from the settings file and reconciles devices.

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the daemon",
		Args:  cobra.NoArgs,
		RunE:  withApp(func(ctx context.Context, a *app, args []string) error { return runDaemon(ctx, a) }),
	}
}

func toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Flip touchpad state",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			ext, err := a.extStore(ctx)
			if err != nil {
				return err
			}
			err = coordinator.Toggle(ext)
			if err != nil {
				return err
			}
			a.log.Info("touchpad toggled", zap.Bool("enabled", ext.Bool(settings.KeyTouchpadEnabled)), logger.Action)
			return nil
		}),
	}
}

func switchCmd(enabled bool) *cobra.Command {
	use, short := "disable", "Disable"
	if enabled {
		use, short = "enable", "Enable"
	}
	return &cobra.Command{
		Use:       use + " <touchpad|trackpoint|touchscreen|fingertouch|pen>",
		Short:     short + " device type",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"touchpad", "trackpoint", "touchscreen", "fingertouch", "pen"},
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			t, err := input.ParseDeviceType(args[0])
			if err != nil {
				return err
			}
			ext, err := a.extStore(ctx)
			if err != nil {
				return err
			}
			err = coordinator.SetDeviceEnabled(ext, t, enabled)
			if err != nil {
				return err
			}
			a.log.Info(fmt.Sprintf("%s %sd", t, use), logger.Action)
			return nil
		}),
	}
}

func methodCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "method [gsettings|synclient|xinput]",
		Short:     "Show or select touchpad switch method",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{settings.MethodGSettings, settings.MethodSynclient, settings.MethodXInput},
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			ext, err := a.extStore(ctx)
			if err != nil {
				return err
			}
			x := xinput.New(a.cfg.XInput, a.runner, a.log)
			s := synclient.New(a.cfg.Synclient, a.runner, a.log)
			if len(args) == 0 {
				fmt.Println(ext.String(settings.KeySwitchMethod))
				fmt.Printf("available: %s\n", strings.Join(coordinator.AvailableMethods(x, s), ", "))
				return nil
			}
			err = coordinator.SelectMethod(ext, args[0], x, s)
			if err != nil {
				return err
			}
			a.log.Info(fmt.Sprintf("switch method set to %s", args[0]), logger.Action)
			return nil
		}),
	}
}

func calibrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calibrate",
		Short: "Store number of currently attached mice as auto-switch baseline",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			ext, err := a.extStore(ctx)
			if err != nil {
				return err
			}
			enumerator, err := a.enumerator()
			if err != nil {
				return err
			}
			count, err := coordinator.Calibrate(ctx, enumerator, ext)
			if err != nil {
				return err
			}
			a.log.Info(fmt.Sprintf("mouse baseline set to %d", count), logger.Action)
			return nil
		}),
	}
}

func resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore default settings and enable every device",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			c, loop, closeNotifier, err := a.coordinator(ctx)
			if err != nil {
				return err
			}
			defer closeNotifier()
			c.ResetDefaults()
			loop.RunPending()
			return nil
		}),
	}
}

type devicesReport struct {
	Devices    []input.PointingDevice `yaml:"devices"`
	Mice       int                    `yaml:"mice"`
	MouseCount int                    `yaml:"mouse_count"`
}

func devicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List attached pointing devices",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			ext, err := a.extStore(ctx)
			if err != nil {
				return err
			}
			enumerator, err := a.enumerator()
			if err != nil {
				return err
			}
			devices, err := enumerator.Enumerate(ctx)
			if err != nil {
				return err
			}
			return printYAML(os.Stdout, devicesReport{
				Devices:    devices,
				Mice:       input.CountType(devices, input.MouseDevice),
				MouseCount: ext.Int(settings.KeyMouseCount),
			})
		}),
	}
}

type toolReport struct {
	Usable  bool   `yaml:"usable"`
	Version string `yaml:"version,omitempty"`
}

type statusReport struct {
	coordinator.Status `yaml:",inline"`

	ToggleShortcut []string              `yaml:"toggle_touchpad"`
	Methods        []string              `yaml:"available_methods"`
	Tools          map[string]toolReport `yaml:"tools"`
	Touchpads      []string              `yaml:"touchpads"`
}

func newStatusReport(ext, sys *settings.Store, x *xinput.XInput, s *synclient.Synclient) statusReport {
	r := statusReport{
		Status:         coordinator.ComputeStatus(ext, sys, coordinator.DeviceKeys(x)),
		ToggleShortcut: ext.Strv(settings.KeyToggleTouchpad),
		Methods:        coordinator.AvailableMethods(x, s),
		Tools: map[string]toolReport{
			settings.MethodXInput:    {Usable: x.Usable(), Version: x.Version()},
			settings.MethodSynclient: {Usable: s.Usable(), Version: s.Version()},
		},
		Touchpads: []string{},
	}
	for _, d := range x.Devices() {
		if d.Type == input.TouchpadDevice {
			r.Touchpads = append(r.Touchpads, d.Name)
		}
	}
	return r
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print indicator state and detected tools",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			ext, err := a.extStore(ctx)
			if err != nil {
				return err
			}
			sys, err := a.sysStore(ctx)
			if err != nil {
				return err
			}
			x := xinput.New(a.cfg.XInput, a.runner, a.log)
			s := synclient.New(a.cfg.Synclient, a.runner, a.log)
			return printYAML(os.Stdout, newStatusReport(ext, sys, x, s))
		}),
	}
}

func printYAML(out io.Writer, v any) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	err := enc.Encode(v)
	if err != nil {
		return err
	}
	return enc.Close()
}
