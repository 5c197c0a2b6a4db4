package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/gethiox/tpsync/internal/pkg/logger"
	"github.com/gethiox/tpsync/internal/pkg/shell"
	"github.com/logrusorgru/aurora"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configDir string
	noColor   bool
	verbose   bool
)

// app holds things shared by every command: config, logger and the log printer
type app struct {
	cfg      Config
	opts     *logger.Options
	log      *zap.Logger
	messages chan []byte
	runner   *shell.Exec
	wg       sync.WaitGroup
}

func newApp() (*app, error) {
	a := &app{opts: logger.NewOptions(""), messages: make(chan []byte, 128)}
	a.log = logger.GetLogger(a.opts, a.messages)
	a.runner = shell.NewExec(a.log)
	logLevel := logger.ActionLvl

	err := createConfigIfNeeded(configDir, a.log)
	if err == nil {
		a.cfg, err = LoadConfig(configDir)
	}
	if err == nil {
		logLevel = a.cfg.TPSync.LogLevel
		a.opts.SetLogPath(a.cfg.TPSync.LogFile)
	}

	au := aurora.NewAurora(!noColor)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		printLogs(os.Stderr, a.messages, au, terminalWidth(os.Stderr), logLevel, func() bool {
			return verbose || a.opts.Debug()
		})
	}()

	if err != nil {
		a.close()
		return nil, err
	}
	a.log.Info(fmt.Sprintf("tpsync config: %+v", a.cfg), logger.Debug)
	return a, nil
}

// close flushes log printer, logger must not be used afterwards
func (a *app) close() {
	a.runner.Wait()
	_ = a.log.Sync()
	err := a.opts.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
	}
	close(a.messages)
	a.wg.Wait()
}

// withApp runs fn with initialized app, errors are printed by cobra.
func withApp(fn func(ctx context.Context, a *app, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		return fn(cmd.Context(), a, args)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tpsync",
		Short:         "Keeps touchpad state consistent between desktop settings, xinput and synclient",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&configDir, "config", defaultConfigDir(), "config directory")
	cmd.PersistentFlags().BoolVar(&noColor, "nocolor", false, "disable color")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug entries")

	cmd.AddCommand(runCmd())
	cmd.AddCommand(toggleCmd())
	cmd.AddCommand(switchCmd(true))
	cmd.AddCommand(switchCmd(false))
	cmd.AddCommand(methodCmd())
	cmd.AddCommand(calibrateCmd())
	cmd.AddCommand(resetCmd())
	cmd.AddCommand(devicesCmd())
	cmd.AddCommand(statusCmd())
	cmd.AddCommand(logCmd())
	return cmd
}

func main() {
	err := rootCmd().ExecuteContext(context.Background())
	if err != nil {
		os.Exit(1)
	}
}
