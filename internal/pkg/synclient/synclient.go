// Package synclient switches touchpad through the synaptics driver configuration tool.
package synclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gethiox/tpsync/internal/pkg/logger"
	"github.com/gethiox/tpsync/internal/pkg/shell"
	"go.uber.org/zap"
)

const DefaultCommand = "synclient"

const queryTimeout = 5 * time.Second

type Synclient struct {
	command string
	runner  shell.Runner
	log     *zap.Logger
	usable  bool
	version string
	tpdOff  bool
}

// New checks whether the tool runs and reads current TouchpadOff value, unusable instance ignores every request.
func New(command string, runner shell.Runner, log *zap.Logger) *Synclient {
	if command == "" {
		command = DefaultCommand
	}
	s := &Synclient{command: command, runner: runner, log: log}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	version, err := runner.Output(ctx, s.command+" -V")
	if err != nil {
		log.Info(fmt.Sprintf("synclient is not usable: %s", err), logger.Info)
		return s
	}
	s.usable = true
	s.version = version
	log.Info("synclient detected", zap.String("version", version), logger.Debug)
	s.Refresh()
	return s
}

func (s *Synclient) Usable() bool {
	return s.usable
}

func (s *Synclient) Version() string {
	return s.version
}

// TpdOff is the last known TouchpadOff state, it may be stale until Refresh is called.
func (s *Synclient) TpdOff() bool {
	return s.tpdOff
}

// Refresh re-reads TouchpadOff from the driver.
func (s *Synclient) Refresh() {
	if !s.usable {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	out, err := s.runner.Output(ctx, s.command+" -l")
	if err != nil {
		s.log.Info(fmt.Sprintf("synclient query failed: %s", err), logger.Warning)
		return
	}
	off, ok := parseTouchpadOff(out)
	if !ok {
		s.log.Info("TouchpadOff not reported by synclient", logger.Warning)
		return
	}
	s.tpdOff = off
}

// parseTouchpadOff finds "TouchpadOff = N" line, any non-zero value means off
// (1 is fully off, 2 keeps tapping and scrolling disabled only).
func parseTouchpadOff(out string) (bool, bool) {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.SplitN(line, "=", 2)
		if len(fields) != 2 || strings.TrimSpace(fields[0]) != "TouchpadOff" {
			continue
		}
		return strings.TrimSpace(fields[1]) != "0", true
	}
	return false, false
}

func (s *Synclient) Enable() {
	s.Switch(true)
}

func (s *Synclient) Switch(enabled bool) {
	if !s.usable {
		return
	}
	value := "1"
	if enabled {
		value = "0"
	}
	s.log.Info(fmt.Sprintf("synclient TouchpadOff=%s", value), logger.Action)
	started := s.runner.Start(s.command + " TouchpadOff=" + value)
	if enabled {
		s.tpdOff = !started
	} else {
		s.tpdOff = started
	}
}
