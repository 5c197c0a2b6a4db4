package input

import (
	"context"
	"fmt"

	"github.com/gethiox/tpsync/internal/pkg/logger"
	"github.com/gethiox/tpsync/internal/pkg/shell"
	"go.uber.org/zap"
)

const (
	SourceProc  = "proc"
	SourceEvdev = "evdev"

	DefaultListCommand = "cat /proc/bus/input/devices"
)

// Enumerator lists currently attached pointing devices.
// Empty result with nil error means that no pointing device was found.
type Enumerator struct {
	source      string
	listCommand string
	inputDir    string
	runner      shell.Runner
	log         *zap.Logger
}

func NewEnumerator(source, listCommand, inputDir string, runner shell.Runner, log *zap.Logger) (*Enumerator, error) {
	switch source {
	case SourceProc, SourceEvdev:
	case "":
		source = SourceProc
	default:
		return nil, fmt.Errorf("unsupported device source \"%s\"", source)
	}
	if listCommand == "" {
		listCommand = DefaultListCommand
	}
	return &Enumerator{
		source:      source,
		listCommand: listCommand,
		inputDir:    inputDir,
		runner:      runner,
		log:         log,
	}, nil
}

func (e *Enumerator) Enumerate(ctx context.Context) ([]PointingDevice, error) {
	var devices []PointingDevice
	var skipped int
	var err error

	switch e.source {
	case SourceEvdev:
		devices, skipped, err = listEvdev(e.inputDir)
	default:
		devices, skipped, err = e.listProc(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("device enumeration failed: %w", err)
	}

	if skipped > 0 {
		e.log.Info(fmt.Sprintf("skipped %d malformed device records", skipped), logger.Debug)
	}
	if len(devices) == 0 {
		e.log.Info("no pointing devices detected", logger.Debug)
	}
	for _, d := range devices {
		e.log.Info("pointing device", zap.String("device_name", d.Name),
			zap.String("device_type", d.Type.String()), logger.Debug)
	}
	return devices, nil
}

func (e *Enumerator) listProc(ctx context.Context) ([]PointingDevice, int, error) {
	out, err := e.runner.Output(ctx, e.listCommand)
	if err != nil {
		return nil, 0, err
	}
	devices, skipped := unmarshal(out)
	return devices, skipped, nil
}
