package shell

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/gethiox/tpsync/internal/pkg/logger"
	"github.com/mattn/go-shellwords"
	"go.uber.org/zap"
)

var ErrEmptyCommand = errors.New("empty command")

// Runner executes external command lines.
// Output and Stream block until the process exits, Start does not wait at all.
type Runner interface {
	// Output runs command and returns its trimmed standard output.
	Output(ctx context.Context, cmdline string) (string, error)
	// Start spawns command in the background, the exit status is only logged.
	// Returned value reports whether the process was spawned.
	Start(cmdline string) bool
	// Stream runs command and calls fn for every line written to standard output.
	Stream(ctx context.Context, cmdline string, fn func(line string)) error
}

type Exec struct {
	log     *zap.Logger
	reapers sync.WaitGroup
}

func NewExec(log *zap.Logger) *Exec {
	return &Exec{log: log}
}

// Join builds command line out of separate arguments, quoting them when needed.
func Join(args ...string) string {
	var quoted = make([]string, 0, len(args))
	for _, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\"'\\$`") {
			a = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
		}
		quoted = append(quoted, a)
	}
	return strings.Join(quoted, " ")
}

func command(ctx context.Context, cmdline string) (*exec.Cmd, error) {
	args, err := shellwords.Parse(cmdline)
	if err != nil {
		return nil, fmt.Errorf("cannot parse \"%s\" command: %w", cmdline, err)
	}
	if len(args) == 0 {
		return nil, ErrEmptyCommand
	}
	return exec.CommandContext(ctx, args[0], args[1:]...), nil
}

func (e *Exec) Output(ctx context.Context, cmdline string) (string, error) {
	cmd, err := command(ctx, cmdline)
	if err != nil {
		return "", err
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	e.log.Info("exec", zap.String("command", cmdline), logger.Debug)
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("\"%s\" failed: %w: %s", cmdline, err, msg)
		}
		return "", fmt.Errorf("\"%s\" failed: %w", cmdline, err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (e *Exec) Start(cmdline string) bool {
	cmd, err := command(context.Background(), cmdline)
	if err != nil {
		e.log.Info(fmt.Sprintf("cannot run command: %s", err), logger.Warning)
		return false
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	e.log.Info("exec async", zap.String("command", cmdline), logger.Debug)
	err = cmd.Start()
	if err != nil {
		e.log.Info(fmt.Sprintf("failed to start \"%s\": %s", cmdline, err), logger.Warning)
		return false
	}

	e.reapers.Add(1)
	go func() {
		defer e.reapers.Done()
		err := cmd.Wait()
		if err != nil {
			e.log.Info(fmt.Sprintf("\"%s\" failed: %s %s", cmdline, err, strings.TrimSpace(stderr.String())), logger.Warning)
			return
		}
		e.log.Info("exec async done", zap.String("command", cmdline), logger.Debug)
	}()
	return true
}

// Wait blocks until every process spawned by Start has exited.
func (e *Exec) Wait() {
	e.reapers.Wait()
}

func (e *Exec) Stream(ctx context.Context, cmdline string, fn func(line string)) error {
	cmd, err := command(ctx, cmdline)
	if err != nil {
		return err
	}

	out, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("cannot get stdout pipe: %w", err)
	}

	err = cmd.Start()
	if err != nil {
		return fmt.Errorf("failed to start \"%s\": %w", cmdline, err)
	}

	scan := bufio.NewScanner(out)
	for scan.Scan() {
		fn(scan.Text())
	}

	err = cmd.Wait()
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("\"%s\" failed: %w", cmdline, err)
	}
	return nil
}
