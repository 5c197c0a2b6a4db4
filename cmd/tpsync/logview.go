package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/gethiox/tpsync/internal/pkg/logger"
	"github.com/logrusorgru/aurora"
	"github.com/spf13/cobra"
)

// logReader reads debug log file incrementally, a file recreated by the daemon is read from the start.
type logReader struct {
	path    string
	offset  int64
	pending []byte
	line    func(line []byte)
}

func (r *logReader) read() error {
	f, err := os.Open(r.path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.Size() < r.offset {
		r.offset = 0
		r.pending = nil
	}
	_, err = f.Seek(r.offset, io.SeekStart)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return err
	}
	r.offset += int64(len(data))

	lines := bytes.Split(append(r.pending, data...), []byte{'\n'})
	r.pending = append([]byte(nil), lines[len(lines)-1]...)
	for _, l := range lines[:len(lines)-1] {
		if len(l) > 0 {
			r.line(l)
		}
	}
	return nil
}

// flush emits unterminated last line
func (r *logReader) flush() {
	if len(r.pending) > 0 {
		r.line(r.pending)
		r.pending = nil
	}
}

// showLog prints debug log entries from path. With follow set it keeps printing appended entries
// until ctx is done, missing file is awaited then.
func showLog(ctx context.Context, path string, out io.Writer, au aurora.Aurora, width func() int, follow bool) error {
	r := &logReader{path: filepath.Clean(path), line: func(line []byte) {
		entry, err := unpack(line)
		if err != nil {
			fmt.Fprintf(out, "%s\n", line)
			return
		}
		m := prepareString(entry, au, width(), logger.DebugLvl)
		if m != "" {
			fmt.Fprintf(out, "%s\n", m)
		}
	}}

	if !follow {
		err := r.read()
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("debug log \"%s\" does not exist, enable \"debug\" and \"debug-to-file\" settings first", path)
		}
		if err != nil {
			return fmt.Errorf("cannot read debug log: %w", err)
		}
		r.flush()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()
	err = watcher.Add(filepath.Dir(r.path))
	if err != nil {
		return fmt.Errorf("failed to watch \"%s\": %w", filepath.Dir(r.path), err)
	}

	err = r.read()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("cannot read debug log: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			r.flush()
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != r.path {
				continue
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				r.offset = 0
				r.pending = nil
				continue
			}
			err := r.read()
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("cannot read debug log: %w", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("debug log watcher failed: %w", err)
		}
	}
}

func logCmd() *cobra.Command {
	var follow bool
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Print debug log file written by the daemon",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			au := aurora.NewAurora(!noColor)
			return showLog(ctx, a.opts.LogPath(), os.Stdout, au, terminalWidth(os.Stdout), follow)
		}),
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep printing appended entries")
	return cmd
}
