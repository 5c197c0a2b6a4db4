package settings

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/gethiox/tpsync/internal/pkg/logger"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

const DefaultDebounce = 200 * time.Millisecond

// File persists values as a flat TOML document.
type File struct {
	path     string
	debounce time.Duration
	log      *zap.Logger
	mu       sync.Mutex
}

func NewFile(path string, debounce time.Duration, log *zap.Logger) *File {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &File{path: filepath.Clean(path), debounce: debounce, log: log}
}

// Load returns empty set of values when file does not exist yet.
func (f *File) Load(_ context.Context, _ Schema) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var values = make(map[string]any)
	err = toml.Unmarshal(data, &values)
	if err != nil {
		return nil, fmt.Errorf("failed to decode settings file \"%s\": %w", f.path, err)
	}
	return values, nil
}

// Save rewrites whole document, file is replaced atomically.
func (f *File) Save(_ context.Context, _ string, _ any, values map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := toml.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	err = os.MkdirAll(filepath.Dir(f.path), 0755)
	if err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), "."+filepath.Base(f.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary settings file: %w", err)
	}
	_, err = tmp.Write(data)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write settings: %w", err)
	}
	err = tmp.Close()
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write settings: %w", err)
	}
	err = os.Rename(tmp.Name(), f.path)
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace settings file: %w", err)
	}
	return nil
}

// Watch calls changed after the file settles, bursts of events are collapsed into one call.
// Parent directory is watched so atomic replacements are noticed as well.
func (f *File) Watch(ctx context.Context, changed func()) error {
	dir := filepath.Dir(f.path)
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create settings watcher: %w", err)
	}
	defer watcher.Close()

	err = watcher.Add(dir)
	if err != nil {
		return fmt.Errorf("failed to watch \"%s\": %w", dir, err)
	}

	debounced := debounce.New(f.debounce)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != f.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			f.log.Info("settings file event", zap.String("op", event.Op.String()), logger.Debug)
			debounced(changed)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.log.Info(fmt.Sprintf("settings watcher error: %s", err), logger.Warning)
		}
	}
}
