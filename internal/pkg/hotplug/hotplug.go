// Package hotplug reports pointing devices appearing and disappearing under /dev/input.
package hotplug

import (
	"context"
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/gethiox/tpsync/internal/pkg/logger"
	"go.uber.org/zap"
)

const DefaultDir = "/dev/input"

type Kind int

const (
	Created Kind = iota
	Removed
)

func (k Kind) String() string {
	switch k {
	case Created:
		return "created"
	case Removed:
		return "removed"
	}
	return fmt.Sprintf("Kind(%d)", k)
}

type Event struct {
	Path string
	Kind Kind
}

// relevant keeps creation and removal of mouse nodes only.
func relevant(event fsnotify.Event) (Event, bool) {
	if !strings.Contains(event.Name, "mouse") {
		return Event{}, false
	}
	switch {
	case event.Op&fsnotify.Create != 0:
		return Event{Path: event.Name, Kind: Created}, true
	case event.Op&fsnotify.Remove != 0:
		return Event{Path: event.Name, Kind: Removed}, true
	}
	return Event{}, false
}

// Watch observes dir until ctx is done, returned channel is closed afterwards.
func Watch(ctx context.Context, dir string, log *zap.Logger) (<-chan Event, error) {
	if dir == "" {
		dir = DefaultDir
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	err = watcher.Add(dir)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch \"%s\": %w", dir, err)
	}

	var events = make(chan Event)

	go func() {
		defer close(events)
		defer func() {
			err := watcher.Close()
			if err != nil {
				log.Info(fmt.Sprintf("closing watcher failed: %v", err), logger.Debug)
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case fsEvent, ok := <-watcher.Events:
				if !ok {
					return
				}
				event, ok := relevant(fsEvent)
				if !ok {
					continue
				}
				log.Info(fmt.Sprintf("pointing device %s", event.Kind), zap.String("path", event.Path), logger.Debug)
				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Info(fmt.Sprintf("hotplug watcher error: %v", err), logger.Warning)
			}
		}
	}()

	return events, nil
}
