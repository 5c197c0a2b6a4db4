package hotplug

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRelevant(t *testing.T) {
	for i, tc := range []struct {
		event    fsnotify.Event
		expected Event
		ok       bool
	}{
		{event: fsnotify.Event{Name: "/dev/input/mouse1", Op: fsnotify.Create}, expected: Event{Path: "/dev/input/mouse1", Kind: Created}, ok: true},
		{event: fsnotify.Event{Name: "/dev/input/mouse1", Op: fsnotify.Remove}, expected: Event{Path: "/dev/input/mouse1", Kind: Removed}, ok: true},
		{event: fsnotify.Event{Name: "/dev/input/mouse1", Op: fsnotify.Chmod}},
		{event: fsnotify.Event{Name: "/dev/input/mouse1", Op: fsnotify.Write}},
		{event: fsnotify.Event{Name: "/dev/input/event7", Op: fsnotify.Create}},
		{event: fsnotify.Event{Name: "/dev/input/mice", Op: fsnotify.Remove}},
	} {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			event, ok := relevant(tc.event)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, event)
		})
	}
}

func receive(t *testing.T, events <-chan Event) Event {
	select {
	case e := <-events:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
	return Event{}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := Watch(ctx, dir, zap.NewNop())
	require.Equal(t, nil, err)

	path := filepath.Join(dir, "mouse2")
	require.Equal(t, nil, os.WriteFile(filepath.Join(dir, "event9"), nil, 0644))
	require.Equal(t, nil, os.WriteFile(path, nil, 0644))
	assert.Equal(t, Event{Path: path, Kind: Created}, receive(t, events))

	require.Equal(t, nil, os.Remove(path))
	assert.Equal(t, Event{Path: path, Kind: Removed}, receive(t, events))

	cancel()
	for range events {
	}
}

func TestWatchMissingDir(t *testing.T) {
	_, err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope"), zap.NewNop())
	assert.Error(t, err)
}
