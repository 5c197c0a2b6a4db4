package synclient

import (
	"fmt"
	"testing"

	"github.com/gethiox/tpsync/internal/pkg/shell"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const listing = `Parameter settings:
    LeftEdge                = 1632
    RightEdge               = 5312
    TouchpadOff             = 1
    LockedDrags             = 0
`

func TestParseTouchpadOff(t *testing.T) {
	for i, tc := range []struct {
		input      string
		off, found bool
	}{
		{input: listing, off: true, found: true},
		{input: "    TouchpadOff             = 0", off: false, found: true},
		{input: "    TouchpadOff             = 2", off: true, found: true},
		{input: "Parameter settings:\n    LeftEdge = 1", off: false, found: false},
		{input: "", off: false, found: false},
	} {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			off, found := parseTouchpadOff(tc.input)
			assert.Equal(t, tc.off, off)
			assert.Equal(t, tc.found, found)
		})
	}
}

func TestSynclient(t *testing.T) {
	runner := shell.NewFake()
	runner.Outputs["synclient -V"] = "1.9.1"
	runner.Outputs["synclient -l"] = listing

	s := New("", runner, zap.NewNop())
	assert.True(t, s.Usable())
	assert.Equal(t, "1.9.1", s.Version())
	assert.True(t, s.TpdOff())

	s.Enable()
	assert.False(t, s.TpdOff())
	assert.Equal(t, []string{"synclient TouchpadOff=0"}, runner.TakeStarted())

	s.Switch(false)
	assert.True(t, s.TpdOff())
	assert.Equal(t, []string{"synclient TouchpadOff=1"}, runner.TakeStarted())

	// switching off that could not be spawned leaves touchpad on
	runner.NoSpawn = true
	s.Switch(false)
	assert.False(t, s.TpdOff())
}

func TestSynclientUnusable(t *testing.T) {
	runner := shell.NewFake()
	s := New("", runner, zap.NewNop())
	assert.False(t, s.Usable())
	assert.Equal(t, "", s.Version())

	s.Switch(false)
	s.Enable()
	s.Refresh()
	assert.Empty(t, runner.TakeStarted())
	assert.Equal(t, []string{"synclient -V"}, runner.Executed)
}
