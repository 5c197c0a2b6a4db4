package shell

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestJoin(t *testing.T) {
	for i, tc := range []struct {
		input    []string
		expected string
	}{
		{input: []string{"xinput", "enable", "11"}, expected: "xinput enable 11"},
		{input: []string{"gsettings", "set", "a.b", "send-events", "disabled"}, expected: "gsettings set a.b send-events disabled"},
		{input: []string{"echo", "two words"}, expected: "echo 'two words'"},
		{input: []string{"echo", ""}, expected: "echo ''"},
		{input: []string{"echo", "it's"}, expected: `echo 'it'\''s'`},
	} {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			assert.Equal(t, tc.expected, Join(tc.input...))
		})
	}
}

func TestExecOutput(t *testing.T) {
	e := NewExec(zap.NewNop())

	out, err := e.Output(context.Background(), Join("echo", "hello world"))
	assert.Equal(t, nil, err)
	assert.Equal(t, "hello world", out)

	_, err = e.Output(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyCommand)

	_, err = e.Output(context.Background(), "/nonexistent/tpsync-tool --version")
	assert.Error(t, err)
}

func TestExecStream(t *testing.T) {
	e := NewExec(zap.NewNop())

	var lines []string
	err := e.Stream(context.Background(), "printf 'a\\nb\\n'", func(line string) {
		lines = append(lines, line)
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, []string{"a", "b"}, lines)
}

func TestExecStartMissingBinary(t *testing.T) {
	e := NewExec(zap.NewNop())
	assert.False(t, e.Start("/nonexistent/tpsync-tool enable 1"))
}
