package settings

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gethiox/tpsync/internal/pkg/logger"
	"github.com/gethiox/tpsync/internal/pkg/shell"
	"go.uber.org/zap"
)

const DefaultGSettingsCommand = "gsettings"

const gsettingsTimeout = 5 * time.Second

// GSettings reads and writes one desktop schema through the gsettings tool.
type GSettings struct {
	command string
	schema  string
	runner  shell.Runner
	log     *zap.Logger
}

func NewGSettings(command, schema string, runner shell.Runner, log *zap.Logger) *GSettings {
	if command == "" {
		command = DefaultGSettingsCommand
	}
	if schema == "" {
		schema = TouchpadSchemaID
	}
	return &GSettings{command: command, schema: schema, runner: runner, log: log}
}

func (g *GSettings) cmd(args ...string) string {
	return g.command + " " + shell.Join(args...)
}

func (g *GSettings) Load(ctx context.Context, schema Schema) (map[string]any, error) {
	var values = make(map[string]any, len(schema.Keys))
	for _, k := range schema.Keys {
		qctx, cancel := context.WithTimeout(ctx, gsettingsTimeout)
		out, err := g.runner.Output(qctx, g.cmd("get", g.schema, k.Name))
		cancel()
		if err != nil {
			return nil, fmt.Errorf("gsettings get %s failed: %w", k.Name, err)
		}
		values[k.Name] = parseVariant(out)
	}
	return values, nil
}

func (g *GSettings) Save(ctx context.Context, key string, value any, _ map[string]any) error {
	qctx, cancel := context.WithTimeout(ctx, gsettingsTimeout)
	defer cancel()
	_, err := g.runner.Output(qctx, g.cmd("set", g.schema, key, formatVariant(value)))
	if err != nil {
		return fmt.Errorf("gsettings set %s failed: %w", key, err)
	}
	return nil
}

// Watch follows "gsettings monitor", every reported line triggers changed.
func (g *GSettings) Watch(ctx context.Context, changed func()) error {
	return g.runner.Stream(ctx, g.cmd("monitor", g.schema), func(line string) {
		g.log.Info("gsettings change", zap.String("line", line), logger.Debug)
		changed()
	})
}

// parseVariant decodes GVariant text format for the types stored in schemas.
func parseVariant(out string) any {
	s := strings.TrimSpace(out)
	for _, prefix := range []string{"uint32 ", "int32 ", "int64 ", "@as "} {
		s = strings.TrimPrefix(s, prefix)
	}

	switch {
	case s == "true":
		return true
	case s == "false":
		return false
	case strings.HasPrefix(s, "["):
		return parseStrv(s)
	case strings.HasPrefix(s, "'") || strings.HasPrefix(s, "\""):
		v, _ := unquoteVariant(s)
		return v
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return s
}

// unquoteVariant reads quoted string at the start of s, returning it and the rest of input.
func unquoteVariant(s string) (string, string) {
	if s == "" {
		return "", ""
	}
	quote := s[0]
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			i++
			b.WriteByte(s[i])
		case c == quote:
			return b.String(), s[i+1:]
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), ""
}

func parseStrv(s string) []string {
	var strv = []string{}
	rest := strings.TrimPrefix(s, "[")
	for {
		rest = strings.TrimLeft(rest, " ,")
		if rest == "" || rest[0] == ']' {
			return strv
		}
		if rest[0] != '\'' && rest[0] != '"' {
			return strv
		}
		var v string
		v, rest = unquoteVariant(rest)
		strv = append(strv, v)
	}
}

func quoteVariant(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

func formatVariant(value any) string {
	switch v := value.(type) {
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case string:
		return quoteVariant(v)
	case []string:
		var quoted = make([]string, 0, len(v))
		for _, e := range v {
			quoted = append(quoted, quoteVariant(e))
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	}
	return fmt.Sprint(value)
}
