package main

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gethiox/tpsync/internal/pkg/logger"
	"github.com/logrusorgru/aurora"
	"golang.org/x/term"
)

type TimeNanosecond time.Time

func (j *TimeNanosecond) UnmarshalJSON(b []byte) error {
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return err
	}
	*j = TimeNanosecond(time.Unix(0, v))
	return nil
}

type Entry struct {
	Ts     TimeNanosecond `json:"ts"`
	Caller string         `json:"caller"`
	Msg    string         `json:"msg"`
	Level  int            `json:"level"`

	Device     string `json:"device_name"`
	DeviceType string `json:"device_type"`
	Schema     string `json:"schema"`
	Key        string `json:"key"`
	Command    string `json:"command"`
	Path       string `json:"path"`
}

func unpack(data []byte) (Entry, error) {
	var v Entry
	err := json.Unmarshal(data, &v)
	return v, err
}

func gray(v uint8) aurora.Color {
	if v > 23 {
		v = 23
	}
	return aurora.Color(232+v) << 16
}

func color(r, g, b uint8) aurora.Color {
	return aurora.Color(16+36*r+6*g+b) << 16
}

func terminator(r rune) bool {
	if r >= 0x40 && r <= 0x7e {
		return true
	}
	return false
}

// returns random color for string, will return the same color for the same string
func colorForString(au aurora.Aurora, s string) aurora.Value {
	h := fnv.New32a()
	h.Write([]byte(s))
	sum := h.Sum32()

	r, g, b := uint8(sum)&0b00000111, uint8(sum>>8)&0b00000111, uint8(sum>>16)&0b00000111
	if r > 5 {
		r = 5
	}
	if g > 5 {
		g = 5
	}
	if b > 5 {
		b = 5
	}

	// avoid dark colors
	if r+g+b < 3 {
		r += 1
		g += 1
		b += 1
	}

	return au.Index(16+36*r+6*g+b, s)
}

// rawStringLen returns a len of string ignoring included escape sequences
func rawStringLen(s string) int {
	var sequence bool
	var escLens []int
	var escLen int

	for i, r := range s {
		if !sequence {
			if r == '\033' {
				if i >= len(s)-1 { // esc seems to be last character
					continue
				}
				if s[i+1] == '[' {
					sequence = true
					escLen += 1
					continue
				}

			}
		} else {
			if r == '[' && s[i-1] == '\033' {
				escLen += 1
				continue
			}
			if terminator(r) {
				sequence = false
				escLen += 1
				escLens = append(escLens, escLen)
				escLen = 0
			} else {
				escLen += 1
			}
		}
	}
	var sum int
	for _, x := range escLens {
		sum += x
	}
	return len(s) - sum
}

func prepareString(msg Entry, au aurora.Aurora, width, logLevel int) string {
	if msg.Level > logLevel {
		return ""
	}

	var msgColor aurora.Color

	switch msg.Level {
	case logger.ErrorLvl:
		msgColor = color(5, 1, 1)
	case logger.WarningLvl:
		msgColor = color(5, 5, 1)
	case logger.InfoLvl:
		msgColor = gray(18)
	case logger.ActionLvl:
		msgColor = color(1, 5, 2)
	case logger.DebugLvl:
		msgColor = gray(9)
	}

	t := time.Time(msg.Ts)
	tf := t.Format("15:04:05.000")

	timestamp := fmt.Sprintf(
		"[%s]",
		au.Reset(tf).Colorize(color(1, 1, 5)).String(),
	)

	fields := ""
	if msg.Schema != "" {
		fields += fmt.Sprintf(" [schema=%s]", colorForString(au, msg.Schema).String())
	}
	if msg.Key != "" {
		fields += fmt.Sprintf(" [key=%s]", colorForString(au, msg.Key).String())
	}
	if msg.DeviceType != "" {
		fields += fmt.Sprintf(" [type=%s]", colorForString(au, msg.DeviceType).String())
	}
	if msg.Device != "" {
		fields += fmt.Sprintf(" [dev=%s]", colorForString(au, msg.Device).String())
	}
	if msg.Path != "" {
		fields += fmt.Sprintf(" [path=%s]", colorForString(au, msg.Path).String())
	}
	if msg.Command != "" {
		fields += fmt.Sprintf(" [cmd=%s]", colorForString(au, msg.Command).String())
	}
	if logLevel >= logger.DebugLvl && msg.Caller != "" {
		x := strings.SplitN(msg.Caller, ":", 2)
		if len(x) == 2 {
			fields += fmt.Sprintf(" (%s:%s)", colorForString(au, x[0]).String(), x[1])
		}
	}

	if fields != "" {
		fields = fields[1:] // removing one space at the beginning
	}

	if width > -1 {
		fieldsLen := rawStringLen(fields)
		timeLen := rawStringLen(timestamp)
		msgLen := len(msg.Msg)

		var m string
		freeSpace := width - (timeLen + 1 + msgLen + 1 + fieldsLen)
		if freeSpace < 0 {
			limit := (width - (fieldsLen + 1 + timeLen + 1)) - 3
			if limit < 20 {
				m = au.Reset(msg.Msg).Colorize(msgColor).String()
				fields = au.Gray(12, "(fields hidden)").String()
				freeSpace = width - (timeLen + 1 + msgLen + 1 + rawStringLen(fields))
				if freeSpace < 0 {
					freeSpace = 0
				}
			} else {
				m = au.Reset(msg.Msg[:limit] + "(…)").Colorize(msgColor).String()
				freeSpace = 0
			}
		} else {
			m = au.Reset(msg.Msg).Colorize(msgColor).String()
		}

		separators := strings.Repeat(" ", freeSpace)

		return fmt.Sprintf("%s %s%s %s", timestamp, m, separators, fields)
	}

	m := au.Reset(msg.Msg).Colorize(msgColor).String()
	if fields == "" {
		return fmt.Sprintf("%s %s", timestamp, m)
	}
	return fmt.Sprintf("%s %s %s", timestamp, m, fields)
}

// terminalWidth reports current width of terminal attached to f, -1 when f is not a terminal
// and lines are printed without padding or truncation.
func terminalWidth(f *os.File) func() int {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return func() int { return -1 }
	}
	return func() int {
		width, _, err := term.GetSize(fd)
		if err != nil {
			return -1
		}
		return width
	}
}

// printLogs writes log entries until messages is closed.
// Debug entries are printed only when debug returns true.
func printLogs(out io.Writer, messages <-chan []byte, au aurora.Aurora, width func() int, logLevel int, debug func() bool) {
	for data := range messages {
		msg, err := unpack(data)
		if err != nil {
			fmt.Fprintf(out, "%s\n", string(data))
			continue
		}
		level := logLevel
		if debug() {
			level = logger.DebugLvl
		}
		m := prepareString(msg, au, width(), level)
		if m != "" {
			fmt.Fprintf(out, "%s\n", m)
		}
	}
}
