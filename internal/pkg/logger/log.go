package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	ErrorLvl   = 0
	WarningLvl = 1
	InfoLvl    = 2
	ActionLvl  = 3 // state changes applied to devices or settings

	DebugLvl = 378
)

var (
	Error   = zap.Int("level", ErrorLvl)
	Warning = zap.Int("level", WarningLvl)
	Info    = zap.Int("level", InfoLvl)
	Action  = zap.Int("level", ActionLvl)

	Debug = zap.Int("level", DebugLvl)
)

// Options is the process-wide debug configuration. One instance is created by the daemon
// and handed to every component that needs to know about debugging.
type Options struct {
	mu      sync.Mutex
	debug   bool
	toFile  bool
	logPath string
	file    *os.File
}

func NewOptions(logPath string) *Options {
	return &Options{logPath: logPath}
}

func (o *Options) Debug() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.debug
}

func (o *Options) ToFile() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.debug && o.toFile
}

func (o *Options) LogPath() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.logPath
}

// SetLogPath changes debug log location, already open file is used until debugging is reconfigured.
func (o *Options) SetLogPath(path string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.logPath = path
}

// SetDebug updates debug flags. Enabling file logging (re)creates the log file with a header line,
// the file is appended to afterwards and never rotated.
func (o *Options) SetDebug(debug, toFile bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.debug = debug
	o.toFile = toFile

	if !(debug && toFile) || o.logPath == "" {
		if o.file != nil {
			err := o.file.Close()
			o.file = nil
			if err != nil {
				return fmt.Errorf("cannot close \"%s\" log file: %w", o.logPath, err)
			}
		}
		return nil
	}

	if o.file != nil {
		return nil
	}

	err := os.MkdirAll(filepath.Dir(o.logPath), 0o755)
	if err != nil {
		return fmt.Errorf("cannot create log directory: %w", err)
	}
	err = os.WriteFile(o.logPath, []byte(o.logPath+"\n"), 0o644)
	if err != nil {
		return fmt.Errorf("cannot create \"%s\" log file: %w", o.logPath, err)
	}
	fd, err := os.OpenFile(o.logPath, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("cannot open \"%s\" log file: %w", o.logPath, err)
	}
	o.file = fd
	return nil
}

func (o *Options) writeFile(p []byte) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.file == nil {
		return
	}
	_, _ = o.file.Write(p)
	_, _ = o.file.Write([]byte{'\n'})
}

// Close releases the log file, if any.
func (o *Options) Close() error {
	return o.SetDebug(o.Debug(), false)
}

type chanWriter struct {
	sync.Mutex
	messages chan<- []byte
	opts     *Options
}

func (w *chanWriter) Write(p []byte) (n int, err error) {
	w.Lock()
	var newSlice = make([]byte, len(p))
	copy(newSlice, p)
	w.messages <- newSlice
	w.Unlock()

	if w.opts != nil {
		w.opts.writeFile(newSlice)
	}
	return len(p), nil
}

func (w *chanWriter) Sync() error {
	return nil
}

// GetLogger returns logger emitting JSON entries into messages channel.
// messages has to be consumed, otherwise logging blocks.
func GetLogger(opts *Options, messages chan<- []byte) *zap.Logger {
	writer := &chanWriter{messages: messages, opts: opts}
	cfg := zap.NewProductionEncoderConfig()
	cfg.SkipLineEnding = true
	cfg.EncodeTime = zapcore.EpochNanosTimeEncoder
	cfg.LevelKey = ""
	encoder := zapcore.NewJSONEncoder(cfg)
	noSync := zapcore.Lock(writer)

	logger := zap.New(
		zapcore.NewCore(encoder, noSync, zap.DebugLevel),
		zap.AddCaller(),
	)

	return logger
}
