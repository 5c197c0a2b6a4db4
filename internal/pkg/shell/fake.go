package shell

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Fake is a Runner replying with canned outputs, it records every executed command line.
// Used by tests of packages that drive external tools.
type Fake struct {
	mu       sync.Mutex
	Outputs  map[string]string // command line -> output
	Failing  map[string]bool   // command lines that fail
	NoSpawn  bool              // Start reports spawn failure
	Executed []string
	Started  []string
}

func NewFake() *Fake {
	return &Fake{
		Outputs: make(map[string]string),
		Failing: make(map[string]bool),
	}
}

func (f *Fake) Output(ctx context.Context, cmdline string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Executed = append(f.Executed, cmdline)
	if f.Failing[cmdline] {
		return "", fmt.Errorf("\"%s\" failed: exit status 1", cmdline)
	}
	out, ok := f.Outputs[cmdline]
	if !ok {
		return "", fmt.Errorf("\"%s\" failed: executable file not found", cmdline)
	}
	return strings.TrimSpace(out), nil
}

func (f *Fake) Start(cmdline string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.NoSpawn {
		return false
	}
	f.Started = append(f.Started, cmdline)
	return true
}

func (f *Fake) Stream(ctx context.Context, cmdline string, fn func(line string)) error {
	out, err := f.Output(ctx, cmdline)
	if err != nil {
		return err
	}
	for _, line := range strings.Split(out, "\n") {
		fn(line)
	}
	return nil
}

// TakeStarted returns and forgets recorded background commands.
func (f *Fake) TakeStarted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.Started
	f.Started = nil
	return s
}
