package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sys/unix"
)

// Entry is a lazily listed directory of device nodes, like /dev/input
type Entry struct {
	path string

	listed bool
	nodes  []string
}

func NewEntry(path string) Entry {
	return Entry{
		path: path,
	}
}

func (e *Entry) list() error {
	entries, err := os.ReadDir(e.path)
	if err != nil {
		return fmt.Errorf("cannot read \"%s\" directory: %w", e.path, err)
	}

	var nodes = make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		nodes = append(nodes, entry.Name())
	}
	sort.Strings(nodes)

	e.nodes = nodes
	e.listed = true
	return nil
}

// Nodes returns full paths of non-directory entries whose names start with prefix.
func (e *Entry) Nodes(prefix string) ([]string, error) {
	if !e.listed {
		err := e.list()
		if err != nil {
			return nil, err
		}
	}

	var paths []string
	for _, name := range e.nodes {
		if strings.HasPrefix(name, prefix) {
			paths = append(paths, filepath.Join(e.path, name))
		}
	}
	return paths, nil
}

// Readable reports whether current process may open given node for reading.
func Readable(path string) bool {
	return unix.Access(path, unix.R_OK) == nil
}

