package archive

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// ErrToolNotFound is returned when no unrar executable can be located.
var ErrToolNotFound = errors.New("unrar executable not found")

const unrarName = "unrar"

// DefaultUnrarPaths lists the well-known unrar install locations for this OS,
// including a copy shipped next to our own executable.
func DefaultUnrarPaths() []string {
	var paths []string
	if runtime.GOOS == "windows" {
		paths = append(paths,
			`C:\Program Files\WinRAR\UnRAR.exe`,
			`C:\Program Files (x86)\WinRAR\UnRAR.exe`,
		)
	} else {
		paths = append(paths,
			"/usr/bin/unrar",
			"/usr/local/bin/unrar",
			"/opt/homebrew/bin/unrar",
		)
	}
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		paths = append(paths, filepath.Join(dir, "UnRAR.exe"), filepath.Join(dir, unrarName))
	}
	return paths
}

// ToolLocator finds the unrar executable on first use and remembers it.
// A failed lookup is not cached, so installing the tool fixes the next job.
type ToolLocator struct {
	candidates []string
	exists     func(path string) bool
	lookPath   func(file string) (string, error)

	mu       sync.Mutex
	resolved string
}

// NewToolLocator tries extra paths first, then DefaultUnrarPaths, then PATH.
func NewToolLocator(extra []string) *ToolLocator {
	return &ToolLocator{
		candidates: append(append([]string{}, extra...), DefaultUnrarPaths()...),
		exists:     isRegularFile,
		lookPath:   exec.LookPath,
	}
}

// Resolve returns the path of the unrar executable.
func (l *ToolLocator) Resolve() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.resolved != "" {
		return l.resolved, nil
	}
	for _, p := range l.candidates {
		if l.exists(p) {
			l.resolved = p
			return p, nil
		}
	}
	if p, err := l.lookPath(unrarName); err == nil {
		l.resolved = p
		return p, nil
	}
	return "", fmt.Errorf("%w (searched %s and PATH); install unrar or set UNRAR_PATHS",
		ErrToolNotFound, strings.Join(l.candidates, ", "))
}

func isRegularFile(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}
