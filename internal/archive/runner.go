package archive

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/material-list/internal/common"
)

// Command is one external tool invocation made on behalf of an archive.
type Command struct {
	Tool    string
	Args    []string
	Archive string // logged with every run
}

// Runner executes archive tools. Tests swap in a fake.
type Runner interface {
	Run(ctx context.Context, cmd Command) (stdout []byte, err error)
}

// maxStderr caps the tool output kept in errors and logs.
const maxStderr = 512

// ToolError is a tool run that exited with an error.
type ToolError struct {
	Tool   string
	Stderr string // trimmed, at most maxStderr bytes
	Err    error
}

func (e *ToolError) Error() string {
	name := filepath.Base(e.Tool)
	if e.Stderr == "" {
		return fmt.Sprintf("%s: %v", name, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", name, e.Err, e.Stderr)
}

func (e *ToolError) Unwrap() error { return e.Err }

type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, cmd Command) ([]byte, error) {
	start := time.Now()
	logger := common.LoggerFromContext(ctx, r.logger).With(
		"archive", cmd.Archive,
		"tool", filepath.Base(cmd.Tool),
	)
	logger.Debug("archive.tool.run", "args", strings.Join(cmd.Args, " "))

	c := exec.CommandContext(ctx, cmd.Tool, cmd.Args...)
	var out, errb bytes.Buffer
	c.Stdout = &out
	c.Stderr = &errb

	if err := c.Run(); err != nil {
		stderr := truncate(strings.TrimSpace(errb.String()), maxStderr)
		logger.Error("archive.tool.failed",
			"elapsed_ms", time.Since(start).Milliseconds(),
			"error", err,
			"stderr", stderr,
		)
		return out.Bytes(), &ToolError{Tool: cmd.Tool, Stderr: stderr, Err: err}
	}
	logger.Debug("archive.tool.ok",
		"elapsed_ms", time.Since(start).Milliseconds(),
		"stdout_bytes", out.Len(),
	)
	return out.Bytes(), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
