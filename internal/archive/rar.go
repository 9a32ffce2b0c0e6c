package archive

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/material-list/internal/common"
	"github.com/joseph-ayodele/material-list/internal/progress"
)

// extractRAR lists the archive with `unrar lb`, checks every name, then
// unpacks everything in one `unrar x` so solid archives are decompressed
// once. Progress ticks per listed member as each is found on disk.
func (e *Extractor) extractRAR(ctx context.Context, path, dest string, sink progress.Sink) (int, error) {
	tool, err := e.locator.Resolve()
	if err != nil {
		return 0, common.ExtractionError("rar archives need the unrar tool", err)
	}
	common.LoggerFromContext(ctx, e.logger).Debug("archive.unrar.resolved", "tool", tool)

	// "--" ends switch parsing, so names starting with '-' or '@' stay names.
	stdout, err := e.run(ctx, Command{Tool: tool, Args: []string{"lb", "-p-", "--", path}, Archive: path})
	if err != nil {
		return 0, common.ExtractionError("list rar archive", err)
	}
	members := parseListing(stdout)
	targets := make([]string, len(members))
	for i, m := range members {
		if targets[i], err = memberPath(dest, m); err != nil {
			return 0, common.ExtractionError("corrupt rar entry", err)
		}
	}

	destArg := filepath.Clean(dest) + string(filepath.Separator)
	if _, err := e.run(ctx, Command{Tool: tool, Args: []string{"x", "-o+", "-p-", "-y", "--", path, destArg}, Archive: path}); err != nil {
		return 0, common.ExtractionError("extract rar archive", err)
	}

	for i, target := range targets {
		if _, err := os.Lstat(target); err != nil {
			return i, common.ExtractionError(fmt.Sprintf("extract %s", members[i]), err)
		}
		sink.Progress(progress.Scale(progress.ExtractStart, progress.ExtractEnd, i+1, len(members)))
	}
	return len(members), nil
}

func (e *Extractor) run(ctx context.Context, cmd Command) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.ToolTimeout)
	defer cancel()
	return e.runner.Run(ctx, cmd)
}

// parseListing reads the bare member list printed by `unrar lb`.
func parseListing(out []byte) []string {
	var members []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		if line := strings.TrimRight(sc.Text(), "\r"); strings.TrimSpace(line) != "" {
			members = append(members, line)
		}
	}
	return members
}
