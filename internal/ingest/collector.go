package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/material-list/constants"
	"github.com/joseph-ayodele/material-list/internal/common"
	"github.com/joseph-ayodele/material-list/internal/entity"
	"github.com/joseph-ayodele/material-list/internal/progress"
	"github.com/joseph-ayodele/material-list/internal/rules"
)

// Collector turns a directory of INI files into material entries.
type Collector struct {
	rules  rules.Rules
	fields FieldExtractor
	logger *slog.Logger
}

func NewCollector(r rules.Rules, fields FieldExtractor, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{rules: r, fields: fields, logger: logger}
}

// Collect walks root recursively, reads the material from every file with
// the config extension and returns one entry per file that has both a
// label and a code. Progress ticks once per file on the 50-90 range, scaled
// against the number of files found by the walk.
func (c *Collector) Collect(ctx context.Context, root string, sink progress.Sink) ([]entity.MaterialEntry, DirStats, error) {
	if sink == nil {
		sink = progress.Nop{}
	}
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, common.InvalidInputError("root path is required", nil)
	}
	start := time.Now()
	logger := common.LoggerFromContext(ctx, c.logger)

	files, stats, err := c.find(root)
	if err != nil {
		return nil, stats, err
	}
	total := len(files)
	progress.Logf(sink, "Found %d %s files to process", total, strings.ToUpper(c.rules.Ext()))

	var entries []entity.MaterialEntry
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return entries, stats, common.WrapError(err, "collection interrupted")
		}
		if e, ok := c.entryFor(path, sink); ok {
			entries = append(entries, e)
			stats.Extracted++
		} else {
			stats.Skipped++
		}
		sink.Progress(progress.Scale(progress.ParseStart, progress.ParseEnd, i+1, total))
	}

	progress.Logf(sink, "Processing finished. Entries extracted: %d/%d", len(entries), total)
	logger.Info("ingest.collect.done",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"extracted", stats.Extracted,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return entries, stats, nil
}

// find lists the config files under root. Unreadable subdirectories are
// counted as failures and skipped; an unreadable root is an error.
func (c *Collector) find(root string) ([]string, DirStats, error) {
	ext := c.rules.Ext()
	var (
		files []string
		stats DirStats
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			c.logger.Warn("ingest.walk.error", "path", path, "error", walkErr)
			stats.Failed++
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if constants.NormalizeExt(filepath.Ext(path)) != ext {
			return nil
		}
		stats.Matched++
		files = append(files, path)
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, stats, common.InvalidInputError(fmt.Sprintf("folder not found: %s", root), err)
		}
		return nil, stats, common.WrapError(err, "walk")
	}
	return files, stats, nil
}

func (c *Collector) entryFor(path string, sink progress.Sink) (entity.MaterialEntry, bool) {
	e, ok := c.fields.ExtractMaterial(path, sink)
	if !ok {
		c.logger.Debug("ingest.file.skipped", "path", path, "reason", "no label")
		return entity.MaterialEntry{}, false
	}
	name := filepath.Base(path)
	e.Code = c.rules.CodeFromStem(strings.TrimSuffix(name, filepath.Ext(name)))
	if !e.Valid() {
		c.logger.Debug("ingest.file.skipped", "path", path, "reason", "empty code")
		return entity.MaterialEntry{}, false
	}
	return e, true
}
