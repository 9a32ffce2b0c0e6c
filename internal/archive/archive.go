// Package archive unpacks .zip and .rar inputs into a job's scratch directory.
package archive

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/material-list/constants"
	"github.com/joseph-ayodele/material-list/internal/common"
	"github.com/joseph-ayodele/material-list/internal/progress"
)

type Config struct {
	UnrarPaths  []string      // tried before the default locations
	ToolTimeout time.Duration // per unrar invocation; 0 -> 2m
}

// Extractor unpacks archives. It owns its unrar locator, so the tool is
// resolved once per Extractor rather than per process.
type Extractor struct {
	cfg     Config
	runner  Runner
	locator *ToolLocator
	logger  *slog.Logger
}

type Option func(*Extractor)

// WithRunner replaces the command runner used for unrar.
func WithRunner(r Runner) Option {
	return func(e *Extractor) {
		if r != nil {
			e.runner = r
		}
	}
}

// WithLocator replaces the unrar locator.
func WithLocator(l *ToolLocator) Option {
	return func(e *Extractor) {
		if l != nil {
			e.locator = l
		}
	}
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ToolTimeout <= 0 {
		cfg.ToolTimeout = 2 * time.Minute
	}
	e := &Extractor{
		cfg:     cfg,
		runner:  execRunner{logger: logger},
		locator: NewToolLocator(cfg.UnrarPaths),
		logger:  logger,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Supported reports whether path has a .zip or .rar extension (any case).
func Supported(path string) bool {
	return constants.IsArchiveExt(filepath.Ext(path))
}

// Extract unpacks archivePath into destDir, ticking sink once per member on
// the 0-50 range. Every failure is an EXTRACTION_ERROR; destDir may then hold
// a partial tree that the caller must discard.
func (e *Extractor) Extract(ctx context.Context, archivePath, destDir string, sink progress.Sink) error {
	if sink == nil {
		sink = progress.Nop{}
	}
	start := time.Now()
	logger := common.LoggerFromContext(ctx, e.logger)
	ext := constants.NormalizeExt(filepath.Ext(archivePath))
	logger.Debug("archive.extract.start", "path", archivePath, "format", ext, "dest", destDir)

	var (
		n   int
		err error
	)
	switch ext {
	case constants.ExtZIP:
		n, err = e.extractZip(ctx, archivePath, destDir, sink)
	case constants.ExtRAR:
		n, err = e.extractRAR(ctx, archivePath, destDir, sink)
	default:
		err = common.ExtractionError(fmt.Sprintf("unsupported archive extension %q", ext), nil)
	}
	if err != nil {
		logger.Error("archive.extract.failed", "path", archivePath, "error", err)
		progress.Logf(sink, "Error extracting archive: %v", err)
		return err
	}

	progress.Logf(sink, "%s archive extracted: %d members", strings.ToUpper(ext), n)
	logger.Info("archive.extract.ok",
		"path", archivePath,
		"members", n,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// memberPath joins name under dest, refusing names that escape it.
func memberPath(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("member %q escapes the extraction directory", name)
	}
	return target, nil
}
