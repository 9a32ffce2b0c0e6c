// Package app wires configuration into a ready-to-run orchestrator.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/material-list/constants"
	"github.com/joseph-ayodele/material-list/internal/archive"
	"github.com/joseph-ayodele/material-list/internal/catalog"
	"github.com/joseph-ayodele/material-list/internal/common"
	"github.com/joseph-ayodele/material-list/internal/entity"
	"github.com/joseph-ayodele/material-list/internal/export"
	"github.com/joseph-ayodele/material-list/internal/fieldextract"
	"github.com/joseph-ayodele/material-list/internal/ingest"
	"github.com/joseph-ayodele/material-list/internal/pipeline"
	"github.com/joseph-ayodele/material-list/internal/progress"
	"github.com/joseph-ayodele/material-list/internal/repository"
	"github.com/joseph-ayodele/material-list/internal/rules"
	"github.com/joseph-ayodele/material-list/internal/server"
	"github.com/joseph-ayodele/material-list/internal/sorting"
)

type App struct {
	Config       *common.Config
	Rules        rules.Rules
	Orchestrator *pipeline.Orchestrator
	History      repository.JobRepository // nil when HISTORY_DSN is empty

	extractor *archive.Extractor
	collector *ingest.Collector
	db        *repository.DB
	logger    *slog.Logger
}

// New loads the rules and, when configured, opens the history database.
func New(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := rules.Default()
	if cfg.RulesFile != "" {
		loaded, err := rules.Load(cfg.RulesFile)
		if err != nil {
			return nil, err
		}
		r = loaded
		logger.Info("rules loaded", "path", cfg.RulesFile, "field_key", r.FieldKey)
	}

	a := &App{Config: cfg, Rules: r, logger: logger}
	opts := []pipeline.Option{pipeline.WithScratchRoot(cfg.Archive.ScratchRoot)}
	if cfg.Output.ExportXLSX {
		opts = append(opts, pipeline.WithSpreadsheet(export.NewXLSXExporter(logger)))
	}
	if cfg.History.DSN != "" {
		db, err := server.ConnectDB(ctx, cfg.History.DSN, cfg.History.DialTimeout, logger)
		if err != nil {
			return nil, common.ConfigError("open history database", err)
		}
		a.db = db
		a.History = repository.NewJobRepository(db, logger)
		opts = append(opts, pipeline.WithHistory(a.History))
	}

	a.extractor = archive.NewExtractor(archive.Config{
		UnrarPaths:  cfg.Archive.UnrarPaths,
		ToolTimeout: cfg.Archive.ToolTimeout,
	}, logger)
	a.collector = ingest.NewCollector(r, fieldextract.New(r, logger), logger)
	a.Orchestrator = pipeline.NewOrchestrator(
		a.extractor,
		a.collector,
		export.NewRenderer(r, logger),
		logger,
		opts...,
	)
	return a, nil
}

// NewJob builds a job for input with the configured thickness filter.
func (a *App) NewJob(input, documentName string) (*entity.ExtractJob, error) {
	job, err := entity.NewExtractJob(input, documentName)
	if err != nil {
		return nil, err
	}
	if err := job.FilterThickness(a.Config.Output.Thickness); err != nil {
		return nil, err
	}
	return job, nil
}

// Search collects the materials under input (a folder or an archive) and
// returns those matching q, sorted like the document.
func (a *App) Search(ctx context.Context, input string, q catalog.Query) (catalog.Result, error) {
	root, cleanup, err := a.materialRoot(ctx, input)
	if err != nil {
		return catalog.Result{}, err
	}
	defer cleanup()

	entries, _, err := a.collector.Collect(ctx, root, progress.Nop{})
	if err != nil {
		return catalog.Result{}, err
	}
	res, err := catalog.Search(entries, q)
	if err != nil {
		return catalog.Result{}, err
	}
	res.Matches = sorting.Entries(res.Matches)
	a.logger.Info("catalog.search", "input", input, "term", res.Term, "thickness_mm", q.Thickness,
		"matches", len(res.Matches), "broadened", res.Broadened)
	return res, nil
}

// Stock reads the stock tables of one material from dir, or from the
// configured STOCK_DIR when dir is empty.
func (a *App) Stock(dir, code string, kind catalog.Kind) (catalog.Stock, error) {
	if dir == "" {
		dir = a.Config.Stock.Dir
	}
	if dir == "" {
		return catalog.Stock{}, common.ConfigError("no stock directory: set STOCK_DIR or --dir", nil)
	}
	return catalog.NewStockReader(dir, a.logger).Stock(code, kind)
}

// materialRoot returns the folder to collect from, extracting archives into
// a scratch directory that cleanup removes.
func (a *App) materialRoot(ctx context.Context, input string) (string, func(), error) {
	noop := func() {}
	info, err := os.Stat(input)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", noop, common.InvalidInputError(fmt.Sprintf("input not found: %s", input), err)
		}
		return "", noop, common.InvalidInputError(fmt.Sprintf("cannot access input: %s", input), err)
	}
	if info.IsDir() {
		return input, noop, nil
	}
	if !constants.IsArchiveExt(filepath.Ext(input)) {
		return "", noop, common.InvalidInputError(
			fmt.Sprintf("unsupported input %s: expected a folder, .zip or .rar file", filepath.Base(input)), nil)
	}
	scratch, err := os.MkdirTemp(a.Config.Archive.ScratchRoot, "material-search-*")
	if err != nil {
		return "", noop, common.ExtractionError("create scratch directory", err)
	}
	cleanup := func() {
		if err := os.RemoveAll(scratch); err != nil {
			a.logger.Warn("scratch cleanup failed", "dir", scratch, "error", err)
		}
	}
	if err := a.extractor.Extract(ctx, input, scratch, progress.Nop{}); err != nil {
		cleanup()
		return "", noop, err
	}
	return scratch, cleanup, nil
}

// Ping checks the history database; it is a no-op when history is off.
func (a *App) Ping(ctx context.Context) error {
	if a.db == nil {
		return nil
	}
	return server.PingDB(ctx, a.db, a.logger, 2*time.Second)
}

func (a *App) Close() {
	if a.db != nil {
		a.db.Close(a.logger)
	}
}

// DocumentNameFor names the PDF of an inbox archive after the archive, so
// several archives in one folder do not overwrite each other's output.
func DocumentNameFor(archivePath, base string) string {
	stem := strings.TrimSuffix(filepath.Base(archivePath), filepath.Ext(archivePath))
	return stem + "-" + constants.EnsurePDFName(base)
}

// LogSink mirrors job progress and log lines into a structured logger.
type LogSink struct {
	Logger *slog.Logger
	JobID  string
}

func (s LogSink) Progress(p int)  { s.Logger.Debug("job.progress", "job_id", s.JobID, "percent", p) }
func (s LogSink) Log(line string) { s.Logger.Info("job.log", "job_id", s.JobID, "line", line) }
