// Package pipeline runs one material-list job: extract, collect, sort,
// render.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/joseph-ayodele/material-list/constants"
	"github.com/joseph-ayodele/material-list/internal/catalog"
	"github.com/joseph-ayodele/material-list/internal/common"
	"github.com/joseph-ayodele/material-list/internal/entity"
	"github.com/joseph-ayodele/material-list/internal/export"
	"github.com/joseph-ayodele/material-list/internal/ingest"
	"github.com/joseph-ayodele/material-list/internal/progress"
	"github.com/joseph-ayodele/material-list/internal/sorting"
)

type Extractor interface {
	Extract(ctx context.Context, archivePath, destDir string, sink progress.Sink) error
}

type Collector interface {
	Collect(ctx context.Context, root string, sink progress.Sink) ([]entity.MaterialEntry, ingest.DirStats, error)
}

type Renderer interface {
	Render(ctx context.Context, doc export.Document, path string) (export.Result, error)
}

// Spreadsheet writes the optional XLSX copy of the list.
type Spreadsheet interface {
	Write(entries []entity.MaterialEntry, path string) error
}

// JobRecorder stores finished jobs.
type JobRecorder interface {
	Record(ctx context.Context, rec entity.JobRecord) error
}

// Orchestrator runs at most one job at a time; a second Start or Run while
// a job is in flight fails with common.ErrBusy.
type Orchestrator struct {
	extractor   Extractor
	collector   Collector
	renderer    Renderer
	spreadsheet Spreadsheet
	history     JobRecorder
	scratchRoot string
	eventBuffer int
	logger      *slog.Logger

	busy atomic.Bool
}

type Option func(*Orchestrator)

// WithSpreadsheet also writes an XLSX beside every PDF.
func WithSpreadsheet(s Spreadsheet) Option {
	return func(o *Orchestrator) { o.spreadsheet = s }
}

// WithHistory records every terminal job.
func WithHistory(h JobRecorder) Option {
	return func(o *Orchestrator) { o.history = h }
}

// WithScratchRoot sets where archive scratch directories are created
// (default: os.TempDir).
func WithScratchRoot(dir string) Option {
	return func(o *Orchestrator) { o.scratchRoot = dir }
}

// WithEventBuffer sizes the channel returned by Start.
func WithEventBuffer(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.eventBuffer = n
		}
	}
}

func NewOrchestrator(ex Extractor, col Collector, r Renderer, logger *slog.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		extractor:   ex,
		collector:   col,
		renderer:    r,
		eventBuffer: 64,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Busy reports whether a job is in flight.
func (o *Orchestrator) Busy() bool {
	return o.busy.Load()
}

// Start runs job on its own goroutine. The returned channel carries progress
// and log events followed by one EventDone, then closes; callers must drain
// it. The orchestrator is free again before EventDone is delivered.
func (o *Orchestrator) Start(ctx context.Context, job *entity.ExtractJob) (<-chan Event, error) {
	if err := o.acquire(job); err != nil {
		return nil, err
	}
	ch := make(chan Event, o.eventBuffer)
	go func() {
		defer close(ch)
		out, _ := o.process(ctx, job, chanSink(ch))
		o.busy.Store(false)
		ch <- Event{Kind: EventDone, Outcome: out}
	}()
	return ch, nil
}

// Run is the synchronous form of Start. The returned error is the job's
// failure cause (nil on success) or common.ErrBusy.
func (o *Orchestrator) Run(ctx context.Context, job *entity.ExtractJob, sink progress.Sink) (entity.Outcome, error) {
	if err := o.acquire(job); err != nil {
		return entity.Outcome{}, err
	}
	defer o.busy.Store(false)
	return o.process(ctx, job, sink)
}

func (o *Orchestrator) acquire(job *entity.ExtractJob) error {
	if job == nil {
		return common.InvalidInputError("job is required", nil)
	}
	if !o.busy.CompareAndSwap(false, true) {
		o.logger.Warn("pipeline.rejected", "job_id", job.ID, "reason", "busy")
		return common.ErrBusy
	}
	return nil
}

// process drives the job to a terminal state. The scratch directory is gone
// and the job recorded before it returns, on every path including panics.
// A failed job leaves no document or spreadsheet behind.
func (o *Orchestrator) process(ctx context.Context, job *entity.ExtractJob, sink progress.Sink) (out entity.Outcome, err error) {
	logger := o.logger.With("job_id", job.ID.String())
	ctx = common.WithLogger(common.WithJobID(ctx, job.ID.String()), logger)
	rep := newReporter(sink, logger)
	job.StartedAt = time.Now().UTC()
	logger.Info("pipeline.start", "input", job.InputPath, "document", job.DocumentName, "thickness_mm", job.Thickness)

	var written []string
	defer func() {
		if r := recover(); r != nil {
			logger.Error("pipeline.panic", "panic", r, "stack", string(debug.Stack()))
			out, err = entity.Outcome{}, common.UnexpectedError(fmt.Sprintf("unexpected failure: %v", r), nil)
		}
		o.removeScratch(job, logger)
		if err != nil {
			removeOutputs(written, logger)
		}

		finished := time.Now().UTC()
		job.FinishedAt = &finished
		if err != nil {
			progress.Logf(rep, "Error: %v", err)
			out = entity.Outcome{
				Success: false,
				Message: fmt.Sprintf("Error while processing: %v", err),
				Kind:    common.KindOf(err),
				Entries: out.Entries,
			}
			job.Status = constants.JobStatusFailed
			logger.Error("pipeline.failed", "kind", out.Kind, "error", err,
				"elapsed_ms", finished.Sub(job.StartedAt).Milliseconds())
		} else {
			job.Status = constants.JobStatusDone
			logger.Info("pipeline.done", "output", out.OutputPath, "entries", out.Entries, "pages", out.Pages,
				"elapsed_ms", finished.Sub(job.StartedAt).Milliseconds())
		}
		o.record(ctx, job, out, logger)
	}()

	return o.execute(ctx, job, rep, logger, &written)
}

// execute appends every output path to written before creating it.
func (o *Orchestrator) execute(ctx context.Context, job *entity.ExtractJob, rep *reporter, logger *slog.Logger, written *[]string) (entity.Outcome, error) {
	var out entity.Outcome
	if job.Thickness < 0 {
		return out, common.InvalidInputError(fmt.Sprintf("thickness must not be negative: %d", job.Thickness), nil)
	}

	info, err := os.Stat(job.InputPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return out, common.InvalidInputError(fmt.Sprintf("input not found: %s", job.InputPath), err)
		}
		return out, common.InvalidInputError(fmt.Sprintf("cannot access input: %s", job.InputPath), err)
	}

	root, outDir := job.InputPath, job.InputPath
	if !info.IsDir() {
		if !constants.IsArchiveExt(filepath.Ext(job.InputPath)) {
			return out, common.InvalidInputError(
				fmt.Sprintf("unsupported input %s: expected a folder, .zip or .rar file", filepath.Base(job.InputPath)), nil)
		}
		outDir = filepath.Dir(job.InputPath)

		o.setStatus(job, constants.JobStatusExtracting, logger)
		progress.Logf(rep, "Extracting archive: %s", job.InputPath)
		scratch, err := os.MkdirTemp(o.scratchRoot, "material-list-*")
		if err != nil {
			return out, common.ExtractionError("create scratch directory", err)
		}
		job.ScratchDir = scratch
		if err := o.extractor.Extract(ctx, job.InputPath, scratch, rep); err != nil {
			return out, asKind(err, common.CodeExtraction, "extract archive")
		}
		root = scratch
	}

	o.setStatus(job, constants.JobStatusParsing, logger)
	progress.Logf(rep, "Processing INI files...")
	entries, stats, err := o.collector.Collect(ctx, root, rep)
	if err != nil {
		return out, asKind(err, common.CodeUnexpected, "collect entries")
	}
	out.Entries = len(entries)
	if stats.Matched == 0 || len(entries) == 0 {
		progress.Logf(rep, "No data found in the files.")
		return out, common.NoDataError("no data was found in the INI files")
	}

	if job.Thickness > 0 {
		entries = catalog.FilterThickness(entries, job.Thickness)
		out.Entries = len(entries)
		if len(entries) == 0 {
			progress.Logf(rep, "No material found with thickness %dmm.", job.Thickness)
			return out, common.NoDataError(fmt.Sprintf("no material with thickness %dmm", job.Thickness))
		}
	}

	o.setStatus(job, constants.JobStatusSorting, logger)
	progress.Logf(rep, "Found %d materials. Sorting...", len(entries))
	sorted := sorting.Entries(entries)

	o.setStatus(job, constants.JobStatusRendering, logger)
	job.OutputPath = filepath.Join(outDir, constants.ThicknessPDFName(job.DocumentName, job.Thickness))
	progress.Logf(rep, "Generating PDF: %s", job.OutputPath)
	*written = append(*written, job.OutputPath)
	res, err := o.renderer.Render(ctx, export.Document{Entries: sorted, Thickness: job.Thickness}, job.OutputPath)
	if err != nil {
		return out, asKind(err, common.CodeRender, "render document")
	}
	out.Pages = res.Pages

	if o.spreadsheet != nil {
		xlsx := export.XLSXPathFor(job.OutputPath)
		*written = append(*written, xlsx)
		if err := o.spreadsheet.Write(sorted, xlsx); err != nil {
			return out, asKind(err, common.CodeRender, "write spreadsheet")
		}
		progress.Logf(rep, "Spreadsheet saved: %s", xlsx)
		out.XLSXPath = xlsx
	}

	rep.Progress(progress.RenderEnd)
	progress.Logf(rep, "PDF saved successfully!")
	out.Success = true
	out.Message = "PDF generated successfully!"
	out.OutputPath = job.OutputPath
	return out, nil
}

func (o *Orchestrator) setStatus(job *entity.ExtractJob, s constants.JobStatus, logger *slog.Logger) {
	job.Status = s
	logger.Debug("pipeline.status", "status", string(s))
}

func (o *Orchestrator) removeScratch(job *entity.ExtractJob, logger *slog.Logger) {
	if job.ScratchDir == "" {
		return
	}
	if err := os.RemoveAll(job.ScratchDir); err != nil {
		logger.Warn("pipeline.scratch.cleanup_failed", "dir", job.ScratchDir, "error", err)
		return
	}
	logger.Debug("pipeline.scratch.removed", "dir", job.ScratchDir)
}

func removeOutputs(paths []string, logger *slog.Logger) {
	for _, p := range paths {
		err := os.Remove(p)
		switch {
		case err == nil:
			logger.Debug("pipeline.output.removed", "path", p)
		case !errors.Is(err, fs.ErrNotExist):
			logger.Warn("pipeline.output.cleanup_failed", "path", p, "error", err)
		}
	}
}

// record stores the finished job; ledger failures never change the outcome.
func (o *Orchestrator) record(ctx context.Context, job *entity.ExtractJob, out entity.Outcome, logger *slog.Logger) {
	if o.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := o.history.Record(ctx, entity.RecordOf(job, out)); err != nil {
		logger.Warn("pipeline.history.failed", "error", err)
	}
}

// asKind keeps an AppError as is and wraps anything else under code.
func asKind(err error, code, msg string) error {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return common.NewAppError(code, msg, err)
}
