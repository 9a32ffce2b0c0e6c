package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/joseph-ayodele/material-list/internal/common"
	"github.com/joseph-ayodele/material-list/internal/entity"
	"github.com/joseph-ayodele/material-list/internal/rules"
)

const timestampLayout = "02/01/2006 15:04:05"

// Renderer draws the material list onto A4 pages.
type Renderer struct {
	rules    rules.Rules
	layout   Layout
	now      func() time.Time
	compress bool
	logger   *slog.Logger

	pageCount func(path string) (int, error)
}

type RenderOption func(*Renderer)

// WithClock fixes the footer timestamp source.
func WithClock(now func() time.Time) RenderOption {
	return func(r *Renderer) {
		if now != nil {
			r.now = now
		}
	}
}

func WithLayout(l Layout) RenderOption {
	return func(r *Renderer) { r.layout = l }
}

func NewRenderer(rl rules.Rules, logger *slog.Logger, opts ...RenderOption) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Renderer{
		rules:    rl,
		layout:   A4(),
		now:      time.Now,
		compress: true,
		logger:   logger,

		pageCount: api.PageCountFile,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Result describes a written document.
type Result struct {
	Pages   int
	Rows    int
	Footers int
	Plan    []int // rows per page
}

// Document is what Render draws. A positive Thickness marks a list filtered
// to one thickness: rows carry it and the title line names it.
type Document struct {
	Entries   []entity.MaterialEntry
	Thickness int
}

func (d Document) row(i int) string {
	if d.Thickness > 0 {
		return d.Entries[i].WithThickness()
	}
	return d.Entries[i].String()
}

// Render writes the document to path, two entries per row, with a footer on
// every page, then re-reads the file to check its page count. No file is
// left at path when it fails.
func (r *Renderer) Render(ctx context.Context, doc Document, path string) (Result, error) {
	start := time.Now()
	entries := doc.Entries
	l := r.layout
	plan := l.Plan(len(entries))
	res := Result{Rows: Rows(len(entries)), Plan: plan}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: l.PageWidth, Ht: l.PageHeight},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(r.compress)
	pdf.SetLineWidth(1)
	now := r.now()
	pdf.SetCreationDate(now)
	pdf.SetModificationDate(now)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(r.rules.Title, true)
	pdf.SetCreator("material-list", true)

	// fpdf measures y from the top edge.
	at := func(y float64) float64 { return l.PageHeight - y }

	pdf.AddPage()
	y := l.topY()
	pdf.SetFont("Helvetica", "B", l.TitleSize)
	pdf.Text(l.Margin, at(y), tr(r.rules.Title))
	if doc.Thickness > 0 {
		pdf.SetFont("Helvetica", "", 10)
		sub := tr(fmt.Sprintf("Espessura: %dmm", doc.Thickness))
		pdf.Text(l.PageWidth-l.Margin-pdf.GetStringWidth(sub), at(y), sub)
	}
	pdf.Line(l.Margin, at(y-5), l.PageWidth-l.Margin, at(y-5))
	y = l.firstRowY()

	next := 0
	for page, rows := range plan {
		if page > 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, common.RenderError("rendering interrupted", err)
			}
			r.footer(pdf, tr)
			res.Footers++
			pdf.AddPage()
			y = l.topY()
		}
		pdf.SetFont("Helvetica", "", l.BodySize)
		for i := 0; i < rows; i++ {
			left := doc.row(next)
			right := ""
			if next+1 < len(entries) {
				right = doc.row(next + 1)
			}
			pdf.Text(l.Margin, at(y), tr(left))
			if right != "" {
				pdf.Text(l.rightColumnX(), at(y), tr(right))
			}
			next += 2
			y -= l.LineHeight
		}
	}
	r.footer(pdf, tr)
	res.Footers++
	res.Pages = pdf.PageNo()

	if err := pdf.OutputFileAndClose(path); err != nil {
		_ = os.Remove(path)
		r.logger.Error("export.pdf.failed", "path", path, "error", err)
		return Result{}, common.RenderError(fmt.Sprintf("write %s", path), err)
	}

	if err := r.verify(path, res.Pages); err != nil {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			r.logger.Warn("export.pdf.cleanup_failed", "path", path, "error", rmErr)
		}
		r.logger.Error("export.pdf.failed", "path", path, "error", err)
		return Result{}, err
	}

	r.logger.Info("export.pdf.ok",
		"path", path,
		"entries", len(entries),
		"thickness_mm", doc.Thickness,
		"rows", res.Rows,
		"pages", res.Pages,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// verify re-reads the written file and checks its page count.
func (r *Renderer) verify(path string, want int) error {
	pages, err := r.pageCount(path)
	if err != nil {
		return common.RenderError("verify written document", err)
	}
	if pages != want {
		return common.RenderError(fmt.Sprintf("document has %d pages, expected %d", pages, want), nil)
	}
	return nil
}

// footer draws the rule, credit, page number and right-aligned timestamp.
func (r *Renderer) footer(pdf *fpdf.Fpdf, tr func(string) string) {
	l := r.layout
	at := func(y float64) float64 { return l.PageHeight - y }

	pdf.Line(l.Margin, at(35), l.PageWidth-l.Margin, at(35))
	pdf.SetFont("Helvetica", "", l.FooterSize)
	pdf.Text(l.Margin, at(25), tr(r.rules.Credit))
	pdf.Text(l.Margin, at(15), tr(fmt.Sprintf("Página %d", pdf.PageNo())))

	stamp := tr("Gerado em: " + r.now().Format(timestampLayout))
	pdf.Text(l.PageWidth-l.Margin-pdf.GetStringWidth(stamp), at(15), stamp)
}
