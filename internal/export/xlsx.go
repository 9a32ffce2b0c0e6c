package export

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/material-list/internal/common"
	"github.com/joseph-ayodele/material-list/internal/entity"
)

const xlsxSheet = "Materials"

// XLSXExporter writes the material list as a code/material/thickness
// workbook.
type XLSXExporter struct {
	logger *slog.Logger
}

func NewXLSXExporter(logger *slog.Logger) *XLSXExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXExporter{logger: logger}
}

// XLSXPathFor returns the workbook path that sits beside a PDF.
func XLSXPathFor(pdfPath string) string {
	return strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".xlsx"
}

// Write saves entries in order under a header row. Thickness cells stay
// empty for materials without one.
func (x *XLSXExporter) Write(entries []entity.MaterialEntry, path string) error {
	start := time.Now()

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			x.logger.Warn("close workbook", "error", err)
		}
	}()
	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return common.RenderError("name sheet", err)
	}

	headers := []string{"Code", "Material", "Thickness (mm)"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(xlsxSheet, cell, h)
	}
	for i, e := range entries {
		row := i + 2
		// Codes stay text so leading zeros survive.
		_ = f.SetCellStr(xlsxSheet, fmt.Sprintf("A%d", row), e.Code)
		_ = f.SetCellStr(xlsxSheet, fmt.Sprintf("B%d", row), e.Label)
		if e.Thickness > 0 {
			_ = f.SetCellInt(xlsxSheet, fmt.Sprintf("C%d", row), int64(e.Thickness))
		}
	}

	_ = f.SetColWidth(xlsxSheet, "A", "A", 12) // code
	_ = f.SetColWidth(xlsxSheet, "B", "B", 48) // material
	_ = f.SetColWidth(xlsxSheet, "C", "C", 16)
	if err := f.SetPanes(xlsxSheet, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		x.logger.Warn("freeze header row", "error", err)
	}

	if err := f.SaveAs(path); err != nil {
		return common.RenderError(fmt.Sprintf("write %s", path), err)
	}
	x.logger.Info("export.xlsx.ok",
		"path", path,
		"rows", len(entries),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
