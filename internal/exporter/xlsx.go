package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	apperrors "museumreport/internal/errors"
	"museumreport/pkg/contracts/domain"
)

// DefaultSheetName is the sheet a new workbook starts with
const DefaultSheetName = "Sheet1"

// XLSXExporter writes the table to a single-sheet workbook with typed cells
type XLSXExporter struct {
	sheet  string
	logger *slog.Logger
}

// NewXLSXExporter creates a spreadsheet exporter. An empty sheet name means
// DefaultSheetName.
func NewXLSXExporter(sheet string, logger *slog.Logger) *XLSXExporter {
	if sheet == "" {
		sheet = DefaultSheetName
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &XLSXExporter{sheet: sheet, logger: logger}
}

// Format returns xlsx
func (e *XLSXExporter) Format() domain.ReportFormat { return domain.ReportFormatExcel }

// Export writes table to path
func (e *XLSXExporter) Export(ctx context.Context, table *domain.Table, path string) error {
	if err := validateInput(table, path); err != nil {
		return err
	}
	logExport(e.logger, e.Format(), path, table)

	f := excelize.NewFile()
	defer f.Close()

	if e.sheet != DefaultSheetName {
		if err := f.SetSheetName(DefaultSheetName, e.sheet); err != nil {
			return e.renderError(path, "name sheet", err)
		}
	}

	sw, err := f.NewStreamWriter(e.sheet)
	if err != nil {
		return e.renderError(path, "create stream writer", err)
	}

	header := make([]interface{}, len(table.Columns))
	for i, column := range table.Columns {
		header[i] = column
	}
	if err := e.setRow(sw, 1, header); err != nil {
		return e.renderError(path, "write header", err)
	}

	for i := range table.Rows {
		cells := table.Row(i)
		row := make([]interface{}, len(cells))
		for j, cell := range cells {
			row[j] = spreadsheetValue(cell)
		}
		if err := e.setRow(sw, i+2, row); err != nil {
			return e.renderError(path, "write rows", err)
		}
	}

	if err := sw.Flush(); err != nil {
		return e.renderError(path, "flush sheet", err)
	}

	return writeAtomic(ctx, path, func(w io.Writer) error {
		return f.Write(w)
	})
}

func (e *XLSXExporter) renderError(path, step string, err error) error {
	return apperrors.NewRenderError(string(e.Format()), path, step, err)
}

func (e *XLSXExporter) setRow(sw *excelize.StreamWriter, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := sw.SetRow(cell, values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
