package exporter

import (
	"bytes"
	"context"
	"io"
	"log/slog"

	apperrors "museumreport/internal/errors"
	"museumreport/pkg/contracts/domain"
)

// PageSize is a PDF page size in points
type PageSize struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// DefaultPageSize is wide and tall enough for a full collection table on one page
var DefaultPageSize = PageSize{Width: 1270, Height: 2500}

// Renderer converts an HTML document into PDF bytes
type Renderer interface {
	RenderPDF(ctx context.Context, html []byte, page PageSize) ([]byte, error)
}

// PDFExporter renders the HTML table representation to a paginated PDF
type PDFExporter struct {
	renderer Renderer
	page     PageSize
	title    string
	logger   *slog.Logger
}

// NewPDFExporter creates a PDF exporter. A zero page size means
// DefaultPageSize.
func NewPDFExporter(renderer Renderer, page PageSize, title string, logger *slog.Logger) *PDFExporter {
	if page.Width <= 0 || page.Height <= 0 {
		page = DefaultPageSize
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PDFExporter{renderer: renderer, page: page, title: title, logger: logger}
}

// Format returns pdf
func (e *PDFExporter) Format() domain.ReportFormat { return domain.ReportFormatPDF }

// Export writes table to path
func (e *PDFExporter) Export(ctx context.Context, table *domain.Table, path string) error {
	if err := validateInput(table, path); err != nil {
		return err
	}
	if e.renderer == nil {
		return apperrors.NewInvalidArgumentError("renderer", "is nil")
	}
	logExport(e.logger, e.Format(), path, table)

	var html bytes.Buffer
	if err := renderHTML(&html, table, e.title); err != nil {
		return apperrors.NewRenderError(string(e.Format()), path, "html template", err)
	}

	data, err := e.renderer.RenderPDF(ctx, html.Bytes(), e.page)
	if err != nil {
		return apperrors.NewRenderError(string(e.Format()), path, "print to pdf", err)
	}

	e.logger.Debug("PDF rendered",
		slog.String("file_path", path),
		slog.Int("bytes", len(data)),
		slog.Float64("page_width", e.page.Width),
		slog.Float64("page_height", e.page.Height))

	return writeAtomic(ctx, path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}
