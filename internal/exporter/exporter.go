package exporter

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "museumreport/internal/errors"
	"museumreport/pkg/contracts/domain"
)

// Exporter writes a table to a single report file
type Exporter interface {
	Format() domain.ReportFormat
	Export(ctx context.Context, table *domain.Table, path string) error
}

// Options configures the exporters built by NewSet
type Options struct {
	BOMPrefix bool
	SheetName string
	Title     string
	PageSize  PageSize

	// Renderer turns HTML into PDF. Without one NewSet leaves PDF out.
	Renderer Renderer
	Logger   *slog.Logger
}

// NewSet creates one exporter per report format in generation order
func NewSet(opts Options) []Exporter {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	set := []Exporter{
		NewCSVExporter(opts.BOMPrefix, logger),
		NewXLSXExporter(opts.SheetName, logger),
		NewHTMLExporter(opts.Title, logger),
		NewXMLExporter(logger),
	}
	if opts.Renderer != nil {
		set = append(set, NewPDFExporter(opts.Renderer, opts.PageSize, opts.Title, logger))
	}
	return set
}

// validateInput applies the checks every format shares. It runs before any
// file is touched.
func validateInput(table *domain.Table, path string) error {
	if table == nil {
		return apperrors.NewInvalidArgumentError("table", "is nil")
	}
	if len(table.Rows) == 0 {
		return apperrors.NewInvalidArgumentError("table", "has no rows")
	}
	for i, row := range table.Rows {
		if row == nil {
			return apperrors.NewInvalidArgumentError("table", fmt.Sprintf("row %d is not a mapping", i))
		}
	}
	if strings.TrimSpace(path) == "" {
		return apperrors.NewInvalidArgumentError("path", "is empty")
	}
	return nil
}

// writeAtomic streams a file through write into a temp file next to path and
// renames it into place once everything has been written. The target
// directory must already exist.
func writeAtomic(ctx context.Context, path string, write func(w io.Writer) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return apperrors.NewFileSystemError(path, err)
	}
	if !info.IsDir() {
		return apperrors.NewFileSystemError(path, fmt.Errorf("%s is not a directory", dir))
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return apperrors.NewFileSystemError(path, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	buf := bufio.NewWriter(tmp)
	if err = write(buf); err != nil {
		return asExportError(path, err)
	}
	if err = buf.Flush(); err != nil {
		return apperrors.NewFileSystemError(path, err)
	}
	if err = tmp.Chmod(0644); err != nil {
		return apperrors.NewFileSystemError(path, err)
	}
	if err = tmp.Close(); err != nil {
		return apperrors.NewFileSystemError(path, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return apperrors.NewFileSystemError(path, err)
	}
	return nil
}

func asExportError(path string, err error) error {
	var appErr *apperrors.Error
	if stderrors.As(err, &appErr) || stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return apperrors.NewFileSystemError(path, err)
}

func logExport(logger *slog.Logger, format domain.ReportFormat, path string, table *domain.Table) {
	logger.Info("Writing report file",
		slog.String("format", string(format)),
		slog.String("file_path", path),
		slog.Int("record_count", table.Len()),
		slog.Int("column_count", len(table.Columns)))
}
