package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"museumreport/pkg/contracts/domain"
)

// utf8BOM helps Excel recognize UTF-8 CSV files
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes headers and records to w as RFC 4180 CSV
func WriteCSV(w io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// CSVExporter writes one header row and one row per record. Nulls become
// empty fields.
type CSVExporter struct {
	bom    bool
	logger *slog.Logger
}

// NewCSVExporter creates a CSV exporter
func NewCSVExporter(bom bool, logger *slog.Logger) *CSVExporter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CSVExporter{bom: bom, logger: logger}
}

// Format returns csv
func (e *CSVExporter) Format() domain.ReportFormat { return domain.ReportFormatCSV }

// Export writes table to path
func (e *CSVExporter) Export(ctx context.Context, table *domain.Table, path string) error {
	if err := validateInput(table, path); err != nil {
		return err
	}
	logExport(e.logger, e.Format(), path, table)

	records := make([][]string, table.Len())
	for i := range table.Rows {
		records[i] = table.TextRow(i)
	}

	return writeAtomic(ctx, path, func(w io.Writer) error {
		return WriteCSV(w, WriteOptions{
			Headers:   table.Columns,
			Records:   records,
			BOMPrefix: e.bom,
		})
	})
}
