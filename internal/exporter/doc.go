// Package exporter writes a tabulated collection report to files.
//
// There is one Exporter per report format:
//
// CSVExporter: RFC 4180 CSV with an optional UTF-8 BOM for Excel.
//
// XLSXExporter: a single-sheet workbook built with excelize, numbers and
// booleans kept as native cell types.
//
// HTMLExporter: a standalone page with one table.
//
// XMLExporter: a <data> root with one <row> element per record.
//
// PDFExporter: the HTML table printed to PDF through a Renderer, normally
// the headless Chrome ChromeRenderer.
//
// All exporters reject invalid input before touching the file system, never
// create the target directory, and write through a temp file that is renamed
// into place on success.
//
// Example usage:
//
//	exporters := exporter.NewSet(exporter.Options{
//		Renderer: exporter.NewChromeRenderer("", time.Minute, logger),
//		Logger:   logger,
//	})
//	for _, e := range exporters {
//		path := filepath.Join(dir, "museum_data"+e.Format().Extension())
//		if err := e.Export(ctx, table, path); err != nil {
//			return err
//		}
//	}
package exporter
