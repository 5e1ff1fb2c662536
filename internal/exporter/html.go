package exporter

import (
	"bytes"
	"context"
	"html/template"
	"io"
	"log/slog"

	apperrors "museumreport/internal/errors"
	"museumreport/pkg/contracts/domain"
)

// DefaultTitle is used for HTML and PDF documents without a configured title
const DefaultTitle = "Museum Collection Report"

var tableTemplate = template.Must(template.New("table").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
table.dataframe { border-collapse: collapse; font-family: sans-serif; font-size: 10px; }
table.dataframe th, table.dataframe td { border: 1px solid #999; padding: 2px 4px; vertical-align: top; }
table.dataframe th { background: #eee; text-align: left; }
table.dataframe td.num { text-align: right; }
</style>
</head>
<body>
<table class="dataframe">
<thead>
<tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
</thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td{{if .Numeric}} class="num"{{end}}>{{.Text}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
</body>
</html>
`))

type htmlCell struct {
	Text    string
	Numeric bool
}

type htmlDocument struct {
	Title   string
	Columns []string
	Rows    [][]htmlCell
}

// renderHTML writes table as a standalone HTML document with a single table
func renderHTML(w io.Writer, table *domain.Table, title string) error {
	if title == "" {
		title = DefaultTitle
	}

	doc := htmlDocument{
		Title:   title,
		Columns: table.Columns,
		Rows:    make([][]htmlCell, table.Len()),
	}
	for i := range table.Rows {
		cells := table.Row(i)
		row := make([]htmlCell, len(cells))
		for j, cell := range cells {
			row[j] = htmlCell{Text: cell.Text(), Numeric: isNumeric(cell)}
		}
		doc.Rows[i] = row
	}

	return tableTemplate.Execute(w, doc)
}

// HTMLExporter writes the table as an HTML page
type HTMLExporter struct {
	title  string
	logger *slog.Logger
}

// NewHTMLExporter creates an HTML exporter
func NewHTMLExporter(title string, logger *slog.Logger) *HTMLExporter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &HTMLExporter{title: title, logger: logger}
}

// Format returns html
func (e *HTMLExporter) Format() domain.ReportFormat { return domain.ReportFormatHTML }

// Export writes table to path
func (e *HTMLExporter) Export(ctx context.Context, table *domain.Table, path string) error {
	if err := validateInput(table, path); err != nil {
		return err
	}
	logExport(e.logger, e.Format(), path, table)

	// render first so a template failure never touches the file system
	var buf bytes.Buffer
	if err := renderHTML(&buf, table, e.title); err != nil {
		return apperrors.NewRenderError(string(e.Format()), path, "html template", err)
	}

	return writeAtomic(ctx, path, func(w io.Writer) error {
		_, err := buf.WriteTo(w)
		return err
	})
}
