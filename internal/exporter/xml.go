package exporter

import (
	"context"
	"encoding/xml"
	"io"
	"log/slog"

	"museumreport/pkg/contracts/domain"
)

const (
	xmlRootElement = "data"
	xmlRowElement  = "row"
)

// XMLExporter writes a <data> root with one <row> per record and one child
// element per column.
//
// Column names that are not valid XML names are sanitized and the original
// name is kept in a name attribute. Cells that are not strings carry a type
// attribute and null cells are empty elements marked nil="true".
type XMLExporter struct {
	logger *slog.Logger
}

// NewXMLExporter creates an XML exporter
func NewXMLExporter(logger *slog.Logger) *XMLExporter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &XMLExporter{logger: logger}
}

// Format returns xml
func (e *XMLExporter) Format() domain.ReportFormat { return domain.ReportFormatXML }

// Export writes table to path
func (e *XMLExporter) Export(ctx context.Context, table *domain.Table, path string) error {
	if err := validateInput(table, path); err != nil {
		return err
	}
	logExport(e.logger, e.Format(), path, table)

	return writeAtomic(ctx, path, func(w io.Writer) error {
		return writeXML(w, table)
	})
}

func writeXML(w io.Writer, table *domain.Table) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	elements := make([]xml.StartElement, len(table.Columns))
	for i, column := range table.Columns {
		el := xml.StartElement{Name: xml.Name{Local: xmlName(column)}}
		if el.Name.Local != column {
			el.Attr = append(el.Attr, xml.Attr{Name: xml.Name{Local: "name"}, Value: column})
		}
		elements[i] = el
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	root := xml.StartElement{Name: xml.Name{Local: xmlRootElement}}
	if err := enc.EncodeToken(root); err != nil {
		return err
	}

	for i := range table.Rows {
		row := xml.StartElement{Name: xml.Name{Local: xmlRowElement}}
		if err := enc.EncodeToken(row); err != nil {
			return err
		}

		for j, cell := range table.Row(i) {
			el := elements[j]
			el.Attr = append([]xml.Attr(nil), el.Attr...)
			if cell.IsNull() {
				el.Attr = append(el.Attr, xml.Attr{Name: xml.Name{Local: "nil"}, Value: "true"})
			} else if typ := xmlType(cell); typ != "" {
				el.Attr = append(el.Attr, xml.Attr{Name: xml.Name{Local: "type"}, Value: typ})
			}

			if err := enc.EncodeToken(el); err != nil {
				return err
			}
			if text := cell.Text(); text != "" {
				if err := enc.EncodeToken(xml.CharData(text)); err != nil {
					return err
				}
			}
			if err := enc.EncodeToken(el.End()); err != nil {
				return err
			}
		}

		if err := enc.EncodeToken(row.End()); err != nil {
			return err
		}
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
