package exporter

import (
	"bytes"
	"context"
	"encoding/xml"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"museumreport/pkg/contracts/domain"
)

type xmlDoc struct {
	XMLName xml.Name `xml:"data"`
	Rows    []struct {
		Cells []struct {
			XMLName xml.Name
			Name    string `xml:"name,attr"`
			Type    string `xml:"type,attr"`
			Nil     string `xml:"nil,attr"`
			Text    string `xml:",chardata"`
		} `xml:",any"`
	} `xml:"row"`
}

func TestXMLExporter_Export(t *testing.T) {
	table := &domain.Table{
		Columns: []string{"objectID", "title", "isHighlight", "Object Date", "term", "elementMeasurements"},
		Rows: []*domain.Record{
			domain.RecordOf(
				"objectID", 45734,
				"title", "Quail & Millet",
				"isHighlight", true,
				"Object Date", "ca. 1700",
				"term", nil,
				"elementMeasurements", domain.RecordOf("Height", 2.5),
			),
			domain.RecordOf("objectID", 2.75, "title", "Vase"),
		},
	}

	path := filepath.Join(t.TempDir(), "museum_data.xml")
	require.NoError(t, NewXMLExporter(nil).Export(context.Background(), table, path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte(xml.Header)))

	var doc xmlDoc
	require.NoError(t, xml.Unmarshal(content, &doc))
	require.Len(t, doc.Rows, 2)

	first := doc.Rows[0].Cells
	require.Len(t, first, len(table.Columns))

	tests := []struct {
		index int
		tag   string
		name  string
		typ   string
		isNil string
		text  string
	}{
		{0, "objectID", "", "integer", "", "45734"},
		{1, "title", "", "", "", "Quail & Millet"},
		{2, "isHighlight", "", "boolean", "", "true"},
		{3, "Object_Date", "Object Date", "", "", "ca. 1700"},
		{4, "term", "", "", "true", ""},
		{5, "elementMeasurements", "", "map", "", `{"Height":2.5}`},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			cell := first[tt.index]
			assert.Equal(t, tt.tag, cell.XMLName.Local)
			assert.Equal(t, tt.name, cell.Name)
			assert.Equal(t, tt.typ, cell.Type)
			assert.Equal(t, tt.isNil, cell.Nil)
			assert.Equal(t, tt.text, cell.Text)
		})
	}

	second := doc.Rows[1].Cells
	require.Len(t, second, len(table.Columns), "missing fields still get an element")
	assert.Equal(t, "number", second[0].Type)
	assert.Equal(t, "2.75", second[0].Text)
	assert.Equal(t, "true", second[2].Nil)
}

func TestXMLName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"objectID", "objectID"},
		{"AAT_URL", "AAT_URL"},
		{"Object Date", "Object_Date"},
		{"1stDate", "_1stDate"},
		{"-x", "_-x"},
		{"ns:tag", "ns_tag"},
		{"xmlData", "_xmlData"},
		{"", "_"},
		{"título", "título"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, xmlName(tt.in))
		})
	}
}
