package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"museumreport/pkg/contracts/domain"
)

func TestWriteCSV(t *testing.T) {
	tests := []struct {
		name     string
		options  WriteOptions
		validate func(t *testing.T, content []byte)
	}{
		{
			name: "basic write with headers",
			options: WriteOptions{
				Headers: []string{"Name", "Age", "City"},
				Records: [][]string{
					{"John", "25", "New York"},
					{"Jane", "30", "London"},
				},
			},
			validate: func(t *testing.T, content []byte) {
				lines := strings.Split(strings.TrimSpace(string(content)), "\n")
				assert.Len(t, lines, 3) // header + 2 records
				assert.Equal(t, "Name,Age,City", lines[0])
				assert.Equal(t, "John,25,New York", lines[1])
				assert.Equal(t, "Jane,30,London", lines[2])
			},
		},
		{
			name: "write with BOM prefix",
			options: WriteOptions{
				Headers:   []string{"objectID", "title"},
				Records:   [][]string{{"1", "Bowl"}},
				BOMPrefix: true,
			},
			validate: func(t *testing.T, content []byte) {
				assert.True(t, bytes.HasPrefix(content, utf8BOM))
				lines := strings.Split(strings.TrimSpace(string(content[3:])), "\n")
				assert.Equal(t, "objectID,title", lines[0])
				assert.Equal(t, "1,Bowl", lines[1])
			},
		},
		{
			name: "write without headers",
			options: WriteOptions{
				Records: [][]string{{"a", "b"}},
			},
			validate: func(t *testing.T, content []byte) {
				assert.Equal(t, "a,b\n", string(content))
			},
		},
		{
			name: "fields requiring quotes",
			options: WriteOptions{
				Headers: []string{"title", "medium"},
				Records: [][]string{{`Vase, "Blue"`, "Ink\non silk"}},
			},
			validate: func(t *testing.T, content []byte) {
				assert.Equal(t, "title,medium\n\"Vase, \"\"Blue\"\"\",\"Ink\non silk\"\n", string(content))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteCSV(&buf, tt.options))
			tt.validate(t, buf.Bytes())
		})
	}
}

func TestCSVExporter_RoundTrip(t *testing.T) {
	table := &domain.Table{
		Columns: []string{"objectID", "title", "artistDisplayName", "medium"},
		Rows: []*domain.Record{
			domain.RecordOf("objectID", "45734", "title", "Quail and Millet", "artistDisplayName", "Kiyohara Yukinobu", "medium", "Hanging scroll; ink and color on silk"),
			domain.RecordOf("objectID", "436535", "title", "Wheat Field, with Cypresses", "artistDisplayName", "Vincent van Gogh", "medium", "Oil on canvas"),
			domain.RecordOf("objectID", "1", "title", `Line one
line two, "quoted"`, "artistDisplayName", "", "medium", "   "),
		},
	}

	path := filepath.Join(t.TempDir(), "museum_data.csv")
	require.NoError(t, NewCSVExporter(false, nil).Export(context.Background(), table, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, table.Len()+1)

	assert.Equal(t, table.Columns, rows[0])
	for i := range table.Rows {
		assert.Equal(t, table.TextRow(i), rows[i+1])
	}
}

func TestCSVExporter_TypedCells(t *testing.T) {
	table := &domain.Table{
		Columns: []string{"objectID", "isHighlight", "objectBeginDate", "term", "measurements"},
		Rows: []*domain.Record{
			domain.RecordOf(
				"objectID", 10,
				"isHighlight", true,
				"objectBeginDate", 1.5,
				"measurements", domain.RecordOf("Height", 2.5),
			),
		},
	}

	path := filepath.Join(t.TempDir(), "typed.csv")
	require.NoError(t, NewCSVExporter(false, nil).Export(context.Background(), table, path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "objectID,isHighlight,objectBeginDate,term,measurements\n10,true,1.5,,\"{\"\"Height\"\":2.5}\"\n", string(content))
}

func TestCSVExporter_NestedCellsUnescaped(t *testing.T) {
	table := &domain.Table{
		Columns: []string{"additionalImages", "elementMeasurements"},
		Rows: []*domain.Record{
			domain.RecordOf(
				"additionalImages", domain.List(domain.String("https://images.example/a.jpg?w=1&h=<2>")),
				"elementMeasurements", domain.RecordOf("Height & Width", "x&y"),
			),
		},
	}

	path := filepath.Join(t.TempDir(), "nested.csv")
	require.NoError(t, NewCSVExporter(false, nil).Export(context.Background(), table, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, `["https://images.example/a.jpg?w=1&h=<2>"]`, rows[1][0])
	assert.Equal(t, `{"Height & Width":"x&y"}`, rows[1][1])
}

func TestCSVExporter_BOM(t *testing.T) {
	table := &domain.Table{Columns: []string{"a"}, Rows: []*domain.Record{domain.RecordOf("a", "x")}}
	path := filepath.Join(t.TempDir(), "bom.csv")

	require.NoError(t, NewCSVExporter(true, nil).Export(context.Background(), table, path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, append(append([]byte{}, utf8BOM...), []byte("a\nx\n")...), content)
}
