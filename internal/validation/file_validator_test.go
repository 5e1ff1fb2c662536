package validation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "museumreport/internal/errors"
	"museumreport/internal/exporter"
	"museumreport/pkg/contracts/domain"
)

type stubRenderer struct{}

func (stubRenderer) RenderPDF(context.Context, []byte, exporter.PageSize) ([]byte, error) {
	return []byte("%PDF-1.4\n%%EOF\n"), nil
}

func sampleTable() *domain.Table {
	return &domain.Table{
		Columns: []string{"objectID", "title"},
		Rows: []*domain.Record{
			domain.RecordOf("objectID", 1, "title", "Quail and Millet"),
			domain.RecordOf("objectID", 2, "title", nil),
		},
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr error
	}{
		{
			name:  "existing directory",
			setup: func(t *testing.T) string { return t.TempDir() },
		},
		{
			name:  "created when missing",
			setup: func(t *testing.T) string { return filepath.Join(t.TempDir(), "a", "b") },
		},
		{
			name: "parent is a file",
			setup: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "file")
				require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
				return filepath.Join(file, "reports")
			},
			wantErr: apperrors.ErrFileSystem,
		},
		{
			name:    "empty path",
			setup:   func(t *testing.T) string { return "" },
			wantErr: apperrors.ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			err := NewFileValidator(nil).ValidateOutputDirectory(dir)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.DirExists(t, dir)

			leftovers, _ := filepath.Glob(filepath.Join(dir, ".write_test-*"))
			assert.Empty(t, leftovers)
		})
	}
}

func TestFileValidator_ValidateFile(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	full := filepath.Join(dir, "full.csv")
	require.NoError(t, os.WriteFile(full, []byte("a\n"), 0644))

	v := NewFileValidator(nil)
	assert.NoError(t, v.ValidateFile(full))

	for _, path := range []string{empty, dir, filepath.Join(dir, "missing.csv")} {
		err := v.ValidateFile(path)
		assert.True(t, errors.Is(err, apperrors.ErrFileSystem), path)
	}
}

func TestFileValidator_ValidateReport_ExportedFiles(t *testing.T) {
	dir := t.TempDir()
	v := NewFileValidator(nil)

	for _, e := range exporter.NewSet(exporter.Options{Renderer: stubRenderer{}}) {
		t.Run(string(e.Format()), func(t *testing.T) {
			path := filepath.Join(dir, "museum_data"+e.Format().Extension())
			require.NoError(t, e.Export(context.Background(), sampleTable(), path))
			assert.NoError(t, v.ValidateReport(path, e.Format()))
		})
	}
}

func TestFileValidator_ValidateReport_Corrupt(t *testing.T) {
	tests := []struct {
		format  domain.ReportFormat
		content string
		want    string
	}{
		{domain.ReportFormatCSV, "\n", "header"},
		{domain.ReportFormatExcel, "not a zip", "not a valid xlsx report"},
		{domain.ReportFormatHTML, "<html><body>nothing</body></html>", "no table element"},
		{domain.ReportFormatXML, "<?xml version=\"1.0\"?>", "no root element"},
		{domain.ReportFormatXML, "plain text <<>>", "not a valid xml report"},
		{domain.ReportFormatPDF, "<html></html>", "missing %PDF- header"},
		{domain.ReportFormatPDF, "%P", "failed to read header"},
	}

	v := NewFileValidator(nil)
	for _, tt := range tests {
		t.Run(string(tt.format)+"/"+tt.want, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "report"+tt.format.Extension())
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			err := v.ValidateReport(path, tt.format)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrFileSystem))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFileValidator_ValidateReport_UnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	err := NewFileValidator(nil).ValidateReport(path, domain.ReportFormat("txt"))
	assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument))
}
