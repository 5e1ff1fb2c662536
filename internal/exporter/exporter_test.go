package exporter

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "museumreport/internal/errors"
	"museumreport/pkg/contracts/domain"
)

// fakeRenderer records what it was asked to print
type fakeRenderer struct {
	html  []byte
	page  PageSize
	calls int
	err   error
}

func (r *fakeRenderer) RenderPDF(_ context.Context, html []byte, page PageSize) ([]byte, error) {
	r.calls++
	r.html = append([]byte(nil), html...)
	r.page = page
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-1.4\n%fake\n"), nil
}

func sampleTable() *domain.Table {
	return &domain.Table{
		Columns: []string{"objectID", "title", "term"},
		Rows: []*domain.Record{
			domain.RecordOf("objectID", 1, "title", "Bowl", "term", "Birds"),
			domain.RecordOf("objectID", 2, "title", "Vase"),
		},
	}
}

func allExporters(renderer Renderer) []Exporter {
	return NewSet(Options{Renderer: renderer})
}

func TestNewSet(t *testing.T) {
	withPDF := NewSet(Options{Renderer: &fakeRenderer{}})
	formats := make([]domain.ReportFormat, len(withPDF))
	for i, e := range withPDF {
		formats[i] = e.Format()
	}
	assert.Equal(t, domain.ReportFormats, formats)

	assert.Len(t, NewSet(Options{}), 4, "no renderer, no PDF")
}

func TestExporters_InvalidArgumentBeforeIO(t *testing.T) {
	tests := []struct {
		name  string
		table *domain.Table
		path  func(dir string) string
	}{
		{
			name:  "nil table",
			table: nil,
			path:  func(dir string) string { return filepath.Join(dir, "out") },
		},
		{
			name:  "no rows",
			table: &domain.Table{Columns: []string{"a"}},
			path:  func(dir string) string { return filepath.Join(dir, "out") },
		},
		{
			name:  "row is not a mapping",
			table: &domain.Table{Columns: []string{"a"}, Rows: []*domain.Record{domain.RecordOf("a", 1), nil}},
			path:  func(dir string) string { return filepath.Join(dir, "out") },
		},
		{
			name:  "empty path",
			table: sampleTable(),
			path:  func(string) string { return "" },
		},
		{
			name:  "nil table and missing directory",
			table: nil,
			path:  func(dir string) string { return filepath.Join(dir, "missing", "out") },
		},
	}

	for _, tt := range tests {
		for _, e := range allExporters(&fakeRenderer{}) {
			t.Run(tt.name+"/"+string(e.Format()), func(t *testing.T) {
				dir := t.TempDir()
				renderer := &fakeRenderer{}
				if pdf, ok := e.(*PDFExporter); ok {
					pdf.renderer = renderer
				}

				err := e.Export(context.Background(), tt.table, tt.path(dir))
				require.Error(t, err)
				assert.True(t, stderrors.Is(err, apperrors.ErrInvalidArgument), err.Error())

				entries, readErr := os.ReadDir(dir)
				require.NoError(t, readErr)
				assert.Empty(t, entries, "no file may be created")
				assert.Zero(t, renderer.calls)
			})
		}
	}
}

func TestExporters_MissingDirectory(t *testing.T) {
	for _, e := range allExporters(&fakeRenderer{}) {
		t.Run(string(e.Format()), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "missing", "museum_data"+e.Format().Extension())

			err := e.Export(context.Background(), sampleTable(), path)
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, apperrors.ErrFileSystem), err.Error())
			assert.NoDirExists(t, filepath.Dir(path))
		})
	}
}

func TestExporters_PathIsNotADirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	err := NewCSVExporter(false, nil).Export(context.Background(), sampleTable(), filepath.Join(file, "out.csv"))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, apperrors.ErrFileSystem))
}

func TestExporters_WriteAtomically(t *testing.T) {
	for _, e := range allExporters(&fakeRenderer{}) {
		t.Run(string(e.Format()), func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "museum_data"+e.Format().Extension())
			require.NoError(t, os.WriteFile(path, []byte("stale"), 0644))

			require.NoError(t, e.Export(context.Background(), sampleTable(), path))

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			require.Len(t, entries, 1, "temp files are renamed away")
			assert.Equal(t, filepath.Base(path), entries[0].Name())

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Greater(t, info.Size(), int64(len("stale")))
			assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
		})
	}
}

func TestExporters_FailedRenderLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "museum_data.pdf")

	renderer := &fakeRenderer{err: stderrors.New("chrome crashed")}
	err := NewPDFExporter(renderer, PageSize{}, "", nil).Export(context.Background(), sampleTable(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chrome crashed")
	assert.Equal(t, apperrors.KindRender, apperrors.KindOf(err))
	assert.ErrorIs(t, err, apperrors.ErrRender)

	var appErr *apperrors.Error
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, apperrors.StageExport, appErr.Stage)
	assert.Equal(t, path, appErr.Context["path"])
	assert.NoFileExists(t, path)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestXLSXExporter_InvalidSheetName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "museum_data.xlsx")

	err := NewXLSXExporter("a sheet name far longer than thirty-one characters", nil).
		Export(context.Background(), sampleTable(), path)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindRender, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "cannot render xlsx report")
	assert.NoFileExists(t, path)
}

func TestExporters_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "museum_data.csv")
	err := NewCSVExporter(false, nil).Export(ctx, sampleTable(), path)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, path)
}
