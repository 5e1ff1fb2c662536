package domain

import (
	"time"
)

// ReportFormat defines the format of a generated report file
type ReportFormat string

const (
	ReportFormatCSV   ReportFormat = "csv"
	ReportFormatExcel ReportFormat = "xlsx"
	ReportFormatHTML  ReportFormat = "html"
	ReportFormatXML   ReportFormat = "xml"
	ReportFormatPDF   ReportFormat = "pdf"
)

// ReportFormats lists every format in the order reports are generated
var ReportFormats = []ReportFormat{
	ReportFormatCSV,
	ReportFormatExcel,
	ReportFormatHTML,
	ReportFormatXML,
	ReportFormatPDF,
}

// Extension returns the file extension for the format, including the dot
func (f ReportFormat) Extension() string {
	return "." + string(f)
}

// ReportStatus represents the status of a report
type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusCompleted ReportStatus = "completed"
	ReportStatusFailed    ReportStatus = "failed"
	ReportStatusSkipped   ReportStatus = "skipped"
)

// Report describes one generated report file
type Report struct {
	Format      ReportFormat  `json:"format"`
	Status      ReportStatus  `json:"status"`
	FilePath    string        `json:"file_path"`
	FileSize    int64         `json:"file_size,omitempty"`
	Duration    time.Duration `json:"duration"`
	GeneratedAt time.Time     `json:"generated_at,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// ReportMetadata contains metadata about a batch of reports
type ReportMetadata struct {
	RunID       string        `json:"run_id"`
	RecordCount int           `json:"record_count"`
	ColumnCount int           `json:"column_count"`
	ObjectIDs   []int         `json:"object_ids"`
	Duration    time.Duration `json:"duration"`
}
