package validation

import (
	"bytes"
	"encoding/csv"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/xuri/excelize/v2"

	apperrors "museumreport/internal/errors"
	"museumreport/pkg/contracts/domain"
)

// sniffBytes is how much of an HTML report is searched for its table
const sniffBytes = 64 << 10

// FileValidator checks the report directory before a run and the report
// files after they are written
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateOutputDirectory ensures dir exists, or can be created, and is
// writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if dir == "" {
		return apperrors.NewInvalidArgumentError("report directory", "is empty")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewFileSystemError(dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".write_test-*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewFileSystemError(dir, err)
	}
	tmp.Close()
	os.Remove(tmp.Name())

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// ValidateFile checks that path is a non-empty regular file
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return apperrors.NewFileSystemError(path, err)
	}
	if info.IsDir() {
		return apperrors.NewFileSystemError(path, fmt.Errorf("%s is a directory, not a file", path))
	}
	if info.Size() == 0 {
		return apperrors.NewFileSystemError(path, errors.New("file is empty"))
	}
	return nil
}

// ValidateReport checks that the file at path is readable as format
func (v *FileValidator) ValidateReport(path string, format domain.ReportFormat) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	var err error
	switch format {
	case domain.ReportFormatCSV:
		err = checkCSV(path)
	case domain.ReportFormatExcel:
		err = checkXLSX(path)
	case domain.ReportFormatHTML:
		err = checkHTML(path)
	case domain.ReportFormatXML:
		err = checkXML(path)
	case domain.ReportFormatPDF:
		err = checkPDF(path)
	default:
		return apperrors.NewInvalidArgumentError("format", fmt.Sprintf("%q is not a report format", format))
	}
	if err != nil {
		v.logger.Error("Report file failed validation",
			slog.String("file", path),
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
		return apperrors.NewFileSystemError(path, fmt.Errorf("not a valid %s report: %w", format, err))
	}

	v.logger.Debug("Report file validated",
		slog.String("file", path),
		slog.String("format", string(format)))
	return nil
}

func checkCSV(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) == 1 && header[0] == "" {
		return errors.New("header row is empty")
	}
	return nil
}

func checkXLSX(path string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if len(f.GetSheetList()) == 0 {
		return errors.New("workbook has no sheets")
	}
	return nil
}

func checkHTML(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	head, err := io.ReadAll(io.LimitReader(f, sniffBytes))
	if err != nil {
		return err
	}
	if !bytes.Contains(bytes.ToLower(head), []byte("<table")) {
		return errors.New("no table element")
	}
	return nil
}

func checkXML(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := xml.NewDecoder(f)
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return errors.New("no root element")
			}
			return err
		}
		if _, ok := tok.(xml.StartElement); ok {
			return nil
		}
	}
}

func checkPDF(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	magic := make([]byte, 5)
	if _, err := io.ReadFull(f, magic); err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	if string(magic) != "%PDF-" {
		return errors.New("missing %PDF- header")
	}
	return nil
}
