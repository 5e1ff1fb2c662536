package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains the resolved file system locations of one run
type Paths struct {
	BaseDir    string
	ReportsDir string
	LogFile    string
	BaseName   string
}

// ResolvePaths resolves the configured report directory and log file against
// baseDir. An empty baseDir means the working directory.
func ResolvePaths(cfg *Config, baseDir string) (*Paths, error) {
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		baseDir = wd
	}

	return &Paths{
		BaseDir:    baseDir,
		ReportsDir: resolve(baseDir, cfg.Report.Dir),
		LogFile:    resolve(baseDir, cfg.Logging.FilePath),
		BaseName:   cfg.Report.BaseName,
	}, nil
}

func resolve(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// GetArchivePath returns the path of the zipped reports
func (p *Paths) GetArchivePath() string {
	return filepath.Join(p.ReportsDir, p.BaseName+".zip")
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
