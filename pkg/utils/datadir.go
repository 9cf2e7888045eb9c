package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// DataDirManager handles the local data directory that holds the cached
// downloads, the analytical database and the rendered chart.
type DataDirManager struct {
	BaseDir string
}

// NewDataDirManager creates a new data directory manager.
func NewDataDirManager(baseDir string) *DataDirManager {
	return &DataDirManager{BaseDir: baseDir}
}

// Ensure creates the data directory if it does not exist.
func (dm *DataDirManager) Ensure() error {
	if err := os.MkdirAll(dm.BaseDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// Path returns the full path for a file inside the data directory. The file
// name is cleaned so it cannot escape the directory.
func (dm *DataDirManager) Path(fileName string) string {
	return filepath.Join(dm.BaseDir, filepath.Base(fileName))
}

// FileSize returns the size in bytes of a file inside the data directory.
func (dm *DataDirManager) FileSize(fileName string) (int64, error) {
	info, err := os.Stat(dm.Path(fileName))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
