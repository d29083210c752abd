// =============================================================================
// OC Consolidator - File Management Utilities
// =============================================================================
//
// This module handles the files an import leaves behind:
//
//   - The text report of each run, written to the output directory
//   - A log of the rows rejected during extraction
//   - Archiving of the input spreadsheets after a clean run
//
// FILE NAMING:
//   Report names come from a format string supporting these placeholders:
//     {uuid}      - A random UUID
//     {timestamp} - The run time as YYYYMMDD_HHMMSS
//     {date}      - The run date as YYYYMMDD
//     {time}      - The run time as HHMMSS
//   plus any caller-supplied {key} values.
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER STRUCTURE
// =============================================================================

// FileManager writes run artifacts and archives processed inputs.
type FileManager struct {
	// OutputDir receives reports and rejected-row logs.
	OutputDir string

	// ArchiveDir receives the input spreadsheets of clean runs.
	ArchiveDir string

	// UseDateSubdirs archives into ArchiveDir/YYYY/MM/DD.
	UseDateSubdirs bool

	now func() time.Time
}

// NewFileManager creates a FileManager for the given directories.
func NewFileManager(outputDir, archiveDir string) *FileManager {
	return &FileManager{
		OutputDir:  outputDir,
		ArchiveDir: archiveDir,
		now:        time.Now,
	}
}

// EnsureDirectories creates the output and archive directories.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.OutputDir, fm.ArchiveDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// REPORTS
// =============================================================================

// WriteReport writes content to OutputDir under fileName.
//
// RETURNS:
//   - The full path of the written report.
func (fm *FileManager) WriteReport(fileName, content string) (string, error) {
	path := filepath.Join(fm.OutputDir, fileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return path, nil
}

// RejectedRowEntry is one row left out during extraction.
type RejectedRowEntry struct {
	File   string
	Role   string
	Row    int
	Reason string
}

// WriteRejectedLog writes the rejected rows of a run. Nothing is written
// when entries is empty.
//
// RETURNS:
//   - The full path of the log, or "" when there was nothing to write.
func (fm *FileManager) WriteRejectedLog(entries []RejectedRowEntry, fileName string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	logPath := filepath.Join(fm.OutputDir, fileName)
	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create rejected-row log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "OC Consolidator - Rejected Rows\n"+
		"Generated: %s\n"+
		"Total Rows: %d\n"+
		"================================================================================\n\n",
		fm.now().Format("2006-01-02 15:04:05"),
		len(entries))

	for i, entry := range entries {
		fmt.Fprintf(writer, "Row #%d\n"+
			"  File:    %s (%s)\n"+
			"  Row:     %d\n"+
			"  Reason:  %s\n\n",
			i+1, entry.File, entry.Role, entry.Row, entry.Reason)
	}

	writer.WriteString("================================================================================\n" +
		"End of Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush rejected-row log: %w", err)
	}
	return logPath, nil
}

// GenerateFileName expands the placeholders of format and appends ext
// when the result does not already end with it.
//
// EXAMPLE:
//   GenerateFileName("{timestamp}_{uuid}", ".txt", nil)
//   -> "20240305_143012_6f1c...e2.txt"
func (fm *FileManager) GenerateFileName(format, ext string, params map[string]string) string {
	now := fm.now()
	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if ext != "" && !strings.HasSuffix(strings.ToLower(result), strings.ToLower(ext)) {
		result += ext
	}
	return result
}

// =============================================================================
// ARCHIVING
// =============================================================================

// ArchiveInput moves a processed spreadsheet into ArchiveDir. A file of the
// same name already in the archive is never overwritten; the new one gets a
// timestamp prefix instead.
//
// RETURNS:
//   - The archive path of the file.
func (fm *FileManager) ArchiveInput(filePath string) (string, error) {
	archivePath := fm.archivePath(filePath)
	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	// Rename fails across filesystems; fall back to copy and remove.
	if err := os.Rename(filePath, archivePath); err != nil {
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

func (fm *FileManager) archivePath(filePath string) string {
	dir := fm.ArchiveDir
	now := fm.now()
	if fm.UseDateSubdirs {
		dir = filepath.Join(dir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
		)
	}

	name := filepath.Base(filePath)
	path := filepath.Join(dir, name)
	if FileExists(path) {
		path = filepath.Join(dir, now.Format("20060102_150405")+"_"+name)
	}
	return path
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}
	return destFile.Sync()
}

// FileExists reports whether path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
