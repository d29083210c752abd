package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedManager(t *testing.T) *FileManager {
	t.Helper()
	root := t.TempDir()
	fm := NewFileManager(filepath.Join(root, "reports"), filepath.Join(root, "archive"))
	fm.now = func() time.Time { return time.Date(2024, time.March, 5, 14, 30, 12, 0, time.UTC) }
	require.NoError(t, fm.EnsureDirectories())
	return fm
}

func TestGenerateFileName(t *testing.T) {
	fm := fixedManager(t)

	name := fm.GenerateFileName("{timestamp}_{uuid}", ".txt", nil)
	assert.True(t, strings.HasPrefix(name, "20240305_143012_"))
	assert.True(t, strings.HasSuffix(name, ".txt"))

	assert.Equal(t, "rejected_20240305.log", fm.GenerateFileName("{kind}_{date}.log", ".log", map[string]string{"kind": "rejected"}))
}

func TestWriteReport(t *testing.T) {
	fm := fixedManager(t)

	path, err := fm.WriteReport("run.txt", "Total records:   2\n")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Total records:   2\n", string(data))
}

func TestWriteRejectedLog(t *testing.T) {
	fm := fixedManager(t)

	path, err := fm.WriteRejectedLog(nil, "none.log")
	require.NoError(t, err)
	assert.Empty(t, path)

	path, err = fm.WriteRejectedLog([]RejectedRowEntry{
		{File: "oc_1.xlsx", Role: "main", Row: 5, Reason: "missing supplier name"},
	}, "rejected.log")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "Total Rows: 1")
	assert.Contains(t, content, "File:    oc_1.xlsx (main)")
	assert.Contains(t, content, "Reason:  missing supplier name")
}

func TestArchiveInputAvoidsOverwrite(t *testing.T) {
	fm := fixedManager(t)
	src := filepath.Join(t.TempDir(), "oc_1.xlsx")

	require.NoError(t, os.WriteFile(src, []byte("first"), 0644))
	first, err := fm.ArchiveInput(src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(fm.ArchiveDir, "oc_1.xlsx"), first)
	assert.False(t, FileExists(src))

	require.NoError(t, os.WriteFile(src, []byte("second"), 0644))
	second, err := fm.ArchiveInput(src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(fm.ArchiveDir, "20240305_143012_oc_1.xlsx"), second)

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestArchiveInputDateSubdirs(t *testing.T) {
	fm := fixedManager(t)
	fm.UseDateSubdirs = true
	src := filepath.Join(t.TempDir(), "oc_2.csv")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0644))

	path, err := fm.ArchiveInput(src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(fm.ArchiveDir, "2024", "03", "05", "oc_2.csv"), path)
}
