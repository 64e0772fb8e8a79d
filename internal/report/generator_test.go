package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NeoSilver997/silver-media-library/internal/config"
	"github.com/NeoSilver997/silver-media-library/pkg/models"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		input    time.Duration
		expected string
	}{
		{1500 * time.Microsecond, "1.50ms"},
		{2500 * time.Millisecond, "2.50s"},
		{90 * time.Second, "1m30.00s"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1h2m3.00s"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatDuration(tt.input))
	}
}

func testResults() *models.ScanResults {
	mtime := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	file := func(path string, size uint64) models.FileDescriptor {
		return *models.NewFileDescriptor(path, size, mtime, mtime, mtime)
	}

	r := models.NewScanResults("session-1", []string{"/data"})
	r.Version = "test"
	r.Status = models.StatusCompleted
	r.StartTime = mtime
	r.EndTime = mtime.Add(2 * time.Second)
	r.Duration = 2 * time.Second
	r.ProcessedDirs = 3
	r.ProcessedFiles = 5
	r.TotalBytes = 70
	r.MediaCounts[models.MediaPhoto] = 3
	r.MediaCounts[models.MediaMusic] = 2
	r.Stats.FullAlgorithm = "sha256"

	r.SetGroups([]models.DuplicateGroup{
		{
			Digest:      models.Digest{0x01, 0x02},
			Algorithm:   "sha256",
			FileSize:    10,
			Members:     []models.FileDescriptor{file("/data/a.jpg", 10), file("/data/b.jpg", 10)},
			WastedSpace: 10,
		},
		{
			Digest:      models.Digest{0xab, 0xcd},
			Algorithm:   "sha256",
			FileSize:    10,
			Members:     []models.FileDescriptor{file("/data/x.mp3", 10), file("/data/y.mp3", 10), file("/data/z.mp3", 10)},
			WastedSpace: 20,
		},
	})
	return r
}

func newTestGenerator(t *testing.T, format, output string) *Generator {
	t.Helper()
	g, err := NewGenerator(&config.Config{ReportFormat: format, OutputFile: output}, nil)
	require.NoError(t, err)
	return g
}

func TestGenerate_Console(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	g := newTestGenerator(t, "", "")
	g.SetOutput(&buf)

	path, err := g.Generate(testResults())
	require.NoError(t, err)
	assert.Empty(t, path)

	out := buf.String()
	assert.Contains(t, out, "SCAN COMPLETED")
	assert.Contains(t, out, "2 duplicate groups, 5 files, 30 B reclaimable")
	assert.Contains(t, out, "/data/z.mp3")
	assert.Contains(t, out, "3 photo, 2 music")

	// Largest waste first
	assert.Less(t, strings.Index(out, "/data/x.mp3"), strings.Index(out, "/data/a.jpg"))
}

func TestGenerate_ConsoleNoDuplicates(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	g := newTestGenerator(t, "", "")
	g.SetOutput(&buf)

	r := testResults()
	r.SetGroups(nil)
	_, err := g.Generate(r)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No duplicates found")
}

func TestGenerate_ConsoleLimit(t *testing.T) {
	color.NoColor = true

	r := testResults()
	var groups []models.DuplicateGroup
	for i := 0; i < consoleGroupLimit+3; i++ {
		groups = append(groups, models.DuplicateGroup{
			Digest:   models.Digest{byte(i)},
			FileSize: 1,
			Members: []models.FileDescriptor{
				{Path: fmt.Sprintf("/d/%02d-a", i)},
				{Path: fmt.Sprintf("/d/%02d-b", i)},
			},
			WastedSpace: 1,
		})
	}
	r.SetGroups(groups)

	var buf bytes.Buffer
	g := newTestGenerator(t, "", "")
	g.SetOutput(&buf)
	_, err := g.Generate(r)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "and 3 more groups")
}

func TestGenerate_JSON(t *testing.T) {
	output := filepath.Join(t.TempDir(), "report.json")
	g := newTestGenerator(t, "json", output)

	r := testResults()
	path, err := g.Generate(r)
	require.NoError(t, err)
	assert.Equal(t, output, path)
	assert.Equal(t, output, r.ReportPath)

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var decoded models.ScanResults
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "session-1", decoded.SessionID)
	require.Len(t, decoded.Groups, 2)
	assert.Equal(t, models.Digest{0xab, 0xcd}, decoded.Groups[1].Digest)
	assert.Equal(t, uint64(30), decoded.WastedSpace)
}

func TestGenerate_Text(t *testing.T) {
	output := filepath.Join(t.TempDir(), "report.txt")
	g := newTestGenerator(t, "text", output)

	_, err := g.Generate(testResults())
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "DUPLICATE GROUPS: 2")
	assert.Contains(t, out, "[1] 3 copies of 10 B, wasted 20 B")
	assert.Contains(t, out, "sha256: abcd")
	assert.Contains(t, out, "/data/b.jpg")
}

func TestGenerate_Markdown(t *testing.T) {
	output := filepath.Join(t.TempDir(), "report.md")
	g := newTestGenerator(t, "md", output)

	_, err := g.Generate(testResults())
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "# Silverscan Duplicate Report")
	assert.Contains(t, out, "| **Duplicate groups** | **2** |")
	assert.Contains(t, out, "/data/x.mp3<br/>/data/y.mp3")
}

func TestGenerate_DefaultName(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	g := newTestGenerator(t, "json", "")
	path, err := g.Generate(testResults())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "SILVERSCAN-REPORT-"))
	assert.FileExists(t, path)
}

func TestGenerate_UnknownFormat(t *testing.T) {
	g := newTestGenerator(t, "html", filepath.Join(t.TempDir(), "x"))
	_, err := g.Generate(testResults())
	assert.Error(t, err)
}
