package main

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NeoSilver997/silver-media-library/internal/report"
	"github.com/NeoSilver997/silver-media-library/pkg/models"
)

func writeTree(t *testing.T) string {
	t.Helper()
	color.NoColor = true

	root := t.TempDir()
	files := map[string]string{
		"photos/a.jpg":      "same picture",
		"backup/a copy.jpg": "same picture",
		"music/song.mp3":    "unique song",
		"music/other.mp3":   "another song",
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := versionCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(nil)

	require.NoError(t, cmd.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "silverscan "))
}

func TestHashCommand(t *testing.T) {
	root := writeTree(t)
	path := filepath.Join(root, "photos", "a.jpg")

	var out bytes.Buffer
	cmd := hashCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())
	sum := sha256.Sum256([]byte("same picture"))
	assert.Equal(t, hex.EncodeToString(sum[:])+"  "+path+"\n", out.String())
}

func TestHashCommand_Errors(t *testing.T) {
	var out, errOut bytes.Buffer

	cmd := hashCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"/nonexistent/file.jpg"})
	assert.Error(t, cmd.Execute())
	assert.Contains(t, errOut.String(), "/nonexistent/file.jpg")

	cmd = hashCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"--algorithm", "md5", "/nonexistent/file.jpg"})
	assert.Error(t, cmd.Execute())
}

func TestIndexCommand(t *testing.T) {
	root := writeTree(t)
	inventory := filepath.Join(t.TempDir(), "inventory.jsonl.gz")

	var out bytes.Buffer
	cmd := indexCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--inventory", inventory, "--exclude", "backup", root})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "3 files")
	assert.Contains(t, out.String(), "music  2")

	f, err := os.Open(inventory)
	require.NoError(t, err)
	defer f.Close()
	files, err := report.ReadInventory(f)
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestIndexCommand_InvalidRoot(t *testing.T) {
	cmd := indexCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"/nonexistent/root"})
	assert.Error(t, cmd.Execute())
}

func TestScanCommand_JSONReport(t *testing.T) {
	for _, quickPass := range []string{"true", "false"} {
		t.Run("quick-pass="+quickPass, func(t *testing.T) {
			root := writeTree(t)
			output := filepath.Join(t.TempDir(), "report.json")
			metrics := filepath.Join(t.TempDir(), "scan.prom")

			cmd := scanCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs([]string{
				"--quick-pass=" + quickPass,
				"--report", "json",
				"--output", output,
				"--metrics-file", metrics,
				root,
			})
			require.NoError(t, cmd.Execute())

			data, err := os.ReadFile(output)
			require.NoError(t, err)
			var results models.ScanResults
			require.NoError(t, json.Unmarshal(data, &results))

			assert.Equal(t, models.StatusCompleted, results.Status)
			assert.Equal(t, uint64(4), results.ProcessedFiles)
			require.Len(t, results.Groups, 1)
			assert.Equal(t, 2, results.Groups[0].Count())
			assert.Equal(t, uint64(len("same picture")), results.WastedSpace)

			prom, err := os.ReadFile(metrics)
			require.NoError(t, err)
			assert.Contains(t, string(prom), "silverscan_duplicate_groups 1")
		})
	}
}

func TestScanCommand_InvalidFlags(t *testing.T) {
	root := writeTree(t)

	cmd := scanCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--report", "html", root})
	assert.Error(t, cmd.Execute())
}
