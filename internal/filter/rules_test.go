package filter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRules = `
exclude:
  - literal: "/proc/"
  - regex: "\\.tmp$"
  - glob: "**/*.part"
hidden_folders: [".cache", "Thumbs"]
`

func TestLoadRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleRules), 0644))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	require.Len(t, rules.Exclude, 3)
	assert.Equal(t, "/proc/", rules.Exclude[0].Literal)
	assert.Equal(t, `\.tmp$`, rules.Exclude[1].Regex)
	assert.Equal(t, "**/*.part", rules.Exclude[2].Glob)
	assert.Equal(t, []string{".cache", "Thumbs"}, rules.HiddenFolders)
}

func TestLoadRules_Missing(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseRules_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"Two matchers", "exclude:\n  - literal: a\n    glob: b\n"},
		{"No matcher", "exclude:\n  - {}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRules([]byte(tt.data))
			assert.ErrorIs(t, err, ErrInvalidRule)
		})
	}

	_, err := ParseRules([]byte("exclude: [unterminated"))
	assert.Error(t, err)
}

func TestRules_Apply(t *testing.T) {
	rules, err := ParseRules([]byte(sampleRules))
	require.NoError(t, err)

	base := Config{Literals: []string{"keep"}, HiddenFolders: []string{".git"}}
	merged := rules.Apply(base)

	assert.Equal(t, []string{"keep", "/proc/"}, merged.Literals)
	assert.Equal(t, []string{`\.tmp$`}, merged.Regexes)
	assert.Equal(t, []string{"**/*.part"}, merged.Globs)
	assert.Equal(t, []string{".git", ".cache", "Thumbs"}, merged.HiddenFolders)
	// base untouched
	assert.Equal(t, []string{"keep"}, base.Literals)

	f, err := New(merged)
	require.NoError(t, err)
	assert.True(t, f.ShouldExclude(p("data", "Thumbs", "x.jpg")))
}
