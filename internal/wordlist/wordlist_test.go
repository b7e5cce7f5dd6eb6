package wordlist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeList(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "list.txt")
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o644))
	return path
}

func TestLoad_DeduplicatesAcrossFiles(t *testing.T) {
	first := writeList(t, "debug\nadmin\n\n  debug  \n")
	second := writeList(t, "admin\ntrace\n")

	words, err := Load([]string{first, second})
	require.NoError(t, err)
	assert.Equal(t, []string{"debug", "admin", "trace"}, words)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load([]string{"/does/not/exist.txt"})
	assert.Error(t, err)
}

func TestSplitPaths(t *testing.T) {
	assert.Equal(t, []string{"a.txt", "b.txt"}, SplitPaths("a.txt, b.txt"))
	assert.Equal(t, []string{"one.txt"}, SplitPaths("one.txt"))
	assert.Nil(t, SplitPaths(" , "))
}

func TestFilterHeaderNames(t *testing.T) {
	words := []string{"X-Forwarded-For", "Bad Header", "under_score", "semi;colon", "Num9"}
	assert.Equal(t, []string{"X-Forwarded-For", "under_score", "Num9"}, FilterHeaderNames(words))
}

func TestFilterCookieNames(t *testing.T) {
	words := []string{"session", "bad=name", "worse;name", "no,commas", "fine-one"}
	assert.Equal(t, []string{"session", "fine-one"}, FilterCookieNames(words))
}
