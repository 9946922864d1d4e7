package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStr2List(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Str2List(" a, b,,a ", ","))
	assert.Empty(t, Str2List("", ","))
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "5551234567", DigitsOnly("(555) 123-4567", false))
	assert.Equal(t, "+15551234567", DigitsOnly("+1 555.123.4567", true))
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"1", "True", "true", " t "} {
		assert.True(t, ParseBool(s), s)
	}
	for _, s := range []string{"0", "False", "", "nope"} {
		assert.False(t, ParseBool(s), s)
	}
}

func TestExpandHome(t *testing.T) {
	assert.Equal(t, "/abs/path", ExpandHome("/abs/path"))
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Library"), ExpandHome("~/Library"))
}

func TestWriteJSONFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")

	require.NoError(t, WriteJSONFileAtomic(path, map[string]int{"value": 3}, false))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"value\":3}\n", string(b))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	rows := [][]string{{`say "hi"`, "1"}, {"a,b", "2"}}

	for _, quoteAll := range []bool{true, false} {
		path := filepath.Join(dir, "out.csv")
		require.NoError(t, WriteCSVFileAtomic(path, []string{"text", "count"}, rows, quoteAll))

		header, records, err := ReadCSVFile(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"text", "count"}, header)
		assert.Equal(t, rows, records)
	}

	b, err := os.ReadFile(filepath.Join(dir, "out.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"a,b",2`)
}

func TestCSVRoundTripLineEndings(t *testing.T) {
	dir := t.TempDir()
	rows := [][]string{{"line one\r\nline two", "1"}, {"cr\ronly", "2"}, {"lf\nonly", "3"}}
	want := [][]string{{"line one\nline two", "1"}, {"cr\ronly", "2"}, {"lf\nonly", "3"}}

	for _, quoteAll := range []bool{true, false} {
		path := filepath.Join(dir, "out.csv")
		require.NoError(t, WriteCSVFileAtomic(path, []string{"text", "count"}, rows, quoteAll))

		b, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(b), "\r\n", "quoteAll=%v", quoteAll)

		_, records, err := ReadCSVFile(path)
		require.NoError(t, err)
		assert.Equal(t, want, records, "quoteAll=%v", quoteAll)

		require.NoError(t, WriteCSVFileAtomic(path, []string{"text", "count"}, records, quoteAll))
		_, again, err := ReadCSVFile(path)
		require.NoError(t, err)
		assert.Equal(t, records, again, "quoteAll=%v", quoteAll)
	}
}

func TestReadCSVFileMissing(t *testing.T) {
	_, _, err := ReadCSVFile(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}
