package runlog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2024, 1, 31, 9, 15, 0, 0, time.UTC)

func okEntry() Entry {
	return Entry{
		Timestamp:    testTime,
		File:         "jan.pdf",
		Status:       StatusOK,
		Transactions: 42,
		Warnings:     1,
	}
}

func failedEntry() Entry {
	return Entry{
		Timestamp: testTime,
		File:      "feb.pdf",
		Status:    StatusFailed,
		Error:     "validating: chain mismatch, row 3",
	}
}

func TestAppend_NewFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{okEntry()}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "jan.pdf", entries[0].File)
	assert.Equal(t, 42, entries[0].Transactions)
}

func TestAppend_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{okEntry()}))
	require.NoError(t, Append(dir, []Entry{failedEntry()}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, StatusOK, entries[0].Status)
	assert.Equal(t, StatusFailed, entries[1].Status)
	assert.Equal(t, "validating: chain mismatch, row 3", entries[1].Error)

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), Header))
}

func TestAppend_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "nested")
	require.NoError(t, Append(dir, []Entry{okEntry()}))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestRead_NotFound(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRead_HeaderOnly(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(Header+"\n"), 0o644))

	entries, err := Read(dir)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestMarshalUnmarshal(t *testing.T) {
	e := failedEntry()
	row := MarshalEntry(e)
	assert.Equal(t, "2024-01-31T09:15:00Z", row[colTime])
	assert.Equal(t, "0", row[colTxns])

	got, err := UnmarshalEntry(row)
	require.NoError(t, err)
	assert.True(t, e.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, e.File, got.File)
	assert.Equal(t, e.Error, got.Error)
}

func TestUnmarshalEntry_Bad(t *testing.T) {
	_, err := UnmarshalEntry([]string{"one", "two"})
	assert.ErrorContains(t, err, "expected 6 fields")

	row := MarshalEntry(okEntry())
	row[colTxns] = "many"
	_, err = UnmarshalEntry(row)
	assert.ErrorContains(t, err, "parsing transactions")
}


type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteEntries_ReportsFlushError(t *testing.T) {
	err := writeEntries(failingWriter{}, []Entry{okEntry()}, true)
	require.Error(t, err)
	assert.ErrorContains(t, err, "flushing run log: disk full")
}

func TestAppend_UnwritableLog(t *testing.T) {
	dir := t.TempDir()
	// A directory where the log file should be cannot be opened for writing.
	require.NoError(t, os.Mkdir(filepath.Join(dir, FileName), 0o755))
	assert.ErrorContains(t, Append(dir, []Entry{okEntry()}), "opening run log")
}
