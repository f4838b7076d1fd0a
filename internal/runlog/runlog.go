// Package runlog keeps a CSV history of batch extractions.
package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Status values.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// FileName is the log file written inside the output directory.
const FileName = "run-log.csv"

// Header is the CSV header for run-log.csv.
const Header = "timestamp,file,status,transactions,warnings,error"

// Entry is one row in the run log.
type Entry struct {
	Timestamp    time.Time
	File         string
	Status       string
	Transactions int
	Warnings     int
	Error        string
}

const (
	numFields = 6
	colTime   = 0
	colFile   = 1
	colStatus = 2
	colTxns   = 3
	colWarn   = 4
	colError  = 5
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTime] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colFile] = e.File
	row[colStatus] = e.Status
	row[colTxns] = strconv.Itoa(e.Transactions)
	row[colWarn] = strconv.Itoa(e.Warnings)
	row[colError] = e.Error
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTime])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTime], err)
	}
	txns, err := strconv.Atoi(record[colTxns])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing transactions %q: %w", record[colTxns], err)
	}
	warnings, err := strconv.Atoi(record[colWarn])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing warnings %q: %w", record[colWarn], err)
	}

	return Entry{
		Timestamp:    ts,
		File:         record[colFile],
		Status:       record[colStatus],
		Transactions: txns,
		Warnings:     warnings,
		Error:        record[colError],
	}, nil
}

// Append writes entries to <dir>/run-log.csv, creating the directory, file
// and header if needed.
func Append(dir string, entries []Entry) (err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	path := filepath.Join(dir, FileName)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing run log: %w", cerr)
		}
	}()

	return writeEntries(f, entries, needsHeader)
}

func writeEntries(w io.Writer, entries []Entry, header bool) error {
	cw := csv.NewWriter(w)
	if header {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing run log: %w", err)
	}
	return nil
}

// Read returns all entries from <dir>/run-log.csv, or nil if there is no
// log yet.
func Read(dir string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(dir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
