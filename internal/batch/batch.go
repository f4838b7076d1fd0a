// Package batch converts every statement in a directory, one document at a
// time. A failing document is recorded and the batch carries on.
package batch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/stmtparse/internal/export"
	"github.com/cleared-dev/stmtparse/internal/extract"
	"github.com/cleared-dev/stmtparse/internal/pdftext"
	"github.com/cleared-dev/stmtparse/internal/runlog"
)

// ErrOutputCollision is returned for a statement whose CSV path was already
// written earlier in the same batch, e.g. jan.pdf and jan.txt.
var ErrOutputCollision = errors.New("output path already used")

// FileInfo describes a statement file found by Scan.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// Scan returns the statement files directly inside dir, sorted by name.
func Scan(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading statement dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || !pdftext.Supported(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// Outcome is the result of converting one file.
type Outcome struct {
	File         string
	Output       string
	Transactions int
	Warnings     int
	Err          error
}

// OK reports whether the file converted.
func (o Outcome) OK() bool { return o.Err == nil }

// Summary collects the outcomes of a batch.
type Summary struct {
	Outcomes  []Outcome
	Succeeded int
	Failed    int
}

// Runner converts statements to CSV files in OutputDir.
type Runner struct {
	Extractor *extract.Extractor
	Open      extract.Opener
	Writer    *export.Writer
	OutputDir string
	Logger    zerolog.Logger
	// Now stamps run log entries. Defaults to time.Now.
	Now func() time.Time
}

// NewRunner returns a Runner with the default extractor, opener and writer.
func NewRunner(outputDir string) *Runner {
	return &Runner{
		Extractor: extract.New(),
		Open:      pdftext.Open,
		Writer:    export.NewWriter(export.DefaultSeparator),
		OutputDir: outputDir,
		Logger:    zerolog.Nop(),
	}
}

// OutputPath is where Run writes the CSV for a statement file.
func (r *Runner) OutputPath(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return filepath.Join(r.OutputDir, base+".csv")
}

// Convert extracts src and writes its transactions to dst.
func (r *Runner) Convert(src, dst string) Outcome {
	out := Outcome{File: filepath.Base(src), Output: dst}

	res, err := r.Extractor.ExtractFile(src, r.Open)
	if err != nil {
		out.Err = err
		return out
	}
	if err := r.Writer.WriteFile(dst, res.Transactions); err != nil {
		out.Err = fmt.Errorf("exporting: %w", err)
		return out
	}
	out.Transactions = len(res.Transactions)
	out.Warnings = len(res.Warnings)
	return out
}

// Run converts files in order and appends every outcome to the run log in
// OutputDir.
func (r *Runner) Run(files []FileInfo) (Summary, error) {
	var sum Summary
	if err := os.MkdirAll(r.OutputDir, 0o755); err != nil {
		return sum, fmt.Errorf("creating output dir: %w", err)
	}

	now := r.Now
	if now == nil {
		now = time.Now
	}

	entries := make([]runlog.Entry, 0, len(files))
	claimed := make(map[string]string, len(files))
	for _, f := range files {
		log := r.Logger.With().Str("file", f.Name).Logger()
		dst := r.OutputPath(f.Name)

		var out Outcome
		if first, ok := claimed[dst]; ok {
			out = Outcome{
				File:   f.Name,
				Output: dst,
				Err:    fmt.Errorf("%w: %s and %s both map to %s", ErrOutputCollision, first, f.Name, dst),
			}
		} else {
			claimed[dst] = f.Name
			out = r.Convert(f.Path, dst)
		}
		sum.Outcomes = append(sum.Outcomes, out)

		entry := runlog.Entry{
			Timestamp:    now(),
			File:         f.Name,
			Transactions: out.Transactions,
			Warnings:     out.Warnings,
		}
		if out.OK() {
			sum.Succeeded++
			entry.Status = runlog.StatusOK
			log.Info().Int("transactions", out.Transactions).Int("warnings", out.Warnings).Msg("converted")
		} else {
			sum.Failed++
			entry.Status = runlog.StatusFailed
			entry.Error = out.Err.Error()
			log.Error().Err(out.Err).Str("kind", extract.Kind(out.Err)).Msg("conversion failed")
		}
		entries = append(entries, entry)
	}

	if err := runlog.Append(r.OutputDir, entries); err != nil {
		return sum, fmt.Errorf("writing run log: %w", err)
	}
	return sum, nil
}
