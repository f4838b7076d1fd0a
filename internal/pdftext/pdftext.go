// Package pdftext supplies per-page statement text to the extractor.
//
// PDF files are read with github.com/ledongthuc/pdf, one visual row per
// line. Plain-text files are split on form feeds, the page separator that
// `pdftotext -layout` emits, which makes pre-extracted statements and test
// fixtures first-class input.
package pdftext

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/cleared-dev/stmtparse/internal/extract"
)

// ErrUnsupportedFormat is returned for files that are neither PDF nor text.
var ErrUnsupportedFormat = errors.New("unsupported statement format")

const pageBreak = "\f"

// Extensions lists the file types Open accepts.
var Extensions = []string{".pdf", ".txt"}

// Supported reports whether path has an extension Open accepts.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Open opens a statement. It satisfies extract.Opener.
func Open(path string) (extract.Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return openPDF(path)
	case ".txt":
		return openText(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
}

func openText(path string) (extract.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return SplitPages(string(data)), nil
}

// SplitPages splits form-feed separated text into pages. A trailing form
// feed does not start an extra page.
func SplitPages(text string) extract.Pages {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, pageBreak)
	if text == "" {
		return extract.Pages{}
	}
	return extract.Pages(strings.Split(text, pageBreak))
}

// pdfDocument keeps the file open until Close; pages are decoded on demand
// and nothing per page is retained.
type pdfDocument struct {
	f *os.File
	r *pdf.Reader
}

// openFile is pdf.Open, swapped in tests.
var openFile = pdf.Open

func openPDF(path string) (doc extract.Document, err error) {
	var f *os.File
	defer func() {
		if rec := recover(); rec != nil {
			doc, err = nil, fmt.Errorf("opening %s: pdf library crashed: %v", path, rec)
		}
		if err != nil && f != nil {
			f.Close()
		}
	}()

	f, r, err := openFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	if r.NumPage() == 0 {
		return nil, fmt.Errorf("pdf %s has no pages", path)
	}
	return &pdfDocument{f: f, r: r}, nil
}

func (d *pdfDocument) NumPages() int {
	return d.r.NumPage()
}

func (d *pdfDocument) PageText(n int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("page %d: pdf library crashed: %v", n, rec)
		}
	}()

	page := d.r.Page(n)
	if page.V.IsNull() {
		return "", nil
	}
	rows, err := page.GetTextByRow()
	if err != nil {
		return "", fmt.Errorf("page %d: %w", n, err)
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		if line := strings.TrimSpace(joinRow(row.Content)); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

func (d *pdfDocument) Close() error {
	return d.f.Close()
}

// joinRow rebuilds a visual row from positioned fragments. Fragments that
// touch are concatenated, a word gap becomes one space and a column gap
// becomes two, so amount columns stay whitespace-delimited.
func joinRow(words pdf.TextHorizontal) string {
	var b strings.Builder
	var end float64
	for i, w := range words {
		if i > 0 {
			gap := w.X - end
			size := w.FontSize
			if size <= 0 {
				size = 1
			}
			switch {
			case gap > size:
				b.WriteString("  ")
			case gap > size/5:
				b.WriteByte(' ')
			}
		}
		b.WriteString(w.S)
		end = w.X + w.W
	}
	return b.String()
}
