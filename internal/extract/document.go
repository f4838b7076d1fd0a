package extract

import (
	"errors"
	"fmt"
)

// ErrPageOutOfRange is returned for a page number outside 1..NumPages.
var ErrPageOutOfRange = errors.New("page out of range")

// Document is an opened statement whose page text can be read one page at
// a time. Close must be called once extraction is finished.
type Document interface {
	NumPages() int
	// PageText returns the text of page n, counting from 1, with one line
	// per visual row.
	PageText(n int) (string, error)
	Close() error
}

// Opener opens a statement file as a Document.
type Opener func(path string) (Document, error)

// Pages is an in-memory Document, one string per page.
type Pages []string

// NumPages returns the page count.
func (p Pages) NumPages() int { return len(p) }

// PageText returns page n (1-based).
func (p Pages) PageText(n int) (string, error) {
	if n < 1 || n > len(p) {
		return "", fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, n, len(p))
	}
	return p[n-1], nil
}

// Close is a no-op.
func (p Pages) Close() error { return nil }
