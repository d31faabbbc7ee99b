package core

// csvinput.go prepares uploaded spreadsheet exports for parsing.
//
// Exports saved by Excel on Windows start with a UTF-8 BOM, and hand-edited
// files occasionally contain stray Latin-1 bytes. The import reader strips the
// BOM and replaces invalid UTF-8 with U+FFFD so encoding/csv never sees either.

import (
	"encoding/csv"
	"fmt"
	"io"
	"sync/atomic"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NewImportReader wraps r so it yields clean UTF-8 without a leading BOM.
func NewImportReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// CountingReader counts bytes read through it.
type CountingReader struct {
	r io.Reader
	n atomic.Int64
}

// NewCountingReader wraps r.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{r: r}
}

func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n.Add(int64(n))
	return n, err
}

// BytesRead returns the number of bytes read so far.
func (c *CountingReader) BytesRead() int64 {
	return c.n.Load()
}

// ReadCSV parses a comma-delimited export into rows. Rows may have differing
// lengths and quotes are handled leniently; blank lines are dropped.
func ReadCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(NewImportReader(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return rows, nil
}
