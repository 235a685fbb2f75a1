// Package sfile provides shared plumbing for reading the Bureau's raw
// summary-file members: character-set decoding, BOM stripping, and the
// missing-value conventions common to the geography and sequence files.
//
// Summary files are header-less CSVs encoded as ISO-8859-1. Values are kept
// as opaque strings end-to-end; the Bureau uses negative sentinel codes that
// would be corrupted by numeric round-trips.
package sfile

import (
	"encoding/csv"
	"io"

	"golang.org/x/text/encoding/charmap"
)

// Missing-value markers used across all summary files. An empty cell is
// missing as well. "-1" doubles as a legitimate estimate in a handful of
// tables; it is treated as missing anyway for compatibility with the
// published extraction convention.
const (
	missingDot      = "."
	missingNegative = "-1"
)

// NewReader wraps r so that reads yield UTF-8 text: the ISO-8859-1 bytes are
// decoded and a UTF-8 BOM, if some re-encoding tool prepended one, is
// stripped.
func NewReader(r io.Reader) io.Reader {
	return charmap.ISO8859_1.NewDecoder().Reader(newBOMSkippingReader(r))
}

// NewCSVReader returns a csv.Reader over the decoded bytes of r, configured
// for header-less summary files with variable field counts (width is
// validated by callers against their template).
func NewCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(NewReader(r))
	cr.FieldsPerRecord = -1
	return cr
}

// Scrub maps the Bureau's missing-value markers to the empty string, the
// canonical missing representation used throughout assembly and output.
func Scrub(v string) string {
	if v == missingDot || v == missingNegative {
		return ""
	}
	return v
}

// ScrubRow applies Scrub to every field of row, in place, and returns row.
func ScrubRow(row []string) []string {
	for i, v := range row {
		row[i] = Scrub(v)
	}
	return row
}

// bomSkippingReader wraps an io.Reader and skips a UTF-8 BOM
// (0xEF 0xBB 0xBF) if present at the start of the stream.
type bomSkippingReader struct {
	reader  io.Reader
	checked bool
	pending []byte
}

func newBOMSkippingReader(r io.Reader) *bomSkippingReader {
	return &bomSkippingReader{reader: r}
}

// Read implements io.Reader. On the first read it inspects the leading
// bytes for a BOM and drops it.
func (r *bomSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true

		var buf [3]byte
		n, err := io.ReadFull(r.reader, buf[:])
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		if n > 0 {
			if n == 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF {
				// BOM found, nothing to carry over.
			} else {
				r.pending = append(r.pending, buf[:n]...)
			}
		}
		if err != nil && err != io.EOF {
			return 0, err
		}
	}

	if len(r.pending) > 0 {
		n := copy(p, r.pending)
		r.pending = r.pending[n:]
		return n, nil
	}

	return r.reader.Read(p)
}
