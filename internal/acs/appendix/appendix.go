// Package appendix parses the ACS Appendix A metadata workbook into an
// index of table descriptors: which file sequences hold a table's columns
// and at which positions.
package appendix

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Span locates one slice of a table's columns inside a sequence file.
// Start and End are 1-based inclusive positions in the sequence template's
// column order.
type Span struct {
	Sequence string // 4-digit zero-padded sequence id
	Start    int
	End      int
}

// Table describes one detailed table: its name, human-readable title, and
// the ordered sequence spans that make it up. Multi-sequence tables have
// one span per appendix row, in source row order.
type Table struct {
	Name  string
	Title string
	Spans []Span
}

// Index is the parsed appendix metadata. Immutable after Parse; shared
// read-only across all states of a run.
type Index struct {
	tables map[string]*Table
	names  []string // first-seen order
}

// MalformedMetadataError reports an appendix row that cannot be used.
// The whole run must abort: without sequence numbers and column ranges no
// table can be located.
type MalformedMetadataError struct {
	Row    int // 1-based workbook row
	Reason string
}

func (e *MalformedMetadataError) Error() string {
	return fmt.Sprintf("appendix metadata row %d: %s", e.Row, e.Reason)
}

// Parse reads the appendix workbook. The first sheet is expected to carry a
// header row followed by one row per (table, sequence) pair with columns:
// name, title, restriction, sequence number, "start-end" range.
func Parse(r io.Reader) (*Index, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening appendix workbook: %w", err)
	}
	defer wb.Close()

	rows, err := wb.GetRows(wb.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("reading appendix sheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, &MalformedMetadataError{Row: 1, Reason: "workbook is empty"}
	}

	idx := &Index{tables: make(map[string]*Table)}

	// Row 0 is the header; data rows follow.
	for i, row := range rows[1:] {
		rowNum := i + 2

		if isBlank(row) {
			continue
		}

		name := strings.TrimSpace(cell(row, 0))
		title := strings.TrimSpace(cell(row, 1))
		seq := strings.TrimSpace(cell(row, 3))
		rng := strings.TrimSpace(cell(row, 4))

		if name == "" {
			return nil, &MalformedMetadataError{Row: rowNum, Reason: "missing table name"}
		}
		if seq == "" {
			return nil, &MalformedMetadataError{Row: rowNum, Reason: "missing sequence number"}
		}
		if rng == "" {
			return nil, &MalformedMetadataError{Row: rowNum, Reason: "missing start-end range"}
		}

		span, err := parseSpan(seq, rng)
		if err != nil {
			return nil, &MalformedMetadataError{Row: rowNum, Reason: err.Error()}
		}

		tbl, ok := idx.tables[name]
		if !ok {
			tbl = &Table{Name: name, Title: title}
			idx.tables[name] = tbl
			idx.names = append(idx.names, name)
		}
		tbl.Spans = append(tbl.Spans, span)
	}

	return idx, nil
}

// parseSpan splits a "start-end" range on the first dash and validates it
// before any use, so an unparsable range can never reach assembly.
func parseSpan(seq, rng string) (Span, error) {
	startStr, endStr, found := strings.Cut(rng, "-")
	if !found {
		return Span{}, fmt.Errorf("range %q has no dash separator", rng)
	}
	start, err := strconv.Atoi(strings.TrimSpace(startStr))
	if err != nil {
		return Span{}, fmt.Errorf("range %q: bad start: %v", rng, err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(endStr))
	if err != nil {
		return Span{}, fmt.Errorf("range %q: bad end: %v", rng, err)
	}
	if start < 1 {
		return Span{}, fmt.Errorf("range %q: start must be >= 1", rng)
	}
	if end < start {
		return Span{}, fmt.Errorf("range %q: end precedes start", rng)
	}
	return Span{Sequence: PadSequence(seq), Start: start, End: end}, nil
}

// PadSequence zero-pads a sequence number string to the canonical 4 digits.
func PadSequence(seq string) string {
	if len(seq) >= 4 {
		return seq
	}
	return strings.Repeat("0", 4-len(seq)) + seq
}

// SpansOf returns the table's sequence spans in source row order, or nil if
// the table is unknown.
func (x *Index) SpansOf(name string) []Span {
	tbl, ok := x.tables[name]
	if !ok {
		return nil
	}
	return tbl.Spans
}

// TableNames returns the unique table names in first-seen order.
func (x *Index) TableNames() []string {
	out := make([]string, len(x.names))
	copy(out, x.names)
	return out
}

// Tables returns the table descriptors in first-seen order. Used for the
// name/title index CSV.
func (x *Index) Tables() []Table {
	out := make([]Table, 0, len(x.names))
	for _, name := range x.names {
		out = append(out, *x.tables[name])
	}
	return out
}

// cell returns row[i], tolerating the short rows excelize produces when
// trailing cells are empty.
func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
