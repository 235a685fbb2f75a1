// Package sequence parses one fixed-format estimate or margin record file
// into a row set indexed by logical record number.
package sequence

import (
	"fmt"
	"io"

	"acsgen/internal/acs/sfile"
)

// Canonical names the two positional bookkeeping fields are renamed to,
// matching the geography file's vocabulary so the join key lines up.
const (
	SeqField     = "seq"
	JoinKeyField = "Logical Record Number"
)

// Raw field names the Bureau uses in sequence templates.
const (
	rawSeqField    = "SEQUENCE"
	rawLogRecField = "LOGRECNO"
)

// RecordFormatError reports a row whose width does not match its template.
// Nothing is truncated or padded; the sequence is unusable for this state.
type RecordFormatError struct {
	Row  int // 1-based row in the file
	Got  int
	Want int
}

func (e *RecordFormatError) Error() string {
	return fmt.Sprintf("sequence record row %d: %d fields, template has %d",
		e.Row, e.Got, e.Want)
}

// Record is one parsed sequence row. Values holds every cell as an opaque
// string in template column order, with missing markers scrubbed to "".
type Record struct {
	LogRecNo string
	Values   []string
}

// RowSet is the parsed contents of one estimate or margin file.
type RowSet struct {
	// Columns is the template's column order after renaming the
	// positional fields to their canonical names.
	Columns []string

	// Rows preserves file order. Several rows may share a logical
	// record number only if the source file repeats it.
	Rows []Record
}

// Read parses a sequence file with the column names of its template.
// Structural parsing and renaming only: no numeric coercion ever happens
// here, so the Bureau's sentinel codes survive as text.
func Read(r io.Reader, tmpl []string) (*RowSet, error) {
	columns := make([]string, len(tmpl))
	logRecIdx := -1
	for i, col := range tmpl {
		switch col {
		case rawSeqField:
			columns[i] = SeqField
		case rawLogRecField:
			columns[i] = JoinKeyField
			logRecIdx = i
		default:
			columns[i] = col
		}
	}
	if logRecIdx < 0 {
		return nil, fmt.Errorf("sequence template has no %s column", rawLogRecField)
	}

	rs := &RowSet{Columns: columns}

	cr := sfile.NewCSVReader(r)
	for rowNum := 1; ; rowNum++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("sequence record row %d: %w", rowNum, err)
		}
		if len(row) != len(tmpl) {
			return nil, &RecordFormatError{Row: rowNum, Got: len(row), Want: len(tmpl)}
		}

		row = sfile.ScrubRow(row)
		rs.Rows = append(rs.Rows, Record{LogRecNo: row[logRecIdx], Values: row})
	}

	return rs, nil
}

// ByLogRec indexes the rows by logical record number. Last occurrence wins
// on duplicates.
func (rs *RowSet) ByLogRec() map[string]Record {
	out := make(map[string]Record, len(rs.Rows))
	for _, rec := range rs.Rows {
		out[rec.LogRecNo] = rec
	}
	return out
}
