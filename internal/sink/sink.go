// Package sink delivers assembled tables to their destination. Drivers:
// local filesystem, in-memory (tests), S3-compatible object storage, and
// Postgres.
package sink

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"acsgen/internal/acs/assemble"
)

// IndexEntry is one row of the run-level table index: every table name the
// appendix metadata knows, with its title.
type IndexEntry struct {
	Name  string
	Title string
}

// Sink writes run outputs. Implementations must never leave a partial
// table observable: a failed write produces nothing.
type Sink interface {
	// WriteTable stores one non-empty assembled table for a state.
	WriteTable(ctx context.Context, state string, tbl *assemble.Table) error

	// WriteIndex stores the name/title index of all known tables.
	WriteIndex(ctx context.Context, entries []IndexEntry) error
}

// indexName is the file name of the table index, kept verbatim from the
// published extraction so downstream joins keep working.
const indexName = "ACS All Tables.csv"

// tableName returns the output object name for one (state, table) pair.
func tableName(state string, tbl *assemble.Table) string {
	return state + tbl.Name + ".csv"
}

// encodeTable renders a table as CSV bytes: header row first, one data row
// per geographic unit, missing cells empty. Deterministic for unchanged
// input, which is what makes re-runs byte-identical.
func encodeTable(tbl *assemble.Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(tbl.Header()); err != nil {
		return nil, err
	}
	record := make([]string, 0, len(tbl.Columns)+1)
	for _, row := range tbl.Rows {
		record = append(record[:0], row.GeoID)
		record = append(record, row.Values...)
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodeIndex renders the table index CSV with a name,title header.
func encodeIndex(entries []IndexEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"name", "title"}); err != nil {
		return nil, err
	}
	for _, e := range entries {
		if err := w.Write([]string{e.Name, e.Title}); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// errWrite standardizes write-failure wrapping across drivers.
func errWrite(what string, err error) error {
	return fmt.Errorf("writing %s: %w", what, err)
}
