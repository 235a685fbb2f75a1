// Package geo parses a state's geography file and produces the lookup from
// geographic identifiers to logical record numbers used to join sequence
// data at a single summary level.
package geo

import (
	"fmt"
	"io"

	"acsgen/internal/acs/sfile"
)

// Field names of the geography template the index depends on.
const (
	summaryLevelField = "Summary Level"
	identifierField   = "Geographic Identifier"
	logicalRecField   = "Logical Record Number"
)

// Record pairs a geographic identifier with its logical record number.
type Record struct {
	GeoID    string
	LogRecNo string
}

// Index is the per-state geography lookup, filtered to one summary level.
// Read-only after Parse; shared across all tables of a state.
type Index struct {
	records  []Record
	byLogRec map[string]string
}

// Parse reads the geography CSV using the geo template's column names and
// keeps only rows whose summary level equals level exactly. String
// comparison is deliberate: summary level codes carry leading zeros.
//
// No matching rows is not an error; joins against the empty index simply
// produce empty tables.
func Parse(r io.Reader, geoTemplate []string, level string) (*Index, error) {
	sumIdx, err := fieldIndex(geoTemplate, summaryLevelField)
	if err != nil {
		return nil, err
	}
	idIdx, err := fieldIndex(geoTemplate, identifierField)
	if err != nil {
		return nil, err
	}
	recIdx, err := fieldIndex(geoTemplate, logicalRecField)
	if err != nil {
		return nil, err
	}

	idx := &Index{byLogRec: make(map[string]string)}

	cr := sfile.NewCSVReader(r)
	for rowNum := 1; ; rowNum++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("geography row %d: %w", rowNum, err)
		}
		if len(row) != len(geoTemplate) {
			return nil, fmt.Errorf("geography row %d: %d fields, template has %d",
				rowNum, len(row), len(geoTemplate))
		}

		row = sfile.ScrubRow(row)
		if row[sumIdx] != level {
			continue
		}

		rec := Record{GeoID: row[idIdx], LogRecNo: row[recIdx]}
		idx.records = append(idx.records, rec)
		idx.byLogRec[rec.LogRecNo] = rec.GeoID
	}

	return idx, nil
}

// fieldIndex locates a named column in the geo template.
func fieldIndex(template []string, name string) (int, error) {
	for i, col := range template {
		if col == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("geography template has no %q column", name)
}

// Lookup returns the identifier-to-logical-record mapping for all units at
// the index's summary level. Later duplicates of an identifier win, which
// preserves the published extraction's collision behavior.
func (x *Index) Lookup() map[string]string {
	out := make(map[string]string, len(x.records))
	for _, rec := range x.records {
		out[rec.GeoID] = rec.LogRecNo
	}
	return out
}

// GeoIDFor resolves a logical record number to its geographic identifier.
// This is the join direction sequence data needs; it requires no re-parse.
func (x *Index) GeoIDFor(logRecNo string) (string, bool) {
	id, ok := x.byLogRec[logRecNo]
	return id, ok
}

// Len reports the number of geographic units at the target summary level.
func (x *Index) Len() int {
	return len(x.records)
}
