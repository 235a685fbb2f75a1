// Package assemble builds one output table from its constituent sequence
// files: join against the geography lookup, slice the appendix column
// range, label and interleave estimate/margin columns, and concatenate
// sequences side by side.
package assemble

import (
	"fmt"
	"io"

	"acsgen/internal/acs/appendix"
	"acsgen/internal/acs/geo"
	"acsgen/internal/acs/sequence"
	"acsgen/internal/acs/template"
)

// Source supplies the raw estimate and margin streams for a sequence.
// Satisfied by archive.Archive.
type Source interface {
	Estimates(seq string) (io.ReadCloser, error)
	Margins(seq string) (io.ReadCloser, error)
}

// Row is one geographic unit's assembled values. Values align with
// Table.Columns; "" is a missing cell.
type Row struct {
	GeoID  string
	Values []string
}

// Table is one assembled output table.
type Table struct {
	Name string

	// Columns holds the interleaved "E: "/"M: " labels, GEOID excluded.
	Columns []string

	// Rows are ordered by first appearance of each unit in the source
	// files, so re-running on unchanged inputs is byte-identical.
	Rows []Row
}

// Header returns the full output header row: GEOID first, then the
// interleaved column labels.
func (t *Table) Header() []string {
	return append([]string{"GEOID"}, t.Columns...)
}

// Assembler builds tables for one state. The appendix and template stores
// are run-wide and read-only; the geography index is per-state.
type Assembler struct {
	appendix  *appendix.Index
	templates *template.Store
	geo       *geo.Index
}

// New returns an Assembler over shared read-only inputs.
func New(appx *appendix.Index, templates *template.Store, geoIdx *geo.Index) *Assembler {
	return &Assembler{appendix: appx, templates: templates, geo: geoIdx}
}

// Assemble builds the named table from src.
//
// A nil table with nil error means the table is empty: every non-GEOID
// cell was missing, so nothing should be written. Any error aborts the
// remaining sequences of this table; partial sequence data is never
// returned.
func (a *Assembler) Assemble(name string, src Source) (*Table, error) {
	spans := a.appendix.SpansOf(name)
	if len(spans) == 0 {
		return nil, fmt.Errorf("table %s has no appendix entries", name)
	}

	b := newBuilder()

	for _, span := range spans {
		tmpl, err := a.templates.TemplateFor(span.Sequence)
		if err != nil {
			return nil, err
		}
		if span.End > len(tmpl) {
			return nil, fmt.Errorf("sequence %s: range end %d exceeds template width %d",
				span.Sequence, span.End, len(tmpl))
		}

		est, err := readSide(src.Estimates, span.Sequence, tmpl)
		if err != nil {
			return nil, fmt.Errorf("estimates for sequence %s: %w", span.Sequence, err)
		}
		mgn, err := readSide(src.Margins, span.Sequence, tmpl)
		if err != nil {
			return nil, fmt.Errorf("margins for sequence %s: %w", span.Sequence, err)
		}

		a.appendSequence(b, span, est, mgn)
	}

	tbl := b.table(name)
	if tbl.empty() {
		return nil, nil
	}
	return tbl, nil
}

// appendSequence joins one sequence's estimate and margin rows against the
// geography index and appends the span's interleaved columns to the builder.
func (a *Assembler) appendSequence(b *builder, span appendix.Span, est, mgn *sequence.RowSet) {
	lo, hi := span.Start-1, span.End
	n := hi - lo

	for i := lo; i < hi; i++ {
		b.columns = append(b.columns, "E: "+est.Columns[i], "M: "+est.Columns[i])
	}

	preWidth := b.width
	b.width += 2 * n

	marginBy := mgn.ByLogRec()

	seen := make(map[string]bool)
	for _, rec := range est.Rows {
		geoID, ok := a.geo.GeoIDFor(rec.LogRecNo)
		if !ok {
			// Inner join: no geography match, no output row.
			continue
		}
		mvals := make([]string, n)
		if m, ok := marginBy[rec.LogRecNo]; ok {
			mvals = m.Values[lo:hi]
		}
		b.place(geoID, preWidth, interleave(rec.Values[lo:hi], mvals))
		seen[geoID] = true
	}

	// Margin rows with no estimate counterpart still contribute a row;
	// their estimate cells stay missing.
	for _, rec := range mgn.Rows {
		geoID, ok := a.geo.GeoIDFor(rec.LogRecNo)
		if !ok || seen[geoID] {
			continue
		}
		b.place(geoID, preWidth, interleave(make([]string, n), rec.Values[lo:hi]))
		seen[geoID] = true
	}
}

// readSide opens and parses one estimate or margin file.
func readSide(open func(string) (io.ReadCloser, error), seq string, tmpl []string) (*sequence.RowSet, error) {
	rc, err := open(seq)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return sequence.Read(rc, tmpl)
}

// interleave flattens matching estimate/margin value slices pairwise:
// E1, M1, E2, M2, ..., En, Mn. Both sides must be the same length.
func interleave(est, mgn []string) []string {
	out := make([]string, 0, len(est)+len(mgn))
	for i := range est {
		out = append(out, est[i], mgn[i])
	}
	return out
}

// builder accumulates the column-wise concatenation of sequences over the
// ordered union of geographic units.
type builder struct {
	columns []string
	width   int
	order   []string
	cells   map[string][]string
}

func newBuilder() *builder {
	return &builder{cells: make(map[string][]string)}
}

// place appends vals for geoID at column offset preWidth. Units absent
// from earlier sequences are back-filled with missing cells; a duplicate
// identifier inside one sequence overwrites in place (last write wins).
func (b *builder) place(geoID string, preWidth int, vals []string) {
	row, ok := b.cells[geoID]
	if !ok {
		b.order = append(b.order, geoID)
	}
	if len(row) >= preWidth+len(vals) {
		copy(row[preWidth:], vals)
		return
	}
	for len(row) < preWidth {
		row = append(row, "")
	}
	b.cells[geoID] = append(row, vals...)
}

// table finalizes the accumulated rows: pad units that missed trailing
// sequences and truncate identifiers to the public 12-character GEOID.
func (b *builder) table(name string) *Table {
	tbl := &Table{Name: name, Columns: b.columns}
	for _, geoID := range b.order {
		row := b.cells[geoID]
		for len(row) < b.width {
			row = append(row, "")
		}
		tbl.Rows = append(tbl.Rows, Row{GeoID: truncateGeoID(geoID), Values: row})
	}
	return tbl
}

// empty reports whether every non-GEOID cell is missing. Such tables are
// dropped rather than written.
func (t *Table) empty() bool {
	for _, row := range t.Rows {
		for _, v := range row.Values {
			if v != "" {
				return false
			}
		}
	}
	return true
}

// truncateGeoID keeps the last 12 characters of a geographic identifier,
// dropping the geography-type prefix so values match the GEOID field of
// block group shapefiles. Shorter identifiers pass through whole.
func truncateGeoID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[len(id)-12:]
}
