// Package template parses the Summary File Templates archive: one workbook
// of column names per sequence, plus one geography workbook.
package template

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"

	"acsgen/internal/acs/appendix"

	"github.com/xuri/excelize/v2"
)

// GeoKey is the store key of the geography file template.
const GeoKey = "geo"

// MissingTemplateError reports a sequence id referenced by the appendix
// metadata that has no template in the archive. The affected table cannot
// be built; other tables proceed.
type MissingTemplateError struct {
	Key string
}

func (e *MissingTemplateError) Error() string {
	return fmt.Sprintf("no column template for sequence %q", e.Key)
}

// Store maps template keys (4-digit sequence ids, plus "geo") to ordered
// column-name lists. Immutable after Parse; shared read-only for the run.
type Store struct {
	templates map[string][]string
}

// Parse reads the template archive. Entries are classified by filename:
// "Seq" marks a sequence template whose id follows the marker, "Geo" marks
// the geography template, and anything else (directories, release notes)
// is skipped.
func Parse(zr *zip.Reader) (*Store, error) {
	st := &Store{templates: make(map[string][]string)}

	for _, f := range zr.File {
		base := path.Base(f.Name)

		var key string
		if i := strings.Index(base, "Seq"); i >= 0 {
			// Sequence number sits between the marker and the extension.
			num, _, _ := strings.Cut(base[i+3:], ".")
			if num == "" {
				continue
			}
			key = appendix.PadSequence(num)
		} else if strings.Contains(base, "Geo") {
			key = GeoKey
		} else {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening template %s: %w", f.Name, err)
		}
		cols, err := readColumnNames(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", f.Name, err)
		}
		st.templates[key] = cols
	}

	if _, ok := st.templates[GeoKey]; !ok {
		return nil, fmt.Errorf("template archive has no geography template")
	}

	return st, nil
}

// readColumnNames extracts the column names from a template workbook.
// The Bureau places them on the first data row (the row after the sheet's
// top row), not in the header row; this convention must be preserved.
func readColumnNames(r io.Reader) ([]string, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	rows, err := wb.GetRows(wb.GetSheetName(0))
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("workbook has no data row")
	}

	names := make([]string, len(rows[1]))
	copy(names, rows[1])
	return names, nil
}

// TemplateFor returns the ordered column names for a template key.
func (s *Store) TemplateFor(key string) ([]string, error) {
	cols, ok := s.templates[key]
	if !ok {
		return nil, &MissingTemplateError{Key: key}
	}
	return cols, nil
}

// GeoTemplate returns the geography file's column names.
func (s *Store) GeoTemplate() []string {
	return s.templates[GeoKey]
}

// Len reports how many templates the archive yielded, the geography
// template included.
func (s *Store) Len() int {
	return len(s.templates)
}
