package template

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

// templateWorkbook renders a template workbook: a top row of display
// labels, then the column names on the first data row, which is where the
// Bureau keeps them.
func templateWorkbook(t *testing.T, columns []string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	labels := make([]any, len(columns))
	names := make([]any, len(columns))
	for i, c := range columns {
		labels[i] = "Label " + c
		names[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &labels); err != nil {
		t.Fatalf("writing label row: %v", err)
	}
	if err := f.SetSheetRow(sheet, "A2", &names); err != nil {
		t.Fatalf("writing name row: %v", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("serializing workbook: %v", err)
	}
	return buf.Bytes()
}

// templateArchive zips template workbooks under the given member names.
func templateArchive(t *testing.T, members map[string][]byte) *zip.Reader {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, data := range members {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("creating zip member %s: %v", name, err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatalf("writing zip member %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("reopening zip: %v", err)
	}
	return zr
}

func TestParse(t *testing.T) {
	zr := templateArchive(t, map[string][]byte{
		"Seq2.xlsx":                    templateWorkbook(t, []string{"FILEID", "SEQUENCE", "LOGRECNO", "B01001_001"}),
		"Seq104.xlsx":                  templateWorkbook(t, []string{"FILEID", "SEQUENCE", "LOGRECNO", "B24121_001"}),
		"2015_SFGeoFileTemplate.xlsx":  templateWorkbook(t, []string{"FILEID", "Summary Level", "Logical Record Number", "Geographic Identifier"}),
		"ReadMe.txt":                   []byte("release notes, not a template"),
	})

	st, err := Parse(zr)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if st.Len() != 3 {
		t.Errorf("Len = %d, want 3 (two sequences plus geo)", st.Len())
	}

	// Sequence ids are zero-padded to 4 digits.
	cols, err := st.TemplateFor("0002")
	if err != nil {
		t.Fatalf("TemplateFor(0002) error: %v", err)
	}
	if len(cols) != 4 || cols[3] != "B01001_001" {
		t.Errorf("TemplateFor(0002) = %v", cols)
	}

	if _, err := st.TemplateFor("0104"); err != nil {
		t.Errorf("TemplateFor(0104) error: %v", err)
	}

	geoCols := st.GeoTemplate()
	if len(geoCols) != 4 || geoCols[1] != "Summary Level" {
		t.Errorf("GeoTemplate = %v", geoCols)
	}
}

func TestParseMissingKey(t *testing.T) {
	zr := templateArchive(t, map[string][]byte{
		"Seq2.xlsx":                   templateWorkbook(t, []string{"FILEID", "SEQUENCE", "LOGRECNO"}),
		"2015_SFGeoFileTemplate.xlsx": templateWorkbook(t, []string{"Summary Level"}),
	})

	st, err := Parse(zr)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	_, err = st.TemplateFor("0104")
	var mErr *MissingTemplateError
	if !errors.As(err, &mErr) {
		t.Fatalf("TemplateFor(0104) error = %v, want MissingTemplateError", err)
	}
	if mErr.Key != "0104" {
		t.Errorf("MissingTemplateError.Key = %q, want 0104", mErr.Key)
	}
}

func TestParseRequiresGeoTemplate(t *testing.T) {
	zr := templateArchive(t, map[string][]byte{
		"Seq2.xlsx": templateWorkbook(t, []string{"FILEID"}),
	})

	if _, err := Parse(zr); err == nil {
		t.Fatal("Parse succeeded without a geography template")
	}
}

func TestParseSkipsUnclassifiedMembers(t *testing.T) {
	zr := templateArchive(t, map[string][]byte{
		"Seq2.xlsx":                   templateWorkbook(t, []string{"FILEID"}),
		"2015_SFGeoFileTemplate.xlsx": templateWorkbook(t, []string{"Summary Level"}),
		"notes/README.pdf":            []byte("not a workbook at all"),
	})

	st, err := Parse(zr)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if st.Len() != 2 {
		t.Errorf("Len = %d, want 2", st.Len())
	}
}
