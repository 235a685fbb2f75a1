package appendix

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

// appendixWorkbook renders appendix rows (name, title, restriction,
// sequence, range) into an XLSX workbook the way the Bureau publishes them:
// one header row, then data rows.
func appendixWorkbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := []any{"Table Name", "Table Title", "Restriction", "Summary File Sequence Number", "Start-End"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		t.Fatalf("writing header: %v", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("writing row %d: %v", i, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("serializing workbook: %v", err)
	}
	return buf
}

func TestParse(t *testing.T) {
	buf := appendixWorkbook(t, [][]any{
		{"B01001", "Sex by Age", "", "2", "7-55"},
		{"B01002", "Median Age", "", "2", "56-58"},
		{"B24121", "Detailed Occupation", "", "104", "1-273"},
		{"B24121", "Detailed Occupation", "", "105", "274-547"},
	})

	idx, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	names := idx.TableNames()
	want := []string{"B01001", "B01002", "B24121"}
	if len(names) != len(want) {
		t.Fatalf("TableNames = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("TableNames[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	spans := idx.SpansOf("B24121")
	if len(spans) != 2 {
		t.Fatalf("SpansOf(B24121) has %d spans, want 2", len(spans))
	}
	if spans[0] != (Span{Sequence: "0104", Start: 1, End: 273}) {
		t.Errorf("first span = %+v", spans[0])
	}
	if spans[1] != (Span{Sequence: "0105", Start: 274, End: 547}) {
		t.Errorf("second span = %+v", spans[1])
	}

	if got := idx.SpansOf("B99999"); got != nil {
		t.Errorf("SpansOf(unknown) = %v, want nil", got)
	}
}

func TestParseSequencePadding(t *testing.T) {
	buf := appendixWorkbook(t, [][]any{
		{"B01001", "Sex by Age", "", "2", "7-55"},
	})

	idx, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got := idx.SpansOf("B01001")[0].Sequence; got != "0002" {
		t.Errorf("Sequence = %q, want 0002", got)
	}
}

func TestParseTitles(t *testing.T) {
	buf := appendixWorkbook(t, [][]any{
		{"B01001", "Sex by Age", "", "2", "7-55"},
		{"B24121", "Detailed Occupation", "", "104", "1-273"},
		{"B24121", "Detailed Occupation", "", "105", "274-547"},
	})

	idx, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	tables := idx.Tables()
	if len(tables) != 2 {
		t.Fatalf("Tables() has %d entries, want 2", len(tables))
	}
	if tables[0].Name != "B01001" || tables[0].Title != "Sex by Age" {
		t.Errorf("tables[0] = %+v", tables[0])
	}
	if tables[1].Name != "B24121" || tables[1].Title != "Detailed Occupation" {
		t.Errorf("tables[1] = %+v", tables[1])
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		rows [][]any
	}{
		{
			name: "missing sequence",
			rows: [][]any{{"B01001", "Sex by Age", "", "", "7-55"}},
		},
		{
			name: "missing range",
			rows: [][]any{{"B01001", "Sex by Age", "", "2", ""}},
		},
		{
			name: "range without dash",
			rows: [][]any{{"B01001", "Sex by Age", "", "2", "755"}},
		},
		{
			name: "range with non-numeric start",
			rows: [][]any{{"B01001", "Sex by Age", "", "2", "x-55"}},
		},
		{
			name: "range with non-numeric end",
			rows: [][]any{{"B01001", "Sex by Age", "", "2", "7-y"}},
		},
		{
			name: "end precedes start",
			rows: [][]any{{"B01001", "Sex by Age", "", "2", "55-7"}},
		},
		{
			name: "missing name",
			rows: [][]any{{"", "Sex by Age", "", "2", "7-55"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(appendixWorkbook(t, tt.rows))
			var mErr *MalformedMetadataError
			if !errors.As(err, &mErr) {
				t.Fatalf("Parse error = %v, want MalformedMetadataError", err)
			}
		})
	}
}

func TestParseSkipsBlankRows(t *testing.T) {
	buf := appendixWorkbook(t, [][]any{
		{"B01001", "Sex by Age", "", "2", "7-55"},
		{"", "", "", "", ""},
	})

	idx, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got := len(idx.TableNames()); got != 1 {
		t.Errorf("TableNames has %d entries, want 1", got)
	}
}

func TestPadSequence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2", "0002"},
		{"17", "0017"},
		{"104", "0104"},
		{"0002", "0002"},
		{"12345", "12345"},
	}

	for _, tt := range tests {
		if got := PadSequence(tt.input); got != tt.want {
			t.Errorf("PadSequence(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
