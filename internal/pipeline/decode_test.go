package pipeline

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestDecodeCSV(t *testing.T) {
	rows := DecodeCSV("a;b\n1;2\n3;4\n")
	if len(rows) != 2 {
		t.Fatalf("len=%d", len(rows))
	}
	if rows[0]["a"] != "1" || rows[0]["b"] != "2" {
		t.Fatalf("row0=%v", rows[0])
	}
	if rows[1]["a"] != "3" || rows[1]["b"] != "4" {
		t.Fatalf("row1=%v", rows[1])
	}
}

// A record not followed by a newline is discarded with the assumed
// trailing blank line.
func TestDecodeCSVDropsLastLine(t *testing.T) {
	rows := DecodeCSV("a;b\n1;2\n3;4")
	if len(rows) != 1 {
		t.Fatalf("len=%d", len(rows))
	}
	if rows[0]["a"] != "1" || rows[0]["b"] != "2" {
		t.Fatalf("row0=%v", rows[0])
	}
}

func TestDecodeCSVShortLine(t *testing.T) {
	rows := DecodeCSV("a;b;c\n1;2\n")
	if len(rows) != 1 {
		t.Fatalf("len=%d", len(rows))
	}
	if rows[0]["a"] != "1" || rows[0]["b"] != "2" {
		t.Fatalf("row0=%v", rows[0])
	}
	if _, ok := rows[0]["c"]; ok {
		t.Fatalf("missing trailing field should be absent, got %q", rows[0]["c"])
	}
}

func TestDecodeCSVCRLF(t *testing.T) {
	rows := DecodeCSV("a;b\r\n1;2\r\n")
	if len(rows) != 1 {
		t.Fatalf("len=%d", len(rows))
	}
	if rows[0]["b"] != "2" {
		t.Fatalf("b=%q", rows[0]["b"])
	}
}

func TestDecodeCSVHeaderOnly(t *testing.T) {
	if rows := DecodeCSV("a;b\n"); len(rows) != 0 {
		t.Fatalf("len=%d", len(rows))
	}
	if rows := DecodeCSV(""); len(rows) != 0 {
		t.Fatalf("len=%d", len(rows))
	}
}

func mkXLSX(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	buf := bytes.NewBuffer(nil)
	_, _ = f.WriteTo(buf)
	return buf.Bytes()
}

func TestDecodeXLSX(t *testing.T) {
	blob := mkXLSX(t, [][]any{
		{"id", "provider", "purchases_price"},
		{"1", "7", "900000"},
		{"2", "7", "1500"},
	})
	rows, err := DecodeXLSX(blob)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("len=%d", len(rows))
	}
	if rows[1]["purchases_price"] != "1500" {
		t.Fatalf("row1=%v", rows[1])
	}
}
