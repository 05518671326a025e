package pipeline

import (
	"bytes"
	"errors"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/juank27/alegra-api/internal"
)

const fieldDelimiter = ";"

// DecodeCSV turns semicolon-delimited text into rows. The first line
// supplies the column names and the last line is always discarded:
// exports end with a trailing newline, so the final split element is
// expected to be blank. A record not followed by a newline is lost
// with it (see TestDecodeCSVDropsLastLine).
func DecodeCSV(text string) []internal.Row {
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return nil
	}

	headers := splitFields(lines[0])
	lines = lines[1 : len(lines)-1]

	out := make([]internal.Row, 0, len(lines))
	for _, line := range lines {
		fields := splitFields(line)
		row := internal.Row{}
		for i, header := range headers {
			if i < len(fields) {
				row[header] = fields[i]
			}
		}
		out = append(out, row)
	}
	return out
}

func splitFields(line string) []string {
	line = strings.TrimSuffix(line, "\r")
	return strings.Split(line, fieldDelimiter)
}

// DecodeXLSX maps the first sheet of a workbook the same way: header
// row first, remaining rows zipped positionally. Spreadsheet rows
// carry no trailing-newline ambiguity, so nothing is discarded.
func DecodeXLSX(blob []byte) ([]internal.Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(blob))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) < 1 {
		return nil, nil
	}

	headers := rows[0]
	out := make([]internal.Row, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		row := internal.Row{}
		for i, header := range headers {
			if i < len(cells) {
				row[header] = cells[i]
			}
		}
		out = append(out, row)
	}
	return out, nil
}
