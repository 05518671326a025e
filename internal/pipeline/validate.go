package pipeline

import (
	"strings"

	"github.com/juank27/alegra-api/internal"
)

// RequiredFields must be non-empty on every input row. Document-level
// fields are still checked per line item because rows arrive flat.
var RequiredFields = []string{
	"id",
	"date",
	"dueDate",
	"provider",
	"purchases_id",
	"purchases_price",
	"purchases_quantity",
	"purchases_total",
	"paymentMethod",
	"paymentType",
	"billOperationType",
	"stamp",
}

// Validate reports, per row, the required fields that are absent or
// blank after trimming. Rows with nothing missing are omitted.
func Validate(rows []internal.Row) []internal.ValidationError {
	var out []internal.ValidationError
	for i, row := range rows {
		var missing []string
		for _, field := range RequiredFields {
			if strings.TrimSpace(row[field]) == "" {
				missing = append(missing, field)
			}
		}
		if len(missing) == 0 {
			continue
		}
		out = append(out, internal.ValidationError{
			RowID:   row["id"],
			Line:    i + 1,
			Missing: missing,
		})
	}
	return out
}
