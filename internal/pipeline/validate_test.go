package pipeline

import (
	"testing"

	"github.com/juank27/alegra-api/internal"
)

func validRow(id string) internal.Row {
	return internal.Row{
		"id":                 id,
		"date":               "2023-01-01",
		"dueDate":            "2023-02-01",
		"provider":           "1",
		"purchases_id":       "1",
		"purchases_price":    "900000",
		"purchases_quantity": "1",
		"purchases_total":    "900000",
		"paymentMethod":      "CASH",
		"paymentType":        "INSTRUMENT_NOT_DEFINED",
		"billOperationType":  "INDIVIDUAL",
		"stamp":              "true",
	}
}

func TestValidateCleanRowsOmitted(t *testing.T) {
	errs := Validate([]internal.Row{validRow("1"), validRow("2")})
	if len(errs) != 0 {
		t.Fatalf("errs=%v", errs)
	}
}

func TestValidateReportsExactMissingSet(t *testing.T) {
	row := validRow("5")
	delete(row, "dueDate")
	row["paymentMethod"] = "   "
	row["stamp"] = ""

	errs := Validate([]internal.Row{validRow("1"), row})
	if len(errs) != 1 {
		t.Fatalf("len=%d", len(errs))
	}
	if errs[0].RowID != "5" || errs[0].Line != 2 {
		t.Fatalf("err=%+v", errs[0])
	}

	want := map[string]bool{"dueDate": true, "paymentMethod": true, "stamp": true}
	if len(errs[0].Missing) != len(want) {
		t.Fatalf("missing=%v", errs[0].Missing)
	}
	for _, field := range errs[0].Missing {
		if !want[field] {
			t.Fatalf("unexpected missing field %s", field)
		}
	}
}

func TestValidateEmptyRow(t *testing.T) {
	errs := Validate([]internal.Row{{}})
	if len(errs) != 1 {
		t.Fatalf("len=%d", len(errs))
	}
	if len(errs[0].Missing) != len(RequiredFields) {
		t.Fatalf("missing=%d want %d", len(errs[0].Missing), len(RequiredFields))
	}
	if errs[0].RowID != "" {
		t.Fatalf("rowId=%q", errs[0].RowID)
	}
}
