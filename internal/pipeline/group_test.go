package pipeline

import (
	"testing"

	"github.com/juank27/alegra-api/internal"
)

func TestGroupPreservesOrder(t *testing.T) {
	rows := []internal.Row{
		{"id": "2", "purchases_id": "a"},
		{"id": "1", "purchases_id": "b"},
		{"id": "2", "purchases_id": "c"},
		{"id": "3", "purchases_id": "d"},
		{"id": "1", "purchases_id": "e"},
	}

	groups := Group(rows)
	if len(groups) != 3 {
		t.Fatalf("len=%d", len(groups))
	}

	wantIDs := []string{"2", "1", "3"}
	for i, want := range wantIDs {
		if groups[i].ID != want {
			t.Fatalf("group %d id=%s want %s", i, groups[i].ID, want)
		}
	}

	if groups[0].Rows[0]["purchases_id"] != "a" || groups[0].Rows[1]["purchases_id"] != "c" {
		t.Fatalf("group 2 row order: %v", groups[0].Rows)
	}
	if groups[1].Rows[0]["purchases_id"] != "b" || groups[1].Rows[1]["purchases_id"] != "e" {
		t.Fatalf("group 1 row order: %v", groups[1].Rows)
	}
}

func TestGroupRoundTripWithDecode(t *testing.T) {
	text := "id;purchases_id\n9;x\n4;y\n9;z\n"
	groups := Group(DecodeCSV(text))
	if len(groups) != 2 {
		t.Fatalf("len=%d", len(groups))
	}
	if groups[0].ID != "9" || len(groups[0].Rows) != 2 {
		t.Fatalf("group0=%+v", groups[0])
	}
	if groups[1].ID != "4" || len(groups[1].Rows) != 1 {
		t.Fatalf("group1=%+v", groups[1])
	}
}
