package pipeline

import "github.com/juank27/alegra-api/internal"

// Group collects rows into one group per distinct id, keeping the
// first-seen order of ids and the original row order inside a group.
func Group(rows []internal.Row) []internal.DocumentGroup {
	index := map[string]int{}
	var out []internal.DocumentGroup
	for _, row := range rows {
		id := row["id"]
		pos, seen := index[id]
		if !seen {
			index[id] = len(out)
			out = append(out, internal.DocumentGroup{ID: id})
			pos = len(out) - 1
		}
		out[pos].Rows = append(out[pos].Rows, row)
	}
	return out
}
