package dataset

import (
	"fmt"
	"sort"
)

// Merge combines the previously persisted table (may be nil) with newly
// normalized batches into one deduplicated table. Rows sharing the same
// key collapse to the one from the highest sequence number: persisted
// rows carry an implicit seq 0, so a freshly imported batch always wins
// over history. Composite keys are materialized as a new column before
// deduplication.
func Merge(prior *Table, batches []Batch, key Key) (*Table, error) {
	if key.Column == "" {
		return nil, fmt.Errorf("merge: empty key column")
	}

	type tagged struct {
		seq int
		pos int
		row Row
	}
	var all []tagged
	out := &Table{}

	appendRows := func(t *Table, seq int) {
		for _, c := range t.Columns {
			out.AddColumn(c)
		}
		for _, r := range t.Rows {
			all = append(all, tagged{seq: seq, pos: len(all), row: r})
		}
	}

	if prior != nil {
		out.Name = prior.Name
		appendRows(prior, 0)
	}
	sort.Slice(batches, func(i, j int) bool { return batches[i].Seq < batches[j].Seq })
	for _, b := range batches {
		if b.Table == nil {
			continue
		}
		if out.Name == "" {
			out.Name = b.Table.Name
		}
		appendRows(b.Table, b.Seq)
	}

	if len(key.Parts) > 0 {
		out.AddColumn(key.Column)
		for _, t := range all {
			composite := ""
			for i, p := range key.Parts {
				if i > 0 {
					composite += "_"
				}
				composite += Str(t.row, p)
			}
			t.row[key.Column] = composite
		}
	}

	// Last occurrence of each key in (seq, position) order wins; the
	// surviving rows keep the order of first appearance of their key.
	best := make(map[string]int)
	order := make([]string, 0, len(all))
	for i, t := range all {
		k := Str(t.row, key.Column)
		if _, seen := best[k]; !seen {
			order = append(order, k)
		}
		best[k] = i
	}
	for _, k := range order {
		out.Rows = append(out.Rows, all[best[k]].row)
	}
	return out, nil
}
