package store

import "strings"

// Row pairs a canonical store name with the price of one listing.
type Row struct {
	Store string
	Price float64
}

// DedupeCheapest keeps the cheapest listing per store. Store names compare
// case-insensitively. When prices tie the first listing seen wins, and the
// output preserves the order in which each surviving store first appeared.
func DedupeCheapest(rows []Row) []Row {
	index := make(map[string]int, len(rows))
	out := make([]Row, 0, len(rows))

	for _, r := range rows {
		key := strings.ToLower(r.Store)
		if i, ok := index[key]; ok {
			if r.Price < out[i].Price {
				out[i] = r
			}
			continue
		}
		index[key] = len(out)
		out = append(out, r)
	}

	return out
}
