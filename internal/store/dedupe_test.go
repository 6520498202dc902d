package store

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDedupeCheapest(t *testing.T) {
	in := []Row{
		{Store: "Walmart", Price: 2.75},
		{Store: "Costco", Price: 2.25},
		{Store: "walmart", Price: 2.50},
		{Store: "Safeway", Price: 3.10},
		{Store: "Costco", Price: 2.80},
	}

	got := DedupeCheapest(in)
	want := []Row{
		{Store: "walmart", Price: 2.50},
		{Store: "Costco", Price: 2.25},
		{Store: "Safeway", Price: 3.10},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected rows (-want +got):\n%s", diff)
	}
}

func TestDedupeCheapestNoDuplicateKeys(t *testing.T) {
	in := []Row{
		{Store: "A", Price: 1},
		{Store: "a", Price: 2},
		{Store: "B", Price: 3},
		{Store: "b", Price: 0.5},
		{Store: "A", Price: 0.9},
	}

	got := DedupeCheapest(in)

	seen := map[string]bool{}
	for _, r := range got {
		key := strings.ToLower(r.Store)
		if seen[key] {
			t.Fatalf("duplicate store %q in output", key)
		}
		seen[key] = true
	}

	// Each kept price must be the minimum among the input rows for that store.
	for _, r := range got {
		for _, orig := range in {
			if strings.EqualFold(orig.Store, r.Store) && orig.Price < r.Price {
				t.Fatalf("store %q kept %.2f but input had %.2f", r.Store, r.Price, orig.Price)
			}
		}
	}
}

func TestDedupeCheapestTieKeepsFirstSeen(t *testing.T) {
	in := []Row{
		{Store: "Walmart", Price: 2.50},
		{Store: "WALMART", Price: 2.50},
	}

	got := DedupeCheapest(in)
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	if got[0].Store != "Walmart" {
		t.Fatalf("tie should keep the first-seen row, got %q", got[0].Store)
	}
}

func TestDedupeCheapestEmpty(t *testing.T) {
	if got := DedupeCheapest(nil); len(got) != 0 {
		t.Fatalf("expected empty output, got %v", got)
	}
}
