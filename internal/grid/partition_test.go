package grid_test

import (
	"testing"

	"github.com/karitsu/gridpager/internal/grid"
)

func TestPartitionSlicing(t *testing.T) {
	const n, capacity = 11, 4

	pages := grid.Partition(n, 1, nil, capacity)

	if len(pages) != 3 { // ceil(11/4)
		t.Fatalf("got %d pages, want 3", len(pages))
	}
	for i, p := range pages[:len(pages)-1] {
		if len(p.Positions) != capacity {
			t.Errorf("page %d has %d items, want %d", i, len(p.Positions), capacity)
		}
	}
	if last := pages[len(pages)-1]; len(last.Positions) != 3 {
		t.Errorf("last page has %d items, want 3", len(last.Positions))
	}

	// Concatenating all pages reproduces the original ordered list.
	var all []int
	for _, p := range pages {
		all = append(all, p.Positions...)
	}
	if len(all) != n {
		t.Fatalf("reassembled %d items, want %d", len(all), n)
	}
	for i, pos := range all {
		if pos != i {
			t.Fatalf("reassembled[%d] = %d, want %d", i, pos, i)
		}
	}

	// Global offsets advance by page size.
	wantOffsets := []int{0, 4, 8}
	for i, p := range pages {
		if p.GlobalOffset != wantOffsets[i] {
			t.Errorf("page %d offset = %d, want %d", i, p.GlobalOffset, wantOffsets[i])
		}
	}
}

func TestPartitionStripAndRepack(t *testing.T) {
	// Start number 1 with mask {2}: a 5-item gallery loses the item
	// originally numbered 2 and the survivors renumber 1..4 contiguously.
	excluded := grid.ParseIndexSet("2")

	pages := grid.Partition(5, 1, excluded, 10)

	if len(pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(pages))
	}
	got := pages[0].Positions
	want := []int{0, 2, 3, 4} // original position 1 (sequence number 2) removed
	if len(got) != len(want) {
		t.Fatalf("kept %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("kept %v, want %v", got, want)
		}
	}
	if pages[0].GlobalOffset != 0 {
		t.Errorf("offset = %d, want 0", pages[0].GlobalOffset)
	}
}

func TestPartitionStripAndRepackWithStartOffset(t *testing.T) {
	// With start number 10, sequence numbers are 10..14; excluding 11
	// drops position 1.
	excluded := grid.ParseIndexSet("11")

	pages := grid.Partition(5, 10, excluded, 2)

	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	if got := pages[0].Positions; got[0] != 0 || got[1] != 2 {
		t.Errorf("page 0 positions = %v, want [0 2]", got)
	}
	if got := pages[1].Positions; got[0] != 3 || got[1] != 4 {
		t.Errorf("page 1 positions = %v, want [3 4]", got)
	}
	if pages[1].GlobalOffset != 2 {
		t.Errorf("page 1 offset = %d, want 2", pages[1].GlobalOffset)
	}
}

func TestPartitionEmptyAndDegenerate(t *testing.T) {
	if pages := grid.Partition(0, 1, nil, 4); pages != nil {
		t.Errorf("empty list: got %v, want nil", pages)
	}
	if pages := grid.Partition(5, 1, nil, 0); pages != nil {
		t.Errorf("zero capacity: got %v, want nil", pages)
	}
	// Excluding everything yields no pages.
	if pages := grid.Partition(3, 1, grid.ParseIndexSet("1-3"), 4); pages != nil {
		t.Errorf("all excluded: got %v, want nil", pages)
	}
}
