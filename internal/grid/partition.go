package grid

// PageSlice is one page's worth of the ordered gallery.
type PageSlice struct {
	// Positions indexes into the original ordered list.
	Positions []int

	// GlobalOffset is the index of the page's first item within the
	// (possibly filtered) numbering space, so the sequence number of
	// item i on this page is start + GlobalOffset + i.
	GlobalOffset int
}

// Partition slices an ordered list of count items into pages of at most
// capacity items.
//
// When excluded is non-empty the list is filtered first ("strip and
// repack"): every position whose 1-based sequence number, start+position,
// is in the excluded set is dropped, and the survivors are renumbered
// contiguously from the same start before slicing.
func Partition(count, start int, excluded IndexSet, capacity int) []PageSlice {
	if count <= 0 || capacity < 1 {
		return nil
	}

	kept := make([]int, 0, count)
	for pos := 0; pos < count; pos++ {
		if excluded.Has(start + pos) {
			continue
		}
		kept = append(kept, pos)
	}

	var pages []PageSlice
	for off := 0; off < len(kept); off += capacity {
		end := off + capacity
		if end > len(kept) {
			end = len(kept)
		}
		pages = append(pages, PageSlice{
			Positions:    kept[off:end:end],
			GlobalOffset: off,
		})
	}
	return pages
}
