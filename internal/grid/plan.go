package grid

// Safe raster limits. The source material for these numbers is the lowest
// common denominator of raster surfaces this output is expected to load
// into; they are kept conservatively below known hard ceilings so a page
// never fails right at the boundary.
const (
	// PreferredCellWidth is the nominal cell width before any shrinking.
	PreferredCellWidth = 1500

	// MaxPageWidth caps the total composed page width.
	MaxPageWidth = 8192

	// SafePageHeight caps the total composed page height when the row
	// count is auto-computed.
	SafePageHeight = 15500

	// MaxCombinedHeight and MaxCombinedPixels bound the vertically
	// combined output; exceeding either triggers a uniform downscale.
	MaxCombinedHeight = 16384
	MaxCombinedPixels = 16384 * 16384
)

// PlanCell computes per-cell pixel dimensions for the given column count,
// cell aspect ratio (width/height), and gap. Cells start at the preferred
// width and shrink so the total page width never exceeds MaxPageWidth.
// Both dimensions are always >= 1.
func PlanCell(columns int, aspect float64, gap int) (cellW, cellH int) {
	if columns < 1 {
		columns = 1
	}
	if aspect <= 0 {
		aspect = 1
	}

	cellW = PreferredCellWidth
	if columns*cellW+(columns-1)*gap > MaxPageWidth {
		cellW = (MaxPageWidth - columns*gap) / columns
	}
	if cellW < 1 {
		cellW = 1
	}

	cellH = int(float64(cellW) / aspect)
	if cellH < 1 {
		cellH = 1
	}
	return cellW, cellH
}

// AutoRows returns the largest row count such that the composed page
// height rows*cellH + (rows-1)*gap stays within SafePageHeight, with a
// floor of one row.
func AutoRows(cellH, gap int) int {
	if cellH < 1 {
		cellH = 1
	}
	rows := (SafePageHeight + gap) / (cellH + gap)
	if rows < 1 {
		rows = 1
	}
	return rows
}

// PageDims returns the pixel dimensions of a full page.
func PageDims(columns, rows, cellW, cellH, gap int) (w, h int) {
	w = columns*cellW + (columns-1)*gap
	h = rows*cellH + (rows-1)*gap
	return w, h
}
