package grid_test

import (
	"math"
	"testing"

	"github.com/karitsu/gridpager/internal/grid"
)

func TestPlanCellAspectRatio(t *testing.T) {
	cellW, cellH := grid.PlanCell(3, 0.75, 0)

	if cellW < 1 || cellH < 1 {
		t.Fatalf("degenerate cell %dx%d", cellW, cellH)
	}
	ratio := float64(cellW) / float64(cellH)
	if math.Abs(ratio-0.75) > 0.01 {
		t.Errorf("cell ratio = %f, want 0.75 within rounding", ratio)
	}
}

func TestPlanCellRespectsMaxPageWidth(t *testing.T) {
	for _, cols := range []int{1, 2, 3, 5, 8, 13, 40} {
		for _, gap := range []int{0, 10} {
			cellW, _ := grid.PlanCell(cols, 1, gap)
			total := cols*cellW + (cols-1)*gap
			if total > grid.MaxPageWidth {
				t.Errorf("cols=%d gap=%d: page width %d exceeds %d", cols, gap, total, grid.MaxPageWidth)
			}
		}
	}
}

func TestPlanCellShrinksWithColumns(t *testing.T) {
	// Past the point where cols*preferred exceeds the max width, adding
	// columns must strictly decrease the cell width.
	prev := 0
	for cols := 6; cols <= 12; cols++ {
		cellW, _ := grid.PlanCell(cols, 1, 0)
		if prev != 0 && cellW >= prev {
			t.Errorf("cols=%d: cell width %d did not shrink from %d", cols, cellW, prev)
		}
		prev = cellW
	}
}

func TestAutoRowsMaximality(t *testing.T) {
	tests := []struct {
		cellH, gap int
	}{
		{2000, 0},
		{2000, 10},
		{1333, 7},
		{1, 0},
		{grid.SafePageHeight + 1, 0}, // taller than the safe height still yields one row
	}

	for _, tt := range tests {
		rows := grid.AutoRows(tt.cellH, tt.gap)
		if rows < 1 {
			t.Fatalf("cellH=%d gap=%d: rows=%d, want >= 1", tt.cellH, tt.gap, rows)
		}
		height := rows*tt.cellH + (rows-1)*tt.gap
		if rows > 1 && height > grid.SafePageHeight {
			t.Errorf("cellH=%d gap=%d: %d rows give height %d > safe %d", tt.cellH, tt.gap, rows, height, grid.SafePageHeight)
		}
		next := (rows+1)*tt.cellH + rows*tt.gap
		if next <= grid.SafePageHeight {
			t.Errorf("cellH=%d gap=%d: rows=%d is not maximal, %d rows still fit", tt.cellH, tt.gap, rows, rows+1)
		}
	}
}
