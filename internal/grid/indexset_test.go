package grid_test

import (
	"testing"

	"github.com/karitsu/gridpager/internal/grid"
)

func TestParseIndexSet(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []int
	}{
		{"simple list with range", "5, 12, 1-3", []int{1, 2, 3, 5, 12}},
		{"empty input", "", nil},
		{"whitespace only", "  \t\n ", nil},
		{"reversed range normalizes", "3-1", []int{1, 2, 3}},
		{"garbage tokens are skipped", "abc, 5", []int{5}},
		{"full-width comma", "1，2，3", []int{1, 2, 3}},
		{"enumeration comma", "4、6", []int{4, 6}},
		{"tilde range", "2~4", []int{2, 3, 4}},
		{"full-width tilde range", "2～4", []int{2, 3, 4}},
		{"en dash range", "7–8", []int{7, 8}},
		{"em dash range", "7—8", []int{7, 8}},
		{"whitespace separated", "1 2  9", []int{1, 2, 9}},
		{"double range token dropped", "1-2-3, 9", []int{9}},
		{"range with spaces inside", "1 - 3", []int{1, 3}},
		{"duplicates collapse", "2, 2, 1-2", []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := grid.ParseIndexSet(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseIndexSet(%q) = %v, want members %v", tt.input, got, tt.want)
			}
			for _, n := range tt.want {
				if !got.Has(n) {
					t.Errorf("ParseIndexSet(%q) missing %d", tt.input, n)
				}
			}
		})
	}
}

func TestParseIndexSetNeverPanics(t *testing.T) {
	inputs := []string{"-", "--", "~", "1-", "-1", "a-b", "1-b", "，，，", "999999999999999999999999"}
	for _, in := range inputs {
		set := grid.ParseIndexSet(in)
		if set == nil {
			t.Errorf("ParseIndexSet(%q) returned nil set", in)
		}
	}
}
