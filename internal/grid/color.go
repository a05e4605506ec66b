package grid

import (
	"image/color"

	"github.com/gogpu/gg"
)

// parseColor resolves a user-supplied hex color, falling back to the
// given default for empty input. Unparseable values degrade to opaque
// black inside gg.Hex, consistent with the lenient input posture.
func parseColor(s, fallback string) color.Color {
	if s == "" {
		s = fallback
	}
	return gg.Hex(s).Color()
}
