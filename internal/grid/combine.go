package grid

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
)

// CombineResult is the outcome of a vertical combine.
type CombineResult struct {
	Data       []byte
	MIMEType   string
	Width      int
	Height     int
	Downscaled bool // true when safe limits forced a uniform downscale
}

// CombineVertical concatenates encoded pages top to bottom into one tall
// image. The first page's width is taken as the canonical width (pages
// from one run are uniform; a narrower final page is drawn at its own
// size, left-aligned on white).
//
// If the stacked height would exceed MaxCombinedHeight, or the total
// pixel count would exceed MaxCombinedPixels, every page is scaled by the
// single factor that satisfies both limits, so the result keeps its
// aspect ratio. Pages from the page planner are at most MaxPageWidth
// wide, which with the height clamp already keeps them under the pixel
// limit; the pixel check covers callers feeding wider images. Each
// decoded page is released as soon as it is drawn to bound peak memory.
func CombineVertical(pages [][]byte, quality int) (*CombineResult, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("combine: no pages")
	}

	type pageDim struct{ w, h int }
	dims := make([]pageDim, len(pages))
	width, totalHeight := 0, 0
	for i, data := range pages {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("read page %d dimensions: %w", i+1, err)
		}
		dims[i] = pageDim{cfg.Width, cfg.Height}
		if i == 0 {
			width = cfg.Width
		}
		totalHeight += cfg.Height
	}
	if width < 1 || totalHeight < 1 {
		return nil, fmt.Errorf("combine: degenerate page dimensions %dx%d", width, totalHeight)
	}

	// A single uniform factor keeps the width/height ratio intact.
	scale := 1.0
	if totalHeight > MaxCombinedHeight {
		scale = float64(MaxCombinedHeight) / float64(totalHeight)
	}
	if px := float64(width) * float64(totalHeight); px > MaxCombinedPixels {
		if s := float64(MaxCombinedPixels) / px; s < scale*scale {
			// Pixel count scales with the square of the factor.
			scale = math.Sqrt(s)
		}
	}

	outW := int(float64(width) * scale)
	outH := int(float64(totalHeight) * scale)
	if outW < 1 {
		outW = 1
	}
	if outH < 1 {
		outH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, outW, outH))
	xdraw.Draw(dst, dst.Bounds(), image.White, image.Point{}, xdraw.Src)

	y := 0.0
	for i, data := range pages {
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode page %d: %w", i+1, err)
		}

		dw := int(float64(dims[i].w) * scale)
		dh := int(float64(dims[i].h) * scale)
		if dw < 1 {
			dw = 1
		}
		if dh < 1 {
			dh = 1
		}
		rect := image.Rect(0, int(y), dw, int(y)+dh)
		if scale == 1.0 {
			xdraw.Draw(dst, rect, img, image.Point{}, xdraw.Src)
		} else {
			xdraw.CatmullRom.Scale(dst, rect, img, img.Bounds(), xdraw.Src, nil)
		}
		y += float64(dims[i].h) * scale
	}

	data, mimeType, err := EncodePage(gg.NewContextForImage(dst), quality)
	if err != nil {
		return nil, fmt.Errorf("encode combined image: %w", err)
	}

	return &CombineResult{
		Data:       data,
		MIMEType:   mimeType,
		Width:      outW,
		Height:     outH,
		Downscaled: scale < 1.0,
	}, nil
}
