package grid

import (
	"context"
	"fmt"
	"image"
	"math"
	"strconv"

	"github.com/gogpu/gg"
	ggtext "github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/karitsu/gridpager/internal/domain"
)

// PagePlan fixes the geometry and numbering base of one page.
type PagePlan struct {
	Columns      int
	Rows         int
	CellW        int
	CellH        int
	Gap          int
	GlobalOffset int // numbering offset of the page's first cell
}

// Dims returns the page's pixel dimensions.
func (p PagePlan) Dims() (w, h int) {
	return PageDims(p.Columns, p.Rows, p.CellW, p.CellH, p.Gap)
}

// Compositor renders grid pages onto a single reusable raster surface.
// It is a function of its explicit inputs: page payloads, settings, the
// mask index set, and the optional sticker and overlay bitmaps. The
// surface is exclusively owned by the compositor for the duration of one
// page and is fully reset between pages.
//
// A Compositor is not safe for concurrent use; callers must serialize
// RenderPage/Encode sequences.
type Compositor struct {
	dc      *gg.Context
	regular *ggtext.FontSource
	bold    *ggtext.FontSource
}

// NewCompositor creates a compositor with the embedded Go fonts loaded
// for cell numbering.
func NewCompositor() (*Compositor, error) {
	regular, err := ggtext.NewFontSource(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("load regular font: %w", err)
	}
	bold, err := ggtext.NewFontSource(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("load bold font: %w", err)
	}
	return &Compositor{regular: regular, bold: bold}, nil
}

// Surface exposes the current raster surface for encoding. It is only
// valid after a successful RenderPage and until the next one.
func (c *Compositor) Surface() *gg.Context {
	return c.dc
}

// RenderPage composes one page: each payload is decoded and drawn into
// its grid cell with cover-fit cropping, then numbered and masked
// according to settings, and finally the overlay bitmap (if any) is
// composited over the whole page.
//
// A payload that fails to decode gets an error placeholder tile in its
// cell; it never aborts the page. Cancellation via ctx is checked before
// each cell; on cancellation the partially drawn surface is abandoned
// and an error wrapping ctx.Err() is returned.
func (c *Compositor) RenderPage(ctx context.Context, payloads [][]byte, plan PagePlan, settings *domain.LayoutSettings, masked IndexSet, sticker, overlay *gg.ImageBuf) error {
	pageW, pageH := plan.Dims()
	if err := c.resetSurface(pageW, pageH); err != nil {
		return err
	}

	decodeCtx, cancelDecode := context.WithCancel(ctx)
	defer cancelDecode()
	decoded := decodeAhead(decodeCtx, payloads)

	for i := range payloads {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("render page: %w", err)
		}

		res, ok := <-decoded
		if !ok {
			// Pipeline only closes early on cancellation.
			return fmt.Errorf("render page: %w", ctx.Err())
		}

		col := i % plan.Columns
		row := i / plan.Columns
		cellX := float64(col * (plan.CellW + plan.Gap))
		cellY := float64(row * (plan.CellH + plan.Gap))
		cellW := float64(plan.CellW)
		cellH := float64(plan.CellH)

		if res.err != nil {
			c.drawPlaceholder(cellX, cellY, cellW, cellH)
		} else {
			drawCover(c.dc, res.img, cellX, cellY, cellW, cellH)
		}

		seq := settings.Numbering.Start + plan.GlobalOffset + i
		if settings.Numbering.Enabled {
			c.drawNumber(seq, cellX, cellY, cellW, cellH, &settings.Numbering)
		}
		if masked.Has(seq) {
			c.drawMask(cellX, cellY, cellW, cellH, settings, sticker)
		}
	}

	// DrawImageOptions reads a zero Opacity as "unset" and substitutes
	// 1.0, so a fully transparent overlay must be skipped, not drawn.
	if overlay != nil && settings.Overlay.Opacity > 0 {
		c.dc.DrawImageEx(overlay, gg.DrawImageOptions{
			DstWidth:  float64(pageW),
			DstHeight: float64(pageH),
			Opacity:   settings.Overlay.Opacity,
			BlendMode: ParseBlendMode(settings.Overlay.BlendMode),
		})
	}

	// Leave the surface in a pristine drawing state for the next page.
	c.dc.Identity()
	c.dc.ResetClip()
	c.dc.ClearPath()
	return nil
}

func (c *Compositor) resetSurface(w, h int) error {
	if c.dc == nil {
		c.dc = gg.NewContext(w, h)
	} else if err := c.dc.Resize(w, h); err != nil {
		return fmt.Errorf("resize surface: %w", err)
	}
	c.dc.Identity()
	c.dc.ResetClip()
	c.dc.ClearPath()
	c.dc.ClearWithColor(gg.White)
	return nil
}

// drawCover draws img into the cell rectangle using cover-fit: uniform
// scale so the shorter relative dimension exactly fills the cell, with
// the overflow on the longer dimension center-cropped away. The crop is
// expressed as a source rectangle, so nothing bleeds into neighbors.
func drawCover(dc *gg.Context, img *gg.ImageBuf, x, y, w, h float64) {
	srcW := float64(img.Width())
	srcH := float64(img.Height())
	if srcW < 1 || srcH < 1 {
		return
	}

	scale := math.Max(w/srcW, h/srcH)
	cropW := w / scale
	cropH := h / scale
	sx := (srcW - cropW) / 2
	sy := (srcH - cropH) / 2

	srcRect := image.Rect(
		int(math.Floor(sx)), int(math.Floor(sy)),
		int(math.Ceil(sx+cropW)), int(math.Ceil(sy+cropH)),
	)
	dc.DrawImageEx(img, gg.DrawImageOptions{
		X:             x,
		Y:             y,
		DstWidth:      w,
		DstHeight:     h,
		SrcRect:       &srcRect,
		Interpolation: gg.InterpBilinear,
	})
}

// drawPlaceholder fills a cell with a neutral error tile: grey field,
// outlined border, and a large exclamation mark.
func (c *Compositor) drawPlaceholder(x, y, w, h float64) {
	dc := c.dc
	dc.SetHexColor("#e8e8e8")
	dc.DrawRectangle(x, y, w, h)
	dc.Fill()

	dc.SetHexColor("#b0b0b0")
	dc.SetLineWidth(math.Max(2, w*0.01))
	dc.DrawRectangle(x+w*0.05, y+h*0.05, w*0.9, h*0.9)
	dc.Stroke()

	dc.SetFont(c.bold.Face(h * 0.25))
	dc.SetHexColor("#808080")
	dc.DrawStringAnchored("!", x+w/2, y+h/2, 0.5, 0.5)
}

func (c *Compositor) drawNumber(n int, x, y, w, h float64, ns *domain.NumberingSettings) {
	size := float64(ns.FontSize)
	face := c.regular.Face(size)
	if ns.FontWeight >= 600 {
		face = c.bold.Face(size)
	}
	c.dc.SetFont(face)

	label := strconv.Itoa(n)
	tx, ty, ax, ay := anchorPoint(ns.Anchor, x, y, w, h, size)

	// Stroke goes down first so the fill sits on top of the outline.
	if ns.Stroke {
		d := math.Max(1, size/15)
		c.dc.SetColor(parseColor(ns.StrokeColor, "#000000"))
		for _, off := range [8][2]float64{
			{-d, -d}, {0, -d}, {d, -d},
			{-d, 0}, {d, 0},
			{-d, d}, {0, d}, {d, d},
		} {
			c.dc.DrawStringAnchored(label, tx+off[0], ty+off[1], ax, ay)
		}
	}

	// The drop shadow belongs to the fill pass only; it is a discrete
	// draw here, so no shadow state can leak into later drawing.
	if ns.Shadow {
		d := math.Max(2, size/12)
		c.dc.SetColor(parseColor(ns.ShadowColor, "#000000"))
		c.dc.DrawStringAnchored(label, tx+d, ty+d, ax, ay)
	}

	c.dc.SetColor(parseColor(ns.Color, "#ffffff"))
	c.dc.DrawStringAnchored(label, tx, ty, ax, ay)
}

// anchorPoint maps a NumberAnchor to a draw position and the text-anchor
// fractions DrawStringAnchored expects.
func anchorPoint(anchor domain.NumberAnchor, x, y, w, h, fontSize float64) (tx, ty, ax, ay float64) {
	inset := math.Max(fontSize*0.35, w*0.02)

	switch anchor {
	case domain.AnchorBottomLeft:
		return x + inset, y + h - inset, 0, 0
	case domain.AnchorBottomRight:
		return x + w - inset, y + h - inset, 1, 0
	case domain.AnchorCenter:
		return x + w/2, y + h/2, 0.5, 0.5
	case domain.AnchorTopLeft:
		return x + inset, y + inset, 0, 1
	case domain.AnchorTopRight:
		return x + w - inset, y + inset, 1, 1
	default: // bottom-center
		return x + w/2, y + h - inset, 0.5, 0
	}
}

func (c *Compositor) drawMask(x, y, w, h float64, settings *domain.LayoutSettings, sticker *gg.ImageBuf) {
	if settings.Mask.Mode == domain.MaskModeSticker && sticker != nil {
		drawSticker(c.dc, sticker, x, y, w, h, &settings.Sticker)
		return
	}

	dc := c.dc
	dc.SetColor(parseColor(settings.Mask.LineColor, "#ff0000"))
	// Line width scales with cell size so the visual thickness is
	// resolution independent.
	dc.SetLineWidth(math.Max(1, settings.Mask.LineWidth*w*0.02))

	x0, y0 := x+w*0.2, y+h*0.2
	x1, y1 := x+w*0.8, y+h*0.8
	if settings.Mask.LineStyle == domain.LineStyleDiagonal {
		dc.DrawLine(x1, y0, x0, y1)
		dc.Stroke()
		return
	}
	dc.DrawLine(x0, y0, x1, y1)
	dc.Stroke()
	dc.DrawLine(x1, y0, x0, y1)
	dc.Stroke()
}

// drawSticker draws the sticker sized to SizePercent of the cell width,
// preserving its own aspect ratio, centered on the (XPercent, YPercent)
// point of the cell. The drawn region is clamped to the cell bounds with
// a matching source-side crop, so an off-center sticker never bleeds into
// a neighboring cell.
func drawSticker(dc *gg.Context, sticker *gg.ImageBuf, x, y, w, h float64, st *domain.StickerSettings) {
	srcW := float64(sticker.Width())
	srcH := float64(sticker.Height())
	if srcW < 1 || srcH < 1 {
		return
	}

	dstW := w * st.SizePercent / 100
	dstH := dstW * srcH / srcW
	cx := x + w*st.XPercent/100
	cy := y + h*st.YPercent/100
	dstX := cx - dstW/2
	dstY := cy - dstH/2

	clipX0 := math.Max(dstX, x)
	clipY0 := math.Max(dstY, y)
	clipX1 := math.Min(dstX+dstW, x+w)
	clipY1 := math.Min(dstY+dstH, y+h)
	if clipX1 <= clipX0 || clipY1 <= clipY0 {
		return
	}

	srcRect := image.Rect(
		int((clipX0-dstX)/dstW*srcW),
		int((clipY0-dstY)/dstH*srcH),
		int(math.Ceil((clipX1-dstX)/dstW*srcW)),
		int(math.Ceil((clipY1-dstY)/dstH*srcH)),
	)
	dc.DrawImageEx(sticker, gg.DrawImageOptions{
		X:             clipX0,
		Y:             clipY0,
		DstWidth:      clipX1 - clipX0,
		DstHeight:     clipY1 - clipY0,
		SrcRect:       &srcRect,
		Interpolation: gg.InterpBilinear,
	})
}

// ParseBlendMode maps a settings blend-mode name to a compositing
// operator. Unknown names fall back to normal source-over blending.
func ParseBlendMode(name string) gg.BlendMode {
	switch name {
	case "multiply":
		return gg.BlendMultiply
	case "screen":
		return gg.BlendScreen
	case "overlay":
		return gg.BlendOverlay
	default:
		return gg.BlendNormal
	}
}
