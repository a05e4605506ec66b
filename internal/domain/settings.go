package domain

import "context"

// Anchor positions for the sequence number inside a cell.
type NumberAnchor string

const (
	AnchorBottomCenter NumberAnchor = "bottom-center"
	AnchorBottomLeft   NumberAnchor = "bottom-left"
	AnchorBottomRight  NumberAnchor = "bottom-right"
	AnchorCenter       NumberAnchor = "center"
	AnchorTopLeft      NumberAnchor = "top-left"
	AnchorTopRight     NumberAnchor = "top-right"
)

// Mask rendering modes.
type MaskMode string

const (
	MaskModeLine    MaskMode = "line"
	MaskModeSticker MaskMode = "sticker"
)

// Line sub-styles for line-mode masks.
type LineStyle string

const (
	LineStyleCross    LineStyle = "cross"
	LineStyleDiagonal LineStyle = "diagonal"
)

// NumberingSettings controls the per-cell sequence number.
type NumberingSettings struct {
	Enabled     bool         `json:"enabled"`
	Start       int          `json:"start"`
	FontSize    int          `json:"fontSize"`
	Color       string       `json:"color"`
	FontWeight  int          `json:"fontWeight"`
	Stroke      bool         `json:"stroke"`
	StrokeColor string       `json:"strokeColor"`
	Shadow      bool         `json:"shadow"`
	ShadowColor string       `json:"shadowColor"`
	Anchor      NumberAnchor `json:"anchor"`
}

// MaskSettings controls cell occlusion for cells whose sequence number is
// in the parsed index set.
type MaskSettings struct {
	Indices   string    `json:"indices"` // free-text index spec, e.g. "5, 12, 1-3"
	Mode      MaskMode  `json:"mode"`
	LineStyle LineStyle `json:"lineStyle"`
	LineColor string    `json:"lineColor"`
	LineWidth float64   `json:"lineWidth"` // scale factor, 1.0 = default thickness
}

// StickerSettings positions the sticker bitmap inside a masked cell.
// SizePercent is relative to cell width; XPercent/YPercent name the cell
// point the sticker is centered on.
type StickerSettings struct {
	SourceKey   string  `json:"sourceKey"` // FileStore key of the sticker image, "" = none
	SizePercent float64 `json:"sizePercent"`
	XPercent    float64 `json:"xPercent"`
	YPercent    float64 `json:"yPercent"`
}

// OverlaySettings composites a global image over the finished page.
type OverlaySettings struct {
	SourceKey string  `json:"sourceKey"` // FileStore key of the overlay image, "" = none
	BlendMode string  `json:"blendMode"` // normal | multiply | screen | overlay
	Opacity   float64 `json:"opacity"`   // 0..1
}

// LayoutSettings is the user-editable configuration for the compositor.
// It is a pure value object: the engine is a function of (page images,
// settings, mask set, sticker bitmap, overlay bitmap).
type LayoutSettings struct {
	Columns       int     `json:"columns"`
	RowsPerPage   int     `json:"rowsPerPage"` // 0 = auto: fit max rows within the safe page height
	AspectWidth   float64 `json:"aspectWidth"`
	AspectHeight  float64 `json:"aspectHeight"`
	GapPixels     int     `json:"gapPixels"`
	ExportQuality int     `json:"exportQuality"` // 1..100; 100 = lossless PNG

	Numbering NumberingSettings `json:"numbering"`
	Mask      MaskSettings      `json:"mask"`
	Sticker   StickerSettings   `json:"sticker"`
	Overlay   OverlaySettings   `json:"overlay"`
}

// CellAspect returns the cell width/height ratio.
func (s *LayoutSettings) CellAspect() float64 {
	return s.AspectWidth / s.AspectHeight
}

// DefaultLayoutSettings are the settings a fresh account starts from.
func DefaultLayoutSettings() LayoutSettings {
	return LayoutSettings{
		Columns:       3,
		RowsPerPage:   0,
		AspectWidth:   3,
		AspectHeight:  4,
		GapPixels:     0,
		ExportQuality: 92,
		Numbering: NumberingSettings{
			Enabled:     true,
			Start:       1,
			FontSize:    160,
			Color:       "#ffffff",
			FontWeight:  700,
			Stroke:      true,
			StrokeColor: "#000000",
			Shadow:      false,
			ShadowColor: "#000000",
			Anchor:      AnchorBottomCenter,
		},
		Mask: MaskSettings{
			Mode:      MaskModeLine,
			LineStyle: LineStyleCross,
			LineColor: "#ff0000",
			LineWidth: 1,
		},
		Sticker: StickerSettings{
			SizePercent: 40,
			XPercent:    50,
			YPercent:    50,
		},
		Overlay: OverlaySettings{
			BlendMode: "normal",
			Opacity:   1,
		},
	}
}

// Normalize clamps out-of-range values to sane defaults instead of
// rejecting them, matching the lenient posture of the index parser.
func (s *LayoutSettings) Normalize() {
	if s.Columns < 1 {
		s.Columns = 1
	}
	if s.RowsPerPage < 0 {
		s.RowsPerPage = 0
	}
	if s.AspectWidth <= 0 {
		s.AspectWidth = 3
	}
	if s.AspectHeight <= 0 {
		s.AspectHeight = 4
	}
	if s.GapPixels < 0 {
		s.GapPixels = 0
	}
	if s.ExportQuality < 1 {
		s.ExportQuality = 1
	}
	if s.ExportQuality > 100 {
		s.ExportQuality = 100
	}
	if s.Numbering.Start < 1 {
		s.Numbering.Start = 1
	}
	if s.Numbering.FontSize < 1 {
		s.Numbering.FontSize = 1
	}
	if s.Numbering.Anchor == "" {
		s.Numbering.Anchor = AnchorBottomCenter
	}
	if s.Mask.Mode == "" {
		s.Mask.Mode = MaskModeLine
	}
	if s.Mask.LineStyle == "" {
		s.Mask.LineStyle = LineStyleCross
	}
	if s.Mask.LineWidth <= 0 {
		s.Mask.LineWidth = 1
	}
	if s.Sticker.SizePercent <= 0 {
		s.Sticker.SizePercent = 40
	}
	if s.Sticker.XPercent < 0 || s.Sticker.XPercent > 100 {
		s.Sticker.XPercent = 50
	}
	if s.Sticker.YPercent < 0 || s.Sticker.YPercent > 100 {
		s.Sticker.YPercent = 50
	}
	if s.Overlay.Opacity < 0 {
		s.Overlay.Opacity = 0
	}
	if s.Overlay.Opacity > 1 {
		s.Overlay.Opacity = 1
	}
	if s.Overlay.BlendMode == "" {
		s.Overlay.BlendMode = "normal"
	}
}

// SettingsRepository persists one LayoutSettings snapshot per user.
type SettingsRepository interface {
	Get(ctx context.Context, userID int64) (*LayoutSettings, error)
	Put(ctx context.Context, userID int64, settings *LayoutSettings) error
}
