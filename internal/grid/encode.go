package grid

import (
	"bytes"
	"fmt"

	"github.com/gogpu/gg"
)

// MIME types of the two supported output encodings.
const (
	MIMEPNG  = "image/png"
	MIMEJPEG = "image/jpeg"
)

// EncodePage serializes a composed surface to an image byte buffer and
// returns the bytes with their MIME type. Quality 100 selects lossless
// PNG; anything below encodes JPEG at that quality. The surface is not
// mutated.
func EncodePage(dc *gg.Context, quality int) ([]byte, string, error) {
	var buf bytes.Buffer

	if quality >= 100 {
		if err := dc.EncodePNG(&buf); err != nil {
			return nil, "", fmt.Errorf("encode png: %w", err)
		}
		return buf.Bytes(), MIMEPNG, nil
	}

	if quality < 1 {
		quality = 1
	}
	if err := dc.EncodeJPEG(&buf, quality); err != nil {
		return nil, "", fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), MIMEJPEG, nil
}

// FileExt returns the filename extension for an output MIME type.
func FileExt(mimeType string) string {
	if mimeType == MIMEPNG {
		return ".png"
	}
	return ".jpg"
}
