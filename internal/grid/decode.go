package grid

import (
	"bytes"
	"context"
	"fmt"
	"image"

	// Registered decoders for the import formats the UI accepts.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/gogpu/gg"
)

// DecodeWindow bounds how many image decodes may run ahead of the serial
// draw loop within one page.
const DecodeWindow = 6

// DecodeImage decodes an encoded image payload into a drawable buffer.
func DecodeImage(data []byte) (*gg.ImageBuf, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return gg.ImageBufFromImage(img), nil
}

type decodeResult struct {
	img *gg.ImageBuf
	err error
}

// decodeAhead decodes payloads with at most DecodeWindow decodes in
// flight and delivers results strictly in input order. Draw commits stay
// serialized in gallery order regardless of decode completion order; the
// window only hides decode latency.
func decodeAhead(ctx context.Context, payloads [][]byte) <-chan decodeResult {
	out := make(chan decodeResult)
	slots := make([]chan decodeResult, len(payloads))
	for i := range slots {
		slots[i] = make(chan decodeResult, 1)
	}

	go func() {
		sem := make(chan struct{}, DecodeWindow)
		for i, data := range payloads {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			go func(slot chan decodeResult, data []byte) {
				defer func() { <-sem }()
				img, err := DecodeImage(data)
				slot <- decodeResult{img: img, err: err}
			}(slots[i], data)
		}
	}()

	go func() {
		defer close(out)
		for _, slot := range slots {
			select {
			case r := <-slot:
				select {
				case out <- r:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
