package ai

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"strings"

	"github.com/kdimtricp/veriframe/internal/models"
)

// DecodeFrame decodes a base64 JPEG/PNG frame as sent by the browser
// client. A data-URI prefix ("data:image/jpeg;base64,") is tolerated.
func DecodeFrame(b64 string) (image.Image, error) {
	if idx := strings.Index(b64, ","); idx >= 0 {
		b64 = b64[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 image data: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// CropFace cuts the face region out of the frame, clamped to the frame
// bounds. Returns nil when the clamped region is empty.
func CropFace(frame image.Image, bbox models.BoundingBox) image.Image {
	bounds := frame.Bounds()
	rect := image.Rect(
		bounds.Min.X+bbox.X,
		bounds.Min.Y+bbox.Y,
		bounds.Min.X+bbox.X+bbox.W,
		bounds.Min.Y+bbox.Y+bbox.H,
	).Intersect(bounds)
	if rect.Empty() {
		return nil
	}

	type subImager interface {
		SubImage(image.Rectangle) image.Image
	}
	if si, ok := frame.(subImager); ok {
		return si.SubImage(rect)
	}

	crop := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	for y := 0; y < rect.Dy(); y++ {
		for x := 0; x < rect.Dx(); x++ {
			crop.Set(x, y, frame.At(rect.Min.X+x, rect.Min.Y+y))
		}
	}
	return crop
}

// EncodeJPEG serializes an image for transport to the inference endpoint.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	return buf.Bytes(), nil
}
