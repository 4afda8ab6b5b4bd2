package ai

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/kdimtricp/veriframe/internal/models"
)

func encodedTestFrame(t *testing.T, w, h int) (string, []byte) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 150, B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("Failed to encode test frame: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), buf.Bytes()
}

func TestDecodeFrame(t *testing.T) {
	b64, _ := encodedTestFrame(t, 64, 48)

	img, err := DecodeFrame(b64)
	if err != nil {
		t.Fatalf("Failed to decode frame: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 48 {
		t.Errorf("Expected 64x48 frame, got %v", img.Bounds())
	}
}

func TestDecodeFrameDataURI(t *testing.T) {
	b64, _ := encodedTestFrame(t, 16, 16)

	img, err := DecodeFrame("data:image/jpeg;base64," + b64)
	if err != nil {
		t.Fatalf("Failed to decode data-URI frame: %v", err)
	}
	if img.Bounds().Dx() != 16 {
		t.Errorf("Expected 16px frame, got %v", img.Bounds())
	}
}

func TestDecodeFrameInvalid(t *testing.T) {
	if _, err := DecodeFrame("not base64!!!"); err == nil {
		t.Errorf("Expected error for invalid base64")
	}
	if _, err := DecodeFrame(base64.StdEncoding.EncodeToString([]byte("not an image"))); err == nil {
		t.Errorf("Expected error for non-image bytes")
	}
}

func TestCropFace(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))

	crop := CropFace(img, models.BoundingBox{X: 10, Y: 20, W: 30, H: 40})
	if crop == nil {
		t.Fatalf("Expected a crop, got nil")
	}
	if crop.Bounds().Dx() != 30 || crop.Bounds().Dy() != 40 {
		t.Errorf("Expected 30x40 crop, got %v", crop.Bounds())
	}
}

func TestCropFaceClampsToFrame(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 50, 50))

	crop := CropFace(img, models.BoundingBox{X: 40, Y: 40, W: 30, H: 30})
	if crop == nil {
		t.Fatalf("Expected a clamped crop, got nil")
	}
	if crop.Bounds().Dx() != 10 || crop.Bounds().Dy() != 10 {
		t.Errorf("Expected crop clamped to 10x10, got %v", crop.Bounds())
	}
}

func TestCropFaceOutsideFrame(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 50, 50))

	if crop := CropFace(img, models.BoundingBox{X: 60, Y: 60, W: 10, H: 10}); crop != nil {
		t.Errorf("Expected nil for a bbox outside the frame, got %v", crop.Bounds())
	}
}

func TestEncodeJPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))

	data, err := EncodeJPEG(img)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}

	decoded, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Output is not valid JPEG: %v", err)
	}
	if decoded.Bounds().Dx() != 8 {
		t.Errorf("Expected 8px image back, got %v", decoded.Bounds())
	}
}
