package ai

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"

	"github.com/nfnt/resize"
)

// Downscale settings for model submission. Full-resolution stills waste
// model-host bandwidth without improving the answer.
const (
	resizePercent = 60
	jpegQuality   = 60
)

// PrepareImage loads a still, scales it down and re-encodes it as a smaller
// JPEG ready for base64 submission.
func PrepareImage(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	width := uint(img.Bounds().Dx() * resizePercent / 100)
	small := resize.Resize(width, 0, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, small, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode %s: %w", path, err)
	}
	return buf.Bytes(), nil
}
