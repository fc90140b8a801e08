// Package imaging prepares profile pictures for upload.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultMaxDimension = 512
	DefaultQuality      = 85

	// MaxPixels bounds the decoded size; anything larger is never decoded.
	MaxPixels = 40_000_000
)

var ErrTooManyPixels = errors.New("image dimensions exceed the decode budget")

// Prepared is the payload actually sent to the object store.
type Prepared struct {
	Body        []byte
	ContentType string
	Extension   string // with leading dot, may be empty
}

// Prepare sniffs the content type of data and, for raster images, downsizes
// to maxDimension and re-encodes as JPEG. Anything that cannot be decoded is
// passed through untouched: this is a size optimisation, not a filter.
func Prepare(data []byte, maxDimension, quality int) Prepared {
	mtype := mimetype.Detect(data)
	original := Prepared{
		Body:        data,
		ContentType: mtype.String(),
		Extension:   mtype.Extension(),
	}

	if !isRaster(mtype) {
		return original
	}

	compressed, err := Compress(data, maxDimension, quality)
	if err != nil || len(compressed) >= len(data) {
		return original
	}

	return Prepared{
		Body:        compressed,
		ContentType: "image/jpeg",
		Extension:   ".jpg",
	}
}

// Compress scales an image so its longest side is at most maxDimension and
// encodes it as JPEG
func Compress(data []byte, maxDimension, quality int) ([]byte, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read image header (format: %s): %w", format, err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image (format: %s): %w", format, err)
	}

	bounds := img.Bounds()
	newWidth, newHeight := fit(bounds.Dx(), bounds.Dy(), maxDimension)

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// fit keeps the aspect ratio while bounding the longest side
func fit(width, height, maxDimension int) (int, int) {
	if width >= height {
		if width <= maxDimension {
			return width, height
		}
		return maxDimension, max(1, height*maxDimension/width)
	}
	if height <= maxDimension {
		return width, height
	}
	return max(1, width*maxDimension/height), maxDimension
}

func isRaster(mtype *mimetype.MIME) bool {
	for _, t := range []string{"image/jpeg", "image/png", "image/gif", "image/webp"} {
		if mtype.Is(t) {
			return true
		}
	}
	return false
}
