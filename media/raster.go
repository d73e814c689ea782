package media

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"

	_ "image/gif" // Register decoders
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/nexstacksg/property-stewards-app-sub001/surface"
)

var supportedKinds = map[string]bool{
	"jpg":  true,
	"png":  true,
	"gif":  true,
	"webp": true,
	"bmp":  true,
	"tif":  true,
}

// decodeRaster sniffs, decodes and normalizes raw image bytes into a
// surface-compatible raster. Rasters wider than maxWidth are downscaled
// to keep buffers bounded regardless of upstream photo size.
func decodeRaster(data []byte, maxWidth int) (*surface.Raster, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image payload")
	}
	kind, err := filetype.Image(data)
	if err != nil {
		return nil, fmt.Errorf("unsupported image encoding: %w", err)
	}
	if !supportedKinds[kind.Extension] {
		return nil, fmt.Errorf("unsupported image encoding %q", kind.Extension)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind.Extension, err)
	}
	if maxWidth > 0 && img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}
	return FromImage(img), nil
}

// FromImage converts a decoded image into a raster buffer, splitting out
// an alpha plane only when the source actually carries transparency.
func FromImage(src image.Image) *surface.Raster {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	// Non-premultiplied alpha keeps raw color values intact.
	nrgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(nrgba, nrgba.Bounds(), src, bounds.Min, draw.Src)

	pixels := make([]byte, 0, w*h*3)
	alpha := make([]byte, 0, w*h)
	hasAlpha := false
	for i := 0; i < w*h; i++ {
		offset := i * 4
		pixels = append(pixels, nrgba.Pix[offset], nrgba.Pix[offset+1], nrgba.Pix[offset+2])
		a := nrgba.Pix[offset+3]
		alpha = append(alpha, a)
		if a < 255 {
			hasAlpha = true
		}
	}

	r := &surface.Raster{Width: w, Height: h, Data: pixels}
	if hasAlpha {
		r.Alpha = alpha
	}
	return r
}
