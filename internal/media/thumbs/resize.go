package thumbs

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

// rasterExtensions lists the upload extensions that get thumbnails.
// PDFs and comic archives are skipped; only raster pages are resized.
var rasterExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// IsRasterImage reports whether the filename has a thumbnail-eligible
// extension (case-insensitive).
func IsRasterImage(filename string) bool {
	return rasterExtensions[strings.ToLower(filepath.Ext(filename))]
}

// ThumbName derives the on-disk thumbnail name from a stored filename:
// "abc123.png" -> "abc123_thumb.png".
func ThumbName(storedFilename string) string {
	ext := filepath.Ext(storedFilename)
	return strings.TrimSuffix(storedFilename, ext) + "_thumb" + ext
}

// fit scales (w, h) down to fit within maxDim, preserving aspect ratio.
// Images already within bounds are returned unchanged — thumbnails only
// shrink, never upscale.
func fit(w, h, maxDim int) (int, int) {
	if w <= maxDim && h <= maxDim {
		return w, h
	}
	if w >= h {
		scaled := h * maxDim / w
		if scaled < 1 {
			scaled = 1
		}
		return maxDim, scaled
	}
	scaled := w * maxDim / h
	if scaled < 1 {
		scaled = 1
	}
	return scaled, maxDim
}

// resize returns src scaled to fit within maxDim.
func resize(src image.Image, maxDim int) image.Image {
	bounds := src.Bounds()
	w, h := fit(bounds.Dx(), bounds.Dy(), maxDim)
	if w == bounds.Dx() && h == bounds.Dy() {
		return src
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}

// encode writes img in the format matching ext (".jpg", ".jpeg", or ".png").
func encode(w io.Writer, img image.Image, ext string) error {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 85})
	case ".png":
		return png.Encode(w, img)
	default:
		return fmt.Errorf("no thumbnail encoder for %q", ext)
	}
}
