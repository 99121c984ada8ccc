package image

import (
	"fmt"
	stdimage "image"
	"image/gif"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
)

// Load decodes the image at path into a Grid under the given
// unknown-pixel policy. The concrete raster format (PNG, GIF, BMP) is
// selected by file extension; decoding itself is delegated entirely to
// the external image libraries named below (spec.md §1, component B).
//
// PNG and GIF are decoded with the standard library; BMP has no
// standard-library decoder, so it is decoded with
// golang.org/x/image/bmp, the same package bdwalton/gintendo,
// periph-devices, and IntuitionAmiga/IntuitionEngine all pull in for
// raster image support.
func Load(path string, policy UnknownPolicy) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := decode(f, path)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return fromImage(img, policy)
}

func decode(r io.Reader, path string) (stdimage.Image, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return png.Decode(r)
	case ".gif":
		return gif.Decode(r)
	case ".bmp":
		return bmp.Decode(r)
	default:
		// Fall back to format sniffing across all three registered
		// decoders rather than rejecting an unrecognized extension
		// outright.
		img, _, err := stdimage.Decode(r)
		return img, err
	}
}

func fromImage(img stdimage.Image, policy UnknownPolicy) (*Grid, error) {
	bounds := img.Bounds()
	height, width := bounds.Dy(), bounds.Dx()
	if height == 0 || width == 0 {
		return nil, fmt.Errorf("empty image")
	}
	grid := NewGrid(height, width)
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			r32, g32, b32, _ := img.At(bounds.Min.X+col, bounds.Min.Y+row).RGBA()
			// color.Color.RGBA returns 16-bit-per-channel,
			// alpha-premultiplied values; the Piet palette is 8-bit
			// and fully opaque, so the high byte is the channel value.
			r, g, b := uint8(r32>>8), uint8(g32>>8), uint8(b32>>8)
			c, err := classify(r, g, b, row, col, policy)
			if err != nil {
				return nil, err
			}
			grid.Set(row, col, c)
		}
	}
	return grid, nil
}

func init() {
	stdimage.RegisterFormat("bmp", "BM", bmp.Decode, bmp.DecodeConfig)
}
