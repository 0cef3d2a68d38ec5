// Package export writes the companion outputs that accompany an icon:
// a freedesktop hicolor PNG tree and a macOS .icns file.
package export

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/jackmordaunt/icns/v3"

	"ico-convert/ico"
	"ico-convert/raster"
)

// PixmapSize is the size also copied to pixmaps/.
const PixmapSize = 128

// WriteHicolor writes dir/icons/hicolor/<n>x<n>/apps/<name> for every size
// and dir/pixmaps/<name> when 128 is among them. The written paths are
// returned in size order.
func WriteHicolor(dir, name string, src image.Image, sizes ico.SizeSet, r *raster.Resampler) ([]string, error) {
	if len(sizes) == 0 {
		return nil, ico.ErrInvalidSizeSet
	}
	if r == nil {
		r = raster.New(raster.Box)
	}

	var paths []string
	for _, size := range sizes {
		sizeDir := filepath.Join(dir, "icons", "hicolor", fmt.Sprintf("%dx%d", size, size), "apps")
		if err := os.MkdirAll(sizeDir, os.ModePerm); err != nil {
			return paths, fmt.Errorf("failed to create %s: %w", sizeDir, err)
		}
		resized, err := r.Resample(src, size)
		if err != nil {
			return paths, &ico.EncodingError{Size: size, Err: err}
		}
		outputPath := filepath.Join(sizeDir, name)
		if err := imaging.Save(resized, outputPath); err != nil {
			return paths, err
		}
		paths = append(paths, outputPath)

		if size == PixmapSize {
			pixmapDir := filepath.Join(dir, "pixmaps")
			if err := os.MkdirAll(pixmapDir, os.ModePerm); err != nil {
				return paths, fmt.Errorf("failed to create %s: %w", pixmapDir, err)
			}
			pixmapPath := filepath.Join(pixmapDir, name)
			if err := imaging.Save(resized, pixmapPath); err != nil {
				return paths, err
			}
			paths = append(paths, pixmapPath)
		}
	}
	return paths, nil
}

// EncodeICNS writes src to w as a macOS icon set.
func EncodeICNS(w io.Writer, src image.Image) error {
	if err := icns.Encode(w, src); err != nil {
		return fmt.Errorf("encoding icns: %w", err)
	}
	return nil
}

// ICNS returns src encoded as a macOS icon set.
func ICNS(src image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := EncodeICNS(buf, src); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
