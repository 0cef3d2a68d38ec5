// Package source loads the master bitmap an icon is rendered from.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

const (
	// DefaultSVGSize is the square an SVG is rendered to before resampling.
	DefaultSVGSize = 512
	// DefaultMaxPixels bounds the decoded area of a source, 8192x8192.
	DefaultMaxPixels = 8192 * 8192
)

var (
	ErrUnsupportedFormat = errors.New("source: unsupported image format")
	ErrEmptyImage        = errors.New("source: image has no pixels")
	ErrImageTooLarge     = errors.New("source: image too large")
	ErrDecode            = errors.New("source: cannot decode image")
)

// Kind is the detected format of a source file.
type Kind string

const (
	PNG  Kind = "png"
	JPEG Kind = "jpeg"
	GIF  Kind = "gif"
	BMP  Kind = "bmp"
	TIFF Kind = "tiff"
	SVG  Kind = "svg"
)

var kinds = map[string]Kind{
	"image/png":     PNG,
	"image/jpeg":    JPEG,
	"image/gif":     GIF,
	"image/bmp":     BMP,
	"image/tiff":    TIFF,
	"image/svg+xml": SVG,
}

// Options controls decoding.
type Options struct {
	// SVGSize is the render size for vector sources; 0 means DefaultSVGSize.
	SVGSize int
	// MaxPixels rejects sources whose declared width*height exceeds it
	// before any pixel is decoded; 0 means DefaultMaxPixels.
	MaxPixels int
}

func (o Options) svgSize() int {
	if o.SVGSize <= 0 {
		return DefaultSVGSize
	}
	return o.SVGSize
}

func (o Options) maxPixels() int {
	if o.MaxPixels <= 0 {
		return DefaultMaxPixels
	}
	return o.MaxPixels
}

func checkArea(w, h, limit int) error {
	if int64(w)*int64(h) > int64(limit) {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, w, h, limit)
	}
	return nil
}

// Load sniffs data and decodes it into an image.
func Load(data []byte, opts Options) (image.Image, Kind, error) {
	if len(data) == 0 {
		return nil, "", ErrEmptyImage
	}
	mt := mimetype.Detect(data)
	var kind Kind
	for m := mt; m != nil; m = m.Parent() {
		if k, ok := kinds[m.String()]; ok {
			kind = k
			break
		}
	}

	var (
		img image.Image
		err error
	)
	switch kind {
	case "":
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mt.String())
	case SVG:
		size := opts.svgSize()
		if err := checkArea(size, size, opts.maxPixels()); err != nil {
			return nil, kind, err
		}
		img, err = renderSVG(data, size)
	default:
		cfg, _, cerr := image.DecodeConfig(bytes.NewReader(data))
		if cerr != nil {
			return nil, kind, fmt.Errorf("%w %s: %w", ErrDecode, kind, cerr)
		}
		if err := checkArea(cfg.Width, cfg.Height, opts.maxPixels()); err != nil {
			return nil, kind, err
		}
		img, err = imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	}
	if err != nil {
		return nil, kind, fmt.Errorf("%w %s: %w", ErrDecode, kind, err)
	}
	if img.Bounds().Empty() {
		return nil, kind, ErrEmptyImage
	}
	return img, kind, nil
}

// Open reads the file at path and loads it.
func Open(path string, opts Options) (image.Image, Kind, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return Load(data, opts)
}

func renderSVG(data []byte, size int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	icon.SetTarget(0, 0, float64(size), float64(size))
	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	gv := rasterx.NewScannerGV(size, size, rgba, rgba.Bounds())
	dasher := rasterx.NewDasher(size, size, gv)
	icon.Draw(dasher, 1.0)
	return rgba, nil
}
