// Package raster resamples source images to square icon frames.
package raster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// ErrUnknownFilter is returned by ParseFilter.
var ErrUnknownFilter = errors.New("raster: unknown filter")

// Filter is a named resampling algorithm.
type Filter struct {
	Name  string
	scale func(src image.Image, size int) *image.NRGBA
}

func imagingFilter(name string, f imaging.ResampleFilter) Filter {
	return Filter{Name: name, scale: func(src image.Image, size int) *image.NRGBA {
		return imaging.Resize(src, size, size, f)
	}}
}

func drawFilter(name string, k draw.Scaler) Filter {
	return Filter{Name: name, scale: func(src image.Image, size int) *image.NRGBA {
		dst := image.NewNRGBA(image.Rect(0, 0, size, size))
		k.Scale(dst, dst.Rect, src, src.Bounds(), draw.Src, nil)
		return dst
	}}
}

var (
	// Box averages the source pixels covered by each destination pixel.
	Box        = imagingFilter("box", imaging.Box)
	Lanczos    = imagingFilter("lanczos", imaging.Lanczos)
	Linear     = imagingFilter("linear", imaging.Linear)
	Nearest    = imagingFilter("nearest", imaging.NearestNeighbor)
	CatmullRom = drawFilter("catmullrom", draw.CatmullRom)
)

var filters = map[string]Filter{
	Box.Name:        Box,
	Lanczos.Name:    Lanczos,
	Linear.Name:     Linear,
	Nearest.Name:    Nearest,
	CatmullRom.Name: CatmullRom,
}

// ParseFilter looks a filter up by name. The empty name selects Box.
func ParseFilter(name string) (Filter, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Box, nil
	}
	f, ok := filters[name]
	if !ok {
		return Filter{}, fmt.Errorf("%w %q (want one of %s)", ErrUnknownFilter, name, strings.Join(FilterNames(), ", "))
	}
	return f, nil
}

// FilterNames lists the accepted filter names in sorted order.
func FilterNames() []string {
	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resampler scales a whole source image into a square and PNG encodes
// it. It holds no mutable state and may be shared between goroutines.
type Resampler struct {
	Filter      Filter
	Compression png.CompressionLevel
}

// New returns a Resampler using f.
func New(f Filter) *Resampler {
	return &Resampler{Filter: f}
}

// Resample scales src to size x size without cropping.
func (r *Resampler) Resample(src image.Image, size int) (*image.NRGBA, error) {
	if size < 1 {
		return nil, fmt.Errorf("raster: invalid size %d", size)
	}
	if src == nil || src.Bounds().Empty() {
		return nil, errors.New("raster: empty source image")
	}
	f := r.Filter
	if f.scale == nil {
		f = Box
	}
	return f.scale(src, size), nil
}

// Render resamples src and returns the frame as PNG bytes.
func (r *Resampler) Render(ctx context.Context, src image.Image, size int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dst, err := r.Resample(src, size)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	enc := png.Encoder{CompressionLevel: r.Compression}
	if err := enc.Encode(buf, dst); err != nil {
		return nil, fmt.Errorf("raster: encode png: %w", err)
	}
	return buf.Bytes(), nil
}
