package ico

import (
	"context"
	"errors"
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"

	"ico-convert/raster"
)

var errEmptyFrame = errors.New("renderer returned no data")

// FrameRenderer resamples src to an exact size x size square and returns
// it PNG encoded. Implementations must be safe for concurrent use.
type FrameRenderer interface {
	Render(ctx context.Context, src image.Image, size int) ([]byte, error)
}

// Encoder builds multi-resolution icons. The zero value renders with
// the box filter and one goroutine per CPU.
type Encoder struct {
	Renderer FrameRenderer
	// Concurrency bounds the number of frames rendered at once.
	Concurrency int
}

// NewEncoder returns an Encoder that renders frames with r.
func NewEncoder(r FrameRenderer) *Encoder {
	return &Encoder{Renderer: r}
}

// Encode renders src at every requested size and assembles the icon.
// Sizes are deduplicated and laid out in ascending order whatever order
// they arrive in. Nothing is returned if any frame fails.
func (e *Encoder) Encode(ctx context.Context, src image.Image, sizes []int) ([]byte, error) {
	set, err := NewSizeSet(sizes...)
	if err != nil {
		return nil, err
	}
	frames, err := e.Frames(ctx, src, set)
	if err != nil {
		return nil, err
	}
	return Assemble(frames)
}

// Frames renders one frame per size of set concurrently. The first
// failure cancels the remaining work and is returned as *EncodingError.
func (e *Encoder) Frames(ctx context.Context, src image.Image, set SizeSet) ([]Frame, error) {
	if src == nil {
		return nil, ErrNoSource
	}
	if len(set) == 0 {
		return nil, ErrInvalidSizeSet
	}
	renderer := e.Renderer
	if renderer == nil {
		renderer = raster.New(raster.Box)
	}
	limit := e.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	frames := make([]Frame, len(set))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, size := range set {
		i, size := i, size
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return &EncodingError{Size: size, Err: err}
			}
			data, err := renderer.Render(gctx, src, size)
			if err != nil {
				return &EncodingError{Size: size, Err: err}
			}
			if len(data) == 0 {
				return &EncodingError{Size: size, Err: errEmptyFrame}
			}
			frames[i] = Frame{Size: size, Data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return frames, nil
}

// Encode renders src with the default box-filter encoder.
func Encode(ctx context.Context, src image.Image, sizes []int) ([]byte, error) {
	var e Encoder
	return e.Encode(ctx, src, sizes)
}
