package ico

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSizeSet is returned when no sizes were requested.
	ErrInvalidSizeSet = errors.New("ico: size set is empty")
	// ErrSizeOutOfRange is matched by every *SizeError.
	ErrSizeOutOfRange = errors.New("ico: size out of range")
	// ErrEncodingFailed is matched by every *EncodingError.
	ErrEncodingFailed = errors.New("ico: encoding failed")
	// ErrMalformedIcon is returned by ParseDirectory.
	ErrMalformedIcon = errors.New("ico: malformed icon")
	// ErrNoSource is returned when Encode is called without an image.
	ErrNoSource = errors.New("ico: no source image")
)

// SizeError reports a requested size the directory cannot describe.
type SizeError struct {
	Size int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("ico: size %d out of range 1..%d", e.Size, MaxSize)
}

func (e *SizeError) Unwrap() error { return ErrSizeOutOfRange }

// EncodingError reports the size whose frame could not be rendered.
type EncodingError struct {
	Size int
	Err  error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("ico: encoding %dx%d frame: %v", e.Size, e.Size, e.Err)
}

func (e *EncodingError) Unwrap() []error { return []error{ErrEncodingFailed, e.Err} }
