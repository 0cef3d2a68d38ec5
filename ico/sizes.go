package ico

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// MaxSize is the largest frame an icon directory can describe; it is
// stored as 0 in the width and height bytes.
const MaxSize = 256

var (
	// AllSizes lists the sizes offered to users.
	AllSizes = []int{16, 32, 48, 64, 128, 256}
	// DefaultSizes is the initial selection.
	DefaultSizes = []int{16, 32, 48}
)

// SizeSet is a deduplicated, ascending list of square frame sizes.
type SizeSet []int

// NewSizeSet validates sizes, drops duplicates and sorts the result.
// Sizes outside 1..256 are rejected rather than clamped.
func NewSizeSet(sizes ...int) (SizeSet, error) {
	if len(sizes) == 0 {
		return nil, ErrInvalidSizeSet
	}
	set := make(SizeSet, 0, len(sizes))
	for _, size := range sizes {
		if size < 1 || size > MaxSize {
			return nil, &SizeError{Size: size}
		}
		if !slices.Contains(set, size) {
			set = append(set, size)
		}
	}
	slices.Sort(set)
	return set, nil
}

// ParseSizes parses a comma separated list such as "16,32,48".
func ParseSizes(s string) (SizeSet, error) {
	var sizes []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("ico: invalid size %q: %w", part, err)
		}
		sizes = append(sizes, v)
	}
	return NewSizeSet(sizes...)
}

func (s SizeSet) String() string {
	parts := make([]string, len(s))
	for i, size := range s {
		parts[i] = strconv.Itoa(size)
	}
	return strings.Join(parts, ",")
}

// dimension is the width/height byte for size; 256 wraps to 0.
func dimension(size int) uint8 {
	if size >= MaxSize {
		return 0
	}
	return uint8(size)
}
