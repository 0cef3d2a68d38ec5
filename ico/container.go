package ico

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	headerSize = 6
	entrySize  = 16
	typeIcon   = 1
)

type icondir struct {
	reserved  uint16
	imageType uint16
	numImages uint16
}

type icondirentry struct {
	imageWidth   uint8
	imageHeight  uint8
	numColors    uint8
	reserved     uint8
	colorPlanes  uint16
	bitsPerPixel uint16
	sizeInBytes  uint32
	offset       uint32
}

func newIcondir(numImages int) icondir {
	var id icondir
	id.imageType = typeIcon
	id.numImages = uint16(numImages)
	return id
}

// https://en.wikipedia.org/wiki/ICO_(file_format)
func newIcondirentry(f Frame, offset uint32) icondirentry {
	var ide icondirentry
	ide.imageWidth = dimension(f.Size)
	ide.imageHeight = dimension(f.Size)
	ide.colorPlanes = 1
	ide.bitsPerPixel = 32 // frames are always RGBA PNG
	ide.sizeInBytes = uint32(len(f.Data))
	ide.offset = offset
	return ide
}

// Frame is one PNG encoded resolution of an icon.
type Frame struct {
	Size int
	Data []byte
}

// Assemble lays out the header, one directory entry per frame and the
// frame data, in the order given. Offsets start right after the
// directory and are cumulative.
func Assemble(frames []Frame) ([]byte, error) {
	if len(frames) == 0 {
		return nil, ErrInvalidSizeSet
	}
	offset := uint32(headerSize + entrySize*len(frames))
	total := int(offset)
	entries := make([]icondirentry, len(frames))
	for i, f := range frames {
		if f.Size < 1 || f.Size > MaxSize {
			return nil, &SizeError{Size: f.Size}
		}
		entries[i] = newIcondirentry(f, offset)
		offset += uint32(len(f.Data))
		total += len(f.Data)
	}

	buf := bytes.NewBuffer(make([]byte, 0, total))
	if err := binary.Write(buf, binary.LittleEndian, newIcondir(len(frames))); err != nil {
		return nil, fmt.Errorf("ico: write header: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, entries); err != nil {
		return nil, fmt.Errorf("ico: write directory: %w", err)
	}
	for _, f := range frames {
		buf.Write(f.Data)
	}
	return buf.Bytes(), nil
}

// Directory is the parsed header and entry table of an icon file.
type Directory struct {
	Type    uint16
	Entries []DirEntry
}

// DirEntry mirrors one 16-byte directory entry.
type DirEntry struct {
	Width        uint8
	Height       uint8
	Colors       uint8
	Planes       uint16
	BitsPerPixel uint16
	Length       uint32
	Offset       uint32
}

// Size returns the pixel width, mapping the 0 byte back to 256.
func (e DirEntry) Size() int {
	w, _ := e.Dims()
	return w
}

// Dims returns the pixel width and height; a 0 byte means 256.
func (e DirEntry) Dims() (w, h int) {
	return pixels(e.Width), pixels(e.Height)
}

func pixels(b uint8) int {
	if b == 0 {
		return MaxSize
	}
	return int(b)
}

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// IsPNG reports whether data starts with the PNG signature.
func IsPNG(data []byte) bool {
	return bytes.HasPrefix(data, pngSignature)
}

// ParseDirectory reads the header and directory of an icon file and
// checks that every entry points inside b.
func ParseDirectory(b []byte) (*Directory, error) {
	if len(b) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrMalformedIcon, len(b))
	}
	le := binary.LittleEndian
	if le.Uint16(b[0:]) != 0 {
		return nil, fmt.Errorf("%w: reserved field is not zero", ErrMalformedIcon)
	}
	d := &Directory{Type: le.Uint16(b[2:])}
	if d.Type != typeIcon {
		return nil, fmt.Errorf("%w: resource type %d is not an icon", ErrMalformedIcon, d.Type)
	}
	count := int(le.Uint16(b[4:]))
	if count == 0 {
		return nil, fmt.Errorf("%w: no images", ErrMalformedIcon)
	}
	if len(b) < headerSize+entrySize*count {
		return nil, fmt.Errorf("%w: directory of %d entries is truncated", ErrMalformedIcon, count)
	}

	d.Entries = make([]DirEntry, count)
	for i := range d.Entries {
		p := b[headerSize+entrySize*i:]
		e := DirEntry{
			Width:        p[0],
			Height:       p[1],
			Colors:       p[2],
			Planes:       le.Uint16(p[4:]),
			BitsPerPixel: le.Uint16(p[6:]),
			Length:       le.Uint32(p[8:]),
			Offset:       le.Uint32(p[12:]),
		}
		if e.Offset < uint32(headerSize+entrySize*count) {
			return nil, fmt.Errorf("%w: entry %d data at %d overlaps the directory", ErrMalformedIcon, i, e.Offset)
		}
		if uint64(e.Offset)+uint64(e.Length) > uint64(len(b)) {
			return nil, fmt.Errorf("%w: entry %d data [%d:+%d] exceeds %d bytes", ErrMalformedIcon, i, e.Offset, e.Length, len(b))
		}
		d.Entries[i] = e
	}
	return d, nil
}

// Frame returns the data bytes of entry i within b.
func (d *Directory) Frame(b []byte, i int) []byte {
	e := d.Entries[i]
	return b[e.Offset : e.Offset+e.Length]
}
