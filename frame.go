package fbtile

import (
	"errors"
	"fmt"
)

// Frame errors.
var (
	// ErrInvalidFormat is returned when the format is not recognized.
	ErrInvalidFormat = errors.New("fbtile: invalid format")

	// ErrStrideTooSmall is returned when a frame's stride cannot hold
	// one row of pixels.
	ErrStrideTooSmall = errors.New("fbtile: stride too small for width")

	// ErrDataTooSmall is returned when provided data is smaller than
	// the declared geometry requires.
	ErrDataTooSmall = errors.New("fbtile: data buffer too small")

	// ErrNilFrame is returned when a nil frame is passed to a copy.
	ErrNilFrame = errors.New("fbtile: nil frame")
)

// Frame is a view over an externally owned pixel buffer. fbtile never
// allocates or frees the underlying data of caller-provided frames; a
// conversion reads one frame and writes the other.
type Frame struct {
	// Data holds at least Stride*(Height-1)+Format.RowBytes(Width) bytes.
	Data []byte

	// Width and Height are the frame dimensions in pixels.
	Width  int
	Height int

	// Stride is the number of bytes per row, including any padding.
	Stride int

	// Format is the pixel format of Data.
	Format Format
}

// NewFrame wraps existing data as a frame without copying. The caller
// must ensure data remains valid for the lifetime of the frame.
// Stride must be at least Format.RowBytes(width).
func NewFrame(data []byte, width, height int, format Format, stride int) (*Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}
	if !format.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, format)
	}

	minStride := format.RowBytes(width)
	if stride < minStride {
		return nil, fmt.Errorf("%w: stride=%d, need %d", ErrStrideTooSmall, stride, minStride)
	}

	required := stride*(height-1) + minStride
	if len(data) < required {
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrDataTooSmall, len(data), required)
	}

	return &Frame{
		Data:   data,
		Width:  width,
		Height: height,
		Stride: stride,
		Format: format,
	}, nil
}

// AllocFrame allocates a tightly packed frame of the given geometry.
func AllocFrame(width, height int, format Format) (*Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}
	if !format.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, format)
	}

	stride := format.RowBytes(width)
	return &Frame{
		Data:   make([]byte, stride*height),
		Width:  width,
		Height: height,
		Stride: stride,
		Format: format,
	}, nil
}

// Row returns the payload bytes of row y, excluding stride padding.
// Returns nil if y is out of bounds.
func (f *Frame) Row(y int) []byte {
	if y < 0 || y >= f.Height {
		return nil
	}
	start := y * f.Stride
	return f.Data[start : start+f.Format.RowBytes(f.Width)]
}

// Clone creates a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	data := make([]byte, len(f.Data))
	copy(data, f.Data)
	c := *f
	c.Data = data
	return &c
}
