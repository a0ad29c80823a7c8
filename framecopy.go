package fbtile

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrSizeMismatch is returned when the two frames of a copy disagree on
// dimensions.
var ErrSizeMismatch = errors.New("fbtile: frame dimensions differ")

// CopyStatus reports which path a CopyWithTiling call took.
type CopyStatus uint8

const (
	// CopyStatusPlain means the frame was copied as-is, with no tiling
	// conversion applied. This is the designed fallback for unknown
	// layouts and unsupported formats, and the trivial path when both
	// sides are linear.
	CopyStatusPlain CopyStatus = iota

	// CopyStatusTiled means the engine tiled or detiled the frame.
	CopyStatusTiled
)

// String returns a string representation of the status.
func (s CopyStatus) String() string {
	switch s {
	case CopyStatusPlain:
		return "PlainCopy"
	case CopyStatusTiled:
		return "TiledCopy"
	default:
		return "Unknown"
	}
}

// Rate-limit flags for fallback diagnostics.
var (
	formatWarned    atomic.Bool
	layoutWarned    atomic.Bool
	bothTiledWarned atomic.Bool
)

// CopyWithTiling copies src into dst, tiling or detiling as required.
//
// Exactly one side may declare a non-linear layout: a tiled source is
// detiled into a linear destination, a linear source is tiled into a
// tiled destination. Unsupported configurations (an unknown layout, a
// pixel format outside the 32-bit RGB set, or tiled on both sides)
// degrade to a plain row copy and report CopyStatusPlain; this is a
// designed fallback, not an error.
//
// Geometry contract violations (see [Convert]) are surfaced as errors
// and abort the copy before any bytes are written. The returned status
// is only meaningful when the error is nil.
func CopyWithTiling(dst *Frame, dstLayout Layout, src *Frame, srcLayout Layout) (CopyStatus, error) {
	if dst == nil || src == nil {
		return CopyStatusPlain, ErrNilFrame
	}
	if dst.Width != src.Width || dst.Height != src.Height {
		return CopyStatusPlain, fmt.Errorf("%w: src %dx%d, dst %dx%d",
			ErrSizeMismatch, src.Width, src.Height, dst.Width, dst.Height)
	}

	if !dst.Format.Supported() || !src.Format.Supported() {
		warnOnce(&formatWarned, "pixel format outside supported set, copying without (de)tiling",
			"srcFormat", src.Format.String(), "dstFormat", dst.Format.String())
		copyPlain(dst, src)
		return CopyStatusPlain, nil
	}

	switch {
	case dstLayout == LayoutNone && srcLayout == LayoutNone:
		copyPlain(dst, src)
		return CopyStatusPlain, nil

	case dstLayout == LayoutNone:
		// Tiled source, linear destination: detile.
		walk, err := WalkFor(srcLayout)
		if err != nil {
			warnOnce(&layoutWarned, "unknown layout, copying without (de)tiling",
				"layout", srcLayout.String())
			copyPlain(dst, src)
			return CopyStatusPlain, nil
		}
		if err := Convert(OpDetile, dst.Width, dst.Height,
			dst.Data, dst.Stride, src.Data, src.Stride, walk); err != nil {
			return CopyStatusPlain, err
		}
		return CopyStatusTiled, nil

	case srcLayout == LayoutNone:
		// Linear source, tiled destination: tile.
		walk, err := WalkFor(dstLayout)
		if err != nil {
			warnOnce(&layoutWarned, "unknown layout, copying without (de)tiling",
				"layout", dstLayout.String())
			copyPlain(dst, src)
			return CopyStatusPlain, nil
		}
		if err := Convert(OpTile, src.Width, src.Height,
			dst.Data, dst.Stride, src.Data, src.Stride, walk); err != nil {
			return CopyStatusPlain, err
		}
		return CopyStatusTiled, nil

	default:
		// Tiled-to-tiled is out of contract; the engine only converts
		// to or from linear.
		warnOnce(&bothTiledWarned, "both frames declare tiled layouts, copying without (de)tiling",
			"srcLayout", srcLayout.String(), "dstLayout", dstLayout.String())
		copyPlain(dst, src)
		return CopyStatusPlain, nil
	}
}

// copyPlain copies src into dst row by row, honoring both strides and
// applying no tiling conversion. The caller has already checked that
// the frames agree on dimensions.
func copyPlain(dst, src *Frame) {
	n := src.Format.RowBytes(src.Width)
	// Unknown formats have no per-pixel size; fall back to whole rows.
	if n == 0 || n > src.Stride {
		n = src.Stride
	}
	if n > dst.Stride {
		n = dst.Stride
	}

	for y := 0; y < src.Height; y++ {
		copy(dst.Data[y*dst.Stride:][:n], src.Data[y*src.Stride:][:n])
	}
}
