package fbtile

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// Engine errors.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("fbtile: invalid dimensions")

	// ErrInvalidStride is returned when the tiled side of a conversion
	// is not tightly packed (stride != width*bytesPerPixel). Only the
	// linear side may carry padding beyond the visible width.
	ErrInvalidStride = errors.New("fbtile: tiled stride must equal width*bytesPerPixel")

	// ErrWidthNotTileAligned is returned by the parallel engine when
	// the frame width is not a multiple of the tile width.
	ErrWidthNotTileAligned = errors.New("fbtile: width not a multiple of tile width")
)

// Op selects the direction of a conversion.
type Op uint8

const (
	// OpTile converts linear to tiled.
	OpTile Op = iota

	// OpDetile converts tiled to linear.
	OpDetile
)

// String returns a string representation of the operation.
func (op Op) String() string {
	switch op {
	case OpTile:
		return "Tile"
	case OpDetile:
		return "Detile"
	default:
		return "Unknown"
	}
}

// Variant selects the engine implementation used by Convert.
type Variant uint8

const (
	// VariantAuto picks the parallel engine when the frame geometry
	// qualifies (width and height are tile multiples) and the
	// reference engine otherwise.
	VariantAuto Variant = iota

	// VariantReference is the simple cursor walk; it handles any
	// geometry that satisfies the stride contract.
	VariantReference

	// VariantParallel batches side-by-side tiles per iteration. It
	// requires width to be a tile-width multiple and clips processing
	// to the largest tile-aligned height, leaving any bottom strip
	// untouched.
	VariantParallel
)

// ConvertOption configures a Convert call.
type ConvertOption func(*convertOptions)

type convertOptions struct {
	variant Variant
}

// WithVariant selects the engine implementation. The default is
// VariantAuto.
func WithVariant(v Variant) ConvertOption {
	return func(o *convertOptions) {
		o.variant = v
	}
}

// clipWarned rate-limits the parallel engine's height-clip warning.
var clipWarned atomic.Bool

// Convert tiles or detiles one frame between the dst and src buffers.
//
// The tiled side of the conversion must be tightly packed: its stride
// must equal width*walk.BytesPerPixel. The linear side's stride may
// include padding beyond the visible width. Both buffers are
// caller-owned and must be large enough for the declared geometry;
// Convert never allocates.
//
// Convert is a pure function of its inputs and is safe to call
// concurrently on independent buffers. On a validation failure it
// returns before writing a single byte.
func Convert(op Op, width, height int, dst []byte, dstStride int, src []byte, srcStride int, walk *TileWalk, opts ...ConvertOption) error {
	o := convertOptions{variant: VariantAuto}
	for _, opt := range opts {
		opt(&o)
	}

	if walk == nil {
		return ErrUnknownLayout
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}

	switch o.variant {
	case VariantReference:
		return convertReference(op, width, height, dst, dstStride, src, srcStride, walk)
	case VariantParallel:
		return convertParallel(op, width, height, dst, dstStride, src, srcStride, walk)
	default:
		if width%walk.TileWidth == 0 && height%walk.TileHeight == 0 {
			return convertParallel(op, width, height, dst, dstStride, src, srcStride, walk)
		}
		return convertReference(op, width, height, dst, dstStride, src, srcStride, walk)
	}
}

// splitBuffers orients dst/src into the tiled and linear sides of the
// conversion. Tiling writes the tiled side; detiling writes the linear
// side.
func splitBuffers(op Op, dst []byte, dstStride int, src []byte, srcStride int) (tld []byte, tldStride int, lin []byte, linStride int) {
	if op == OpTile {
		return dst, dstStride, src, srcStride
	}
	return src, srcStride, dst, dstStride
}

// copyRun moves one subtile scanline between the linear and tiled
// buffers, in the direction given by op.
func copyRun(op Op, lin []byte, linOff int, tld []byte, tldOff int, n int) {
	if op == OpTile {
		copy(tld[tldOff:tldOff+n], lin[linOff:linOff+n])
	} else {
		copy(lin[linOff:linOff+n], tld[tldOff:tldOff+n])
	}
}

// convertReference is the definitional tile walk: one subtile-row band
// per iteration, direction-change table scanned from the largest
// PosOffset down, first divisor match fires.
func convertReference(op Op, width, height int, dst []byte, dstStride int, src []byte, srcStride int, w *TileWalk) error {
	tld, tldStride, lin, linStride := splitBuffers(op, dst, dstStride, src, srcStride)

	if width*w.BytesPerPixel != tldStride {
		return fmt.Errorf("%w: width=%d, tiledStride=%d, bytesPerPixel=%d",
			ErrInvalidStride, width, tldStride, w.BytesPerPixel)
	}

	subTileWidthBytes := w.SubTileWidth * w.BytesPerPixel
	tO := 0
	lX, lY := 0, 0
	nRows := (width * height) / w.SubTileWidth
	for cur := 0; cur < nRows; {
		lO := lY*linStride + lX*w.BytesPerPixel

		for k := 0; k < w.SubTileHeight; k++ {
			copyRun(op, lin, lO+k*linStride, tld, tO+k*subTileWidthBytes, subTileWidthBytes)
		}
		tO += w.SubTileHeight * subTileWidthBytes
		cur += w.SubTileHeight

		for i := len(w.DirChanges) - 1; i >= 0; i-- {
			if cur%w.DirChanges[i].PosOffset == 0 {
				lX += w.DirChanges[i].XDelta
				lY += w.DirChanges[i].YDelta
				break
			}
		}
		if lX >= width {
			lX = 0
			lY += w.TileHeight
		}
	}
	return nil
}

// convertParallel walks `parallel` side-by-side tiles per iteration.
// Within an iteration the p'th tile's data sits at a fixed offset from
// the current cursor on both sides (one tile-width on the linear side,
// one full tile on the tiled side), so the per-band bookkeeping is
// amortized across the batch. When the final direction-change entry
// fires (one full tile consumed), the tile-row cursor jumps ahead by
// the whole batch and the tiled offset is recomputed from the saved
// row start to keep batched addressing consistent.
//
// Output is byte-identical to convertReference over the area covered.
func convertParallel(op Op, width, height int, dst []byte, dstStride int, src []byte, srcStride int, w *TileWalk) error {
	tld, tldStride, lin, linStride := splitBuffers(op, dst, dstStride, src, srcStride)

	if width*w.BytesPerPixel != tldStride {
		return fmt.Errorf("%w: width=%d, tiledStride=%d, bytesPerPixel=%d",
			ErrInvalidStride, width, tldStride, w.BytesPerPixel)
	}
	if width%w.TileWidth != 0 {
		return fmt.Errorf("%w: width=%d, tileWidth=%d", ErrWidthNotTileAligned, width, w.TileWidth)
	}
	clipped := height
	if height%w.TileHeight != 0 {
		clipped = (height / w.TileHeight) * w.TileHeight
		warnOnce(&clipWarned, "clipping height to tile multiple, bottom strip left untouched",
			"height", height, "tileHeight", w.TileHeight, "clipped", clipped)
	}

	tilesPerRow := width / w.TileWidth
	parallel := 1
	for p := 8; p > 0; p-- {
		if tilesPerRow%p == 0 {
			parallel = p
			break
		}
	}

	subTileWidthBytes := w.SubTileWidth * w.BytesPerPixel
	tileWidthBytes := w.TileWidth * w.BytesPerPixel
	tileBytes := w.TileWidth * w.TileHeight * w.BytesPerPixel
	rowsPerTile := w.subTileRows()
	// Unrolling assumes subtile heights that are multiples of 4, which
	// holds for every registered layout.
	unroll := w.SubTileHeight%4 == 0

	nRows := (width * clipped) / w.SubTileWidth
	cur, curPrev := 0, 0
	tO, tOPrev := 0, 0
	lX, lY := 0, 0
	curTileInRow := 0
	for cur < nRows {
		lO := lY*linStride + lX*w.BytesPerPixel

		if unroll {
			for k := 0; k < w.SubTileHeight; k += 4 {
				for p := 0; p < parallel; p++ {
					pt := tO + p*tileBytes
					pl := lO + p*tileWidthBytes
					copyRun(op, lin, pl+(k+0)*linStride, tld, pt+(k+0)*subTileWidthBytes, subTileWidthBytes)
					copyRun(op, lin, pl+(k+1)*linStride, tld, pt+(k+1)*subTileWidthBytes, subTileWidthBytes)
					copyRun(op, lin, pl+(k+2)*linStride, tld, pt+(k+2)*subTileWidthBytes, subTileWidthBytes)
					copyRun(op, lin, pl+(k+3)*linStride, tld, pt+(k+3)*subTileWidthBytes, subTileWidthBytes)
				}
			}
		} else {
			for k := 0; k < w.SubTileHeight; k++ {
				for p := 0; p < parallel; p++ {
					pt := tO + p*tileBytes
					pl := lO + p*tileWidthBytes
					copyRun(op, lin, pl+k*linStride, tld, pt+k*subTileWidthBytes, subTileWidthBytes)
				}
			}
		}

		tO += w.SubTileHeight * subTileWidthBytes
		cur += w.SubTileHeight

		for i := len(w.DirChanges) - 1; i >= 0; i-- {
			dc := w.DirChanges[i]
			if cur%dc.PosOffset != 0 {
				continue
			}
			if i == len(w.DirChanges)-1 {
				// Tile boundary: the whole batch is done, not just
				// this tile. Jump the cursor past the batch and
				// rebase the tiled offset from the saved row start.
				curTileInRow += parallel
				lX = curTileInRow * w.TileWidth
				tO = tOPrev + tileBytes*parallel
				cur = curPrev + rowsPerTile*parallel
				tOPrev = tO
				curPrev = cur
			} else {
				lX += dc.XDelta
			}
			lY += dc.YDelta
			break
		}
		if lX >= width {
			lX = 0
			curTileInRow = 0
			lY += w.TileHeight
			if lY >= clipped {
				break
			}
		}
	}
	return nil
}
