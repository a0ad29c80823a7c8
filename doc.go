// Package fbtile converts pixel buffers between tiled (GPU
// cache/DMA-optimized) and linear (row-major) memory layouts.
//
// # Overview
//
// GPU memory controllers store framebuffers in tiled layouts to improve
// locality: fixed-size rectangular pixel blocks are kept contiguous in
// memory. CPU-side consumers (encoders, compositors, displays) expect
// linear row-major scanlines. fbtile walks the tiled buffer in its
// natural sequential order while computing the matching linear-buffer
// position at every step, moving pixel data with plain byte copies.
//
// Each supported tiling scheme is described declaratively by a
// [TileWalk]: subtile size, tile size, and an ordered table of
// direction-change rules that encode the zig-zag addressing pattern.
// Adding a layout means adding one descriptor, not new code.
//
// # Quick Start
//
//	import "github.com/gogpu/fbtile"
//
//	walk, err := fbtile.WalkFor(fbtile.LayoutIntelXGen9)
//	if err != nil {
//	    // layout not in the registry
//	}
//
//	// Detile a tightly packed tiled buffer into a linear one.
//	err = fbtile.Convert(fbtile.OpDetile, w, h,
//	    linear, linearStride, tiled, w*4, walk)
//
// Frame-level copies, including graceful fallback for unknown layouts
// and pixel formats, go through [CopyWithTiling].
//
// # Engine variants
//
// Two engine variants produce byte-identical output. The reference
// variant handles any geometry that satisfies the stride contract. The
// parallel variant batches side-by-side tiles per iteration for
// throughput and requires the frame width to be a multiple of the tile
// width; see [WithVariant].
//
// # Logging
//
// fbtile produces no log output by default. Call [SetLogger] to enable
// diagnostics.
package fbtile
