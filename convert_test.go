package fbtile

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

// fillSeq fills buf with a deterministic byte pattern so that any
// misplaced copy shows up as a mismatch.
func fillSeq(buf []byte) {
	for i := range buf {
		buf[i] = byte(i*7 + i>>9 + 3)
	}
}

// tileAlignedSizes lists frame sizes that are exact tile multiples for
// each layout.
var tileAlignedSizes = map[Layout][][2]int{
	LayoutIntelXGen9: {{128, 8}, {256, 16}, {1024, 64}, {1536, 32}},
	LayoutIntelYGen9: {{32, 32}, {64, 64}, {224, 64}, {256, 96}},
	LayoutIntelYF:    {{32, 32}, {64, 64}, {256, 96}},
}

func mustWalk(t *testing.T, layout Layout) *TileWalk {
	t.Helper()
	walk, err := WalkFor(layout)
	if err != nil {
		t.Fatalf("WalkFor(%v): %v", layout, err)
	}
	return walk
}

// TestConvert_RoundTrip verifies detile(tile(x)) == x for every layout
// and tile-aligned size, for both engine variants.
func TestConvert_RoundTrip(t *testing.T) {
	for layout, sizes := range tileAlignedSizes {
		walk := mustWalk(t, layout)
		for _, size := range sizes {
			w, h := size[0], size[1]
			for _, variant := range []Variant{VariantReference, VariantParallel} {
				name := fmt.Sprintf("%s/%s/%dx%d", layout, variantName(variant), w, h)
				t.Run(name, func(t *testing.T) {
					linear := make([]byte, w*h*4)
					fillSeq(linear)
					tiled := make([]byte, w*h*4)
					back := make([]byte, w*h*4)

					opt := WithVariant(variant)
					if err := Convert(OpTile, w, h, tiled, w*4, linear, w*4, walk, opt); err != nil {
						t.Fatalf("tile: %v", err)
					}
					if err := Convert(OpDetile, w, h, back, w*4, tiled, w*4, walk, opt); err != nil {
						t.Fatalf("detile: %v", err)
					}
					if !bytes.Equal(linear, back) {
						t.Fatal("round trip does not reproduce the linear buffer")
					}
				})
			}
		}
	}
}

// TestConvert_RoundTrip_PaddedLinearStride runs the round trip with a
// linear buffer that carries padding past the visible width. Only the
// tiled side must be tightly packed.
func TestConvert_RoundTrip_PaddedLinearStride(t *testing.T) {
	const w, h, pad = 64, 64, 48
	walk := mustWalk(t, LayoutIntelYGen9)
	stride := w*4 + pad

	linear := make([]byte, stride*h)
	fillSeq(linear)
	tiled := make([]byte, w*h*4)
	back := make([]byte, stride*h)

	if err := Convert(OpTile, w, h, tiled, w*4, linear, stride, walk); err != nil {
		t.Fatalf("tile: %v", err)
	}
	if err := Convert(OpDetile, w, h, back, stride, tiled, w*4, walk); err != nil {
		t.Fatalf("detile: %v", err)
	}
	for y := 0; y < h; y++ {
		if !bytes.Equal(linear[y*stride:y*stride+w*4], back[y*stride:y*stride+w*4]) {
			t.Fatalf("row %d payload differs after round trip", y)
		}
	}
}

// TestConvert_VariantEquivalence verifies the parallel engine produces
// byte-identical output to the reference engine for both operations.
func TestConvert_VariantEquivalence(t *testing.T) {
	for layout, sizes := range tileAlignedSizes {
		walk := mustWalk(t, layout)
		for _, size := range sizes {
			w, h := size[0], size[1]
			for _, op := range []Op{OpTile, OpDetile} {
				name := fmt.Sprintf("%s/%s/%dx%d", layout, op, w, h)
				t.Run(name, func(t *testing.T) {
					src := make([]byte, w*h*4)
					fillSeq(src)
					ref := make([]byte, w*h*4)
					par := make([]byte, w*h*4)

					if err := Convert(op, w, h, ref, w*4, src, w*4, walk, WithVariant(VariantReference)); err != nil {
						t.Fatalf("reference: %v", err)
					}
					if err := Convert(op, w, h, par, w*4, src, w*4, walk, WithVariant(VariantParallel)); err != nil {
						t.Fatalf("parallel: %v", err)
					}
					if !bytes.Equal(ref, par) {
						t.Fatal("parallel output differs from reference")
					}
				})
			}
		}
	}
}

// TestConvert_VariantEquivalence_ShortSubTile drives both engines with
// a descriptor whose subtile height is not a multiple of 4, so the
// parallel engine cannot unroll its inner loop and must take the plain
// row loop instead.
func TestConvert_VariantEquivalence_ShortSubTile(t *testing.T) {
	// 8x2 tiles built from two 4x2 subtiles walked left to right.
	walk := &TileWalk{
		BytesPerPixel: 4,
		SubTileWidth:  4, SubTileHeight: 2,
		TileWidth: 8, TileHeight: 2,
		DirChanges: []DirChange{{2, 4, 0}, {4, 4, 0}},
	}
	const w, h = 64, 8

	for _, op := range []Op{OpTile, OpDetile} {
		t.Run(op.String(), func(t *testing.T) {
			src := make([]byte, w*h*4)
			fillSeq(src)
			ref := make([]byte, w*h*4)
			par := make([]byte, w*h*4)

			if err := Convert(op, w, h, ref, w*4, src, w*4, walk, WithVariant(VariantReference)); err != nil {
				t.Fatalf("reference: %v", err)
			}
			if err := Convert(op, w, h, par, w*4, src, w*4, walk, WithVariant(VariantParallel)); err != nil {
				t.Fatalf("parallel: %v", err)
			}
			if !bytes.Equal(ref, par) {
				t.Fatal("parallel output differs from reference")
			}
		})
	}

	// And the parallel engine must still round trip on its own.
	linear := make([]byte, w*h*4)
	fillSeq(linear)
	tiled := make([]byte, w*h*4)
	back := make([]byte, w*h*4)
	opt := WithVariant(VariantParallel)
	if err := Convert(OpTile, w, h, tiled, w*4, linear, w*4, walk, opt); err != nil {
		t.Fatalf("tile: %v", err)
	}
	if err := Convert(OpDetile, w, h, back, w*4, tiled, w*4, walk, opt); err != nil {
		t.Fatalf("detile: %v", err)
	}
	if !bytes.Equal(linear, back) {
		t.Fatal("round trip does not reproduce the linear buffer")
	}
}

// TestConvert_XTiled_Placement checks the documented X-tile mapping:
// each 4096-byte tile of the tiled source is eight 512-byte rows, laid
// down at (tileCol*512, tileRow*8) in the linear buffer.
func TestConvert_XTiled_Placement(t *testing.T) {
	const w, h = 256, 16
	const linStride = w*4 + 64 // linear side may carry padding
	walk := mustWalk(t, LayoutIntelXGen9)

	tiled := make([]byte, w*h*4)
	fillSeq(tiled)
	linear := make([]byte, linStride*h)

	if err := Convert(OpDetile, w, h, linear, linStride, tiled, w*4, walk); err != nil {
		t.Fatalf("detile: %v", err)
	}

	const tileBytes = 128 * 8 * 4 // 4096
	// tile index -> (linX bytes, linY rows); two tiles per row, two
	// tile rows.
	wantPos := [][2]int{{0, 0}, {512, 0}, {0, 8}, {512, 8}}
	for ti, pos := range wantPos {
		for off := 0; off < tileBytes; off++ {
			row := pos[1] + off/512
			col := pos[0] + off%512
			got := linear[row*linStride+col]
			want := tiled[ti*tileBytes+off]
			if got != want {
				t.Fatalf("tile %d byte %d: linear[%d,%d] = %#x, want %#x",
					ti, off, row, col, got, want)
			}
		}
	}
}

// TestConvert_StridePrecondition verifies that a loosely packed tiled
// buffer is rejected before a single byte is written.
func TestConvert_StridePrecondition(t *testing.T) {
	const w, h = 128, 8
	walk := mustWalk(t, LayoutIntelXGen9)
	badStride := w*4 + 4

	for _, variant := range []Variant{VariantReference, VariantParallel} {
		t.Run(variantName(variant), func(t *testing.T) {
			// Detile: the tiled side is the source.
			src := make([]byte, badStride*h)
			dst := make([]byte, w*h*4)
			for i := range dst {
				dst[i] = 0xEE
			}
			err := Convert(OpDetile, w, h, dst, w*4, src, badStride, walk, WithVariant(variant))
			if !errors.Is(err, ErrInvalidStride) {
				t.Fatalf("Convert() = %v, want ErrInvalidStride", err)
			}
			for i, b := range dst {
				if b != 0xEE {
					t.Fatalf("dst[%d] written despite stride error", i)
				}
			}

			// Tile: the tiled side is the destination.
			tdst := make([]byte, badStride*h)
			for i := range tdst {
				tdst[i] = 0xEE
			}
			err = Convert(OpTile, w, h, tdst, badStride, dst, w*4, walk, WithVariant(variant))
			if !errors.Is(err, ErrInvalidStride) {
				t.Fatalf("Convert() = %v, want ErrInvalidStride", err)
			}
			for i, b := range tdst {
				if b != 0xEE {
					t.Fatalf("tiled dst[%d] written despite stride error", i)
				}
			}
		})
	}
}

// TestConvert_ParallelWidthAlignment verifies the parallel-only width
// precondition.
func TestConvert_ParallelWidthAlignment(t *testing.T) {
	walk := mustWalk(t, LayoutIntelYGen9)
	const w, h = 48, 32 // 48 is not a multiple of the 32-pixel tile width

	src := make([]byte, w*h*4)
	dst := make([]byte, w*h*4)
	err := Convert(OpDetile, w, h, dst, w*4, src, w*4, walk, WithVariant(VariantParallel))
	if !errors.Is(err, ErrWidthNotTileAligned) {
		t.Fatalf("Convert() = %v, want ErrWidthNotTileAligned", err)
	}

	// The reference engine has no such requirement.
	if err := Convert(OpDetile, w, h, dst, w*4, src, w*4, walk, WithVariant(VariantReference)); err != nil {
		t.Fatalf("reference Convert() = %v, want nil", err)
	}

	// VariantAuto must route the unaligned width to the reference engine.
	if err := Convert(OpDetile, w, h, dst, w*4, src, w*4, walk); err != nil {
		t.Fatalf("auto Convert() = %v, want nil", err)
	}
}

// TestConvert_ParallelHeightClip verifies the documented clipping: for
// heights that are not tile multiples, the parallel engine converts
// the largest tile-aligned region and leaves the bottom strip alone.
func TestConvert_ParallelHeightClip(t *testing.T) {
	walk := mustWalk(t, LayoutIntelXGen9)
	const w, h = 256, 20 // tile height 8: clips to 16 rows

	tiled := make([]byte, w*h*4)
	fillSeq(tiled)
	dst := make([]byte, w*h*4)
	for i := range dst {
		dst[i] = 0xEE
	}

	if err := Convert(OpDetile, w, h, dst, w*4, tiled, w*4, walk, WithVariant(VariantParallel)); err != nil {
		t.Fatalf("Convert() error: %v", err)
	}

	// Covered region matches a reference conversion of the clipped height.
	want := make([]byte, w*16*4)
	if err := Convert(OpDetile, w, 16, want, w*4, tiled[:w*16*4], w*4, walk, WithVariant(VariantReference)); err != nil {
		t.Fatalf("reference Convert() error: %v", err)
	}
	if !bytes.Equal(dst[:w*16*4], want) {
		t.Error("clipped region differs from reference output")
	}

	// Bottom strip untouched.
	for i := w * 16 * 4; i < len(dst); i++ {
		if dst[i] != 0xEE {
			t.Fatalf("dst[%d] in bottom strip was written", i)
		}
	}
}

func TestConvert_InputValidation(t *testing.T) {
	walk := mustWalk(t, LayoutIntelXGen9)
	buf := make([]byte, 128*8*4)

	if err := Convert(OpDetile, 128, 8, buf, 128*4, buf, 128*4, nil); !errors.Is(err, ErrUnknownLayout) {
		t.Errorf("nil walk: Convert() = %v, want ErrUnknownLayout", err)
	}
	if err := Convert(OpDetile, 0, 8, buf, 0, buf, 0, walk); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("zero width: Convert() = %v, want ErrInvalidDimensions", err)
	}
	if err := Convert(OpDetile, 128, -8, buf, 128*4, buf, 128*4, walk); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("negative height: Convert() = %v, want ErrInvalidDimensions", err)
	}
}

func TestOp_String(t *testing.T) {
	if OpTile.String() != "Tile" || OpDetile.String() != "Detile" {
		t.Errorf("Op strings = %q, %q", OpTile.String(), OpDetile.String())
	}
	if Op(9).String() != "Unknown" {
		t.Errorf("Op(9).String() = %q, want Unknown", Op(9).String())
	}
}

func variantName(v Variant) string {
	switch v {
	case VariantReference:
		return "Reference"
	case VariantParallel:
		return "Parallel"
	default:
		return "Auto"
	}
}
