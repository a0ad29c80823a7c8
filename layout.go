package fbtile

import "errors"

// ErrUnknownLayout is returned when a layout has no tile-walk descriptor
// in the registry.
var ErrUnknownLayout = errors.New("fbtile: unknown tile layout")

// Layout identifies a framebuffer tiling scheme.
//
// The set of layouts is closed: adding support for a new scheme means
// adding one descriptor to the registry, not new walking code.
type Layout uint8

const (
	// LayoutNone is linear row-major storage; nothing to (de)tile.
	LayoutNone Layout = iota

	// LayoutIntelXGen9 is the legacy Intel X tiling (gen9 era).
	LayoutIntelXGen9

	// LayoutIntelYGen9 is the legacy Intel Y tiling (gen9 era).
	LayoutIntelYGen9

	// LayoutIntelYF is the Intel Yf tiling.
	LayoutIntelYF

	// LayoutUnknown marks a tiling scheme outside the known set.
	LayoutUnknown
)

// String returns a string representation of the layout.
func (l Layout) String() string {
	switch l {
	case LayoutNone:
		return "None"
	case LayoutIntelXGen9:
		return "IntelXGen9"
	case LayoutIntelYGen9:
		return "IntelYGen9"
	case LayoutIntelYF:
		return "IntelYF"
	default:
		return "Unknown"
	}
}

// IsValid returns true if the layout is in the known set (including
// LayoutNone).
func (l Layout) IsValid() bool {
	return l < LayoutUnknown
}

// DirChange is one direction-change rule of a tile walk. After every
// subtile-row band, the rule table is scanned from the entry with the
// largest PosOffset down to the smallest; the first entry whose
// PosOffset evenly divides the cumulative subtile-row count fires and
// moves the linear-side cursor by (XDelta, YDelta) pixels.
type DirChange struct {
	PosOffset int
	XDelta    int
	YDelta    int
}

// TileWalk describes one tiling scheme: the pixel size, the subtile
// that is copied contiguously per step, the full tile period, and the
// direction-change table encoding the walk order of subtiles within a
// tile.
//
// A TileWalk is pure data. Descriptors returned by [WalkFor] are shared
// read-only values; callers must not modify them.
type TileWalk struct {
	BytesPerPixel int

	// SubTileWidth and SubTileHeight are the dimensions, in pixels, of
	// the smallest contiguous block in the tiled buffer.
	SubTileWidth  int
	SubTileHeight int

	// TileWidth and TileHeight are the dimensions, in pixels, of a
	// full tile.
	TileWidth  int
	TileHeight int

	// DirChanges is ordered by ascending PosOffset. The last entry's
	// PosOffset equals TileWidth*TileHeight/SubTileWidth (the subtile
	// rows in one full tile) and doubles as the tile-boundary marker
	// for the parallel engine.
	DirChanges []DirChange
}

// subTileRows returns the number of subtile rows making up one full tile.
func (w *TileWalk) subTileRows() int {
	return w.TileWidth * w.TileHeight / w.SubTileWidth
}

// Intel X tiling: a tile is a single 512-byte-wide column of 8 rows,
// so the walk is one straight run per tile.
var xGen9Walk = TileWalk{
	BytesPerPixel: 4,
	SubTileWidth:  128, SubTileHeight: 8,
	TileWidth: 128, TileHeight: 8,
	DirChanges: []DirChange{{8, 128, 0}},
}

// Intel Y tiling. The simple walk only needs the first entry; the
// trailing 256 entry marks the tile boundary for the parallel engine.
var yGen9Walk = TileWalk{
	BytesPerPixel: 4,
	SubTileWidth:  4, SubTileHeight: 32,
	TileWidth: 32, TileHeight: 32,
	DirChanges: []DirChange{{32, 4, 0}, {256, 4, 0}},
}

// Intel Yf tiling, 6-entry walk per the final upstream revision.
var yfWalk = TileWalk{
	BytesPerPixel: 4,
	SubTileWidth:  4, SubTileHeight: 8,
	TileWidth: 32, TileHeight: 32,
	DirChanges: []DirChange{
		{8, 4, 0}, {16, -4, 8}, {32, 4, -8},
		{64, -12, 8}, {128, 4, -24}, {256, 4, -24},
	},
}

// WalkFor returns the tile-walk descriptor registered for the layout.
//
// The returned descriptor is shared static data and must be treated as
// read-only. LayoutNone has no walk (there is nothing to convert) and
// reports ErrUnknownLayout, as does any layout outside the known set.
func WalkFor(layout Layout) (*TileWalk, error) {
	switch layout {
	case LayoutIntelXGen9:
		return &xGen9Walk, nil
	case LayoutIntelYGen9:
		return &yGen9Walk, nil
	case LayoutIntelYF:
		return &yfWalk, nil
	default:
		return nil, ErrUnknownLayout
	}
}
