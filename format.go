package fbtile

// Format represents a pixel storage format.
//
// The conversion engine itself is format-agnostic (it only moves
// bytes); formats matter at the frame-copy level, where only the 32-bit
// RGB family is allowed between tiled and linear layouts.
type Format uint8

const (
	// FormatRGBA is 32-bit RGBA (byte order R, G, B, A).
	FormatRGBA Format = iota

	// FormatARGB is 32-bit ARGB (byte order A, R, G, B).
	FormatARGB

	// FormatBGRA is 32-bit BGRA (byte order B, G, R, A).
	FormatBGRA

	// FormatABGR is 32-bit ABGR (byte order A, B, G, R).
	FormatABGR

	// FormatRGBX is 32-bit RGB with an unused fourth byte.
	FormatRGBX

	// FormatXRGB is 32-bit RGB with an unused leading byte.
	FormatXRGB

	// FormatBGRX is 32-bit BGR with an unused fourth byte.
	FormatBGRX

	// FormatXBGR is 32-bit BGR with an unused leading byte.
	FormatXBGR

	// formatCount is the number of known formats (for internal use).
	formatCount

	// FormatUnknown marks a pixel format outside the known set.
	FormatUnknown Format = 0xFF
)

// FormatInfo contains metadata about a pixel format.
type FormatInfo struct {
	// BytesPerPixel is the number of bytes per pixel.
	BytesPerPixel int

	// HasAlpha indicates if the fourth byte carries alpha rather than
	// padding.
	HasAlpha bool
}

var formatInfoTable = [formatCount]FormatInfo{
	FormatRGBA: {BytesPerPixel: 4, HasAlpha: true},
	FormatARGB: {BytesPerPixel: 4, HasAlpha: true},
	FormatBGRA: {BytesPerPixel: 4, HasAlpha: true},
	FormatABGR: {BytesPerPixel: 4, HasAlpha: true},
	FormatRGBX: {BytesPerPixel: 4, HasAlpha: false},
	FormatXRGB: {BytesPerPixel: 4, HasAlpha: false},
	FormatBGRX: {BytesPerPixel: 4, HasAlpha: false},
	FormatXBGR: {BytesPerPixel: 4, HasAlpha: false},
}

// Info returns the FormatInfo for this format.
func (f Format) Info() FormatInfo {
	if f >= formatCount {
		return FormatInfo{}
	}
	return formatInfoTable[f]
}

// BytesPerPixel returns the number of bytes per pixel, or 0 for an
// unknown format.
func (f Format) BytesPerPixel() int {
	return f.Info().BytesPerPixel
}

// HasAlpha returns true if the format carries an alpha channel.
func (f Format) HasAlpha() bool {
	return f.Info().HasAlpha
}

// IsValid returns true if the format is a valid known format.
func (f Format) IsValid() bool {
	return f < formatCount
}

// Supported returns true if frame copies may tile or detile buffers of
// this format. Currently this is the full known set: the 32-bit RGB
// permutations.
func (f Format) Supported() bool {
	return f.IsValid()
}

// RowBytes calculates the number of payload bytes in a row of the given
// width.
func (f Format) RowBytes(width int) int {
	return width * f.BytesPerPixel()
}

// ImageBytes calculates the total number of bytes needed for a tightly
// packed image.
func (f Format) ImageBytes(width, height int) int {
	return f.RowBytes(width) * height
}

// String returns a string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatRGBA:
		return "RGBA"
	case FormatARGB:
		return "ARGB"
	case FormatBGRA:
		return "BGRA"
	case FormatABGR:
		return "ABGR"
	case FormatRGBX:
		return "RGBX"
	case FormatXRGB:
		return "XRGB"
	case FormatBGRX:
		return "BGRX"
	case FormatXBGR:
		return "XBGR"
	default:
		return "Unknown"
	}
}
