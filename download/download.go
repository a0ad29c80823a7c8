// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package download copies frames out of GPU textures into host memory,
// detiling them according to the texture's declared DRM format
// modifier.
//
// The package does not talk to GPU hardware itself: it receives the
// device through a gpucontext.DeviceProvider and reads texture
// contents through narrow capability interfaces, mirroring how the
// host application exposes readback. The detiling itself is done by
// the fbtile engine on the downloaded bytes.
package download

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/fbtile"
)

// Common errors returned by download operations.
var (
	// ErrNilProvider is returned when a nil DeviceProvider is passed.
	ErrNilProvider = errors.New("download: nil DeviceProvider")

	// ErrNilTexture is returned when a nil texture is passed.
	ErrNilTexture = errors.New("download: nil texture")

	// ErrNoCPUAccess is returned when a texture does not support
	// readback into host memory.
	ErrNoCPUAccess = errors.New("download: texture does not support CPU readback")

	// ErrUnsupportedTextureFormat is returned when the texture format
	// has no fbtile equivalent.
	ErrUnsupportedTextureFormat = errors.New("download: unsupported texture format")

	// ErrShortReadback is returned when readback yields fewer bytes
	// than the texture geometry requires.
	ErrShortReadback = errors.New("download: readback returned too few bytes")
)

// Texture is the subset of a GPU texture's surface needed for
// download. Host textures (e.g. gogpu's) satisfy it directly.
type Texture interface {
	// Width returns the texture width in pixels.
	Width() uint32

	// Height returns the texture height in pixels.
	Height() uint32

	// Format returns the texture pixel format.
	Format() gputypes.TextureFormat
}

// PixelReader is implemented by textures whose contents can be read
// back into host memory. ReadPixels returns the raw, tightly packed
// texture bytes in the texture's own (possibly tiled) layout.
type PixelReader interface {
	ReadPixels() ([]byte, error)
}

// Downloader copies GPU texture contents into linear host frames.
//
// A Downloader holds no per-call state and is safe for concurrent use.
type Downloader struct {
	provider gpucontext.DeviceProvider
}

// New creates a Downloader bound to the host's GPU device.
// The provider should come from the host application (e.g.
// gogpu.App.GPUContextProvider()).
func New(provider gpucontext.DeviceProvider) (*Downloader, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	return &Downloader{provider: provider}, nil
}

// Provider returns the DeviceProvider this downloader is bound to.
func (d *Downloader) Provider() gpucontext.DeviceProvider {
	return d.provider
}

// Frame reads tex back into host memory and returns a linear frame.
//
// The modifier is the DRM format modifier the texture was created
// with. Tiled modifiers are detiled through the fbtile engine; a
// linear or unknown modifier yields a plain copy of the readback
// (fbtile's designed fallback), so the result is always host-linear
// data paired with the reported copy status.
func (d *Downloader) Frame(tex Texture, modifier uint64) (*fbtile.Frame, fbtile.CopyStatus, error) {
	if tex == nil {
		return nil, fbtile.CopyStatusPlain, ErrNilTexture
	}

	reader, ok := tex.(PixelReader)
	if !ok {
		return nil, fbtile.CopyStatusPlain, ErrNoCPUAccess
	}

	format, ok := FormatFromTexture(tex.Format())
	if !ok {
		return nil, fbtile.CopyStatusPlain,
			fmt.Errorf("%w: %v", ErrUnsupportedTextureFormat, tex.Format())
	}

	width := int(tex.Width())
	height := int(tex.Height())

	data, err := reader.ReadPixels()
	if err != nil {
		return nil, fbtile.CopyStatusPlain, fmt.Errorf("download: readback failed: %w", err)
	}
	if len(data) < format.ImageBytes(width, height) {
		return nil, fbtile.CopyStatusPlain, fmt.Errorf("%w: have %d, need %d",
			ErrShortReadback, len(data), format.ImageBytes(width, height))
	}

	src, err := fbtile.NewFrame(data, width, height, format, format.RowBytes(width))
	if err != nil {
		return nil, fbtile.CopyStatusPlain, err
	}
	dst, err := fbtile.AllocFrame(width, height, format)
	if err != nil {
		return nil, fbtile.CopyStatusPlain, err
	}

	layout := fbtile.LayoutFromModifier(fbtile.FamilyDRM, modifier)
	status, err := fbtile.CopyWithTiling(dst, fbtile.LayoutNone, src, layout)
	if err != nil {
		return nil, status, err
	}

	fbtile.Logger().Debug("downloaded frame",
		"width", width, "height", height,
		"format", format.String(), "layout", layout.String(),
		"status", status.String())
	return dst, status, nil
}

// FormatFromTexture maps a GPU texture format to its fbtile pixel
// format. Only 32-bit RGB-family texture formats have a mapping.
func FormatFromTexture(tf gputypes.TextureFormat) (fbtile.Format, bool) {
	switch tf {
	case gputypes.TextureFormatRGBA8Unorm:
		return fbtile.FormatRGBA, true
	case gputypes.TextureFormatBGRA8Unorm:
		return fbtile.FormatBGRA, true
	default:
		return fbtile.FormatUnknown, false
	}
}

// TextureFormatFor maps an fbtile pixel format back to a GPU texture
// format, returning TextureFormatUndefined when the format has no GPU
// equivalent.
func TextureFormatFor(f fbtile.Format) gputypes.TextureFormat {
	switch f {
	case fbtile.FormatRGBA:
		return gputypes.TextureFormatRGBA8Unorm
	case fbtile.FormatBGRA:
		return gputypes.TextureFormatBGRA8Unorm
	default:
		return gputypes.TextureFormatUndefined
	}
}
