// Command fbtile converts images between tiled and linear framebuffer
// layouts, and generates/checks the test patterns used to eyeball a
// tile walk.
//
// Usage:
//
//	fbtile pattern -w 256 -h 256 -out pattern.png
//	fbtile tile   -layout x -in linear.png -out tiled.png
//	fbtile detile -layout x -in tiled.png -out linear.png
//	fbtile check  -layout yf -w 256 -h 256
//
// PNG and BMP files are supported, chosen by file extension.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"

	"github.com/gogpu/fbtile"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	fbtile.SetLogger(slog.Default())

	var err error
	switch os.Args[1] {
	case "pattern":
		err = runPattern(os.Args[2:])
	case "tile":
		err = runConvert(fbtile.OpTile, os.Args[2:])
	case "detile":
		err = runConvert(fbtile.OpDetile, os.Args[2:])
	case "check":
		err = runCheck(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "fbtile:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: fbtile <command> [flags]

commands:
  pattern   generate a subtile-sized checker test pattern
  tile      convert a linear image into a tiled dump
  detile    convert a tiled dump into a linear image
  check     round-trip a generated pattern and verify it survives`)
}

func runPattern(args []string) error {
	fs := flag.NewFlagSet("pattern", flag.ExitOnError)
	width := fs.Int("w", 256, "pattern width in pixels")
	height := fs.Int("h", 256, "pattern height in pixels")
	layout := fs.String("layout", "yf", "layout whose subtile sizes the checker (x, y, yf)")
	out := fs.String("out", "pattern.png", "output file (.png or .bmp)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	l, err := parseLayout(*layout)
	if err != nil {
		return err
	}
	walk, err := fbtile.WalkFor(l)
	if err != nil {
		return err
	}

	frame, err := makePattern(*width, *height, walk)
	if err != nil {
		return err
	}
	return saveFrame(*out, frame)
}

func runConvert(op fbtile.Op, args []string) error {
	fs := flag.NewFlagSet(op.String(), flag.ExitOnError)
	layout := fs.String("layout", "", "tile layout (x, y, yf)")
	variant := fs.String("variant", "auto", "engine variant (auto, reference, parallel)")
	in := fs.String("in", "", "input file (.png or .bmp)")
	out := fs.String("out", "", "output file (.png or .bmp)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *out == "" {
		return fmt.Errorf("%s: -in and -out are required", op)
	}

	l, err := parseLayout(*layout)
	if err != nil {
		return err
	}
	walk, err := fbtile.WalkFor(l)
	if err != nil {
		return err
	}
	v, err := parseVariant(*variant)
	if err != nil {
		return err
	}

	src, err := loadFrame(*in)
	if err != nil {
		return err
	}
	dst, err := fbtile.AllocFrame(src.Width, src.Height, src.Format)
	if err != nil {
		return err
	}

	if err := fbtile.Convert(op, src.Width, src.Height,
		dst.Data, dst.Stride, src.Data, src.Stride, walk,
		fbtile.WithVariant(v)); err != nil {
		return err
	}
	return saveFrame(*out, dst)
}

func runCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	width := fs.Int("w", 256, "frame width in pixels")
	height := fs.Int("h", 256, "frame height in pixels")
	layout := fs.String("layout", "yf", "tile layout (x, y, yf)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	l, err := parseLayout(*layout)
	if err != nil {
		return err
	}
	walk, err := fbtile.WalkFor(l)
	if err != nil {
		return err
	}

	linear, err := makePattern(*width, *height, walk)
	if err != nil {
		return err
	}
	tiled, err := fbtile.AllocFrame(*width, *height, fbtile.FormatRGBA)
	if err != nil {
		return err
	}
	back, err := fbtile.AllocFrame(*width, *height, fbtile.FormatRGBA)
	if err != nil {
		return err
	}

	if err := fbtile.Convert(fbtile.OpTile, *width, *height,
		tiled.Data, tiled.Stride, linear.Data, linear.Stride, walk); err != nil {
		return err
	}
	if err := fbtile.Convert(fbtile.OpDetile, *width, *height,
		back.Data, back.Stride, tiled.Data, tiled.Stride, walk); err != nil {
		return err
	}

	if !bytes.Equal(linear.Data, back.Data) {
		return fmt.Errorf("check: %s %dx%d round trip does not match", l, *width, *height)
	}
	fmt.Printf("check: %s %dx%d ok\n", l, *width, *height)
	return nil
}

// makePattern fills a frame with a checker of subtile-sized blocks
// alternating red and blue, so a botched walk is obvious at a glance.
func makePattern(width, height int, walk *fbtile.TileWalk) (*fbtile.Frame, error) {
	frame, err := fbtile.AllocFrame(width, height, fbtile.FormatRGBA)
	if err != nil {
		return nil, err
	}
	for y := 0; y < height; y++ {
		row := frame.Row(y)
		for x := 0; x < width; x++ {
			c := byte(200)
			if (x/walk.SubTileWidth+y/walk.SubTileHeight)%2 == 0 {
				c = 0
			}
			row[x*4+0] = 200 - c
			row[x*4+2] = c
			row[x*4+3] = 0xFF
		}
	}
	return frame, nil
}

func parseLayout(s string) (fbtile.Layout, error) {
	switch strings.ToLower(s) {
	case "none", "linear":
		return fbtile.LayoutNone, nil
	case "x":
		return fbtile.LayoutIntelXGen9, nil
	case "y":
		return fbtile.LayoutIntelYGen9, nil
	case "yf":
		return fbtile.LayoutIntelYF, nil
	default:
		return fbtile.LayoutUnknown, fmt.Errorf("unknown layout %q (want x, y or yf)", s)
	}
}

func parseVariant(s string) (fbtile.Variant, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return fbtile.VariantAuto, nil
	case "reference", "simple":
		return fbtile.VariantReference, nil
	case "parallel", "opti":
		return fbtile.VariantParallel, nil
	default:
		return fbtile.VariantAuto, fmt.Errorf("unknown variant %q (want auto, reference or parallel)", s)
	}
}

func loadFrame(path string) (*fbtile.Frame, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var img image.Image
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		img, err = png.Decode(f)
	case ".bmp":
		img, err = bmp.Decode(f)
	default:
		return nil, fmt.Errorf("unsupported file type %q (want .png or .bmp)", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(bounds)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				rgba.Set(x, y, img.At(x, y))
			}
		}
	}
	return fbtile.NewFrame(rgba.Pix, bounds.Dx(), bounds.Dy(), fbtile.FormatRGBA, rgba.Stride)
}

func saveFrame(path string, frame *fbtile.Frame) error {
	img := image.NewRGBA(image.Rect(0, 0, frame.Width, frame.Height))
	for y := 0; y < frame.Height; y++ {
		copy(img.Pix[y*img.Stride:], frame.Row(y))
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return png.Encode(f, img)
	case ".bmp":
		return bmp.Encode(f, img)
	default:
		return fmt.Errorf("unsupported file type %q (want .png or .bmp)", filepath.Ext(path))
	}
}
