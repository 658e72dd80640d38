// qoiconv converts common raster images to QOI and QOI back to PNG.
package main

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/pixelstream/qoi_go/qoi"
)

type cli struct {
	Input    string `arg:"" help:"Input image. A .qoi file decodes to PNG, anything else encodes to QOI." type:"existingfile"`
	Out      string `help:"Output path. Defaults to the input path with its extension swapped."`
	Channels string `help:"Channel count to store when encoding. auto picks 3 unless the source has transparency." enum:"auto,3,4" default:"auto"`
	Linear   bool   `help:"Mark the encoded image as all-channels-linear instead of sRGB."`
}

func (c *cli) Validate(kctx *kong.Context) error {
	if c.Out == "" {
		base := strings.TrimSuffix(c.Input, filepath.Ext(c.Input))
		if isQOIPath(c.Input) {
			c.Out = base + ".png"
		} else {
			c.Out = base + ".qoi"
		}
	}
	return nil
}

func isQOIPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".qoi")
}

func main() {
	var c cli
	kong.Parse(&c,
		kong.Name("qoiconv"),
		kong.Description("Convert images to and from the QOI format."))

	var err error
	if isQOIPath(c.Input) {
		err = decodeToPNG(c.Input, c.Out)
	} else {
		err = encodeToQOI(&c)
	}
	if err != nil {
		slog.Error("conversion failed", "input", c.Input, "error", err)
		os.Exit(1)
	}
	slog.Info("converted", "input", c.Input, "output", c.Out)
}

func encodeToQOI(c *cli) error {
	in, err := os.Open(c.Input)
	if err != nil {
		return err
	}
	defer in.Close()

	src, format, err := image.Decode(in)
	if err != nil {
		return fmt.Errorf("could not decode %q: %w", c.Input, err)
	}
	slog.Info("read image", "format", format, "bounds", src.Bounds())

	bounds := src.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), src, bounds.Min, draw.Src)

	channels := qoi.ChannelsRGBA
	switch c.Channels {
	case "3":
		channels = qoi.ChannelsRGB
	case "auto":
		if isOpaque(nrgba) {
			channels = qoi.ChannelsRGB
		}
	}

	pix := nrgba.Pix
	if channels == qoi.ChannelsRGB {
		pix = dropAlpha(nrgba.Pix)
	}

	colorspace := qoi.ColorspaceSRGB
	if c.Linear {
		colorspace = qoi.ColorspaceLinear
	}

	out, err := os.Create(c.Out)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := qoi.EncodeTo(out, bounds.Dx(), bounds.Dy(), pix, channels, colorspace); err != nil {
		return fmt.Errorf("could not encode %q: %w", c.Out, err)
	}
	return out.Sync()
}

func decodeToPNG(inPath, outPath string) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}

	img, err := qoi.Decode(data)
	if err != nil {
		return fmt.Errorf("could not decode %q: %w", inPath, err)
	}
	if !img.FooterValid {
		slog.Warn("stream footer invalid, pixel data decoded from header geometry", "input", inPath)
	}

	nrgba := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	if img.Channels == qoi.ChannelsRGBA {
		copy(nrgba.Pix, img.Pix)
	} else {
		for i, j := 0, 0; i < len(img.Pix); i, j = i+3, j+4 {
			nrgba.Pix[j] = img.Pix[i]
			nrgba.Pix[j+1] = img.Pix[i+1]
			nrgba.Pix[j+2] = img.Pix[i+2]
			nrgba.Pix[j+3] = 255
		}
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := png.Encode(out, nrgba); err != nil {
		return fmt.Errorf("could not write %q: %w", outPath, err)
	}
	return out.Sync()
}

func isOpaque(img *image.NRGBA) bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 255 {
			return false
		}
	}
	return true
}

func dropAlpha(rgba []byte) []byte {
	rgb := make([]byte, 0, len(rgba)/4*3)
	for i := 0; i < len(rgba); i += 4 {
		rgb = append(rgb, rgba[i], rgba[i+1], rgba[i+2])
	}
	return rgb
}
